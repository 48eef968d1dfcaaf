package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"smartwaste-backend/internal/models"
	"smartwaste-backend/internal/services"
	"smartwaste-backend/internal/store"
	"smartwaste-backend/pkg/utils"
)

func AddTruck(trucks *services.TruckService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.AddTruckRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		truck, err := trucks.AddTruck(r.Context(), req)
		if err != nil {
			respondServiceError(w, err)
			return
		}

		utils.JSON(w, http.StatusCreated, truck)
	}
}

// ListTrucks supports ?status= and ?min_capacity_kg= filters
func ListTrucks(trucks *services.TruckService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter := store.TruckFilter{
			Status:        r.URL.Query().Get("status"),
			MinCapacityKg: int64(queryInt(r, "min_capacity_kg", 0)),
		}

		fleet, err := trucks.ListTrucks(r.Context(), filter)
		if err != nil {
			respondServiceError(w, err)
			return
		}

		utils.Success(w, fleet)
	}
}

func GetTruck(trucks *services.TruckService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		truck, err := trucks.GetTruck(r.Context(), id)
		if err != nil {
			respondServiceError(w, err)
			return
		}

		utils.Success(w, truck)
	}
}

func DeleteTruck(trucks *services.TruckService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		if err := trucks.DeleteTruck(r.Context(), id); err != nil {
			respondServiceError(w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

type SetTruckStatusRequest struct {
	Status string `json:"status"`
}

func SetTruckStatus(trucks *services.TruckService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		var req SetTruckStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		truck, err := trucks.SetTruckStatus(r.Context(), id, req.Status)
		if err != nil {
			respondServiceError(w, err)
			return
		}

		utils.Success(w, truck)
	}
}
