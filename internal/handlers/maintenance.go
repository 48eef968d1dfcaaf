package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"smartwaste-backend/internal/middleware"
	"smartwaste-backend/internal/models"
	"smartwaste-backend/internal/services"
	"smartwaste-backend/internal/store"
	"smartwaste-backend/pkg/utils"
)

func CreateMaintenanceRequest(maintenance *services.MaintenanceService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetUserFromContext(r)
		if !ok {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		var req models.CreateMaintenanceRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		request, err := maintenance.Create(r.Context(), claims.UserID, claims.Role, req)
		if err != nil {
			respondServiceError(w, err)
			return
		}

		utils.JSON(w, http.StatusCreated, request)
	}
}

// ListMaintenanceRequests supports ?status=, ?bin_id=, ?page=, ?size=
func ListMaintenanceRequests(maintenance *services.MaintenanceService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetUserFromContext(r)
		if !ok {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		filter := store.MaintenanceFilter{
			Status: r.URL.Query().Get("status"),
			BinID:  r.URL.Query().Get("bin_id"),
			Page:   queryInt(r, "page", 0),
			Size:   queryInt(r, "size", 20),
		}

		requests, total, err := maintenance.List(r.Context(), claims.UserID, claims.Role, filter)
		if err != nil {
			respondServiceError(w, err)
			return
		}

		utils.Success(w, map[string]interface{}{
			"requests": requests,
			"total":    total,
			"page":     filter.Page,
			"size":     filter.Size,
		})
	}
}

func GetMaintenanceRequest(maintenance *services.MaintenanceService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		claims, ok := middleware.GetUserFromContext(r)
		if !ok {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		request, err := maintenance.Get(r.Context(), claims.UserID, claims.Role, id)
		if err != nil {
			respondServiceError(w, err)
			return
		}

		utils.Success(w, request)
	}
}

func UpdateMaintenanceStatus(maintenance *services.MaintenanceService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		var req models.UpdateMaintenanceStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		request, err := maintenance.UpdateStatus(r.Context(), id, req)
		if err != nil {
			respondServiceError(w, err)
			return
		}

		utils.Success(w, request)
	}
}

func DeleteMaintenanceRequest(maintenance *services.MaintenanceService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		if err := maintenance.Delete(r.Context(), id); err != nil {
			respondServiceError(w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
