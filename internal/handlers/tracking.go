package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"smartwaste-backend/internal/middleware"
	"smartwaste-backend/internal/models"
	"smartwaste-backend/internal/services"
	"smartwaste-backend/pkg/utils"
)

// TrackBin answers which truck is coming for a bin, GET /api/bins/{id}/truck
func TrackBin(tracking *services.TrackingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		truck, err := tracking.ResolveTruckForBin(r.Context(), id)
		if err != nil {
			respondServiceError(w, err)
			return
		}

		utils.Success(w, truck)
	}
}

// UpdateTruckLocation takes a GPS ping from the collector's app,
// POST /api/collector/trucks/location. The WebSocket location_update
// frame is the other path to the same service call.
func UpdateTruckLocation(tracking *services.TrackingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetUserFromContext(r)
		if !ok {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		var req models.TruckLocationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		truck, err := tracking.UpdateTruckLocation(r.Context(), claims.UserID, req.Latitude, req.Longitude)
		if err != nil {
			respondServiceError(w, err)
			return
		}

		utils.Success(w, truck)
	}
}
