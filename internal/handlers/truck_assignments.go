package handlers

import (
	"encoding/json"
	"net/http"

	"smartwaste-backend/internal/middleware"
	"smartwaste-backend/internal/models"
	"smartwaste-backend/internal/services"
	"smartwaste-backend/pkg/utils"
)

// AssignTruck pairs a truck with a collector, POST /api/manager/trucks/assign
func AssignTruck(assignments *services.AssignmentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.AssignTruckRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		assignment, err := assignments.AssignTruckToCollector(r.Context(), req.RegistrationNumber, req.CollectorID)
		if err != nil {
			respondServiceError(w, err)
			return
		}

		utils.JSON(w, http.StatusCreated, assignment)
	}
}

// HandOverTruck ends the caller's truck pairing, POST /api/collector/trucks/hand-over
func HandOverTruck(assignments *services.AssignmentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetUserFromContext(r)
		if !ok {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		var req models.HandOverTruckRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		if err := assignments.HandOverTruck(r.Context(), claims.UserID, req.RegistrationNumber); err != nil {
			respondServiceError(w, err)
			return
		}

		utils.Success(w, map[string]string{"message": "Truck handed over"})
	}
}

// ListTruckAssignments lists every live truck/collector pairing
func ListTruckAssignments(assignments *services.AssignmentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		views, err := assignments.ListAssignments(r.Context())
		if err != nil {
			respondServiceError(w, err)
			return
		}

		utils.Success(w, views)
	}
}
