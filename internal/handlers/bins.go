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

func AddBin(status *services.BinStatusService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.AddBinRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		bin, err := status.AddBin(r.Context(), req.BinID)
		if err != nil {
			respondServiceError(w, err)
			return
		}

		utils.JSON(w, http.StatusCreated, bin.ToBinResponse())
	}
}

// ListBins supports ?status= and ?owner_id= filters
func ListBins(status *services.BinStatusService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter := store.BinFilter{
			Status:  r.URL.Query().Get("status"),
			OwnerID: r.URL.Query().Get("owner_id"),
		}

		bins, err := status.ListBins(r.Context(), filter)
		if err != nil {
			respondServiceError(w, err)
			return
		}

		responses := make([]models.BinResponse, len(bins))
		for i := range bins {
			responses[i] = bins[i].ToBinResponse()
		}
		utils.Success(w, responses)
	}
}

// MyBins returns the caller's assigned bins
func MyBins(status *services.BinStatusService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetUserFromContext(r)
		if !ok {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		bins, err := status.ListBins(r.Context(), store.BinFilter{
			Status:  models.BinAssigned,
			OwnerID: claims.UserID,
		})
		if err != nil {
			respondServiceError(w, err)
			return
		}

		responses := make([]models.BinResponse, len(bins))
		for i := range bins {
			responses[i] = bins[i].ToBinResponse()
		}
		utils.Success(w, responses)
	}
}

func GetBinStatus(status *services.BinStatusService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		claims, ok := middleware.GetUserFromContext(r)
		if !ok {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		bin, err := status.GetBinStatus(r.Context(), id, claims.UserID, claims.Role)
		if err != nil {
			respondServiceError(w, err)
			return
		}

		utils.Success(w, bin.ToBinResponse())
	}
}

func UpdateBinLocation(status *services.BinStatusService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		var req models.BinLocationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		if err := status.UpdateBinLocation(r.Context(), id, req.Latitude, req.Longitude); err != nil {
			respondServiceError(w, err)
			return
		}

		utils.Success(w, map[string]string{"message": "Location updated"})
	}
}

func DeleteBin(status *services.BinStatusService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		if err := status.DeleteBin(r.Context(), id); err != nil {
			respondServiceError(w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// AssignBin pairs a bin with an owner, POST /api/manager/bins/{id}/assign
func AssignBin(assignments *services.AssignmentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		var req models.AssignBinRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		bin, err := assignments.AssignBinToOwner(r.Context(), id, req.OwnerID)
		if err != nil {
			respondServiceError(w, err)
			return
		}

		utils.Success(w, bin.ToBinResponse())
	}
}

// ReleaseBin returns a bin to the available pool
func ReleaseBin(assignments *services.AssignmentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		if err := assignments.ReleaseBin(r.Context(), id); err != nil {
			respondServiceError(w, err)
			return
		}

		utils.Success(w, map[string]string{"message": "Bin released"})
	}
}
