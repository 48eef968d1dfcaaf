package handlers

import (
	"encoding/json"
	"net/http"

	"smartwaste-backend/internal/models"
	"smartwaste-backend/internal/services"
	"smartwaste-backend/pkg/utils"
)

// IngestBinStatus accepts one level snapshot, POST /api/telemetry/bin-status.
// Same path the MQTT listener feeds, for devices posting over HTTP.
func IngestBinStatus(status *services.BinStatusService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var report models.BinLevelReport
		if err := json.NewDecoder(r.Body).Decode(&report); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if report.BinID == "" {
			http.Error(w, "bin_id is required", http.StatusBadRequest)
			return
		}

		if err := status.IngestLevels(r.Context(), report); err != nil {
			respondServiceError(w, err)
			return
		}

		utils.Success(w, map[string]string{"message": "Levels recorded"})
	}
}
