package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"smartwaste-backend/internal/services"
	"smartwaste-backend/pkg/utils"
)

// respondServiceError translates the service error taxonomy to HTTP.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		utils.Error(w, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrConflict):
		utils.Error(w, http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrUnauthorized):
		utils.Error(w, http.StatusForbidden, err.Error())
	case errors.Is(err, services.ErrUnprocessable):
		utils.Error(w, http.StatusUnprocessableEntity, err.Error())
	default:
		utils.Error(w, http.StatusInternalServerError, "Internal server error")
	}
}

// queryInt reads an integer query parameter, falling back on absence or junk.
func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
