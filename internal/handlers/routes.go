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

func CreateRoute(routes *services.RouteService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.CreateRouteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		route, err := routes.CreateRoute(r.Context(), req)
		if err != nil {
			respondServiceError(w, err)
			return
		}

		utils.JSON(w, http.StatusCreated, route)
	}
}

func UpdateRoute(routes *services.RouteService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		var req models.CreateRouteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		route, err := routes.UpdateRoute(r.Context(), id, req)
		if err != nil {
			respondServiceError(w, err)
			return
		}

		utils.Success(w, route)
	}
}

func DeleteRoute(routes *services.RouteService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		if err := routes.DeleteRoute(r.Context(), id); err != nil {
			respondServiceError(w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func GetRoute(routes *services.RouteService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		route, err := routes.GetRoute(r.Context(), id)
		if err != nil {
			respondServiceError(w, err)
			return
		}

		utils.Success(w, route)
	}
}

func ListRoutes(routes *services.RouteService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		all, err := routes.ListRoutes(r.Context())
		if err != nil {
			respondServiceError(w, err)
			return
		}

		utils.Success(w, all)
	}
}

// AssignRoute hands a route to a collector, POST /api/manager/routes/{id}/assign
func AssignRoute(routes *services.RouteService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		var req models.AssignRouteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		route, err := routes.AssignRouteToCollector(r.Context(), id, req.CollectorID)
		if err != nil {
			respondServiceError(w, err)
			return
		}

		utils.Success(w, route)
	}
}

// GetAssignedRoute returns the caller's current route with live bin levels
func GetAssignedRoute(routes *services.RouteService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetUserFromContext(r)
		if !ok {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		route, err := routes.GetAssignedRoute(r.Context(), claims.UserID)
		if err != nil {
			respondServiceError(w, err)
			return
		}

		utils.Success(w, route)
	}
}

func StartRoute(routes *services.RouteService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		claims, ok := middleware.GetUserFromContext(r)
		if !ok {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		route, err := routes.StartRoute(r.Context(), claims.UserID, id)
		if err != nil {
			respondServiceError(w, err)
			return
		}

		utils.Success(w, route)
	}
}

func StopRoute(routes *services.RouteService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		claims, ok := middleware.GetUserFromContext(r)
		if !ok {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		route, err := routes.StopRoute(r.Context(), claims.UserID, id)
		if err != nil {
			respondServiceError(w, err)
			return
		}

		utils.Success(w, route)
	}
}

// MarkBinCollected empties one stop on the caller's running route
func MarkBinCollected(routes *services.RouteService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetUserFromContext(r)
		if !ok {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		var req models.MarkBinCollectedRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		if err := routes.MarkBinCollected(r.Context(), claims.UserID, req.RouteID, req.BinID); err != nil {
			respondServiceError(w, err)
			return
		}

		utils.Success(w, map[string]string{"message": "Bin collected"})
	}
}
