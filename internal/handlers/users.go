package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"smartwaste-backend/internal/models"
	"smartwaste-backend/internal/services"
	"smartwaste-backend/pkg/utils"
)

func CreateUser(auth *services.AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.CreateUserRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		user, err := auth.CreateUser(r.Context(), req)
		if err != nil {
			respondServiceError(w, err)
			return
		}

		utils.JSON(w, http.StatusCreated, user.ToUserResponse())
	}
}

// ListUsers returns accounts by role, e.g. GET /api/manager/users?role=collector
func ListUsers(auth *services.AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		role := r.URL.Query().Get("role")
		if role == "" {
			role = models.RoleOwner
		}

		users, err := auth.ListUsersByRole(r.Context(), role)
		if err != nil {
			respondServiceError(w, err)
			return
		}

		utils.Success(w, users)
	}
}

func DeleteUser(auth *services.AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if id == "" {
			http.Error(w, "Bad Request", http.StatusBadRequest)
			return
		}

		if err := auth.DeleteUser(r.Context(), id); err != nil {
			respondServiceError(w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// AvailableCollectors lists collectors not currently holding a truck
func AvailableCollectors(assignments *services.AssignmentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		collectors, err := assignments.AvailableCollectors(r.Context())
		if err != nil {
			respondServiceError(w, err)
			return
		}

		utils.Success(w, collectors)
	}
}
