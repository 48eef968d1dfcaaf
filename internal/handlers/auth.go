package handlers

import (
	"encoding/json"
	"net/http"

	"smartwaste-backend/internal/middleware"
	"smartwaste-backend/internal/models"
	"smartwaste-backend/internal/services"
	"smartwaste-backend/pkg/utils"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	OK    bool                 `json:"ok"`
	Token string               `json:"token,omitempty"`
	User  *models.UserResponse `json:"user,omitempty"`
}

func Login(auth *services.AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		token, user, err := auth.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			utils.JSON(w, http.StatusUnauthorized, LoginResponse{OK: false})
			return
		}

		userResponse := user.ToUserResponse()
		utils.JSON(w, http.StatusOK, LoginResponse{
			OK:    true,
			Token: token,
			User:  &userResponse,
		})
	}
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

func ForgotPassword(auth *services.AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ForgotPasswordRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		if err := auth.ForgotPassword(r.Context(), req.Email); err != nil {
			respondServiceError(w, err)
			return
		}

		// Same answer whether or not the account exists
		utils.Success(w, map[string]string{"message": "If the account exists, a reset PIN has been sent"})
	}
}

type ResetPasswordRequest struct {
	Email       string `json:"email"`
	Pin         string `json:"pin"`
	NewPassword string `json:"new_password"`
}

func ResetPassword(auth *services.AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ResetPasswordRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		if err := auth.ResetPassword(r.Context(), req.Email, req.Pin, req.NewPassword); err != nil {
			respondServiceError(w, err)
			return
		}

		utils.Success(w, map[string]string{"message": "Password updated"})
	}
}

type RegisterFCMTokenRequest struct {
	Token      string `json:"token"`
	DeviceType string `json:"device_type"`
}

func RegisterFCMToken(auth *services.AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetUserFromContext(r)
		if !ok {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		var req RegisterFCMTokenRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		if err := auth.RegisterFCMToken(r.Context(), claims.UserID, req.Token, req.DeviceType); err != nil {
			respondServiceError(w, err)
			return
		}

		utils.Success(w, map[string]string{"message": "Token registered"})
	}
}
