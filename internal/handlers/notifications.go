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

// ListNotifications supports ?is_read=, ?type=, ?priority=, ?page=, ?size=
func ListNotifications(notifications *services.NotificationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetUserFromContext(r)
		if !ok {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		filter := store.NotificationFilter{
			Type:     r.URL.Query().Get("type"),
			Priority: r.URL.Query().Get("priority"),
			Page:     queryInt(r, "page", 0),
			Size:     queryInt(r, "size", 20),
		}
		if raw := r.URL.Query().Get("is_read"); raw != "" {
			isRead := raw == "true"
			filter.IsRead = &isRead
		}

		items, total, err := notifications.List(r.Context(), claims.UserID, claims.Role, filter)
		if err != nil {
			respondServiceError(w, err)
			return
		}

		utils.Success(w, map[string]interface{}{
			"notifications": items,
			"total":         total,
			"page":          filter.Page,
			"size":          filter.Size,
		})
	}
}

func UnreadNotificationCount(notifications *services.NotificationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetUserFromContext(r)
		if !ok {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		count, err := notifications.UnreadCount(r.Context(), claims.UserID, claims.Role)
		if err != nil {
			respondServiceError(w, err)
			return
		}

		utils.Success(w, map[string]int{"unread_count": count})
	}
}

func NotificationStats(notifications *services.NotificationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetUserFromContext(r)
		if !ok {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		stats, err := notifications.Stats(r.Context(), claims.UserID, claims.Role)
		if err != nil {
			respondServiceError(w, err)
			return
		}

		utils.Success(w, stats)
	}
}

func MarkNotificationRead(notifications *services.NotificationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		claims, ok := middleware.GetUserFromContext(r)
		if !ok {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		if err := notifications.MarkRead(r.Context(), claims.UserID, claims.Role, id); err != nil {
			respondServiceError(w, err)
			return
		}

		utils.Success(w, map[string]string{"message": "Marked as read"})
	}
}

func MarkAllNotificationsRead(notifications *services.NotificationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetUserFromContext(r)
		if !ok {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		count, err := notifications.MarkAllRead(r.Context(), claims.UserID, claims.Role)
		if err != nil {
			respondServiceError(w, err)
			return
		}

		utils.Success(w, map[string]int{"marked_read": count})
	}
}

func DeleteNotifications(notifications *services.NotificationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetUserFromContext(r)
		if !ok {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		var req models.DeleteNotificationsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.IDs) == 0 {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		if err := notifications.Delete(r.Context(), claims.UserID, claims.Role, req.IDs); err != nil {
			respondServiceError(w, err)
			return
		}

		utils.Success(w, map[string]string{"message": "Deleted"})
	}
}
