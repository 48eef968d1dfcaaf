package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"smartwaste-backend/internal/models"
	"smartwaste-backend/internal/store"
)

const (
	// FillThreshold is the percentage at which a compartment counts as high.
	FillThreshold = 90

	// fillDedupWindow suppresses repeat fill alerts for a bin while an
	// unread one from the last 24 hours still exists.
	fillDedupWindow = 24 * time.Hour

	// notificationTTL is how long an unread notification survives before
	// the cleanup sweep removes it.
	notificationTTL = 7 * 24 * time.Hour
)

// Pusher delivers a realtime event to a connected user. Best effort;
// implementations must not block.
type Pusher interface {
	Push(userID string, event string, payload interface{})
}

// FCMSender is the push-notification boundary. *FCMService satisfies it.
type FCMSender interface {
	SendMulticast(tokens []string, title, body string, data map[string]string) error
	SendRouteAssignedNotification(token, routeID string, totalBins int) error
}

// NotificationService owns the notification rows and their delivery fan-out.
type NotificationService struct {
	notifications store.NotificationStore
	users         store.UserStore
	fcmTokens     store.FCMTokenStore
	push          Pusher
	fcm           FCMSender

	now func() int64
}

func NewNotificationService(notifications store.NotificationStore, users store.UserStore, fcmTokens store.FCMTokenStore, push Pusher, fcm FCMSender) *NotificationService {
	return &NotificationService{
		notifications: notifications,
		users:         users,
		fcmTokens:     fcmTokens,
		push:          push,
		fcm:           fcm,
		now:           func() int64 { return time.Now().Unix() },
	}
}

// NotifyFillLevelHigh records a FILL_LEVEL_HIGH alert for the bin and fans it
// out to the bin owner and every admin. An unread alert for the same bin from
// the last 24 hours suppresses the whole batch; reading (or expiry of) that
// alert re-arms it.
func (s *NotificationService) NotifyFillLevelHigh(ctx context.Context, bin *models.Bin, material string, level int) error {
	now := s.now()

	recent, err := s.notifications.HasRecentUnread(ctx, bin.BinID, models.NotificationFillLevelHigh, now-int64(fillDedupWindow.Seconds()))
	if err != nil {
		return fmt.Errorf("fill alert dedup check: %w", err)
	}
	if recent {
		log.Printf("🔕 Skipping fill alert for bin %s: unread alert within 24h", bin.BinID)
		return nil
	}

	var recipients []models.Notification
	base := models.Notification{
		Type:      models.NotificationFillLevelHigh,
		Title:     "Bin Almost Full",
		Message:   fmt.Sprintf("Bin %s %s compartment reached %d%% (threshold %d%%)", bin.BinID, material, level, FillThreshold),
		BinID:     &bin.BinID,
		Priority:  models.PriorityHigh,
		CreatedAt: now,
		Metadata: models.Metadata{
			"fill_level": level,
			"threshold":  FillThreshold,
			"alert_type": material,
		},
	}
	expires := now + int64(notificationTTL.Seconds())
	base.ExpiresAt = &expires

	if bin.OwnerID != nil {
		n := base
		n.RecipientType = models.RoleOwner
		n.RecipientID = *bin.OwnerID
		recipients = append(recipients, n)
	}
	admins, err := s.users.ListByRole(ctx, models.RoleAdmin)
	if err != nil {
		return fmt.Errorf("fill alert admin fan-out: %w", err)
	}
	for _, admin := range admins {
		n := base
		n.RecipientType = models.RoleAdmin
		n.RecipientID = admin.ID
		recipients = append(recipients, n)
	}

	for i := range recipients {
		recipients[i].ID = uuid.New().String()
		if err := s.notifications.Create(ctx, &recipients[i]); err != nil {
			return fmt.Errorf("create fill alert: %w", err)
		}
		s.deliver(recipients[i])
	}

	log.Printf("🔔 Fill alert for bin %s (%s at %d%%): %d recipients", bin.BinID, material, level, len(recipients))
	return nil
}

// NotifyCollectionScheduled tells the bin owner their bin is on tomorrow's
// route.
func (s *NotificationService) NotifyCollectionScheduled(ctx context.Context, ownerID, binID string, collectionDate time.Time) error {
	now := s.now()
	expires := now + int64(notificationTTL.Seconds())
	n := models.Notification{
		ID:            uuid.New().String(),
		Type:          models.NotificationCollectionDate,
		Title:         "Collection Scheduled",
		Message:       fmt.Sprintf("Your bin %s is scheduled for collection tomorrow (%s)", binID, collectionDate.Format("Mon, 02 Jan 2006")),
		RecipientType: models.RoleOwner,
		RecipientID:   ownerID,
		BinID:         &binID,
		Priority:      models.PriorityMedium,
		CreatedAt:     now,
		ExpiresAt:     &expires,
		Metadata: models.Metadata{
			"collection_date": collectionDate.Format("2006-01-02"),
		},
	}
	if err := s.notifications.Create(ctx, &n); err != nil {
		return fmt.Errorf("create collection notification: %w", err)
	}
	s.deliver(n)
	return nil
}

// NotifyMaintenanceRequestCreated alerts every admin about a new request.
func (s *NotificationService) NotifyMaintenanceRequestCreated(ctx context.Context, req *models.MaintenanceRequest) error {
	admins, err := s.users.ListByRole(ctx, models.RoleAdmin)
	if err != nil {
		return fmt.Errorf("maintenance fan-out: %w", err)
	}
	now := s.now()
	expires := now + int64(notificationTTL.Seconds())
	for _, admin := range admins {
		n := models.Notification{
			ID:                   uuid.New().String(),
			Type:                 models.NotificationMaintenanceRequest,
			Title:                "New Maintenance Request",
			Message:              fmt.Sprintf("Bin %s needs attention: %s", req.BinID, req.Description),
			RecipientType:        models.RoleAdmin,
			RecipientID:          admin.ID,
			BinID:                &req.BinID,
			MaintenanceRequestID: &req.ID,
			Priority:             req.Priority,
			CreatedAt:            now,
			ExpiresAt:            &expires,
			Metadata: models.Metadata{
				"request_type": req.RequestType,
			},
		}
		if err := s.notifications.Create(ctx, &n); err != nil {
			return fmt.Errorf("create maintenance notification: %w", err)
		}
		s.deliver(n)
	}
	return nil
}

// NotifyMaintenanceCompleted tells the requester their request was resolved.
func (s *NotificationService) NotifyMaintenanceCompleted(ctx context.Context, req *models.MaintenanceRequest) error {
	requester, err := s.users.Get(ctx, req.RequesterID)
	if err != nil {
		return fmt.Errorf("maintenance completed recipient: %w", err)
	}
	now := s.now()
	expires := now + int64(notificationTTL.Seconds())
	n := models.Notification{
		ID:                   uuid.New().String(),
		Type:                 models.NotificationMaintenanceCompleted,
		Title:                "Maintenance Completed",
		Message:              fmt.Sprintf("Your maintenance request for bin %s has been completed", req.BinID),
		RecipientType:        requester.Role,
		RecipientID:          requester.ID,
		BinID:                &req.BinID,
		MaintenanceRequestID: &req.ID,
		Priority:             models.PriorityMedium,
		CreatedAt:            now,
		ExpiresAt:            &expires,
	}
	if err := s.notifications.Create(ctx, &n); err != nil {
		return fmt.Errorf("create maintenance completed notification: %w", err)
	}
	s.deliver(n)
	return nil
}

// NotifyRouteAssigned gives the collector a realtime and FCM heads-up about
// their new route. Delivery only, no stored row.
func (s *NotificationService) NotifyRouteAssigned(collectorID, routeID string, totalBins int) {
	if s.push != nil {
		s.push.Push(collectorID, "route_assigned", map[string]interface{}{
			"route_id":   routeID,
			"total_bins": totalBins,
		})
	}
	if s.fcm == nil || s.fcmTokens == nil {
		return
	}
	go func() {
		tokens, err := s.fcmTokens.ListByUser(context.Background(), collectorID)
		if err != nil {
			return
		}
		for _, t := range tokens {
			if err := s.fcm.SendRouteAssignedNotification(t.Token, routeID, totalBins); err != nil {
				log.Printf("⚠️ Route assigned push failed for collector %s: %v", collectorID, err)
			}
		}
	}()
}

// deliver pushes a realtime copy over the websocket hub and, fire-and-forget,
// to the recipient's registered FCM devices. Delivery failures never surface.
func (s *NotificationService) deliver(n models.Notification) {
	if s.push != nil {
		s.push.Push(n.RecipientID, "notification", n)
	}
	if s.fcm == nil || s.fcmTokens == nil {
		return
	}
	go func(n models.Notification) {
		tokens, err := s.fcmTokens.ListByUser(context.Background(), n.RecipientID)
		if err != nil || len(tokens) == 0 {
			return
		}
		values := make([]string, len(tokens))
		for i, t := range tokens {
			values[i] = t.Token
		}
		data := map[string]string{
			"type":            n.Type,
			"notification_id": n.ID,
		}
		if n.BinID != nil {
			data["bin_id"] = *n.BinID
		}
		if err := s.fcm.SendMulticast(values, n.Title, n.Message, data); err != nil {
			log.Printf("⚠️ FCM delivery failed for user %s: %v", n.RecipientID, err)
		}
	}(n)
}

// List returns one page of the user's notifications plus the unpaged total.
func (s *NotificationService) List(ctx context.Context, userID, role string, filter store.NotificationFilter) ([]models.Notification, int, error) {
	notifications, total, err := s.notifications.ListByRecipient(ctx, userID, role, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list notifications: %w", err)
	}
	return notifications, total, nil
}

// UnreadCount returns how many unread notifications the user has.
func (s *NotificationService) UnreadCount(ctx context.Context, userID, role string) (int, error) {
	count, err := s.notifications.CountUnread(ctx, userID, role)
	if err != nil {
		return 0, fmt.Errorf("unread count: %w", err)
	}
	return count, nil
}

// Stats summarizes the user's notification feed.
func (s *NotificationService) Stats(ctx context.Context, userID, role string) (*models.NotificationStats, error) {
	all, _, err := s.notifications.ListByRecipient(ctx, userID, role, store.NotificationFilter{})
	if err != nil {
		return nil, fmt.Errorf("notification stats: %w", err)
	}
	now := s.now()
	dayAgo := now - int64((24 * time.Hour).Seconds())
	weekAgo := now - int64((7 * 24 * time.Hour).Seconds())

	stats := &models.NotificationStats{Total: len(all)}
	for _, n := range all {
		if !n.IsRead {
			stats.Unread++
		}
		if n.Priority == models.PriorityHigh || n.Priority == models.PriorityUrgent {
			stats.HighPriority++
		}
		if n.CreatedAt >= dayAgo {
			stats.Today++
		}
		if n.CreatedAt >= weekAgo {
			stats.Week++
		}
	}
	return stats, nil
}

// MarkRead marks one of the user's notifications read. Reading a FILL_LEVEL_HIGH
// alert re-arms the dedup window for its bin.
func (s *NotificationService) MarkRead(ctx context.Context, userID, role, notificationID string) error {
	n, err := s.notifications.Get(ctx, notificationID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("notification %s: %w", notificationID, ErrNotFound)
		}
		return fmt.Errorf("mark read: %w", err)
	}
	if n.RecipientID != userID || n.RecipientType != role {
		return fmt.Errorf("notification %s: %w", notificationID, ErrUnauthorized)
	}
	if err := s.notifications.MarkRead(ctx, notificationID, s.now()); err != nil {
		return fmt.Errorf("mark read: %w", err)
	}
	return nil
}

// MarkAllRead marks every unread notification of the user read and reports
// how many changed.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID, role string) (int, error) {
	count, err := s.notifications.MarkAllRead(ctx, userID, role, s.now())
	if err != nil {
		return 0, fmt.Errorf("mark all read: %w", err)
	}
	return count, nil
}

// Delete removes the given notifications, skipping any that don't belong to
// the caller.
func (s *NotificationService) Delete(ctx context.Context, userID, role string, ids []string) error {
	owned := make([]string, 0, len(ids))
	for _, id := range ids {
		n, err := s.notifications.Get(ctx, id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				continue
			}
			return fmt.Errorf("delete notifications: %w", err)
		}
		if n.RecipientID == userID && n.RecipientType == role {
			owned = append(owned, id)
		}
	}
	if err := s.notifications.Delete(ctx, owned); err != nil {
		return fmt.Errorf("delete notifications: %w", err)
	}
	return nil
}

// CleanupExpired removes unread notifications whose 7-day expiry has passed.
// Intended to run on a timer from main.
func (s *NotificationService) CleanupExpired(ctx context.Context) (int, error) {
	count, err := s.notifications.DeleteExpiredUnread(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("cleanup expired notifications: %w", err)
	}
	if count > 0 {
		log.Printf("🧹 Removed %d expired unread notifications", count)
	}
	return count, nil
}

// materialLevels pairs each compartment name with its level for edge checks.
func materialLevels(bin *models.Bin) map[string]int {
	return map[string]int{
		"plastic": bin.PlasticLevel,
		"paper":   bin.PaperLevel,
		"glass":   bin.GlassLevel,
	}
}
