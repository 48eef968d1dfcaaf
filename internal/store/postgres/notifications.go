package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"smartwaste-backend/internal/models"
	"smartwaste-backend/internal/store"
)

type notificationStore struct {
	db *sqlx.DB
}

func (s *notificationStore) Create(ctx context.Context, n *models.Notification) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notifications (id, type, title, message, recipient_type, recipient_id,
			bin_id, maintenance_request_id, is_read, priority, created_at, read_at, expires_at, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		n.ID, n.Type, n.Title, n.Message, n.RecipientType, n.RecipientID,
		n.BinID, n.MaintenanceRequestID, n.IsRead, n.Priority, n.CreatedAt,
		n.ReadAt, n.ExpiresAt, n.Metadata)
	if isUniqueViolation(err) {
		return store.ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	return nil
}

func (s *notificationStore) Get(ctx context.Context, id string) (*models.Notification, error) {
	var n models.Notification
	err := s.db.GetContext(ctx, &n, `SELECT * FROM notifications WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get notification: %w", err)
	}
	return &n, nil
}

func (s *notificationStore) ListByRecipient(ctx context.Context, recipientID, recipientType string, filter store.NotificationFilter) ([]models.Notification, int, error) {
	where := `WHERE recipient_id = $1 AND recipient_type = $2`
	args := []interface{}{recipientID, recipientType}
	if filter.IsRead != nil {
		args = append(args, *filter.IsRead)
		where += fmt.Sprintf(` AND is_read = $%d`, len(args))
	}
	if filter.Type != "" {
		args = append(args, filter.Type)
		where += fmt.Sprintf(` AND type = $%d`, len(args))
	}
	if filter.Priority != "" {
		args = append(args, filter.Priority)
		where += fmt.Sprintf(` AND priority = $%d`, len(args))
	}

	var total int
	if err := s.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM notifications `+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count notifications: %w", err)
	}

	query := `SELECT * FROM notifications ` + where + ` ORDER BY created_at DESC, id DESC`
	if filter.Size > 0 {
		args = append(args, filter.Size)
		query += fmt.Sprintf(` LIMIT $%d`, len(args))
		args = append(args, filter.Page*filter.Size)
		query += fmt.Sprintf(` OFFSET $%d`, len(args))
	}

	notifications := []models.Notification{}
	if err := s.db.SelectContext(ctx, &notifications, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list notifications: %w", err)
	}
	return notifications, total, nil
}

func (s *notificationStore) HasRecentUnread(ctx context.Context, binID, notificationType string, createdAfter int64) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists, `
		SELECT EXISTS(
			SELECT 1 FROM notifications
			WHERE bin_id = $1 AND type = $2 AND is_read = FALSE AND created_at >= $3
		)`, binID, notificationType, createdAfter)
	if err != nil {
		return false, fmt.Errorf("check recent unread: %w", err)
	}
	return exists, nil
}

func (s *notificationStore) MarkRead(ctx context.Context, id string, readAt int64) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE notifications SET is_read = TRUE, read_at = $1
		WHERE id = $2 AND is_read = FALSE`, readAt, id)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		// Already read is fine; only a missing row is an error.
		var exists bool
		if err := s.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM notifications WHERE id = $1)`, id); err != nil {
			return fmt.Errorf("mark notification read: %w", err)
		}
		if !exists {
			return store.ErrNotFound
		}
	}
	return nil
}

func (s *notificationStore) MarkAllRead(ctx context.Context, recipientID, recipientType string, readAt int64) (int, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE notifications SET is_read = TRUE, read_at = $1
		WHERE recipient_id = $2 AND recipient_type = $3 AND is_read = FALSE`,
		readAt, recipientID, recipientType)
	if err != nil {
		return 0, fmt.Errorf("mark all notifications read: %w", err)
	}
	rows, _ := result.RowsAffected()
	return int(rows), nil
}

func (s *notificationStore) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := s.db.ExecContext(ctx, `DELETE FROM notifications WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("delete notifications: %w", err)
	}
	return nil
}

func (s *notificationStore) CountUnread(ctx context.Context, recipientID, recipientType string) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM notifications
		WHERE recipient_id = $1 AND recipient_type = $2 AND is_read = FALSE`,
		recipientID, recipientType)
	if err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return count, nil
}

func (s *notificationStore) DeleteExpiredUnread(ctx context.Context, now int64) (int, error) {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM notifications
		WHERE is_read = FALSE AND expires_at IS NOT NULL AND expires_at < $1`, now)
	if err != nil {
		return 0, fmt.Errorf("delete expired notifications: %w", err)
	}
	rows, _ := result.RowsAffected()
	return int(rows), nil
}
