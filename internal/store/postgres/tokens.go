package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"smartwaste-backend/internal/models"
	"smartwaste-backend/internal/store"
)

type resetTokenStore struct {
	db *sqlx.DB
}

func (s *resetTokenStore) Create(ctx context.Context, token *models.PasswordResetToken) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO password_reset_tokens (id, user_id, pin, expires_at, used, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		token.ID, token.UserID, token.Pin, token.ExpiresAt, token.Used, token.CreatedAt)
	if isUniqueViolation(err) {
		return store.ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("create reset token: %w", err)
	}
	return nil
}

func (s *resetTokenStore) GetActive(ctx context.Context, userID, pin string, now int64) (*models.PasswordResetToken, error) {
	var token models.PasswordResetToken
	err := s.db.GetContext(ctx, &token, `
		SELECT * FROM password_reset_tokens
		WHERE user_id = $1 AND pin = $2 AND used = FALSE AND expires_at >= $3
		ORDER BY created_at DESC
		LIMIT 1`, userID, pin, now)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get active reset token: %w", err)
	}
	return &token, nil
}

func (s *resetTokenStore) MarkUsed(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `UPDATE password_reset_tokens SET used = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("mark reset token used: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return store.ErrNotFound
	}
	return nil
}

type fcmTokenStore struct {
	db *sqlx.DB
}

func (s *fcmTokenStore) Save(ctx context.Context, token *models.FCMToken) error {
	err := s.db.GetContext(ctx, &token.ID, `
		INSERT INTO fcm_tokens (user_id, token, device_type, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (token) DO UPDATE
			SET user_id = EXCLUDED.user_id,
				device_type = EXCLUDED.device_type,
				updated_at = EXCLUDED.updated_at
		RETURNING id`,
		token.UserID, token.Token, token.DeviceType, token.CreatedAt, token.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save fcm token: %w", err)
	}
	return nil
}

func (s *fcmTokenStore) ListByUser(ctx context.Context, userID string) ([]models.FCMToken, error) {
	tokens := []models.FCMToken{}
	err := s.db.SelectContext(ctx, &tokens, `SELECT * FROM fcm_tokens WHERE user_id = $1 ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list fcm tokens: %w", err)
	}
	return tokens, nil
}
