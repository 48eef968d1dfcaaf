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

type binStore struct {
	db *sqlx.DB
}

func (s *binStore) Get(ctx context.Context, binID string) (*models.Bin, error) {
	var bin models.Bin
	err := s.db.GetContext(ctx, &bin, `SELECT * FROM bins WHERE bin_id = $1`, binID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get bin: %w", err)
	}
	return &bin, nil
}

func (s *binStore) List(ctx context.Context, filter store.BinFilter) ([]models.Bin, error) {
	query := `SELECT * FROM bins WHERE 1=1`
	args := []interface{}{}
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(` AND status = $%d`, len(args))
	}
	if filter.OwnerID != "" {
		args = append(args, filter.OwnerID)
		query += fmt.Sprintf(` AND owner_id = $%d`, len(args))
	}
	query += ` ORDER BY bin_id`

	bins := []models.Bin{}
	if err := s.db.SelectContext(ctx, &bins, query, args...); err != nil {
		return nil, fmt.Errorf("list bins: %w", err)
	}
	return bins, nil
}

func (s *binStore) Create(ctx context.Context, bin *models.Bin) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO bins (bin_id, status, plastic_level, paper_level, glass_level, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		bin.BinID, bin.Status, bin.PlasticLevel, bin.PaperLevel, bin.GlassLevel, bin.CreatedAt, bin.UpdatedAt)
	if isUniqueViolation(err) {
		return store.ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("create bin: %w", err)
	}
	return nil
}

func (s *binStore) Delete(ctx context.Context, binID string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM bins WHERE bin_id = $1`, binID)
	if err != nil {
		return fmt.Errorf("delete bin: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *binStore) UpdateLocation(ctx context.Context, binID string, lat, lng float64) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE bins SET latitude = $1, longitude = $2, updated_at = EXTRACT(EPOCH FROM NOW())::BIGINT
		WHERE bin_id = $3`, lat, lng, binID)
	if err != nil {
		return fmt.Errorf("update bin location: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *binStore) SetStatus(ctx context.Context, binID, status string) error {
	query := `UPDATE bins SET status = $1, updated_at = EXTRACT(EPOCH FROM NOW())::BIGINT WHERE bin_id = $2`
	if status == models.BinAvailable {
		query = `UPDATE bins SET status = $1, owner_id = NULL, assigned_date = NULL,
			updated_at = EXTRACT(EPOCH FROM NOW())::BIGINT WHERE bin_id = $2`
	}
	result, err := s.db.ExecContext(ctx, query, status, binID)
	if err != nil {
		return fmt.Errorf("set bin status: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *binStore) AssignOwner(ctx context.Context, binID, ownerID string, assignedDate int64) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE bins SET status = $1, owner_id = $2, assigned_date = $3,
			updated_at = EXTRACT(EPOCH FROM NOW())::BIGINT
		WHERE bin_id = $4 AND status = $5`,
		models.BinAssigned, ownerID, assignedDate, binID, models.BinAvailable)
	if err != nil {
		return fmt.Errorf("assign bin owner: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		// Zero rows: either the bin doesn't exist or someone else claimed it.
		var exists bool
		if err := s.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM bins WHERE bin_id = $1)`, binID); err != nil {
			return fmt.Errorf("assign bin owner: %w", err)
		}
		if !exists {
			return store.ErrNotFound
		}
		return store.ErrConflict
	}
	return nil
}

func (s *binStore) UpdateLevels(ctx context.Context, binID string, plastic, paper, glass int) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE bins SET plastic_level = $1, paper_level = $2, glass_level = $3,
			updated_at = EXTRACT(EPOCH FROM NOW())::BIGINT
		WHERE bin_id = $4`, plastic, paper, glass, binID)
	if err != nil {
		return fmt.Errorf("update bin levels: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *binStore) ResetLevels(ctx context.Context, binID string, emptiedAt int64) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE bins SET plastic_level = 0, paper_level = 0, glass_level = 0,
			last_emptied_at = $1, updated_at = EXTRACT(EPOCH FROM NOW())::BIGINT
		WHERE bin_id = $2`, emptiedAt, binID)
	if err != nil {
		return fmt.Errorf("reset bin levels: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *binStore) ListHighFill(ctx context.Context, threshold int) ([]models.Bin, error) {
	bins := []models.Bin{}
	err := s.db.SelectContext(ctx, &bins, `
		SELECT * FROM bins
		WHERE plastic_level >= $1 OR paper_level >= $1 OR glass_level >= $1
		ORDER BY bin_id`, threshold)
	if err != nil {
		return nil, fmt.Errorf("list high fill bins: %w", err)
	}
	return bins, nil
}
