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

type maintenanceStore struct {
	db *sqlx.DB
}

func (s *maintenanceStore) Create(ctx context.Context, req *models.MaintenanceRequest) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO maintenance_requests (id, bin_id, requester_id, request_type, description,
			priority, status, notes, assigned_to, created_at, resolved_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		req.ID, req.BinID, req.RequesterID, req.RequestType, req.Description,
		req.Priority, req.Status, req.Notes, req.AssignedTo, req.CreatedAt, req.ResolvedAt)
	if isUniqueViolation(err) {
		return store.ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("create maintenance request: %w", err)
	}
	return nil
}

func (s *maintenanceStore) Get(ctx context.Context, id string) (*models.MaintenanceRequest, error) {
	var req models.MaintenanceRequest
	err := s.db.GetContext(ctx, &req, `SELECT * FROM maintenance_requests WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get maintenance request: %w", err)
	}
	return &req, nil
}

func (s *maintenanceStore) Update(ctx context.Context, req *models.MaintenanceRequest) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE maintenance_requests SET status = $1, notes = $2, assigned_to = $3, resolved_at = $4
		WHERE id = $5`,
		req.Status, req.Notes, req.AssignedTo, req.ResolvedAt, req.ID)
	if err != nil {
		return fmt.Errorf("update maintenance request: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *maintenanceStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM maintenance_requests WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete maintenance request: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *maintenanceStore) List(ctx context.Context, filter store.MaintenanceFilter) ([]models.MaintenanceRequest, int, error) {
	where := `WHERE 1=1`
	args := []interface{}{}
	if filter.Status != "" {
		args = append(args, filter.Status)
		where += fmt.Sprintf(` AND status = $%d`, len(args))
	}
	if filter.BinID != "" {
		args = append(args, filter.BinID)
		where += fmt.Sprintf(` AND bin_id = $%d`, len(args))
	}
	if filter.RequesterID != "" {
		args = append(args, filter.RequesterID)
		where += fmt.Sprintf(` AND requester_id = $%d`, len(args))
	}

	var total int
	if err := s.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM maintenance_requests `+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count maintenance requests: %w", err)
	}

	query := `SELECT * FROM maintenance_requests ` + where + ` ORDER BY created_at DESC`
	if filter.Size > 0 {
		args = append(args, filter.Size)
		query += fmt.Sprintf(` LIMIT $%d`, len(args))
		args = append(args, filter.Page*filter.Size)
		query += fmt.Sprintf(` OFFSET $%d`, len(args))
	}

	requests := []models.MaintenanceRequest{}
	if err := s.db.SelectContext(ctx, &requests, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list maintenance requests: %w", err)
	}
	return requests, total, nil
}
