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

type truckStore struct {
	db *sqlx.DB
}

func (s *truckStore) Get(ctx context.Context, id string) (*models.Truck, error) {
	var truck models.Truck
	err := s.db.GetContext(ctx, &truck, `SELECT * FROM trucks WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get truck: %w", err)
	}
	return &truck, nil
}

func (s *truckStore) GetByRegistration(ctx context.Context, registrationNumber string) (*models.Truck, error) {
	var truck models.Truck
	err := s.db.GetContext(ctx, &truck, `SELECT * FROM trucks WHERE registration_number = $1`, registrationNumber)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get truck by registration: %w", err)
	}
	return &truck, nil
}

func (s *truckStore) List(ctx context.Context, filter store.TruckFilter) ([]models.Truck, error) {
	query := `SELECT * FROM trucks WHERE 1=1`
	args := []interface{}{}
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(` AND status = $%d`, len(args))
	}
	if filter.MinCapacityKg > 0 {
		args = append(args, filter.MinCapacityKg)
		query += fmt.Sprintf(` AND capacity_kg >= $%d`, len(args))
	}
	query += ` ORDER BY registration_number`

	trucks := []models.Truck{}
	if err := s.db.SelectContext(ctx, &trucks, query, args...); err != nil {
		return nil, fmt.Errorf("list trucks: %w", err)
	}
	return trucks, nil
}

func (s *truckStore) Create(ctx context.Context, truck *models.Truck) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO trucks (id, registration_number, capacity_kg, status, last_maintenance, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		truck.ID, truck.RegistrationNumber, truck.CapacityKg, truck.Status,
		truck.LastMaintenance, truck.CreatedAt, truck.UpdatedAt)
	if isUniqueViolation(err) {
		return store.ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("create truck: %w", err)
	}
	return nil
}

func (s *truckStore) Update(ctx context.Context, truck *models.Truck) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE trucks SET registration_number = $1, capacity_kg = $2, status = $3,
			last_maintenance = $4, updated_at = EXTRACT(EPOCH FROM NOW())::BIGINT
		WHERE id = $5`,
		truck.RegistrationNumber, truck.CapacityKg, truck.Status, truck.LastMaintenance, truck.ID)
	if isUniqueViolation(err) {
		return store.ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("update truck: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *truckStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM trucks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete truck: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *truckStore) SetStatus(ctx context.Context, id, fromStatus, toStatus string, lastMaintenance *int64) error {
	query := `UPDATE trucks SET status = $1, updated_at = EXTRACT(EPOCH FROM NOW())::BIGINT
		WHERE id = $2 AND status = $3`
	args := []interface{}{toStatus, id, fromStatus}
	if lastMaintenance != nil {
		query = `UPDATE trucks SET status = $1, last_maintenance = $2,
			updated_at = EXTRACT(EPOCH FROM NOW())::BIGINT WHERE id = $3 AND status = $4`
		args = []interface{}{toStatus, *lastMaintenance, id, fromStatus}
	}
	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("set truck status: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		var exists bool
		if err := s.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM trucks WHERE id = $1)`, id); err != nil {
			return fmt.Errorf("set truck status: %w", err)
		}
		if !exists {
			return store.ErrNotFound
		}
		return store.ErrConflict
	}
	return nil
}

func (s *truckStore) MarkInService(ctx context.Context, id string) error {
	return s.transition(ctx, id, models.TruckAvailable, models.TruckInService)
}

func (s *truckStore) MarkAvailable(ctx context.Context, id string) error {
	return s.transition(ctx, id, models.TruckInService, models.TruckAvailable)
}

func (s *truckStore) transition(ctx context.Context, id, from, to string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE trucks SET status = $1, updated_at = EXTRACT(EPOCH FROM NOW())::BIGINT
		WHERE id = $2 AND status = $3`, to, id, from)
	if err != nil {
		return fmt.Errorf("transition truck status: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		var exists bool
		if err := s.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM trucks WHERE id = $1)`, id); err != nil {
			return fmt.Errorf("transition truck status: %w", err)
		}
		if !exists {
			return store.ErrNotFound
		}
		return store.ErrConflict
	}
	return nil
}

func (s *truckStore) UpdateLocation(ctx context.Context, id string, lat, lng float64) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE trucks SET latitude = $1, longitude = $2, updated_at = EXTRACT(EPOCH FROM NOW())::BIGINT
		WHERE id = $3`, lat, lng, id)
	if err != nil {
		return fmt.Errorf("update truck location: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return store.ErrNotFound
	}
	return nil
}
