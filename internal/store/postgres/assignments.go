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

type assignmentStore struct {
	db *sqlx.DB
}

func (s *assignmentStore) Create(ctx context.Context, assignment *models.TruckAssignment) error {
	// The unique indexes on collector_id and truck_id reject a second live
	// pairing for either side, whichever concurrent insert commits last.
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO truck_assignments (id, truck_id, collector_id, assigned_date)
		VALUES ($1, $2, $3, $4)`,
		assignment.ID, assignment.TruckID, assignment.CollectorID, assignment.AssignedDate)
	if isUniqueViolation(err) {
		return store.ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("create truck assignment: %w", err)
	}
	return nil
}

func (s *assignmentStore) GetByCollector(ctx context.Context, collectorID string) (*models.TruckAssignment, error) {
	var assignment models.TruckAssignment
	err := s.db.GetContext(ctx, &assignment, `SELECT * FROM truck_assignments WHERE collector_id = $1`, collectorID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get assignment by collector: %w", err)
	}
	return &assignment, nil
}

func (s *assignmentStore) GetByTruck(ctx context.Context, truckID string) (*models.TruckAssignment, error) {
	var assignment models.TruckAssignment
	err := s.db.GetContext(ctx, &assignment, `SELECT * FROM truck_assignments WHERE truck_id = $1`, truckID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get assignment by truck: %w", err)
	}
	return &assignment, nil
}

func (s *assignmentStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM truck_assignments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete truck assignment: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *assignmentStore) List(ctx context.Context) ([]models.TruckAssignment, error) {
	assignments := []models.TruckAssignment{}
	err := s.db.SelectContext(ctx, &assignments, `SELECT * FROM truck_assignments ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list truck assignments: %w", err)
	}
	return assignments, nil
}
