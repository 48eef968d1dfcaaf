package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"smartwaste-backend/internal/models"
	"smartwaste-backend/internal/store"
)

// TruckService is the fleet inventory surface.
type TruckService struct {
	trucks      store.TruckStore
	assignments store.AssignmentStore

	now func() int64
}

func NewTruckService(trucks store.TruckStore, assignments store.AssignmentStore) *TruckService {
	return &TruckService{
		trucks:      trucks,
		assignments: assignments,
		now:         func() int64 { return time.Now().Unix() },
	}
}

// AddTruck registers a truck. Registration numbers are unique.
func (s *TruckService) AddTruck(ctx context.Context, req models.AddTruckRequest) (*models.Truck, error) {
	if req.RegistrationNumber == "" {
		return nil, fmt.Errorf("registration number is required: %w", ErrUnprocessable)
	}
	if req.CapacityKg <= 0 {
		return nil, fmt.Errorf("capacity must be positive: %w", ErrUnprocessable)
	}
	now := s.now()
	truck := &models.Truck{
		ID:                 uuid.New().String(),
		RegistrationNumber: req.RegistrationNumber,
		CapacityKg:         req.CapacityKg,
		Status:             models.TruckAvailable,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := s.trucks.Create(ctx, truck); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, fmt.Errorf("truck %s already exists: %w", req.RegistrationNumber, ErrConflict)
		}
		return nil, fmt.Errorf("add truck: %w", err)
	}
	return truck, nil
}

// ListTrucks returns trucks, optionally filtered by status or minimum capacity.
func (s *TruckService) ListTrucks(ctx context.Context, filter store.TruckFilter) ([]models.Truck, error) {
	return s.trucks.List(ctx, filter)
}

// GetTruck returns one truck by id.
func (s *TruckService) GetTruck(ctx context.Context, id string) (*models.Truck, error) {
	truck, err := s.trucks.Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("truck %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("get truck: %w", err)
	}
	return truck, nil
}

// DeleteTruck removes a truck from the fleet. A truck with a live collector
// pairing can't be deleted.
func (s *TruckService) DeleteTruck(ctx context.Context, id string) error {
	if _, err := s.assignments.GetByTruck(ctx, id); err == nil {
		return fmt.Errorf("truck %s is assigned to a collector: %w", id, ErrConflict)
	} else if !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("delete truck: %w", err)
	}

	if err := s.trucks.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("truck %s: %w", id, ErrNotFound)
		}
		return fmt.Errorf("delete truck: %w", err)
	}
	return nil
}

// SetTruckStatus moves a truck between AVAILABLE and NEEDS_REPAIR. Leaving
// NEEDS_REPAIR stamps lastMaintenance. IN_SERVICE is owned by the assignment
// flow and can't be set here.
func (s *TruckService) SetTruckStatus(ctx context.Context, id, status string) (*models.Truck, error) {
	if status != models.TruckAvailable && status != models.TruckNeedsRepair {
		return nil, fmt.Errorf("status %q not settable: %w", status, ErrUnprocessable)
	}
	truck, err := s.GetTruck(ctx, id)
	if err != nil {
		return nil, err
	}
	if truck.Status == models.TruckInService {
		return nil, fmt.Errorf("truck %s is in service: %w", id, ErrConflict)
	}

	var lastMaintenance *int64
	if truck.Status == models.TruckNeedsRepair && status == models.TruckAvailable {
		t := s.now()
		lastMaintenance = &t
	}
	// Conditional on the status we just read: if the assignment flow (or
	// anyone else) moved the truck in between, the write loses, not the truck.
	if err := s.trucks.SetStatus(ctx, id, truck.Status, status, lastMaintenance); err != nil {
		switch {
		case errors.Is(err, store.ErrConflict):
			return nil, fmt.Errorf("truck %s changed state: %w", id, ErrConflict)
		case errors.Is(err, store.ErrNotFound):
			return nil, fmt.Errorf("truck %s: %w", id, ErrNotFound)
		default:
			return nil, fmt.Errorf("set truck status: %w", err)
		}
	}
	return s.GetTruck(ctx, id)
}
