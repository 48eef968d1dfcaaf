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

// AssignmentService coordinates the two exclusive pairings in the fleet:
// bin to owner and truck to collector. Both commit through conditional store
// operations, so concurrent requests for the same resource produce exactly
// one winner; the losers get ErrConflict.
type AssignmentService struct {
	bins        store.BinStore
	trucks      store.TruckStore
	assignments store.AssignmentStore
	users       store.UserStore

	now func() int64
}

func NewAssignmentService(bins store.BinStore, trucks store.TruckStore, assignments store.AssignmentStore, users store.UserStore) *AssignmentService {
	return &AssignmentService{
		bins:        bins,
		trucks:      trucks,
		assignments: assignments,
		users:       users,
		now:         func() int64 { return time.Now().Unix() },
	}
}

// AssignBinToOwner claims an AVAILABLE bin for the owner. A bin already
// ASSIGNED (or claimed by a concurrent request) yields ErrConflict.
func (s *AssignmentService) AssignBinToOwner(ctx context.Context, binID, ownerID string) (*models.Bin, error) {
	owner, err := s.users.Get(ctx, ownerID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("owner %s: %w", ownerID, ErrNotFound)
		}
		return nil, fmt.Errorf("assign bin: %w", err)
	}
	if owner.Role != models.RoleOwner {
		return nil, fmt.Errorf("user %s is not an owner: %w", ownerID, ErrUnprocessable)
	}

	if err := s.bins.AssignOwner(ctx, binID, ownerID, s.now()); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			return nil, fmt.Errorf("bin %s: %w", binID, ErrNotFound)
		case errors.Is(err, store.ErrConflict):
			return nil, fmt.Errorf("bin %s is not available: %w", binID, ErrConflict)
		default:
			return nil, fmt.Errorf("assign bin: %w", err)
		}
	}

	log.Printf("✅ Bin %s assigned to owner %s", binID, ownerID)
	return s.bins.Get(ctx, binID)
}

// ReleaseBin returns an assigned bin to the AVAILABLE pool.
func (s *AssignmentService) ReleaseBin(ctx context.Context, binID string) error {
	if err := s.bins.SetStatus(ctx, binID, models.BinAvailable); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("bin %s: %w", binID, ErrNotFound)
		}
		return fmt.Errorf("release bin: %w", err)
	}
	return nil
}

// AssignTruckToCollector pairs an AVAILABLE truck with a collector who holds
// no truck. The insert into the assignment table is the commit point: its
// unique constraints on collector and truck make one of two concurrent
// requests lose cleanly.
func (s *AssignmentService) AssignTruckToCollector(ctx context.Context, registrationNumber, collectorID string) (*models.TruckAssignment, error) {
	collector, err := s.users.Get(ctx, collectorID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("collector %s: %w", collectorID, ErrNotFound)
		}
		return nil, fmt.Errorf("assign truck: %w", err)
	}
	if collector.Role != models.RoleCollector {
		return nil, fmt.Errorf("user %s is not a collector: %w", collectorID, ErrUnprocessable)
	}

	truck, err := s.trucks.GetByRegistration(ctx, registrationNumber)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("truck %s: %w", registrationNumber, ErrNotFound)
		}
		return nil, fmt.Errorf("assign truck: %w", err)
	}
	if truck.Status != models.TruckAvailable {
		return nil, fmt.Errorf("truck %s is %s: %w", registrationNumber, truck.Status, ErrConflict)
	}

	assignment := &models.TruckAssignment{
		ID:           uuid.New().String(),
		TruckID:      truck.ID,
		CollectorID:  collectorID,
		AssignedDate: s.now(),
	}
	if err := s.assignments.Create(ctx, assignment); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, fmt.Errorf("truck or collector already paired: %w", ErrConflict)
		}
		return nil, fmt.Errorf("assign truck: %w", err)
	}

	// The pairing exists; flip the truck. If a racer moved the truck out of
	// AVAILABLE in between, back the pairing out and report the conflict.
	if err := s.trucks.MarkInService(ctx, truck.ID); err != nil {
		if delErr := s.assignments.Delete(ctx, assignment.ID); delErr != nil {
			log.Printf("⚠️ Failed to roll back assignment %s: %v", assignment.ID, delErr)
		}
		if errors.Is(err, store.ErrConflict) {
			return nil, fmt.Errorf("truck %s is no longer available: %w", registrationNumber, ErrConflict)
		}
		return nil, fmt.Errorf("assign truck: %w", err)
	}

	log.Printf("✅ Truck %s assigned to collector %s", registrationNumber, collectorID)
	return assignment, nil
}

// HandOverTruck ends the collector's pairing and returns the truck to the
// AVAILABLE pool. The registration number must match the truck they hold.
func (s *AssignmentService) HandOverTruck(ctx context.Context, collectorID, registrationNumber string) error {
	assignment, err := s.assignments.GetByCollector(ctx, collectorID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("collector %s holds no truck: %w", collectorID, ErrNotFound)
		}
		return fmt.Errorf("hand over truck: %w", err)
	}

	truck, err := s.trucks.Get(ctx, assignment.TruckID)
	if err != nil {
		return fmt.Errorf("hand over truck: %w", err)
	}
	if truck.RegistrationNumber != registrationNumber {
		return fmt.Errorf("collector %s does not hold truck %s: %w", collectorID, registrationNumber, ErrNotFound)
	}

	// Flipping the truck back is the commit point: a truck no longer
	// IN_SERVICE (repair flow, concurrent hand-over) fails here and the
	// pairing stays untouched.
	if err := s.trucks.MarkAvailable(ctx, truck.ID); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return fmt.Errorf("truck %s is not in service: %w", registrationNumber, ErrConflict)
		}
		return fmt.Errorf("hand over truck: %w", err)
	}

	if err := s.assignments.Delete(ctx, assignment.ID); err != nil && !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("hand over truck: %w", err)
	}

	log.Printf("✅ Truck %s handed over by collector %s", registrationNumber, collectorID)
	return nil
}

// ListAssignments returns every live pairing joined with its truck and
// collector records.
func (s *AssignmentService) ListAssignments(ctx context.Context) ([]models.TruckAssignmentView, error) {
	assignments, err := s.assignments.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	views := make([]models.TruckAssignmentView, 0, len(assignments))
	for _, assignment := range assignments {
		truck, err := s.trucks.Get(ctx, assignment.TruckID)
		if err != nil {
			return nil, fmt.Errorf("list assignments: %w", err)
		}
		collector, err := s.users.Get(ctx, assignment.CollectorID)
		if err != nil {
			return nil, fmt.Errorf("list assignments: %w", err)
		}
		views = append(views, models.TruckAssignmentView{
			Truck:        *truck,
			Collector:    collector.ToUserResponse(),
			AssignedDate: assignment.AssignedDate,
		})
	}
	return views, nil
}

// AvailableCollectors returns collectors who currently hold no truck.
func (s *AssignmentService) AvailableCollectors(ctx context.Context) ([]models.UserResponse, error) {
	collectors, err := s.users.ListByRole(ctx, models.RoleCollector)
	if err != nil {
		return nil, fmt.Errorf("available collectors: %w", err)
	}
	out := make([]models.UserResponse, 0, len(collectors))
	for _, collector := range collectors {
		_, err := s.assignments.GetByCollector(ctx, collector.ID)
		if errors.Is(err, store.ErrNotFound) {
			out = append(out, collector.ToUserResponse())
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("available collectors: %w", err)
		}
	}
	return out, nil
}
