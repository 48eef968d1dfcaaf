package services

import (
	"context"
	"errors"
	"fmt"

	"smartwaste-backend/internal/models"
	"smartwaste-backend/internal/store"
)

// TrackingService answers "which truck is coming for this bin" by walking
// the live relationship chain, recomputed on every call: route containing
// the bin (running first, then assigned), its collector, the collector's
// truck pairing, the truck. Any broken link means the bin is not tracked.
type TrackingService struct {
	routes      store.RouteStore
	assignments store.AssignmentStore
	trucks      store.TruckStore
}

func NewTrackingService(routes store.RouteStore, assignments store.AssignmentStore, trucks store.TruckStore) *TrackingService {
	return &TrackingService{
		routes:      routes,
		assignments: assignments,
		trucks:      trucks,
	}
}

// ResolveTruckForBin returns the truck currently headed for the bin.
// A route IN_PROGRESS wins over one merely ASSIGNED.
func (s *TrackingService) ResolveTruckForBin(ctx context.Context, binID string) (*models.Truck, error) {
	route, err := s.routes.FindByStopAndStatus(ctx, binID, models.RouteInProgress)
	if errors.Is(err, store.ErrNotFound) {
		route, err = s.routes.FindByStopAndStatus(ctx, binID, models.RouteAssigned)
	}
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("bin %s is not on an active route: %w", binID, ErrNotFound)
		}
		return nil, fmt.Errorf("resolve truck: %w", err)
	}
	if route.AssignedToID == nil {
		return nil, fmt.Errorf("route %s has no collector: %w", route.ID, ErrNotFound)
	}

	assignment, err := s.assignments.GetByCollector(ctx, *route.AssignedToID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("collector %s holds no truck: %w", *route.AssignedToID, ErrNotFound)
		}
		return nil, fmt.Errorf("resolve truck: %w", err)
	}

	truck, err := s.trucks.Get(ctx, assignment.TruckID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("truck %s: %w", assignment.TruckID, ErrNotFound)
		}
		return nil, fmt.Errorf("resolve truck: %w", err)
	}
	return truck, nil
}

// UpdateTruckLocation stores a GPS ping from the collector driving the truck.
func (s *TrackingService) UpdateTruckLocation(ctx context.Context, collectorID string, lat, lng float64) (*models.Truck, error) {
	assignment, err := s.assignments.GetByCollector(ctx, collectorID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("collector %s holds no truck: %w", collectorID, ErrNotFound)
		}
		return nil, fmt.Errorf("update truck location: %w", err)
	}
	if err := s.trucks.UpdateLocation(ctx, assignment.TruckID, lat, lng); err != nil {
		return nil, fmt.Errorf("update truck location: %w", err)
	}
	return s.trucks.Get(ctx, assignment.TruckID)
}
