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

// RouteService owns the collection route lifecycle:
// CREATED -> ASSIGNED -> IN_PROGRESS -> COMPLETED, with edits resetting an
// unstarted route back to CREATED. Stops snapshot bin coordinates at build
// time and keep a stable 1-based order.
type RouteService struct {
	routes   store.RouteStore
	bins     store.BinStore
	users    store.UserStore
	notifier *NotificationService

	now func() int64
}

func NewRouteService(routes store.RouteStore, bins store.BinStore, users store.UserStore, notifier *NotificationService) *RouteService {
	return &RouteService{
		routes:   routes,
		bins:     bins,
		users:    users,
		notifier: notifier,
		now:      func() int64 { return time.Now().Unix() },
	}
}

// buildStops resolves every bin id into a stop with snapshot coordinates.
// One unresolvable bin aborts the whole build.
func (s *RouteService) buildStops(ctx context.Context, routeID string, binIDs []string) ([]models.RouteStop, error) {
	stops := make([]models.RouteStop, 0, len(binIDs))
	for i, binID := range binIDs {
		bin, err := s.bins.Get(ctx, binID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, fmt.Errorf("stop %d: bin %s: %w", i+1, binID, ErrUnprocessable)
			}
			return nil, fmt.Errorf("build stops: %w", err)
		}
		stops = append(stops, models.RouteStop{
			RouteID:   routeID,
			BinID:     bin.BinID,
			StopOrder: i + 1,
			Latitude:  bin.Latitude,
			Longitude: bin.Longitude,
		})
	}
	return stops, nil
}

// CreateRoute builds a new route in CREATED state.
func (s *RouteService) CreateRoute(ctx context.Context, req models.CreateRouteRequest) (*models.Route, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("route name is required: %w", ErrUnprocessable)
	}
	if len(req.BinIDs) == 0 {
		return nil, fmt.Errorf("route needs at least one bin: %w", ErrUnprocessable)
	}

	route := &models.Route{
		ID:          uuid.New().String(),
		Name:        req.Name,
		Status:      models.RouteCreated,
		DateCreated: s.now(),
	}
	stops, err := s.buildStops(ctx, route.ID, req.BinIDs)
	if err != nil {
		return nil, err
	}
	route.Stops = stops

	if err := s.routes.Create(ctx, route); err != nil {
		return nil, fmt.Errorf("create route: %w", err)
	}
	log.Printf("✅ Route %s created with %d stops", route.ID, len(stops))
	return route, nil
}

// UpdateRoute rebuilds the name and stop list. The route drops back to
// CREATED and loses its assignment; a route already IN_PROGRESS can't be
// edited.
func (s *RouteService) UpdateRoute(ctx context.Context, routeID string, req models.CreateRouteRequest) (*models.Route, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("route name is required: %w", ErrUnprocessable)
	}
	if len(req.BinIDs) == 0 {
		return nil, fmt.Errorf("route needs at least one bin: %w", ErrUnprocessable)
	}
	stops, err := s.buildStops(ctx, routeID, req.BinIDs)
	if err != nil {
		return nil, err
	}

	if err := s.routes.Rebuild(ctx, routeID, req.Name, stops); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			return nil, fmt.Errorf("route %s: %w", routeID, ErrNotFound)
		case errors.Is(err, store.ErrConflict):
			return nil, fmt.Errorf("route %s is in progress: %w", routeID, ErrConflict)
		default:
			return nil, fmt.Errorf("update route: %w", err)
		}
	}
	return s.GetRoute(ctx, routeID)
}

// DeleteRoute removes a CREATED or COMPLETED route.
func (s *RouteService) DeleteRoute(ctx context.Context, routeID string) error {
	if err := s.routes.Delete(ctx, routeID); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			return fmt.Errorf("route %s: %w", routeID, ErrNotFound)
		case errors.Is(err, store.ErrConflict):
			return fmt.Errorf("route %s is assigned or in progress: %w", routeID, ErrConflict)
		default:
			return fmt.Errorf("delete route: %w", err)
		}
	}
	return nil
}

// GetRoute returns one route with its stops.
func (s *RouteService) GetRoute(ctx context.Context, routeID string) (*models.Route, error) {
	route, err := s.routes.Get(ctx, routeID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("route %s: %w", routeID, ErrNotFound)
		}
		return nil, fmt.Errorf("get route: %w", err)
	}
	return route, nil
}

// ListRoutes returns every route, newest first.
func (s *RouteService) ListRoutes(ctx context.Context) ([]models.Route, error) {
	return s.routes.List(ctx)
}

// AssignRouteToCollector hands a route to a collector. Reassigning an
// ASSIGNED route is allowed; a route IN_PROGRESS is not. Owners of the bins
// on the route get a collection notification for tomorrow; those are best
// effort and never fail the assignment.
func (s *RouteService) AssignRouteToCollector(ctx context.Context, routeID, collectorID string) (*models.Route, error) {
	collector, err := s.users.Get(ctx, collectorID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("collector %s: %w", collectorID, ErrNotFound)
		}
		return nil, fmt.Errorf("assign route: %w", err)
	}
	if collector.Role != models.RoleCollector {
		return nil, fmt.Errorf("user %s is not a collector: %w", collectorID, ErrUnprocessable)
	}

	if err := s.routes.Assign(ctx, routeID, collectorID); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			return nil, fmt.Errorf("route %s: %w", routeID, ErrNotFound)
		case errors.Is(err, store.ErrConflict):
			return nil, fmt.Errorf("route %s is in progress: %w", routeID, ErrConflict)
		default:
			return nil, fmt.Errorf("assign route: %w", err)
		}
	}

	route, err := s.GetRoute(ctx, routeID)
	if err != nil {
		return nil, err
	}

	s.notifyOwnersOfCollection(ctx, route)
	if s.notifier != nil {
		s.notifier.NotifyRouteAssigned(collectorID, route.ID, len(route.Stops))
	}

	log.Printf("✅ Route %s assigned to collector %s", routeID, collectorID)
	return route, nil
}

// notifyOwnersOfCollection tells each stop's bin owner that collection is
// scheduled for tomorrow. Failures are logged and swallowed.
func (s *RouteService) notifyOwnersOfCollection(ctx context.Context, route *models.Route) {
	if s.notifier == nil {
		return
	}
	tomorrow := time.Unix(s.now(), 0).AddDate(0, 0, 1)
	for _, stop := range route.Stops {
		bin, err := s.bins.Get(ctx, stop.BinID)
		if err != nil || bin.OwnerID == nil {
			continue
		}
		if err := s.notifier.NotifyCollectionScheduled(ctx, *bin.OwnerID, bin.BinID, tomorrow); err != nil {
			log.Printf("⚠️ Collection notification for bin %s failed: %v", bin.BinID, err)
		}
	}
}

// StartRoute moves the collector's ASSIGNED route to IN_PROGRESS.
func (s *RouteService) StartRoute(ctx context.Context, collectorID, routeID string) (*models.Route, error) {
	if err := s.routes.Start(ctx, routeID, collectorID, s.now()); err != nil {
		return nil, s.diagnoseTransition(ctx, routeID, collectorID, err, "start")
	}
	return s.GetRoute(ctx, routeID)
}

// StopRoute completes the collector's IN_PROGRESS route.
func (s *RouteService) StopRoute(ctx context.Context, collectorID, routeID string) (*models.Route, error) {
	if err := s.routes.Complete(ctx, routeID, collectorID, s.now()); err != nil {
		return nil, s.diagnoseTransition(ctx, routeID, collectorID, err, "complete")
	}
	return s.GetRoute(ctx, routeID)
}

// diagnoseTransition turns a failed conditional transition into the precise
// service error: missing route, wrong collector, or wrong state.
func (s *RouteService) diagnoseTransition(ctx context.Context, routeID, collectorID string, err error, verb string) error {
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("route %s: %w", routeID, ErrNotFound)
	}
	if !errors.Is(err, store.ErrConflict) {
		return fmt.Errorf("%s route: %w", verb, err)
	}
	route, getErr := s.routes.Get(ctx, routeID)
	if getErr != nil {
		return fmt.Errorf("route %s: %w", routeID, ErrNotFound)
	}
	if route.AssignedToID == nil || *route.AssignedToID != collectorID {
		return fmt.Errorf("route %s is not yours: %w", routeID, ErrUnauthorized)
	}
	return fmt.Errorf("route %s is %s, cannot %s: %w", routeID, route.Status, verb, ErrConflict)
}

// MarkBinCollected empties one bin on the collector's running route: all
// levels drop to zero and lastEmptiedAt is stamped.
func (s *RouteService) MarkBinCollected(ctx context.Context, collectorID, routeID, binID string) error {
	route, err := s.routes.Get(ctx, routeID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("route %s: %w", routeID, ErrNotFound)
		}
		return fmt.Errorf("mark bin collected: %w", err)
	}
	if route.AssignedToID == nil || *route.AssignedToID != collectorID {
		return fmt.Errorf("route %s is not yours: %w", routeID, ErrUnauthorized)
	}
	if route.Status != models.RouteInProgress {
		return fmt.Errorf("route %s is %s: %w", routeID, route.Status, ErrConflict)
	}
	onRoute := false
	for _, stop := range route.Stops {
		if stop.BinID == binID {
			onRoute = true
			break
		}
	}
	if !onRoute {
		return fmt.Errorf("bin %s is not on route %s: %w", binID, routeID, ErrUnprocessable)
	}

	if err := s.bins.ResetLevels(ctx, binID, s.now()); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("bin %s: %w", binID, ErrNotFound)
		}
		return fmt.Errorf("mark bin collected: %w", err)
	}
	log.Printf("♻️ Bin %s collected on route %s", binID, routeID)
	return nil
}

// GetAssignedRoute returns the collector's current route: the running one if
// any, otherwise the latest assigned one. Stops are joined with the bins'
// live fill levels.
func (s *RouteService) GetAssignedRoute(ctx context.Context, collectorID string) (*models.AssignedRouteResponse, error) {
	route, err := s.routes.FindLatestByCollectorAndStatus(ctx, collectorID, models.RouteInProgress)
	if errors.Is(err, store.ErrNotFound) {
		route, err = s.routes.FindLatestByCollectorAndStatus(ctx, collectorID, models.RouteAssigned)
	}
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("collector %s has no route: %w", collectorID, ErrNotFound)
		}
		return nil, fmt.Errorf("get assigned route: %w", err)
	}

	resp := &models.AssignedRouteResponse{
		RouteID:        route.ID,
		Status:         route.Status,
		RouteStartTime: route.RouteStartTime,
		RouteEndTime:   route.RouteEndTime,
		Stops:          make([]models.BinStop, 0, len(route.Stops)),
	}
	for _, stop := range route.Stops {
		binStop := models.BinStop{
			StopOrder: stop.StopOrder,
			BinID:     stop.BinID,
			Latitude:  stop.Latitude,
			Longitude: stop.Longitude,
		}
		if bin, err := s.bins.Get(ctx, stop.BinID); err == nil {
			binStop.PlasticLevel = bin.PlasticLevel
			binStop.PaperLevel = bin.PaperLevel
			binStop.GlassLevel = bin.GlassLevel
			binStop.LastEmptiedAt = bin.LastEmptiedAt
		}
		resp.Stops = append(resp.Stops, binStop)
	}
	return resp, nil
}
