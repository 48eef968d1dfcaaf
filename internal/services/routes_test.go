package services

import (
	"context"
	"errors"
	"testing"

	"smartwaste-backend/internal/models"
	"smartwaste-backend/internal/store"
)

func TestCreateRouteValidation(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.addBin(t, "BIN-001")

	if _, err := env.routes.CreateRoute(ctx, models.CreateRouteRequest{BinIDs: []string{"BIN-001"}}); !errors.Is(err, ErrUnprocessable) {
		t.Errorf("missing name err = %v, want ErrUnprocessable", err)
	}
	if _, err := env.routes.CreateRoute(ctx, models.CreateRouteRequest{Name: "Monday"}); !errors.Is(err, ErrUnprocessable) {
		t.Errorf("no bins err = %v, want ErrUnprocessable", err)
	}
	if _, err := env.routes.CreateRoute(ctx, models.CreateRouteRequest{Name: "Monday", BinIDs: []string{"BIN-404"}}); !errors.Is(err, ErrUnprocessable) {
		t.Errorf("unknown bin err = %v, want ErrUnprocessable", err)
	}
}

func TestCreateRouteSnapshotsStops(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.addBin(t, "BIN-001")
	env.addBin(t, "BIN-002")

	route, err := env.routes.CreateRoute(ctx, models.CreateRouteRequest{
		Name:   "Monday north",
		BinIDs: []string{"BIN-002", "BIN-001"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if route.Status != models.RouteCreated {
		t.Errorf("status = %s, want %s", route.Status, models.RouteCreated)
	}
	if len(route.Stops) != 2 {
		t.Fatalf("stops = %d, want 2", len(route.Stops))
	}
	// Order follows the request, 1-based
	if route.Stops[0].BinID != "BIN-002" || route.Stops[0].StopOrder != 1 {
		t.Errorf("stop 1 = %+v", route.Stops[0])
	}
	if route.Stops[1].BinID != "BIN-001" || route.Stops[1].StopOrder != 2 {
		t.Errorf("stop 2 = %+v", route.Stops[1])
	}
	if route.Stops[0].Latitude == nil {
		t.Error("stop coordinates not snapshot")
	}

	// Moving the bin afterwards does not move the stop
	if err := env.binStatus.UpdateBinLocation(ctx, "BIN-002", 7.0, 80.0); err != nil {
		t.Fatalf("move bin: %v", err)
	}
	got, err := env.routes.GetRoute(ctx, route.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if *got.Stops[0].Latitude != 6.9271 {
		t.Errorf("stop latitude = %v, want snapshot 6.9271", *got.Stops[0].Latitude)
	}
}

func TestRouteLifecycle(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.addUser(t, "collector-1", models.RoleCollector)
	env.addUser(t, "owner-1", models.RoleOwner)
	env.addOwnedBin(t, "BIN-001", "owner-1")

	route, err := env.routes.CreateRoute(ctx, models.CreateRouteRequest{Name: "Monday", BinIDs: []string{"BIN-001"}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Starting before assignment fails
	if _, err := env.routes.StartRoute(ctx, "collector-1", route.ID); err == nil {
		t.Fatal("start before assign should fail")
	}

	assigned, err := env.routes.AssignRouteToCollector(ctx, route.ID, "collector-1")
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if assigned.Status != models.RouteAssigned {
		t.Errorf("status = %s, want %s", assigned.Status, models.RouteAssigned)
	}

	// The bin owner hears about tomorrow's collection
	if got := env.unreadFor(t, "owner-1", models.RoleOwner); got != 1 {
		t.Errorf("owner unread = %d, want 1 collection notice", got)
	}

	started, err := env.routes.StartRoute(ctx, "collector-1", route.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if started.Status != models.RouteInProgress || started.RouteStartTime == nil {
		t.Errorf("started = %+v", started)
	}

	// Collect the only stop: levels reset, lastEmptiedAt stamped
	if err := env.store.Bins.UpdateLevels(ctx, "BIN-001", 80, 60, 40); err != nil {
		t.Fatalf("seed levels: %v", err)
	}
	if err := env.routes.MarkBinCollected(ctx, "collector-1", route.ID, "BIN-001"); err != nil {
		t.Fatalf("collect: %v", err)
	}
	bin, err := env.store.Bins.Get(ctx, "BIN-001")
	if err != nil {
		t.Fatalf("get bin: %v", err)
	}
	if bin.PlasticLevel != 0 || bin.PaperLevel != 0 || bin.GlassLevel != 0 {
		t.Errorf("levels after collect = %d/%d/%d, want zeros", bin.PlasticLevel, bin.PaperLevel, bin.GlassLevel)
	}
	if bin.LastEmptiedAt == nil {
		t.Error("lastEmptiedAt not stamped")
	}

	done, err := env.routes.StopRoute(ctx, "collector-1", route.ID)
	if err != nil {
		t.Fatalf("stop: %v", err)
	}
	if done.Status != models.RouteCompleted || done.RouteEndTime == nil {
		t.Errorf("done = %+v", done)
	}
}

func TestStartRouteDiagnosis(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.addUser(t, "collector-1", models.RoleCollector)
	env.addUser(t, "collector-2", models.RoleCollector)
	env.addBin(t, "BIN-001")

	route, err := env.routes.CreateRoute(ctx, models.CreateRouteRequest{Name: "Monday", BinIDs: []string{"BIN-001"}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := env.routes.AssignRouteToCollector(ctx, route.ID, "collector-1"); err != nil {
		t.Fatalf("assign: %v", err)
	}

	// Wrong collector
	if _, err := env.routes.StartRoute(ctx, "collector-2", route.ID); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("wrong collector err = %v, want ErrUnauthorized", err)
	}
	// Wrong state: stopping an ASSIGNED route
	if _, err := env.routes.StopRoute(ctx, "collector-1", route.ID); !errors.Is(err, ErrConflict) {
		t.Errorf("stop before start err = %v, want ErrConflict", err)
	}
	// Unknown route
	if _, err := env.routes.StartRoute(ctx, "collector-1", "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown route err = %v, want ErrNotFound", err)
	}
}

func TestUpdateRouteResetsAssignment(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.addUser(t, "collector-1", models.RoleCollector)
	env.addBin(t, "BIN-001")
	env.addBin(t, "BIN-002")

	route, err := env.routes.CreateRoute(ctx, models.CreateRouteRequest{Name: "Monday", BinIDs: []string{"BIN-001"}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := env.routes.AssignRouteToCollector(ctx, route.ID, "collector-1"); err != nil {
		t.Fatalf("assign: %v", err)
	}

	updated, err := env.routes.UpdateRoute(ctx, route.ID, models.CreateRouteRequest{
		Name:   "Monday v2",
		BinIDs: []string{"BIN-002", "BIN-001"},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Status != models.RouteCreated {
		t.Errorf("status after edit = %s, want %s", updated.Status, models.RouteCreated)
	}
	if updated.AssignedToID != nil {
		t.Errorf("assignment survived edit: %v", *updated.AssignedToID)
	}
	if len(updated.Stops) != 2 {
		t.Errorf("stops = %d, want 2", len(updated.Stops))
	}

	// Editing a COMPLETED route also drops its start/end stamps
	if _, err := env.routes.AssignRouteToCollector(ctx, route.ID, "collector-1"); err != nil {
		t.Fatalf("re-assign: %v", err)
	}
	if _, err := env.routes.StartRoute(ctx, "collector-1", route.ID); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := env.routes.StopRoute(ctx, "collector-1", route.ID); err != nil {
		t.Fatalf("stop: %v", err)
	}
	updated, err = env.routes.UpdateRoute(ctx, route.ID, models.CreateRouteRequest{
		Name:   "Monday v3",
		BinIDs: []string{"BIN-001"},
	})
	if err != nil {
		t.Fatalf("update completed route: %v", err)
	}
	if updated.Status != models.RouteCreated {
		t.Errorf("status after edit = %s, want %s", updated.Status, models.RouteCreated)
	}
	if updated.RouteStartTime != nil || updated.RouteEndTime != nil {
		t.Errorf("stale timestamps survived edit: start = %v, end = %v", updated.RouteStartTime, updated.RouteEndTime)
	}
}

func TestUpdateRouteInProgressConflict(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.addUser(t, "collector-1", models.RoleCollector)
	env.addBin(t, "BIN-001")

	route, err := env.routes.CreateRoute(ctx, models.CreateRouteRequest{Name: "Monday", BinIDs: []string{"BIN-001"}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := env.routes.AssignRouteToCollector(ctx, route.ID, "collector-1"); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if _, err := env.routes.StartRoute(ctx, "collector-1", route.ID); err != nil {
		t.Fatalf("start: %v", err)
	}

	if _, err := env.routes.UpdateRoute(ctx, route.ID, models.CreateRouteRequest{Name: "x", BinIDs: []string{"BIN-001"}}); !errors.Is(err, ErrConflict) {
		t.Errorf("edit running route err = %v, want ErrConflict", err)
	}
	if err := env.routes.DeleteRoute(ctx, route.ID); !errors.Is(err, ErrConflict) {
		t.Errorf("delete running route err = %v, want ErrConflict", err)
	}
}

func TestMarkBinCollectedGuards(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.addUser(t, "collector-1", models.RoleCollector)
	env.addUser(t, "collector-2", models.RoleCollector)
	env.addBin(t, "BIN-001")
	env.addBin(t, "BIN-002")

	route, err := env.routes.CreateRoute(ctx, models.CreateRouteRequest{Name: "Monday", BinIDs: []string{"BIN-001"}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := env.routes.AssignRouteToCollector(ctx, route.ID, "collector-1"); err != nil {
		t.Fatalf("assign: %v", err)
	}

	// Not running yet
	if err := env.routes.MarkBinCollected(ctx, "collector-1", route.ID, "BIN-001"); !errors.Is(err, ErrConflict) {
		t.Errorf("collect before start err = %v, want ErrConflict", err)
	}

	if _, err := env.routes.StartRoute(ctx, "collector-1", route.ID); err != nil {
		t.Fatalf("start: %v", err)
	}

	if err := env.routes.MarkBinCollected(ctx, "collector-2", route.ID, "BIN-001"); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("wrong collector err = %v, want ErrUnauthorized", err)
	}
	if err := env.routes.MarkBinCollected(ctx, "collector-1", route.ID, "BIN-002"); !errors.Is(err, ErrUnprocessable) {
		t.Errorf("off-route bin err = %v, want ErrUnprocessable", err)
	}
}

func TestGetAssignedRoutePrefersRunning(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.addUser(t, "collector-1", models.RoleCollector)
	env.addBin(t, "BIN-001")
	env.addBin(t, "BIN-002")

	// Older route, started
	first := mustCreateRoute(t, env, "First", []string{"BIN-001"})
	first.DateCreated = 100
	seedRoute(t, env, first)
	// Newer route, merely assigned
	second := mustCreateRoute(t, env, "Second", []string{"BIN-002"})
	second.DateCreated = 200
	seedRoute(t, env, second)

	if _, err := env.routes.AssignRouteToCollector(ctx, first.ID, "collector-1"); err != nil {
		t.Fatalf("assign first: %v", err)
	}
	if _, err := env.routes.AssignRouteToCollector(ctx, second.ID, "collector-1"); err != nil {
		t.Fatalf("assign second: %v", err)
	}
	if _, err := env.routes.StartRoute(ctx, "collector-1", first.ID); err != nil {
		t.Fatalf("start first: %v", err)
	}

	got, err := env.routes.GetAssignedRoute(ctx, "collector-1")
	if err != nil {
		t.Fatalf("get assigned: %v", err)
	}
	if got.RouteID != first.ID {
		t.Errorf("assigned route = %s, want running route %s", got.RouteID, first.ID)
	}
	if got.Status != models.RouteInProgress {
		t.Errorf("status = %s, want %s", got.Status, models.RouteInProgress)
	}

	// Live levels show up on the stops
	if err := env.store.Bins.UpdateLevels(ctx, "BIN-001", 42, 0, 0); err != nil {
		t.Fatalf("seed levels: %v", err)
	}
	got, err = env.routes.GetAssignedRoute(ctx, "collector-1")
	if err != nil {
		t.Fatalf("get assigned: %v", err)
	}
	if len(got.Stops) != 1 || got.Stops[0].PlasticLevel != 42 {
		t.Errorf("stops = %+v, want live plastic level 42", got.Stops)
	}
}

func TestGetAssignedRouteNone(t *testing.T) {
	env := newTestEnv()
	if _, err := env.routes.GetAssignedRoute(context.Background(), "collector-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("no route err = %v, want ErrNotFound", err)
	}
}

// mustCreateRoute builds a detached route value with snapshot stops.
func mustCreateRoute(t *testing.T, env *testEnv, name string, binIDs []string) *models.Route {
	t.Helper()
	route, err := env.routes.CreateRoute(context.Background(), models.CreateRouteRequest{Name: name, BinIDs: binIDs})
	if err != nil {
		t.Fatalf("create route %s: %v", name, err)
	}
	return route
}

// seedRoute rewrites a route's stored record, used to pin DateCreated.
func seedRoute(t *testing.T, env *testEnv, route *models.Route) {
	t.Helper()
	ctx := context.Background()
	if err := env.store.Routes.Delete(ctx, route.ID); err != nil && !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("reseed route %s: %v", route.ID, err)
	}
	if err := env.store.Routes.Create(ctx, route); err != nil {
		t.Fatalf("reseed route %s: %v", route.ID, err)
	}
}
