package services

import (
	"context"
	"errors"
	"testing"

	"smartwaste-backend/internal/models"
)

// assignAndStart seeds the full chain: route over the bin, collector on the
// route, truck in the collector's hands.
func assignAndStart(t *testing.T, env *testEnv, binID, collectorID, registration string, start bool) *models.Route {
	t.Helper()
	ctx := context.Background()

	route, err := env.routes.CreateRoute(ctx, models.CreateRouteRequest{Name: "Tracked", BinIDs: []string{binID}})
	if err != nil {
		t.Fatalf("create route: %v", err)
	}
	if _, err := env.routes.AssignRouteToCollector(ctx, route.ID, collectorID); err != nil {
		t.Fatalf("assign route: %v", err)
	}
	if _, err := env.assignment.AssignTruckToCollector(ctx, registration, collectorID); err != nil {
		t.Fatalf("assign truck: %v", err)
	}
	if start {
		if _, err := env.routes.StartRoute(ctx, collectorID, route.ID); err != nil {
			t.Fatalf("start route: %v", err)
		}
	}
	return route
}

func TestResolveTruckForBin(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.addUser(t, "collector-1", models.RoleCollector)
	env.addBin(t, "BIN-001")
	env.addTruck(t, "truck-1", "WP-TRK-1001")

	assignAndStart(t, env, "BIN-001", "collector-1", "WP-TRK-1001", false)

	truck, err := env.tracking.ResolveTruckForBin(ctx, "BIN-001")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if truck.ID != "truck-1" {
		t.Errorf("truck = %s, want truck-1", truck.ID)
	}
}

func TestResolveTruckPrefersRunningRoute(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.addUser(t, "collector-1", models.RoleCollector)
	env.addUser(t, "collector-2", models.RoleCollector)
	env.addBin(t, "BIN-001")
	env.addTruck(t, "truck-1", "WP-TRK-1001")
	env.addTruck(t, "truck-2", "WP-TRK-1002")

	// Two routes over the same bin: collector-1 merely assigned,
	// collector-2 actively driving.
	assignAndStart(t, env, "BIN-001", "collector-1", "WP-TRK-1001", false)
	assignAndStart(t, env, "BIN-001", "collector-2", "WP-TRK-1002", true)

	truck, err := env.tracking.ResolveTruckForBin(ctx, "BIN-001")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if truck.ID != "truck-2" {
		t.Errorf("truck = %s, want the running route's truck-2", truck.ID)
	}
}

func TestResolveTruckBrokenChain(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.addUser(t, "collector-1", models.RoleCollector)
	env.addBin(t, "BIN-001")
	env.addBin(t, "BIN-002")
	env.addTruck(t, "truck-1", "WP-TRK-1001")

	// No route at all
	if _, err := env.tracking.ResolveTruckForBin(ctx, "BIN-001"); !errors.Is(err, ErrNotFound) {
		t.Errorf("no route err = %v, want ErrNotFound", err)
	}

	// Route exists but still CREATED: not an active route
	if _, err := env.routes.CreateRoute(ctx, models.CreateRouteRequest{Name: "Idle", BinIDs: []string{"BIN-001"}}); err != nil {
		t.Fatalf("create route: %v", err)
	}
	if _, err := env.tracking.ResolveTruckForBin(ctx, "BIN-001"); !errors.Is(err, ErrNotFound) {
		t.Errorf("created route err = %v, want ErrNotFound", err)
	}

	// Route assigned, but the collector holds no truck
	route, err := env.routes.CreateRoute(ctx, models.CreateRouteRequest{Name: "Truckless", BinIDs: []string{"BIN-002"}})
	if err != nil {
		t.Fatalf("create route: %v", err)
	}
	if _, err := env.routes.AssignRouteToCollector(ctx, route.ID, "collector-1"); err != nil {
		t.Fatalf("assign route: %v", err)
	}
	if _, err := env.tracking.ResolveTruckForBin(ctx, "BIN-002"); !errors.Is(err, ErrNotFound) {
		t.Errorf("no truck err = %v, want ErrNotFound", err)
	}
}

func TestResolveTruckGoesStaleOnHandOver(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.addUser(t, "collector-1", models.RoleCollector)
	env.addBin(t, "BIN-001")
	env.addTruck(t, "truck-1", "WP-TRK-1001")

	assignAndStart(t, env, "BIN-001", "collector-1", "WP-TRK-1001", false)
	if _, err := env.tracking.ResolveTruckForBin(ctx, "BIN-001"); err != nil {
		t.Fatalf("resolve before hand-over: %v", err)
	}

	// The chain is recomputed live: handing the truck back breaks it
	if err := env.assignment.HandOverTruck(ctx, "collector-1", "WP-TRK-1001"); err != nil {
		t.Fatalf("hand over: %v", err)
	}
	if _, err := env.tracking.ResolveTruckForBin(ctx, "BIN-001"); !errors.Is(err, ErrNotFound) {
		t.Errorf("after hand-over err = %v, want ErrNotFound", err)
	}
}

func TestUpdateTruckLocation(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.addUser(t, "collector-1", models.RoleCollector)
	env.addTruck(t, "truck-1", "WP-TRK-1001")

	// No pairing yet
	if _, err := env.tracking.UpdateTruckLocation(ctx, "collector-1", 6.9, 79.8); !errors.Is(err, ErrNotFound) {
		t.Errorf("no pairing err = %v, want ErrNotFound", err)
	}

	if _, err := env.assignment.AssignTruckToCollector(ctx, "WP-TRK-1001", "collector-1"); err != nil {
		t.Fatalf("assign truck: %v", err)
	}
	truck, err := env.tracking.UpdateTruckLocation(ctx, "collector-1", 6.9344, 79.8428)
	if err != nil {
		t.Fatalf("update location: %v", err)
	}
	if truck.Latitude == nil || *truck.Latitude != 6.9344 {
		t.Errorf("latitude = %v, want 6.9344", truck.Latitude)
	}
	if truck.Longitude == nil || *truck.Longitude != 79.8428 {
		t.Errorf("longitude = %v, want 79.8428", truck.Longitude)
	}
}
