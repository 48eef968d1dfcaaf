package services

import (
	"context"
	"errors"
	"testing"

	"smartwaste-backend/internal/models"
	"smartwaste-backend/internal/store"
)

func TestAddTruck(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	truck, err := env.trucks.AddTruck(ctx, models.AddTruckRequest{
		RegistrationNumber: "WP-TRK-1001",
		CapacityKg:         5000,
	})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if truck.Status != models.TruckAvailable {
		t.Errorf("status = %s, want %s", truck.Status, models.TruckAvailable)
	}

	if _, err := env.trucks.AddTruck(ctx, models.AddTruckRequest{RegistrationNumber: "WP-TRK-1001", CapacityKg: 3000}); !errors.Is(err, ErrConflict) {
		t.Errorf("duplicate registration err = %v, want ErrConflict", err)
	}
	if _, err := env.trucks.AddTruck(ctx, models.AddTruckRequest{RegistrationNumber: "", CapacityKg: 3000}); !errors.Is(err, ErrUnprocessable) {
		t.Errorf("empty registration err = %v, want ErrUnprocessable", err)
	}
	if _, err := env.trucks.AddTruck(ctx, models.AddTruckRequest{RegistrationNumber: "WP-TRK-1002", CapacityKg: 0}); !errors.Is(err, ErrUnprocessable) {
		t.Errorf("zero capacity err = %v, want ErrUnprocessable", err)
	}
}

func TestListTrucksFilters(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.addUser(t, "collector-1", models.RoleCollector)
	env.addTruck(t, "truck-1", "WP-TRK-1001")

	if _, err := env.trucks.AddTruck(ctx, models.AddTruckRequest{RegistrationNumber: "WP-TRK-1002", CapacityKg: 8000}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := env.assignment.AssignTruckToCollector(ctx, "WP-TRK-1001", "collector-1"); err != nil {
		t.Fatalf("assign: %v", err)
	}

	available, err := env.trucks.ListTrucks(ctx, store.TruckFilter{Status: models.TruckAvailable})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(available) != 1 || available[0].RegistrationNumber != "WP-TRK-1002" {
		t.Errorf("available = %+v", available)
	}

	heavy, err := env.trucks.ListTrucks(ctx, store.TruckFilter{MinCapacityKg: 6000})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(heavy) != 1 || heavy[0].CapacityKg != 8000 {
		t.Errorf("heavy = %+v", heavy)
	}
}

func TestSetTruckStatus(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.addTruck(t, "truck-1", "WP-TRK-1001")

	if _, err := env.trucks.SetTruckStatus(ctx, "truck-1", models.TruckInService); !errors.Is(err, ErrUnprocessable) {
		t.Errorf("IN_SERVICE by hand err = %v, want ErrUnprocessable", err)
	}

	repair, err := env.trucks.SetTruckStatus(ctx, "truck-1", models.TruckNeedsRepair)
	if err != nil {
		t.Fatalf("to repair: %v", err)
	}
	if repair.LastMaintenance != nil {
		t.Error("lastMaintenance stamped on the way into repair")
	}

	back, err := env.trucks.SetTruckStatus(ctx, "truck-1", models.TruckAvailable)
	if err != nil {
		t.Fatalf("back to available: %v", err)
	}
	if back.LastMaintenance == nil {
		t.Error("lastMaintenance not stamped leaving repair")
	}
}

func TestTruckStatusConditionalWrite(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.addTruck(t, "truck-1", "WP-TRK-1001")

	// A write carrying a stale prior status loses instead of clobbering
	err := env.store.Trucks.SetStatus(ctx, "truck-1", models.TruckInService, models.TruckNeedsRepair, nil)
	if !errors.Is(err, store.ErrConflict) {
		t.Fatalf("stale write err = %v, want store.ErrConflict", err)
	}
	truck, err := env.store.Trucks.Get(ctx, "truck-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if truck.Status != models.TruckAvailable {
		t.Errorf("status after losing write = %s, want %s", truck.Status, models.TruckAvailable)
	}

	if err := env.store.Trucks.SetStatus(ctx, "truck-1", models.TruckAvailable, models.TruckNeedsRepair, nil); err != nil {
		t.Fatalf("conditional write: %v", err)
	}
}

func TestSetTruckStatusWhileInService(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.addUser(t, "collector-1", models.RoleCollector)
	env.addTruck(t, "truck-1", "WP-TRK-1001")

	if _, err := env.assignment.AssignTruckToCollector(ctx, "WP-TRK-1001", "collector-1"); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if _, err := env.trucks.SetTruckStatus(ctx, "truck-1", models.TruckNeedsRepair); !errors.Is(err, ErrConflict) {
		t.Errorf("repair while driven err = %v, want ErrConflict", err)
	}
}

func TestDeleteTruck(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.addUser(t, "collector-1", models.RoleCollector)
	env.addTruck(t, "truck-1", "WP-TRK-1001")

	if _, err := env.assignment.AssignTruckToCollector(ctx, "WP-TRK-1001", "collector-1"); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if err := env.trucks.DeleteTruck(ctx, "truck-1"); !errors.Is(err, ErrConflict) {
		t.Errorf("delete driven truck err = %v, want ErrConflict", err)
	}

	if err := env.assignment.HandOverTruck(ctx, "collector-1", "WP-TRK-1001"); err != nil {
		t.Fatalf("hand over: %v", err)
	}
	if err := env.trucks.DeleteTruck(ctx, "truck-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := env.trucks.DeleteTruck(ctx, "truck-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete err = %v, want ErrNotFound", err)
	}
}
