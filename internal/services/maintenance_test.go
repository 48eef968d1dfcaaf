package services

import (
	"context"
	"errors"
	"testing"

	"smartwaste-backend/internal/models"
	"smartwaste-backend/internal/store"
)

func TestCreateMaintenanceRequest(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.addUser(t, "owner-1", models.RoleOwner)
	env.addUser(t, "admin-1", models.RoleAdmin)
	env.addOwnedBin(t, "BIN-001", "owner-1")

	request, err := env.maintenance.Create(ctx, "owner-1", models.RoleOwner, models.CreateMaintenanceRequest{
		BinID:       "BIN-001",
		RequestType: "repair",
		Description: "Lid sensor stuck",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if request.Status != models.MaintenancePending {
		t.Errorf("status = %s, want %s", request.Status, models.MaintenancePending)
	}
	if request.Priority != models.PriorityMedium {
		t.Errorf("priority = %s, want default %s", request.Priority, models.PriorityMedium)
	}

	// Admins are notified about the new request
	if got := env.unreadFor(t, "admin-1", models.RoleAdmin); got != 1 {
		t.Errorf("admin unread = %d, want 1", got)
	}
}

func TestCreateMaintenanceRequestGuards(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.addUser(t, "owner-1", models.RoleOwner)
	env.addUser(t, "owner-2", models.RoleOwner)
	env.addOwnedBin(t, "BIN-001", "owner-1")
	env.addBin(t, "BIN-002")

	if _, err := env.maintenance.Create(ctx, "owner-1", models.RoleOwner, models.CreateMaintenanceRequest{
		BinID: "BIN-001",
	}); !errors.Is(err, ErrUnprocessable) {
		t.Errorf("missing description err = %v, want ErrUnprocessable", err)
	}
	if _, err := env.maintenance.Create(ctx, "owner-1", models.RoleOwner, models.CreateMaintenanceRequest{
		BinID: "BIN-404", Description: "x",
	}); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown bin err = %v, want ErrNotFound", err)
	}
	// Owners can only file against their own bin
	if _, err := env.maintenance.Create(ctx, "owner-2", models.RoleOwner, models.CreateMaintenanceRequest{
		BinID: "BIN-001", Description: "x",
	}); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("foreign bin err = %v, want ErrUnauthorized", err)
	}
	if _, err := env.maintenance.Create(ctx, "owner-1", models.RoleOwner, models.CreateMaintenanceRequest{
		BinID: "BIN-002", Description: "x",
	}); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("unowned bin err = %v, want ErrUnauthorized", err)
	}
	// Admins may file against any bin
	if _, err := env.maintenance.Create(ctx, "admin-1", models.RoleAdmin, models.CreateMaintenanceRequest{
		BinID: "BIN-002", Description: "x",
	}); err != nil {
		t.Errorf("admin create: %v", err)
	}
}

func TestMaintenanceVisibilityScoping(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.addUser(t, "owner-1", models.RoleOwner)
	env.addUser(t, "owner-2", models.RoleOwner)
	env.addOwnedBin(t, "BIN-001", "owner-1")
	env.addOwnedBin(t, "BIN-002", "owner-2")

	mine, err := env.maintenance.Create(ctx, "owner-1", models.RoleOwner, models.CreateMaintenanceRequest{
		BinID: "BIN-001", Description: "broken hinge",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := env.maintenance.Create(ctx, "owner-2", models.RoleOwner, models.CreateMaintenanceRequest{
		BinID: "BIN-002", Description: "full sensor dead",
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	// Get: other owners bounce, admins pass
	if _, err := env.maintenance.Get(ctx, "owner-2", models.RoleOwner, mine.ID); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("foreign get err = %v, want ErrUnauthorized", err)
	}
	if _, err := env.maintenance.Get(ctx, "admin-1", models.RoleAdmin, mine.ID); err != nil {
		t.Errorf("admin get: %v", err)
	}

	// List: owners see only their own, admins see everything
	own, total, err := env.maintenance.List(ctx, "owner-1", models.RoleOwner, store.MaintenanceFilter{Size: 10})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 1 || len(own) != 1 || own[0].ID != mine.ID {
		t.Errorf("owner list = %d/%d rows", len(own), total)
	}
	_, total, err = env.maintenance.List(ctx, "admin-1", models.RoleAdmin, store.MaintenanceFilter{Size: 10})
	if err != nil {
		t.Fatalf("admin list: %v", err)
	}
	if total != 2 {
		t.Errorf("admin total = %d, want 2", total)
	}
}

func TestUpdateMaintenanceStatus(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.addUser(t, "owner-1", models.RoleOwner)
	env.addOwnedBin(t, "BIN-001", "owner-1")

	request, err := env.maintenance.Create(ctx, "owner-1", models.RoleOwner, models.CreateMaintenanceRequest{
		BinID: "BIN-001", Description: "broken hinge",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := env.maintenance.UpdateStatus(ctx, request.ID, models.UpdateMaintenanceStatusRequest{Status: "DONE"}); !errors.Is(err, ErrUnprocessable) {
		t.Errorf("bad status err = %v, want ErrUnprocessable", err)
	}
	if _, err := env.maintenance.UpdateStatus(ctx, "nope", models.UpdateMaintenanceStatusRequest{Status: models.MaintenanceInProgress}); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown id err = %v, want ErrNotFound", err)
	}

	tech := "tech-7"
	updated, err := env.maintenance.UpdateStatus(ctx, request.ID, models.UpdateMaintenanceStatusRequest{
		Status:     models.MaintenanceInProgress,
		AssignedTo: &tech,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.AssignedTo == nil || *updated.AssignedTo != "tech-7" {
		t.Errorf("assigned to = %v, want tech-7", updated.AssignedTo)
	}
	if updated.ResolvedAt != nil {
		t.Error("resolvedAt stamped before completion")
	}
}

func TestCompleteMaintenanceNotifiesRequester(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.addUser(t, "owner-1", models.RoleOwner)
	env.addOwnedBin(t, "BIN-001", "owner-1")

	request, err := env.maintenance.Create(ctx, "owner-1", models.RoleOwner, models.CreateMaintenanceRequest{
		BinID: "BIN-001", Description: "broken hinge",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	done, err := env.maintenance.UpdateStatus(ctx, request.ID, models.UpdateMaintenanceStatusRequest{
		Status: models.MaintenanceCompleted,
	})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if done.ResolvedAt == nil {
		t.Fatal("resolvedAt not stamped")
	}
	first := *done.ResolvedAt

	// Re-completing keeps the original resolution time
	done, err = env.maintenance.UpdateStatus(ctx, request.ID, models.UpdateMaintenanceStatusRequest{
		Status: models.MaintenanceCompleted,
	})
	if err != nil {
		t.Fatalf("re-complete: %v", err)
	}
	if *done.ResolvedAt != first {
		t.Errorf("resolvedAt moved: %d -> %d", first, *done.ResolvedAt)
	}

	// The requester got the completion notice
	if got := env.unreadFor(t, "owner-1", models.RoleOwner); got != 1 {
		t.Errorf("owner unread = %d, want 1", got)
	}
}

func TestDeleteMaintenanceRequest(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.addUser(t, "owner-1", models.RoleOwner)
	env.addOwnedBin(t, "BIN-001", "owner-1")

	request, err := env.maintenance.Create(ctx, "owner-1", models.RoleOwner, models.CreateMaintenanceRequest{
		BinID: "BIN-001", Description: "broken hinge",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := env.maintenance.Delete(ctx, request.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := env.maintenance.Delete(ctx, request.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete err = %v, want ErrNotFound", err)
	}
}
