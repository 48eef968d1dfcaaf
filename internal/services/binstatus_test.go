package services

import (
	"context"
	"errors"
	"testing"

	"smartwaste-backend/internal/models"
)

func TestAddBin(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	bin, err := env.binStatus.AddBin(ctx, "BIN-001")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if bin.Status != models.BinAvailable {
		t.Errorf("status = %s, want %s", bin.Status, models.BinAvailable)
	}

	if _, err := env.binStatus.AddBin(ctx, "BIN-001"); !errors.Is(err, ErrConflict) {
		t.Errorf("duplicate err = %v, want ErrConflict", err)
	}
	if _, err := env.binStatus.AddBin(ctx, ""); !errors.Is(err, ErrUnprocessable) {
		t.Errorf("empty id err = %v, want ErrUnprocessable", err)
	}
}

func TestGetBinStatusOwnerScoping(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.addUser(t, "owner-1", models.RoleOwner)
	env.addOwnedBin(t, "BIN-001", "owner-1")

	if _, err := env.binStatus.GetBinStatus(ctx, "BIN-001", "owner-1", models.RoleOwner); err != nil {
		t.Errorf("owner read own bin: %v", err)
	}
	if _, err := env.binStatus.GetBinStatus(ctx, "BIN-001", "owner-2", models.RoleOwner); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("other owner err = %v, want ErrUnauthorized", err)
	}
	if _, err := env.binStatus.GetBinStatus(ctx, "BIN-001", "admin-1", models.RoleAdmin); err != nil {
		t.Errorf("admin read: %v", err)
	}
}

func TestIngestLevelsValidation(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.addBin(t, "BIN-001")

	err := env.binStatus.IngestLevels(ctx, models.BinLevelReport{BinID: "BIN-001", PlasticLevel: 101})
	if !errors.Is(err, ErrUnprocessable) {
		t.Errorf("out of range err = %v, want ErrUnprocessable", err)
	}
	err = env.binStatus.IngestLevels(ctx, models.BinLevelReport{BinID: "BIN-001", PaperLevel: -1})
	if !errors.Is(err, ErrUnprocessable) {
		t.Errorf("negative err = %v, want ErrUnprocessable", err)
	}
	err = env.binStatus.IngestLevels(ctx, models.BinLevelReport{BinID: "BIN-404", PlasticLevel: 10})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown bin err = %v, want ErrNotFound", err)
	}
}

func TestIngestLevelsRisingEdgeAlerts(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.addUser(t, "owner-1", models.RoleOwner)
	env.addUser(t, "admin-1", models.RoleAdmin)
	env.addOwnedBin(t, "BIN-001", "owner-1")

	// Below threshold: no alert
	if err := env.binStatus.IngestLevels(ctx, models.BinLevelReport{BinID: "BIN-001", PlasticLevel: 85}); err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if got := env.unreadFor(t, "owner-1", models.RoleOwner); got != 0 {
		t.Fatalf("unread after 85%% = %d, want 0", got)
	}

	// Crossing: owner and admin both alerted
	if err := env.binStatus.IngestLevels(ctx, models.BinLevelReport{BinID: "BIN-001", PlasticLevel: 92}); err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if got := env.unreadFor(t, "owner-1", models.RoleOwner); got != 1 {
		t.Errorf("owner unread = %d, want 1", got)
	}
	if got := env.unreadFor(t, "admin-1", models.RoleAdmin); got != 1 {
		t.Errorf("admin unread = %d, want 1", got)
	}
}

func TestIngestLevelsNoRepeatWhileHigh(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.addUser(t, "owner-1", models.RoleOwner)
	env.addOwnedBin(t, "BIN-001", "owner-1")

	for _, level := range []int{95, 96, 97} {
		if err := env.binStatus.IngestLevels(ctx, models.BinLevelReport{BinID: "BIN-001", PlasticLevel: level}); err != nil {
			t.Fatalf("ingest %d: %v", level, err)
		}
	}
	if got := env.unreadFor(t, "owner-1", models.RoleOwner); got != 1 {
		t.Errorf("unread after repeated high reports = %d, want 1", got)
	}
}

func TestIngestLevelsDedupWhileUnread(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.addUser(t, "owner-1", models.RoleOwner)
	env.addOwnedBin(t, "BIN-001", "owner-1")

	// Cross, dip, cross again while the first alert stays unread: one alert
	for _, level := range []int{95, 40, 95} {
		if err := env.binStatus.IngestLevels(ctx, models.BinLevelReport{BinID: "BIN-001", PlasticLevel: level}); err != nil {
			t.Fatalf("ingest %d: %v", level, err)
		}
	}
	if got := env.unreadFor(t, "owner-1", models.RoleOwner); got != 1 {
		t.Errorf("unread = %d, want 1 (dedup while unread)", got)
	}
}

func TestIngestLevelsReadReArmsAlert(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.addUser(t, "owner-1", models.RoleOwner)
	env.addOwnedBin(t, "BIN-001", "owner-1")

	if err := env.binStatus.IngestLevels(ctx, models.BinLevelReport{BinID: "BIN-001", GlassLevel: 95}); err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if _, err := env.notifier.MarkAllRead(ctx, "owner-1", models.RoleOwner); err != nil {
		t.Fatalf("mark all read: %v", err)
	}

	// Dip below and cross again: the read alert no longer suppresses
	for _, level := range []int{40, 95} {
		if err := env.binStatus.IngestLevels(ctx, models.BinLevelReport{BinID: "BIN-001", GlassLevel: level}); err != nil {
			t.Fatalf("ingest %d: %v", level, err)
		}
	}
	if got := env.unreadFor(t, "owner-1", models.RoleOwner); got != 1 {
		t.Errorf("unread after re-arm = %d, want 1", got)
	}
}

func TestSweepRespectsDedup(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.addUser(t, "owner-1", models.RoleOwner)
	env.addOwnedBin(t, "BIN-001", "owner-1")
	env.addOwnedBin(t, "BIN-002", "owner-1")

	// BIN-001 already alerted via the edge path; BIN-002 sits high without an alert
	if err := env.binStatus.IngestLevels(ctx, models.BinLevelReport{BinID: "BIN-001", PaperLevel: 95}); err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if err := env.store.Bins.UpdateLevels(ctx, "BIN-002", 0, 93, 0); err != nil {
		t.Fatalf("seed levels: %v", err)
	}

	if err := env.binStatus.CheckAllBinsForHighLevels(ctx); err != nil {
		t.Fatalf("sweep: %v", err)
	}

	// One alert per bin: the sweep filled the gap without duplicating
	if got := env.unreadFor(t, "owner-1", models.RoleOwner); got != 2 {
		t.Errorf("unread after sweep = %d, want 2", got)
	}

	// A second sweep adds nothing
	if err := env.binStatus.CheckAllBinsForHighLevels(ctx); err != nil {
		t.Fatalf("second sweep: %v", err)
	}
	if got := env.unreadFor(t, "owner-1", models.RoleOwner); got != 2 {
		t.Errorf("unread after second sweep = %d, want 2", got)
	}
}

func TestIngestLevelsPushesOwnerStatus(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	push := &recordingPusher{}
	env.binStatus.push = push
	env.addUser(t, "owner-1", models.RoleOwner)
	env.addOwnedBin(t, "BIN-001", "owner-1")

	if err := env.binStatus.IngestLevels(ctx, models.BinLevelReport{BinID: "BIN-001", PlasticLevel: 50}); err != nil {
		t.Fatalf("ingest: %v", err)
	}

	frames := push.byEvent("bin_status")
	if len(frames) != 1 {
		t.Fatalf("bin_status frames = %d, want 1", len(frames))
	}
	if frames[0].UserID != "owner-1" {
		t.Errorf("frame recipient = %s, want owner-1", frames[0].UserID)
	}
}
