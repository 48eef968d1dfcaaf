package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"smartwaste-backend/internal/models"
	"smartwaste-backend/internal/store"
)

// BinStatusService ingests fill-level telemetry and raises alerts on the
// rising edge of the 90% threshold, per material. Reports carry absolute
// percentages, so applying one is last-write-wins; re-asserting an
// already-high level does not alert again.
type BinStatusService struct {
	bins     store.BinStore
	notifier *NotificationService
	push     Pusher

	now func() int64
}

func NewBinStatusService(bins store.BinStore, notifier *NotificationService, push Pusher) *BinStatusService {
	return &BinStatusService{
		bins:     bins,
		notifier: notifier,
		push:     push,
		now:      func() int64 { return time.Now().Unix() },
	}
}

// AddBin registers a new bin with a caller-assigned id.
func (s *BinStatusService) AddBin(ctx context.Context, binID string) (*models.Bin, error) {
	if binID == "" {
		return nil, fmt.Errorf("bin id is required: %w", ErrUnprocessable)
	}
	now := s.now()
	bin := &models.Bin{
		BinID:     binID,
		Status:    models.BinAvailable,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.bins.Create(ctx, bin); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, fmt.Errorf("bin %s already exists: %w", binID, ErrConflict)
		}
		return nil, fmt.Errorf("add bin: %w", err)
	}
	return bin, nil
}

// ListBins returns bins, optionally filtered by status or owner.
func (s *BinStatusService) ListBins(ctx context.Context, filter store.BinFilter) ([]models.Bin, error) {
	return s.bins.List(ctx, filter)
}

// GetBinStatus returns the bin for an authorized reader. Admins and
// collectors see every bin; an owner only their own.
func (s *BinStatusService) GetBinStatus(ctx context.Context, binID, requesterID, requesterRole string) (*models.Bin, error) {
	bin, err := s.bins.Get(ctx, binID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("bin %s: %w", binID, ErrNotFound)
		}
		return nil, fmt.Errorf("get bin: %w", err)
	}
	if requesterRole == models.RoleOwner {
		if bin.OwnerID == nil || *bin.OwnerID != requesterID {
			return nil, fmt.Errorf("bin %s: %w", binID, ErrUnauthorized)
		}
	}
	return bin, nil
}

// UpdateBinLocation moves a bin on the map. Routes built earlier keep their
// snapshot coordinates.
func (s *BinStatusService) UpdateBinLocation(ctx context.Context, binID string, lat, lng float64) error {
	if err := s.bins.UpdateLocation(ctx, binID, lat, lng); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("bin %s: %w", binID, ErrNotFound)
		}
		return fmt.Errorf("update bin location: %w", err)
	}
	return nil
}

// DeleteBin removes a bin entirely.
func (s *BinStatusService) DeleteBin(ctx context.Context, binID string) error {
	if err := s.bins.Delete(ctx, binID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("bin %s: %w", binID, ErrNotFound)
		}
		return fmt.Errorf("delete bin: %w", err)
	}
	return nil
}

// IngestLevels applies one telemetry snapshot: persist the new levels, then
// alert for each material that crossed the threshold from below. Alert
// failures are logged, never fatal; the level write always stands.
func (s *BinStatusService) IngestLevels(ctx context.Context, report models.BinLevelReport) error {
	if err := validateLevels(report); err != nil {
		return err
	}

	old, err := s.bins.Get(ctx, report.BinID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("bin %s: %w", report.BinID, ErrNotFound)
		}
		return fmt.Errorf("ingest levels: %w", err)
	}

	if err := s.bins.UpdateLevels(ctx, report.BinID, report.PlasticLevel, report.PaperLevel, report.GlassLevel); err != nil {
		return fmt.Errorf("ingest levels: %w", err)
	}

	updated := *old
	updated.PlasticLevel = report.PlasticLevel
	updated.PaperLevel = report.PaperLevel
	updated.GlassLevel = report.GlassLevel

	s.detectEdges(ctx, old, &updated)

	if s.push != nil && updated.OwnerID != nil {
		s.pushBinStatus(&updated)
	}
	return nil
}

func validateLevels(report models.BinLevelReport) error {
	for material, level := range map[string]int{
		"plastic": report.PlasticLevel,
		"paper":   report.PaperLevel,
		"glass":   report.GlassLevel,
	} {
		if level < 0 || level > 100 {
			return fmt.Errorf("%s level %d out of range: %w", material, level, ErrUnprocessable)
		}
	}
	return nil
}

// detectEdges raises an alert for each material whose level crossed the
// threshold in this report. One crossing is enough to trigger the batch;
// the dedup window in the notifier keeps repeats quiet.
func (s *BinStatusService) detectEdges(ctx context.Context, old, updated *models.Bin) {
	oldLevels := materialLevels(old)
	for material, level := range materialLevels(updated) {
		if level >= FillThreshold && oldLevels[material] < FillThreshold {
			if err := s.notifier.NotifyFillLevelHigh(ctx, updated, material, level); err != nil {
				log.Printf("⚠️ Fill alert for bin %s (%s) failed: %v", updated.BinID, material, err)
			}
		}
	}
}

// CheckAllBinsForHighLevels is the reconciliation sweep: every bin currently
// at or above the threshold is treated as a fresh crossing. The unread-24h
// dedup keeps the sweep from duplicating alerts the edge path already raised.
func (s *BinStatusService) CheckAllBinsForHighLevels(ctx context.Context) error {
	bins, err := s.bins.ListHighFill(ctx, FillThreshold)
	if err != nil {
		return fmt.Errorf("high level sweep: %w", err)
	}
	for i := range bins {
		bin := bins[i]
		empty := bin
		empty.PlasticLevel = 0
		empty.PaperLevel = 0
		empty.GlassLevel = 0
		s.detectEdges(ctx, &empty, &bin)
	}
	log.Printf("🔍 High level sweep checked %d bins", len(bins))
	return nil
}

// pushBinStatus streams the new levels to the bin owner over the websocket.
func (s *BinStatusService) pushBinStatus(bin *models.Bin) {
	s.push.Push(*bin.OwnerID, "bin_status", map[string]interface{}{
		"bin_id":        bin.BinID,
		"plastic_level": bin.PlasticLevel,
		"paper_level":   bin.PaperLevel,
		"glass_level":   bin.GlassLevel,
		"updated_at":    s.now(),
	})
}
