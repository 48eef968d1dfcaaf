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

// MaintenanceService handles repair and service requests filed against bins.
type MaintenanceService struct {
	requests store.MaintenanceStore
	bins     store.BinStore
	notifier *NotificationService

	now func() int64
}

func NewMaintenanceService(requests store.MaintenanceStore, bins store.BinStore, notifier *NotificationService) *MaintenanceService {
	return &MaintenanceService{
		requests: requests,
		bins:     bins,
		notifier: notifier,
		now:      func() int64 { return time.Now().Unix() },
	}
}

// Create files a request. Owners can only file against their own bin; the
// admins are notified best effort.
func (s *MaintenanceService) Create(ctx context.Context, requesterID, requesterRole string, req models.CreateMaintenanceRequest) (*models.MaintenanceRequest, error) {
	if req.Description == "" {
		return nil, fmt.Errorf("description is required: %w", ErrUnprocessable)
	}
	bin, err := s.bins.Get(ctx, req.BinID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("bin %s: %w", req.BinID, ErrNotFound)
		}
		return nil, fmt.Errorf("create maintenance request: %w", err)
	}
	if requesterRole == models.RoleOwner {
		if bin.OwnerID == nil || *bin.OwnerID != requesterID {
			return nil, fmt.Errorf("bin %s: %w", req.BinID, ErrUnauthorized)
		}
	}

	priority := req.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	request := &models.MaintenanceRequest{
		ID:          uuid.New().String(),
		BinID:       req.BinID,
		RequesterID: requesterID,
		RequestType: req.RequestType,
		Description: req.Description,
		Priority:    priority,
		Status:      models.MaintenancePending,
		Notes:       req.Notes,
		CreatedAt:   s.now(),
	}
	if err := s.requests.Create(ctx, request); err != nil {
		return nil, fmt.Errorf("create maintenance request: %w", err)
	}

	if s.notifier != nil {
		if err := s.notifier.NotifyMaintenanceRequestCreated(ctx, request); err != nil {
			log.Printf("⚠️ Maintenance notification failed: %v", err)
		}
	}
	return request, nil
}

// Get returns one request. Non-admins only see their own.
func (s *MaintenanceService) Get(ctx context.Context, requesterID, requesterRole, id string) (*models.MaintenanceRequest, error) {
	request, err := s.requests.Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("maintenance request %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("get maintenance request: %w", err)
	}
	if requesterRole != models.RoleAdmin && request.RequesterID != requesterID {
		return nil, fmt.Errorf("maintenance request %s: %w", id, ErrUnauthorized)
	}
	return request, nil
}

// List returns requests with filters. Non-admins are pinned to their own.
func (s *MaintenanceService) List(ctx context.Context, requesterID, requesterRole string, filter store.MaintenanceFilter) ([]models.MaintenanceRequest, int, error) {
	if requesterRole != models.RoleAdmin {
		filter.RequesterID = requesterID
	}
	requests, total, err := s.requests.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list maintenance requests: %w", err)
	}
	return requests, total, nil
}

// UpdateStatus moves a request through its workflow. Completion stamps
// resolvedAt and notifies the requester.
func (s *MaintenanceService) UpdateStatus(ctx context.Context, id string, req models.UpdateMaintenanceStatusRequest) (*models.MaintenanceRequest, error) {
	switch req.Status {
	case models.MaintenancePending, models.MaintenanceInProgress, models.MaintenanceCompleted, models.MaintenanceRejected:
	default:
		return nil, fmt.Errorf("status %q invalid: %w", req.Status, ErrUnprocessable)
	}

	request, err := s.requests.Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("maintenance request %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("update maintenance status: %w", err)
	}

	wasCompleted := request.Status == models.MaintenanceCompleted
	request.Status = req.Status
	if req.AssignedTo != nil {
		request.AssignedTo = req.AssignedTo
	}
	if req.Notes != nil {
		request.Notes = req.Notes
	}
	if req.Status == models.MaintenanceCompleted && request.ResolvedAt == nil {
		t := s.now()
		request.ResolvedAt = &t
	}
	if err := s.requests.Update(ctx, request); err != nil {
		return nil, fmt.Errorf("update maintenance status: %w", err)
	}

	if req.Status == models.MaintenanceCompleted && !wasCompleted && s.notifier != nil {
		if err := s.notifier.NotifyMaintenanceCompleted(ctx, request); err != nil {
			log.Printf("⚠️ Maintenance completed notification failed: %v", err)
		}
	}
	return request, nil
}

// Delete removes a request.
func (s *MaintenanceService) Delete(ctx context.Context, id string) error {
	if err := s.requests.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("maintenance request %s: %w", id, ErrNotFound)
		}
		return fmt.Errorf("delete maintenance request: %w", err)
	}
	return nil
}
