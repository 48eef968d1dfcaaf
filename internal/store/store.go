// Package store defines the persistence boundary for the backend. Every
// entity gets simple CRUD plus the conditional operations the coordinators
// rely on: the read-check-write invariants (bin ownership, truck pairing,
// route transitions) commit as single conditional updates here, so two
// concurrent callers racing for the same entity cannot both win.
package store

import (
	"context"
	"errors"

	"smartwaste-backend/internal/models"
)

var (
	ErrNotFound  = errors.New("store: not found")
	ErrDuplicate = errors.New("store: duplicate")
	ErrConflict  = errors.New("store: conflict")
)

// BinFilter narrows List. Zero values mean "any".
type BinFilter struct {
	Status  string
	OwnerID string
}

type BinStore interface {
	Get(ctx context.Context, binID string) (*models.Bin, error)
	List(ctx context.Context, filter BinFilter) ([]models.Bin, error)
	Create(ctx context.Context, bin *models.Bin) error
	Delete(ctx context.Context, binID string) error
	UpdateLocation(ctx context.Context, binID string, lat, lng float64) error
	SetStatus(ctx context.Context, binID, status string) error
	// AssignOwner transitions the bin to ASSIGNED for ownerID only if it is
	// currently AVAILABLE. Returns ErrConflict otherwise.
	AssignOwner(ctx context.Context, binID, ownerID string, assignedDate int64) error
	// UpdateLevels overwrites the three fill counters. Last write wins.
	UpdateLevels(ctx context.Context, binID string, plastic, paper, glass int) error
	// ResetLevels zeroes all counters and stamps last_emptied_at.
	ResetLevels(ctx context.Context, binID string, emptiedAt int64) error
	// ListHighFill returns bins at or above threshold on any material.
	ListHighFill(ctx context.Context, threshold int) ([]models.Bin, error)
}

// TruckFilter narrows List. Zero values mean "any".
type TruckFilter struct {
	Status        string
	MinCapacityKg int64
}

type TruckStore interface {
	Get(ctx context.Context, id string) (*models.Truck, error)
	GetByRegistration(ctx context.Context, registrationNumber string) (*models.Truck, error)
	List(ctx context.Context, filter TruckFilter) ([]models.Truck, error)
	Create(ctx context.Context, truck *models.Truck) error
	Update(ctx context.Context, truck *models.Truck) error
	Delete(ctx context.Context, id string) error
	// SetStatus commits the status change only if the truck is still in
	// fromStatus. ErrConflict when another writer got there first.
	SetStatus(ctx context.Context, id, fromStatus, toStatus string, lastMaintenance *int64) error
	// MarkInService flips AVAILABLE -> IN_SERVICE. ErrConflict otherwise.
	MarkInService(ctx context.Context, id string) error
	// MarkAvailable flips IN_SERVICE -> AVAILABLE. ErrConflict otherwise.
	MarkAvailable(ctx context.Context, id string) error
	UpdateLocation(ctx context.Context, id string, lat, lng float64) error
}

type AssignmentStore interface {
	// Create inserts the live truck-collector pairing. ErrDuplicate if the
	// collector or the truck already holds one.
	Create(ctx context.Context, assignment *models.TruckAssignment) error
	GetByCollector(ctx context.Context, collectorID string) (*models.TruckAssignment, error)
	GetByTruck(ctx context.Context, truckID string) (*models.TruckAssignment, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]models.TruckAssignment, error)
}

type RouteStore interface {
	// Get returns the route with its stops, ordered by stop_order.
	Get(ctx context.Context, id string) (*models.Route, error)
	List(ctx context.Context) ([]models.Route, error)
	Create(ctx context.Context, route *models.Route) error
	// Rebuild replaces the name and stop list, resets status to CREATED and
	// clears the assignment. ErrConflict if the route is IN_PROGRESS.
	Rebuild(ctx context.Context, id, name string, stops []models.RouteStop) error
	// Delete removes the route. ErrConflict unless CREATED or COMPLETED.
	Delete(ctx context.Context, id string) error
	// Assign moves the route to ASSIGNED for the collector. ErrConflict if
	// the route is IN_PROGRESS.
	Assign(ctx context.Context, id, collectorID string) error
	// Start moves ASSIGNED -> IN_PROGRESS, but only for the assigned
	// collector. ErrConflict if the state or the collector doesn't match.
	Start(ctx context.Context, id, collectorID string, startedAt int64) error
	// Complete moves IN_PROGRESS -> COMPLETED, same ownership rule as Start.
	Complete(ctx context.Context, id, collectorID string, endedAt int64) error
	FindByStopAndStatus(ctx context.Context, binID, status string) (*models.Route, error)
	FindLatestByCollectorAndStatus(ctx context.Context, collectorID, status string) (*models.Route, error)
}

// NotificationFilter narrows ListByRecipient. Page is zero-based;
// Size <= 0 disables paging.
type NotificationFilter struct {
	IsRead   *bool
	Type     string
	Priority string
	Page     int
	Size     int
}

type NotificationStore interface {
	Create(ctx context.Context, n *models.Notification) error
	Get(ctx context.Context, id string) (*models.Notification, error)
	// ListByRecipient returns one page plus the unpaged total, newest first.
	ListByRecipient(ctx context.Context, recipientID, recipientType string, filter NotificationFilter) ([]models.Notification, int, error)
	// HasRecentUnread reports whether an unread notification of this type
	// exists for the bin, created at or after the cutoff.
	HasRecentUnread(ctx context.Context, binID, notificationType string, createdAfter int64) (bool, error)
	MarkRead(ctx context.Context, id string, readAt int64) error
	MarkAllRead(ctx context.Context, recipientID, recipientType string, readAt int64) (int, error)
	Delete(ctx context.Context, ids []string) error
	CountUnread(ctx context.Context, recipientID, recipientType string) (int, error)
	// DeleteExpiredUnread sweeps rows whose expiry passed without being read.
	DeleteExpiredUnread(ctx context.Context, now int64) (int, error)
}

type UserStore interface {
	Get(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id string) error
	ListByRole(ctx context.Context, role string) ([]models.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}

// MaintenanceFilter narrows maintenance request listings. Page is zero-based.
type MaintenanceFilter struct {
	Status      string
	BinID       string
	RequesterID string
	Page        int
	Size        int
}

type MaintenanceStore interface {
	Create(ctx context.Context, req *models.MaintenanceRequest) error
	Get(ctx context.Context, id string) (*models.MaintenanceRequest, error)
	Update(ctx context.Context, req *models.MaintenanceRequest) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter MaintenanceFilter) ([]models.MaintenanceRequest, int, error)
}

type ResetTokenStore interface {
	Create(ctx context.Context, token *models.PasswordResetToken) error
	// GetActive finds an unused, unexpired token matching the PIN.
	GetActive(ctx context.Context, userID, pin string, now int64) (*models.PasswordResetToken, error)
	MarkUsed(ctx context.Context, id string) error
}

type FCMTokenStore interface {
	// Save upserts by token value.
	Save(ctx context.Context, token *models.FCMToken) error
	ListByUser(ctx context.Context, userID string) ([]models.FCMToken, error)
}
