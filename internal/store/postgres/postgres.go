// Package postgres implements the store interfaces on top of sqlx and
// Postgres. Conditional state transitions run as single UPDATEs guarded by a
// WHERE clause on the expected state; zero affected rows means the caller
// lost the race (or the row never existed), which we resolve to ErrConflict
// or ErrNotFound with a follow-up existence check.
package postgres

import (
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"smartwaste-backend/internal/store"
)

// Store bundles the Postgres implementation of every store interface.
type Store struct {
	Bins          store.BinStore
	Trucks        store.TruckStore
	Assignments   store.AssignmentStore
	Routes        store.RouteStore
	Notifications store.NotificationStore
	Users         store.UserStore
	Maintenance   store.MaintenanceStore
	ResetTokens   store.ResetTokenStore
	FCMTokens     store.FCMTokenStore
}

func New(db *sqlx.DB) *Store {
	return &Store{
		Bins:          &binStore{db},
		Trucks:        &truckStore{db},
		Assignments:   &assignmentStore{db},
		Routes:        &routeStore{db},
		Notifications: &notificationStore{db},
		Users:         &userStore{db},
		Maintenance:   &maintenanceStore{db},
		ResetTokens:   &resetTokenStore{db},
		FCMTokens:     &fcmTokenStore{db},
	}
}

// isUniqueViolation reports whether err is a Postgres unique_violation (23505).
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
