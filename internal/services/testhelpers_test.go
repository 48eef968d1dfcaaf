package services

import (
	"context"
	"sync"
	"testing"

	"smartwaste-backend/internal/models"
	"smartwaste-backend/internal/store/memstore"
)

// testEnv wires every service against one shared in-memory store.
type testEnv struct {
	store *memstore.Store

	notifier    *NotificationService
	binStatus   *BinStatusService
	assignment  *AssignmentService
	trucks      *TruckService
	routes      *RouteService
	tracking    *TrackingService
	maintenance *MaintenanceService
}

func newTestEnv() *testEnv {
	st := memstore.New()
	notifier := NewNotificationService(st.Notifications, st.Users, st.FCMTokens, nil, nil)
	return &testEnv{
		store:       st,
		notifier:    notifier,
		binStatus:   NewBinStatusService(st.Bins, notifier, nil),
		assignment:  NewAssignmentService(st.Bins, st.Trucks, st.Assignments, st.Users),
		trucks:      NewTruckService(st.Trucks, st.Assignments),
		routes:      NewRouteService(st.Routes, st.Bins, st.Users, notifier),
		tracking:    NewTrackingService(st.Routes, st.Assignments, st.Trucks),
		maintenance: NewMaintenanceService(st.Maintenance, st.Bins, notifier),
	}
}

func (e *testEnv) addUser(t *testing.T, id, role string) {
	t.Helper()
	err := e.store.Users.Create(context.Background(), &models.User{
		ID:    id,
		Email: id + "@test.local",
		Name:  id,
		Role:  role,
	})
	if err != nil {
		t.Fatalf("seed user %s: %v", id, err)
	}
}

func (e *testEnv) addBin(t *testing.T, binID string) {
	t.Helper()
	lat, lng := 6.9271, 79.8612
	err := e.store.Bins.Create(context.Background(), &models.Bin{
		BinID:     binID,
		Status:    models.BinAvailable,
		Latitude:  &lat,
		Longitude: &lng,
	})
	if err != nil {
		t.Fatalf("seed bin %s: %v", binID, err)
	}
}

func (e *testEnv) addOwnedBin(t *testing.T, binID, ownerID string) {
	t.Helper()
	e.addBin(t, binID)
	if err := e.store.Bins.AssignOwner(context.Background(), binID, ownerID, 1000); err != nil {
		t.Fatalf("seed bin owner %s: %v", binID, err)
	}
}

func (e *testEnv) addTruck(t *testing.T, id, registration string) {
	t.Helper()
	err := e.store.Trucks.Create(context.Background(), &models.Truck{
		ID:                 id,
		RegistrationNumber: registration,
		CapacityKg:         5000,
		Status:             models.TruckAvailable,
	})
	if err != nil {
		t.Fatalf("seed truck %s: %v", id, err)
	}
}

func (e *testEnv) unreadFor(t *testing.T, userID, role string) int {
	t.Helper()
	count, err := e.store.Notifications.CountUnread(context.Background(), userID, role)
	if err != nil {
		t.Fatalf("count unread for %s: %v", userID, err)
	}
	return count
}

// recordingPusher captures websocket frames for assertions.
type recordingPusher struct {
	mu     sync.Mutex
	events []pushedEvent
}

type pushedEvent struct {
	UserID  string
	Event   string
	Payload interface{}
}

func (p *recordingPusher) Push(userID string, event string, payload interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, pushedEvent{UserID: userID, Event: event, Payload: payload})
}

func (p *recordingPusher) byEvent(event string) []pushedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []pushedEvent
	for _, e := range p.events {
		if e.Event == event {
			out = append(out, e)
		}
	}
	return out
}
