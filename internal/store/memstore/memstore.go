// Package memstore is an in-memory implementation of the store interfaces.
// A single mutex serializes every operation, so the conditional updates keep
// the same one-winner semantics as the Postgres implementation. Used by the
// service tests and handy for local experiments without a database.
package memstore

import (
	"context"
	"sort"
	"strconv"
	"sync"

	"smartwaste-backend/internal/models"
	"smartwaste-backend/internal/store"
)

type state struct {
	mu sync.Mutex

	bins          map[string]models.Bin
	trucks        map[string]models.Truck
	assignments   map[string]models.TruckAssignment
	routes        map[string]models.Route
	notifications map[string]models.Notification
	users         map[string]models.User
	maintenance   map[string]models.MaintenanceRequest
	resetTokens   map[string]models.PasswordResetToken
	fcmTokens     map[string]models.FCMToken // keyed by token value

	seq int
}

// nextSeq must be called with mu held.
func (st *state) nextSeq() int {
	st.seq++
	return st.seq
}

// Store bundles one in-memory implementation of every store interface,
// all backed by the same state and mutex.
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

func New() *Store {
	st := &state{
		bins:          make(map[string]models.Bin),
		trucks:        make(map[string]models.Truck),
		assignments:   make(map[string]models.TruckAssignment),
		routes:        make(map[string]models.Route),
		notifications: make(map[string]models.Notification),
		users:         make(map[string]models.User),
		maintenance:   make(map[string]models.MaintenanceRequest),
		resetTokens:   make(map[string]models.PasswordResetToken),
		fcmTokens:     make(map[string]models.FCMToken),
	}
	return &Store{
		Bins:          &binStore{st},
		Trucks:        &truckStore{st},
		Assignments:   &assignmentStore{st},
		Routes:        &routeStore{st},
		Notifications: &notificationStore{st},
		Users:         &userStore{st},
		Maintenance:   &maintenanceStore{st},
		ResetTokens:   &resetTokenStore{st},
		FCMTokens:     &fcmTokenStore{st},
	}
}

// --- bins ---

type binStore struct{ st *state }

func (s *binStore) Get(ctx context.Context, binID string) (*models.Bin, error) {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	bin, ok := s.st.bins[binID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &bin, nil
}

func (s *binStore) List(ctx context.Context, filter store.BinFilter) ([]models.Bin, error) {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	var out []models.Bin
	for _, bin := range s.st.bins {
		if filter.Status != "" && bin.Status != filter.Status {
			continue
		}
		if filter.OwnerID != "" && (bin.OwnerID == nil || *bin.OwnerID != filter.OwnerID) {
			continue
		}
		out = append(out, bin)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BinID < out[j].BinID })
	return out, nil
}

func (s *binStore) Create(ctx context.Context, bin *models.Bin) error {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	if _, ok := s.st.bins[bin.BinID]; ok {
		return store.ErrDuplicate
	}
	s.st.bins[bin.BinID] = *bin
	return nil
}

func (s *binStore) Delete(ctx context.Context, binID string) error {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	if _, ok := s.st.bins[binID]; !ok {
		return store.ErrNotFound
	}
	delete(s.st.bins, binID)
	return nil
}

func (s *binStore) UpdateLocation(ctx context.Context, binID string, lat, lng float64) error {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	bin, ok := s.st.bins[binID]
	if !ok {
		return store.ErrNotFound
	}
	bin.Latitude = &lat
	bin.Longitude = &lng
	s.st.bins[binID] = bin
	return nil
}

func (s *binStore) SetStatus(ctx context.Context, binID, status string) error {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	bin, ok := s.st.bins[binID]
	if !ok {
		return store.ErrNotFound
	}
	bin.Status = status
	if status == models.BinAvailable {
		bin.OwnerID = nil
		bin.AssignedDate = nil
	}
	s.st.bins[binID] = bin
	return nil
}

func (s *binStore) AssignOwner(ctx context.Context, binID, ownerID string, assignedDate int64) error {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	bin, ok := s.st.bins[binID]
	if !ok {
		return store.ErrNotFound
	}
	if bin.Status != models.BinAvailable {
		return store.ErrConflict
	}
	bin.Status = models.BinAssigned
	bin.OwnerID = &ownerID
	bin.AssignedDate = &assignedDate
	s.st.bins[binID] = bin
	return nil
}

func (s *binStore) UpdateLevels(ctx context.Context, binID string, plastic, paper, glass int) error {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	bin, ok := s.st.bins[binID]
	if !ok {
		return store.ErrNotFound
	}
	bin.PlasticLevel = plastic
	bin.PaperLevel = paper
	bin.GlassLevel = glass
	s.st.bins[binID] = bin
	return nil
}

func (s *binStore) ResetLevels(ctx context.Context, binID string, emptiedAt int64) error {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	bin, ok := s.st.bins[binID]
	if !ok {
		return store.ErrNotFound
	}
	bin.PlasticLevel = 0
	bin.PaperLevel = 0
	bin.GlassLevel = 0
	bin.LastEmptiedAt = &emptiedAt
	s.st.bins[binID] = bin
	return nil
}

func (s *binStore) ListHighFill(ctx context.Context, threshold int) ([]models.Bin, error) {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	var out []models.Bin
	for _, bin := range s.st.bins {
		if bin.PlasticLevel >= threshold || bin.PaperLevel >= threshold || bin.GlassLevel >= threshold {
			out = append(out, bin)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BinID < out[j].BinID })
	return out, nil
}

// --- trucks ---

type truckStore struct{ st *state }

func (s *truckStore) Get(ctx context.Context, id string) (*models.Truck, error) {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	truck, ok := s.st.trucks[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &truck, nil
}

func (s *truckStore) GetByRegistration(ctx context.Context, registrationNumber string) (*models.Truck, error) {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	for _, truck := range s.st.trucks {
		if truck.RegistrationNumber == registrationNumber {
			t := truck
			return &t, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *truckStore) List(ctx context.Context, filter store.TruckFilter) ([]models.Truck, error) {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	var out []models.Truck
	for _, truck := range s.st.trucks {
		if filter.Status != "" && truck.Status != filter.Status {
			continue
		}
		if filter.MinCapacityKg > 0 && truck.CapacityKg < filter.MinCapacityKg {
			continue
		}
		out = append(out, truck)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RegistrationNumber < out[j].RegistrationNumber })
	return out, nil
}

func (s *truckStore) Create(ctx context.Context, truck *models.Truck) error {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	for _, existing := range s.st.trucks {
		if existing.RegistrationNumber == truck.RegistrationNumber {
			return store.ErrDuplicate
		}
	}
	s.st.trucks[truck.ID] = *truck
	return nil
}

func (s *truckStore) Update(ctx context.Context, truck *models.Truck) error {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	if _, ok := s.st.trucks[truck.ID]; !ok {
		return store.ErrNotFound
	}
	s.st.trucks[truck.ID] = *truck
	return nil
}

func (s *truckStore) Delete(ctx context.Context, id string) error {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	if _, ok := s.st.trucks[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.st.trucks, id)
	return nil
}

func (s *truckStore) SetStatus(ctx context.Context, id, fromStatus, toStatus string, lastMaintenance *int64) error {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	truck, ok := s.st.trucks[id]
	if !ok {
		return store.ErrNotFound
	}
	if truck.Status != fromStatus {
		return store.ErrConflict
	}
	truck.Status = toStatus
	if lastMaintenance != nil {
		truck.LastMaintenance = lastMaintenance
	}
	s.st.trucks[id] = truck
	return nil
}

func (s *truckStore) MarkInService(ctx context.Context, id string) error {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	truck, ok := s.st.trucks[id]
	if !ok {
		return store.ErrNotFound
	}
	if truck.Status != models.TruckAvailable {
		return store.ErrConflict
	}
	truck.Status = models.TruckInService
	s.st.trucks[id] = truck
	return nil
}

func (s *truckStore) MarkAvailable(ctx context.Context, id string) error {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	truck, ok := s.st.trucks[id]
	if !ok {
		return store.ErrNotFound
	}
	if truck.Status != models.TruckInService {
		return store.ErrConflict
	}
	truck.Status = models.TruckAvailable
	s.st.trucks[id] = truck
	return nil
}

func (s *truckStore) UpdateLocation(ctx context.Context, id string, lat, lng float64) error {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	truck, ok := s.st.trucks[id]
	if !ok {
		return store.ErrNotFound
	}
	truck.Latitude = &lat
	truck.Longitude = &lng
	s.st.trucks[id] = truck
	return nil
}

// --- truck assignments ---

type assignmentStore struct{ st *state }

func (s *assignmentStore) Create(ctx context.Context, assignment *models.TruckAssignment) error {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	for _, existing := range s.st.assignments {
		if existing.CollectorID == assignment.CollectorID || existing.TruckID == assignment.TruckID {
			return store.ErrDuplicate
		}
	}
	s.st.assignments[assignment.ID] = *assignment
	return nil
}

func (s *assignmentStore) GetByCollector(ctx context.Context, collectorID string) (*models.TruckAssignment, error) {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	for _, assignment := range s.st.assignments {
		if assignment.CollectorID == collectorID {
			a := assignment
			return &a, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *assignmentStore) GetByTruck(ctx context.Context, truckID string) (*models.TruckAssignment, error) {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	for _, assignment := range s.st.assignments {
		if assignment.TruckID == truckID {
			a := assignment
			return &a, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *assignmentStore) Delete(ctx context.Context, id string) error {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	if _, ok := s.st.assignments[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.st.assignments, id)
	return nil
}

func (s *assignmentStore) List(ctx context.Context) ([]models.TruckAssignment, error) {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	out := make([]models.TruckAssignment, 0, len(s.st.assignments))
	for _, assignment := range s.st.assignments {
		out = append(out, assignment)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// --- routes ---

type routeStore struct{ st *state }

func copyRoute(route models.Route) models.Route {
	stops := make([]models.RouteStop, len(route.Stops))
	copy(stops, route.Stops)
	route.Stops = stops
	return route
}

func (s *routeStore) Get(ctx context.Context, id string) (*models.Route, error) {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	route, ok := s.st.routes[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	r := copyRoute(route)
	return &r, nil
}

func (s *routeStore) List(ctx context.Context) ([]models.Route, error) {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	out := make([]models.Route, 0, len(s.st.routes))
	for _, route := range s.st.routes {
		out = append(out, copyRoute(route))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DateCreated > out[j].DateCreated })
	return out, nil
}

func (s *routeStore) Create(ctx context.Context, route *models.Route) error {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	if _, ok := s.st.routes[route.ID]; ok {
		return store.ErrDuplicate
	}
	s.st.routes[route.ID] = copyRoute(*route)
	return nil
}

func (s *routeStore) Rebuild(ctx context.Context, id, name string, stops []models.RouteStop) error {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	route, ok := s.st.routes[id]
	if !ok {
		return store.ErrNotFound
	}
	if route.Status == models.RouteInProgress {
		return store.ErrConflict
	}
	route.Name = name
	route.Status = models.RouteCreated
	route.AssignedToID = nil
	route.RouteStartTime = nil
	route.RouteEndTime = nil
	route.Stops = append([]models.RouteStop(nil), stops...)
	s.st.routes[id] = route
	return nil
}

func (s *routeStore) Delete(ctx context.Context, id string) error {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	route, ok := s.st.routes[id]
	if !ok {
		return store.ErrNotFound
	}
	if route.Status == models.RouteAssigned || route.Status == models.RouteInProgress {
		return store.ErrConflict
	}
	delete(s.st.routes, id)
	return nil
}

func (s *routeStore) Assign(ctx context.Context, id, collectorID string) error {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	route, ok := s.st.routes[id]
	if !ok {
		return store.ErrNotFound
	}
	if route.Status == models.RouteInProgress {
		return store.ErrConflict
	}
	route.Status = models.RouteAssigned
	route.AssignedToID = &collectorID
	s.st.routes[id] = route
	return nil
}

func (s *routeStore) Start(ctx context.Context, id, collectorID string, startedAt int64) error {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	route, ok := s.st.routes[id]
	if !ok {
		return store.ErrNotFound
	}
	if route.Status != models.RouteAssigned || route.AssignedToID == nil || *route.AssignedToID != collectorID {
		return store.ErrConflict
	}
	route.Status = models.RouteInProgress
	route.RouteStartTime = &startedAt
	s.st.routes[id] = route
	return nil
}

func (s *routeStore) Complete(ctx context.Context, id, collectorID string, endedAt int64) error {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	route, ok := s.st.routes[id]
	if !ok {
		return store.ErrNotFound
	}
	if route.Status != models.RouteInProgress || route.AssignedToID == nil || *route.AssignedToID != collectorID {
		return store.ErrConflict
	}
	route.Status = models.RouteCompleted
	route.RouteEndTime = &endedAt
	s.st.routes[id] = route
	return nil
}

func (s *routeStore) FindByStopAndStatus(ctx context.Context, binID, status string) (*models.Route, error) {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	for _, route := range s.st.routes {
		if route.Status != status {
			continue
		}
		for _, stop := range route.Stops {
			if stop.BinID == binID {
				r := copyRoute(route)
				return &r, nil
			}
		}
	}
	return nil, store.ErrNotFound
}

func (s *routeStore) FindLatestByCollectorAndStatus(ctx context.Context, collectorID, status string) (*models.Route, error) {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	var best *models.Route
	for _, route := range s.st.routes {
		if route.Status != status || route.AssignedToID == nil || *route.AssignedToID != collectorID {
			continue
		}
		if best == nil || route.DateCreated > best.DateCreated {
			r := copyRoute(route)
			best = &r
		}
	}
	if best == nil {
		return nil, store.ErrNotFound
	}
	return best, nil
}

// --- notifications ---

type notificationStore struct{ st *state }

func (s *notificationStore) Create(ctx context.Context, n *models.Notification) error {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	if n.ID == "" {
		n.ID = "n-" + strconv.Itoa(s.st.nextSeq())
	}
	s.st.notifications[n.ID] = *n
	return nil
}

func (s *notificationStore) Get(ctx context.Context, id string) (*models.Notification, error) {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	n, ok := s.st.notifications[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &n, nil
}

func (s *notificationStore) ListByRecipient(ctx context.Context, recipientID, recipientType string, filter store.NotificationFilter) ([]models.Notification, int, error) {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	var all []models.Notification
	for _, n := range s.st.notifications {
		if n.RecipientID != recipientID || n.RecipientType != recipientType {
			continue
		}
		if filter.IsRead != nil && n.IsRead != *filter.IsRead {
			continue
		}
		if filter.Type != "" && n.Type != filter.Type {
			continue
		}
		if filter.Priority != "" && n.Priority != filter.Priority {
			continue
		}
		all = append(all, n)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt != all[j].CreatedAt {
			return all[i].CreatedAt > all[j].CreatedAt
		}
		return all[i].ID > all[j].ID
	})
	total := len(all)
	if filter.Size > 0 {
		start := filter.Page * filter.Size
		if start > total {
			start = total
		}
		end := start + filter.Size
		if end > total {
			end = total
		}
		all = all[start:end]
	}
	return all, total, nil
}

func (s *notificationStore) HasRecentUnread(ctx context.Context, binID, notificationType string, createdAfter int64) (bool, error) {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	for _, n := range s.st.notifications {
		if n.BinID != nil && *n.BinID == binID && n.Type == notificationType &&
			!n.IsRead && n.CreatedAt >= createdAfter {
			return true, nil
		}
	}
	return false, nil
}

func (s *notificationStore) MarkRead(ctx context.Context, id string, readAt int64) error {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	n, ok := s.st.notifications[id]
	if !ok {
		return store.ErrNotFound
	}
	if !n.IsRead {
		n.IsRead = true
		n.ReadAt = &readAt
		s.st.notifications[id] = n
	}
	return nil
}

func (s *notificationStore) MarkAllRead(ctx context.Context, recipientID, recipientType string, readAt int64) (int, error) {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	count := 0
	for id, n := range s.st.notifications {
		if n.RecipientID == recipientID && n.RecipientType == recipientType && !n.IsRead {
			n.IsRead = true
			n.ReadAt = &readAt
			s.st.notifications[id] = n
			count++
		}
	}
	return count, nil
}

func (s *notificationStore) Delete(ctx context.Context, ids []string) error {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	for _, id := range ids {
		delete(s.st.notifications, id)
	}
	return nil
}

func (s *notificationStore) CountUnread(ctx context.Context, recipientID, recipientType string) (int, error) {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	count := 0
	for _, n := range s.st.notifications {
		if n.RecipientID == recipientID && n.RecipientType == recipientType && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (s *notificationStore) DeleteExpiredUnread(ctx context.Context, now int64) (int, error) {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	count := 0
	for id, n := range s.st.notifications {
		if !n.IsRead && n.ExpiresAt != nil && *n.ExpiresAt < now {
			delete(s.st.notifications, id)
			count++
		}
	}
	return count, nil
}

// --- users ---

type userStore struct{ st *state }

func (s *userStore) Get(ctx context.Context, id string) (*models.User, error) {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	user, ok := s.st.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &user, nil
}

func (s *userStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	for _, user := range s.st.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *userStore) Create(ctx context.Context, user *models.User) error {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	if _, ok := s.st.users[user.ID]; ok {
		return store.ErrDuplicate
	}
	for _, existing := range s.st.users {
		if existing.Email == user.Email {
			return store.ErrDuplicate
		}
	}
	s.st.users[user.ID] = *user
	return nil
}

func (s *userStore) Delete(ctx context.Context, id string) error {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	if _, ok := s.st.users[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.st.users, id)
	return nil
}

func (s *userStore) ListByRole(ctx context.Context, role string) ([]models.User, error) {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	var out []models.User
	for _, user := range s.st.users {
		if user.Role == role {
			out = append(out, user)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *userStore) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	user, ok := s.st.users[id]
	if !ok {
		return store.ErrNotFound
	}
	user.Password = passwordHash
	s.st.users[id] = user
	return nil
}

// --- maintenance requests ---

type maintenanceStore struct{ st *state }

func (s *maintenanceStore) Create(ctx context.Context, req *models.MaintenanceRequest) error {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	if req.ID == "" {
		req.ID = "m-" + strconv.Itoa(s.st.nextSeq())
	}
	s.st.maintenance[req.ID] = *req
	return nil
}

func (s *maintenanceStore) Get(ctx context.Context, id string) (*models.MaintenanceRequest, error) {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	req, ok := s.st.maintenance[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &req, nil
}

func (s *maintenanceStore) Update(ctx context.Context, req *models.MaintenanceRequest) error {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	if _, ok := s.st.maintenance[req.ID]; !ok {
		return store.ErrNotFound
	}
	s.st.maintenance[req.ID] = *req
	return nil
}

func (s *maintenanceStore) Delete(ctx context.Context, id string) error {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	if _, ok := s.st.maintenance[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.st.maintenance, id)
	return nil
}

func (s *maintenanceStore) List(ctx context.Context, filter store.MaintenanceFilter) ([]models.MaintenanceRequest, int, error) {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	var all []models.MaintenanceRequest
	for _, req := range s.st.maintenance {
		if filter.Status != "" && req.Status != filter.Status {
			continue
		}
		if filter.BinID != "" && req.BinID != filter.BinID {
			continue
		}
		if filter.RequesterID != "" && req.RequesterID != filter.RequesterID {
			continue
		}
		all = append(all, req)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt > all[j].CreatedAt })
	total := len(all)
	if filter.Size > 0 {
		start := filter.Page * filter.Size
		if start > total {
			start = total
		}
		end := start + filter.Size
		if end > total {
			end = total
		}
		all = all[start:end]
	}
	return all, total, nil
}

// --- password reset tokens ---

type resetTokenStore struct{ st *state }

func (s *resetTokenStore) Create(ctx context.Context, token *models.PasswordResetToken) error {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	if token.ID == "" {
		token.ID = "t-" + strconv.Itoa(s.st.nextSeq())
	}
	s.st.resetTokens[token.ID] = *token
	return nil
}

func (s *resetTokenStore) GetActive(ctx context.Context, userID, pin string, now int64) (*models.PasswordResetToken, error) {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	for _, token := range s.st.resetTokens {
		if token.UserID == userID && token.Pin == pin && !token.Used && token.ExpiresAt >= now {
			t := token
			return &t, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *resetTokenStore) MarkUsed(ctx context.Context, id string) error {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	token, ok := s.st.resetTokens[id]
	if !ok {
		return store.ErrNotFound
	}
	token.Used = true
	s.st.resetTokens[id] = token
	return nil
}

// --- FCM tokens ---

type fcmTokenStore struct{ st *state }

func (s *fcmTokenStore) Save(ctx context.Context, token *models.FCMToken) error {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	if existing, ok := s.st.fcmTokens[token.Token]; ok {
		token.ID = existing.ID
	} else {
		token.ID = s.st.nextSeq()
	}
	s.st.fcmTokens[token.Token] = *token
	return nil
}

func (s *fcmTokenStore) ListByUser(ctx context.Context, userID string) ([]models.FCMToken, error) {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	var out []models.FCMToken
	for _, token := range s.st.fcmTokens {
		if token.UserID == userID {
			out = append(out, token)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
