package models

// Route statuses. Transitions only run CREATED -> ASSIGNED -> IN_PROGRESS ->
// COMPLETED, plus a reset to CREATED when an edit rebuilds the stop list.
const (
	RouteCreated    = "CREATED"
	RouteAssigned   = "ASSIGNED"
	RouteInProgress = "IN_PROGRESS"
	RouteCompleted  = "COMPLETED"
)

type Route struct {
	ID             string      `json:"id" db:"id"`
	Name           string      `json:"name" db:"name"`
	Status         string      `json:"status" db:"status"`
	AssignedToID   *string     `json:"assigned_to_id,omitempty" db:"assigned_to_id"`
	DateCreated    int64       `json:"date_created" db:"date_created"` // Unix timestamp
	RouteStartTime *int64      `json:"route_start_time,omitempty" db:"route_start_time"`
	RouteEndTime   *int64      `json:"route_end_time,omitempty" db:"route_end_time"`
	Stops          []RouteStop `json:"stops" db:"-"`
}

// RouteStop is a geographic snapshot taken when the route is built. Editing
// a bin's location afterwards does not move existing stops.
type RouteStop struct {
	RouteID   string   `json:"-" db:"route_id"`
	BinID     string   `json:"bin_id" db:"bin_id"`
	StopOrder int      `json:"stop_order" db:"stop_order"` // 1-based, no gaps
	Latitude  *float64 `json:"latitude,omitempty" db:"latitude"`
	Longitude *float64 `json:"longitude,omitempty" db:"longitude"`
}

// CreateRouteRequest is the request body for POST /api/manager/routes and
// PUT /api/manager/routes/{id}
type CreateRouteRequest struct {
	Name   string   `json:"name"`
	BinIDs []string `json:"bin_ids"`
}

// AssignRouteRequest is the request body for POST /api/manager/routes/{id}/assign
type AssignRouteRequest struct {
	CollectorID string `json:"collector_id"`
}

// MarkBinCollectedRequest is the request body for POST /api/collector/routes/collect
type MarkBinCollectedRequest struct {
	RouteID string `json:"route_id"`
	BinID   string `json:"bin_id"`
}

// BinStop is one stop of the collector's assigned route, joined with the
// bin's current levels
type BinStop struct {
	StopOrder     int      `json:"stop_order"`
	BinID         string   `json:"bin_id"`
	Latitude      *float64 `json:"latitude,omitempty"`
	Longitude     *float64 `json:"longitude,omitempty"`
	PlasticLevel  int      `json:"plastic_level"`
	PaperLevel    int      `json:"paper_level"`
	GlassLevel    int      `json:"glass_level"`
	LastEmptiedAt *int64   `json:"last_emptied_at,omitempty"`
}

// AssignedRouteResponse is the collector's view of their current route
type AssignedRouteResponse struct {
	RouteID        string    `json:"route_id"`
	Status         string    `json:"status"`
	RouteStartTime *int64    `json:"route_start_time,omitempty"`
	RouteEndTime   *int64    `json:"route_end_time,omitempty"`
	Stops          []BinStop `json:"stops"`
}
