package models

// Maintenance request statuses
const (
	MaintenancePending    = "PENDING"
	MaintenanceInProgress = "IN_PROGRESS"
	MaintenanceCompleted  = "COMPLETED"
	MaintenanceRejected   = "REJECTED"
)

type MaintenanceRequest struct {
	ID          string  `json:"id" db:"id"`
	BinID       string  `json:"bin_id" db:"bin_id"`
	RequesterID string  `json:"requester_id" db:"requester_id"`
	RequestType string  `json:"request_type" db:"request_type"`
	Description string  `json:"description" db:"description"`
	Priority    string  `json:"priority" db:"priority"`
	Status      string  `json:"status" db:"status"`
	Notes       *string `json:"notes,omitempty" db:"notes"`
	AssignedTo  *string `json:"assigned_to,omitempty" db:"assigned_to"`
	CreatedAt   int64   `json:"created_at" db:"created_at"` // Unix timestamp
	ResolvedAt  *int64  `json:"resolved_at,omitempty" db:"resolved_at"`
}

// CreateMaintenanceRequest is the request body for POST /api/maintenance-requests
type CreateMaintenanceRequest struct {
	BinID       string  `json:"bin_id"`
	RequestType string  `json:"request_type"`
	Description string  `json:"description"`
	Priority    string  `json:"priority"`
	Notes       *string `json:"notes,omitempty"`
}

// UpdateMaintenanceStatusRequest is the request body for
// PATCH /api/manager/maintenance-requests/{id}/status
type UpdateMaintenanceStatusRequest struct {
	Status     string  `json:"status"`
	AssignedTo *string `json:"assigned_to,omitempty"`
	Notes      *string `json:"notes,omitempty"`
}
