package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

// Notification types
const (
	NotificationFillLevelHigh        = "FILL_LEVEL_HIGH"
	NotificationMaintenanceRequest   = "MAINTENANCE_REQUEST"
	NotificationCollectionDate       = "COLLECTION_DATE"
	NotificationMaintenanceCompleted = "MAINTENANCE_COMPLETED"
)

// Notification priorities
const (
	PriorityLow    = "LOW"
	PriorityMedium = "MEDIUM"
	PriorityHigh   = "HIGH"
	PriorityUrgent = "URGENT"
)

// Metadata is the free-form JSON document stored alongside a notification
type Metadata map[string]interface{}

func (m Metadata) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

func (m *Metadata) Scan(src interface{}) error {
	if src == nil {
		*m = nil
		return nil
	}
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	default:
		return errors.New("metadata: unsupported scan source")
	}
}

type Notification struct {
	ID                   string   `json:"id" db:"id"`
	Type                 string   `json:"type" db:"type"`
	Title                string   `json:"title" db:"title"`
	Message              string   `json:"message" db:"message"`
	RecipientType        string   `json:"recipient_type" db:"recipient_type"` // recipient's role
	RecipientID          string   `json:"recipient_id" db:"recipient_id"`
	BinID                *string  `json:"bin_id,omitempty" db:"bin_id"`
	MaintenanceRequestID *string  `json:"maintenance_request_id,omitempty" db:"maintenance_request_id"`
	IsRead               bool     `json:"is_read" db:"is_read"`
	Priority             string   `json:"priority" db:"priority"`
	CreatedAt            int64    `json:"created_at" db:"created_at"` // Unix timestamp
	ReadAt               *int64   `json:"read_at,omitempty" db:"read_at"`
	ExpiresAt            *int64   `json:"expires_at,omitempty" db:"expires_at"`
	Metadata             Metadata `json:"metadata,omitempty" db:"metadata"`
}

// NotificationStats summarizes a user's notification feed
type NotificationStats struct {
	Total        int `json:"total_notifications"`
	Unread       int `json:"unread_notifications"`
	HighPriority int `json:"high_priority_notifications"`
	Today        int `json:"today_notifications"`
	Week         int `json:"week_notifications"`
}

// DeleteNotificationsRequest is the request body for DELETE /api/notifications
type DeleteNotificationsRequest struct {
	IDs []string `json:"ids"`
}
