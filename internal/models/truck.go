package models

// Truck statuses
const (
	TruckAvailable   = "AVAILABLE"
	TruckInService   = "IN_SERVICE"
	TruckNeedsRepair = "NEEDS_REPAIR"
)

type Truck struct {
	ID                 string   `json:"id" db:"id"`
	RegistrationNumber string   `json:"registration_number" db:"registration_number"`
	CapacityKg         int64    `json:"capacity_kg" db:"capacity_kg"`
	Status             string   `json:"status" db:"status"`
	LastMaintenance    *int64   `json:"last_maintenance,omitempty" db:"last_maintenance"` // Unix timestamp
	Latitude           *float64 `json:"latitude,omitempty" db:"latitude"`                 // live GPS
	Longitude          *float64 `json:"longitude,omitempty" db:"longitude"`
	CreatedAt          int64    `json:"created_at" db:"created_at"`
	UpdatedAt          int64    `json:"updated_at" db:"updated_at"`
}

// AddTruckRequest is the request body for POST /api/manager/trucks
type AddTruckRequest struct {
	RegistrationNumber string `json:"registration_number"`
	CapacityKg         int64  `json:"capacity_kg"`
}

// TruckLocationRequest is a GPS ping from the driver app
type TruckLocationRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}
