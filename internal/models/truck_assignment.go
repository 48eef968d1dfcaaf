package models

// TruckAssignment is the live pairing of one truck to one collector. At any
// instant a collector holds at most one and a truck belongs to at most one.
type TruckAssignment struct {
	ID           string `json:"id" db:"id"`
	TruckID      string `json:"truck_id" db:"truck_id"`
	CollectorID  string `json:"collector_id" db:"collector_id"`
	AssignedDate int64  `json:"assigned_date" db:"assigned_date"` // Unix timestamp
}

// TruckAssignmentView pairs the truck and collector records for listings
type TruckAssignmentView struct {
	Truck        Truck        `json:"truck"`
	Collector    UserResponse `json:"collector"`
	AssignedDate int64        `json:"assigned_date"`
}

// AssignTruckRequest is the request body for POST /api/manager/trucks/assign
type AssignTruckRequest struct {
	RegistrationNumber string `json:"registration_number"`
	CollectorID        string `json:"collector_id"`
}

// HandOverTruckRequest is the request body for POST /api/collector/trucks/hand-over
type HandOverTruckRequest struct {
	RegistrationNumber string `json:"registration_number"`
}
