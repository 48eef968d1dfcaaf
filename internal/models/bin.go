package models

import "time"

// Bin statuses
const (
	BinAvailable = "AVAILABLE"
	BinAssigned  = "ASSIGNED"
)

type Bin struct {
	BinID         string   `json:"bin_id" db:"bin_id"` // caller-assigned, immutable
	Status        string   `json:"status" db:"status"`
	OwnerID       *string  `json:"owner_id,omitempty" db:"owner_id"`
	AssignedDate  *int64   `json:"assigned_date,omitempty" db:"assigned_date"` // Unix timestamp
	Latitude      *float64 `json:"latitude,omitempty" db:"latitude"`
	Longitude     *float64 `json:"longitude,omitempty" db:"longitude"`
	PlasticLevel  int      `json:"plastic_level" db:"plastic_level"` // percentage 0-100
	PaperLevel    int      `json:"paper_level" db:"paper_level"`
	GlassLevel    int      `json:"glass_level" db:"glass_level"`
	LastEmptiedAt *int64   `json:"last_emptied_at,omitempty" db:"last_emptied_at"` // Unix timestamp
	CreatedAt     int64    `json:"created_at" db:"created_at"`
	UpdatedAt     int64    `json:"updated_at" db:"updated_at"`
}

// BinResponse is what we send to the client with ISO timestamps
type BinResponse struct {
	BinID          string   `json:"bin_id"`
	Status         string   `json:"status"`
	OwnerID        *string  `json:"owner_id,omitempty"`
	AssignedDate   *int64   `json:"assigned_date,omitempty"`
	Latitude       *float64 `json:"latitude,omitempty"`
	Longitude      *float64 `json:"longitude,omitempty"`
	PlasticLevel   int      `json:"plastic_level"`
	PaperLevel     int      `json:"paper_level"`
	GlassLevel     int      `json:"glass_level"`
	LastEmptiedIso *string  `json:"lastEmptiedIso,omitempty"`
}

// ToBinResponse converts a Bin to BinResponse
func (b *Bin) ToBinResponse() BinResponse {
	resp := BinResponse{
		BinID:        b.BinID,
		Status:       b.Status,
		OwnerID:      b.OwnerID,
		AssignedDate: b.AssignedDate,
		Latitude:     b.Latitude,
		Longitude:    b.Longitude,
		PlasticLevel: b.PlasticLevel,
		PaperLevel:   b.PaperLevel,
		GlassLevel:   b.GlassLevel,
	}

	if b.LastEmptiedAt != nil {
		t := time.Unix(*b.LastEmptiedAt, 0)
		iso := t.Format(time.RFC3339)
		resp.LastEmptiedIso = &iso
	}

	return resp
}

// BinLevelReport is one telemetry snapshot for a bin. Levels are absolute
// percentages, never deltas.
type BinLevelReport struct {
	BinID        string `json:"bin_id"`
	PlasticLevel int    `json:"plastic_level"`
	PaperLevel   int    `json:"paper_level"`
	GlassLevel   int    `json:"glass_level"`
}

// AddBinRequest is the request body for POST /api/bins
type AddBinRequest struct {
	BinID string `json:"bin_id"`
}

// BinLocationRequest is the request body for PATCH /api/bins/{id}/location
type BinLocationRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// AssignBinRequest is the request body for POST /api/manager/bins/{id}/assign
type AssignBinRequest struct {
	OwnerID string `json:"owner_id"`
}
