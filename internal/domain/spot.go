package domain

import "time"

type SpotCategory string

const (
	SpotHandicapped SpotCategory = "handicapped"
	SpotCompact     SpotCategory = "compact"
	SpotLarge       SpotCategory = "large"
	SpotMotorcycle  SpotCategory = "motorcycle"
)

func (c SpotCategory) Valid() bool {
	switch c {
	case SpotHandicapped, SpotCompact, SpotLarge, SpotMotorcycle:
		return true
	}
	return false
}

// Spot is a single physical parking space. Category never changes after
// creation; Occupied is true exactly when VehicleLicense is non-empty.
type Spot struct {
	ID             int          `json:"id"`
	FloorName      string       `json:"floor_name"`
	Category       SpotCategory `json:"category"`
	Occupied       bool         `json:"occupied"`
	VehicleLicense string       `json:"vehicle_license,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
}

type SpotDTO struct {
	ID       int    `json:"id" binding:"required"`
	Category string `json:"category" binding:"required"`
}

// SpotSnapshot is the read-only view handed to display boards.
type SpotSnapshot struct {
	ID        int          `json:"id"`
	FloorName string       `json:"floor_name"`
	Category  SpotCategory `json:"category"`
	Occupied  bool         `json:"occupied"`
}

// SpotUpdateNotification is pushed to display-board WebSocket clients after
// every occupancy change.
type SpotUpdateNotification struct {
	SpotID    int          `json:"spot_id"`
	FloorName string       `json:"floor_name"`
	Category  SpotCategory `json:"category"`
	Occupied  bool         `json:"occupied"`
	Timestamp time.Time    `json:"timestamp"`
}
