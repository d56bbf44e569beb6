package domain

import "time"

// Floor groups spots. Spot state itself lives in the registry; the floor
// keeps the spot ids it owns in creation order.
type Floor struct {
	Name      string    `json:"name"`
	SpotIDs   []int     `json:"spot_ids"`
	CreatedAt time.Time `json:"created_at"`
}

type FloorDTO struct {
	Name string `json:"name" binding:"required"`
}

// Entrance and Exit are the registered panel endpoints. They carry no
// behavior of their own; tickets reference them by id.
type Entrance struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type Exit struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type PanelDTO struct {
	ID   int    `json:"id" binding:"required"`
	Name string `json:"name" binding:"required"`
}

type RateDTO struct {
	BaseRatePerHour float64 `json:"base_rate_per_hour" binding:"required,gt=0"`
}

// FloorStatus reports per-category free counts for one floor.
type FloorStatus struct {
	Name       string               `json:"name"`
	TotalSpots int                  `json:"total_spots"`
	Free       map[SpotCategory]int `json:"free"`
}

// FacilityStatus is the aggregate occupancy report. Full follows the
// configured fullness policy.
type FacilityStatus struct {
	Floors        []FloorStatus `json:"floors"`
	TotalSpots    int           `json:"total_spots"`
	OccupiedSpots int           `json:"occupied_spots"`
	ActiveTickets int           `json:"active_tickets"`
	Full          bool          `json:"full"`
}
