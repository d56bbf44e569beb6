package service

import (
	"fmt"
	"sort"
	"time"

	"parking_facility/internal/domain"
)

// SpotRegistry owns floors and spots and their occupancy state. It performs
// no locking of its own: every call happens under the facility lock, which
// serializes reserve/release against concurrent issuance.
type SpotRegistry struct {
	floorOrder []string
	floors     map[string]*domain.Floor
	spots      map[int]*domain.Spot
}

func NewSpotRegistry() *SpotRegistry {
	return &SpotRegistry{
		floors: make(map[string]*domain.Floor),
		spots:  make(map[int]*domain.Spot),
	}
}

func (r *SpotRegistry) AddFloor(name string) (*domain.Floor, error) {
	if _, exists := r.floors[name]; exists {
		return nil, fmt.Errorf("floor %q: %w", name, domain.ErrDuplicateID)
	}
	floor := &domain.Floor{Name: name, CreatedAt: time.Now().UTC()}
	r.floors[name] = floor
	r.floorOrder = append(r.floorOrder, name)
	return floor, nil
}

func (r *SpotRegistry) AddSpot(floorName string, id int, category domain.SpotCategory) (*domain.Spot, error) {
	floor, ok := r.floors[floorName]
	if !ok {
		return nil, fmt.Errorf("floor %q: %w", floorName, domain.ErrUnknownFloor)
	}
	if !category.Valid() {
		return nil, fmt.Errorf("invalid spot category %q", category)
	}
	if _, exists := r.spots[id]; exists {
		return nil, fmt.Errorf("spot %d: %w", id, domain.ErrDuplicateID)
	}
	spot := &domain.Spot{
		ID:        id,
		FloorName: floorName,
		Category:  category,
		CreatedAt: time.Now().UTC(),
	}
	r.spots[id] = spot
	floor.SpotIDs = append(floor.SpotIDs, id)
	return spot, nil
}

func (r *SpotRegistry) Spot(id int) (*domain.Spot, error) {
	spot, ok := r.spots[id]
	if !ok {
		return nil, fmt.Errorf("spot %d: %w", id, domain.ErrUnknownSpot)
	}
	return spot, nil
}

func (r *SpotRegistry) Floor(name string) (*domain.Floor, error) {
	floor, ok := r.floors[name]
	if !ok {
		return nil, fmt.Errorf("floor %q: %w", name, domain.ErrUnknownFloor)
	}
	return floor, nil
}

// Floors returns floors in configuration order.
func (r *SpotRegistry) Floors() []*domain.Floor {
	floors := make([]*domain.Floor, 0, len(r.floorOrder))
	for _, name := range r.floorOrder {
		floors = append(floors, r.floors[name])
	}
	return floors
}

// FreeSpots returns the free spots on one floor whose category satisfies the
// predicate, in ascending spot-id order.
func (r *SpotRegistry) FreeSpots(floorName string, pred func(domain.SpotCategory) bool) ([]*domain.Spot, error) {
	floor, ok := r.floors[floorName]
	if !ok {
		return nil, fmt.Errorf("floor %q: %w", floorName, domain.ErrUnknownFloor)
	}
	var free []*domain.Spot
	for _, id := range floor.SpotIDs {
		spot := r.spots[id]
		if !spot.Occupied && pred(spot.Category) {
			free = append(free, spot)
		}
	}
	sort.Slice(free, func(i, j int) bool { return free[i].ID < free[j].ID })
	return free, nil
}

// Reserve marks a spot occupied by the given vehicle. Reserving an occupied
// spot is a failure signal, not a panic; state is untouched.
func (r *SpotRegistry) Reserve(spotID int, license string) error {
	spot, ok := r.spots[spotID]
	if !ok {
		return fmt.Errorf("spot %d: %w", spotID, domain.ErrUnknownSpot)
	}
	if spot.Occupied {
		return fmt.Errorf("spot %d: %w", spotID, domain.ErrSpotOccupied)
	}
	spot.Occupied = true
	spot.VehicleLicense = license
	return nil
}

// Release frees a spot and clears its vehicle reference. Releasing a free
// spot is likewise an idempotent failure.
func (r *SpotRegistry) Release(spotID int) error {
	spot, ok := r.spots[spotID]
	if !ok {
		return fmt.Errorf("spot %d: %w", spotID, domain.ErrUnknownSpot)
	}
	if !spot.Occupied {
		return fmt.Errorf("spot %d: %w", spotID, domain.ErrSpotFree)
	}
	spot.Occupied = false
	spot.VehicleLicense = ""
	return nil
}

func (r *SpotRegistry) TotalSpots() int {
	return len(r.spots)
}

func (r *SpotRegistry) OccupiedSpots() int {
	n := 0
	for _, spot := range r.spots {
		if spot.Occupied {
			n++
		}
	}
	return n
}

// Snapshot copies the current spot state for display reads.
func (r *SpotRegistry) Snapshot() []domain.SpotSnapshot {
	snapshot := make([]domain.SpotSnapshot, 0, len(r.spots))
	for _, name := range r.floorOrder {
		for _, id := range r.floors[name].SpotIDs {
			spot := r.spots[id]
			snapshot = append(snapshot, domain.SpotSnapshot{
				ID:        spot.ID,
				FloorName: spot.FloorName,
				Category:  spot.Category,
				Occupied:  spot.Occupied,
			})
		}
	}
	return snapshot
}

// FloorStatuses reports per-category free counts, floors in config order.
func (r *SpotRegistry) FloorStatuses() []domain.FloorStatus {
	statuses := make([]domain.FloorStatus, 0, len(r.floorOrder))
	for _, name := range r.floorOrder {
		floor := r.floors[name]
		status := domain.FloorStatus{
			Name:       name,
			TotalSpots: len(floor.SpotIDs),
			Free:       make(map[domain.SpotCategory]int),
		}
		for _, id := range floor.SpotIDs {
			spot := r.spots[id]
			if !spot.Occupied {
				status.Free[spot.Category]++
			}
		}
		statuses = append(statuses, status)
	}
	return statuses
}
