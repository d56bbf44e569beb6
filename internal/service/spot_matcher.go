package service

import (
	"fmt"

	"parking_facility/internal/domain"
)

// eligibleCategories maps a vehicle class to the spot categories it may use,
// in preference order. The table is closed; classes not listed cannot park.
var eligibleCategories = map[domain.VehicleClass][]domain.SpotCategory{
	domain.VehicleMotorcycle: {domain.SpotMotorcycle, domain.SpotCompact, domain.SpotLarge, domain.SpotHandicapped},
	domain.VehicleCar:        {domain.SpotCompact, domain.SpotLarge, domain.SpotHandicapped},
	domain.VehicleVan:        {domain.SpotCompact, domain.SpotLarge, domain.SpotHandicapped},
	domain.VehicleTruck:      {domain.SpotLarge},
}

// SpotMatcher selects an eligible free spot for a vehicle class. Called under
// the facility lock, like the registry it reads.
type SpotMatcher struct {
	registry *SpotRegistry
}

func NewSpotMatcher(registry *SpotRegistry) *SpotMatcher {
	return &SpotMatcher{registry: registry}
}

// FindSpot scans floors in configuration order; within a floor the highest-
// preference eligible category wins, ties broken by ascending spot id.
// No match anywhere means the lot is full for this class, even if spots of
// other categories remain free.
func (m *SpotMatcher) FindSpot(class domain.VehicleClass) (*domain.Spot, error) {
	categories, ok := eligibleCategories[class]
	if !ok {
		return nil, fmt.Errorf("vehicle class %q has no eligible spot categories", class)
	}
	for _, floor := range m.registry.Floors() {
		for _, category := range categories {
			free, err := m.registry.FreeSpots(floor.Name, func(c domain.SpotCategory) bool { return c == category })
			if err != nil {
				return nil, err
			}
			if len(free) > 0 {
				return free[0], nil
			}
		}
	}
	return nil, fmt.Errorf("class %q: %w", class, domain.ErrLotFull)
}

// HasSpotFor reports whether any eligible free spot exists for the class.
func (m *SpotMatcher) HasSpotFor(class domain.VehicleClass) bool {
	_, err := m.FindSpot(class)
	return err == nil
}
