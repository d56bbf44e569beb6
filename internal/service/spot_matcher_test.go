package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parking_facility/internal/domain"
)

func matcherFixture(t *testing.T) (*SpotRegistry, *SpotMatcher) {
	t.Helper()
	r := NewSpotRegistry()
	_, err := r.AddFloor("G")
	require.NoError(t, err)
	return r, NewSpotMatcher(r)
}

func addSpot(t *testing.T, r *SpotRegistry, floor string, id int, cat domain.SpotCategory) {
	t.Helper()
	_, err := r.AddSpot(floor, id, cat)
	require.NoError(t, err)
}

func TestFindSpotPrefersOwnCategory(t *testing.T) {
	r, m := matcherFixture(t)
	addSpot(t, r, "G", 1, domain.SpotLarge)
	addSpot(t, r, "G", 2, domain.SpotCompact)
	addSpot(t, r, "G", 3, domain.SpotMotorcycle)

	spot, err := m.FindSpot(domain.VehicleCar)
	require.NoError(t, err)
	assert.Equal(t, 2, spot.ID, "car should take compact before large")

	spot, err = m.FindSpot(domain.VehicleMotorcycle)
	require.NoError(t, err)
	assert.Equal(t, 3, spot.ID, "motorcycle should take its own category first")
}

func TestFindSpotMotorcycleFallback(t *testing.T) {
	r, m := matcherFixture(t)
	addSpot(t, r, "G", 1, domain.SpotCompact)
	addSpot(t, r, "G", 2, domain.SpotLarge)
	addSpot(t, r, "G", 3, domain.SpotHandicapped)

	// No motorcycle spots at all; fallback walks compact, large, handicapped.
	spot, err := m.FindSpot(domain.VehicleMotorcycle)
	require.NoError(t, err)
	assert.Equal(t, 1, spot.ID)

	require.NoError(t, r.Reserve(1, "m1"))
	spot, err = m.FindSpot(domain.VehicleMotorcycle)
	require.NoError(t, err)
	assert.Equal(t, 2, spot.ID)

	require.NoError(t, r.Reserve(2, "m2"))
	spot, err = m.FindSpot(domain.VehicleMotorcycle)
	require.NoError(t, err)
	assert.Equal(t, 3, spot.ID)
}

func TestFindSpotTruckNeedsLarge(t *testing.T) {
	r, m := matcherFixture(t)
	addSpot(t, r, "G", 1, domain.SpotCompact)
	addSpot(t, r, "G", 2, domain.SpotHandicapped)
	addSpot(t, r, "G", 3, domain.SpotMotorcycle)

	_, err := m.FindSpot(domain.VehicleTruck)
	assert.ErrorIs(t, err, domain.ErrLotFull, "truck may only use large spots")

	addSpot(t, r, "G", 4, domain.SpotLarge)
	spot, err := m.FindSpot(domain.VehicleTruck)
	require.NoError(t, err)
	assert.Equal(t, 4, spot.ID)
}

func TestFindSpotFloorOrder(t *testing.T) {
	r := NewSpotRegistry()
	_, err := r.AddFloor("G")
	require.NoError(t, err)
	_, err = r.AddFloor("B1")
	require.NoError(t, err)
	m := NewSpotMatcher(r)

	addSpot(t, r, "B1", 10, domain.SpotCompact)
	addSpot(t, r, "G", 20, domain.SpotCompact)

	// G was configured first, so its spot wins despite the higher id.
	spot, err := m.FindSpot(domain.VehicleCar)
	require.NoError(t, err)
	assert.Equal(t, 20, spot.ID)

	// A same-floor own-category match is preferred over moving to the next
	// floor, but preference is evaluated per floor: once G has nothing
	// eligible, B1 serves.
	require.NoError(t, r.Reserve(20, "c1"))
	spot, err = m.FindSpot(domain.VehicleCar)
	require.NoError(t, err)
	assert.Equal(t, 10, spot.ID)
}

func TestFindSpotLotFullPerClass(t *testing.T) {
	r, m := matcherFixture(t)
	addSpot(t, r, "G", 1, domain.SpotMotorcycle)

	// The only free spot is motorcycle-sized: full for cars, not for bikes.
	_, err := m.FindSpot(domain.VehicleCar)
	assert.ErrorIs(t, err, domain.ErrLotFull)
	assert.True(t, m.HasSpotFor(domain.VehicleMotorcycle))
	assert.False(t, m.HasSpotFor(domain.VehicleVan))
}
