package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parking_facility/internal/domain"
)

func TestSpotRegistryAddAndLookup(t *testing.T) {
	r := NewSpotRegistry()

	_, err := r.AddFloor("G")
	require.NoError(t, err)
	_, err = r.AddFloor("G")
	assert.ErrorIs(t, err, domain.ErrDuplicateID)

	spot, err := r.AddSpot("G", 1, domain.SpotCompact)
	require.NoError(t, err)
	assert.Equal(t, "G", spot.FloorName)

	_, err = r.AddSpot("G", 1, domain.SpotLarge)
	assert.ErrorIs(t, err, domain.ErrDuplicateID)
	_, err = r.AddSpot("B1", 2, domain.SpotLarge)
	assert.ErrorIs(t, err, domain.ErrUnknownFloor)
	_, err = r.AddSpot("G", 3, domain.SpotCategory("rooftop"))
	assert.Error(t, err)

	got, err := r.Spot(1)
	require.NoError(t, err)
	assert.Equal(t, domain.SpotCompact, got.Category)
	_, err = r.Spot(99)
	assert.ErrorIs(t, err, domain.ErrUnknownSpot)
}

func TestSpotRegistryReserveRelease(t *testing.T) {
	r := NewSpotRegistry()
	_, err := r.AddFloor("G")
	require.NoError(t, err)
	_, err = r.AddSpot("G", 1, domain.SpotCompact)
	require.NoError(t, err)

	require.NoError(t, r.Reserve(1, "30A-111.11"))
	spot, _ := r.Spot(1)
	assert.True(t, spot.Occupied)
	assert.Equal(t, "30A-111.11", spot.VehicleLicense)

	// Double reserve fails and leaves state untouched.
	err = r.Reserve(1, "30A-222.22")
	assert.ErrorIs(t, err, domain.ErrSpotOccupied)
	assert.Equal(t, "30A-111.11", spot.VehicleLicense)

	require.NoError(t, r.Release(1))
	assert.False(t, spot.Occupied)
	assert.Empty(t, spot.VehicleLicense)

	// Double release is the same kind of failure.
	err = r.Release(1)
	assert.ErrorIs(t, err, domain.ErrSpotFree)

	assert.ErrorIs(t, r.Reserve(99, "x"), domain.ErrUnknownSpot)
	assert.ErrorIs(t, r.Release(99), domain.ErrUnknownSpot)
}

func TestSpotRegistryFreeSpotsOrdering(t *testing.T) {
	r := NewSpotRegistry()
	_, err := r.AddFloor("G")
	require.NoError(t, err)
	for _, id := range []int{5, 3, 8} {
		_, err = r.AddSpot("G", id, domain.SpotCompact)
		require.NoError(t, err)
	}
	require.NoError(t, r.Reserve(3, "x"))

	free, err := r.FreeSpots("G", func(c domain.SpotCategory) bool { return c == domain.SpotCompact })
	require.NoError(t, err)
	require.Len(t, free, 2)
	assert.Equal(t, 5, free[0].ID)
	assert.Equal(t, 8, free[1].ID)

	_, err = r.FreeSpots("B1", func(domain.SpotCategory) bool { return true })
	assert.ErrorIs(t, err, domain.ErrUnknownFloor)
}

func TestSpotRegistryCountsAndStatuses(t *testing.T) {
	r := NewSpotRegistry()
	_, err := r.AddFloor("G")
	require.NoError(t, err)
	_, err = r.AddFloor("B1")
	require.NoError(t, err)
	_, err = r.AddSpot("G", 1, domain.SpotCompact)
	require.NoError(t, err)
	_, err = r.AddSpot("G", 2, domain.SpotLarge)
	require.NoError(t, err)
	_, err = r.AddSpot("B1", 3, domain.SpotMotorcycle)
	require.NoError(t, err)
	require.NoError(t, r.Reserve(2, "truck-1"))

	assert.Equal(t, 3, r.TotalSpots())
	assert.Equal(t, 1, r.OccupiedSpots())

	statuses := r.FloorStatuses()
	require.Len(t, statuses, 2)
	assert.Equal(t, "G", statuses[0].Name)
	assert.Equal(t, 1, statuses[0].Free[domain.SpotCompact])
	assert.Equal(t, 0, statuses[0].Free[domain.SpotLarge])
	assert.Equal(t, 1, statuses[1].Free[domain.SpotMotorcycle])

	snapshot := r.Snapshot()
	require.Len(t, snapshot, 3)
	assert.Equal(t, 1, snapshot[0].ID)
	assert.True(t, snapshot[1].Occupied)
}
