package model

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"regioncover/internal/geo"
)

func unitSquare() orb.Ring {
	return orb.Ring{{0, 0}, {1, 0}, {1, 1}, {0, 1}, {0, 0}}
}

func newTestRegion(t *testing.T, persisted []geo.CellKey) *Region {
	t.Helper()
	ring := unitSquare()
	cells := geo.RasterizeRing(ring, 10)
	require.Len(t, cells, 100)
	return NewRegion("0601", "Alameda", "06", ring, cells, persisted)
}

func TestMarkVisitedCountsOnce(t *testing.T) {
	region := newTestRegion(t, nil)

	_, marked := region.MarkVisited(0.05, 0.05)
	assert.True(t, marked)
	assert.Equal(t, 1, region.VisitedCount())

	// Second visit of the same cell is a no-op.
	_, marked = region.MarkVisited(0.05, 0.05)
	assert.False(t, marked)
	assert.Equal(t, 1, region.VisitedCount())

	assert.Equal(t, 100, region.TotalCells())
	assert.InDelta(t, 0.01, region.Ratio(), 1e-12)
}

func TestMarkVisitedOutsideGridIsNoOp(t *testing.T) {
	region := newTestRegion(t, nil)

	_, marked := region.MarkVisited(5, 5)
	assert.False(t, marked)
	assert.Zero(t, region.VisitedCount())
	assert.False(t, region.IsVisited(5, 5))
}

func TestMarkVisitedFlipsCellFlag(t *testing.T) {
	region := newTestRegion(t, nil)

	key, marked := region.MarkVisited(0.05, 0.15)
	require.True(t, marked)

	flagged := 0
	for i := range region.Cells {
		if region.Cells[i].Visited {
			flagged++
			assert.Equal(t, key, region.Cells[i].Key())
		}
	}
	assert.Equal(t, 1, flagged)
	assert.True(t, region.IsVisited(0.05, 0.15))
}

func TestReconcilePersistedKeys(t *testing.T) {
	persisted := []geo.CellKey{
		geo.QuantizeLatLng(0.05, 0.05),
		// Stale key outside the grid: dropped, not an error.
		geo.QuantizeLatLng(9, 9),
	}
	region := newTestRegion(t, persisted)

	assert.Equal(t, 1, region.VisitedCount())
	assert.True(t, region.IsVisited(0.05, 0.05))
	assert.LessOrEqual(t, region.VisitedCount(), region.TotalCells())
}

func TestVisitedKeysStableOrder(t *testing.T) {
	region := newTestRegion(t, nil)
	region.MarkVisited(0.95, 0.95)
	region.MarkVisited(0.05, 0.05)
	region.MarkVisited(0.05, 0.95)

	keys := region.VisitedKeys()
	require.Len(t, keys, 3)
	assert.Equal(t, "0.050000,0.050000", keys[0].String())
	assert.Equal(t, "0.050000,0.950000", keys[1].String())
	assert.Equal(t, "0.950000,0.950000", keys[2].String())
}

func TestCellsNearBoundsNeighborhood(t *testing.T) {
	region := newTestRegion(t, nil)

	// A tight neighborhood around one center touches far fewer cells than
	// the full grid.
	near := region.CellsNear(0.05, 0.05, 0.001, 0.001)
	require.NotEmpty(t, near)
	assert.Less(t, len(near), region.TotalCells())

	found := false
	want := geo.QuantizeLatLng(0.05, 0.05)
	for _, idx := range near {
		if region.Cells[idx].Key() == want {
			found = true
		}
	}
	assert.True(t, found)
}

func TestRegionPGBoundary(t *testing.T) {
	row := &RegionPG{
		ID:       "0601",
		Name:     "Alameda",
		Geometry: `{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,1],[0,0]]]}`,
	}

	geom, err := row.Boundary()
	require.NoError(t, err)
	_, ok := geom.(orb.Polygon)
	assert.True(t, ok)

	row.Geometry = `{"type":`
	_, err = row.Boundary()
	assert.Error(t, err)
}
