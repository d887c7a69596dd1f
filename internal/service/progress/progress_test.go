package progress

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegionRatio(t *testing.T) {
	assert.InDelta(t, 0.01, RegionSnapshot{VisitedCells: 1, TotalCells: 100}.Ratio(), 1e-12)
	assert.Zero(t, RegionSnapshot{}.Ratio())
}

func TestByState(t *testing.T) {
	regions := []RegionSnapshot{
		{ID: "0601", StateCode: "06", VisitedCells: 10, TotalCells: 100},
		{ID: "0603", StateCode: "06", VisitedCells: 5, TotalCells: 50},
		{ID: "4801", StateCode: "48", VisitedCells: 0, TotalCells: 80},
	}

	states := ByState(regions)
	assert.Len(t, states, 2)

	ca := states["06"]
	assert.Equal(t, 15, ca.VisitedCells)
	assert.Equal(t, 150, ca.TotalCells)
	assert.InDelta(t, 0.10, ca.Ratio, 1e-12)

	tx := states["48"]
	assert.Zero(t, tx.Ratio)
}

func TestOverall(t *testing.T) {
	regions := []RegionSnapshot{
		{ID: "0601", StateCode: "06", VisitedCells: 10, TotalCells: 100},
		{ID: "4801", StateCode: "48", VisitedCells: 10, TotalCells: 100},
	}

	overall := Overall(regions)
	assert.Equal(t, 20, overall.VisitedCells)
	assert.Equal(t, 200, overall.TotalCells)
	assert.InDelta(t, 0.10, overall.Ratio, 1e-12)

	assert.Zero(t, Overall(nil).Ratio)
}
