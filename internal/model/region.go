package model

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"gorm.io/gorm"

	"regioncover/internal/geo"
)

// visitBucketDeg is the edge length, in degrees, of the coarse lattice used
// to look up cells near a location without scanning the whole grid.
const visitBucketDeg = 0.01

// RegionPG is the GORM model for a region boundary row. The boundary
// importer writes these; the service reads them once at startup. Geometry is
// stored as GeoJSON text so the persisted form stays independent of any
// binary geometry encoding.
type RegionPG struct {
	ID        string `gorm:"primaryKey"`
	Name      string `gorm:"size:255;not null"`
	StateCode string `gorm:"size:8;not null;index"`
	Geometry  string `gorm:"type:text;not null"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// TableName overrides the table name
func (RegionPG) TableName() string {
	return "regions"
}

// Boundary parses the stored GeoJSON geometry.
func (r *RegionPG) Boundary() (orb.Geometry, error) {
	g, err := geojson.UnmarshalGeometry([]byte(r.Geometry))
	if err != nil {
		return nil, fmt.Errorf("region %s: invalid boundary geometry: %w", r.ID, err)
	}
	return g.Geometry(), nil
}

// GridCell is one trackable sample point of a region's coverage grid.
type GridCell struct {
	ID      string  `json:"id"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Visited bool    `json:"visited"`

	key geo.CellKey
}

// Key returns the cell's canonical coordinate key.
func (c *GridCell) Key() geo.CellKey {
	return c.key
}

// Region is the in-memory model of a county-like region: its boundary, the
// rasterized grid, and the set of visited cell keys. The visited set only
// grows; there is no unvisit operation. A Region is not safe for concurrent
// mutation on its own, the owning service serializes access.
type Region struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	StateCode string `json:"state_code"`

	Cells []GridCell `json:"cells"`

	// Cached geometry for proximity queries.
	Geometry orb.Geometry `json:"-"`
	Bound    *orb.Bound   `json:"-"`

	visited   map[geo.CellKey]struct{}
	cellIndex map[geo.CellKey]int
	buckets   map[[2]int][]int
}

// NewRegion builds a Region from a freshly rasterized grid and reconciles it
// with a visited-key set restored from persistence. Persisted keys that do
// not match any grid cell are dropped, which keeps the visited set a subset
// of the grid even when the boundary changed between runs.
func NewRegion(id, name, stateCode string, geom orb.Geometry, cells []geo.Cell, persisted []geo.CellKey) *Region {
	region := &Region{
		ID:        id,
		Name:      name,
		StateCode: stateCode,
		Geometry:  geom,
		Cells:     make([]GridCell, len(cells)),
		visited:   make(map[geo.CellKey]struct{}),
		cellIndex: make(map[geo.CellKey]int, len(cells)),
		buckets:   make(map[[2]int][]int),
	}

	if geom != nil {
		bound := geom.Bound()
		region.Bound = &bound
	}

	for i, cell := range cells {
		region.Cells[i] = GridCell{
			ID:  cell.ID,
			Lat: cell.Center.Lat(),
			Lng: cell.Center.Lon(),
			key: cell.Key,
		}
		region.cellIndex[cell.Key] = i

		bucket := bucketOf(cell.Center.Lat(), cell.Center.Lon())
		region.buckets[bucket] = append(region.buckets[bucket], i)
	}

	for _, key := range persisted {
		region.MarkVisitedKey(key)
	}

	return region
}

// MarkVisited quantizes the coordinate and marks the matching grid cell.
// Reports whether the cell transitioned to visited; a coordinate outside the
// grid, or one already visited, is a no-op.
func (r *Region) MarkVisited(lat, lng float64) (geo.CellKey, bool) {
	key := geo.QuantizeLatLng(lat, lng)
	return key, r.MarkVisitedKey(key)
}

// MarkVisitedKey marks the grid cell with the given canonical key.
func (r *Region) MarkVisitedKey(key geo.CellKey) bool {
	idx, ok := r.cellIndex[key]
	if !ok {
		return false
	}
	if _, seen := r.visited[key]; seen {
		return false
	}

	r.visited[key] = struct{}{}
	r.Cells[idx].Visited = true
	return true
}

// IsVisited reports whether the coordinate's canonical key has been visited.
func (r *Region) IsVisited(lat, lng float64) bool {
	_, ok := r.visited[geo.QuantizeLatLng(lat, lng)]
	return ok
}

// VisitedCount returns the number of visited cells.
func (r *Region) VisitedCount() int {
	return len(r.visited)
}

// TotalCells returns the grid size.
func (r *Region) TotalCells() int {
	return len(r.Cells)
}

// Ratio returns visited/total, or 0 for an empty grid.
func (r *Region) Ratio() float64 {
	if len(r.Cells) == 0 {
		return 0
	}
	return float64(len(r.visited)) / float64(len(r.Cells))
}

// VisitedKeys returns the visited keys in a stable order, for persistence.
func (r *Region) VisitedKeys() []geo.CellKey {
	keys := make([]geo.CellKey, 0, len(r.visited))
	for key := range r.visited {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].LatE6 != keys[j].LatE6 {
			return keys[i].LatE6 < keys[j].LatE6
		}
		return keys[i].LngE6 < keys[j].LngE6
	})
	return keys
}

// CellsNear returns indices of grid cells within the padded neighborhood of
// the coordinate. Only the lattice buckets covering the padding are touched,
// so the cost is bounded by the neighborhood, not the region size.
func (r *Region) CellsNear(lat, lng, latPad, lngPad float64) []int {
	minBucket := bucketOf(lat-latPad, lng-lngPad)
	maxBucket := bucketOf(lat+latPad, lng+lngPad)

	var indices []int
	for bRow := minBucket[0]; bRow <= maxBucket[0]; bRow++ {
		for bCol := minBucket[1]; bCol <= maxBucket[1]; bCol++ {
			indices = append(indices, r.buckets[[2]int{bRow, bCol}]...)
		}
	}
	return indices
}

func bucketOf(lat, lng float64) [2]int {
	return [2]int{
		int(math.Floor(lat / visitBucketDeg)),
		int(math.Floor(lng / visitBucketDeg)),
	}
}
