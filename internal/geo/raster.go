package geo

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// DefaultGridSize partitions a boundary's bounding box into
// DefaultGridSize x DefaultGridSize cells.
const DefaultGridSize = 40

// Cell is one sample point of a rasterized boundary: a cell center that
// fell inside the polygon, with its canonical key.
type Cell struct {
	ID     string
	Key    CellKey
	Center orb.Point // [lon, lat]
}

// RasterizeRing rasterizes a single boundary ring.
func RasterizeRing(ring orb.Ring, gridSize int) []Cell {
	return RasterizePolygon(orb.Polygon{ring}, gridSize)
}

// RasterizePolygon rasterizes one polygon (outer ring plus any holes).
func RasterizePolygon(poly orb.Polygon, gridSize int) []Cell {
	return rasterizePart(poly, gridSize, "cell")
}

// RasterizeGeometry rasterizes a boundary geometry. MultiPolygon parts are
// rasterized independently over their own bounding boxes and unioned, so
// disjoint parts (islands) each get their own cells. Unsupported geometry
// types yield no cells.
func RasterizeGeometry(g orb.Geometry, gridSize int) []Cell {
	switch geom := g.(type) {
	case orb.Ring:
		return RasterizeRing(geom, gridSize)
	case orb.Polygon:
		return RasterizePolygon(geom, gridSize)
	case orb.MultiPolygon:
		var cells []Cell
		for part, poly := range geom {
			cells = append(cells, rasterizePart(poly, gridSize, fmt.Sprintf("cell_%d", part))...)
		}
		return cells
	default:
		return nil
	}
}

// rasterizePart cuts the polygon's bounding box into gridSize x gridSize
// cells and keeps the centers that land inside the polygon. The sweep runs
// north to south, west to east, so repeated calls for the same input emit
// cells in the same order with the same IDs and keys.
func rasterizePart(poly orb.Polygon, gridSize int, idPrefix string) []Cell {
	if gridSize <= 0 {
		gridSize = DefaultGridSize
	}
	if len(poly) == 0 || len(poly[0]) < 3 {
		return nil
	}
	closeRings(poly)

	bound := poly.Bound()
	latSpan := bound.Max.Lat() - bound.Min.Lat()
	lngSpan := bound.Max.Lon() - bound.Min.Lon()
	if latSpan <= 0 || lngSpan <= 0 {
		// Degenerate boundary: no area means no cell centers.
		return nil
	}

	latStep := latSpan / float64(gridSize)
	lngStep := lngSpan / float64(gridSize)

	var cells []Cell
	for row := 0; row < gridSize; row++ {
		lat := bound.Max.Lat() - (float64(row)+0.5)*latStep
		for col := 0; col < gridSize; col++ {
			lng := bound.Min.Lon() + (float64(col)+0.5)*lngStep
			center := orb.Point{lng, lat}
			if !planar.PolygonContains(poly, center) {
				continue
			}
			cells = append(cells, Cell{
				ID:     fmt.Sprintf("%s_%d_%d", idPrefix, row, col),
				Key:    Quantize(center),
				Center: center,
			})
		}
	}

	return cells
}

// closeRings closes any unclosed rings in place so containment tests see a
// well-formed polygon. Boundary sources are not always strict about the
// GeoJSON closing point.
func closeRings(poly orb.Polygon) {
	for i, ring := range poly {
		if len(ring) >= 3 && ring[0] != ring[len(ring)-1] {
			poly[i] = append(ring, ring[0])
		}
	}
}
