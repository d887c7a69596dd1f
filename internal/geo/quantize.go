package geo

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
)

// KeyResolution is the quantization step for canonical coordinate keys,
// 1e-6 degrees (about 0.11 m of latitude).
const KeyResolution = 1e-6

// CellKey is the canonical identity of a coordinate, quantized to
// KeyResolution. Cell centers are recomputed from bounding-box math that is
// not guaranteed bit-identical between runs, so raw float comparison is
// never used for membership; everything goes through a CellKey.
type CellKey struct {
	LatE6 int64
	LngE6 int64
}

// QuantizeLatLng rounds a coordinate to the nearest key step.
func QuantizeLatLng(lat, lng float64) CellKey {
	return CellKey{
		LatE6: int64(math.Round(lat / KeyResolution)),
		LngE6: int64(math.Round(lng / KeyResolution)),
	}
}

// Quantize is QuantizeLatLng for an orb point ([lon, lat] order).
func Quantize(p orb.Point) CellKey {
	return QuantizeLatLng(p.Lat(), p.Lon())
}

// Lat returns the latitude the key represents, in degrees.
func (k CellKey) Lat() float64 {
	return float64(k.LatE6) * KeyResolution
}

// Lng returns the longitude the key represents, in degrees.
func (k CellKey) Lng() float64 {
	return float64(k.LngE6) * KeyResolution
}

// Point returns the key coordinate as an orb point ([lon, lat] order).
func (k CellKey) Point() orb.Point {
	return orb.Point{k.Lng(), k.Lat()}
}

// String renders the persisted wire form: "<lat>,<lon>" with six decimals.
func (k CellKey) String() string {
	return fmt.Sprintf("%.6f,%.6f", k.Lat(), k.Lng())
}

// ParseCellKey is the inverse of String. Parsing a rendered key always
// reproduces the same key.
func ParseCellKey(s string) (CellKey, error) {
	latStr, lngStr, found := strings.Cut(s, ",")
	if !found {
		return CellKey{}, fmt.Errorf("invalid cell key %q", s)
	}
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return CellKey{}, fmt.Errorf("invalid cell key latitude %q: %w", s, err)
	}
	lng, err := strconv.ParseFloat(lngStr, 64)
	if err != nil {
		return CellKey{}, fmt.Errorf("invalid cell key longitude %q: %w", s, err)
	}
	return QuantizeLatLng(lat, lng), nil
}
