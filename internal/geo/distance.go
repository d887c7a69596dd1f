package geo

import (
	"math"

	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
)

const (
	earthRadiusMeters = 6371000.0

	// metersPerDegreeLat is the planar approximation used to convert a
	// radius in meters into a degree padding for bounding-box searches.
	metersPerDegreeLat = 111320.0
)

// DistanceMeters returns the great-circle distance between two coordinates.
func DistanceMeters(lat1, lng1, lat2, lng2 float64) float64 {
	p1 := s2.PointFromLatLng(s2.LatLngFromDegrees(lat1, lng1))
	p2 := s2.PointFromLatLng(s2.LatLngFromDegrees(lat2, lng2))

	angle := s1.Angle(s2.ChordAngleBetweenPoints(p1, p2).Angle())
	return angle.Radians() * earthRadiusMeters
}

// DegreePadding converts a radius in meters into latitude and longitude
// paddings, in degrees, around the given latitude. The longitude padding is
// widened by the latitude's cosine; near the poles the cosine is clamped so
// the padding stays finite.
func DegreePadding(lat, radiusMeters float64) (latPad, lngPad float64) {
	latPad = radiusMeters / metersPerDegreeLat

	cos := math.Cos(lat * math.Pi / 180)
	if cos < 0.01 {
		cos = 0.01
	}
	lngPad = radiusMeters / (metersPerDegreeLat * cos)
	return latPad, lngPad
}
