// Package loader parses boundary-source GeoJSON into region records. The
// boundary source supplies county-like features with a stable id, a display
// name, and a parent state code; malformed features are skipped, never
// fatal.
package loader

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"regioncover/internal/model"
)

// BoundaryFeature is one region boundary record from the external source.
type BoundaryFeature struct {
	ID        string
	Name      string
	StateCode string
	Geometry  orb.Geometry
}

// ParseFeatureCollection decodes a GeoJSON FeatureCollection of region
// boundaries. Features missing an id or name, or carrying non-areal
// geometry, are skipped with a log line.
func ParseFeatureCollection(data []byte) ([]BoundaryFeature, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("invalid boundary feature collection: %w", err)
	}

	features := make([]BoundaryFeature, 0, len(fc.Features))
	for i, f := range fc.Features {
		feature := BoundaryFeature{
			ID:        featureID(f),
			Name:      stringProperty(f, "NAME"),
			StateCode: stringProperty(f, "STATEFP"),
		}

		if feature.ID == "" || feature.Name == "" {
			log.Printf("Skipping boundary feature %d: missing id or name", i)
			continue
		}

		switch g := f.Geometry.(type) {
		case orb.Polygon, orb.MultiPolygon:
			feature.Geometry = g
		default:
			log.Printf("Skipping boundary feature %s: geometry is %T, want polygonal", feature.ID, f.Geometry)
			continue
		}

		features = append(features, feature)
	}

	return features, nil
}

// ToPG converts the feature into a region row, re-encoding the geometry as
// GeoJSON text.
func (f BoundaryFeature) ToPG() (model.RegionPG, error) {
	geometry, err := json.Marshal(geojson.NewGeometry(f.Geometry))
	if err != nil {
		return model.RegionPG{}, fmt.Errorf("region %s: could not encode geometry: %w", f.ID, err)
	}

	return model.RegionPG{
		ID:        f.ID,
		Name:      f.Name,
		StateCode: f.StateCode,
		Geometry:  string(geometry),
	}, nil
}

// featureID prefers the GEOID property (census-style boundary files), then
// the feature-level id.
func featureID(f *geojson.Feature) string {
	if id := stringProperty(f, "GEOID"); id != "" {
		return id
	}
	if id, ok := f.ID.(string); ok {
		return id
	}
	return ""
}

func stringProperty(f *geojson.Feature, key string) string {
	value, ok := f.Properties[key].(string)
	if !ok {
		return ""
	}
	return value
}
