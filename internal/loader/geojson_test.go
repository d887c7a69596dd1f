package loader

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const boundaryFixture = `{
  "type": "FeatureCollection",
  "features": [
    {
      "type": "Feature",
      "properties": {"GEOID": "0601", "NAME": "Alameda", "STATEFP": "06"},
      "geometry": {"type": "Polygon", "coordinates": [[[0,0],[1,0],[1,1],[0,1],[0,0]]]}
    },
    {
      "type": "Feature",
      "properties": {"STATEFP": "06"},
      "geometry": {"type": "Polygon", "coordinates": [[[0,0],[1,0],[1,1],[0,1],[0,0]]]}
    },
    {
      "type": "Feature",
      "properties": {"GEOID": "0603", "NAME": "Point County", "STATEFP": "06"},
      "geometry": {"type": "Point", "coordinates": [1, 1]}
    },
    {
      "type": "Feature",
      "properties": {"GEOID": "1509", "NAME": "Islands", "STATEFP": "15"},
      "geometry": {"type": "MultiPolygon", "coordinates": [
        [[[0,0],[1,0],[1,1],[0,1],[0,0]]],
        [[[2,2],[3,2],[3,3],[2,3],[2,2]]]
      ]}
    }
  ]
}`

func TestParseFeatureCollection(t *testing.T) {
	features, err := ParseFeatureCollection([]byte(boundaryFixture))
	require.NoError(t, err)

	// The nameless feature and the point feature are skipped.
	require.Len(t, features, 2)

	assert.Equal(t, "0601", features[0].ID)
	assert.Equal(t, "Alameda", features[0].Name)
	assert.Equal(t, "06", features[0].StateCode)
	_, ok := features[0].Geometry.(orb.Polygon)
	assert.True(t, ok)

	assert.Equal(t, "1509", features[1].ID)
	_, ok = features[1].Geometry.(orb.MultiPolygon)
	assert.True(t, ok)
}

func TestParseFeatureCollectionInvalidJSON(t *testing.T) {
	_, err := ParseFeatureCollection([]byte("{"))
	assert.Error(t, err)
}

func TestToPGRoundTrip(t *testing.T) {
	features, err := ParseFeatureCollection([]byte(boundaryFixture))
	require.NoError(t, err)

	row, err := features[0].ToPG()
	require.NoError(t, err)
	assert.Equal(t, "0601", row.ID)
	assert.Equal(t, "Alameda", row.Name)
	assert.Equal(t, "06", row.StateCode)

	// The stored GeoJSON text parses back to the same geometry type.
	geom, err := row.Boundary()
	require.NoError(t, err)
	poly, ok := geom.(orb.Polygon)
	require.True(t, ok)
	assert.Equal(t, orb.Point{0, 0}, poly[0][0])
}
