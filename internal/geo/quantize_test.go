package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuantizeIdempotent(t *testing.T) {
	key := QuantizeLatLng(34.0522345678, -118.2436987654)
	again := QuantizeLatLng(key.Lat(), key.Lng())

	assert.Equal(t, key, again)
}

func TestQuantizeCollapsesNearbyCoordinates(t *testing.T) {
	base := QuantizeLatLng(10.123456, 20.654321)

	// Less than half the 1e-6 step away collapses to the same key.
	assert.Equal(t, base, QuantizeLatLng(10.1234564, 20.654321))
	assert.Equal(t, base, QuantizeLatLng(10.1234556, 20.654321))

	// More than half a step lands on the neighbor.
	assert.NotEqual(t, base, QuantizeLatLng(10.1234566, 20.654321))
	assert.NotEqual(t, base, QuantizeLatLng(10.123456, 20.6543216))
}

func TestCellKeyString(t *testing.T) {
	assert.Equal(t, "0.050000,0.050000", QuantizeLatLng(0.05, 0.05).String())
	assert.Equal(t, "-33.868800,151.209300", QuantizeLatLng(-33.8688, 151.2093).String())
}

func TestParseCellKeyRoundTrip(t *testing.T) {
	original := QuantizeLatLng(40.712776, -74.005974)

	parsed, err := ParseCellKey(original.String())
	require.NoError(t, err)
	assert.Equal(t, original, parsed)
}

func TestParseCellKeyRejectsGarbage(t *testing.T) {
	for _, input := range []string{"", "1.0", "a,b", "1.0,b", "a,1.0"} {
		_, err := ParseCellKey(input)
		assert.Error(t, err, "input %q", input)
	}
}
