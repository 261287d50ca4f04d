package spatial

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHaversineDistance(t *testing.T) {
	// San Francisco City Hall to Oakland City Hall, roughly 13.4 km.
	d := HaversineDistance(37.7793, -122.4193, 37.8053, -122.2725)
	assert.InDelta(t, 13200, d, 400)
	assert.Zero(t, HaversineDistance(37.7793, -122.4193, 37.7793, -122.4193))
}

func TestPointValid(t *testing.T) {
	assert.True(t, Point{Lat: 37.77, Lon: -122.41}.Valid())
	assert.False(t, Point{}.Valid(), "zero point is a missing geocode")
	assert.False(t, Point{Lat: 91, Lon: 0}.Valid())
	assert.False(t, Point{Lat: math.NaN(), Lon: 1}.Valid())
}

func TestCentroidAndSpread(t *testing.T) {
	points := []Point{{Lat: 37.0, Lon: -122.0}, {Lat: 38.0, Lon: -121.0}}
	c := Centroid(points)
	assert.InDelta(t, 37.5, c.Lat, 1e-9)
	assert.InDelta(t, -121.5, c.Lon, 1e-9)

	assert.Zero(t, RadiusOfGyration(nil))
	assert.Zero(t, RadiusOfGyration([]Point{{Lat: 1, Lon: 1}, {Lat: 1, Lon: 1}}))
	assert.Greater(t, RadiusOfGyration(points), 50000.0)
}

func TestBoundingBox(t *testing.T) {
	minLat, minLon, maxLat, maxLon := BoundingBox([]Point{
		{Lat: 37.7, Lon: -122.5}, {Lat: 37.9, Lon: -122.2}, {Lat: 37.8, Lon: -122.3},
	})
	assert.InDelta(t, 37.7, minLat, 1e-9)
	assert.InDelta(t, -122.5, minLon, 1e-9)
	assert.InDelta(t, 37.9, maxLat, 1e-9)
	assert.InDelta(t, -122.2, maxLon, 1e-9)

	a, b, c, d := BoundingBox(nil)
	assert.Equal(t, [4]float64{}, [4]float64{a, b, c, d})
}

func TestGeohash(t *testing.T) {
	assert.Equal(t, "u4pruydqqvj", EncodeGeohash(57.64911, 10.40744, 11))
	assert.Len(t, EncodeGeohash(37.77, -122.41, 0), 1)
	assert.Len(t, EncodeGeohash(37.77, -122.41, 20), 12)

	lat, lon := DecodeGeohash("u4pruydqqvj")
	assert.InDelta(t, 57.64911, lat, 1e-4)
	assert.InDelta(t, 10.40744, lon, 1e-4)
}

func TestDensestCells(t *testing.T) {
	points := []Point{
		{Lat: 37.7793, Lon: -122.4193},
		{Lat: 37.7794, Lon: -122.4192},
		{Lat: 37.8053, Lon: -122.2725},
	}
	cells := DensestCells(points, 6, 0)
	require.Len(t, cells, 2)
	assert.Equal(t, 2, cells[0].Count)
	assert.Equal(t, EncodeGeohash(37.7793, -122.4193, 6), cells[0].Geohash)

	assert.Len(t, DensestCells(points, 6, 1), 1)
	assert.Empty(t, DensestCells(nil, 6, 3))
}

func TestMeanHourOfDay(t *testing.T) {
	mean, r := MeanHourOfDay([]float64{23, 1})
	assert.True(t, mean < 0.01 || mean > 23.99, "23:00 and 01:00 average to midnight, got %v", mean)
	assert.Greater(t, r, 0.9)

	mean, r = MeanHourOfDay([]float64{8, 8, 8})
	assert.InDelta(t, 8, mean, 1e-9)
	assert.InDelta(t, 1, r, 1e-9)

	mean, r = MeanHourOfDay(nil)
	assert.Zero(t, mean)
	assert.Zero(t, r)
}
