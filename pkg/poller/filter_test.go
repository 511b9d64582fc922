package poller

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trafikinfo-se/trafikinfo/pkg/traffic"
)

// Gothenburg central station.
const testLatitude = 57.708870
const testLongitude = 11.974560

func TestWKTPoints(t *testing.T) {
	points := WKTPoints("POINT (11.97 57.70)")
	require.Len(t, points, 1)
	assert.InDelta(t, 11.97, points[0][0], 0.0001)
	assert.InDelta(t, 57.70, points[0][1], 0.0001)

	points = WKTPoints("LINESTRING (11.9 57.7, 12.0 57.8, 12.1 57.9)")
	require.Len(t, points, 3)
	assert.InDelta(t, 12.1, points[2][0], 0.0001)

	// Z geometries carry a third ordinate per point.
	points = WKTPoints("POINT Z (11.97 57.70 0)")
	require.Len(t, points, 1)
	assert.InDelta(t, 57.70, points[0][1], 0.0001)

	assert.Empty(t, WKTPoints(""))
	assert.Empty(t, WKTPoints("POINT EMPTY"))
}

func TestHaversineKm(t *testing.T) {
	// Gothenburg to Stockholm, roughly 397 km.
	distance := HaversineKm(11.9746, 57.7089, 18.0686, 59.3293)
	assert.InDelta(t, 397, distance, 5)

	assert.InDelta(t, 0, HaversineKm(11.9746, 57.7089, 11.9746, 57.7089), 0.0001)
}

func TestDistanceKm(t *testing.T) {
	incident := traffic.Incident{Geometry: "POINT (11.9746 57.7089)"}
	distance := DistanceKm(&incident, testLatitude, testLongitude)
	require.NotNil(t, distance)
	assert.Less(t, *distance, 0.1)

	noGeometry := traffic.Incident{}
	assert.Nil(t, DistanceKm(&noGeometry, testLatitude, testLongitude))
}

func TestCountyFilter(t *testing.T) {
	config := defaultConfig()
	config.FilterMode = FilterModeCounty
	config.Counties = []string{"14"}

	filter := NewFilter(config)

	incidents := []traffic.Incident{
		{DeviationID: "IN", CountyNumbers: []int{14}},
		{DeviationID: "OUT", CountyNumbers: []int{1}},
		{DeviationID: "NONE"},
	}

	filter.Apply(&incidents)

	require.Len(t, incidents, 1)
	assert.Equal(t, "IN", incidents[0].DeviationID)
}

func TestCountyAllPassesEverything(t *testing.T) {
	config := defaultConfig()
	config.Counties = []string{CountyAll}

	filter := NewFilter(config)

	incidents := []traffic.Incident{
		{DeviationID: "A", CountyNumbers: []int{14}},
		{DeviationID: "B"},
	}

	filter.Apply(&incidents)
	assert.Len(t, incidents, 2)
}

func TestCoordinateFilter(t *testing.T) {
	config := defaultConfig()
	config.FilterMode = FilterModeCoordinate
	config.Latitude = testLatitude
	config.Longitude = testLongitude
	config.RadiusKm = 25.0

	filter := NewFilter(config)

	incidents := []traffic.Incident{
		{DeviationID: "NEAR", Geometry: "POINT (11.98 57.71)"},
		{DeviationID: "FAR", Geometry: "POINT (18.07 59.33)"}, // Stockholm
		{DeviationID: "NOGEO"},
	}

	filter.Apply(&incidents)

	require.Len(t, incidents, 1)
	assert.Equal(t, "NEAR", incidents[0].DeviationID)
}

func TestRoadFilter(t *testing.T) {
	config := defaultConfig()
	config.Roads = []string{"E6", "Väg 163"}

	filter := NewFilter(config)

	incidents := []traffic.Incident{
		{DeviationID: "E6", RoadNumber: "E6"},
		{DeviationID: "163", RoadNumber: "163"},
		{DeviationID: "E20", RoadNumber: "E20"},
	}

	filter.Apply(&incidents)

	require.Len(t, incidents, 2)
	assert.Equal(t, "E6", incidents[0].DeviationID)
	assert.Equal(t, "163", incidents[1].DeviationID)
}

func TestImportantBypassesAllFilters(t *testing.T) {
	config := defaultConfig()
	config.FilterMode = FilterModeCoordinate
	config.Latitude = testLatitude
	config.Longitude = testLongitude
	config.RadiusKm = 1.0
	config.Roads = []string{"E6"}

	filter := NewFilter(config)

	incidents := []traffic.Incident{
		{DeviationID: "SAFETY", SafetyRelatedMessage: true},
		{DeviationID: "VITAL", MessageType: traffic.MessageTypeImportantTrafficInformation},
		{DeviationID: "PLAIN"},
	}

	filter.Apply(&incidents)

	require.Len(t, incidents, 2)
	assert.Equal(t, "SAFETY", incidents[0].DeviationID)
	assert.Equal(t, "VITAL", incidents[1].DeviationID)
}
