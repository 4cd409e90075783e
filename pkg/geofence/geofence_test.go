package geofence

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var cafe = Coordinate{Lat: 33.3103442309685, Lng: 44.32422900516875}

// offset returns a coordinate distanceM meters from `from` along the given
// bearing, using the spherical direct formula (same earth radius as the
// package under test).
func offset(from Coordinate, bearingDeg, distanceM float64) Coordinate {
	lat1 := from.Lat * math.Pi / 180
	lng1 := from.Lng * math.Pi / 180
	brg := bearingDeg * math.Pi / 180
	d := distanceM / earthRadiusM

	lat2 := math.Asin(math.Sin(lat1)*math.Cos(d) + math.Cos(lat1)*math.Sin(d)*math.Cos(brg))
	lng2 := lng1 + math.Atan2(
		math.Sin(brg)*math.Sin(d)*math.Cos(lat1),
		math.Cos(d)-math.Sin(lat1)*math.Sin(lat2),
	)

	return Coordinate{Lat: lat2 * 180 / math.Pi, Lng: lng2 * 180 / math.Pi}
}

func TestDistanceMetersSymmetric(t *testing.T) {
	pairs := []struct{ a, b Coordinate }{
		{cafe, Coordinate{Lat: 33.3120, Lng: 44.3260}},
		{Coordinate{Lat: -36.8485, Lng: 174.7633}, Coordinate{Lat: 51.5074, Lng: -0.1278}},
		{Coordinate{Lat: 0, Lng: 0}, Coordinate{Lat: 0, Lng: 180}},
	}
	for _, p := range pairs {
		assert.InDelta(t, DistanceMeters(p.a, p.b), DistanceMeters(p.b, p.a), 1e-9)
	}
}

func TestDistanceMetersSamePointIsZero(t *testing.T) {
	assert.Equal(t, 0.0, DistanceMeters(cafe, cafe))
}

func TestDistanceMetersNeverNaN(t *testing.T) {
	// Antipodal points push the haversine inner term to the edge of its
	// domain; the clamp has to keep the result finite.
	a := Coordinate{Lat: 45, Lng: 10}
	b := Coordinate{Lat: -45, Lng: -170}
	d := DistanceMeters(a, b)
	require.False(t, math.IsNaN(d))
	assert.Greater(t, d, 0.0)
}

func TestDistanceMetersKnownOffset(t *testing.T) {
	for _, bearing := range []float64{0, 90, 180, 270, 45} {
		p := offset(cafe, bearing, 150)
		assert.InDelta(t, 150, DistanceMeters(cafe, p), 0.5, "bearing %v", bearing)
	}
}

func TestEvaluateAtOrigin(t *testing.T) {
	cfg := Config{Origin: cafe, MaxDistanceM: 100, MaxAccuracyM: 50}

	v := Evaluate(cfg, Fix{Coordinate: cafe, AccuracyM: 10})

	assert.Equal(t, 0.0, v.DistanceM)
	assert.True(t, v.RangeOK)
	assert.True(t, v.AccuracyOK)
	assert.True(t, v.OK())
}

func TestEvaluateOutOfRange(t *testing.T) {
	cfg := Config{Origin: cafe, MaxDistanceM: 100, MaxAccuracyM: 50}

	v := Evaluate(cfg, Fix{Coordinate: offset(cafe, 60, 150), AccuracyM: 10})

	assert.False(t, v.RangeOK)
	assert.True(t, v.AccuracyOK)
	assert.False(t, v.OK())
}

func TestEvaluateAccuracyGateIndependentOfRange(t *testing.T) {
	cfg := Config{Origin: cafe, MaxDistanceM: 100, MaxAccuracyM: 80}

	// Standing exactly at the origin with a weak fix must still fail the
	// accuracy gate.
	v := Evaluate(cfg, Fix{Coordinate: cafe, AccuracyM: 90})

	assert.Equal(t, 0.0, v.DistanceM)
	assert.True(t, v.RangeOK)
	assert.False(t, v.AccuracyOK)
	assert.False(t, v.OK())
}

func TestEvaluateBoundaryInclusive(t *testing.T) {
	cfg := Config{Origin: cafe, MaxDistanceM: 100, MaxAccuracyM: 50}

	v := Evaluate(cfg, Fix{Coordinate: cafe, AccuracyM: 50})
	assert.True(t, v.AccuracyOK, "accuracy equal to the threshold is allowed")
}
