// Package geofence decides whether a sampled position qualifies for
// attendance at the configured site. Accuracy and range are two independent
// gates: they fail for different reasons (device/environment vs. physical
// location) and carry distinct denial codes upstream.
package geofence

import (
	"math"
	"time"
)

// earthRadiusM is the mean earth radius used by the haversine formula.
const earthRadiusM = 6371000.0

// Coordinate is a (latitude, longitude) pair in decimal degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Fix is one sampled position reading with its horizontal accuracy estimate.
type Fix struct {
	Coordinate
	AccuracyM  float64   `json:"accuracy_m"`
	CapturedAt time.Time `json:"captured_at"`
}

// Config is the admission boundary for one physical site. Immutable after
// load; both thresholds must be > 0.
type Config struct {
	Origin       Coordinate
	MaxDistanceM float64
	MaxAccuracyM float64
}

// Verdict is the result of judging one fix against the site config.
type Verdict struct {
	DistanceM  float64 `json:"distance_m"`
	AccuracyM  float64 `json:"accuracy_m"`
	AccuracyOK bool    `json:"accuracy_ok"`
	RangeOK    bool    `json:"range_ok"`
}

// OK reports whether both gates passed.
func (v Verdict) OK() bool {
	return v.AccuracyOK && v.RangeOK
}

// DistanceMeters returns the great-circle distance between two coordinates
// (haversine on a spherical earth). Symmetric, and zero for identical points.
func DistanceMeters(a, b Coordinate) float64 {
	lat1 := toRad(a.Lat)
	lat2 := toRad(b.Lat)
	dLat := toRad(b.Lat - a.Lat)
	dLng := toRad(b.Lng - a.Lng)

	sinLat := math.Sin(dLat / 2)
	sinLng := math.Sin(dLng / 2)

	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLng*sinLng

	// Float rounding can push h a hair outside [0,1] for antipodal or
	// identical points, which would feed Sqrt/Atan2 a domain error.
	if h < 0 {
		h = 0
	} else if h > 1 {
		h = 1
	}

	return 2 * earthRadiusM * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// Evaluate judges a fix against the site config. Pure, no side effects.
func Evaluate(cfg Config, fix Fix) Verdict {
	distance := DistanceMeters(cfg.Origin, fix.Coordinate)
	return Verdict{
		DistanceM:  distance,
		AccuracyM:  fix.AccuracyM,
		AccuracyOK: fix.AccuracyM <= cfg.MaxAccuracyM,
		RangeOK:    distance <= cfg.MaxDistanceM,
	}
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
