// Package geoloc defines the one-shot position sampler contract and the
// sensor failure taxonomy shared by the server and the kiosk client. Browser
// clients report the platform's numeric error code in the check payload;
// FromCode translates it into the same typed errors a local sampler returns.
package geoloc

import (
	"context"
	"errors"
	"sync"
	"time"

	"Grinders-Attendance-Backend/pkg/geofence"
)

// Platform geolocation error codes (W3C Geolocation API).
const (
	CodePermissionDenied    = 1
	CodePositionUnavailable = 2
	CodeTimeout             = 3
)

var (
	ErrPermissionDenied = errors.New("geoloc: permission denied")
	ErrUnavailable      = errors.New("geoloc: position unavailable")
	ErrTimeout          = errors.New("geoloc: timed out waiting for a fix")
)

// FromCode maps a client-reported platform error code to the typed error.
// Unknown codes are treated as PositionUnavailable.
func FromCode(code int) error {
	switch code {
	case CodePermissionDenied:
		return ErrPermissionDenied
	case CodeTimeout:
		return ErrTimeout
	default:
		return ErrUnavailable
	}
}

// Sampler produces one fresh position fix per call. Implementations must not
// serve a cached fix; a stale reading defeats the geofence.
type Sampler interface {
	Sample(ctx context.Context) (geofence.Fix, error)
}

// SamplerFunc adapts a function to the Sampler interface.
type SamplerFunc func(ctx context.Context) (geofence.Fix, error)

func (f SamplerFunc) Sample(ctx context.Context) (geofence.Fix, error) {
	return f(ctx)
}

// Serialized wraps a sampler so at most one sample request is outstanding at
// a time. There is no queue: a caller that wants a newer fix has, by calling,
// superseded its interest in the previous one.
type Serialized struct {
	mu sync.Mutex
	s  Sampler
}

func Serialize(s Sampler) *Serialized {
	return &Serialized{s: s}
}

func (sz *Serialized) Sample(ctx context.Context) (geofence.Fix, error) {
	sz.mu.Lock()
	defer sz.mu.Unlock()
	return sz.s.Sample(ctx)
}

// SampleWithTimeout samples with a deadline, which is the only cancellation
// point the attendance flow has. Deadline expiry maps to ErrTimeout so
// callers see the same taxonomy regardless of where the timeout fired.
func SampleWithTimeout(ctx context.Context, s Sampler, timeout time.Duration) (geofence.Fix, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	fix, err := s.Sample(ctx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return geofence.Fix{}, ErrTimeout
		}
		return geofence.Fix{}, err
	}
	return fix, nil
}
