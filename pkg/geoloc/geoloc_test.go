package geoloc

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Grinders-Attendance-Backend/pkg/geofence"
)

func TestFromCode(t *testing.T) {
	assert.ErrorIs(t, FromCode(CodePermissionDenied), ErrPermissionDenied)
	assert.ErrorIs(t, FromCode(CodePositionUnavailable), ErrUnavailable)
	assert.ErrorIs(t, FromCode(CodeTimeout), ErrTimeout)
	assert.ErrorIs(t, FromCode(99), ErrUnavailable)
}

func TestSampleWithTimeoutFreshFix(t *testing.T) {
	calls := 0
	s := SamplerFunc(func(ctx context.Context) (geofence.Fix, error) {
		calls++
		return geofence.Fix{
			Coordinate: geofence.Coordinate{Lat: 33.31, Lng: 44.32},
			AccuracyM:  12,
			CapturedAt: time.Now(),
		}, nil
	})

	// Every call must hit the underlying sampler, never a cache.
	_, err := SampleWithTimeout(context.Background(), s, time.Second)
	require.NoError(t, err)
	_, err = SampleWithTimeout(context.Background(), s, time.Second)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestSampleWithTimeoutMapsDeadline(t *testing.T) {
	s := SamplerFunc(func(ctx context.Context) (geofence.Fix, error) {
		<-ctx.Done()
		return geofence.Fix{}, ctx.Err()
	})

	_, err := SampleWithTimeout(context.Background(), s, 10*time.Millisecond)
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestSerializedSingleFlight(t *testing.T) {
	inFlight := 0
	maxInFlight := 0
	var s Sampler = SamplerFunc(func(ctx context.Context) (geofence.Fix, error) {
		inFlight++
		if inFlight > maxInFlight {
			maxInFlight = inFlight
		}
		time.Sleep(5 * time.Millisecond)
		inFlight--
		return geofence.Fix{}, nil
	})
	s = Serialize(s)

	done := make(chan struct{})
	for i := 0; i < 4; i++ {
		go func() {
			_, _ = s.Sample(context.Background())
			done <- struct{}{}
		}()
	}
	for i := 0; i < 4; i++ {
		<-done
	}

	assert.Equal(t, 1, maxInFlight)
}
