package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRecording(b Bounds, jitter int64) (*Throttle, *[]time.Duration) {
	var slept []time.Duration
	th := New(b)
	th.limiter.SetLimit(th.limiter.Limit() * 1000) // keep the test fast
	th.jitter = func(n int64) int64 {
		if jitter >= n {
			return n - 1
		}
		return jitter
	}
	th.sleep = func(ctx context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}
	return th, &slept
}

func TestThrottle_FirstWaitIsFree(t *testing.T) {
	th, slept := newRecording(Bounds{Min: time.Second, Max: 3 * time.Second}, 0)

	require.NoError(t, th.Wait(context.Background()))
	assert.Empty(t, *slept)
}

func TestThrottle_JitterStaysWithinSpan(t *testing.T) {
	tests := []struct {
		name   string
		jitter int64
		want   time.Duration
	}{
		{name: "lowest", jitter: 0, want: 0},
		{name: "middle", jitter: int64(time.Second), want: time.Second},
		{name: "clamped to span", jitter: int64(time.Hour), want: 2 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			th, slept := newRecording(Bounds{Min: time.Second, Max: 3 * time.Second}, tt.jitter)
			ctx := context.Background()
			require.NoError(t, th.Wait(ctx))
			require.NoError(t, th.Wait(ctx))
			require.Len(t, *slept, 1)
			assert.Equal(t, tt.want, (*slept)[0])
		})
	}
}

func TestThrottle_PauseIncludesMin(t *testing.T) {
	th, slept := newRecording(Bounds{Min: 2 * time.Second, Max: 4 * time.Second}, int64(500*time.Millisecond))

	require.NoError(t, th.Pause(context.Background()))
	require.Len(t, *slept, 1)
	assert.Equal(t, 2500*time.Millisecond, (*slept)[0])
}

func TestThrottle_MaxBelowMinIsRaised(t *testing.T) {
	th := New(Bounds{Min: 2 * time.Second, Max: time.Second})
	assert.Equal(t, 2*time.Second, th.Bounds().Max)
}

func TestThrottle_NilAndZeroBounds(t *testing.T) {
	var th *Throttle
	assert.NoError(t, th.Wait(context.Background()))

	zero := New(Bounds{})
	start := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, zero.Wait(context.Background()))
	}
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestThrottle_CancelledContext(t *testing.T) {
	th := New(Bounds{Min: time.Minute, Max: time.Minute})
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, th.Wait(ctx))

	cancel()
	assert.Error(t, th.Wait(ctx))
}
