// Package ratelimit spaces out requests to a single source.
package ratelimit

import (
	"context"
	"math/rand"
	"time"

	"golang.org/x/time/rate"
)

// Bounds is the allowed gap between two consecutive operations.
type Bounds struct {
	Min time.Duration `yaml:"min"`
	Max time.Duration `yaml:"max"`
}

// Throttle enforces Bounds.Min with a token bucket and adds a random
// extra pause so the gap lands uniformly in [Min, Max].
type Throttle struct {
	bounds  Bounds
	limiter *rate.Limiter
	jitter  func(n int64) int64
	sleep   func(ctx context.Context, d time.Duration) error
	waited  bool
}

func New(b Bounds) *Throttle {
	if b.Max < b.Min {
		b.Max = b.Min
	}
	limit := rate.Inf
	if b.Min > 0 {
		limit = rate.Every(b.Min)
	}
	return &Throttle{
		bounds:  b,
		limiter: rate.NewLimiter(limit, 1),
		jitter:  rand.Int63n,
		sleep:   sleepCtx,
	}
}

func (t *Throttle) Bounds() Bounds {
	return t.bounds
}

// Wait blocks before the next operation. The first call only claims the
// token; every later call waits for the limiter and then the jitter.
func (t *Throttle) Wait(ctx context.Context) error {
	if t == nil {
		return nil
	}
	if err := t.limiter.Wait(ctx); err != nil {
		return err
	}
	if !t.waited {
		t.waited = true
		return nil
	}
	return t.sleep(ctx, t.extra())
}

// Pause always sleeps a random duration within the bounds, limiter aside.
func (t *Throttle) Pause(ctx context.Context) error {
	if t == nil {
		return nil
	}
	return t.sleep(ctx, t.bounds.Min+t.extra())
}

func (t *Throttle) extra() time.Duration {
	span := int64(t.bounds.Max - t.bounds.Min)
	if span <= 0 {
		return 0
	}
	return time.Duration(t.jitter(span + 1))
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
