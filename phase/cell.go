// Package phase estimates the arrival-time difference between two microphone
// edge counters and shares the running estimate with the rest of the system.
package phase

import (
	"context"
	"sync/atomic"
	"time"
)

// Cell is a single-writer shared phase estimate. The sampler tick publishes
// into it; any goroutine may read the latest value without locking.
type Cell struct {
	v atomic.Int32
}

// Publish stores a new estimate. Only the sampler calls this.
func (c *Cell) Publish(ticks int32) { c.v.Store(ticks) }

// Latest returns the most recently published estimate.
func (c *Cell) Latest() int32 { return c.v.Load() }

// MsClock is a millisecond counter advanced by the sampler tick. It wraps at
// 2^32 ms (about 49 days); comparisons below are wrap-safe.
type MsClock struct {
	ms atomic.Uint32
}

// Advance bumps the clock by one millisecond. Only the sampler calls this.
func (c *MsClock) Advance() { c.ms.Add(1) }

// Now returns the current millisecond count.
func (c *MsClock) Now() uint32 { return c.ms.Load() }

// sleepPoll is how often Sleep rechecks the clock. The clock only moves in
// 1 ms steps, so polling faster buys nothing.
const sleepPoll = 500 * time.Microsecond

// Sleep blocks until the clock has advanced by ms milliseconds or the context
// is done, whichever comes first. It returns the context error on
// cancellation, nil when the deadline was reached.
func (c *MsClock) Sleep(ctx context.Context, ms uint32) error {
	target := c.Now() + ms
	for int32(target-c.Now()) > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(sleepPoll):
		}
	}
	return nil
}
