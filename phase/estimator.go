package phase

import (
	"context"
	"time"
)

// Estimate folds one pair of counter readings into the running phase
// estimate. The sign convention: positive means counter A leads (the source
// sits on A's side), negative means B leads.
//
// A difference beyond window ticks cannot come from a single wavefront; the
// prior estimate is kept instead. The gate compares the unsigned difference,
// so a wrapped counter (difference past 2^31) is discarded rather than
// wrapping negative. A tie also keeps the prior: the estimate never
// re-centres on silence, it holds the last plausible bearing.
func Estimate(prior int32, countA, countB uint32, window int32) int32 {
	switch {
	case countA > countB:
		delta := countA - countB
		if delta > uint32(window) {
			return prior
		}
		return int32(delta)
	case countB > countA:
		delta := countB - countA
		if delta > uint32(window) {
			return prior
		}
		return -int32(delta)
	default:
		return prior
	}
}

// CounterPair reads both microphone edge counters. Reads must be cheap: the
// sampler calls this on every tick.
type CounterPair interface {
	ReadCounters() (a, b uint32)
}

// HeartbeatPin is toggled once per tick as a liveness signal, observable on a
// scope pin or an LED.
type HeartbeatPin interface {
	Toggle()
}

// Sampler runs the fixed-rate sampling tick: read both counters, update the
// phase estimate, and advance the millisecond clock at the tick/ms cadence.
type Sampler struct {
	counters CounterPair
	hb       HeartbeatPin
	cell     *Cell
	clock    *MsClock

	window     int32
	ticksPerMs uint32
	tickCount  uint32
}

// NewSampler wires a sampler to its counters and output cells. ticksPerMs is
// the number of sample ticks per millisecond (tick rate / 1000).
func NewSampler(counters CounterPair, hb HeartbeatPin, cell *Cell, clock *MsClock, window int32, ticksPerMs uint32) *Sampler {
	return &Sampler{
		counters:   counters,
		hb:         hb,
		cell:       cell,
		clock:      clock,
		window:     window,
		ticksPerMs: ticksPerMs,
	}
}

// Tick is one sampling period. It is allocation-free so it can run from a
// timer interrupt on the MCU target.
func (s *Sampler) Tick() {
	a, b := s.counters.ReadCounters()
	s.hb.Toggle()

	s.tickCount++
	if s.tickCount >= s.ticksPerMs {
		s.tickCount = 0
		s.clock.Advance()
	}

	s.cell.Publish(Estimate(s.cell.Latest(), a, b, s.window))
}

// Start runs Tick at the given interval until the context is cancelled. On
// the MCU target the tick is driven by a hardware timer instead; this loop
// serves the host simulator and tests.
func (s *Sampler) Start(ctx context.Context, interval time.Duration) {
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				s.Tick()
			}
		}
	}()
}
