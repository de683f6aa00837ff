package phase

import (
	"sync/atomic"
	"testing"
)

const testWindow = 25_000

func TestEstimate(t *testing.T) {
	tests := []struct {
		name   string
		prior  int32
		a, b   uint32
		want   int32
	}{
		{"a leads", 0, 10_000, 9_000, 1_000},
		{"b leads", 0, 5_000, 9_000, -4_000},
		{"a leads beyond window keeps prior", 123, 40_000, 1_000, 123},
		{"b leads beyond window keeps prior", -77, 1_000, 40_000, -77},
		{"tie keeps prior", 555, 7_000, 7_000, 555},
		{"tie at zero keeps zero", 0, 0, 0, 0},
		{"exactly window is valid", 0, 25_000, 0, 25_000},
		{"one past window keeps prior", 9, 25_001, 0, 9},
		{"negative window edge", 0, 0, 25_000, -25_000},
		// A difference past 2^31 means one counter wrapped; the gate must
		// reject it on the unsigned value, not see it as a small negative.
		{"wrapped counter a keeps prior", 123, 3_000_000_000, 0, 123},
		{"wrapped counter b keeps prior", -42, 0, 3_000_000_000, -42},
		{"wrap across zero keeps prior", 7, 500, 4_294_900_000, 7},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Estimate(tc.prior, tc.a, tc.b, testWindow); got != tc.want {
				t.Errorf("Estimate(%d, %d, %d) = %d, want %d", tc.prior, tc.a, tc.b, got, tc.want)
			}
		})
	}
}

type fakeCounters struct {
	a, b atomic.Uint32
}

func (f *fakeCounters) ReadCounters() (uint32, uint32) { return f.a.Load(), f.b.Load() }

func (f *fakeCounters) set(a, b uint32) {
	f.a.Store(a)
	f.b.Store(b)
}

type fakePin struct {
	toggles int
}

func (f *fakePin) Toggle() { f.toggles++ }

func TestSampler_TickPublishes(t *testing.T) {
	counters := &fakeCounters{}
	pin := &fakePin{}
	cell := &Cell{}
	clock := &MsClock{}
	s := NewSampler(counters, pin, cell, clock, testWindow, 40)

	counters.set(10_000, 9_000)
	s.Tick()
	if got := cell.Latest(); got != 1_000 {
		t.Errorf("estimate = %d, want 1000", got)
	}

	// Out-of-window reading must leave the published estimate unchanged.
	counters.set(40_000, 1_000)
	s.Tick()
	if got := cell.Latest(); got != 1_000 {
		t.Errorf("estimate after invalid reading = %d, want 1000", got)
	}

	if pin.toggles != 2 {
		t.Errorf("heartbeat toggles = %d, want 2", pin.toggles)
	}
}

func TestSampler_MsCadence(t *testing.T) {
	counters := &fakeCounters{}
	cell := &Cell{}
	clock := &MsClock{}
	s := NewSampler(counters, &fakePin{}, cell, clock, testWindow, 40)

	// 39 ticks: not yet a millisecond.
	for i := 0; i < 39; i++ {
		s.Tick()
	}
	if clock.Now() != 0 {
		t.Fatalf("clock = %d ms after 39 ticks, want 0", clock.Now())
	}

	// The 40th tick completes the millisecond.
	s.Tick()
	if clock.Now() != 1 {
		t.Fatalf("clock = %d ms after 40 ticks, want 1", clock.Now())
	}

	// Three more milliseconds.
	for i := 0; i < 3*40; i++ {
		s.Tick()
	}
	if clock.Now() != 4 {
		t.Errorf("clock = %d ms after 160 ticks, want 4", clock.Now())
	}
}
