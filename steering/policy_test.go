package steering

import (
	"testing"

	"soundsteer-go/types"
)

func testPolicy() Policy {
	return Policy{
		GainPct:     types.SteeringGainPct,
		WindowTicks: types.ValidityWindowTicks,
		NeutralPct:  types.NeutralDutyPct,
	}
}

func TestPolicy_DutyFor(t *testing.T) {
	p := testPolicy()
	tests := []struct {
		phase int32
		want  uint32
	}{
		{0, 7},
		// Integer truncation: 2500*4/25000 = 0, still neutral.
		{2_500, 7},
		{-2_500, 7},
		// One duty step needs a quarter of the window.
		{6_250, 8},
		{-6_250, 6},
		{12_500, 9},
		{-12_500, 5},
		// Full window swings to the rail.
		{25_000, 11},
		{-25_000, 3},
	}
	for _, tc := range tests {
		if got := p.DutyFor(tc.phase); got != tc.want {
			t.Errorf("DutyFor(%d) = %d, want %d", tc.phase, got, tc.want)
		}
	}
}

func TestPolicy_DutyForClamps(t *testing.T) {
	p := testPolicy()
	// Values past the window should not appear (the estimator filters them),
	// but the policy must still stay inside the servo's safe pulse range.
	for _, phase := range []int32{30_000, 100_000, 1_000_000} {
		if got := p.DutyFor(phase); got != 11 {
			t.Errorf("DutyFor(%d) = %d, want clamp at 11", phase, got)
		}
		if got := p.DutyFor(-phase); got != 3 {
			t.Errorf("DutyFor(%d) = %d, want clamp at 3", -phase, got)
		}
	}
}
