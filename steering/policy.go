// Package steering maps a phase estimate to a servo PWM duty cycle.
package steering

import "soundsteer-go/x/mathx"

// Policy converts signed phase differences into duty-cycle percentages. The
// mapping is linear around a neutral point:
//
//	duty = phase × gain / window + neutral
//
// in integer arithmetic (truncating division), clamped to neutral ± gain. At
// a 50 Hz servo frame, neutral 7 % and gain 4 % span the usual 1-2 ms pulse
// range.
type Policy struct {
	GainPct     int32
	WindowTicks int32
	NeutralPct  int32
}

// DutyFor returns the duty percentage for one phase estimate.
func (p Policy) DutyFor(phaseTicks int32) uint32 {
	duty := phaseTicks*p.GainPct/p.WindowTicks + p.NeutralPct
	return uint32(mathx.Clamp(duty, p.NeutralPct-p.GainPct, p.NeutralPct+p.GainPct))
}
