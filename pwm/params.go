package pwm

import (
	"math"

	"soundsteer-go/errcode"
)

// LoadRegisters holds the raw down-counter load values for one PWM setting.
type LoadRegisters struct {
	Period uint32 // period sub-counter load value
	Duty   uint32 // duty (high-time) sub-counter load value
}

// ComputeLoadRegisters converts a frequency/duty pair into load register
// values for a reference clock of clockHz.
//
// The down-counters spend two extra ticks per reload cycle, hence the −2:
//
//	period = clock/freq − 2
//	duty   = max(0, clock/freq × duty/100 − 2)
//
// Counts are truncated to whole ticks. A duty above 100 % yields
// errcode.InvalidDuty; a count that does not fit the 32-bit registers yields
// errcode.OutOfRange. Pure function, no side effects.
func ComputeLoadRegisters(clockHz float64, freqHz, dutyPct uint32) (LoadRegisters, error) {
	if dutyPct > 100 {
		return LoadRegisters{}, errcode.InvalidDuty
	}
	if clockHz <= 0 || freqHz == 0 {
		return LoadRegisters{}, errcode.OutOfRange
	}

	ticks := clockHz / float64(freqHz)
	period := ticks - 2
	duty := ticks*(float64(dutyPct)/100) - 2
	if duty < 0 {
		// Sub-tick high times round down to "always low".
		duty = 0
	}

	if period < 0 || period > MaxCount || duty > MaxCount {
		return LoadRegisters{}, errcode.OutOfRange
	}
	return LoadRegisters{Period: uint32(period), Duty: uint32(duty)}, nil
}

// DecodeLoadRegisters is the inverse mapping: load register values back to
// frequency (rounded to the nearest Hz) and duty (rounded to the nearest
// percent). It accepts any counts; a zero period decodes to an undefined
// result (division by zero upstream of the rounding).
func DecodeLoadRegisters(clockHz float64, regs LoadRegisters) (freqHz, dutyPct uint32) {
	period := (float64(regs.Period) + 2) / clockHz
	freqHz = uint32(math.Round(1 / period))
	dutyPct = uint32(math.Round(float64(regs.Duty) / float64(regs.Period) * 100))
	return freqHz, dutyPct
}
