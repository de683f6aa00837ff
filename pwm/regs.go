// Package pwm drives a two-channel hardware timer/counter configured for
// pulse-width modulation. The period and duty sub-counters are down-counters
// with shadow-latched load registers: a new load value only reaches the live
// counter on a reload event, so the timer must be stopped before the load
// registers are rewritten.
package pwm

// Counter selects one of the two cascaded sub-counters.
type Counter uint8

const (
	PeriodCounter Counter = 0 // sets the PWM period
	DutyCounter   Counter = 1 // sets the PWM high time
)

// ControlBits is the per-counter control/status register layout.
type ControlBits uint32

const (
	CtlModeCapture     ControlBits = 1 << 0  // capture mode (unused in PWM)
	CtlDownCount       ControlBits = 1 << 1  // count down from the load value
	CtlExtGenerate     ControlBits = 1 << 2  // drive the external generate output
	CtlCaptureEnable   ControlBits = 1 << 3  // external capture enable (unused)
	CtlAutoReload      ControlBits = 1 << 4  // reload on terminal count
	CtlLoad            ControlBits = 1 << 5  // latch the load register into the counter
	CtlEnableInterrupt ControlBits = 1 << 6  // terminal-count interrupt enable
	CtlEnable          ControlBits = 1 << 7  // run this counter
	CtlInterruptFlag   ControlBits = 1 << 8  // terminal-count flag (write 1 to clear)
	CtlPWMEnable       ControlBits = 1 << 9  // pair both counters into PWM mode
	CtlEnableAll       ControlBits = 1 << 10 // run both counters (shadowed in both registers)
)

// pwmControlBits is the base configuration for both sub-counters.
const pwmControlBits = CtlPWMEnable | CtlExtGenerate | CtlAutoReload | CtlDownCount

// MaxCount is the largest value the 32-bit load registers can hold.
const MaxCount = 1<<32 - 1

// TimerRegs is the minimal register capability the driver needs.
// Implementations: platform.FakeTimerRegs on host builds and the
// machine-backed adapter on RP2 builds.
type TimerRegs interface {
	ReadLoad(c Counter) uint32
	WriteLoad(c Counter, v uint32)
	ReadControl(c Counter) ControlBits
	WriteControl(c Counter, bits ControlBits)
	// LoadReset latches the load register into the live down-counter.
	LoadReset(c Counter)
	// Disable stops the counter without touching its load register.
	Disable(c Counter)
}
