// Package platform binds the steering stack to a target. Host builds get
// register-accurate fakes so services and tests run anywhere; RP2 builds get
// adapters over machine and the tinygo driver ecosystem. Setup in the
// build-tagged files returns the wired Board for the current target.
package platform

import (
	"io"

	"soundsteer-go/phase"
	"soundsteer-go/pwm"
)

// Display is a small two-line status panel (a 16x2 character LCD on
// hardware, a recording fake on host).
type Display interface {
	Show(top, bottom string) error
}

// Board is everything the steering service needs from the target.
type Board struct {
	Regs      pwm.TimerRegs
	Counters  phase.CounterPair
	Heartbeat phase.HeartbeatPin
	Display   Display
	Console   io.Writer
}
