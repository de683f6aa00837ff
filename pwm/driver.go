package pwm

import "soundsteer-go/errcode"

// State is the driver lifecycle state.
type State uint8

const (
	StateUninitialized State = iota
	StateStopped
	StateRunning
)

func (s State) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StateRunning:
		return "running"
	default:
		return "uninitialized"
	}
}

// Driver owns a two-channel PWM timer for its whole life: constructed once at
// startup, never destroyed. All register access goes through the TimerRegs
// capability so the driver tests run against a register-accurate fake.
type Driver struct {
	regs    TimerRegs
	clockHz float64
	state   State
}

// NewDriver binds a driver to its timer registers. The driver starts
// Uninitialized; call Initialize before anything else.
func NewDriver(regs TimerRegs) *Driver {
	return &Driver{regs: regs}
}

// State reports the current lifecycle state.
func (d *Driver) State() State { return d.state }

// Initialize configures both sub-counters for PWM mode (down-count,
// auto-reload, external generate) and records the reference clock used by all
// later conversions. The timer is left stopped.
func (d *Driver) Initialize(enableInterrupts bool, clockHz float64) error {
	if d.regs == nil {
		return errcode.DeviceNotFound
	}
	if d.state == StateRunning {
		return errcode.AlreadyStarted
	}
	if clockHz <= 0 {
		return errcode.InvalidParams
	}

	bits := pwmControlBits
	if enableInterrupts {
		bits |= CtlEnableInterrupt
	}
	d.regs.Disable(PeriodCounter)
	d.regs.Disable(DutyCounter)
	d.regs.WriteControl(PeriodCounter, bits)
	d.regs.WriteControl(DutyCounter, bits)

	d.clockHz = clockHz
	d.state = StateStopped
	return nil
}

// Start latches both load registers into the live counters and enables
// counting. The load registers must already hold the wanted period and duty
// counts (SetParams).
func (d *Driver) Start() error {
	if d.state == StateUninitialized {
		return errcode.NotInitialized
	}

	for _, c := range [...]Counter{PeriodCounter, DutyCounter} {
		d.regs.LoadReset(c)
		d.regs.WriteControl(c, d.regs.ReadControl(c)&^CtlLoad)
	}

	// Enable-all is shadowed into both control registers by the hardware.
	ctl := d.regs.ReadControl(PeriodCounter)
	d.regs.WriteControl(PeriodCounter, ctl|CtlEnableAll)

	d.state = StateRunning
	return nil
}

// Stop disables both sub-counters. Idempotent once initialized.
func (d *Driver) Stop() error {
	if d.state == StateUninitialized {
		return errcode.NotInitialized
	}
	d.regs.Disable(PeriodCounter)
	d.regs.Disable(DutyCounter)
	d.state = StateStopped
	return nil
}

// SetParams converts the frequency/duty pair and writes the load registers.
// The timer is stopped first: the shadow-latched load registers cannot be
// rewritten safely while counting (a torn update shows up as a glitch on the
// PWM output). The driver stays Stopped; the caller must Start again.
func (d *Driver) SetParams(freqHz, dutyPct uint32) error {
	if d.state == StateUninitialized {
		return errcode.NotInitialized
	}
	regs, err := ComputeLoadRegisters(d.clockHz, freqHz, dutyPct)
	if err != nil {
		return err
	}

	_ = d.Stop()
	d.regs.WriteLoad(PeriodCounter, regs.Period)
	d.regs.WriteLoad(DutyCounter, regs.Duty)
	return nil
}

// GetParams stops the timer and decodes the load registers back into physical
// units. Like SetParams it leaves the driver Stopped.
func (d *Driver) GetParams() (freqHz, dutyPct uint32, err error) {
	if d.state == StateUninitialized {
		return 0, 0, errcode.NotInitialized
	}
	_ = d.Stop()
	lr := LoadRegisters{
		Period: d.regs.ReadLoad(PeriodCounter),
		Duty:   d.regs.ReadLoad(DutyCounter),
	}
	freqHz, dutyPct = DecodeLoadRegisters(d.clockHz, lr)
	return freqHz, dutyPct, nil
}
