//go:build !rp2040 && !rp2350

package platform

import (
	"sync"
	"sync/atomic"

	"soundsteer-go/pwm"
	"soundsteer-go/x/fmtx"
)

// DeviceID selects the embedded configuration for host runs.
func DeviceID() string { return "sim" }

// Setup returns a Board backed entirely by fakes. The console is whatever
// fmtx is writing to (stdout by default).
func Setup() Board {
	return Board{
		Regs:      NewFakeTimerRegs(),
		Counters:  &FakeCounterPair{},
		Heartbeat: &FakePin{},
		Display:   &FakeDisplay{},
		Console:   fmtx.DefaultOutput,
	}
}

// FakeTimerRegs is a register-accurate model of the two-channel PWM timer for
// host-side tests and the simulator: load registers, control registers, and
// live counters latched on LoadReset. Safe for concurrent use.
type FakeTimerRegs struct {
	mu    sync.Mutex
	loads [2]uint32
	ctl   [2]pwm.ControlBits
	live  [2]uint32
}

func NewFakeTimerRegs() *FakeTimerRegs { return &FakeTimerRegs{} }

func (f *FakeTimerRegs) ReadLoad(c pwm.Counter) uint32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loads[c]
}

func (f *FakeTimerRegs) WriteLoad(c pwm.Counter, v uint32) {
	f.mu.Lock()
	f.loads[c] = v
	f.mu.Unlock()
}

func (f *FakeTimerRegs) ReadControl(c pwm.Counter) pwm.ControlBits {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ctl[c]
}

func (f *FakeTimerRegs) WriteControl(c pwm.Counter, bits pwm.ControlBits) {
	f.mu.Lock()
	f.ctl[c] = bits
	f.mu.Unlock()
}

func (f *FakeTimerRegs) LoadReset(c pwm.Counter) {
	f.mu.Lock()
	f.live[c] = f.loads[c]
	f.ctl[c] |= pwm.CtlLoad
	f.mu.Unlock()
}

func (f *FakeTimerRegs) Disable(c pwm.Counter) {
	f.mu.Lock()
	f.ctl[c] &^= pwm.CtlEnable | pwm.CtlEnableAll
	f.mu.Unlock()
}

// Running reports whether PWM output is enabled (the enable-all bit on the
// period counter).
func (f *FakeTimerRegs) Running() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ctl[pwm.PeriodCounter]&pwm.CtlEnableAll != 0
}

// Params decodes the current load registers back to physical units.
func (f *FakeTimerRegs) Params(clockHz float64) (freqHz, dutyPct uint32) {
	f.mu.Lock()
	lr := pwm.LoadRegisters{Period: f.loads[pwm.PeriodCounter], Duty: f.loads[pwm.DutyCounter]}
	f.mu.Unlock()
	return pwm.DecodeLoadRegisters(clockHz, lr)
}

// FakeCounterPair is a pair of microphone edge counters driven by tests or
// the simulator's synthetic source.
type FakeCounterPair struct {
	a, b atomic.Uint32
}

func (f *FakeCounterPair) ReadCounters() (uint32, uint32) { return f.a.Load(), f.b.Load() }

// SetCounts replaces both counter values.
func (f *FakeCounterPair) SetCounts(a, b uint32) {
	f.a.Store(a)
	f.b.Store(b)
}

// Bump adds edges to each counter, like incoming wavefronts would.
func (f *FakeCounterPair) Bump(da, db uint32) {
	f.a.Add(da)
	f.b.Add(db)
}

// FakePin records toggles for heartbeat assertions.
type FakePin struct {
	mu      sync.Mutex
	level   bool
	toggles int
}

func (p *FakePin) Toggle() {
	p.mu.Lock()
	p.level = !p.level
	p.toggles++
	p.mu.Unlock()
}

func (p *FakePin) Level() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.level
}

func (p *FakePin) Toggles() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.toggles
}

// FakeDisplay keeps the last two lines written.
type FakeDisplay struct {
	mu          sync.Mutex
	top, bottom string
	writes      int
}

func (d *FakeDisplay) Show(top, bottom string) error {
	d.mu.Lock()
	d.top, d.bottom = top, bottom
	d.writes++
	d.mu.Unlock()
	return nil
}

func (d *FakeDisplay) Lines() (top, bottom string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.top, d.bottom
}

func (d *FakeDisplay) Writes() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.writes
}
