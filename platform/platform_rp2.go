//go:build rp2040 || rp2350

package platform

import (
	"machine"
	"sync/atomic"

	uartx "github.com/jangala-dev/tinygo-uartx/uartx"
	"tinygo.org/x/drivers/hd44780i2c"

	"soundsteer-go/pwm"
	"soundsteer-go/x/fmtx"
	"soundsteer-go/x/mathx"
)

// Pico pin assignment.
const (
	servoPin     = machine.GP16 // PWM slice 0 channel A
	micAPin      = machine.GP2
	micBPin      = machine.GP3
	heartbeatPin = machine.GP25 // onboard LED
	lcdAddr      = 0x27
	consoleBaud  = 115200
)

// DeviceID selects the embedded configuration for this board.
func DeviceID() string { return "pico" }

// Setup configures the console UART, the LCD, the servo PWM slice and the
// microphone edge-counter interrupts, and returns the wired Board.
func Setup() Board {
	_ = uartx.UART0.Configure(uartx.UARTConfig{BaudRate: consoleBaud})
	fmtx.DefaultOutput = uartx.UART0

	counters := newMicCounters(micAPin, micBPin)

	hb := &rp2Pin{p: heartbeatPin}
	heartbeatPin.Configure(machine.PinConfig{Mode: machine.PinOutput})

	return Board{
		Regs:      newServoTimer(servoPin, float64(machine.CPUFrequency())),
		Counters:  counters,
		Heartbeat: hb,
		Display:   newLCD(),
		Console:   uartx.UART0,
	}
}

// ---- servo PWM ----

// servoTimer models the two-channel down-counter register file on top of the
// RP2 PWM slice. Loads and control bits are shadowed in software; the decoded
// frequency and duty reach the hardware when the enable-all bit is written.
type servoTimer struct {
	pin     machine.Pin
	slice   *machine.PWM
	ch      uint8
	clockHz float64

	loads [2]uint32
	ctl   [2]pwm.ControlBits
}

func newServoTimer(pin machine.Pin, clockHz float64) *servoTimer {
	// GPIO N sits on slice N>>1 & 7 on the RP2 family.
	return &servoTimer{
		pin:     pin,
		slice:   pwmSlice(uint8((uint32(pin) >> 1) & 0x7)),
		clockHz: clockHz,
	}
}

func pwmSlice(n uint8) *machine.PWM {
	switch n {
	case 0:
		return machine.PWM0
	case 1:
		return machine.PWM1
	case 2:
		return machine.PWM2
	case 3:
		return machine.PWM3
	case 4:
		return machine.PWM4
	case 5:
		return machine.PWM5
	case 6:
		return machine.PWM6
	default:
		return machine.PWM7
	}
}

func (t *servoTimer) ReadLoad(c pwm.Counter) uint32     { return t.loads[c] }
func (t *servoTimer) WriteLoad(c pwm.Counter, v uint32) { t.loads[c] = v }

func (t *servoTimer) ReadControl(c pwm.Counter) pwm.ControlBits { return t.ctl[c] }

func (t *servoTimer) WriteControl(c pwm.Counter, bits pwm.ControlBits) {
	was := t.ctl[c]
	t.ctl[c] = bits
	if c == pwm.PeriodCounter && bits&pwm.CtlEnableAll != 0 && was&pwm.CtlEnableAll == 0 {
		t.apply()
	}
}

func (t *servoTimer) LoadReset(c pwm.Counter) { t.ctl[c] |= pwm.CtlLoad }

func (t *servoTimer) Disable(c pwm.Counter) {
	t.ctl[c] &^= pwm.CtlEnable | pwm.CtlEnableAll
	if c == pwm.PeriodCounter {
		t.slice.Set(t.ch, 0)
	}
}

func (t *servoTimer) apply() {
	lr := pwm.LoadRegisters{Period: t.loads[pwm.PeriodCounter], Duty: t.loads[pwm.DutyCounter]}
	freqHz, dutyPct := pwm.DecodeLoadRegisters(t.clockHz, lr)
	if freqHz == 0 {
		return
	}

	periodNs := uint64(1_000_000_000) / uint64(freqHz)
	if err := t.slice.Configure(machine.PWMConfig{Period: periodNs}); err != nil {
		return
	}
	ch, err := t.slice.Channel(t.pin)
	if err != nil {
		return
	}
	t.ch = ch
	t.slice.Set(ch, uint32(mathx.RoundDiv(uint64(t.slice.Top())*uint64(dutyPct), 100)))
}

// ---- microphone edge counters ----

// micCounters counts rising edges on both microphone comparator pins from the
// pin-change interrupt. Reads from the sampler tick are plain atomic loads.
type micCounters struct {
	a, b atomic.Uint32
}

func newMicCounters(pinA, pinB machine.Pin) *micCounters {
	m := &micCounters{}
	pinA.Configure(machine.PinConfig{Mode: machine.PinInputPulldown})
	pinB.Configure(machine.PinConfig{Mode: machine.PinInputPulldown})
	_ = pinA.SetInterrupt(machine.PinRising, func(machine.Pin) { m.a.Add(1) })
	_ = pinB.SetInterrupt(machine.PinRising, func(machine.Pin) { m.b.Add(1) })
	return m
}

func (m *micCounters) ReadCounters() (uint32, uint32) { return m.a.Load(), m.b.Load() }

// ---- heartbeat ----

type rp2Pin struct{ p machine.Pin }

func (r *rp2Pin) Toggle() {
	if r.p.Get() {
		r.p.Low()
	} else {
		r.p.High()
	}
}

// ---- LCD ----

type rp2Display struct {
	dev hd44780i2c.Device
	ok  bool
}

func newLCD() *rp2Display {
	bus := machine.I2C0
	if err := bus.Configure(machine.I2CConfig{
		Frequency: 400 * machine.KHz,
		SDA:       machine.I2C0_SDA_PIN,
		SCL:       machine.I2C0_SCL_PIN,
	}); err != nil {
		return &rp2Display{}
	}
	d := hd44780i2c.New(bus, lcdAddr)
	if err := d.Configure(hd44780i2c.Config{Width: 16, Height: 2}); err != nil {
		// No panel fitted; Show becomes a no-op.
		return &rp2Display{}
	}
	return &rp2Display{dev: d, ok: true}
}

func (l *rp2Display) Show(top, bottom string) error {
	if !l.ok {
		return nil
	}
	if err := l.dev.ClearDisplay(); err != nil {
		return err
	}
	if err := l.dev.Print([]byte(top)); err != nil {
		return err
	}
	if err := l.dev.SetCursor(0, 1); err != nil {
		return err
	}
	return l.dev.Print([]byte(bottom))
}
