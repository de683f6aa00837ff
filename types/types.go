package types

// ------------------------
// Calibration constants
// ------------------------
//
// These are domain-tuned values from bench calibration of the microphone
// capture rig and the servo horn throw. They are not derivable from first
// principles; treat them as configuration, not as maths to "fix".

const (
	// ValidityWindowTicks bounds a plausible phase difference. A larger
	// delta means one channel wrapped or missed an edge; the sample is
	// discarded and the previous estimate retained.
	ValidityWindowTicks = 25000

	// SteeringGainPct is the full-scale duty swing (in percentage points)
	// mapped onto the ±ValidityWindowTicks phase range.
	SteeringGainPct = 4

	// NeutralDutyPct / NeutralFreqHz centre the servo.
	NeutralDutyPct = 7
	NeutralFreqHz  = 50

	// TickHz is the sampling rate of the periodic phase sampler.
	TickHz = 40000

	// TicksPerMs is how many sampler firings make one millisecond.
	TicksPerMs = TickHz / 1000
)

// ------------------------
// Steering configuration
// ------------------------

// SteerConfig is supplied on the "config/steer" bus topic.
type SteerConfig struct {
	ClockHz        float64 `json:"clock_hz"`         // PWM timer reference clock
	TickHz         uint32  `json:"tick_hz"`          // sampler rate
	NeutralFreqHz  uint32  `json:"neutral_freq_hz"`  // servo PWM frequency (held fixed)
	NeutralDutyPct uint32  `json:"neutral_duty_pct"` // servo centre duty
	GainPct        int32   `json:"gain_pct"`         // duty swing over the window
	WindowTicks    int32   `json:"window_ticks"`     // phase validity window
	UpdateDelayMs  uint32  `json:"update_delay_ms"`  // settle delay after reprogramming
	PollDelayMs    uint32  `json:"poll_delay_ms"`    // estimate poll cadence when idle
}

// DefaultSteerConfig mirrors the bench calibration: 100 MHz timer clock,
// 50 Hz / 7 % servo neutral, one second of settle per update.
func DefaultSteerConfig() SteerConfig {
	return SteerConfig{
		ClockHz:        100_000_000,
		TickHz:         TickHz,
		NeutralFreqHz:  NeutralFreqHz,
		NeutralDutyPct: NeutralDutyPct,
		GainPct:        SteeringGainPct,
		WindowTicks:    ValidityWindowTicks,
		UpdateDelayMs:  1000,
		PollDelayMs:    5,
	}
}

// ------------------------
// Bus payloads
// ------------------------

// PWMParams is a frequency/duty pair in physical units.
type PWMParams struct {
	FreqHz  uint32 `json:"freq_hz"`
	DutyPct uint32 `json:"duty_pct"`
}

// PhaseValue is the latest published phase estimate.
// Sign says which microphone channel leads (positive = channel A).
type PhaseValue struct {
	Ticks int32 `json:"ticks"`
	TsMs  int64 `json:"ts_ms"`
}

// DutyEvent is published after the servo PWM has been reprogrammed.
type DutyEvent struct {
	Params PWMParams `json:"params"`
	Phase  int32     `json:"phase_ticks"`
	TsMs   int64     `json:"ts_ms"`
}

// StateValue is the retained service state document.
type StateValue struct {
	Level  string `json:"level"`  // "idle", "ready", "degraded", "stopped", "error"
	Status string `json:"status"` // freeform short code
	TsMs   int64  `json:"ts_ms"`
	Error  string `json:"error,omitempty"`
}

// Generic replies for control verbs.
type OKReply struct {
	OK bool `json:"ok"`
}

type ErrorReply struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

// ParamsReply answers "get_params".
type ParamsReply struct {
	OK     bool      `json:"ok"`
	Params PWMParams `json:"params"`
}
