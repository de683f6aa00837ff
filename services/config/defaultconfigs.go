package config

// -----------------------------------------------------------------------------
// Embedded configuration
//
// Key: device ID (same value placed in ctx under CtxDeviceKey)
// Val: raw JSON bytes for that device
// -----------------------------------------------------------------------------

const cfgPico = `{
  "steer": {
    "clock_hz": 100000000,
    "tick_hz": 40000,
    "neutral_freq_hz": 50,
    "neutral_duty_pct": 7,
    "gain_pct": 4,
    "window_ticks": 25000,
    "update_delay_ms": 1000,
    "poll_delay_ms": 5
  },
  "heartbeat": {
    "interval": 2
  }
}`

var embeddedConfigs = map[string][]byte{
	"pico": []byte(cfgPico),
	"sim":  []byte(cfgPico),
}
