// Package steer is the steering service: it folds the shared phase estimate
// into servo duty updates at a fixed cadence and exposes the PWM driver over
// the bus.
package steer

import (
	"context"
	"encoding/json"

	"soundsteer-go/bus"
	"soundsteer-go/phase"
	"soundsteer-go/pwm"
	"soundsteer-go/steering"
	"soundsteer-go/types"
	"soundsteer-go/x/fmtx"
)

var (
	topicConfig  = bus.Topic{"config", "steer"}
	topicControl = bus.Topic{"steer", "control", "+"}
	topicState   = bus.Topic{"steer", "state"}
	topicPhase   = bus.Topic{"steer", "phase", "value"}
	topicDuty    = bus.Topic{"steer", "duty", "event"}
)

// Display is the optional status panel; nil disables it.
type Display interface {
	Show(top, bottom string) error
}

type service struct {
	conn    *bus.Connection
	drv     *pwm.Driver
	cell    *phase.Cell
	clock   *phase.MsClock
	display Display

	cfg    types.SteerConfig
	policy steering.Policy

	// appliedDuty is the duty the servo is actually running. dutyUnknown
	// forces a reprogram on the next cycle.
	appliedDuty uint32
}

const dutyUnknown = ^uint32(0)

// Run brings the servo up at neutral and then blocks in the update loop until
// the context is cancelled. Callers that want it in the background wrap it in
// a goroutine.
func Run(ctx context.Context, conn *bus.Connection, drv *pwm.Driver, cell *phase.Cell, clock *phase.MsClock, display Display, cfg types.SteerConfig) {
	s := &service{
		conn:    conn,
		drv:     drv,
		cell:    cell,
		clock:   clock,
		display: display,
	}
	s.setConfig(cfg)
	s.appliedDuty = dutyUnknown
	s.loop(ctx)
}

func (s *service) setConfig(cfg types.SteerConfig) {
	s.cfg = cfg
	s.policy = steering.Policy{
		GainPct:     cfg.GainPct,
		WindowTicks: cfg.WindowTicks,
		NeutralPct:  int32(cfg.NeutralDutyPct),
	}
}

func (s *service) loop(ctx context.Context) {
	cfgSub := s.conn.Subscribe(topicConfig)
	defer s.conn.Unsubscribe(cfgSub)
	ctrlSub := s.conn.Subscribe(topicControl)
	defer s.conn.Unsubscribe(ctrlSub)

	// Bring the servo up centred. A failure here is fatal: a servo we cannot
	// programme must not be driven at all.
	if err := s.drv.Initialize(false, s.cfg.ClockHz); err != nil {
		s.publishState("error", "init_failed", err)
		return
	}
	if err := s.applyDuty(s.cfg.NeutralDutyPct); err != nil {
		s.publishState("error", "neutral_failed", err)
		return
	}
	s.publishState("ready", "neutral", nil)

	// Let the servo settle on neutral before the first cycle. After that the
	// cadence depends on whether the last cycle reprogrammed: a settle period
	// after every update, a tight poll while the duty is unchanged.
	delay := s.cfg.UpdateDelayMs
	for {
		// Waits run on the sampler's millisecond clock. Config and control
		// traffic is handled while waiting.
		waitDone := s.clockWait(ctx, delay)
		waiting := true
		for waiting {
			select {
			case <-ctx.Done():
				_ = s.drv.Stop()
				s.publishState("stopped", "context_cancelled", nil)
				return
			case msg := <-cfgSub.Channel():
				s.handleConfig(msg)
			case msg := <-ctrlSub.Channel():
				s.handleControl(msg)
			case <-waitDone:
				waiting = false
			}
		}
		if s.update() {
			delay = s.cfg.UpdateDelayMs
		} else {
			delay = s.cfg.PollDelayMs
		}
	}
}

func (s *service) clockWait(ctx context.Context, ms uint32) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		_ = s.clock.Sleep(ctx, ms)
		close(done)
	}()
	return done
}

// update is one steering cycle: latest estimate in, servo duty out. It
// reports whether the servo was reprogrammed, so the loop knows to wait out
// a settle period rather than poll again immediately.
func (s *service) update() bool {
	ticks := s.cell.Latest()
	ts := int64(s.clock.Now())
	s.conn.Publish(s.conn.NewMessage(topicPhase, types.PhaseValue{Ticks: ticks, TsMs: ts}, true))

	duty := s.policy.DutyFor(ticks)
	if s.display != nil {
		_ = s.display.Show(
			fmtx.Sprintf("PHS %d", ticks),
			fmtx.Sprintf("DTY %d%%", duty),
		)
	}

	if duty == s.appliedDuty {
		// Reprogramming stops the timer briefly; do not disturb a pulse train
		// that is already correct.
		return false
	}
	if err := s.applyDuty(duty); err != nil {
		// A runtime reprogramming failure skips this cycle; the servo keeps
		// its previous pulse and we try again after a settle period.
		fmtx.Printf("steer: set_params failed: %v\n", err)
		s.publishState("degraded", "set_params_failed", err)
		return true
	}

	params := types.PWMParams{FreqHz: s.cfg.NeutralFreqHz, DutyPct: duty}
	s.conn.Publish(s.conn.NewMessage(topicDuty, types.DutyEvent{Params: params, Phase: ticks, TsMs: ts}, false))
	return true
}

// applyDuty reprograms the servo PWM and restarts it. SetParams always leaves
// the timer stopped, so the explicit Start is part of every update.
func (s *service) applyDuty(dutyPct uint32) error {
	s.appliedDuty = dutyUnknown
	if err := s.drv.SetParams(s.cfg.NeutralFreqHz, dutyPct); err != nil {
		return err
	}
	if err := s.drv.Start(); err != nil {
		return err
	}
	s.appliedDuty = dutyPct
	return nil
}

func (s *service) handleConfig(msg *bus.Message) {
	var cfg types.SteerConfig
	switch p := msg.Payload.(type) {
	case types.SteerConfig:
		cfg = p
	case *types.SteerConfig:
		cfg = *p
	default:
		if err := decodeJSON(p, &cfg); err != nil {
			s.publishState("degraded", "config_decode_failed", err)
			return
		}
	}
	s.setConfig(cfg)
	if err := s.applyDuty(cfg.NeutralDutyPct); err != nil {
		s.publishState("degraded", "reconfigure_failed", err)
		return
	}
	s.publishState("ready", "configured", nil)
}

func (s *service) handleControl(msg *bus.Message) {
	// steer/control/<method>
	if len(msg.Topic) < 3 {
		return
	}
	method, _ := msg.Topic[2].(string)

	switch method {
	case "get_params":
		freq, duty, err := s.drv.GetParams()
		if err != nil {
			s.replyErr(msg, err)
			return
		}
		// Reading the registers stops the timer; put the servo back.
		if err := s.drv.Start(); err != nil {
			s.replyErr(msg, err)
			return
		}
		s.conn.Reply(msg, types.ParamsReply{OK: true, Params: types.PWMParams{FreqHz: freq, DutyPct: duty}}, false)

	case "set_params":
		var p types.PWMParams
		switch v := msg.Payload.(type) {
		case types.PWMParams:
			p = v
		case *types.PWMParams:
			p = *v
		default:
			if err := decodeJSON(v, &p); err != nil {
				s.replyErr(msg, err)
				return
			}
		}
		// The timer stays stopped until a "start" verb or the next cycle.
		s.appliedDuty = dutyUnknown
		if err := s.drv.SetParams(p.FreqHz, p.DutyPct); err != nil {
			s.replyErr(msg, err)
			return
		}
		s.conn.Reply(msg, types.OKReply{OK: true}, false)

	case "start":
		if err := s.drv.Start(); err != nil {
			s.replyErr(msg, err)
			return
		}
		s.conn.Reply(msg, types.OKReply{OK: true}, false)

	case "stop":
		s.appliedDuty = dutyUnknown
		if err := s.drv.Stop(); err != nil {
			s.replyErr(msg, err)
			return
		}
		s.conn.Reply(msg, types.OKReply{OK: true}, false)

	case "set_neutral":
		if err := s.applyDuty(s.cfg.NeutralDutyPct); err != nil {
			s.replyErr(msg, err)
			return
		}
		s.conn.Reply(msg, types.OKReply{OK: true}, false)

	default:
		s.conn.Reply(msg, types.ErrorReply{Error: "unknown method: " + method}, false)
	}
}

func (s *service) publishState(level, status string, err error) {
	v := types.StateValue{Level: level, Status: status, TsMs: int64(s.clock.Now())}
	if err != nil {
		v.Error = err.Error()
	}
	s.conn.Publish(s.conn.NewMessage(topicState, v, true))
}

func (s *service) replyErr(req *bus.Message, err error) {
	s.conn.Reply(req, types.ErrorReply{Error: err.Error()}, false)
}

// decodeJSON converts loosely typed payloads (map[string]any from config
// documents) into their typed form via a JSON round trip.
func decodeJSON(payload any, out any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}
