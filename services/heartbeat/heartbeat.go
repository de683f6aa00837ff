// Package heartbeat prints a periodic liveness line with the latest phase
// estimate and servo duty, for a human watching the console.
package heartbeat

import (
	"context"
	"time"

	"soundsteer-go/bus"
	"soundsteer-go/types"
	"soundsteer-go/x/fmtx"
	"soundsteer-go/x/timex"
)

var (
	topicPhase = bus.Topic{"steer", "phase", "value"}
	topicDuty  = bus.Topic{"steer", "duty", "event"}
)

type Service struct {
	Interval time.Duration // zero means one second
}

func (s *Service) serviceLoop(ctx context.Context, conn *bus.Connection) {
	phaseSub := conn.Subscribe(topicPhase)
	defer conn.Unsubscribe(phaseSub)
	dutySub := conn.Subscribe(topicDuty)
	defer conn.Unsubscribe(dutySub)

	interval := s.Interval
	if interval <= 0 {
		interval = time.Second
	}
	tick := time.NewTicker(interval)
	defer tick.Stop()

	var lastPhase types.PhaseValue
	var lastDuty types.DutyEvent

	for {
		select {
		case <-ctx.Done():
			fmtx.Printf("heartbeat: stopping\n")
			return
		case msg := <-phaseSub.Channel():
			if v, ok := msg.Payload.(types.PhaseValue); ok {
				lastPhase = v
			}
		case msg := <-dutySub.Channel():
			if v, ok := msg.Payload.(types.DutyEvent); ok {
				lastDuty = v
			}
		case <-tick.C:
			fmtx.Printf("heartbeat: now=%dms ts=%dms phase=%d duty=%d%%\n",
				timex.NowMs(), lastPhase.TsMs, lastPhase.Ticks, lastDuty.Params.DutyPct)
		}
	}
}

// Start launches the heartbeat printer in a goroutine.
func (s *Service) Start(ctx context.Context, conn *bus.Connection) error {
	go s.serviceLoop(ctx, conn)
	return nil
}
