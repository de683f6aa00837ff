//go:build !rp2040 && !rp2350

// steer-sim runs the full steering stack on host fakes, with a synthetic
// sound source sweeping back and forth in front of the microphone pair.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"time"

	"soundsteer-go/bus"
	"soundsteer-go/phase"
	"soundsteer-go/platform"
	"soundsteer-go/pwm"
	"soundsteer-go/services/config"
	"soundsteer-go/services/heartbeat"
	"soundsteer-go/services/steer"
	"soundsteer-go/types"
	"soundsteer-go/x/fmtx"
	"soundsteer-go/x/mathx"
	"soundsteer-go/x/timex"
)

func main() {
	sweepPeriod := flag.Duration("sweep", 10*time.Second, "full left-right-left sweep period of the synthetic source")
	updateMs := flag.Uint("update-ms", 200, "servo update cadence in milliseconds")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	board := platform.Setup()
	counters := board.Counters.(*platform.FakeCounterPair)

	cfg := types.DefaultSteerConfig()
	cfg.UpdateDelayMs = uint32(*updateMs)

	b := bus.NewBus(16)
	cell := &phase.Cell{}
	clock := &phase.MsClock{}

	sampler := phase.NewSampler(counters, board.Heartbeat, cell, clock,
		cfg.WindowTicks, cfg.TickHz/1000)
	sampler.Start(ctx, timex.PeriodFromHz(cfg.TickHz))

	go sweepSource(ctx, counters, cfg.WindowTicks, *sweepPeriod)

	config.NewConfigService().Start(
		context.WithValue(ctx, config.CtxDeviceKey, platform.DeviceID()),
		b.NewConnection("config"),
	)

	hb := &heartbeat.Service{Interval: time.Second}
	_ = hb.Start(ctx, b.NewConnection("heartbeat"))

	go monitor(ctx, b.NewConnection("monitor"))

	steer.Run(ctx, b.NewConnection("steer"), pwm.NewDriver(board.Regs),
		cell, clock, board.Display, cfg)
}

// sweepSource moves the synthetic source in a triangle wave between the edges
// of the validity window, refreshing the fake edge counters every few
// milliseconds like real wavefronts would.
func sweepSource(ctx context.Context, counters *platform.FakeCounterPair, window int32, period time.Duration) {
	const base = 100_000 // edges both channels have always seen

	tick := time.NewTicker(5 * time.Millisecond)
	defer tick.Stop()

	start := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
		}

		// Triangle wave in [-window, window].
		elapsed := time.Since(start) % period
		frac := float64(elapsed) / float64(period) // 0..1
		var pos float64
		if frac < 0.5 {
			pos = 4*frac - 1 // -1 -> 1
		} else {
			pos = 3 - 4*frac // 1 -> -1
		}
		offset := int32(pos * float64(window))

		mag := uint32(mathx.Abs(offset))
		if offset >= 0 {
			counters.SetCounts(base+mag, base)
		} else {
			counters.SetCounts(base, base+mag)
		}
	}
}

// monitor tails the service topics to stdout.
func monitor(ctx context.Context, conn *bus.Connection) {
	sub := conn.Subscribe(bus.Topic{"steer", "#"})
	defer conn.Unsubscribe(sub)

	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-sub.Channel():
			switch p := msg.Payload.(type) {
			case types.DutyEvent:
				fmtx.Printf("sim: phase=%d duty=%d%% ts=%dms\n", p.Phase, p.Params.DutyPct, p.TsMs)
			case types.StateValue:
				fmtx.Printf("sim: state %s/%s %s\n", p.Level, p.Status, p.Error)
			}
		}
	}
}
