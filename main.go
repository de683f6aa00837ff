package main

import (
	"context"
	"time"

	"soundsteer-go/bus"
	"soundsteer-go/phase"
	"soundsteer-go/platform"
	"soundsteer-go/pwm"
	"soundsteer-go/services/config"
	"soundsteer-go/services/heartbeat"
	"soundsteer-go/services/steer"
	"soundsteer-go/types"
	"soundsteer-go/x/timex"
)

func main() {
	// Allow USB CDC to enumerate before we print.
	time.Sleep(2 * time.Second)
	println("boot:", platform.DeviceID())

	board := platform.Setup()
	ctx := context.Background()
	b := bus.NewBus(8)

	cfg := types.DefaultSteerConfig()
	cell := &phase.Cell{}
	clock := &phase.MsClock{}

	sampler := phase.NewSampler(board.Counters, board.Heartbeat, cell, clock,
		cfg.WindowTicks, cfg.TickHz/1000)
	sampler.Start(ctx, timex.PeriodFromHz(cfg.TickHz))

	config.NewConfigService().Start(
		context.WithValue(ctx, config.CtxDeviceKey, platform.DeviceID()),
		b.NewConnection("config"),
	)

	hb := &heartbeat.Service{}
	_ = hb.Start(ctx, b.NewConnection("heartbeat"))

	// Blocks for the life of the device.
	steer.Run(ctx, b.NewConnection("steer"), pwm.NewDriver(board.Regs),
		cell, clock, board.Display, cfg)
}
