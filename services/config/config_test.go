package config

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"soundsteer-go/bus"
	"soundsteer-go/types"
)

func TestConfig_PublishEmbedded_RetainedPerKey(t *testing.T) {
	b := bus.NewBus(16)
	conn := b.NewConnection("test-config")
	svc := NewConfigService()

	ctx := context.WithValue(context.Background(), CtxDeviceKey, "pico")
	svc.Start(ctx, conn)

	// Retained messages reach a late subscriber.
	time.Sleep(50 * time.Millisecond)
	sub := conn.Subscribe(bus.Topic{configPrefix, "steer"})
	defer conn.Unsubscribe(sub)

	select {
	case m := <-sub.Channel():
		section, ok := m.Payload.(map[string]any)
		if !ok {
			t.Fatalf("steer payload %T, want map", m.Payload)
		}
		raw, err := json.Marshal(section)
		if err != nil {
			t.Fatal(err)
		}
		var cfg types.SteerConfig
		if err := json.Unmarshal(raw, &cfg); err != nil {
			t.Fatalf("steer section does not decode: %v", err)
		}
		if cfg.NeutralFreqHz != 50 || cfg.NeutralDutyPct != 7 {
			t.Errorf("neutral = %d Hz / %d %%, want 50 / 7", cfg.NeutralFreqHz, cfg.NeutralDutyPct)
		}
		if cfg.WindowTicks != types.ValidityWindowTicks {
			t.Errorf("window = %d, want %d", cfg.WindowTicks, types.ValidityWindowTicks)
		}
	case <-time.After(time.Second):
		t.Fatal("no retained steer config")
	}
}

func TestConfig_UnknownDevice(t *testing.T) {
	b := bus.NewBus(16)
	conn := b.NewConnection("test-config")
	svc := NewConfigService()

	if err := svc.publishConfig(context.WithValue(context.Background(), CtxDeviceKey, "nope"), conn); err == nil {
		t.Fatal("expected error for unknown device")
	}
	if err := svc.publishConfig(context.Background(), conn); err == nil {
		t.Fatal("expected error for missing device ID")
	}
}
