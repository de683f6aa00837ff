package phase

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestCell_PublishLatest(t *testing.T) {
	var c Cell
	if got := c.Latest(); got != 0 {
		t.Fatalf("zero cell = %d, want 0", got)
	}
	c.Publish(1234)
	if got := c.Latest(); got != 1234 {
		t.Errorf("Latest = %d, want 1234", got)
	}
	c.Publish(-25_000)
	if got := c.Latest(); got != -25_000 {
		t.Errorf("Latest = %d, want -25000", got)
	}
}

func TestMsClock_Sleep(t *testing.T) {
	var clock MsClock

	// Advance the clock from another goroutine, like the sampler tick does.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 5; i++ {
			time.Sleep(time.Millisecond)
			clock.Advance()
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := clock.Sleep(ctx, 5); err != nil {
		t.Fatalf("Sleep: %v", err)
	}
	if clock.Now() < 5 {
		t.Errorf("clock = %d ms after Sleep(5)", clock.Now())
	}
	<-done
}

func TestMsClock_SleepCancel(t *testing.T) {
	var clock MsClock

	// The clock never advances; cancellation is the only way out.
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(5 * time.Millisecond)
		cancel()
	}()

	err := clock.Sleep(ctx, 1000)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Sleep after cancel: %v, want context.Canceled", err)
	}
}

func TestMsClock_SleepZero(t *testing.T) {
	var clock MsClock
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	if err := clock.Sleep(ctx, 0); err != nil {
		t.Fatalf("Sleep(0): %v", err)
	}
}

func TestMsClock_SleepWrapSafe(t *testing.T) {
	var clock MsClock
	// Park the clock just below the 32-bit wrap point.
	clock.ms.Store(1<<32 - 2)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 4; i++ {
			time.Sleep(time.Millisecond)
			clock.Advance()
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	// Target wraps past zero; the signed comparison must still terminate.
	if err := clock.Sleep(ctx, 4); err != nil {
		t.Fatalf("Sleep across wrap: %v", err)
	}
	<-done
}
