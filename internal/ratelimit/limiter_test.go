package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/rotisserie/eris"
)

func TestLimiterAllowsWithinBudget(t *testing.T) {
	t.Parallel()

	rl := New(Options{Burst: 3, PerSecond: 3, TTL: time.Minute})

	current := time.Unix(0, 0)
	rl.now = func() time.Time {
		return current
	}

	key := "1.2.3.4"

	for i := 0; i < 3; i++ {
		if !rl.Allow(key) {
			t.Fatalf("expected request %d to be allowed", i+1)
		}
	}

	if rl.Allow(key) {
		t.Fatalf("expected fourth request to be denied")
	}

	current = current.Add(time.Second)

	if !rl.Allow(key) {
		t.Fatalf("expected request after refill to be allowed")
	}
}

func TestLimiterKeysAreIndependent(t *testing.T) {
	t.Parallel()

	rl := New(Options{Burst: 1, PerSecond: 1})
	current := time.Unix(0, 0)
	rl.now = func() time.Time { return current }

	if !rl.Allow("a") || !rl.Allow("b") {
		t.Fatalf("expected first request per key to be allowed")
	}
	if rl.Allow("a") {
		t.Fatalf("expected second request for key a to be denied")
	}
}

func TestLimiterPrunesIdleBuckets(t *testing.T) {
	t.Parallel()

	rl := New(Options{Burst: 1, PerSecond: 1, TTL: time.Minute})
	current := time.Unix(0, 0)
	rl.now = func() time.Time { return current }

	rl.Allow("idle")
	current = current.Add(2 * time.Minute)
	rl.Allow("fresh")

	rl.mu.Lock()
	defer rl.mu.Unlock()
	if _, ok := rl.buckets["idle"]; ok {
		t.Fatalf("expected idle bucket to be pruned")
	}
}

func TestWaitSleepsUntilNextSlot(t *testing.T) {
	t.Parallel()

	rl := Every(5*time.Second, time.Minute)
	current := time.Unix(0, 0)
	rl.now = func() time.Time { return current }

	var slept []time.Duration
	rl.sleep = func(_ context.Context, d time.Duration) error {
		slept = append(slept, d)
		current = current.Add(d)
		return nil
	}

	ctx := context.Background()
	if err := rl.Wait(ctx, "pipeline"); err != nil {
		t.Fatalf("first Wait returned error: %v", err)
	}
	if len(slept) != 0 {
		t.Fatalf("expected first wait to be immediate, slept %v", slept)
	}

	if err := rl.Wait(ctx, "pipeline"); err != nil {
		t.Fatalf("second Wait returned error: %v", err)
	}
	if len(slept) != 1 || slept[0] != 5*time.Second {
		t.Fatalf("expected a single 5s sleep, got %v", slept)
	}
}

func TestWaitHonoursCeiling(t *testing.T) {
	t.Parallel()

	rl := Every(time.Hour, time.Second)
	current := time.Unix(0, 0)
	rl.now = func() time.Time { return current }

	ctx := context.Background()
	if err := rl.Wait(ctx, "k"); err != nil {
		t.Fatalf("first Wait returned error: %v", err)
	}
	if err := rl.Wait(ctx, "k"); !eris.Is(err, ErrWaitExceeded) {
		t.Fatalf("expected ErrWaitExceeded, got %v", err)
	}
}

func TestWaitStopsOnCancelledContext(t *testing.T) {
	t.Parallel()

	rl := Every(time.Hour, 0)
	ctx, cancel := context.WithCancel(context.Background())

	if err := rl.Wait(ctx, "k"); err != nil {
		t.Fatalf("first Wait returned error: %v", err)
	}
	cancel()
	if err := rl.Wait(ctx, "k"); err == nil {
		t.Fatalf("expected error from cancelled context")
	}
}

func TestZeroIntervalNeverWaits(t *testing.T) {
	t.Parallel()

	rl := Every(0, 0)
	for i := 0; i < 10; i++ {
		if err := rl.Wait(context.Background(), "k"); err != nil {
			t.Fatalf("Wait returned error: %v", err)
		}
	}
}
