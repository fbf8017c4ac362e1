package classify

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func fastConfig() Config {
	return Config{
		MaxAttempts:    3,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
		Multiplier:     2.0,
		Jitter:         0,
	}
}

func TestDoSucceedsFirstAttempt(t *testing.T) {
	c := NewController(fastConfig())

	calls := 0
	kind, err := c.Do(context.Background(), "op", func(ctx context.Context, attempt int) (Kind, error) {
		calls++
		return None, nil
	})
	if err != nil || kind != None {
		t.Fatalf("got kind=%v err=%v", kind, err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestDoRetriesUpToMaxAttempts(t *testing.T) {
	c := NewController(fastConfig())

	calls := 0
	_, err := c.Do(context.Background(), "op", func(ctx context.Context, attempt int) (Kind, error) {
		calls++
		return Transient, errors.New("boom")
	})
	if err == nil {
		t.Fatal("expected an error after exhaustion")
	}
	if calls != 3 {
		t.Errorf("expected exactly MaxAttempts=3 calls, got %d", calls)
	}
	if !strings.Contains(err.Error(), "after 3 attempts") {
		t.Errorf("error should name the attempt count, got %v", err)
	}
}

func TestDoNoDataIsTerminalSuccess(t *testing.T) {
	c := NewController(fastConfig())

	calls := 0
	kind, err := c.Do(context.Background(), "op", func(ctx context.Context, attempt int) (Kind, error) {
		calls++
		return NoData, nil
	})
	if err != nil {
		t.Fatalf("NoData must not be an error, got %v", err)
	}
	if kind != NoData {
		t.Errorf("got kind %v, want NoData", kind)
	}
	if calls != 1 {
		t.Errorf("NoData must consume zero retries, got %d calls", calls)
	}
}

func TestDoSessionExpiredFastPath(t *testing.T) {
	cfg := fastConfig()
	cfg.InitialBackoff = time.Hour // any non-fast-path retry would hang the test
	c := NewController(cfg)

	calls := 0
	kind, err := c.Do(context.Background(), "op", func(ctx context.Context, attempt int) (Kind, error) {
		calls++
		if calls == 1 {
			return SessionExpired, errors.New("logged out")
		}
		return None, nil
	})
	if err != nil || kind != None {
		t.Fatalf("got kind=%v err=%v", kind, err)
	}
	if calls != 2 {
		t.Errorf("fast path should retry immediately once, got %d calls", calls)
	}
}

func TestDoContextCancellation(t *testing.T) {
	cfg := fastConfig()
	cfg.InitialBackoff = time.Hour
	c := NewController(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := c.Do(ctx, "op", func(ctx context.Context, attempt int) (Kind, error) {
		return Transient, errors.New("boom")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestShouldRetry(t *testing.T) {
	c := NewController(fastConfig())

	if c.ShouldRetry(None, 1) {
		t.Error("None never retries")
	}
	if c.ShouldRetry(NoData, 1) {
		t.Error("NoData never retries")
	}
	if !c.ShouldRetry(Transient, 1) {
		t.Error("Transient retries below the cap")
	}
	if c.ShouldRetry(Transient, 3) {
		t.Error("no retry at the attempt cap")
	}
}

func TestBackoffGrowsAndCaps(t *testing.T) {
	c := NewController(Config{
		MaxAttempts:    5,
		InitialBackoff: time.Second,
		MaxBackoff:     3 * time.Second,
		Multiplier:     2.0,
		Jitter:         0,
	})

	if got := c.Backoff(1); got != time.Second {
		t.Errorf("attempt 1: got %v", got)
	}
	if got := c.Backoff(2); got != 2*time.Second {
		t.Errorf("attempt 2: got %v", got)
	}
	if got := c.Backoff(4); got != 3*time.Second {
		t.Errorf("attempt 4 should cap at MaxBackoff, got %v", got)
	}
}
