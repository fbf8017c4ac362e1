package classify

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/rs/zerolog/log"
)

// Config defines the bounded retry behavior shared by all adapters.
type Config struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	Multiplier     float64
	// Jitter is the fraction of the backoff randomized to avoid a
	// mechanical retry cadence (0.25 means +/-25%).
	Jitter float64
}

// DefaultConfig mirrors the default policy: three attempts with a
// short exponential backoff.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:    3,
		InitialBackoff: 2 * time.Second,
		MaxBackoff:     15 * time.Second,
		Multiplier:     2.0,
		Jitter:         0.25,
	}
}

// Controller decides retry versus terminal-accept for classified page
// failures. One controller is shared by every adapter in a run.
type Controller struct {
	cfg Config
}

// NewController validates and applies defaults to cfg.
func NewController(cfg Config) *Controller {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = 2 * time.Second
	}
	if cfg.Multiplier < 1 {
		cfg.Multiplier = 2.0
	}
	return &Controller{cfg: cfg}
}

// MaxAttempts returns the attempt cap.
func (c *Controller) MaxAttempts() int { return c.cfg.MaxAttempts }

// ShouldRetry reports whether another attempt is warranted after the
// given classification. attempt is 1-based (attempts consumed so far).
func (c *Controller) ShouldRetry(k Kind, attempt int) bool {
	switch k {
	case None, NoData:
		return false
	case SessionExpired, Transient, Unknown:
		return attempt < c.cfg.MaxAttempts
	}
	return false
}

// Backoff returns the jittered delay before the given 1-based attempt.
func (c *Controller) Backoff(attempt int) time.Duration {
	d := float64(c.cfg.InitialBackoff) * math.Pow(c.cfg.Multiplier, float64(attempt-1))
	if max := float64(c.cfg.MaxBackoff); c.cfg.MaxBackoff > 0 && d > max {
		d = max
	}
	if c.cfg.Jitter > 0 {
		d += d * c.cfg.Jitter * (2*rand.Float64() - 1)
	}
	return time.Duration(d)
}

// Do runs fn until it reports success, a terminal classification, or
// the attempt cap. fn returns the page classification plus any hard
// error; a SessionExpired classification earns one immediate fast-path
// retry with no backoff delay (re-login is cheap and usually fixes
// it), after which the normal transient policy applies.
//
// The final classification is returned so callers can distinguish
// NoData (terminal success, empty payload) from exhaustion.
func (c *Controller) Do(ctx context.Context, name string, fn func(ctx context.Context, attempt int) (Kind, error)) (Kind, error) {
	var (
		lastKind Kind
		lastErr  error
		fastPath = true
	)

	for attempt := 1; attempt <= c.cfg.MaxAttempts; attempt++ {
		kind, err := fn(ctx, attempt)
		lastKind, lastErr = kind, err

		switch {
		case err == nil && kind == None:
			return None, nil
		case kind == NoData:
			// Terminal success: the adapter still produces an explicit
			// empty record, and no retries are consumed.
			return NoData, nil
		}

		if !c.ShouldRetry(kind, attempt) {
			break
		}

		if kind == SessionExpired && fastPath {
			fastPath = false
			log.Debug().Str("op", name).Int("attempt", attempt).
				Msg("Session expired, fast-path retry")
			continue
		}

		delay := c.Backoff(attempt)
		log.Debug().Str("op", name).Int("attempt", attempt).
			Str("kind", kind.String()).Dur("backoff", delay).Err(err).
			Msg("Retrying after backoff")

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return lastKind, ctx.Err()
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("page classified as %s", lastKind)
	}
	return lastKind, fmt.Errorf("%s failed after %d attempts: %w", name, c.cfg.MaxAttempts, lastErr)
}
