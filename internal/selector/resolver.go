// Package selector resolves logical UI targets against unstable DOM.
// Each target carries a ranked list of candidate CSS selectors; the
// resolver tries them in order within a shared timeout budget, so a
// site redesign degrades extraction instead of breaking it silently.
package selector

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog/log"
)

// ErrNotFound is returned when no candidate selector resolved within
// the budget. Callers are expected to degrade (typically to a
// full-page screenshot), not abort.
var ErrNotFound = errors.New("no selector candidate resolved")

// Target is a named, ranked selector candidate list for one logical
// UI element, ordered most-specific first.
type Target struct {
	Name       string
	Candidates []string
}

// WaitFunc blocks until the selector is visible on the page or the
// context expires. Tests substitute this to run without a browser.
type WaitFunc func(ctx context.Context, sel string) error

// Resolver tries a target's candidates in rank order.
type Resolver struct {
	wait WaitFunc
}

// New returns a Resolver backed by chromedp visibility waits.
func New() *Resolver {
	return &Resolver{wait: func(ctx context.Context, sel string) error {
		return chromedp.Run(ctx, chromedp.WaitVisible(sel, chromedp.ByQuery))
	}}
}

// NewWithWait returns a Resolver with a custom wait primitive.
func NewWithWait(wait WaitFunc) *Resolver {
	return &Resolver{wait: wait}
}

// Resolve returns the first candidate of t that becomes visible within
// the overall budget. The budget is front-loaded: the first (likeliest)
// candidate gets half of it, the rest share the remainder evenly.
func (r *Resolver) Resolve(ctx context.Context, t Target, budget time.Duration) (string, error) {
	if len(t.Candidates) == 0 {
		return "", fmt.Errorf("target %q: %w", t.Name, ErrNotFound)
	}

	for i, sel := range t.Candidates {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		slice := budgetSlice(budget, len(t.Candidates), i)
		waitCtx, cancel := context.WithTimeout(ctx, slice)
		err := r.wait(waitCtx, sel)
		cancel()

		if err == nil {
			if i > 0 {
				log.Debug().Str("target", t.Name).Str("selector", sel).Int("rank", i).
					Msg("Resolved via fallback candidate")
			}
			return sel, nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		log.Debug().Str("target", t.Name).Str("selector", sel).Dur("slice", slice).
			Msg("Candidate did not resolve")
	}

	return "", fmt.Errorf("target %q: %w", t.Name, ErrNotFound)
}

// budgetSlice allocates the per-candidate timeout: with n>1 candidates
// the first gets budget/2 and the remaining n-1 split the other half.
func budgetSlice(budget time.Duration, n, i int) time.Duration {
	if n == 1 {
		return budget
	}
	if i == 0 {
		return budget / 2
	}
	return budget / 2 / time.Duration(n-1)
}
