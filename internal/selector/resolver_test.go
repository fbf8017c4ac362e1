package selector

import (
	"context"
	"errors"
	"testing"
	"time"
)

// presentWait resolves instantly for selectors in the set and blocks
// until the context expires otherwise.
func presentWait(present map[string]bool) WaitFunc {
	return func(ctx context.Context, sel string) error {
		if present[sel] {
			return nil
		}
		<-ctx.Done()
		return ctx.Err()
	}
}

func TestResolvePrefersRank(t *testing.T) {
	target := Target{Name: "t", Candidates: []string{"#first", "#second", "#third"}}
	r := NewWithWait(presentWait(map[string]bool{"#second": true, "#third": true}))

	sel, err := r.Resolve(context.Background(), target, 200*time.Millisecond)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if sel != "#second" {
		t.Errorf("expected the highest-ranked present candidate, got %q", sel)
	}
}

func TestResolveFirstCandidateWins(t *testing.T) {
	target := Target{Name: "t", Candidates: []string{"#first", "#second"}}
	r := NewWithWait(presentWait(map[string]bool{"#first": true}))

	sel, err := r.Resolve(context.Background(), target, 200*time.Millisecond)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if sel != "#first" {
		t.Errorf("got %q, want #first", sel)
	}
}

func TestResolveExhaustion(t *testing.T) {
	target := Target{Name: "gone", Candidates: []string{"#a", "#b"}}
	r := NewWithWait(presentWait(nil))

	start := time.Now()
	_, err := r.Resolve(context.Background(), target, 100*time.Millisecond)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("exhaustion took %v, budget was 100ms", elapsed)
	}
}

func TestResolveNoCandidates(t *testing.T) {
	r := NewWithWait(presentWait(nil))
	_, err := r.Resolve(context.Background(), Target{Name: "empty"}, time.Second)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestResolveParentCancellation(t *testing.T) {
	target := Target{Name: "t", Candidates: []string{"#a", "#b", "#c"}}
	r := NewWithWait(presentWait(nil))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Resolve(ctx, target, time.Minute)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestBudgetSlice(t *testing.T) {
	budget := 30 * time.Second

	if got := budgetSlice(budget, 1, 0); got != budget {
		t.Errorf("single candidate gets the whole budget, got %v", got)
	}
	if got := budgetSlice(budget, 4, 0); got != 15*time.Second {
		t.Errorf("first of four gets half, got %v", got)
	}
	if got := budgetSlice(budget, 4, 2); got != 5*time.Second {
		t.Errorf("later candidates split the other half, got %v", got)
	}
}
