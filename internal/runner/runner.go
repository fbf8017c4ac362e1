// Package runner sequences tasks through the adapters. Tasks run one
// at a time: the sites being driven are rate-sensitive and every
// adapter holds interactive browser state.
package runner

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/keywordlab/harvest/internal/adapter"
	"github.com/keywordlab/harvest/internal/browser"
	"github.com/keywordlab/harvest/internal/report"
	"github.com/keywordlab/harvest/pkg/models"
)

// Runner executes every task against two adapter groups. The
// authenticated group shares a persistent browser profile that carries
// Google logins; the isolated group gets a throwaway profile per task
// so search results stay unpersonalized.
type Runner struct {
	Store         *report.Store
	Authenticated []adapter.Adapter
	Isolated      []adapter.Adapter
	AuthOpts      browser.Options
	IsoOpts       browser.Options
	Events        models.EventSink

	// Open launches the browser for a phase. Defaults to browser.Open;
	// tests substitute it.
	Open func(ctx context.Context, opts browser.Options) (*browser.Session, error)
}

func (r *Runner) events() models.EventSink {
	if r.Events == nil {
		return models.NopSink{}
	}
	return r.Events
}

// Run processes tasks in order. A failing task is logged and the run
// continues; only context cancellation stops it early.
func (r *Runner) Run(ctx context.Context, tasks []models.Task) error {
	total := len(tasks)
	for i, task := range tasks {
		if err := ctx.Err(); err != nil {
			return err
		}
		log.Info().Str("slug", task.Slug).Str("input", task.Raw).
			Int("index", i+1).Int("total", total).Msg("Starting task")

		ok := r.runTask(ctx, task)
		r.events().TaskCompleted(task, ok)
		r.events().Progress(i+1, total)

		if ok {
			log.Info().Str("slug", task.Slug).Msg("Task completed")
		} else {
			log.Warn().Str("slug", task.Slug).Msg("Task completed with failures")
		}
	}
	return ctx.Err()
}

// runTask runs both phases and reports whether every adapter succeeded.
// Partial success still writes whatever was collected.
func (r *Runner) runTask(ctx context.Context, task models.Task) bool {
	authOK := r.runPhase(ctx, task, r.Authenticated, r.AuthOpts)
	if ctx.Err() != nil {
		return false
	}
	isoOK := r.runPhase(ctx, task, r.Isolated, r.IsoOpts)
	return authOK && isoOK
}

func (r *Runner) runPhase(ctx context.Context, task models.Task, adapters []adapter.Adapter, opts browser.Options) bool {
	if len(adapters) == 0 {
		return true
	}

	open := r.Open
	if open == nil {
		open = browser.Open
	}
	sess, err := open(ctx, opts)
	if err != nil {
		// Launch failure kills the phase for this task only.
		log.Error().Err(err).Str("slug", task.Slug).Msg("Browser launch failed")
		return false
	}
	defer sess.Close()

	allOK := true
	for _, ad := range adapters {
		if ctx.Err() != nil {
			return false
		}
		results, err := ad.Run(ctx, sess, task)

		// Write partial results before looking at the error: whatever
		// an adapter collected before failing is still worth keeping.
		for _, res := range results {
			if res.Empty() && !res.NoData {
				log.Debug().Str("slug", task.Slug).Str("section", res.Section).
					Msg("Empty result, section left untouched")
				continue
			}
			if upErr := r.Store.Upsert(task.Slug, res); upErr != nil {
				log.Error().Err(upErr).Str("slug", task.Slug).
					Str("section", res.Section).Msg("Report update failed")
				allOK = false
			}
		}
		if err != nil {
			log.Warn().Err(err).Str("adapter", ad.Name()).Str("slug", task.Slug).
				Msg("Adapter failed")
			allOK = false
		}
	}
	return allOK
}
