// Package adapter contains the per-source collectors. Each adapter drives a
// browser session against one data source and produces extraction results
// addressed to a section of the task's report.
package adapter

import (
	"context"

	"github.com/keywordlab/harvest/internal/browser"
	"github.com/keywordlab/harvest/internal/classify"
	"github.com/keywordlab/harvest/internal/pace"
	"github.com/keywordlab/harvest/internal/selector"
	"github.com/keywordlab/harvest/pkg/models"
)

// Adapter collects data for one task from one source.
type Adapter interface {
	// Name identifies the adapter in logs and screenshot filenames.
	Name() string
	// Run drives the session and returns one result per report section the
	// adapter owns. A partial slice with an error is valid: whatever was
	// collected before the failure still gets written.
	Run(ctx context.Context, sess *browser.Session, task models.Task) ([]models.ExtractionResult, error)
}

// Deps bundles the collaborators every adapter needs.
type Deps struct {
	Resolver *selector.Resolver
	Retry    *classify.Controller
	Pacer    *pace.Pacer
	Shots    string // screenshot output directory
	Events   models.EventSink
}

func (d Deps) events() models.EventSink {
	if d.Events == nil {
		return models.NopSink{}
	}
	return d.Events
}
