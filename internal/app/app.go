// Package app provides the core application initialization and lifecycle management.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/keywordlab/harvest/internal/adapter"
	"github.com/keywordlab/harvest/internal/browser"
	"github.com/keywordlab/harvest/internal/classify"
	"github.com/keywordlab/harvest/internal/config"
	"github.com/keywordlab/harvest/internal/pace"
	"github.com/keywordlab/harvest/internal/report"
	"github.com/keywordlab/harvest/internal/runner"
	"github.com/keywordlab/harvest/internal/selector"
	"github.com/keywordlab/harvest/pkg/models"
)

// Application holds all application dependencies and manages their lifecycle.
//
// It is created once at startup and shared across all CLI commands.
// Use Close() to ensure proper resource cleanup on shutdown.
type Application struct {
	Config   *config.Config
	Logger   *zerolog.Logger
	Store    *report.Store
	Resolver *selector.Resolver
	Retry    *classify.Controller
	Pacer    *pace.Pacer

	startTime time.Time
}

// New creates and initializes a new Application with all dependencies.
func New(ctx context.Context, cfg *config.Config) (*Application, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	logLevel := zerolog.ErrorLevel
	switch cfg.LogLevel {
	case "debug":
		logLevel = zerolog.DebugLevel
	case "info":
		logLevel = zerolog.InfoLevel
	case "warn":
		logLevel = zerolog.WarnLevel
	}
	zerolog.SetGlobalLevel(logLevel)

	var logWriter io.Writer
	if cfg.JSONLog {
		logWriter = os.Stderr
	} else {
		logWriter = zerolog.NewConsoleWriter()
	}
	logger := log.Output(logWriter).With().Timestamp().Logger()
	log.Logger = logger

	logger.Debug().
		Str("level", cfg.LogLevel).
		Bool("json", cfg.JSONLog).
		Msg("Logger initialized")

	store, err := report.NewStore(cfg.ReportDir)
	if err != nil {
		return nil, fmt.Errorf("report store: %w", err)
	}
	if err := os.MkdirAll(cfg.ScreenshotDir, 0o755); err != nil {
		return nil, fmt.Errorf("screenshot dir: %w", err)
	}

	retryCfg := classify.DefaultConfig()
	retryCfg.MaxAttempts = cfg.MaxAttempts

	app := &Application{
		Config:    cfg,
		Logger:    &logger,
		Store:     store,
		Resolver:  selector.New(),
		Retry:     classify.NewController(retryCfg),
		Pacer:     pace.NewPacer(cfg.PaceRPS, cfg.PaceBurst),
		startTime: time.Now(),
	}

	logger.Info().Msg("Application initialized successfully")
	return app, nil
}

// BuildRunner assembles the task runner from the enabled sources.
func (a *Application) BuildRunner(events models.EventSink) *runner.Runner {
	cfg := a.Config
	deps := adapter.Deps{
		Resolver: a.Resolver,
		Retry:    a.Retry,
		Pacer:    a.Pacer,
		Shots:    cfg.ScreenshotDir,
		Events:   events,
	}

	var authenticated, isolated []adapter.Adapter
	if cfg.EnableGSC {
		authenticated = append(authenticated, &adapter.GSC{
			Deps:       deps,
			Property:   cfg.GSCProperty,
			BaseURL:    cfg.GSCBaseURL,
			Months:     cfg.GSCMonths,
			CredSite:   config.DefaultGoogleCredSite,
			NavTimeout: cfg.NavTimeout,
			Budget:     cfg.SelectorBudget,
			LoadWait:   cfg.LoadWait,
		})
	}
	if cfg.EnableAnalytics {
		authenticated = append(authenticated, &adapter.Analytics{
			Deps:       deps,
			BaseURL:    cfg.AnalyticsBaseURL,
			NavTimeout: cfg.NavTimeout,
			Budget:     cfg.SelectorBudget,
			LoadWait:   cfg.LoadWait,
		})
	}
	if cfg.EnableSERP {
		isolated = append(isolated, &adapter.SERP{
			Deps:       deps,
			SearchURL:  cfg.SearchURL,
			NavTimeout: cfg.NavTimeout,
			Budget:     cfg.SelectorBudget,
			LoadWait:   cfg.LoadWait,
		})
	}
	if cfg.EnableMetrics {
		isolated = append(isolated, &adapter.Metrics{
			Deps:       deps,
			LoginURL:   cfg.MetricsLoginURL,
			ToolURL:    cfg.MetricsToolURL,
			Database:   cfg.MetricsDatabase,
			CredSite:   config.DefaultMetricsCredSite,
			NavTimeout: cfg.NavTimeout,
			Budget:     cfg.SelectorBudget,
			LoadWait:   cfg.LoadWait,
		})
	}

	visibility := browser.Visibility(cfg.Visibility)
	return &runner.Runner{
		Store:         a.Store,
		Authenticated: authenticated,
		Isolated:      isolated,
		AuthOpts: browser.Options{
			Visibility: visibility,
			ProfileDir: cfg.ProfileDir,
			UserAgent:  cfg.UserAgent,
			ChromePath: cfg.ChromePath,
		},
		IsoOpts: browser.Options{
			Visibility: visibility,
			UserAgent:  cfg.UserAgent,
			ChromePath: cfg.ChromePath,
		},
		Events: events,
	}
}

// Close gracefully shuts down the application.
func (a *Application) Close(ctx context.Context) error {
	a.Logger.Info().
		Dur("uptime", time.Since(a.startTime)).
		Msg("Shutting down application")
	return nil
}
