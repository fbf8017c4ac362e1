package config

import "time"

// Default constants for application configuration.
const (
	DefaultLogLevel       = "info"
	DefaultJSONLog        = false
	DefaultVisibility     = "hidden"
	DefaultReportDir      = "reports"
	DefaultScreenshotDir  = "screenshots"
	DefaultNavTimeout     = 60 * time.Second
	DefaultSelectorBudget = 30 * time.Second
	DefaultLoadWait       = 8 * time.Second
	DefaultMaxAttempts    = 3
	DefaultPaceRPS        = 0.5
	DefaultPaceBurst      = 2

	DefaultSearchURL        = "https://www.google.com"
	DefaultGSCBaseURL       = "https://search.google.com/search-console/performance/search-analytics"
	DefaultGSCMonths        = 3
	DefaultMetricsLoginURL  = "https://tool.seotools8.com/#/login"
	DefaultMetricsToolURL   = "https://tool-sem.seotools8.com/analytics/keywordmagic/"
	DefaultMetricsDatabase  = "us"
	DefaultGoogleCredSite   = "google"
	DefaultMetricsCredSite  = "semrush"
	DefaultAnalyticsBaseURL = "https://analytics.google.com/analytics/web/"
)
