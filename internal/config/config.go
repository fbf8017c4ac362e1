package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Config holds application configuration values
type Config struct {
	// Logging
	LogLevel string `yaml:"log_level"`
	JSONLog  bool   `yaml:"json_log"`

	// Browser
	Visibility string `yaml:"visibility"` // headless | hidden | visible
	ProfileDir string `yaml:"profile_dir"`
	ChromePath string `yaml:"chrome_path"`
	UserAgent  string `yaml:"user_agent"`

	// Output
	ReportDir     string `yaml:"report_dir"`
	ScreenshotDir string `yaml:"screenshot_dir"`

	// Sources
	EnableGSC       bool `yaml:"enable_gsc"`
	EnableAnalytics bool `yaml:"enable_analytics"`
	EnableSERP      bool `yaml:"enable_serp"`
	EnableMetrics   bool `yaml:"enable_metrics"`

	// Task interpretation
	KeywordMode bool `yaml:"keyword_mode"`

	// Site endpoints
	SearchURL        string `yaml:"search_url"`
	GSCProperty      string `yaml:"gsc_property"`
	GSCBaseURL       string `yaml:"gsc_base_url"`
	GSCMonths        int    `yaml:"gsc_months"`
	AnalyticsBaseURL string `yaml:"analytics_base_url"`
	MetricsLoginURL  string `yaml:"metrics_login_url"`
	MetricsToolURL   string `yaml:"metrics_tool_url"`
	MetricsDatabase  string `yaml:"metrics_database"`

	// Timing
	NavTimeout     time.Duration `yaml:"nav_timeout"`
	SelectorBudget time.Duration `yaml:"selector_budget"`
	LoadWait       time.Duration `yaml:"load_wait"`
	MaxAttempts    int           `yaml:"max_attempts"`
	PaceRPS        float64       `yaml:"pace_rps"`
	PaceBurst      int           `yaml:"pace_burst"`
}

// Load builds a Config by combining defaults, an optional YAML config file,
// environment variables, and CLI flags, in that order of precedence.
// Caller should pass the root *cobra.Command so flags can be read.
func Load(cmd *cobra.Command) (*Config, error) {
	cfg := &Config{
		LogLevel:         DefaultLogLevel,
		JSONLog:          DefaultJSONLog,
		Visibility:       DefaultVisibility,
		ReportDir:        DefaultReportDir,
		ScreenshotDir:    DefaultScreenshotDir,
		EnableGSC:        true,
		EnableAnalytics:  true,
		EnableSERP:       true,
		EnableMetrics:    true,
		SearchURL:        DefaultSearchURL,
		GSCBaseURL:       DefaultGSCBaseURL,
		GSCMonths:        DefaultGSCMonths,
		AnalyticsBaseURL: DefaultAnalyticsBaseURL,
		MetricsLoginURL:  DefaultMetricsLoginURL,
		MetricsToolURL:   DefaultMetricsToolURL,
		MetricsDatabase:  DefaultMetricsDatabase,
		NavTimeout:       DefaultNavTimeout,
		SelectorBudget:   DefaultSelectorBudget,
		LoadWait:         DefaultLoadWait,
		MaxAttempts:      DefaultMaxAttempts,
		PaceRPS:          DefaultPaceRPS,
		PaceBurst:        DefaultPaceBurst,
	}

	// Config file, if named via flag or env.
	path := ""
	if cmd != nil {
		if f := cmd.Flags().Lookup("config"); f != nil {
			path = f.Value.String()
		}
	}
	if path == "" {
		path = os.Getenv("HARVEST_CONFIG")
	}
	if path != "" {
		if err := loadFile(cfg, path); err != nil {
			return nil, err
		}
	}

	applyEnv(cfg)

	// Read CLI flags if provided
	if cmd != nil {
		applyFlags(cfg, cmd)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func loadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("HARVEST_USER_AGENT"); v != "" {
		cfg.UserAgent = v
	}
	if v := os.Getenv("HARVEST_CHROME_PATH"); v != "" {
		cfg.ChromePath = v
	}
	if v := os.Getenv("HARVEST_PROFILE_DIR"); v != "" {
		cfg.ProfileDir = v
	}
	if v := os.Getenv("HARVEST_REPORT_DIR"); v != "" {
		cfg.ReportDir = v
	}
	if v := os.Getenv("HARVEST_GSC_PROPERTY"); v != "" {
		cfg.GSCProperty = v
	}
	if v := os.Getenv("HARVEST_VISIBILITY"); v != "" {
		cfg.Visibility = v
	}
	if v := os.Getenv("HARVEST_MAX_ATTEMPTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxAttempts = n
		}
	}
}

func applyFlags(cfg *Config, cmd *cobra.Command) {
	stringFlag := func(name string, dst *string) {
		if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
			*dst = f.Value.String()
		}
	}
	boolFlag := func(name string, dst *bool) {
		if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
			*dst = f.Value.String() == "true"
		}
	}

	stringFlag("visibility", &cfg.Visibility)
	stringFlag("profile-dir", &cfg.ProfileDir)
	stringFlag("report-dir", &cfg.ReportDir)
	stringFlag("screenshot-dir", &cfg.ScreenshotDir)
	stringFlag("user-agent", &cfg.UserAgent)
	stringFlag("gsc-property", &cfg.GSCProperty)
	boolFlag("gsc", &cfg.EnableGSC)
	boolFlag("analytics", &cfg.EnableAnalytics)
	boolFlag("serp", &cfg.EnableSERP)
	boolFlag("metrics", &cfg.EnableMetrics)
	boolFlag("keywords", &cfg.KeywordMode)
	boolFlag("json", &cfg.JSONLog)

	if f := cmd.Flags().Lookup("nav-timeout"); f != nil && f.Changed {
		if d, err := time.ParseDuration(f.Value.String()); err == nil {
			cfg.NavTimeout = d
		}
	}
	if f := cmd.Flags().Lookup("verbose"); f != nil && f.Value.String() == "true" {
		cfg.LogLevel = "debug"
	}
	if f := cmd.Flags().Lookup("quiet"); f != nil && f.Value.String() == "true" {
		cfg.LogLevel = "error"
	}
}
