package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.LogLevel != DefaultLogLevel {
		t.Errorf("LogLevel = %q", cfg.LogLevel)
	}
	if cfg.Visibility != DefaultVisibility {
		t.Errorf("Visibility = %q", cfg.Visibility)
	}
	if !cfg.EnableGSC || !cfg.EnableAnalytics || !cfg.EnableSERP || !cfg.EnableMetrics {
		t.Error("all sources should default to enabled")
	}
	if cfg.MaxAttempts != DefaultMaxAttempts {
		t.Errorf("MaxAttempts = %d", cfg.MaxAttempts)
	}
	if cfg.NavTimeout != DefaultNavTimeout {
		t.Errorf("NavTimeout = %v", cfg.NavTimeout)
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "harvest.yaml")
	yaml := `
log_level: debug
visibility: headless
report_dir: out/reports
gsc_property: "sc-domain:example.com"
nav_timeout: 90s
pace_rps: 0.25
`
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("HARVEST_CONFIG", path)

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q", cfg.LogLevel)
	}
	if cfg.Visibility != "headless" {
		t.Errorf("Visibility = %q", cfg.Visibility)
	}
	if cfg.ReportDir != "out/reports" {
		t.Errorf("ReportDir = %q", cfg.ReportDir)
	}
	if cfg.GSCProperty != "sc-domain:example.com" {
		t.Errorf("GSCProperty = %q", cfg.GSCProperty)
	}
	if cfg.NavTimeout != 90*time.Second {
		t.Errorf("NavTimeout = %v", cfg.NavTimeout)
	}
	if cfg.PaceRPS != 0.25 {
		t.Errorf("PaceRPS = %v", cfg.PaceRPS)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "harvest.yaml")
	if err := os.WriteFile(path, []byte("profile_dir: from-file\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("HARVEST_CONFIG", path)
	t.Setenv("HARVEST_PROFILE_DIR", "from-env")

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.ProfileDir != "from-env" {
		t.Errorf("ProfileDir = %q, env must override the file", cfg.ProfileDir)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	base := func() *Config {
		cfg, err := Load(nil)
		if err != nil {
			t.Fatal(err)
		}
		return cfg
	}

	cfg := base()
	cfg.Visibility = "invisible"
	if err := validate(cfg); err == nil {
		t.Error("bad visibility must fail validation")
	}

	cfg = base()
	cfg.MaxAttempts = 0
	if err := validate(cfg); err == nil {
		t.Error("zero max attempts must fail validation")
	}

	cfg = base()
	cfg.PaceRPS = -1
	if err := validate(cfg); err == nil {
		t.Error("negative pace must fail validation")
	}
}
