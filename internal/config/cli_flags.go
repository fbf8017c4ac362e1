package config

import "github.com/spf13/cobra"

// RegisterFlags registers common CLI flags on the provided root command
func RegisterFlags(cmd *cobra.Command) {
	if cmd == nil {
		return
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().BoolP("quiet", "q", false, "Suppress all output except errors")
	cmd.PersistentFlags().Bool("json", false, "Emit logs in JSON format")
	cmd.PersistentFlags().String("config", "", "Path to YAML configuration file (optional)")
	cmd.PersistentFlags().String("visibility", DefaultVisibility, "Browser visibility: headless, hidden, or visible")
	cmd.PersistentFlags().String("profile-dir", "", "Chrome profile directory for authenticated sessions")
	cmd.PersistentFlags().String("report-dir", DefaultReportDir, "Directory for Markdown reports")
	cmd.PersistentFlags().String("screenshot-dir", DefaultScreenshotDir, "Directory for captured screenshots")
	cmd.PersistentFlags().String("user-agent", "", "Custom user agent string (default: randomized)")
	cmd.PersistentFlags().String("gsc-property", "", "Search Console property resource id (e.g. sc-domain:example.com)")
	cmd.PersistentFlags().String("nav-timeout", DefaultNavTimeout.String(), "Hard timeout for page navigation")
	cmd.PersistentFlags().Bool("gsc", true, "Collect Search Console performance data")
	cmd.PersistentFlags().Bool("analytics", true, "Collect traffic overview data")
	cmd.PersistentFlags().Bool("serp", true, "Collect search suggestions, related questions and related searches")
	cmd.PersistentFlags().Bool("metrics", true, "Collect keyword volume and difficulty data")
	cmd.PersistentFlags().Bool("keywords", false, "Treat inputs as keywords instead of page URLs")
}
