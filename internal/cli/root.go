package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/keywordlab/harvest/internal/app"
	"github.com/keywordlab/harvest/internal/config"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:     "harvest",
	Short:   "Collect SEO research signals into per-page Markdown reports",
	Long: `Harvest drives a real browser against Search Console, the analytics
console, the search results page and a keyword research tool, and
consolidates what it finds into one Markdown report per page or keyword.`,
	Version: "0.1.0",
}

// ExecuteContext runs the root command with the given context. This is
// called by main.main(); the context carries the interrupt signal.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	config.RegisterFlags(rootCmd)

	// Initialize the application before running commands; -h/help never
	// gets here so no resources are touched for it.
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if GetApp() != nil {
			return nil
		}
		cfg, err := config.Load(rootCmd)
		if err != nil {
			return err
		}
		a, err := app.New(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		SetApp(a)
		return nil
	}

	rootCmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		a := GetApp()
		if a == nil {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = a.Close(ctx)
		SetApp(nil)
	}
}
