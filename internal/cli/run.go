package cli

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/keywordlab/harvest/internal/runner"
	"github.com/keywordlab/harvest/internal/task"
	"github.com/keywordlab/harvest/pkg/models"
)

var taskFile string

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run [url|keyword ...]",
	Short: "Run the collection pipeline for a list of pages or keywords",
	Long: `Runs every enabled source for each input and upserts the results into
per-page Markdown reports. Inputs are page URLs by default; pass
--keywords to treat them as search keywords instead.

Inputs can be given as arguments or read from a file with one entry
per line (blank lines and #-comments are skipped).`,
	Example: `  # One page, all sources
  $ harvest run https://www.example.com/guides/spotify-premium-apk.html --gsc-property=sc-domain:example.com

  # A batch from a file, search signals only
  $ harvest run --file=pages.txt --gsc=false --analytics=false --metrics=false

  # Keywords instead of URLs
  $ harvest run "spotify premium apk" --keywords --gsc=false`,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVarP(&taskFile, "file", "f", "", "File with one URL or keyword per line")
}

func runRun(cmd *cobra.Command, args []string) error {
	a := GetApp()
	cfg := a.Config

	var tasks []models.Task
	if taskFile != "" {
		loaded, err := task.LoadFile(taskFile, cfg.KeywordMode)
		if err != nil {
			return err
		}
		tasks = loaded
	}
	for _, arg := range args {
		t, err := task.Parse(arg, cfg.KeywordMode)
		if err != nil {
			return err
		}
		tasks = append(tasks, t)
	}
	if len(tasks) == 0 {
		return fmt.Errorf("no inputs: pass URLs/keywords as arguments or use --file")
	}
	if cfg.EnableGSC && cfg.GSCProperty == "" {
		return fmt.Errorf("--gsc-property is required when the gsc source is enabled (or pass --gsc=false)")
	}

	log.Info().Int("tasks", len(tasks)).Msg("Starting run")
	r := a.BuildRunner(runner.NewProgressSink())
	if err := r.Run(cmd.Context(), tasks); err != nil {
		return fmt.Errorf("run aborted: %w", err)
	}

	fmt.Printf("\nDone. Reports in %s, screenshots in %s\n", cfg.ReportDir, cfg.ScreenshotDir)
	return nil
}
