package cli

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/keywordlab/harvest/internal/auth"
)

var (
	sessionName  string
	waitSelector string
	loginTimeout string
)

// loginCmd represents the login command
var loginCmd = &cobra.Command{
	Use:   "login <url>",
	Short: "Interactively log in to a site and save the session",
	Long: `Opens a visible browser window for you to manually log in to a site.
After successful login, cookies are extracted and securely stored in
your OS keyring.

The stored session can then be restored by the collection pipeline to
access authenticated reports without logging in again.`,
	Example: `  # Log in to the keyword tool and save as "semrush"
  $ harvest login https://tool.seotools8.com/#/login --session=semrush --wait=".q-bar"

  # Log in without waiting for a specific element (confirm with Enter)
  $ harvest login https://accounts.google.com --session=google`,
	Args: cobra.ExactArgs(1),
	RunE: runLogin,
}

func init() {
	rootCmd.AddCommand(loginCmd)

	loginCmd.Flags().StringVarP(&sessionName, "session", "s", "", "Session name to save (required)")
	loginCmd.Flags().StringVarP(&waitSelector, "wait", "w", "", "CSS selector that appears once logged in")
	loginCmd.Flags().StringVar(&loginTimeout, "login-timeout", "5m", "Timeout for the login process")
	loginCmd.MarkFlagRequired("session")
}

func runLogin(cmd *cobra.Command, args []string) error {
	url := args[0]

	timeout, err := time.ParseDuration(loginTimeout)
	if err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}

	log.Info().Str("url", url).Str("session", sessionName).Msg("Initiating login")

	session, err := auth.InteractiveLogin(cmd.Context(), auth.LoginOptions{
		SessionName:  sessionName,
		URL:          url,
		WaitSelector: waitSelector,
		Timeout:      timeout,
	})
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	fmt.Printf("\nSession %q saved (%d cookies", session.Name, len(session.Cookies))
	if !session.ExpiresAt.IsZero() {
		fmt.Printf(", expires %s", session.ExpiresAt.Format("2006-01-02"))
	}
	fmt.Println(")")
	return nil
}
