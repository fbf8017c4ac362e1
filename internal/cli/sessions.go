package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/keywordlab/harvest/internal/auth"
)

// sessionsCmd represents the sessions command
var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Manage saved authentication sessions",
	Long: `List, view, and delete saved authentication sessions.

Sessions contain cookies captured by the login command and are stored
in the OS keyring, with a file fallback for headless environments.`,
	Example: `  # List all saved sessions
  $ harvest sessions list

  # View details of a specific session
  $ harvest sessions view semrush

  # Delete a session
  $ harvest sessions delete semrush`,
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all saved sessions",
	RunE:  runSessionsList,
}

var sessionsViewCmd = &cobra.Command{
	Use:   "view <session-name>",
	Short: "View details of a saved session",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionsView,
}

var sessionsDeleteCmd = &cobra.Command{
	Use:   "delete <session-name>",
	Short: "Delete a saved session",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionsDelete,
}

func init() {
	rootCmd.AddCommand(sessionsCmd)
	sessionsCmd.AddCommand(sessionsListCmd)
	sessionsCmd.AddCommand(sessionsViewCmd)
	sessionsCmd.AddCommand(sessionsDeleteCmd)
}

func runSessionsList(cmd *cobra.Command, args []string) error {
	sessions, err := auth.ListSessions()
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}

	if len(sessions) == 0 {
		fmt.Println("No saved sessions found.")
		fmt.Println("Create one with: harvest login <url> --session=<name>")
		return nil
	}

	fmt.Printf("Saved sessions (%d):\n", len(sessions))
	for i, name := range sessions {
		fmt.Printf("%d. %s", i+1, name)
		if s, err := auth.LoadSession(name); err == nil {
			fmt.Printf(" — %d cookies, saved %s", len(s.Cookies), s.CreatedAt.Format("2006-01-02"))
		} else {
			fmt.Printf(" — %v", err)
		}
		fmt.Println()
	}
	return nil
}

func runSessionsView(cmd *cobra.Command, args []string) error {
	name := args[0]
	s, err := auth.LoadSession(name)
	if err != nil {
		return fmt.Errorf("failed to load session %q: %w", name, err)
	}

	fmt.Printf("Session: %s\n", s.Name)
	fmt.Printf("URL:     %s\n", s.URL)
	fmt.Printf("Saved:   %s\n", s.CreatedAt.Format(time.RFC3339))
	if !s.ExpiresAt.IsZero() {
		fmt.Printf("Expires: %s\n", s.ExpiresAt.Format(time.RFC3339))
	}
	fmt.Printf("Cookies: %d\n", len(s.Cookies))
	for _, c := range s.Cookies {
		fmt.Printf("  %s (domain %s)\n", c.Name, c.Domain)
	}
	return nil
}

func runSessionsDelete(cmd *cobra.Command, args []string) error {
	name := args[0]
	if err := auth.DeleteSession(name); err != nil {
		return fmt.Errorf("failed to delete session %q: %w", name, err)
	}
	fmt.Printf("Session %q deleted\n", name)
	return nil
}
