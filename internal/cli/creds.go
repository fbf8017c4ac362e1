package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/keywordlab/harvest/internal/auth"
)

// credsCmd represents the creds command
var credsCmd = &cobra.Command{
	Use:   "creds",
	Short: "Manage stored site credentials",
	Long: `Store or remove the username/password pairs used for automated logins.

Two sites matter: "google" for the Search Console sign-in and "semrush"
for the keyword tool. Credentials live in the OS keyring, with a file
fallback for headless environments.`,
	Example: `  # Store keyword tool credentials (password prompted)
  $ harvest creds set semrush --username=myuser

  # Remove them
  $ harvest creds delete semrush`,
}

var credsUsername string

var credsSetCmd = &cobra.Command{
	Use:   "set <site>",
	Short: "Store credentials for a site",
	Args:  cobra.ExactArgs(1),
	RunE:  runCredsSet,
}

var credsDeleteCmd = &cobra.Command{
	Use:   "delete <site>",
	Short: "Delete stored credentials for a site",
	Args:  cobra.ExactArgs(1),
	RunE:  runCredsDelete,
}

func init() {
	rootCmd.AddCommand(credsCmd)
	credsCmd.AddCommand(credsSetCmd)
	credsCmd.AddCommand(credsDeleteCmd)

	credsSetCmd.Flags().StringVarP(&credsUsername, "username", "u", "", "Username (prompted if omitted)")
}

func runCredsSet(cmd *cobra.Command, args []string) error {
	site := args[0]

	username := credsUsername
	if username == "" {
		fmt.Print("Username: ")
		reader := bufio.NewReader(os.Stdin)
		line, err := reader.ReadString('\n')
		if err != nil {
			return err
		}
		username = strings.TrimSpace(line)
	}
	if username == "" {
		return fmt.Errorf("username is required")
	}

	fmt.Print("Password: ")
	pw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}

	err = auth.SaveCredentials(auth.Credentials{
		Site:     site,
		Username: username,
		Password: string(pw),
	})
	if err != nil {
		return fmt.Errorf("failed to save credentials: %w", err)
	}
	fmt.Printf("Credentials for %q saved\n", site)
	return nil
}

func runCredsDelete(cmd *cobra.Command, args []string) error {
	site := args[0]
	if err := auth.DeleteCredentials(site); err != nil {
		return fmt.Errorf("failed to delete credentials: %w", err)
	}
	fmt.Printf("Credentials for %q deleted\n", site)
	return nil
}
