package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MADANW/MuhsinAI/internal/cli/client"
	"github.com/MADANW/MuhsinAI/internal/cli/session"
	"github.com/MADANW/MuhsinAI/internal/cli/ui"
)

const version = "0.1.0"

// rootCmd is the root command
var rootCmd = &cobra.Command{
	Use:     "muhsinctl",
	Short:   "MuhsinAI scheduling assistant CLI",
	Version: version,
	Long: `A command-line client for the MuhsinAI scheduling assistant. Describe what
you need to plan in plain language and get back a structured schedule, browse
and manage your past exchanges, and check the assistant's availability.`,
	Example: `  # Create an account and sign in
  $ muhsinctl register
  $ muhsinctl login http://localhost:8080

  # Start interactive scheduling chat
  $ muhsinctl chat

  # Browse past exchanges
  $ muhsinctl history

  # Check who you are logged in as
  $ muhsinctl whoami`,
}

// Execute executes the root command
func Execute() error {
	rootCmd.SetVersionTemplate(formatVersion())
	return rootCmd.Execute()
}

func init() {
	// Disable default completion command
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	// Add subcommands
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(probeCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(accountCmd)

	// Set custom template with bold uppercase headers
	rootCmd.SetUsageTemplate(usageTemplate())
	rootCmd.SetHelpTemplate(usageTemplate())
}

func usageTemplate() string {
	return `{{if .Long}}{{.Long}}

{{end}}` + ui.Styles.Bold.Render("USAGE") + `
  {{.UseLine}}{{if .HasAvailableSubCommands}}
  {{.CommandPath}} [command]{{end}}

{{if .HasExample}}` + ui.Styles.Bold.Render("EXAMPLES") + `
{{.Example}}

{{end}}{{if .HasAvailableSubCommands}}` + ui.Styles.Bold.Render("COMMANDS") + `{{range .Commands}}{{if (or .IsAvailableCommand (eq .Name "help"))}}
  {{rpad .Name .NamePadding }} {{.Short}}{{end}}{{end}}

{{end}}{{if .HasAvailableLocalFlags}}` + ui.Styles.Bold.Render("OPTIONS") + `
{{.LocalFlags.FlagUsages | trimTrailingWhitespaces}}

{{end}}{{if .HasAvailableSubCommands}}Use "{{.CommandPath}} [command] --help" for more information about a command.{{end}}
`
}

// formatVersion formats the version output
func formatVersion() string {
	return fmt.Sprintf("muhsinctl version %s\n", version)
}

// loadSession loads stored credentials and builds a client for them. The
// session may still be anonymous; callers gate on RequireAuth themselves.
func loadSession() (*session.Manager, *client.APIClient, error) {
	sess := session.NewManager()
	if err := sess.Load(); err != nil {
		ui.PrintWarning("stored credentials unreadable: %v", err)
	}

	apiClient, err := client.NewAPIClient(sess.Server(), sess.Token())
	if err != nil {
		ui.PrintError("failed to create client: %v", err)
		return nil, nil, fmt.Errorf("client creation failed")
	}
	return sess, apiClient, nil
}

// requireSession is loadSession plus the authentication gate.
func requireSession() (*session.Manager, *client.APIClient, error) {
	sess, apiClient, err := loadSession()
	if err != nil {
		return nil, nil, err
	}
	if err := sess.RequireAuth(); err != nil {
		ui.PrintError("%v", err)
		fmt.Println("\nRun 'muhsinctl login' to authenticate.")
		return nil, nil, fmt.Errorf("authentication required")
	}
	return sess, apiClient, nil
}

// reportRequestError prints a request failure. When the server rejected the
// token, the stored credentials are dropped so the next command starts
// anonymous instead of retrying a dead session.
func reportRequestError(sess *session.Manager, action string, err error) {
	if sess.HandleUnauthorized(err) {
		ui.PrintError("session expired, credentials cleared")
		fmt.Println("\nRun 'muhsinctl login' to authenticate.")
		return
	}
	ui.PrintError("failed to %s: %v", action, err)
}
