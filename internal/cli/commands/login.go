package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/MADANW/MuhsinAI/internal/cli/client"
	"github.com/MADANW/MuhsinAI/internal/cli/config"
	"github.com/MADANW/MuhsinAI/internal/cli/session"
	"github.com/MADANW/MuhsinAI/internal/cli/ui"
)

var (
	loginEmail string
)

// loginCmd is the login command
var loginCmd = &cobra.Command{
	Use:   "login [server]",
	Short: "authenticate with the MuhsinAI server",
	Long: `Authenticate with the MuhsinAI server and save credentials locally.

Your authentication token will be stored in ~/.muhsinctl/config.json and used
automatically for all subsequent commands. The token remains valid until
it expires or you login again.

If server is not provided, defaults to http://localhost:8080.`,
	Example: `  # Login to default server (localhost:8080)
  $ muhsinctl login

  # Login to custom server
  $ muhsinctl login http://api.example.com:8080

  # Login with email (will prompt for password)
  $ muhsinctl login -e you@example.com`,
	Args: cobra.MaximumNArgs(1), // Allow 0 or 1 server argument
	RunE: runLogin,
}

func init() {
	loginCmd.Flags().StringVarP(&loginEmail, "email", "e", "", "Email for authentication")

	// Silence usage to avoid showing help on every error
	loginCmd.SilenceUsage = true
}

func runLogin(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	loginServer := "http://localhost:8080"
	if len(args) > 0 {
		loginServer = args[0]
	}

	email, password, err := promptCredentials(loginEmail)
	if err != nil {
		return err
	}

	apiClient, err := client.NewAPIClient(loginServer, "")
	if err != nil {
		ui.PrintError("failed to create client: %v", err)
		return fmt.Errorf("client creation failed")
	}

	ui.PrintInfo("Connecting to %s...", loginServer)

	data, err := apiClient.Login(ctx, email, password)
	if err != nil {
		ui.PrintErrorBox("Login Failed", err.Error())
		return fmt.Errorf("authentication failed")
	}

	sess := session.NewManager()
	if err := sess.Load(); err != nil {
		// A broken config file gets overwritten by the fresh login.
		ui.PrintWarning("stored credentials unreadable: %v", err)
	}
	if err := sess.Login(loginServer, data); err != nil {
		ui.PrintError("failed to save credentials: %v", err)
		return fmt.Errorf("config save failed")
	}

	configPath, _ := config.GetConfigPath()
	successContent := fmt.Sprintf(`Email:          %s
User ID:        %s
Token expires:  %s
Config saved:   %s`,
		data.User.Email,
		data.User.ID,
		data.Expire,
		configPath,
	)

	ui.PrintSuccessBox("✓ Login Successful", successContent)

	fmt.Println()
	ui.PrintInfo("You can now use the following commands:")
	ui.PrintBold("  muhsinctl chat      # Start interactive scheduling chat")
	ui.PrintBold("  muhsinctl history   # Browse past exchanges")

	return nil
}

// promptCredentials asks for the email (unless preset) and the password.
func promptCredentials(presetEmail string) (string, string, error) {
	email := presetEmail
	if email == "" {
		prompt := &survey.Input{
			Message: "Email:",
		}
		if err := survey.AskOne(prompt, &email, survey.WithValidator(survey.Required)); err != nil {
			ui.PrintError("failed to read email: %v", err)
			return "", "", fmt.Errorf("input failed")
		}
	}

	var password string
	prompt := &survey.Password{
		Message: "Password:",
	}
	if err := survey.AskOne(prompt, &password, survey.WithValidator(survey.Required)); err != nil {
		ui.PrintError("failed to read password: %v", err)
		return "", "", fmt.Errorf("input failed")
	}

	return email, password, nil
}
