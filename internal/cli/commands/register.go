package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/MADANW/MuhsinAI/internal/cli/client"
	"github.com/MADANW/MuhsinAI/internal/cli/session"
	"github.com/MADANW/MuhsinAI/internal/cli/ui"
)

var (
	registerEmail string
)

// registerCmd is the register command
var registerCmd = &cobra.Command{
	Use:   "register [server]",
	Short: "create a new MuhsinAI account",
	Long: `Create a new MuhsinAI account on the given server.

Passwords must be between 8 and 100 characters. A successful registration
signs you in immediately.

If server is not provided, defaults to http://localhost:8080.`,
	Example: `  # Register on the default server
  $ muhsinctl register

  # Register on a custom server
  $ muhsinctl register http://api.example.com:8080`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRegister,
}

func init() {
	registerCmd.Flags().StringVarP(&registerEmail, "email", "e", "", "Email for the new account")
	registerCmd.SilenceUsage = true
}

func runRegister(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	server := "http://localhost:8080"
	if len(args) > 0 {
		server = args[0]
	}

	email := registerEmail
	if email == "" {
		prompt := &survey.Input{
			Message: "Email:",
		}
		if err := survey.AskOne(prompt, &email, survey.WithValidator(survey.Required)); err != nil {
			ui.PrintError("failed to read email: %v", err)
			return fmt.Errorf("input failed")
		}
	}

	var password string
	if err := survey.AskOne(&survey.Password{
		Message: "Password (8-100 characters):",
	}, &password, survey.WithValidator(survey.Required)); err != nil {
		ui.PrintError("failed to read password: %v", err)
		return fmt.Errorf("input failed")
	}

	var confirm string
	if err := survey.AskOne(&survey.Password{
		Message: "Confirm password:",
	}, &confirm, survey.WithValidator(survey.Required)); err != nil {
		ui.PrintError("failed to read password: %v", err)
		return fmt.Errorf("input failed")
	}
	if password != confirm {
		ui.PrintError("passwords do not match")
		return fmt.Errorf("input failed")
	}

	apiClient, err := client.NewAPIClient(server, "")
	if err != nil {
		ui.PrintError("failed to create client: %v", err)
		return fmt.Errorf("client creation failed")
	}

	ui.PrintInfo("Connecting to %s...", server)

	user, err := apiClient.Register(ctx, email, password)
	if err != nil {
		ui.PrintErrorBox("Registration Failed", err.Error())
		return fmt.Errorf("registration failed")
	}

	successContent := fmt.Sprintf(`Email:    %s
User ID:  %s`,
		user.Email,
		user.ID,
	)
	ui.PrintSuccessBox("✓ Account Created", successContent)

	// Sign in right away so a fresh registration ends authenticated.
	data, err := apiClient.Login(ctx, email, password)
	if err != nil {
		ui.PrintWarning("automatic login failed: %v", err)
		ui.PrintInfo("Run 'muhsinctl login %s' to sign in.", server)
		return nil
	}

	sess := session.NewManager()
	if err := sess.Load(); err != nil {
		ui.PrintWarning("stored credentials unreadable: %v", err)
	}
	if err := sess.Login(server, data); err != nil {
		ui.PrintWarning("failed to save credentials: %v", err)
		ui.PrintInfo("Run 'muhsinctl login %s' to sign in.", server)
		return nil
	}

	fmt.Println()
	ui.PrintInfo("Logged in. Run 'muhsinctl chat' to get started.")

	return nil
}
