package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/MADANW/MuhsinAI/internal/cli/ui"
)

// whoamiCmd is the whoami command
var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "show the current session",
	Long: `Show who you are logged in as and verify the stored token against the
server. A token the server rejects is removed.`,
	Args: cobra.NoArgs,
	RunE: runWhoami,
}

func init() {
	whoamiCmd.SilenceUsage = true
}

func runWhoami(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	sess, apiClient, err := requireSession()
	if err != nil {
		return err
	}

	if err := sess.Verify(ctx, apiClient); err != nil {
		ui.PrintError("%v", err)
		return fmt.Errorf("session verification failed")
	}

	user := sess.User()
	ui.PrintBold("Email:    %s", user.Email)
	ui.PrintBold("User ID:  %s", user.ID)
	fmt.Printf("Server:   %s\n", sess.Server())
	if user.LastLoginAt != nil {
		fmt.Printf("Last login: %s\n", *user.LastLoginAt)
	}

	return nil
}
