package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/MADANW/MuhsinAI/internal/cli/session"
	"github.com/MADANW/MuhsinAI/internal/cli/ui"
)

// logoutCmd is the logout command
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "clear stored credentials",
	Long: `Log out of the MuhsinAI server and clear stored credentials.

The server is told about the logout on a best-effort basis; the local token
is removed even when the server cannot be reached.`,
	Args: cobra.NoArgs,
	RunE: runLogout,
}

func init() {
	logoutCmd.SilenceUsage = true
}

func runLogout(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	sess, apiClient, err := loadSession()
	if err != nil {
		return err
	}

	if sess.State() != session.StateAuthenticated {
		ui.PrintInfo("Not logged in.")
		return nil
	}

	if err := sess.Logout(ctx, apiClient); err != nil {
		ui.PrintError("failed to log out: %v", err)
		return fmt.Errorf("logout failed")
	}

	ui.PrintSuccess("Logged out.")
	return nil
}
