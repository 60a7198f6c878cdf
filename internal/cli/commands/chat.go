package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/MADANW/MuhsinAI/internal/cli/tui"
	"github.com/MADANW/MuhsinAI/internal/cli/ui"
)

// chatCmd is the chat command
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "start interactive scheduling chat",
	Long: `Start an interactive chat session with the scheduling assistant.

Describe what you need to plan in plain language. Replies that contain a
structured schedule are rendered as an event list; plain conversational
replies are shown as text. Your previous exchanges are loaded so the
conversation picks up where it left off.`,
	Example: `  # Start interactive chat
  $ muhsinctl chat

  # Keyboard controls:
  • Enter sends the prompt
  • PgUp at the top loads earlier exchanges
  • Ctrl+X deletes the latest exchange
  • Esc quits`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	chatCmd.SilenceUsage = true
}

func runChat(cmd *cobra.Command, args []string) error {
	sess, apiClient, err := requireSession()
	if err != nil {
		return err
	}

	// Settle the optimistic session while the TUI starts. A failed
	// verification drops the session to anonymous, so in-flight work is
	// discarded and the next request surfaces the expiry.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		_ = sess.Verify(ctx, apiClient)
	}()

	ui.PrintChatWelcomeBanner()

	program := tui.NewChatProgram(apiClient, sess)
	if err := program.Run(); err != nil {
		return fmt.Errorf("failed to run chat TUI: %w", err)
	}

	if err := sess.RequireAuth(); err != nil {
		ui.PrintError("session expired, credentials cleared")
		fmt.Println("\nRun 'muhsinctl login' to authenticate.")
		return fmt.Errorf("session expired")
	}

	return nil
}
