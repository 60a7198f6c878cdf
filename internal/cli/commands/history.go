package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/MADANW/MuhsinAI/internal/cli/client"
	"github.com/MADANW/MuhsinAI/internal/cli/types"
	"github.com/MADANW/MuhsinAI/internal/cli/ui"
)

var (
	historyPage     int
	historyPageSize int
)

// historyCmd is the history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "browse past exchanges",
	Long: `List your past exchanges, newest first.

Each entry shows the exchange ID, when it happened, the prompt and whether
the reply carried a structured schedule. Use --page to go further back.`,
	Example: `  # Latest exchanges
  $ muhsinctl history

  # Older pages, larger page size
  $ muhsinctl history --page 3 --page-size 50

  # Show one exchange in full
  $ muhsinctl history show 3f8a...

  # Delete one exchange
  $ muhsinctl history delete 3f8a...`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

// historyShowCmd shows one exchange in full
var historyShowCmd = &cobra.Command{
	Use:   "show <exchange-id>",
	Short: "show one exchange in full",
	Long: `Show one exchange in full: the prompt, the reply and every event of the
schedule when the reply carried one. Someone else's exchange reports
forbidden, a missing one not found.`,
	Args: cobra.ExactArgs(1),
	RunE: runHistoryShow,
}

// historyDeleteCmd deletes one exchange
var historyDeleteCmd = &cobra.Command{
	Use:   "delete <exchange-id>",
	Short: "delete one exchange",
	Long: `Delete one exchange from your history. Someone else's exchange reports
forbidden, a missing one not found.`,
	Args: cobra.ExactArgs(1),
	RunE: runHistoryDelete,
}

func init() {
	historyCmd.Flags().IntVar(&historyPage, "page", 1, "Page number, 1 is the newest")
	historyCmd.Flags().IntVar(&historyPageSize, "page-size", 20, "Exchanges per page (max 100)")
	historyCmd.SilenceUsage = true

	historyShowCmd.SilenceUsage = true
	historyCmd.AddCommand(historyShowCmd)

	historyDeleteCmd.SilenceUsage = true
	historyCmd.AddCommand(historyDeleteCmd)
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	sess, apiClient, err := requireSession()
	if err != nil {
		return err
	}

	id := strings.TrimSpace(args[0])
	ex, err := apiClient.GetExchange(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, client.ErrNotFound):
			ui.PrintError("exchange %s not found", id)
		case errors.Is(err, client.ErrForbidden):
			ui.PrintError("exchange %s belongs to another user", id)
		default:
			reportRequestError(sess, "fetch exchange", err)
		}
		return fmt.Errorf("show failed")
	}

	ui.PrintBold("Exchange %s", ex.ID)
	fmt.Printf("At:      %s\n", ex.CreatedAt)
	fmt.Printf("Prompt:  %s\n", ex.Prompt)
	fmt.Printf("Reply:   %s\n", ex.Message)

	if ex.Schedule != nil {
		fmt.Println()
		header := ex.Schedule.Type + " schedule"
		if ex.Schedule.DateRange != nil {
			header += fmt.Sprintf("  %s to %s", ex.Schedule.DateRange.StartDate, ex.Schedule.DateRange.EndDate)
		}
		ui.PrintBold("%s", header)
		for _, ev := range ex.Schedule.Events {
			fmt.Printf("  %s  %s-%s  %s  [%s/%s]\n",
				ev.Date, ev.StartTime, ev.EndTime, ev.Title, ev.Category, ev.Priority)
			if ev.Description != "" {
				fmt.Printf("      %s\n", ev.Description)
			}
		}
		for _, s := range ex.Schedule.Suggestions {
			fmt.Printf("  tip: %s\n", s)
		}
	}

	return nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	sess, apiClient, err := requireSession()
	if err != nil {
		return err
	}

	page, err := apiClient.History(ctx, historyPage, historyPageSize)
	if err != nil {
		reportRequestError(sess, "fetch history", err)
		return fmt.Errorf("history fetch failed")
	}

	if len(page.Items) == 0 {
		if page.TotalCount == 0 {
			ui.PrintInfo("No exchanges yet. Run 'muhsinctl chat' to create one.")
		} else {
			ui.PrintInfo("Page %d is past the end (%d exchanges total).", page.Page, page.TotalCount)
		}
		return nil
	}

	ui.PrintBold("Page %d • %d of %d exchanges", page.Page, len(page.Items), page.TotalCount)
	fmt.Println()

	for _, ex := range page.Items {
		printHistoryEntry(ex)
	}

	totalPages := (page.TotalCount + page.PageSize - 1) / page.PageSize
	if page.Page < totalPages {
		fmt.Println()
		ui.PrintInfo("More history: muhsinctl history --page %d", page.Page+1)
	}

	return nil
}

// printHistoryEntry prints one exchange as a two-line summary.
func printHistoryEntry(ex types.Exchange) {
	marker := "  "
	if ex.Schedule != nil {
		marker = "📅"
	}
	fmt.Printf("%s %s  %s\n", marker, ex.ID, ex.CreatedAt)
	fmt.Printf("   %s\n", truncate(ex.Prompt, 76))
	if ex.Schedule != nil {
		fmt.Printf("   %d event(s), %s schedule\n", len(ex.Schedule.Events), ex.Schedule.Type)
	}
	fmt.Println()
}

func runHistoryDelete(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	sess, apiClient, err := requireSession()
	if err != nil {
		return err
	}

	id := strings.TrimSpace(args[0])
	if err := apiClient.DeleteExchange(ctx, id); err != nil {
		switch {
		case errors.Is(err, client.ErrNotFound):
			ui.PrintError("exchange %s not found", id)
		case errors.Is(err, client.ErrForbidden):
			ui.PrintError("exchange %s belongs to another user", id)
		default:
			reportRequestError(sess, "delete exchange", err)
		}
		return fmt.Errorf("delete failed")
	}

	ui.PrintSuccess("Deleted exchange %s", id)
	return nil
}

// truncate shortens s to max runes with an ellipsis.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
