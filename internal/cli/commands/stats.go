package commands

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/MADANW/MuhsinAI/internal/cli/ui"
)

// statsCmd is the stats command
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "show your scheduling activity",
	Long: `Summarize your scheduling activity: how many exchanges you have had, how
many produced schedules, and which categories your events fall into.`,
	Args: cobra.NoArgs,
	RunE: runStats,
}

func init() {
	statsCmd.SilenceUsage = true
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	sess, apiClient, err := requireSession()
	if err != nil {
		return err
	}

	stats, err := apiClient.Stats(ctx)
	if err != nil {
		reportRequestError(sess, "fetch stats", err)
		return fmt.Errorf("stats fetch failed")
	}

	if stats.TotalExchanges == 0 {
		ui.PrintInfo("No activity yet. Run 'muhsinctl chat' to get started.")
		return nil
	}

	ui.PrintBold("Scheduling activity")
	fmt.Println()
	fmt.Printf("Exchanges:           %d\n", stats.TotalExchanges)
	fmt.Printf("Schedules created:   %d\n", stats.TotalSchedules)
	if stats.TotalSchedules > 0 {
		fmt.Printf("Avg events/schedule: %.1f\n", stats.AvgEventsPerSched)
	}
	if stats.FirstExchangeAt != nil {
		fmt.Printf("First exchange:      %s\n", *stats.FirstExchangeAt)
	}
	if stats.LastExchangeAt != nil {
		fmt.Printf("Latest exchange:     %s\n", *stats.LastExchangeAt)
	}

	if len(stats.CategoryUsage) > 0 {
		fmt.Println()
		ui.PrintBold("Events by category")
		// Stable output: sort category names.
		names := make([]string, 0, len(stats.CategoryUsage))
		for name := range stats.CategoryUsage {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Printf("  %-10s %d\n", name, stats.CategoryUsage[name])
		}
	}

	return nil
}
