package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/MADANW/MuhsinAI/internal/cli/ui"
)

// probeCmd is the probe command
var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "check model connectivity",
	Long: `Ask the server to verify its connection to the language model.

The verdict is advisory: a failed probe does not block sending prompts, it
just tells you what to expect.`,
	Args: cobra.NoArgs,
	RunE: runProbe,
}

func init() {
	probeCmd.SilenceUsage = true
}

func runProbe(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	sess, apiClient, err := requireSession()
	if err != nil {
		return err
	}

	ui.PrintInfo("Probing model connectivity...")

	status, err := apiClient.Probe(ctx)
	if err != nil {
		reportRequestError(sess, "probe the model", err)
		return fmt.Errorf("probe failed")
	}

	switch status.State {
	case "connected":
		ui.PrintSuccess("Model reachable (checked %s)", status.CheckedAt)
	case "errored":
		ui.PrintWarning("Model unreachable: %s", status.Error)
		ui.PrintInfo("Prompts will fail until connectivity recovers.")
	default:
		ui.PrintInfo("Probe still running, try again shortly.")
	}

	return nil
}
