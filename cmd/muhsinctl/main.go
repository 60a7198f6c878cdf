package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/MADANW/MuhsinAI/internal/cli/commands"
	"github.com/MADANW/MuhsinAI/internal/cli/ui"
)

func main() {
	if err := commands.Execute(); err != nil {
		// Handle unknown command errors specially
		errMsg := err.Error()
		if strings.Contains(errMsg, "unknown command") {
			ui.PrintError("%s", errMsg)
			fmt.Println("\nRun 'muhsinctl --help' for usage.")
		}
		os.Exit(1)
	}
}
