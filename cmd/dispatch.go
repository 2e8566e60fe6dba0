package cmd

import (
	"context"
	"encoding/json"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var dispatchCmdFlags struct {
	Slot string
}

var dispatchCmd = &cobra.Command{
	Use:   "dispatch",
	Short: "Run one roast dispatch pass and exit",
	Long:  `Run a single roast dispatch pass for the current half-hour slot, or for an explicit slot, and print the run summary. Useful for external cron setups and for catching up a missed window.`,
	Example: `dsagrinders dispatch
dsagrinders dispatch --slot 09:00-09:30`,
	Run: runDispatch,
}

func init() {
	dispatchCmd.Flags().StringVar(&dispatchCmdFlags.Slot, "slot", "", "Slot to dispatch as HH:MM-HH:MM (default: the current slot)")
	rootCmd.AddCommand(dispatchCmd)
}

func runDispatch(cmd *cobra.Command, _ []string) {
	ctx := cmd.Context()

	d, err := bootstrap(ctx)
	if err != nil {
		log.Fatalf("failed to start: %v", err)
	}
	defer d.close(context.Background())

	result, err := d.engine.Dispatch(ctx, dispatchCmdFlags.Slot)
	if err != nil {
		log.Fatalf("dispatch failed: %v", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		log.Fatalf("failed to print result: %v", err)
	}
}
