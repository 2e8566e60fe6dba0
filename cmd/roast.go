package cmd

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/dsagrinders/dsagrinders/roast"
)

var roastCmd = &cobra.Command{
	Use:     "roast",
	Short:   "Generate (or show) today's roast messages",
	Long:    `Generate today's roast message for every intensity and print them. Messages already generated for today are kept as they are.`,
	Example: `dsagrinders roast`,
	Run:     runRoast,
}

func init() {
	rootCmd.AddCommand(roastCmd)
}

func runRoast(cmd *cobra.Command, _ []string) {
	ctx := cmd.Context()

	d, err := bootstrap(ctx)
	if err != nil {
		log.Fatalf("failed to start: %v", err)
	}
	defer d.close(context.Background())

	date := d.engine.Today()
	messages, err := d.engine.GenerateRoasts(ctx, date)
	if err != nil {
		log.Fatalf("failed to generate roasts: %v", err)
	}

	fmt.Printf("Roast messages for %s:\n", date)
	for _, intensity := range roast.Intensities {
		if msg, ok := messages[string(intensity)]; ok {
			fmt.Printf("  %-7s %s\n", intensity, msg.FullMessage)
		}
	}
}
