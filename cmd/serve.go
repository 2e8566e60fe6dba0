package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/dsagrinders/dsagrinders/api"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the DSA Grinders server",
	Long:  `Start the API server together with the background jobs: the half-hourly roast dispatcher, the daily roast pregeneration and the midnight counter reset.`,
	Example: `dsagrinders serve --config config.yml
dsagrinders serve -c /path/to/config.yml --log-level debug`,
	Run: startServer,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func startServer(cmd *cobra.Command, _ []string) {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	d, err := bootstrap(ctx)
	if err != nil {
		log.Fatalf("failed to start: %v", err)
	}
	defer d.close(context.Background())

	server, err := api.New(d.cfg, d.db, d.engine, d.stats, d.fetcher)
	if err != nil {
		log.Fatalf("failed to create API server: %v", err)
	}

	// Start the engine in a goroutine
	go func() {
		if err := d.engine.Run(ctx); err != nil {
			log.Error("engine error", "error", err)
		}
	}()

	// Start the API server in a goroutine
	go func() {
		if err := server.Run(ctx); err != nil {
			log.Error("API server error", "error", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	log.Info("dsagrinders started successfully")
	<-c
	log.Info("shutting down gracefully...")

	cancel()
	time.Sleep(2 * time.Second)
}
