// Package cmd holds the CLI commands.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/dsagrinders/dsagrinders/cache"
	"github.com/dsagrinders/dsagrinders/config"
	"github.com/dsagrinders/dsagrinders/database"
	"github.com/dsagrinders/dsagrinders/engine"
	"github.com/dsagrinders/dsagrinders/leetcode"
	"github.com/dsagrinders/dsagrinders/notify/email"
	"github.com/dsagrinders/dsagrinders/notify/whatsapp"
	"github.com/dsagrinders/dsagrinders/statstore"
)

var rootCmdPersistentFlags struct {
	LogFile    string
	ConfigFile string
	LogLevel   string
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootCmdPersistentFlags.LogFile, "log-file", "", "File to write logs to")
	rootCmd.PersistentFlags().StringVarP(&rootCmdPersistentFlags.ConfigFile, "config", "c", "", "Path to config file (default: search for config.yml in current dir, ~/.dsagrinders, /etc/dsagrinders)")
	rootCmd.PersistentFlags().StringVar(&rootCmdPersistentFlags.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
}

var rootCmd = &cobra.Command{
	Use:   "dsagrinders",
	Short: "DSA Grinders keeps your study group solving problems every day",
	Long:  `DSA Grinders tracks daily LeetCode progress for a study group, serves a scored leaderboard and roasts members who skip their daily grind slot.`,
	Example: `dsagrinders serve --config config.yml
  dsagrinders dispatch --slot 09:00-09:30
  dsagrinders roast`,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		setLogLevel(rootCmdPersistentFlags.LogLevel)
		logToFile()
	},
}

// deps bundles everything a command needs after bootstrapping.
type deps struct {
	cfg     *config.Config
	db      *database.Client
	stats   *statstore.Store
	fetcher *leetcode.Client
	engine  *engine.Engine
}

func (d *deps) close(ctx context.Context) {
	if err := d.stats.Close(ctx); err != nil {
		log.Warn("failed to close stat store", "error", err)
	}
	if err := d.db.Close(); err != nil {
		log.Warn("failed to close database", "error", err)
	}
}

func bootstrap(ctx context.Context) (*deps, error) {
	cfg, err := config.Load(rootCmdPersistentFlags.ConfigFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	db, err := database.New(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	stats, err := statstore.New(ctx, cfg.Mongo)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to stat store: %w", err)
	}

	fetcher, err := leetcode.New(cfg.LeetCode)
	if err != nil {
		return nil, fmt.Errorf("failed to create leetcode client: %w", err)
	}

	e := engine.New(
		cfg,
		db,
		stats,
		fetcher,
		email.New(cfg.Email),
		whatsapp.New(cfg.WhatsApp),
		cache.NewLeaderboardCache(cfg.Cache),
	)

	return &deps{cfg: cfg, db: db, stats: stats, fetcher: fetcher, engine: e}, nil
}

func setLogLevel(level string) {
	switch level {
	case "debug":
		log.SetLevel(log.DebugLevel)
	case "info", "":
		log.SetLevel(log.InfoLevel)
	case "warn":
		log.SetLevel(log.WarnLevel)
	case "error":
		log.SetLevel(log.ErrorLevel)
	default:
		log.Warnf("unknown log level %s, defaulting to info", level)
		log.SetLevel(log.InfoLevel)
	}
}

func logToFile() {
	if rootCmdPersistentFlags.LogFile == "" {
		return
	}
	file, err := os.OpenFile(rootCmdPersistentFlags.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644) //nolint:gosec
	if err != nil {
		log.Errorf("failed to open log file: %v", err)
		return
	}

	multiWriter := io.MultiWriter(os.Stdout, file)
	log.SetOutput(multiWriter)
	log.Info("logging to both console and file", "file", rootCmdPersistentFlags.LogFile)
}

func Execute() error {
	return rootCmd.Execute()
}
