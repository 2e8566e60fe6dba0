// Package engine implements the stats refresh, leaderboard aggregation and
// roast dispatch jobs.
package engine

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-co-op/gocron/v2"

	"github.com/dsagrinders/dsagrinders/api/models"
	"github.com/dsagrinders/dsagrinders/config"
	"github.com/dsagrinders/dsagrinders/database"
	"github.com/dsagrinders/dsagrinders/leetcode"
	"github.com/dsagrinders/dsagrinders/notify/email"
	"github.com/dsagrinders/dsagrinders/scheduler"
	"github.com/dsagrinders/dsagrinders/statstore"
)

// Database is the subset of the relational store the engine depends on.
type Database interface {
	GetUserByID(ctx context.Context, id uint) (*database.User, error)
	ListEligibleUsers(ctx context.Context) ([]database.User, error)
	GetSettings(ctx context.Context) (*database.Settings, error)
	AddSentCounters(ctx context.Context, counters database.SentCounters) error
	ResetSentCounters(ctx context.Context) error
	GetRoastMessages(ctx context.Context, date string) (map[string]database.RoastMessage, error)
	SaveRoastMessages(ctx context.Context, messages []database.RoastMessage) error
}

// StatStore is the daily stat document store the engine writes to.
type StatStore interface {
	GetForDate(ctx context.Context, userID uint, date string) (*statstore.DailyStat, error)
	GetLatestBefore(ctx context.Context, userID uint, date string) (*statstore.DailyStat, error)
	GetLatest(ctx context.Context, userID uint) (*statstore.DailyStat, error)
	Upsert(ctx context.Context, stat *statstore.DailyStat) (*statstore.DailyStat, error)
	ListSince(ctx context.Context, date string, limit int64) ([]statstore.DailyStat, error)
}

// StatsFetcher pulls cumulative solved counts from the platform API.
type StatsFetcher interface {
	FetchUserStats(ctx context.Context, username string) (*leetcode.UserStats, error)
	FetchRecentSubmissions(ctx context.Context, username string, limit int) ([]leetcode.Submission, error)
}

// EmailSender delivers roast reminder emails.
type EmailSender interface {
	Enabled() bool
	SendRoast(notification email.RoastNotification) error
}

// WhatsAppSender delivers roast reminders over WhatsApp.
type WhatsAppSender interface {
	Enabled() bool
	SendRoast(ctx context.Context, phoneNumber, body string) error
}

// LeaderboardCache stores computed leaderboard payloads per mode and
// platform.
type LeaderboardCache interface {
	Get(ctx context.Context, mode, platform string) (models.LeaderboardResult, bool)
	Set(ctx context.Context, mode, platform string, result models.LeaderboardResult) error
	Invalidate(ctx context.Context, mode, platform string) error
}

// Engine runs the background jobs and serves leaderboard computations.
type Engine struct {
	cfg      *config.Config
	db       Database
	stats    StatStore
	fetcher  StatsFetcher
	email    EmailSender
	whatsapp WhatsAppSender
	lbCache  LeaderboardCache

	sched *scheduler.Scheduler
	loc   *time.Location

	// now is swapped out in tests.
	now func() time.Time
}

// New creates a new Engine instance.
func New(
	cfg *config.Config,
	db Database,
	stats StatStore,
	fetcher StatsFetcher,
	emailSender EmailSender,
	whatsappSender WhatsAppSender,
	lbCache LeaderboardCache,
) *Engine {
	return &Engine{
		cfg:      cfg,
		db:       db,
		stats:    stats,
		fetcher:  fetcher,
		email:    emailSender,
		whatsapp: whatsappSender,
		lbCache:  lbCache,
		loc:      cfg.Location(),
		now:      time.Now,
	}
}

// Today returns the current calendar day in the configured zone.
func (e *Engine) Today() string {
	return e.now().In(e.loc).Format("2006-01-02")
}

// Run starts the engine's scheduled jobs and blocks until ctx is done.
func (e *Engine) Run(ctx context.Context) error {
	sched, err := scheduler.New(e.loc)
	if err != nil {
		return err
	}
	e.sched = sched

	if err := e.registerJobs(sched); err != nil {
		return err
	}

	sched.Start()
	<-ctx.Done()
	return sched.Stop()
}

// Scheduler returns the running scheduler, nil before Run.
func (e *Engine) Scheduler() *scheduler.Scheduler {
	return e.sched
}

func (e *Engine) registerJobs(sched *scheduler.Scheduler) error {
	// The dispatcher fires at the start of every half-hour slot. Singleton
	// mode keeps a slow run from overlapping with the next tick.
	if err := sched.AddSingletonJob(
		"roast-dispatch",
		"Roast Dispatch",
		"Sends roast reminders to users whose grind time falls in the current slot",
		"0,30 * * * *",
		gocron.CronJob("0,30 * * * *", false),
		func(ctx context.Context) error {
			result, err := e.Dispatch(ctx, "")
			if err != nil {
				return err
			}
			log.Info("Roast dispatch finished",
				"run_id", result.RunID,
				"slot", result.Slot,
				"matched", result.Matched,
				"emails", result.EmailsSent,
				"whatsapp", result.WhatsappSent,
				"errors", len(result.Errors))
			return nil
		},
		false,
	); err != nil {
		return err
	}

	// Roast templates for the day are generated just after midnight and on
	// startup in case the server was down at the time.
	if err := sched.AddJob(
		"roast-pregen",
		"Roast Pregeneration",
		"Generates the day's roast message per intensity",
		"5 0 * * *",
		gocron.CronJob("5 0 * * *", false),
		func(ctx context.Context) error {
			_, err := e.GenerateRoasts(ctx, e.Today())
			return err
		},
		true,
	); err != nil {
		return err
	}

	// The leaderboard reads stored stats only, so a periodic sync keeps
	// them fresh instead of fetching from upstream on the read path.
	if err := sched.AddSingletonJob(
		"stats-sync",
		"Stats Sync",
		"Refreshes every eligible user's daily stats from the platform API",
		"10 * * * *",
		gocron.CronJob("10 * * * *", false),
		e.RefreshAllStats,
		true,
	); err != nil {
		return err
	}

	if err := sched.AddJob(
		"counter-reset",
		"Counter Reset",
		"Resets the daily sent counters at midnight",
		"0 0 * * *",
		gocron.CronJob("0 0 * * *", false),
		func(ctx context.Context) error {
			return e.db.ResetSentCounters(ctx)
		},
		false,
	); err != nil {
		return err
	}

	return nil
}
