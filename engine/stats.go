package engine

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/dsagrinders/dsagrinders/database"
	"github.com/dsagrinders/dsagrinders/statstore"
)

// recentProblemLimit bounds how many solved problems are attached to a
// daily stat for the activity feed.
const recentProblemLimit = 15

// UpdateDailyStats fetches the user's current solved counts and upserts
// today's stat document. The baseline total is fixed at the first write of
// the day so later refreshes never shrink the day's points.
func (e *Engine) UpdateDailyStats(ctx context.Context, user *database.User) (*statstore.DailyStat, error) {
	stats, err := e.fetcher.FetchUserStats(ctx, user.LeetcodeUsername)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch stats for %s: %w", user.LeetcodeUsername, err)
	}

	date := e.Today()
	baseline, err := e.baselineTotal(ctx, user.ID, date, stats.Total)
	if err != nil {
		return nil, err
	}

	todayPoints := stats.Total - baseline
	if todayPoints < 0 {
		// A shrinking total means submissions were removed upstream,
		// never negative points.
		todayPoints = 0
	}

	recent, err := e.fetcher.FetchRecentSubmissions(ctx, user.LeetcodeUsername, recentProblemLimit)
	if err != nil {
		log.Warn("Failed to fetch recent submissions", "user", user.LeetcodeUsername, "error", err)
	}
	problems := make([]statstore.Problem, 0, len(recent))
	for _, sub := range recent {
		problems = append(problems, statstore.Problem{
			ID:        sub.ID,
			Title:     sub.Title,
			TitleSlug: sub.TitleSlug,
			Timestamp: sub.Timestamp,
		})
	}

	stat := &statstore.DailyStat{
		UserID:         user.ID,
		Date:           date,
		Easy:           stats.Easy,
		Medium:         stats.Medium,
		Hard:           stats.Hard,
		Total:          stats.Total,
		Ranking:        stats.Ranking,
		PreviousTotal:  baseline,
		TodayPoints:    todayPoints,
		RecentProblems: problems,
		UpdatedAt:      e.now().UTC(),
	}

	return e.stats.Upsert(ctx, stat)
}

// baselineTotal resolves the total the day's points are measured against:
// the stored baseline if today's document already exists, otherwise the
// latest prior day's total, otherwise the current total (first ever fetch
// scores zero).
func (e *Engine) baselineTotal(ctx context.Context, userID uint, date string, currentTotal int) (int, error) {
	existing, err := e.stats.GetForDate(ctx, userID, date)
	if err != nil {
		return 0, fmt.Errorf("failed to load today's stat: %w", err)
	}
	if existing != nil {
		return existing.PreviousTotal, nil
	}

	prior, err := e.stats.GetLatestBefore(ctx, userID, date)
	if err != nil {
		return 0, fmt.Errorf("failed to load prior stat: %w", err)
	}
	if prior != nil {
		return prior.Total, nil
	}

	return currentTotal, nil
}

// RefreshAllStats updates today's stats for every eligible user, a bounded
// number at a time. Per-user failures are logged and skipped.
func (e *Engine) RefreshAllStats(ctx context.Context) error {
	users, err := e.db.ListEligibleUsers(ctx)
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Dispatch.BatchSize)

	for i := range users {
		user := users[i]
		g.Go(func() error {
			if _, err := e.UpdateDailyStats(ctx, &user); err != nil {
				log.Warn("Failed to refresh stats", "user", user.LeetcodeUsername, "error", err)
			}
			return nil
		})
	}

	return g.Wait()
}
