package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mergestat/timediff"
	"golang.org/x/sync/errgroup"

	"github.com/dsagrinders/dsagrinders/api/models"
	"github.com/dsagrinders/dsagrinders/database"
	"github.com/dsagrinders/dsagrinders/statstore"
)

// ErrUnsupportedPlatform is returned for leaderboard platforms other than
// leetcode.
var ErrUnsupportedPlatform = errors.New("unsupported leaderboard platform")

// ErrUnsupportedMode is returned for leaderboard modes other than daily and
// alltime.
var ErrUnsupportedMode = errors.New("unsupported leaderboard mode")

// PlatformLeetcode is the only platform currently served.
const PlatformLeetcode = "leetcode"

// Leaderboard modes.
const (
	ModeDaily   = "daily"
	ModeAlltime = "alltime"
)

// Score weights per difficulty.
const (
	scoreEasy   = 1
	scoreMedium = 3
	scoreHard   = 6
)

// Activity feed bounds.
const (
	activityWindow   = 72 * time.Hour
	activityLimit    = 30
	activityDocLimit = 100
)

// Leaderboard returns the ranked leaderboard for a mode and platform,
// serving from cache when a fresh entry exists. The third return value
// reports a cache hit. Mode "daily" ranks by points earned today, "alltime"
// by the cumulative weighted score; an empty mode means daily.
func (e *Engine) Leaderboard(ctx context.Context, mode, platform string) (models.LeaderboardResult, bool, error) {
	if mode == "" {
		mode = ModeDaily
	}
	if mode != ModeDaily && mode != ModeAlltime {
		return models.LeaderboardResult{}, false, fmt.Errorf("%w: %s", ErrUnsupportedMode, mode)
	}
	if platform == "" {
		platform = PlatformLeetcode
	}
	if platform != PlatformLeetcode {
		return models.LeaderboardResult{}, false, fmt.Errorf("%w: %s", ErrUnsupportedPlatform, platform)
	}

	if cached, ok := e.lbCache.Get(ctx, mode, platform); ok {
		return cached, true, nil
	}

	result, err := e.computeLeaderboard(ctx, mode, platform)
	if err != nil {
		return models.LeaderboardResult{}, false, err
	}

	if err := e.lbCache.Set(ctx, mode, platform, result); err != nil {
		log.Warn("Failed to cache leaderboard", "mode", mode, "platform", platform, "error", err)
	}
	return result, false, nil
}

// InvalidateLeaderboard drops the cached leaderboards for a platform so the
// next request recomputes them.
func (e *Engine) InvalidateLeaderboard(ctx context.Context, platform string) error {
	if platform == "" {
		platform = PlatformLeetcode
	}
	var errs []error
	for _, mode := range []string{ModeDaily, ModeAlltime} {
		if err := e.lbCache.Invalidate(ctx, mode, platform); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// computeLeaderboard ranks the eligible users from their stored stat
// snapshots. Refreshing from upstream is the stats-sync job's business, the
// read path never waits on the external API.
func (e *Engine) computeLeaderboard(ctx context.Context, mode, platform string) (models.LeaderboardResult, error) {
	users, err := e.db.ListEligibleUsers(ctx)
	if err != nil {
		return models.LeaderboardResult{}, fmt.Errorf("failed to list users: %w", err)
	}

	// Each goroutine writes its own slot, no locking needed.
	stats := make([]*statstore.DailyStat, len(users))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Dispatch.BatchSize)

	for i := range users {
		i := i
		g.Go(func() error {
			stat, err := e.stats.GetLatest(gctx, users[i].ID)
			if err != nil {
				log.Error("Failed to load stored stats",
					"user", users[i].LeetcodeUsername, "error", err)
				return nil
			}
			stats[i] = stat
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return models.LeaderboardResult{}, err
	}

	entries := make([]models.LeaderboardEntry, 0, len(users))
	for i, user := range users {
		stat := stats[i]
		if stat == nil {
			continue
		}
		entries = append(entries, models.LeaderboardEntry{
			UserID:           user.ID,
			Name:             user.Name,
			LeetcodeUsername: user.LeetcodeUsername,
			Easy:             stat.Easy,
			Medium:           stat.Medium,
			Hard:             stat.Hard,
			TotalSolved:      stat.Total,
			Score:            stat.Easy*scoreEasy + stat.Medium*scoreMedium + stat.Hard*scoreHard,
			TodayPoints:      stat.TodayPoints,
			Ranking:          stat.Ranking,
		})
	}

	sortEntries(entries, mode)
	for i := range entries {
		entries[i].Rank = i + 1
	}

	now := e.now()
	activities, err := e.recentActivities(ctx, users, now)
	if err != nil {
		// The feed is decoration, an empty one beats a failed leaderboard.
		log.Warn("Failed to build activity feed", "error", err)
		activities = make([]models.Activity, 0)
	}

	return models.LeaderboardResult{
		Mode:        mode,
		Platform:    platform,
		Entries:     entries,
		Activities:  activities,
		GeneratedAt: now.UTC(),
	}, nil
}

// sortEntries orders daily by points earned today and alltime by cumulative
// score, each tie-broken by the other metric, then by name for a stable
// order.
func sortEntries(entries []models.LeaderboardEntry, mode string) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if mode == ModeDaily {
			if a.TodayPoints != b.TodayPoints {
				return a.TodayPoints > b.TodayPoints
			}
			if a.Score != b.Score {
				return a.Score > b.Score
			}
		} else {
			if a.Score != b.Score {
				return a.Score > b.Score
			}
			if a.TodayPoints != b.TodayPoints {
				return a.TodayPoints > b.TodayPoints
			}
		}
		return a.Name < b.Name
	})
}

// recentActivities builds the solved-problem feed from the stat documents of
// the last three days: strict 72 hour window, de-duplicated by problem id
// across users, newest first, capped.
func (e *Engine) recentActivities(ctx context.Context, users []database.User, now time.Time) ([]models.Activity, error) {
	cutoff := now.Add(-activityWindow)
	sinceDate := cutoff.In(e.loc).Format("2006-01-02")

	docs, err := e.stats.ListSince(ctx, sinceDate, activityDocLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent stats: %w", err)
	}

	names := make(map[uint]string, len(users))
	for _, user := range users {
		names[user.ID] = user.Name
	}

	seen := make(map[string]struct{})
	activities := make([]models.Activity, 0)
	for _, doc := range docs {
		name, ok := names[doc.UserID]
		if !ok {
			continue
		}
		for _, p := range doc.RecentProblems {
			solvedAt := time.Unix(p.Timestamp, 0)
			if solvedAt.Before(cutoff) {
				continue
			}
			if _, dup := seen[p.TitleSlug]; dup {
				continue
			}
			seen[p.TitleSlug] = struct{}{}
			activities = append(activities, models.Activity{
				UserName:  name,
				Title:     p.Title,
				TitleSlug: p.TitleSlug,
				SolvedAt:  solvedAt,
				TimeAgo:   timediff.TimeDiff(solvedAt, timediff.WithStartTime(now)),
			})
		}
	}

	sort.SliceStable(activities, func(i, j int) bool {
		return activities[i].SolvedAt.After(activities[j].SolvedAt)
	})
	if len(activities) > activityLimit {
		activities = activities[:activityLimit]
	}
	return activities, nil
}
