package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/eko/gocache/lib/v4/store"

	"github.com/dsagrinders/dsagrinders/api/models"
	"github.com/dsagrinders/dsagrinders/config"
)

// Cache key prefixes.
const (
	LeaderboardCachePrefix = "leaderboard-"
)

// LeaderboardCache stores computed leaderboard payloads keyed by
// (mode, platform).
type LeaderboardCache struct {
	cache *PrefixedCache[models.LeaderboardResult]
	ttl   time.Duration
}

// NewLeaderboardCache creates a leaderboard cache with the configured
// backend and TTL.
func NewLeaderboardCache(cfg *config.CacheConfig) *LeaderboardCache {
	return &LeaderboardCache{
		cache: NewPrefixedCache[models.LeaderboardResult](newCacheInstanceByType(cfg), LeaderboardCachePrefix),
		ttl:   cfg.TTLDuration(),
	}
}

func leaderboardKey(mode, platform string) string {
	return fmt.Sprintf("%s_%s", mode, platform)
}

// Get returns the cached leaderboard for a mode and platform. The second
// return value reports whether a fresh entry was found.
func (c *LeaderboardCache) Get(ctx context.Context, mode, platform string) (models.LeaderboardResult, bool) {
	result, err := c.cache.Get(ctx, leaderboardKey(mode, platform))
	if err != nil {
		return models.LeaderboardResult{}, false
	}
	return result, true
}

// Set stores the leaderboard for a mode and platform with the configured TTL.
func (c *LeaderboardCache) Set(ctx context.Context, mode, platform string, result models.LeaderboardResult) error {
	return c.cache.Set(ctx, leaderboardKey(mode, platform), result, store.WithExpiration(c.ttl))
}

// Invalidate drops the cached leaderboard for a mode and platform.
func (c *LeaderboardCache) Invalidate(ctx context.Context, mode, platform string) error {
	return c.cache.Delete(ctx, leaderboardKey(mode, platform))
}

// Clear drops all cached leaderboards.
func (c *LeaderboardCache) Clear(ctx context.Context) error {
	return c.cache.Clear(ctx)
}
