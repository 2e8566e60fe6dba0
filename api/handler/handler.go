// Package handler implements the HTTP API handlers.
package handler

import (
	"context"

	"github.com/dsagrinders/dsagrinders/api/middleware"
	"github.com/dsagrinders/dsagrinders/api/models"
	"github.com/dsagrinders/dsagrinders/config"
	"github.com/dsagrinders/dsagrinders/database"
	"github.com/dsagrinders/dsagrinders/engine"
	"github.com/dsagrinders/dsagrinders/leetcode"
	"github.com/dsagrinders/dsagrinders/scheduler"
	"github.com/dsagrinders/dsagrinders/statstore"
)

// Database is the subset of the relational store the handlers use.
type Database interface {
	CreateUser(ctx context.Context, user *database.User) error
	GetUserByID(ctx context.Context, id uint) (*database.User, error)
	GetUserByEmail(ctx context.Context, email string) (*database.User, error)
	GetUserByLeetcodeUsername(ctx context.Context, username string) (*database.User, error)
	UpdateUser(ctx context.Context, user *database.User) error
	DeleteUser(ctx context.Context, id uint) error
	GetSettings(ctx context.Context) (*database.Settings, error)
	SaveSettings(ctx context.Context, s *database.Settings) error
}

// Engine is the subset of the job engine the handlers use.
type Engine interface {
	Leaderboard(ctx context.Context, mode, platform string) (models.LeaderboardResult, bool, error)
	InvalidateLeaderboard(ctx context.Context, platform string) error
	Dispatch(ctx context.Context, forceSlot string) (*engine.DispatchResult, error)
	PreviewSlot(ctx context.Context, forceSlot string) (*engine.SlotPreview, error)
	UpdateDailyStats(ctx context.Context, user *database.User) (*statstore.DailyStat, error)
	Scheduler() *scheduler.Scheduler
}

// StatStore is the subset of the daily stat store the handlers use.
type StatStore interface {
	GetLatest(ctx context.Context, userID uint) (*statstore.DailyStat, error)
	DeleteForUser(ctx context.Context, userID uint) error
}

// StatsFetcher validates platform usernames at registration time.
type StatsFetcher interface {
	FetchUserStats(ctx context.Context, username string) (*leetcode.UserStats, error)
}

// Handler holds the dependencies shared by all HTTP handlers.
type Handler struct {
	cfg     *config.Config
	db      Database
	engine  Engine
	stats   StatStore
	fetcher StatsFetcher
	tokens  *middleware.TokenManager
}

// New creates a new Handler.
func New(
	cfg *config.Config,
	db Database,
	e Engine,
	stats StatStore,
	fetcher StatsFetcher,
	tokens *middleware.TokenManager,
) *Handler {
	return &Handler{
		cfg:     cfg,
		db:      db,
		engine:  e,
		stats:   stats,
		fetcher: fetcher,
		tokens:  tokens,
	}
}

func userView(u *database.User) models.UserView {
	return models.UserView{
		ID:                  u.ID,
		Name:                u.Name,
		Email:               u.Email,
		LeetcodeUsername:    u.LeetcodeUsername,
		PhoneNumber:         u.PhoneNumber,
		Role:                u.Role,
		DailyGrindTime:      u.DailyGrindTime,
		RoastIntensity:      u.RoastIntensity,
		EmailEnabled:        u.EmailEnabled,
		WhatsappEnabled:     u.WhatsappEnabled,
		OnboardingCompleted: u.OnboardingCompleted,
	}
}
