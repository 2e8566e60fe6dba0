package engine

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/dsagrinders/dsagrinders/api/models"
	"github.com/dsagrinders/dsagrinders/database"
	"github.com/dsagrinders/dsagrinders/leetcode"
	"github.com/dsagrinders/dsagrinders/notify/email"
	"github.com/dsagrinders/dsagrinders/statstore"
)

type mockDatabase struct {
	mock.Mock
}

func (m *mockDatabase) GetUserByID(ctx context.Context, id uint) (*database.User, error) {
	args := m.Called(ctx, id)
	if u := args.Get(0); u != nil {
		return u.(*database.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockDatabase) ListEligibleUsers(ctx context.Context) ([]database.User, error) {
	args := m.Called(ctx)
	if u := args.Get(0); u != nil {
		return u.([]database.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockDatabase) GetSettings(ctx context.Context) (*database.Settings, error) {
	args := m.Called(ctx)
	if s := args.Get(0); s != nil {
		return s.(*database.Settings), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockDatabase) AddSentCounters(ctx context.Context, counters database.SentCounters) error {
	args := m.Called(ctx, counters)
	return args.Error(0)
}

func (m *mockDatabase) ResetSentCounters(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *mockDatabase) GetRoastMessages(ctx context.Context, date string) (map[string]database.RoastMessage, error) {
	args := m.Called(ctx, date)
	if r := args.Get(0); r != nil {
		return r.(map[string]database.RoastMessage), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockDatabase) SaveRoastMessages(ctx context.Context, messages []database.RoastMessage) error {
	args := m.Called(ctx, messages)
	return args.Error(0)
}

type mockStatStore struct {
	mock.Mock
}

func (m *mockStatStore) GetForDate(ctx context.Context, userID uint, date string) (*statstore.DailyStat, error) {
	args := m.Called(ctx, userID, date)
	if s := args.Get(0); s != nil {
		return s.(*statstore.DailyStat), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockStatStore) GetLatestBefore(ctx context.Context, userID uint, date string) (*statstore.DailyStat, error) {
	args := m.Called(ctx, userID, date)
	if s := args.Get(0); s != nil {
		return s.(*statstore.DailyStat), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockStatStore) GetLatest(ctx context.Context, userID uint) (*statstore.DailyStat, error) {
	args := m.Called(ctx, userID)
	if s := args.Get(0); s != nil {
		return s.(*statstore.DailyStat), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockStatStore) Upsert(ctx context.Context, stat *statstore.DailyStat) (*statstore.DailyStat, error) {
	args := m.Called(ctx, stat)
	if s := args.Get(0); s != nil {
		return s.(*statstore.DailyStat), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockStatStore) ListSince(ctx context.Context, date string, limit int64) ([]statstore.DailyStat, error) {
	args := m.Called(ctx, date, limit)
	if s := args.Get(0); s != nil {
		return s.([]statstore.DailyStat), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockStatsFetcher struct {
	mock.Mock
}

func (m *mockStatsFetcher) FetchUserStats(ctx context.Context, username string) (*leetcode.UserStats, error) {
	args := m.Called(ctx, username)
	if s := args.Get(0); s != nil {
		return s.(*leetcode.UserStats), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockStatsFetcher) FetchRecentSubmissions(ctx context.Context, username string, limit int) ([]leetcode.Submission, error) {
	args := m.Called(ctx, username, limit)
	if s := args.Get(0); s != nil {
		return s.([]leetcode.Submission), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockEmailSender struct {
	mock.Mock
	disabled bool
}

func (m *mockEmailSender) Enabled() bool {
	return !m.disabled
}

func (m *mockEmailSender) SendRoast(notification email.RoastNotification) error {
	args := m.Called(notification)
	return args.Error(0)
}

type mockWhatsAppSender struct {
	mock.Mock
	disabled bool
}

func (m *mockWhatsAppSender) Enabled() bool {
	return !m.disabled
}

func (m *mockWhatsAppSender) SendRoast(ctx context.Context, phoneNumber, body string) error {
	args := m.Called(ctx, phoneNumber, body)
	return args.Error(0)
}

type mockLeaderboardCache struct {
	mock.Mock
}

func (m *mockLeaderboardCache) Get(ctx context.Context, mode, platform string) (models.LeaderboardResult, bool) {
	args := m.Called(ctx, mode, platform)
	return args.Get(0).(models.LeaderboardResult), args.Bool(1)
}

func (m *mockLeaderboardCache) Set(ctx context.Context, mode, platform string, result models.LeaderboardResult) error {
	args := m.Called(ctx, mode, platform, result)
	return args.Error(0)
}

func (m *mockLeaderboardCache) Invalidate(ctx context.Context, mode, platform string) error {
	args := m.Called(ctx, mode, platform)
	return args.Error(0)
}
