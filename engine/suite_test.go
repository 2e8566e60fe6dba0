package engine

import (
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/dsagrinders/dsagrinders/config"
	"github.com/dsagrinders/dsagrinders/database"
	"github.com/dsagrinders/dsagrinders/leetcode"
	"github.com/dsagrinders/dsagrinders/statstore"
)

// fixedNow pins engine time so slot and date logic is deterministic:
// 2026-08-28 09:15 in Asia/Kolkata.
var fixedNow = time.Date(2026, 8, 28, 9, 15, 0, 0, kolkata())

func kolkata() *time.Location {
	loc, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		panic(err)
	}
	return loc
}

type testDeps struct {
	db       *mockDatabase
	stats    *mockStatStore
	fetcher  *mockStatsFetcher
	email    *mockEmailSender
	whatsapp *mockWhatsAppSender
	lbCache  *mockLeaderboardCache
}

func newTestEngine() (*Engine, *testDeps) {
	deps := &testDeps{
		db:       new(mockDatabase),
		stats:    new(mockStatStore),
		fetcher:  new(mockStatsFetcher),
		email:    new(mockEmailSender),
		whatsapp: new(mockWhatsAppSender),
		lbCache:  new(mockLeaderboardCache),
	}

	cfg := &config.Config{
		ServerURL: "http://localhost:3003",
		Timezone:  "Asia/Kolkata",
		Dispatch: &config.DispatchConfig{
			BatchSize:  10,
			BatchDelay: 0,
			MaxErrors:  5,
		},
		Cache: &config.CacheConfig{Type: config.CacheTypeMemory, TTL: 300},
	}

	e := New(cfg, deps.db, deps.stats, deps.fetcher, deps.email, deps.whatsapp, deps.lbCache)
	e.now = func() time.Time { return fixedNow }
	return e, deps
}

func testUser(id uint, name, username, grindTime, intensity string) database.User {
	u := database.User{
		Name:                name,
		Email:               username + "@example.com",
		LeetcodeUsername:    username,
		DailyGrindTime:      grindTime,
		RoastIntensity:      intensity,
		EmailEnabled:        true,
		OnboardingCompleted: true,
	}
	u.ID = id
	return u
}

func enabledSettings() *database.Settings {
	return &database.Settings{
		AutomationEnabled:      true,
		EmailAutomationEnabled: true,
	}
}

// expectRefresh wires the fetch-and-upsert path so refreshing the user's
// daily stat succeeds with the given counts.
func expectRefresh(deps *testDeps, userID uint, username string, easy, medium, hard, todayPoints int, recent []leetcode.Submission) {
	total := easy + medium + hard
	deps.fetcher.On("FetchUserStats", mock.Anything, username).
		Return(&leetcode.UserStats{Username: username, Easy: easy, Medium: medium, Hard: hard, Total: total}, nil)
	deps.fetcher.On("FetchRecentSubmissions", mock.Anything, username, recentProblemLimit).
		Return(recent, nil)
	deps.stats.On("GetForDate", mock.Anything, userID, testDate).Return(nil, nil)
	deps.stats.On("GetLatestBefore", mock.Anything, userID, testDate).Return(nil, nil)

	problems := make([]statstore.Problem, 0, len(recent))
	for _, sub := range recent {
		problems = append(problems, statstore.Problem{
			ID: sub.ID, Title: sub.Title, TitleSlug: sub.TitleSlug, Timestamp: sub.Timestamp,
		})
	}
	deps.stats.On("Upsert", mock.Anything, mock.MatchedBy(func(s *statstore.DailyStat) bool {
		return s.UserID == userID
	})).Return(&statstore.DailyStat{
		UserID: userID, Date: testDate,
		Easy: easy, Medium: medium, Hard: hard, Total: total,
		PreviousTotal:  total - todayPoints,
		TodayPoints:    todayPoints,
		RecentProblems: problems,
	}, nil)
}
