package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dsagrinders/dsagrinders/api/middleware"
	"github.com/dsagrinders/dsagrinders/api/models"
	"github.com/dsagrinders/dsagrinders/config"
	"github.com/dsagrinders/dsagrinders/database"
	"github.com/dsagrinders/dsagrinders/engine"
	"github.com/dsagrinders/dsagrinders/leetcode"
	"github.com/dsagrinders/dsagrinders/scheduler"
	"github.com/dsagrinders/dsagrinders/statstore"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type mockEngine struct {
	mock.Mock
}

func (m *mockEngine) Leaderboard(ctx context.Context, mode, platform string) (models.LeaderboardResult, bool, error) {
	args := m.Called(ctx, mode, platform)
	return args.Get(0).(models.LeaderboardResult), args.Bool(1), args.Error(2)
}

func (m *mockEngine) InvalidateLeaderboard(ctx context.Context, platform string) error {
	args := m.Called(ctx, platform)
	return args.Error(0)
}

func (m *mockEngine) Dispatch(ctx context.Context, forceSlot string) (*engine.DispatchResult, error) {
	args := m.Called(ctx, forceSlot)
	if r := args.Get(0); r != nil {
		return r.(*engine.DispatchResult), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockEngine) PreviewSlot(ctx context.Context, forceSlot string) (*engine.SlotPreview, error) {
	args := m.Called(ctx, forceSlot)
	if r := args.Get(0); r != nil {
		return r.(*engine.SlotPreview), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockEngine) UpdateDailyStats(ctx context.Context, user *database.User) (*statstore.DailyStat, error) {
	args := m.Called(ctx, user)
	if r := args.Get(0); r != nil {
		return r.(*statstore.DailyStat), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockEngine) Scheduler() *scheduler.Scheduler {
	args := m.Called()
	if s := args.Get(0); s != nil {
		return s.(*scheduler.Scheduler)
	}
	return nil
}

type mockStatStore struct {
	mock.Mock
}

func (m *mockStatStore) GetLatest(ctx context.Context, userID uint) (*statstore.DailyStat, error) {
	args := m.Called(ctx, userID)
	if s := args.Get(0); s != nil {
		return s.(*statstore.DailyStat), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockStatStore) DeleteForUser(ctx context.Context, userID uint) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type mockFetcher struct {
	mock.Mock
}

func (m *mockFetcher) FetchUserStats(ctx context.Context, username string) (*leetcode.UserStats, error) {
	args := m.Called(ctx, username)
	if s := args.Get(0); s != nil {
		return s.(*leetcode.UserStats), args.Error(1)
	}
	return nil, args.Error(1)
}

type testServer struct {
	handler *Handler
	db      *database.Client
	engine  *mockEngine
	stats   *mockStatStore
	fetcher *mockFetcher
	tokens  *middleware.TokenManager
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db, err := database.New(&config.DatabaseConfig{Driver: "sqlite", Path: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	cfg := &config.Config{
		ServerURL:  "http://localhost:3003",
		CronSecret: "s3cret",
		Auth:       &config.AuthConfig{JWTSecret: "test-secret", TokenTTL: 1},
		Cache:      &config.CacheConfig{Type: config.CacheTypeMemory, TTL: 300},
	}

	srv := &testServer{
		db:      db,
		engine:  new(mockEngine),
		stats:   new(mockStatStore),
		fetcher: new(mockFetcher),
		tokens:  middleware.NewTokenManager(cfg.Auth),
	}
	srv.handler = New(cfg, db, srv.engine, srv.stats, srv.fetcher, srv.tokens)
	return srv
}

func (s *testServer) router() *gin.Engine {
	r := gin.New()
	api := r.Group("/api")
	api.POST("/auth/register", s.handler.Register)
	api.POST("/auth/login", s.handler.Login)
	api.GET("/leaderboard", s.handler.Leaderboard)

	me := api.Group("/me", s.tokens.RequireAuth())
	me.GET("", s.handler.Me)
	me.PATCH("", s.handler.UpdateMe)
	me.DELETE("", s.handler.DeleteMe)
	me.POST("/stats/refresh", s.handler.RefreshMyStats)

	cron := api.Group("/cron", middleware.RequireCronSecret("s3cret"))
	cron.POST("/time-slot-sender", s.handler.TimeSlotSender)
	cron.GET("/test-time-slots", s.handler.TestTimeSlots)
	return r
}

func (s *testServer) createUser(t *testing.T, name, email, username, password string) *database.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	user := &database.User{
		Name:             name,
		Email:            email,
		PasswordHash:     string(hash),
		LeetcodeUsername: username,
		Role:             database.RoleUser,
		EmailEnabled:     true,
	}
	require.NoError(t, s.db.CreateUser(context.Background(), user))
	return user
}

func jsonBody(t *testing.T, v any) *bytes.Reader {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(data)
}

func doJSON(t *testing.T, r http.Handler, method, path string, body *bytes.Reader, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, path, body)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func authHeader(t *testing.T, s *testServer, userID uint) map[string]string {
	t.Helper()
	token, err := s.tokens.Generate(userID)
	require.NoError(t, err)
	return map[string]string{"Authorization": "Bearer " + token}
}
