package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dsagrinders/dsagrinders/config"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func authTestRouter(tm *TokenManager) *gin.Engine {
	r := gin.New()
	r.GET("/protected", tm.RequireAuth(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"userId": c.GetUint(UserIDKey)})
	})
	return r
}

func TestRequireAuth(t *testing.T) {
	tm := NewTokenManager(&config.AuthConfig{JWTSecret: "test-secret", TokenTTL: 1})
	router := authTestRouter(tm)

	token, err := tm.Generate(7)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"userId": 7}`, w.Body.String())
}

func TestRequireAuthMissingToken(t *testing.T) {
	tm := NewTokenManager(&config.AuthConfig{JWTSecret: "test-secret", TokenTTL: 1})
	router := authTestRouter(tm)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/protected", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAuthWrongSecret(t *testing.T) {
	tm := NewTokenManager(&config.AuthConfig{JWTSecret: "test-secret", TokenTTL: 1})
	other := NewTokenManager(&config.AuthConfig{JWTSecret: "other-secret", TokenTTL: 1})
	router := authTestRouter(tm)

	token, err := other.Generate(7)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireCronSecret(t *testing.T) {
	r := gin.New()
	r.POST("/cron", RequireCronSecret("s3cret"), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/cron", nil)
	req.Header.Set(CronSecretHeader, "s3cret")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/cron", nil)
	req.Header.Set("Authorization", "Bearer s3cret")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/cron", nil)
	req.Header.Set(CronSecretHeader, "wrong")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/cron", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRateLimiter(t *testing.T) {
	limiter := NewRateLimiter(&config.RateLimitConfig{Requests: 2, Window: 60})
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	ok, _ := limiter.allow("1.2.3.4")
	assert.True(t, ok)
	ok, _ = limiter.allow("1.2.3.4")
	assert.True(t, ok)

	ok, retryAfter := limiter.allow("1.2.3.4")
	assert.False(t, ok)
	assert.Equal(t, time.Minute, retryAfter)

	// other clients keep their own window
	ok, _ = limiter.allow("5.6.7.8")
	assert.True(t, ok)

	// the window resets
	now = now.Add(61 * time.Second)
	ok, _ = limiter.allow("1.2.3.4")
	assert.True(t, ok)
}

func TestRateLimiterMiddleware(t *testing.T) {
	limiter := NewRateLimiter(&config.RateLimitConfig{Requests: 1, Window: 60})
	r := gin.New()
	r.GET("/leaderboard", limiter.Middleware(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/leaderboard", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/leaderboard", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}
