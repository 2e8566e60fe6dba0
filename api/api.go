// Package api exposes the HTTP API of the server.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/dsagrinders/dsagrinders/api/handler"
	"github.com/dsagrinders/dsagrinders/api/middleware"
	"github.com/dsagrinders/dsagrinders/config"
)

// Server is the HTTP API server.
type Server struct {
	cfg       *config.Config
	ginEngine *gin.Engine
	tokens    *middleware.TokenManager
	handler   *handler.Handler
	db        handler.Database
}

// New creates a new Server.
func New(
	cfg *config.Config,
	db handler.Database,
	e handler.Engine,
	stats handler.StatStore,
	fetcher handler.StatsFetcher,
) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	tokens := middleware.NewTokenManager(cfg.Auth)

	return &Server{
		cfg:       cfg,
		ginEngine: gin.Default(),
		tokens:    tokens,
		handler:   handler.New(cfg, db, e, stats, fetcher, tokens),
		db:        db,
	}, nil
}

func (s *Server) setupRoutes() {
	s.ginEngine.Use(gzip.Gzip(gzip.DefaultCompression))

	s.ginEngine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := s.ginEngine.Group("/api")

	api.POST("/auth/register", s.handler.Register)
	api.POST("/auth/login", s.handler.Login)

	rateLimiter := middleware.NewRateLimiter(s.cfg.RateLimit)
	api.GET("/leaderboard", rateLimiter.Middleware(), s.handler.Leaderboard)

	me := api.Group("/me")
	me.Use(s.tokens.RequireAuth())
	me.GET("", s.handler.Me)
	me.PATCH("", s.handler.UpdateMe)
	me.DELETE("", s.handler.DeleteMe)
	me.GET("/stats", s.handler.MyStats)
	me.POST("/stats/refresh", s.handler.RefreshMyStats)

	cron := api.Group("/cron")
	cron.Use(middleware.RequireCronSecret(s.cfg.CronSecret))
	cron.POST("/time-slot-sender", s.handler.TimeSlotSender)
	cron.GET("/test-time-slots", s.handler.TestTimeSlots)

	admin := api.Group("/admin")
	admin.Use(s.tokens.RequireAuth(), middleware.RequireAdmin(s.db))
	admin.GET("/settings", s.handler.GetSettings)
	admin.PATCH("/settings", s.handler.UpdateSettings)
	admin.GET("/jobs", s.handler.ListJobs)
	admin.POST("/jobs/:id/run", s.handler.RunJob)
	admin.POST("/leaderboard/invalidate", s.handler.InvalidateLeaderboard)
}

// Run starts the HTTP server and blocks until ctx is canceled.
func (s *Server) Run(ctx context.Context) error {
	s.setupRoutes()

	srv := &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           s.ginEngine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "listen", s.cfg.Listen)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
