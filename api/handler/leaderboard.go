package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/dsagrinders/dsagrinders/engine"
)

// Leaderboard serves the ranked leaderboard with the recent activity feed.
// The payload is cached server-side, the X-Cache header reports whether
// this request hit the cache.
func (h *Handler) Leaderboard(c *gin.Context) {
	mode := c.Query("type")
	platform := c.Query("platform")

	result, cached, err := h.engine.Leaderboard(c.Request.Context(), mode, platform)
	if err != nil {
		if errors.Is(err, engine.ErrUnsupportedPlatform) || errors.Is(err, engine.ErrUnsupportedMode) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		log.Error("Failed to compute leaderboard", "mode", mode, "platform", platform, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute leaderboard"})
		return
	}

	c.Header("Cache-Control", fmt.Sprintf("public, max-age=%d", h.cfg.Cache.TTL))
	if cached {
		c.Header("X-Cache", "HIT")
	} else {
		c.Header("X-Cache", "MISS")
	}
	c.JSON(http.StatusOK, result)
}
