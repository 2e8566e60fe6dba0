package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dsagrinders/dsagrinders/database"
)

type updateSettingsRequest struct {
	AutomationEnabled         *bool   `json:"automationEnabled"`
	EmailAutomationEnabled    *bool   `json:"emailAutomationEnabled"`
	WhatsappAutomationEnabled *bool   `json:"whatsappAutomationEnabled"`
	Timezone                  *string `json:"timezone"`
}

// GetSettings returns the automation settings, creating the defaults row
// on first access.
func (h *Handler) GetSettings(c *gin.Context) {
	settings, err := h.db.GetSettings(c.Request.Context())
	if err != nil {
		if err != database.ErrNoSettings {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load settings"})
			return
		}
		settings = &database.Settings{
			AutomationEnabled:      true,
			EmailAutomationEnabled: true,
		}
		if err := h.db.SaveSettings(c.Request.Context(), settings); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create settings"})
			return
		}
	}
	c.JSON(http.StatusOK, settings)
}

// UpdateSettings patches the automation settings.
func (h *Handler) UpdateSettings(c *gin.Context) {
	settings, err := h.db.GetSettings(c.Request.Context())
	if err != nil {
		if err != database.ErrNoSettings {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load settings"})
			return
		}
		settings = &database.Settings{}
	}

	var req updateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.AutomationEnabled != nil {
		settings.AutomationEnabled = *req.AutomationEnabled
	}
	if req.EmailAutomationEnabled != nil {
		settings.EmailAutomationEnabled = *req.EmailAutomationEnabled
	}
	if req.WhatsappAutomationEnabled != nil {
		settings.WhatsappAutomationEnabled = *req.WhatsappAutomationEnabled
	}
	if req.Timezone != nil {
		settings.Timezone = *req.Timezone
	}

	if err := h.db.SaveSettings(c.Request.Context(), settings); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save settings"})
		return
	}
	c.JSON(http.StatusOK, settings)
}

// ListJobs reports the state of the scheduled background jobs.
func (h *Handler) ListJobs(c *gin.Context) {
	sched := h.engine.Scheduler()
	if sched == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "scheduler not running"})
		return
	}
	c.JSON(http.StatusOK, sched.GetJobs())
}

// RunJob manually triggers a scheduled job.
func (h *Handler) RunJob(c *gin.Context) {
	sched := h.engine.Scheduler()
	if sched == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "scheduler not running"})
		return
	}
	if err := sched.RunJobNow(c.Param("id")); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "triggered"})
}

// InvalidateLeaderboard drops the cached leaderboard so the next request
// recomputes it.
func (h *Handler) InvalidateLeaderboard(c *gin.Context) {
	if err := h.engine.InvalidateLeaderboard(c.Request.Context(), c.Query("platform")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to invalidate cache"})
		return
	}
	c.Status(http.StatusNoContent)
}
