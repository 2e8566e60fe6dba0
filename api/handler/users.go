package handler

import (
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/dsagrinders/dsagrinders/api/middleware"
	"github.com/dsagrinders/dsagrinders/database"
	"github.com/dsagrinders/dsagrinders/roast"
	"github.com/dsagrinders/dsagrinders/timeslot"
)

type updateMeRequest struct {
	Name            *string `json:"name"`
	PhoneNumber     *string `json:"phoneNumber"`
	DailyGrindTime  *string `json:"dailyGrindTime"`
	RoastIntensity  *string `json:"roastIntensity"`
	EmailEnabled    *bool   `json:"emailEnabled"`
	WhatsappEnabled *bool   `json:"whatsappEnabled"`
}

func (h *Handler) currentUser(c *gin.Context) *database.User {
	userID := c.GetUint(middleware.UserIDKey)
	user, err := h.db.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unknown user"})
		return nil
	}
	return user
}

// Me returns the authenticated user's profile.
func (h *Handler) Me(c *gin.Context) {
	user := h.currentUser(c)
	if user == nil {
		return
	}
	c.JSON(http.StatusOK, userView(user))
}

// UpdateMe patches the authenticated user's reminder preferences. Setting
// a daily grind time completes onboarding, which makes the user eligible
// for the leaderboard and reminders.
func (h *Handler) UpdateMe(c *gin.Context) {
	user := h.currentUser(c)
	if user == nil {
		return
	}

	var req updateMeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Name != nil && *req.Name != "" {
		user.Name = *req.Name
	}
	if req.PhoneNumber != nil {
		user.PhoneNumber = *req.PhoneNumber
	}
	if req.DailyGrindTime != nil {
		if _, err := timeslot.ParseClock(*req.DailyGrindTime); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "daily grind time must be HH:MM"})
			return
		}
		user.DailyGrindTime = *req.DailyGrindTime
		user.OnboardingCompleted = true
	}
	if req.RoastIntensity != nil {
		user.RoastIntensity = string(roast.ParseIntensity(*req.RoastIntensity))
	}
	if req.EmailEnabled != nil {
		user.EmailEnabled = *req.EmailEnabled
	}
	if req.WhatsappEnabled != nil {
		user.WhatsappEnabled = *req.WhatsappEnabled
	}

	if err := h.db.UpdateUser(c.Request.Context(), user); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update user"})
		return
	}
	c.JSON(http.StatusOK, userView(user))
}

// RefreshMyStats fetches the authenticated user's current stats and
// returns the updated daily snapshot.
func (h *Handler) RefreshMyStats(c *gin.Context) {
	user := h.currentUser(c)
	if user == nil {
		return
	}

	stat, err := h.engine.UpdateDailyStats(c.Request.Context(), user)
	if err != nil {
		log.Error("Failed to refresh stats", "user", user.LeetcodeUsername, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to refresh stats"})
		return
	}
	c.JSON(http.StatusOK, stat)
}

// MyStats returns the authenticated user's latest daily snapshot.
func (h *Handler) MyStats(c *gin.Context) {
	user := h.currentUser(c)
	if user == nil {
		return
	}

	stat, err := h.stats.GetLatest(c.Request.Context(), user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load stats"})
		return
	}
	if stat == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no stats recorded yet"})
		return
	}
	c.JSON(http.StatusOK, stat)
}

// DeleteMe removes the authenticated user's account and their stored
// daily stats.
func (h *Handler) DeleteMe(c *gin.Context) {
	user := h.currentUser(c)
	if user == nil {
		return
	}

	if err := h.stats.DeleteForUser(c.Request.Context(), user.ID); err != nil {
		log.Error("Failed to delete user stats", "user_id", user.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete stats"})
		return
	}
	if err := h.db.DeleteUser(c.Request.Context(), user.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete user"})
		return
	}
	c.Status(http.StatusNoContent)
}
