package handler

import (
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/dsagrinders/dsagrinders/database"
)

// TimeSlotSender triggers one roast dispatch run. An optional slot query
// parameter ("HH:MM-HH:MM") overrides the current slot, which external
// cron services use to catch up on a missed window.
func (h *Handler) TimeSlotSender(c *gin.Context) {
	result, err := h.engine.Dispatch(c.Request.Context(), c.Query("slot"))
	if err != nil {
		if errors.Is(err, database.ErrNoSettings) {
			c.JSON(http.StatusNotFound, gin.H{"error": "automation settings not initialized"})
			return
		}
		log.Error("Roast dispatch failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

// TestTimeSlots is the dry-run companion of TimeSlotSender, returning who
// the slot would roast without sending anything.
func (h *Handler) TestTimeSlots(c *gin.Context) {
	preview, err := h.engine.PreviewSlot(c.Request.Context(), c.Query("slot"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, preview)
}
