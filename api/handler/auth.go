package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/dsagrinders/dsagrinders/api/models"
	"github.com/dsagrinders/dsagrinders/database"
	"github.com/dsagrinders/dsagrinders/leetcode"
)

type registerRequest struct {
	Name             string `json:"name" binding:"required"`
	Email            string `json:"email" binding:"required,email"`
	Password         string `json:"password" binding:"required,min=8"`
	LeetcodeUsername string `json:"leetcodeUsername" binding:"required"`
	PhoneNumber      string `json:"phoneNumber"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Register creates a new account. The LeetCode username is verified
// against the platform before the account is created.
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	username := strings.TrimSpace(req.LeetcodeUsername)
	if _, err := h.fetcher.FetchUserStats(c.Request.Context(), username); err != nil {
		switch {
		case errors.Is(err, leetcode.ErrUserNotFound):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "leetcode user not found"})
		case errors.Is(err, leetcode.ErrStatsUnavailable):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "leetcode profile has no public stats"})
		default:
			log.Error("Failed to verify leetcode username", "username", username, "error", err)
			c.JSON(http.StatusBadGateway, gin.H{"error": "failed to verify leetcode username"})
		}
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to hash password"})
		return
	}

	user := &database.User{
		Name:             strings.TrimSpace(req.Name),
		Email:            req.Email,
		PasswordHash:     string(hash),
		LeetcodeUsername: username,
		PhoneNumber:      strings.TrimSpace(req.PhoneNumber),
		Role:             database.RoleUser,
		EmailEnabled:     true,
	}
	if err := h.db.CreateUser(c.Request.Context(), user); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "email or leetcode username already registered"})
		return
	}

	h.respondWithToken(c, http.StatusCreated, user)
}

// Login authenticates by email and password and returns a fresh token.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.db.GetUserByEmail(c.Request.Context(), req.Email)
	if err != nil {
		// Indistinguishable from a wrong password on purpose.
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	h.respondWithToken(c, http.StatusOK, user)
}

func (h *Handler) respondWithToken(c *gin.Context, status int, user *database.User) {
	token, err := h.tokens.Generate(user.ID)
	if err != nil {
		log.Error("Failed to issue token", "user_id", user.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue token"})
		return
	}
	c.JSON(status, models.AuthResponse{Token: token, User: userView(user)})
}
