package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dsagrinders/dsagrinders/api/models"
	"github.com/dsagrinders/dsagrinders/database"
	"github.com/dsagrinders/dsagrinders/statstore"
)

func TestUpdateMeCompletesOnboarding(t *testing.T) {
	s := newTestServer(t)
	user := s.createUser(t, "Priya Sharma", "priya@example.com", "priya", "hunter2hunter2")
	router := s.router()

	w := doJSON(t, router, http.MethodPatch, "/api/me", jsonBody(t, map[string]any{
		"dailyGrindTime":  "09:00",
		"roastIntensity":  "savage",
		"whatsappEnabled": true,
		"phoneNumber":     "+911234567890",
	}), authHeader(t, s, user.ID))

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var view models.UserView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Equal(t, "09:00", view.DailyGrindTime)
	assert.Equal(t, "savage", view.RoastIntensity)
	assert.True(t, view.OnboardingCompleted)
	assert.True(t, view.WhatsappEnabled)

	stored, err := s.db.GetUserByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.True(t, stored.OnboardingCompleted)
}

func TestUpdateMeRejectsBadGrindTime(t *testing.T) {
	s := newTestServer(t)
	user := s.createUser(t, "Priya Sharma", "priya@example.com", "priya", "hunter2hunter2")

	w := doJSON(t, s.router(), http.MethodPatch, "/api/me", jsonBody(t, map[string]any{
		"dailyGrindTime": "9 in the morning",
	}), authHeader(t, s, user.ID))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateMeUnknownIntensityFallsBackToMedium(t *testing.T) {
	s := newTestServer(t)
	user := s.createUser(t, "Priya Sharma", "priya@example.com", "priya", "hunter2hunter2")

	w := doJSON(t, s.router(), http.MethodPatch, "/api/me", jsonBody(t, map[string]any{
		"roastIntensity": "nuclear",
	}), authHeader(t, s, user.ID))

	require.Equal(t, http.StatusOK, w.Code)
	var view models.UserView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Equal(t, "medium", view.RoastIntensity)
}

func TestRefreshMyStats(t *testing.T) {
	s := newTestServer(t)
	user := s.createUser(t, "Priya Sharma", "priya@example.com", "priya", "hunter2hunter2")

	s.engine.On("UpdateDailyStats", mock.Anything, mock.MatchedBy(func(u *database.User) bool {
		return u.ID == user.ID
	})).Return(&statstore.DailyStat{UserID: user.ID, Date: "2026-08-28", Total: 150, TodayPoints: 3}, nil)

	w := doJSON(t, s.router(), http.MethodPost, "/api/me/stats/refresh", nil, authHeader(t, s, user.ID))

	require.Equal(t, http.StatusOK, w.Code)
	var stat statstore.DailyStat
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stat))
	assert.Equal(t, 3, stat.TodayPoints)
}

func TestDeleteMe(t *testing.T) {
	s := newTestServer(t)
	user := s.createUser(t, "Priya Sharma", "priya@example.com", "priya", "hunter2hunter2")

	s.stats.On("DeleteForUser", mock.Anything, user.ID).Return(nil)

	w := doJSON(t, s.router(), http.MethodDelete, "/api/me", nil, authHeader(t, s, user.ID))
	require.Equal(t, http.StatusNoContent, w.Code)

	_, err := s.db.GetUserByID(context.Background(), user.ID)
	assert.ErrorIs(t, err, database.ErrUserNotFound)
	s.stats.AssertExpectations(t)
}

func TestMeRequiresAuth(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s.router(), http.MethodGet, "/api/me", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
