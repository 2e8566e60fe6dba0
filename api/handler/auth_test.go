package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dsagrinders/dsagrinders/api/models"
	"github.com/dsagrinders/dsagrinders/leetcode"
)

func TestRegister(t *testing.T) {
	s := newTestServer(t)
	router := s.router()

	s.fetcher.On("FetchUserStats", mock.Anything, "priya").
		Return(&leetcode.UserStats{Username: "priya", Total: 100}, nil)

	w := doJSON(t, router, http.MethodPost, "/api/auth/register", jsonBody(t, map[string]string{
		"name":             "Priya Sharma",
		"email":            "Priya@Example.com",
		"password":         "hunter2hunter2",
		"leetcodeUsername": "priya",
	}), nil)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp models.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "priya@example.com", resp.User.Email)
	assert.Equal(t, "priya", resp.User.LeetcodeUsername)
	assert.False(t, resp.User.OnboardingCompleted)

	// the token works against a protected route
	wMe := doJSON(t, router, http.MethodGet, "/api/me", nil,
		map[string]string{"Authorization": "Bearer " + resp.Token})
	assert.Equal(t, http.StatusOK, wMe.Code)
}

func TestRegisterUnknownLeetcodeUser(t *testing.T) {
	s := newTestServer(t)

	s.fetcher.On("FetchUserStats", mock.Anything, "nobody").
		Return(nil, leetcode.ErrUserNotFound)

	w := doJSON(t, s.router(), http.MethodPost, "/api/auth/register", jsonBody(t, map[string]string{
		"name":             "Nobody",
		"email":            "nobody@example.com",
		"password":         "hunter2hunter2",
		"leetcodeUsername": "nobody",
	}), nil)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	s := newTestServer(t)
	s.createUser(t, "Priya Sharma", "priya@example.com", "priya", "hunter2hunter2")

	s.fetcher.On("FetchUserStats", mock.Anything, "priya2").
		Return(&leetcode.UserStats{Username: "priya2"}, nil)

	w := doJSON(t, s.router(), http.MethodPost, "/api/auth/register", jsonBody(t, map[string]string{
		"name":             "Priya Again",
		"email":            "priya@example.com",
		"password":         "hunter2hunter2",
		"leetcodeUsername": "priya2",
	}), nil)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRegisterValidation(t *testing.T) {
	s := newTestServer(t)

	// password too short
	w := doJSON(t, s.router(), http.MethodPost, "/api/auth/register", jsonBody(t, map[string]string{
		"name":             "Priya",
		"email":            "priya@example.com",
		"password":         "short",
		"leetcodeUsername": "priya",
	}), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogin(t *testing.T) {
	s := newTestServer(t)
	s.createUser(t, "Priya Sharma", "priya@example.com", "priya", "hunter2hunter2")

	w := doJSON(t, s.router(), http.MethodPost, "/api/auth/login", jsonBody(t, map[string]string{
		"email":    "priya@example.com",
		"password": "hunter2hunter2",
	}), nil)

	require.Equal(t, http.StatusOK, w.Code)
	var resp models.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
}

func TestLoginWrongPassword(t *testing.T) {
	s := newTestServer(t)
	s.createUser(t, "Priya Sharma", "priya@example.com", "priya", "hunter2hunter2")

	w := doJSON(t, s.router(), http.MethodPost, "/api/auth/login", jsonBody(t, map[string]string{
		"email":    "priya@example.com",
		"password": "wrong-password",
	}), nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLoginUnknownEmail(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s.router(), http.MethodPost, "/api/auth/login", jsonBody(t, map[string]string{
		"email":    "ghost@example.com",
		"password": "hunter2hunter2",
	}), nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
