// Package models contains the view types served by the HTTP API.
package models

import "time"

// LeaderboardEntry is one ranked row of the leaderboard.
type LeaderboardEntry struct {
	Rank             int    `json:"rank"`
	UserID           uint   `json:"userId"`
	Name             string `json:"name"`
	LeetcodeUsername string `json:"leetcodeUsername"`
	Easy             int    `json:"easy"`
	Medium           int    `json:"medium"`
	Hard             int    `json:"hard"`
	TotalSolved      int    `json:"totalSolved"`
	Score            int    `json:"score"`
	TodayPoints      int    `json:"todayPoints"`
	Ranking          int    `json:"ranking,omitempty"`
}

// Activity is one recently solved problem in the activity feed.
type Activity struct {
	UserName  string    `json:"userName"`
	Title     string    `json:"title"`
	TitleSlug string    `json:"titleSlug"`
	SolvedAt  time.Time `json:"solvedAt"`
	TimeAgo   string    `json:"timeAgo"`
}

// LeaderboardResult is the full leaderboard payload, cached as a unit.
type LeaderboardResult struct {
	Mode        string             `json:"mode"`
	Platform    string             `json:"platform"`
	Entries     []LeaderboardEntry `json:"entries"`
	Activities  []Activity         `json:"activities"`
	GeneratedAt time.Time          `json:"generatedAt"`
}

// UserView is the API representation of a registered user.
type UserView struct {
	ID                  uint   `json:"id"`
	Name                string `json:"name"`
	Email               string `json:"email"`
	LeetcodeUsername    string `json:"leetcodeUsername"`
	PhoneNumber         string `json:"phoneNumber,omitempty"`
	Role                string `json:"role"`
	DailyGrindTime      string `json:"dailyGrindTime"`
	RoastIntensity      string `json:"roastIntensity"`
	EmailEnabled        bool   `json:"emailEnabled"`
	WhatsappEnabled     bool   `json:"whatsappEnabled"`
	OnboardingCompleted bool   `json:"onboardingCompleted"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	Token string   `json:"token"`
	User  UserView `json:"user"`
}
