package database

import (
	"time"

	"github.com/dsagrinders/dsagrinders/roast"
	"gorm.io/gorm"
)

// User roles.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// PendingUsernamePrefix marks accounts that registered before completing
// onboarding. Users carrying it never appear on the leaderboard and never
// receive reminders.
const PendingUsernamePrefix = "pending_"

// User represents a registered account.
type User struct {
	gorm.Model
	Name             string `gorm:"not null"`
	Email            string `gorm:"uniqueIndex;not null"`
	PasswordHash     string `gorm:"not null"`
	LeetcodeUsername string `gorm:"uniqueIndex;not null"`
	PhoneNumber      string
	Role             string `gorm:"not null;default:user"`

	// DailyGrindTime is the preferred reminder time of day as "HH:MM".
	DailyGrindTime string
	// RoastIntensity is the preferred reminder tone, one of mild, medium, savage.
	RoastIntensity string `gorm:"default:medium"`
	// EmailEnabled and WhatsappEnabled toggle the per-user channels.
	EmailEnabled    bool `gorm:"default:true"`
	WhatsappEnabled bool `gorm:"default:false"`

	OnboardingCompleted bool `gorm:"default:false"`
}

// IsAdmin reports whether the user has the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsPending reports whether the account has not finished onboarding yet.
func (u *User) IsPending() bool {
	return !u.OnboardingCompleted ||
		u.LeetcodeUsername == "" ||
		len(u.LeetcodeUsername) >= len(PendingUsernamePrefix) &&
			u.LeetcodeUsername[:len(PendingUsernamePrefix)] == PendingUsernamePrefix
}

// Intensity returns the user's roast intensity, defaulting to medium.
func (u *User) Intensity() roast.Intensity {
	return roast.ParseIntensity(u.RoastIntensity)
}

// Settings is the singleton automation configuration row.
type Settings struct {
	gorm.Model
	AutomationEnabled         bool `gorm:"default:true"`
	EmailAutomationEnabled    bool `gorm:"default:true"`
	WhatsappAutomationEnabled bool `gorm:"default:false"`

	// Timezone overrides the configured IANA zone for slot resolution.
	Timezone string

	EmailsSentToday   int
	WhatsappSentToday int
	LastEmailSent     *time.Time
	LastWhatsappSent  *time.Time
}

// RoastMessage is a pre-generated reminder message for one
// (date, intensity) pair.
type RoastMessage struct {
	gorm.Model
	// Date is the generation day as "YYYY-MM-DD" in the configured zone.
	Date      string          `gorm:"index:idx_roast_date_intensity,unique;not null"`
	Intensity roast.Intensity `gorm:"index:idx_roast_date_intensity,unique;not null"`
	// FullMessage is the template text, still carrying the [NAME] placeholder.
	FullMessage string `gorm:"not null"`
}

// SentCounters is the per-run delivery tally folded into Settings after a
// dispatch run completes.
type SentCounters struct {
	Emails   int
	Whatsapp int
}
