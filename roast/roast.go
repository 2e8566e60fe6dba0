// Package roast holds the reminder message templates and their
// intensity levels.
package roast

import (
	"math/rand"
	"strings"
)

// Intensity is the user-selected tone level for reminder messages.
type Intensity string

const (
	IntensityMild   Intensity = "mild"
	IntensityMedium Intensity = "medium"
	IntensitySavage Intensity = "savage"
)

// Intensities lists all valid intensities in escalation order.
var Intensities = []Intensity{IntensityMild, IntensityMedium, IntensitySavage}

// ParseIntensity maps a stored string to an intensity.
// Unknown values fall back to medium.
func ParseIntensity(s string) Intensity {
	switch Intensity(strings.ToLower(s)) {
	case IntensityMild:
		return IntensityMild
	case IntensitySavage:
		return IntensitySavage
	default:
		return IntensityMedium
	}
}

// NamePlaceholder is substituted with the recipient's first name before sending.
const NamePlaceholder = "[NAME]"

var templates = map[Intensity][]string{
	IntensityMild: {
		"Hey [NAME], your daily problem is still waiting. One solve keeps the streak alive!",
		"[NAME], quick reminder: the leaderboard moved while you were away. Ten minutes on one easy problem fixes that.",
		"A gentle nudge, [NAME]: today's grind slot is open. Pick a problem and get it done.",
		"[NAME], consistency beats intensity. One problem today is all it takes.",
	},
	IntensityMedium: {
		"[NAME], Netflix band kar, LeetCode khol! The leaderboard doesn't update itself.",
		"Still stuck at zero points today, [NAME]? Your rivals already banked theirs.",
		"[NAME], your streak is one lazy evening away from dying. Solve something.",
		"Array reverse karna nahi aata, [NAME]? Career bhi reverse ho jayegi!",
	},
	IntensitySavage: {
		"Abe [NAME], DSA kar varna Swiggy pe delivery karega!",
		"[NAME], tere dost Google join kar rahe hain, tu abhi bhi Two Sum mein atka hai!",
		"Zero points again, [NAME]? Teri struggle story LinkedIn pe viral hogi... galat reason se.",
		"[NAME], ek problem roz bhi nahi hoti? Beta campus mein hi reh jayega!",
	},
}

// Pick returns a random template for the given intensity.
func Pick(intensity Intensity) string {
	pool := templates[intensity]
	if len(pool) == 0 {
		pool = templates[IntensityMedium]
	}
	return pool[rand.Intn(len(pool))]
}

// Personalize substitutes the name placeholder with the recipient's first name.
func Personalize(message, name string) string {
	return strings.ReplaceAll(message, NamePlaceholder, FirstName(name))
}

// FirstName returns the first word of a display name.
func FirstName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return name
	}
	if i := strings.IndexByte(name, ' '); i > 0 {
		return name[:i]
	}
	return name
}
