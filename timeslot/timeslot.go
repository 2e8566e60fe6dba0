// Package timeslot implements the half-hour reminder windows users pick
// their daily grind time from.
package timeslot

import (
	"fmt"
	"strings"
	"time"
)

// Slot is a half-open window of minutes within a day. End may be smaller
// than Start for windows that cross midnight.
type Slot struct {
	Start int // minutes since midnight, inclusive
	End   int // minutes since midnight, exclusive
}

// Current returns the half-hour slot containing now, aligned to :00/:30.
func Current(now time.Time) Slot {
	start := now.Hour()*60 + (now.Minute()/30)*30
	return Slot{Start: start, End: start + 30}
}

// Parse reads a "HH:MM-HH:MM" window.
func Parse(s string) (Slot, error) {
	parts := strings.SplitN(s, "-", 2)
	if len(parts) != 2 {
		return Slot{}, fmt.Errorf("invalid time slot %q", s)
	}
	start, err := parseMinutes(parts[0])
	if err != nil {
		return Slot{}, err
	}
	end, err := parseMinutes(parts[1])
	if err != nil {
		return Slot{}, err
	}
	return Slot{Start: start, End: end}, nil
}

// ParseClock reads a "HH:MM" time of day into minutes since midnight.
func ParseClock(s string) (int, error) {
	return parseMinutes(s)
}

func parseMinutes(s string) (int, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid clock time %q: %w", s, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// Contains reports whether the given minutes-since-midnight value falls in
// the slot. A slot whose End is at or before Start is treated as wrapping
// past midnight.
func (s Slot) Contains(minutes int) bool {
	end := s.End
	if end <= s.Start {
		end += 24 * 60
	}
	if s.Start <= minutes && minutes < end {
		return true
	}
	// Times early in the day can belong to a window that started the
	// previous evening.
	wrapped := minutes + 24*60
	return s.Start <= wrapped && wrapped < end
}

// String renders the slot back to "HH:MM-HH:MM".
func (s Slot) String() string {
	return fmt.Sprintf("%s-%s", formatMinutes(s.Start), formatMinutes(s.End%(24*60)))
}

func formatMinutes(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}
