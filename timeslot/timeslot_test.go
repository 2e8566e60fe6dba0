package timeslot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurrent(t *testing.T) {
	tests := []struct {
		now  string
		want Slot
	}{
		{"09:00", Slot{540, 570}},
		{"09:15", Slot{540, 570}},
		{"09:29", Slot{540, 570}},
		{"09:30", Slot{570, 600}},
		{"23:45", Slot{1410, 1440}},
		{"00:00", Slot{0, 30}},
	}
	for _, tt := range tests {
		now, err := time.Parse("15:04", tt.now)
		require.NoError(t, err)
		assert.Equal(t, tt.want, Current(now), "now=%s", tt.now)
	}
}

func TestParse(t *testing.T) {
	slot, err := Parse("09:00-09:30")
	require.NoError(t, err)
	assert.Equal(t, Slot{540, 570}, slot)

	slot, err = Parse("23:30-00:00")
	require.NoError(t, err)
	assert.Equal(t, Slot{1410, 0}, slot)

	_, err = Parse("9am-10am")
	assert.Error(t, err)

	_, err = Parse("09:00")
	assert.Error(t, err)
}

func TestContains(t *testing.T) {
	tests := []struct {
		slot string
		at   string
		want bool
	}{
		{"09:00-09:30", "09:15", true},
		{"09:00-09:30", "09:00", true},
		{"09:00-09:30", "09:30", false},
		{"09:00-09:30", "08:59", false},
		// window crossing midnight
		{"23:30-00:00", "23:50", true},
		{"23:30-00:00", "00:10", false},
		{"23:30-01:00", "00:30", true},
		{"23:30-01:00", "01:00", false},
		{"23:30-01:00", "12:00", false},
	}
	for _, tt := range tests {
		slot, err := Parse(tt.slot)
		require.NoError(t, err)
		at, err := ParseClock(tt.at)
		require.NoError(t, err)
		assert.Equal(t, tt.want, slot.Contains(at), "%s in %s", tt.at, tt.slot)
	}
}

func TestString(t *testing.T) {
	assert.Equal(t, "09:00-09:30", Slot{540, 570}.String())
	assert.Equal(t, "23:30-00:00", Slot{1410, 1440}.String())
}
