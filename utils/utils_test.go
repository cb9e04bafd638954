package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDaysInclusive(t *testing.T) {
	tests := []struct {
		name     string
		start    string
		end      string
		expected int
	}{
		{name: "Same day", start: "2025-01-10", end: "2025-01-10", expected: 1},
		{name: "Three days", start: "2025-01-10", end: "2025-01-12", expected: 3},
		{name: "Across month", start: "2025-01-30", end: "2025-02-02", expected: 4},
		{name: "Across DST change", start: "2025-03-29", end: "2025-03-31", expected: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DaysInclusive(MustParseDate(tt.start), MustParseDate(tt.end)))
		})
	}
}

func TestNormalizeCode(t *testing.T) {
	assert.Equal(t, "XJ9K2P", NormalizeCode("  xj9k2p "))
}

func TestNormalizePhone(t *testing.T) {
	assert.Equal(t, "+905321112233", NormalizePhone(" +90 (532) 111-22-33 "))
}

func TestUnique(t *testing.T) {
	got := Unique([]string{"a", "b", "a", "c", "b"}, func(s string) string { return s })
	assert.Equal(t, []string{"a", "b", "c"}, got)
}

func TestFakeClock(t *testing.T) {
	start := time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)
	c := NewFakeClock(start)
	c.Advance(61 * time.Second)
	assert.Equal(t, start.Add(61*time.Second), c.Now())
}

func TestParseTimeOnDate(t *testing.T) {
	base := time.Date(2025, 1, 10, 0, 0, 0, 0, IstanbulTZ)
	got, err := ParseTimeOnDate(base, "08:30")
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2025, 1, 10, 8, 30, 0, 0, IstanbulTZ), got)
}
