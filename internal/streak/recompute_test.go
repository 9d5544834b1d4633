package streak

import (
	"testing"
	"time"

	"songBirdAPI/internal/calendar"
)

func historyDays(offsets ...int) []time.Time {
	days := make([]time.Time, 0, len(offsets))
	for _, n := range offsets {
		days = append(days, calendar.DayOf(now).AddDate(0, 0, -n))
	}
	return days
}

func TestFromHistory(t *testing.T) {
	cases := []struct {
		name    string
		offsets []int
		want    int
	}{
		{"empty history", nil, 0},
		{"only today", []int{0}, 1},
		{"five consecutive days", []int{0, 1, 2, 3, 4}, 5},
		{"stops at first gap", []int{0, 1, 3, 4}, 2},
		{"no entry today", []int{1, 2, 3}, 0},
		{"single old entry", []int{10}, 0},
		{"duplicate days collapse", []int{0, 0, 1, 1, 2}, 3},
	}

	for _, tc := range cases {
		if got := FromHistory(now, historyDays(tc.offsets...)); got != tc.want {
			t.Errorf("%s: FromHistory = %d, want %d", tc.name, got, tc.want)
		}
	}
}

func TestFromHistoryIgnoresTimeOfDay(t *testing.T) {
	days := []time.Time{
		now.Add(-2 * time.Hour),                  // today, afternoon
		calendar.DayOf(now).AddDate(0, 0, -1).Add(23 * time.Hour), // yesterday, late evening
	}
	if got := FromHistory(now, days); got != 2 {
		t.Errorf("Expected streak 2, got %d", got)
	}
}
