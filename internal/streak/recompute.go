package streak

import (
	"time"

	"songBirdAPI/internal/calendar"
)

// FromHistory recomputes the streak from scratch out of same-day entry days,
// most recent first. It walks backward from today, one calendar day at a
// time, and stops at the first missing day; the day of now itself must have
// an entry for the streak to be non-zero.
//
// Freeze and restore are ignored here on purpose: this is the ground-truth
// reconciliation path used to detect drift in the incremental state, not a
// replacement for Evaluate.
func FromHistory(now time.Time, days []time.Time) int {
	streak := 0
	expected := calendar.DayOf(now)

	for _, d := range days {
		day := calendar.DayOf(d)
		switch {
		case day.Equal(expected):
			streak++
			expected = expected.AddDate(0, 0, -1)
		case day.After(expected):
			// Duplicate entry for an already counted day.
			continue
		default:
			return streak
		}
	}

	return streak
}
