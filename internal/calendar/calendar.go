// Package calendar resolves instants to canonical calendar days.
//
// The whole service uses one reference calendar: UTC. Day boundaries are UTC
// midnights regardless of the client's locale, so "today" means the same thing
// for every replica and every device.
package calendar

import "time"

// DayOf truncates an instant to its UTC calendar day (midnight UTC).
func DayOf(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns b - a in whole calendar days. Zero when both instants
// fall on the same day, negative when b precedes a.
func DaysBetween(a, b time.Time) int {
	// UTC days are always exactly 24h, so hour division is safe here.
	return int(DayOf(b).Sub(DayOf(a)).Hours() / 24)
}

// Yesterday returns the calendar day before the day t falls on.
func Yesterday(t time.Time) time.Time {
	return DayOf(t).AddDate(0, 0, -1)
}

// SameDay reports whether two instants fall on the same UTC calendar day.
func SameDay(a, b time.Time) bool {
	return DayOf(a).Equal(DayOf(b))
}
