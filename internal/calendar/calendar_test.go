package calendar

import (
	"testing"
	"time"
)

func TestDayOf(t *testing.T) {
	late := time.Date(2025, 3, 14, 23, 59, 59, 0, time.UTC)
	day := DayOf(late)

	if day.Hour() != 0 || day.Minute() != 0 || day.Second() != 0 {
		t.Errorf("DayOf should truncate to midnight, got %v", day)
	}
	if day.Day() != 14 {
		t.Errorf("Expected day 14, got %d", day.Day())
	}
}

func TestDayOfNormalizesZone(t *testing.T) {
	// 01:30 on March 15 in UTC+2 is still March 14 in UTC.
	zone := time.FixedZone("EET", 2*60*60)
	local := time.Date(2025, 3, 15, 1, 30, 0, 0, zone)

	day := DayOf(local)
	if day.Day() != 14 {
		t.Errorf("Expected UTC day 14, got %d", day.Day())
	}
}

func TestDaysBetween(t *testing.T) {
	base := time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)

	cases := []struct {
		name string
		a, b time.Time
		want int
	}{
		{"same day", base, base.Add(13 * time.Hour), 0},
		{"next day", base, base.AddDate(0, 0, 1), 1},
		{"two days", base, base.AddDate(0, 0, 2), 2},
		{"negative", base, base.AddDate(0, 0, -3), -3},
		{"across month boundary", time.Date(2025, 2, 28, 22, 0, 0, 0, time.UTC), time.Date(2025, 3, 1, 2, 0, 0, 0, time.UTC), 1},
		{"across year boundary", time.Date(2024, 12, 31, 12, 0, 0, 0, time.UTC), time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC), 1},
	}

	for _, tc := range cases {
		if got := DaysBetween(tc.a, tc.b); got != tc.want {
			t.Errorf("%s: DaysBetween = %d, want %d", tc.name, got, tc.want)
		}
	}
}

func TestYesterday(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 30, 0, 0, time.UTC)
	y := Yesterday(now)
	if y.Year() != 2024 || y.Month() != 12 || y.Day() != 31 {
		t.Errorf("Expected 2024-12-31, got %v", y)
	}
}

func TestSameDay(t *testing.T) {
	a := time.Date(2025, 6, 1, 0, 0, 1, 0, time.UTC)
	b := time.Date(2025, 6, 1, 23, 59, 0, 0, time.UTC)
	if !SameDay(a, b) {
		t.Error("instants on the same UTC day should match")
	}
	if SameDay(a, b.Add(time.Minute)) {
		t.Error("instants on different UTC days should not match")
	}
}
