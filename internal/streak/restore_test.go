package streak

import (
	"errors"
	"testing"
	"time"

	"songBirdAPI/internal/calendar"
)

func TestRestoreWhenNeverUsed(t *testing.T) {
	e := newTestEngine()

	state := State{CurrentStreak: 12, LongestStreak: 12, LastStreakDate: daysAgo(4)}
	restored, err := e.Restore(state, now)
	if err != nil {
		t.Fatalf("Restore failed: %v", err)
	}

	if restored.LastRestoreAt == nil || !restored.LastRestoreAt.Equal(now) {
		t.Errorf("Expected last_restore_at = now, got %v", restored.LastRestoreAt)
	}
	if restored.CurrentStreak != 12 {
		t.Errorf("Restore must not change the streak count, got %d", restored.CurrentStreak)
	}
	if !restored.LastStreakDate.Equal(calendar.Yesterday(now)) {
		t.Errorf("Restore should bridge the gap to yesterday, got %v", restored.LastStreakDate)
	}
}

func TestRestoreCooldown(t *testing.T) {
	e := newTestEngine()

	state := State{CurrentStreak: 5, LastStreakDate: daysAgo(3)}

	restored, err := e.Restore(state, now)
	if err != nil {
		t.Fatalf("First restore failed: %v", err)
	}

	// Ten days later, a second break and a second restore attempt.
	later := now.AddDate(0, 0, 10)
	_, err = e.Restore(restored, later)
	if err == nil {
		t.Fatal("Second restore inside 30 days must fail")
	}

	var notEligible *RestoreNotEligibleError
	if !errors.As(err, &notEligible) {
		t.Fatalf("Expected RestoreNotEligibleError, got %T", err)
	}
	if notEligible.Remaining <= 0 || notEligible.Remaining > 20*24*time.Hour {
		t.Errorf("Expected ~20 days remaining, got %v", notEligible.Remaining)
	}
}

func TestRestoreAfterCooldownLapsed(t *testing.T) {
	e := newTestEngine()

	state := State{CurrentStreak: 5, LastStreakDate: daysAgo(3), LastRestoreAt: hoursAgo(31 * 24)}
	if _, err := e.Restore(state, now); err != nil {
		t.Errorf("Restore after the cooldown lapsed should succeed: %v", err)
	}
}

func TestRestoreResumesPriorCount(t *testing.T) {
	e := newTestEngine()

	// Streak 20, broken by a three-day gap, restore, then log today.
	state := State{CurrentStreak: 20, LongestStreak: 20, LastStreakDate: daysAgo(3)}

	out := e.Evaluate(state, now, false, false)
	if !out.CanRestore {
		t.Fatal("Expected a restorable pending break")
	}

	restored, err := e.Restore(out.State, now)
	if err != nil {
		t.Fatalf("Restore failed: %v", err)
	}

	out = e.Evaluate(restored, now, true, false)
	if out.State.CurrentStreak != 21 {
		t.Errorf("Expected streak to resume at 21 after restore, got %d", out.State.CurrentStreak)
	}
}

func TestRestoreRemaining(t *testing.T) {
	e := newTestEngine()

	if got := e.RestoreRemaining(nil, now); got != 0 {
		t.Errorf("Expected 0 remaining when never used, got %v", got)
	}

	used := now.Add(-10 * 24 * time.Hour)
	want := 20 * 24 * time.Hour
	if got := e.RestoreRemaining(&used, now); got != want {
		t.Errorf("Expected %v remaining, got %v", want, got)
	}

	old := now.Add(-45 * 24 * time.Hour)
	if got := e.RestoreRemaining(&old, now); got != 0 {
		t.Errorf("Expected 0 remaining after lapse, got %v", got)
	}
}

func TestRestoreDoesNotRewindStreakDate(t *testing.T) {
	e := newTestEngine()

	// Already confirmed today; restore must not move the date backwards.
	today := calendar.DayOf(now)
	state := State{CurrentStreak: 3, LongestStreak: 3, LastStreakDate: &today}

	restored, err := e.Restore(state, now)
	if err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if !restored.LastStreakDate.Equal(today) {
		t.Errorf("Restore rewound last_streak_date to %v", restored.LastStreakDate)
	}
}
