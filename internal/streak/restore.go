package streak

import (
	"time"

	"songBirdAPI/internal/calendar"
)

// CanRestore reports whether the manual restore is available: never used, or
// used at least one full cooldown window ago.
func (e *Engine) CanRestore(lastRestoreAt *time.Time, now time.Time) bool {
	if lastRestoreAt == nil {
		return true
	}
	return now.Sub(*lastRestoreAt) >= e.cfg.RestoreCooldown
}

// RestoreRemaining returns how long until the restore becomes available
// again. Zero when it is available now.
func (e *Engine) RestoreRemaining(lastRestoreAt *time.Time, now time.Time) time.Duration {
	if lastRestoreAt == nil {
		return 0
	}
	remaining := e.cfg.RestoreCooldown - now.Sub(*lastRestoreAt)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Restore clears a pending break. It stamps the cooldown and bridges the gap
// by moving LastStreakDate forward to yesterday, so the next same-day entry
// continues the pre-break count instead of starting over at day one. The
// streak count itself is not modified here.
//
// Returns *RestoreNotEligibleError inside the cooldown window.
func (e *Engine) Restore(state State, now time.Time) (State, error) {
	if !e.CanRestore(state.LastRestoreAt, now) {
		return state, &RestoreNotEligibleError{Remaining: e.RestoreRemaining(state.LastRestoreAt, now)}
	}

	state.LastRestoreAt = &now

	yesterday := calendar.Yesterday(now)
	if state.LastStreakDate != nil && state.LastStreakDate.Before(yesterday) {
		state.LastStreakDate = &yesterday
	}

	return state, nil
}
