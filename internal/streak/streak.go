// Package streak implements the streak continuity engine: the pure decision
// logic that extends, freezes, breaks, or restores a user's consecutive-day
// logging streak. All I/O (entry lookups, persistence, event delivery) lives
// in the service layer; everything here is side-effect free.
package streak

import (
	"fmt"
	"time"
)

// State is the persisted per-user streak record. It is owned exclusively by
// this subsystem and mutated only through Engine.Evaluate and Engine.Restore.
type State struct {
	CurrentStreak   int        `json:"current_streak" db:"current_streak"`
	LongestStreak   int        `json:"longest_streak" db:"longest_streak"`
	LastStreakDate  *time.Time `json:"last_streak_date" db:"last_streak_date"`
	FreezeAvailable bool       `json:"freeze_available" db:"freeze_available"`
	FreezeUsedAt    *time.Time `json:"freeze_used_at" db:"freeze_used_at"`
	LastRestoreAt   *time.Time `json:"last_restore_at" db:"last_restore_at"`
}

// Outcome is the result of evaluating one transition.
type Outcome struct {
	State       State
	Changed     bool  // state differs from the input and must be persisted
	FrozenToday bool  // the freeze was consumed on this evaluation
	CanRestore  bool  // streak is in a pending break the user may restore
	Milestones  []int // thresholds crossed by this evaluation, usually empty
}

// Result is the API-facing summary returned by the streak endpoints.
type Result struct {
	CurrentStreak     int   `json:"current_streak"`
	LongestStreak     int   `json:"longest_streak"`
	FreezeAvailable   bool  `json:"freeze_available"`
	FrozenToday       bool  `json:"frozen_today"`
	CanRestore        bool  `json:"can_restore"`
	MilestonesCrossed []int `json:"milestones_crossed"`
}

// Config holds the tunable rules of the engine. The milestone set is closed
// and checked by exact equality, never by range.
type Config struct {
	Milestones      []int
	FreezeRegenDays int
	RestoreCooldown time.Duration
}

func DefaultConfig() Config {
	return Config{
		Milestones:      []int{7, 30, 50, 100, 200, 365},
		FreezeRegenDays: 7,
		RestoreCooldown: 30 * 24 * time.Hour,
	}
}

// RestoreNotEligibleError reports a restore attempt inside the cooldown
// window. It is a normal negative result, surfaced to the UI, not a fault.
type RestoreNotEligibleError struct {
	Remaining time.Duration
}

func (e *RestoreNotEligibleError) Error() string {
	return fmt.Sprintf("streak restore not eligible for another %s", e.Remaining.Round(time.Hour))
}

// ToResult converts an evaluation outcome into the API summary.
func (o Outcome) ToResult() Result {
	milestones := o.Milestones
	if milestones == nil {
		milestones = []int{}
	}
	return Result{
		CurrentStreak:     o.State.CurrentStreak,
		LongestStreak:     o.State.LongestStreak,
		FreezeAvailable:   o.State.FreezeAvailable,
		FrozenToday:       o.FrozenToday,
		CanRestore:        o.CanRestore,
		MilestonesCrossed: milestones,
	}
}
