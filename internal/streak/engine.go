package streak

import (
	"time"

	"songBirdAPI/internal/calendar"
)

// Engine evaluates streak transitions against a fixed rule configuration.
type Engine struct {
	cfg Config
}

func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// Evaluate applies one streak transition. hasToday and hasYesterday are the
// same-day-entry facts for the calendar days of now and now-1 (an entry only
// counts if its logical date and its creation time fall on the same UTC day,
// so backdated entries can never extend a streak).
//
// Rules, first match wins:
//  1. no history: start at 1 if today has an entry, else 0
//  2. already counted today: no change (idempotent)
//  3. gap of one day: today's entry extends the streak; freeze regenerates
//     at >= FreezeRegenDays
//  4. one missed day: an available freeze absorbs it; otherwise the streak is
//     broken unless a restore is still available this window
//  5. two or more missed days: no freeze can cover it, same break/restore
//     handling as rule 4
//
// Evaluate never mutates its input and performs no I/O.
func (e *Engine) Evaluate(state State, now time.Time, hasToday, hasYesterday bool) Outcome {
	today := calendar.DayOf(now)
	prev := state
	out := Outcome{State: state}

	switch {
	case state.LastStreakDate == nil:
		// No streak history yet.
		if hasToday {
			out.State.CurrentStreak = 1
			out.State.LastStreakDate = &today
		} else {
			out.State.CurrentStreak = 0
		}

	default:
		gap := calendar.DaysBetween(*state.LastStreakDate, today)

		switch {
		case gap <= 0:
			// Already counted today. Second and later entries on the same
			// day must not double-increment.

		case gap == 1:
			if hasToday {
				out.State.CurrentStreak++
				out.State.LastStreakDate = &today
				if out.State.CurrentStreak >= e.cfg.FreezeRegenDays && !out.State.FreezeAvailable {
					out.State.FreezeAvailable = true
				}
			}

		case gap == 2 && !hasYesterday && state.FreezeAvailable:
			// Exactly one day missed and the freeze is held: consume it.
			// The streak count is untouched, the gap is absorbed.
			out.State.FreezeAvailable = false
			out.State.FreezeUsedAt = &now
			out.FrozenToday = true
			if hasToday {
				out.State.LastStreakDate = &today
			}

		case gap == 2 && state.FreezeAvailable:
			// Yesterday has a same-day entry that was never evaluated.
			// Nothing to decide on this call.

		default:
			// Broken: one missed day without a freeze, or a multi-day gap.
			if e.CanRestore(state.LastRestoreAt, now) {
				// Leave the state recoverable until the user restores or
				// the window lapses.
				out.CanRestore = true
			} else if hasToday {
				out.State.CurrentStreak = 1
				out.State.LastStreakDate = &today
			} else {
				out.State.CurrentStreak = 0
			}
		}
	}

	if out.State.CurrentStreak > out.State.LongestStreak {
		out.State.LongestStreak = out.State.CurrentStreak
	}

	out.Changed = !statesEqual(prev, out.State)

	if hasToday && out.Changed && out.State.CurrentStreak != prev.CurrentStreak {
		if m, ok := Crossed(prev.CurrentStreak, out.State.CurrentStreak, e.cfg.Milestones); ok {
			out.Milestones = append(out.Milestones, m)
		}
	}

	return out
}

// Crossed reports the milestone reached when a streak moves from old to
// fresh. It fires at most once per crossing: a streak holding steady at a
// milestone value never re-triggers it.
func Crossed(old, fresh int, milestones []int) (int, bool) {
	if fresh == old {
		return 0, false
	}
	for _, m := range milestones {
		if fresh == m {
			return m, true
		}
	}
	return 0, false
}

func statesEqual(a, b State) bool {
	return a.CurrentStreak == b.CurrentStreak &&
		a.LongestStreak == b.LongestStreak &&
		a.FreezeAvailable == b.FreezeAvailable &&
		timesEqual(a.LastStreakDate, b.LastStreakDate) &&
		timesEqual(a.FreezeUsedAt, b.FreezeUsedAt) &&
		timesEqual(a.LastRestoreAt, b.LastRestoreAt)
}

func timesEqual(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
