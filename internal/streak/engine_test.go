package streak

import (
	"testing"
	"time"

	"songBirdAPI/internal/calendar"
)

var now = time.Date(2025, 6, 15, 14, 30, 0, 0, time.UTC)

func daysAgo(n int) *time.Time {
	d := calendar.DayOf(now).AddDate(0, 0, -n)
	return &d
}

func hoursAgo(n int) *time.Time {
	t := now.Add(-time.Duration(n) * time.Hour)
	return &t
}

func newTestEngine() *Engine {
	return NewEngine(DefaultConfig())
}

func TestFirstEntryStartsStreak(t *testing.T) {
	e := newTestEngine()

	out := e.Evaluate(State{FreezeAvailable: true}, now, true, false)

	if out.State.CurrentStreak != 1 {
		t.Errorf("Expected streak 1, got %d", out.State.CurrentStreak)
	}
	if out.State.LongestStreak != 1 {
		t.Errorf("Expected longest 1, got %d", out.State.LongestStreak)
	}
	if out.State.LastStreakDate == nil || !out.State.LastStreakDate.Equal(calendar.DayOf(now)) {
		t.Errorf("Expected last streak date today, got %v", out.State.LastStreakDate)
	}
	if !out.Changed {
		t.Error("First entry must persist a change")
	}
	if len(out.Milestones) != 0 {
		t.Errorf("No milestone expected at streak 1, got %v", out.Milestones)
	}
}

func TestNoHistoryNoEntry(t *testing.T) {
	e := newTestEngine()

	out := e.Evaluate(State{}, now, false, false)

	if out.State.CurrentStreak != 0 {
		t.Errorf("Expected streak 0, got %d", out.State.CurrentStreak)
	}
	if out.Changed {
		t.Error("Nothing happened, nothing should persist")
	}
}

func TestSameDayIsIdempotent(t *testing.T) {
	e := newTestEngine()

	state := State{CurrentStreak: 4, LongestStreak: 9, LastStreakDate: daysAgo(1), FreezeAvailable: true}

	first := e.Evaluate(state, now, true, true)
	second := e.Evaluate(first.State, now, true, true)

	if first.State.CurrentStreak != 5 {
		t.Fatalf("Expected streak 5 after first call, got %d", first.State.CurrentStreak)
	}
	if second.State.CurrentStreak != 5 {
		t.Errorf("Second call same day double-incremented: got %d", second.State.CurrentStreak)
	}
	if second.Changed {
		t.Error("Second call same day must be a no-op")
	}
	if len(second.Milestones) != 0 {
		t.Errorf("Second call same day must not re-emit milestones, got %v", second.Milestones)
	}
}

func TestContiguousAdvance(t *testing.T) {
	e := newTestEngine()

	state := State{CurrentStreak: 3, LongestStreak: 3, LastStreakDate: daysAgo(1), FreezeAvailable: true}
	out := e.Evaluate(state, now, true, true)

	if out.State.CurrentStreak != 4 {
		t.Errorf("Expected streak 4, got %d", out.State.CurrentStreak)
	}
	if out.State.LongestStreak != 4 {
		t.Errorf("Expected longest 4, got %d", out.State.LongestStreak)
	}
	if !out.State.LastStreakDate.Equal(calendar.DayOf(now)) {
		t.Errorf("Expected last streak date today, got %v", out.State.LastStreakDate)
	}
}

func TestContiguousWithoutTodayEntry(t *testing.T) {
	e := newTestEngine()

	state := State{CurrentStreak: 3, LongestStreak: 8, LastStreakDate: daysAgo(1), FreezeAvailable: true}
	out := e.Evaluate(state, now, false, true)

	if out.Changed {
		t.Error("No entry today, no change expected")
	}
	if out.State.CurrentStreak != 3 {
		t.Errorf("Streak must not move without a same-day entry, got %d", out.State.CurrentStreak)
	}
}

func TestMilestoneAtSevenWithFreezeRegen(t *testing.T) {
	e := newTestEngine()

	state := State{CurrentStreak: 6, LongestStreak: 6, LastStreakDate: daysAgo(1), FreezeAvailable: false}
	out := e.Evaluate(state, now, true, true)

	if out.State.CurrentStreak != 7 {
		t.Fatalf("Expected streak 7, got %d", out.State.CurrentStreak)
	}
	if !out.State.FreezeAvailable {
		t.Error("Freeze should regenerate at 7 consecutive days")
	}
	if len(out.Milestones) != 1 || out.Milestones[0] != 7 {
		t.Errorf("Expected milestone [7], got %v", out.Milestones)
	}
}

func TestFreezeDoesNotRegenBelowThreshold(t *testing.T) {
	e := newTestEngine()

	state := State{CurrentStreak: 5, LongestStreak: 20, LastStreakDate: daysAgo(1), FreezeAvailable: false}
	out := e.Evaluate(state, now, true, true)

	if out.State.FreezeAvailable {
		t.Error("Freeze must not regenerate below the 7-day threshold")
	}
}

func TestMilestoneFiresOncePerCrossing(t *testing.T) {
	e := newTestEngine()

	state := State{CurrentStreak: 6, LongestStreak: 6, LastStreakDate: daysAgo(1), FreezeAvailable: true}

	total := 0
	out := e.Evaluate(state, now, true, true)
	total += len(out.Milestones)

	// User keeps logging the same day.
	for i := 0; i < 3; i++ {
		out = e.Evaluate(out.State, now, true, true)
		total += len(out.Milestones)
	}

	// Next day, streak moves to 8.
	tomorrow := now.AddDate(0, 0, 1)
	out = e.Evaluate(out.State, tomorrow, true, true)
	total += len(out.Milestones)

	if out.State.CurrentStreak != 8 {
		t.Fatalf("Expected streak 8, got %d", out.State.CurrentStreak)
	}
	if total != 1 {
		t.Errorf("Expected exactly one milestone event across the crossing, got %d", total)
	}
}

func TestFreezeAbsorbsOneMissedDay(t *testing.T) {
	e := newTestEngine()

	state := State{CurrentStreak: 10, LongestStreak: 10, LastStreakDate: daysAgo(2), FreezeAvailable: true}
	out := e.Evaluate(state, now, true, false)

	if out.State.CurrentStreak != 10 {
		t.Errorf("Freeze should leave the streak untouched, got %d", out.State.CurrentStreak)
	}
	if out.State.FreezeAvailable {
		t.Error("Freeze must be consumed")
	}
	if out.State.FreezeUsedAt == nil || !out.State.FreezeUsedAt.Equal(now) {
		t.Errorf("Expected freeze_used_at = now, got %v", out.State.FreezeUsedAt)
	}
	if !out.FrozenToday {
		t.Error("Expected frozen_today to be reported")
	}
	if !out.State.LastStreakDate.Equal(calendar.DayOf(now)) {
		t.Errorf("Expected last streak date today, got %v", out.State.LastStreakDate)
	}
	if len(out.Milestones) != 0 {
		t.Errorf("Freeze day must not emit milestones, got %v", out.Milestones)
	}
}

func TestFreezeConsumedEvenWithoutTodayEntry(t *testing.T) {
	e := newTestEngine()

	state := State{CurrentStreak: 10, LongestStreak: 10, LastStreakDate: daysAgo(2), FreezeAvailable: true}
	out := e.Evaluate(state, now, false, false)

	if out.State.FreezeAvailable {
		t.Error("Freeze must be consumed")
	}
	if !out.State.LastStreakDate.Equal(*daysAgo(2)) {
		t.Errorf("Last streak date must not advance without a today entry, got %v", out.State.LastStreakDate)
	}
	if !out.Changed {
		t.Error("Freeze consumption must be persisted")
	}
}

func TestGapTwoWithUncountedYesterdayEntry(t *testing.T) {
	e := newTestEngine()

	// Yesterday has a same-day entry that was never evaluated. Nothing to
	// decide on this call and the freeze must stay held.
	state := State{CurrentStreak: 4, LongestStreak: 4, LastStreakDate: daysAgo(2), FreezeAvailable: true}
	out := e.Evaluate(state, now, true, true)

	if out.Changed {
		t.Errorf("Expected no change, got %+v", out.State)
	}
	if !out.State.FreezeAvailable {
		t.Error("Freeze must not be consumed when yesterday was actually logged")
	}
}

func TestBreakWithRestoreEligible(t *testing.T) {
	e := newTestEngine()

	state := State{
		CurrentStreak:   10,
		LongestStreak:   10,
		LastStreakDate:  daysAgo(2),
		FreezeAvailable: false,
		LastRestoreAt:   hoursAgo(40 * 24),
	}
	out := e.Evaluate(state, now, true, false)

	if !out.CanRestore {
		t.Error("Expected restore eligibility to be reported")
	}
	if out.State.CurrentStreak != 10 {
		t.Errorf("Pending break must not reset the streak, got %d", out.State.CurrentStreak)
	}
	if out.Changed {
		t.Error("Pending break leaves state untouched for this call")
	}
}

func TestBreakWithRestoreNotEligible(t *testing.T) {
	e := newTestEngine()

	state := State{
		CurrentStreak:   10,
		LongestStreak:   10,
		LastStreakDate:  daysAgo(2),
		FreezeAvailable: false,
		LastRestoreAt:   hoursAgo(10 * 24),
	}
	out := e.Evaluate(state, now, true, false)

	if out.CanRestore {
		t.Error("Restore inside the cooldown must not be offered")
	}
	if out.State.CurrentStreak != 1 {
		t.Errorf("Expected reset to 1, got %d", out.State.CurrentStreak)
	}
	if out.State.LongestStreak != 10 {
		t.Errorf("Longest streak must survive the reset, got %d", out.State.LongestStreak)
	}
	if !out.State.LastStreakDate.Equal(calendar.DayOf(now)) {
		t.Errorf("Expected last streak date today, got %v", out.State.LastStreakDate)
	}
}

func TestMultiDayGapIgnoresFreeze(t *testing.T) {
	e := newTestEngine()

	state := State{
		CurrentStreak:   15,
		LongestStreak:   15,
		LastStreakDate:  daysAgo(5),
		FreezeAvailable: true,
		LastRestoreAt:   hoursAgo(3 * 24),
	}
	out := e.Evaluate(state, now, true, false)

	if out.State.CurrentStreak != 1 {
		t.Errorf("A multi-day gap breaks the streak, got %d", out.State.CurrentStreak)
	}
	if !out.State.FreezeAvailable {
		t.Error("Freeze cannot cover a multi-day gap and must not be consumed")
	}
}

func TestBreakWithoutTodayEntryResetsToZero(t *testing.T) {
	e := newTestEngine()

	state := State{
		CurrentStreak:   8,
		LongestStreak:   8,
		LastStreakDate:  daysAgo(4),
		FreezeAvailable: false,
		LastRestoreAt:   hoursAgo(2 * 24),
	}
	out := e.Evaluate(state, now, false, false)

	if out.State.CurrentStreak != 0 {
		t.Errorf("Expected reset to 0 without a today entry, got %d", out.State.CurrentStreak)
	}
	if !out.State.LastStreakDate.Equal(*daysAgo(4)) {
		t.Errorf("Last streak date must not advance without a today entry, got %v", out.State.LastStreakDate)
	}
}

func TestLongestStreakMonotonic(t *testing.T) {
	e := newTestEngine()

	state := State{FreezeAvailable: true}
	longest := 0
	at := now

	// Nine days logged, a hard 3-day break, then two more days.
	for i := 0; i < 9; i++ {
		out := e.Evaluate(state, at, true, i > 0)
		state = out.State
		if state.LongestStreak < longest {
			t.Fatalf("Longest streak decreased: %d -> %d", longest, state.LongestStreak)
		}
		if state.CurrentStreak > state.LongestStreak {
			t.Fatalf("current %d exceeds longest %d", state.CurrentStreak, state.LongestStreak)
		}
		longest = state.LongestStreak
		at = at.AddDate(0, 0, 1)
	}

	state.LastRestoreAt = hoursAgo(1) // cooldown active, breaks are final
	at = at.AddDate(0, 0, 3)
	for i := 0; i < 2; i++ {
		out := e.Evaluate(state, at, true, i > 0)
		state = out.State
		if state.LongestStreak < longest {
			t.Fatalf("Longest streak decreased after break: %d -> %d", longest, state.LongestStreak)
		}
		longest = state.LongestStreak
		at = at.AddDate(0, 0, 1)
	}

	if state.CurrentStreak != 2 {
		t.Errorf("Expected current streak 2 after break, got %d", state.CurrentStreak)
	}
	if state.LongestStreak != 9 {
		t.Errorf("Expected longest streak 9, got %d", state.LongestStreak)
	}
}

func TestFreezeIsSingleUse(t *testing.T) {
	e := newTestEngine()

	// Freeze absorbs the first one-day gap.
	state := State{CurrentStreak: 10, LongestStreak: 10, LastStreakDate: daysAgo(2), FreezeAvailable: true, LastRestoreAt: hoursAgo(24)}
	out := e.Evaluate(state, now, true, false)
	if out.State.FreezeAvailable {
		t.Fatal("Freeze should be consumed")
	}

	// Two days later the next one-day gap has no freeze left; the restore
	// cooldown is active, so the streak resets.
	later := now.AddDate(0, 0, 2)
	out = e.Evaluate(out.State, later, true, false)
	if out.State.CurrentStreak != 1 {
		t.Errorf("Expected reset to 1 with freeze spent, got %d", out.State.CurrentStreak)
	}
}

func TestCrossed(t *testing.T) {
	milestones := DefaultConfig().Milestones

	cases := []struct {
		old, fresh int
		want       int
		ok         bool
	}{
		{6, 7, 7, true},
		{29, 30, 30, true},
		{7, 7, 0, false},
		{7, 8, 0, false},
		{0, 1, 0, false},
		{364, 365, 365, true},
		{10, 1, 0, false},
	}

	for _, tc := range cases {
		got, ok := Crossed(tc.old, tc.fresh, milestones)
		if got != tc.want || ok != tc.ok {
			t.Errorf("Crossed(%d, %d) = (%d, %v), want (%d, %v)", tc.old, tc.fresh, got, ok, tc.want, tc.ok)
		}
	}
}

func TestEvaluateDoesNotMutateInput(t *testing.T) {
	e := newTestEngine()

	state := State{CurrentStreak: 3, LongestStreak: 3, LastStreakDate: daysAgo(1), FreezeAvailable: true}
	before := state

	e.Evaluate(state, now, true, true)

	if !statesEqual(before, state) {
		t.Error("Evaluate mutated its input state")
	}
}
