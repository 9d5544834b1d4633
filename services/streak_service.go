package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"songBirdAPI/internal/calendar"
	"songBirdAPI/internal/streak"
)

var (
	// ErrConcurrentUpdate means two writers raced on the same streak row and
	// the bounded retry budget ran out. The caller may retry the whole call.
	ErrConcurrentUpdate = errors.New("streak state was modified concurrently")

	// ErrEntryOracleUnavailable wraps transient failures of the same-day
	// entry lookup. The engine never guesses these facts; the caller should
	// retry with backoff.
	ErrEntryOracleUnavailable = errors.New("same-day entry lookup unavailable")
)

// EntryStore is what the streak service needs from the entry subsystem.
type EntryStore interface {
	HasSameDayEntry(ctx context.Context, userID uuid.UUID, day time.Time) (bool, error)
	SameDayEntryDays(ctx context.Context, userID uuid.UUID, limit int) ([]time.Time, error)
}

// MilestoneSink receives fire-and-forget milestone notifications. Sinks must
// not block the streak update; failures are theirs to log.
type MilestoneSink interface {
	OnMilestoneCrossed(ctx context.Context, userID uuid.UUID, milestone int)
}

type StreakService struct {
	db        *pgxpool.Pool
	engine    *streak.Engine
	entries   EntryStore
	analytics *AnalyticsService
	sinks     []MilestoneSink
}

const maxAdvanceAttempts = 3

func NewStreakService(db *pgxpool.Pool, engine *streak.Engine, entries EntryStore, analytics *AnalyticsService) *StreakService {
	return &StreakService{db: db, engine: engine, entries: entries, analytics: analytics}
}

// AddMilestoneSink registers a collaborator (bird catalog, analytics, push)
// for milestone events.
func (s *StreakService) AddMilestoneSink(sink MilestoneSink) {
	s.sinks = append(s.sinks, sink)
}

// AdvanceStreak runs the full read-evaluate-persist cycle for one user.
// Called once per entry-creation event. The persist step is an optimistic
// compare-and-swap on the streak row's version; on a lost race the whole
// cycle is retried from a fresh read.
func (s *StreakService) AdvanceStreak(ctx context.Context, clerkID string, now time.Time) (*streak.Result, error) {
	userID, err := s.userIDByClerkID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	hasToday, hasYesterday, err := s.sameDayFacts(ctx, userID, now)
	if err != nil {
		return nil, err
	}

	for attempt := 0; attempt < maxAdvanceAttempts; attempt++ {
		state, version, err := s.loadState(ctx, userID)
		if err != nil {
			return nil, err
		}

		out := s.engine.Evaluate(state, now, hasToday, hasYesterday)
		if !out.Changed {
			result := out.ToResult()
			return &result, nil
		}

		if err := s.saveState(ctx, userID, out.State, version, now); err != nil {
			if errors.Is(err, ErrConcurrentUpdate) {
				log.Printf("AdvanceStreak: CAS conflict for user %s, attempt %d", userID, attempt+1)
				continue
			}
			return nil, err
		}

		streakAdvancesTotal.Inc()
		if out.FrozenToday {
			streakFreezesConsumedTotal.Inc()
			if s.analytics != nil {
				s.analytics.Track(ctx, userID, EventStreakFreezeUsed, map[string]any{
					"streak": out.State.CurrentStreak,
				})
			}
		}
		for _, m := range out.Milestones {
			streakMilestonesTotal.WithLabelValues(fmt.Sprintf("%d", m)).Inc()
		}

		s.dispatchMilestones(userID, out.Milestones)

		result := out.ToResult()
		return &result, nil
	}

	return nil, ErrConcurrentUpdate
}

// GetStatus evaluates the streak without persisting anything. Used by the
// status endpoint; the evaluation is pure, so viewing a streak never mutates
// it (page views must not consume freezes).
func (s *StreakService) GetStatus(ctx context.Context, clerkID string, now time.Time) (*streak.Result, error) {
	userID, err := s.userIDByClerkID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	hasToday, hasYesterday, err := s.sameDayFacts(ctx, userID, now)
	if err != nil {
		return nil, err
	}

	state, _, err := s.loadState(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := s.engine.Evaluate(state, now, hasToday, hasYesterday)
	result := out.ToResult()
	return &result, nil
}

// RestoreStreak exercises the manual once-per-30-days restore. Returns
// *streak.RestoreNotEligibleError inside the cooldown window.
func (s *StreakService) RestoreStreak(ctx context.Context, clerkID string, now time.Time) error {
	userID, err := s.userIDByClerkID(ctx, clerkID)
	if err != nil {
		return err
	}

	for attempt := 0; attempt < maxAdvanceAttempts; attempt++ {
		state, version, err := s.loadState(ctx, userID)
		if err != nil {
			return err
		}

		restored, err := s.engine.Restore(state, now)
		if err != nil {
			return err
		}

		if err := s.saveState(ctx, userID, restored, version, now); err != nil {
			if errors.Is(err, ErrConcurrentUpdate) {
				continue
			}
			return err
		}

		streakRestoresTotal.Inc()
		if s.analytics != nil {
			s.analytics.Track(ctx, userID, EventStreakRestored, map[string]any{
				"streak": restored.CurrentStreak,
			})
		}
		log.Printf("RestoreStreak: user %s restored streak of %d", userID, restored.CurrentStreak)
		return nil
	}

	return ErrConcurrentUpdate
}

// RecomputeResult compares the incremental streak state against a from-
// scratch recompute over the entry history.
type RecomputeResult struct {
	StoredStreak     int  `json:"stored_streak"`
	RecomputedStreak int  `json:"recomputed_streak"`
	Drift            bool `json:"drift"`
}

// Recompute runs the ground-truth streak calculation. It ignores freeze and
// restore by design, so drift is expected whenever either was exercised
// recently; it exists to catch real divergence, not to replace the engine.
func (s *StreakService) Recompute(ctx context.Context, clerkID string, now time.Time) (*RecomputeResult, error) {
	userID, err := s.userIDByClerkID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	days, err := s.entries.SameDayEntryDays(ctx, userID, 366)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEntryOracleUnavailable, err)
	}

	state, _, err := s.loadState(ctx, userID)
	if err != nil {
		return nil, err
	}

	recomputed := streak.FromHistory(now, days)
	return &RecomputeResult{
		StoredStreak:     state.CurrentStreak,
		RecomputedStreak: recomputed,
		Drift:            recomputed != state.CurrentStreak,
	}, nil
}

func (s *StreakService) userIDByClerkID(ctx context.Context, clerkID string) (uuid.UUID, error) {
	var userID uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT id FROM users WHERE clerk_id = $1`, clerkID).Scan(&userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, fmt.Errorf("user not found")
		}
		return uuid.Nil, fmt.Errorf("failed to get user: %w", err)
	}
	return userID, nil
}

func (s *StreakService) sameDayFacts(ctx context.Context, userID uuid.UUID, now time.Time) (hasToday, hasYesterday bool, err error) {
	hasToday, err = s.entries.HasSameDayEntry(ctx, userID, calendar.DayOf(now))
	if err != nil {
		return false, false, fmt.Errorf("%w: %v", ErrEntryOracleUnavailable, err)
	}

	hasYesterday, err = s.entries.HasSameDayEntry(ctx, userID, calendar.Yesterday(now))
	if err != nil {
		return false, false, fmt.Errorf("%w: %v", ErrEntryOracleUnavailable, err)
	}

	return hasToday, hasYesterday, nil
}

// loadState fetches the streak row, creating the default one on first use.
// The freeze starts available, matching the first-run client expectation.
func (s *StreakService) loadState(ctx context.Context, userID uuid.UUID) (streak.State, int64, error) {
	query := `
	SELECT current_streak, longest_streak, last_streak_date, freeze_available, freeze_used_at, last_restore_at, version
	FROM streaks
	WHERE user_id = $1
	`

	var state streak.State
	var version int64
	err := s.db.QueryRow(ctx, query, userID).Scan(
		&state.CurrentStreak,
		&state.LongestStreak,
		&state.LastStreakDate,
		&state.FreezeAvailable,
		&state.FreezeUsedAt,
		&state.LastRestoreAt,
		&version,
	)
	if err == nil {
		return state, version, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return streak.State{}, 0, fmt.Errorf("failed to load streak state: %w", err)
	}

	insert := `
	INSERT INTO streaks (user_id, current_streak, longest_streak, freeze_available, version, created_at, updated_at)
	VALUES ($1, 0, 0, true, 0, NOW(), NOW())
	ON CONFLICT (user_id) DO NOTHING
	`
	if _, err := s.db.Exec(ctx, insert, userID); err != nil {
		return streak.State{}, 0, fmt.Errorf("failed to init streak state: %w", err)
	}

	err = s.db.QueryRow(ctx, query, userID).Scan(
		&state.CurrentStreak,
		&state.LongestStreak,
		&state.LastStreakDate,
		&state.FreezeAvailable,
		&state.FreezeUsedAt,
		&state.LastRestoreAt,
		&version,
	)
	if err != nil {
		return streak.State{}, 0, fmt.Errorf("failed to load streak state: %w", err)
	}
	return state, version, nil
}

func (s *StreakService) saveState(ctx context.Context, userID uuid.UUID, state streak.State, version int64, now time.Time) error {
	query := `
	UPDATE streaks
	SET current_streak = $2,
	    longest_streak = $3,
	    last_streak_date = $4,
	    freeze_available = $5,
	    freeze_used_at = $6,
	    last_restore_at = $7,
	    version = version + 1,
	    updated_at = $8
	WHERE user_id = $1 AND version = $9
	`

	tag, err := s.db.Exec(ctx, query,
		userID,
		state.CurrentStreak,
		state.LongestStreak,
		state.LastStreakDate,
		state.FreezeAvailable,
		state.FreezeUsedAt,
		state.LastRestoreAt,
		now,
		version,
	)
	if err != nil {
		return fmt.Errorf("failed to save streak state: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrConcurrentUpdate
	}
	return nil
}

// dispatchMilestones forwards milestone events to collaborators without
// blocking the caller. Delivery is at-most-once: a sink failure is logged by
// the sink and never retried into the streak path.
func (s *StreakService) dispatchMilestones(userID uuid.UUID, milestones []int) {
	if len(milestones) == 0 || len(s.sinks) == 0 {
		return
	}

	sinks := s.sinks
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		for _, m := range milestones {
			for _, sink := range sinks {
				sink.OnMilestoneCrossed(ctx, userID, m)
			}
		}
	}()
}
