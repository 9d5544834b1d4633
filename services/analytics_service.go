package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Event names follow the app-wide convention: snake_case, past tense.
const (
	EventEntryCreated           = "entry_created"
	EventStreakMilestoneReached = "streak_milestone_reached"
	EventStreakFreezeUsed       = "streak_freeze_used"
	EventStreakRestored         = "streak_restored"
	EventBirdUnlocked           = "bird_unlocked"
)

type AnalyticsService struct {
	db *pgxpool.Pool
}

func NewAnalyticsService(db *pgxpool.Pool) *AnalyticsService {
	return &AnalyticsService{db: db}
}

// Track records one analytics event. Best effort: failures are logged, never
// propagated, because analytics must not fail a user-facing write.
func (s *AnalyticsService) Track(ctx context.Context, userID uuid.UUID, event string, properties map[string]any) {
	if err := s.trackEvent(ctx, userID, event, properties); err != nil {
		log.Printf("AnalyticsService: failed to track %s for user %s: %v", event, userID, err)
	}
}

func (s *AnalyticsService) trackEvent(ctx context.Context, userID uuid.UUID, event string, properties map[string]any) error {
	propsJSON, err := json.Marshal(properties)
	if err != nil {
		return fmt.Errorf("failed to marshal properties: %w", err)
	}

	query := `
	INSERT INTO analytics_events (id, user_id, event, properties, created_at)
	VALUES ($1, $2, $3, $4, NOW())
	`

	if _, err := s.db.Exec(ctx, query, uuid.New(), userID, event, propsJSON); err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}
	return nil
}

// OnMilestoneCrossed implements the streak service's milestone sink.
func (s *AnalyticsService) OnMilestoneCrossed(ctx context.Context, userID uuid.UUID, milestone int) {
	s.Track(ctx, userID, EventStreakMilestoneReached, map[string]any{"milestone": milestone})
}

// GetEventCounts returns per-event totals over the trailing n days, for the
// admin dashboard.
func (s *AnalyticsService) GetEventCounts(ctx context.Context, days int) (map[string]int, error) {
	if days <= 0 {
		days = 7
	}

	query := `
	SELECT event, COUNT(*)
	FROM analytics_events
	WHERE created_at > NOW() - ($1 || ' days')::interval
	GROUP BY event
	`

	rows, err := s.db.Query(ctx, query, days)
	if err != nil {
		return nil, fmt.Errorf("failed to count events: %w", err)
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var event string
		var count int
		if err := rows.Scan(&event, &count); err != nil {
			return nil, fmt.Errorf("failed to scan event count: %w", err)
		}
		counts[event] = count
	}

	return counts, rows.Err()
}
