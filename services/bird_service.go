package services

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"songBirdAPI/internal/types/bird"
)

// BirdService owns the unlock catalog. The streak engine only reports that a
// streak reached N; which birds that unlocks is decided here.
type BirdService struct {
	db        *pgxpool.Pool
	analytics *AnalyticsService
}

func NewBirdService(db *pgxpool.Pool, analytics *AnalyticsService) *BirdService {
	return &BirdService{db: db, analytics: analytics}
}

// OnMilestoneCrossed implements the streak service's milestone sink.
func (s *BirdService) OnMilestoneCrossed(ctx context.Context, userID uuid.UUID, milestone int) {
	unlocked, err := s.CheckAndUnlockStreakBirds(ctx, userID, milestone)
	if err != nil {
		log.Printf("BirdService: unlock check for user %s at milestone %d failed: %v", userID, milestone, err)
		return
	}

	for _, slug := range unlocked {
		log.Printf("BirdService: user %s unlocked bird %s (streak %d)", userID, slug, milestone)
		if s.analytics != nil {
			s.analytics.Track(ctx, userID, EventBirdUnlocked, map[string]any{
				"bird_id": slug,
				"method":  "milestone",
				"trigger": "streak",
			})
		}
	}
}

// CheckAndUnlockStreakBirds grants every streak-unlocked bird whose
// requirement the streak now satisfies and that the user does not already
// hold. Returns the slugs of the newly unlocked birds.
func (s *BirdService) CheckAndUnlockStreakBirds(ctx context.Context, userID uuid.UUID, currentStreak int) ([]string, error) {
	query := `
	INSERT INTO user_birds (id, user_id, bird_id, unlocked_at)
	SELECT gen_random_uuid(), $1, b.id, NOW()
	FROM birds b
	WHERE b.unlock_type = 'streak'
	  AND b.requirement_value <= $2
	  AND NOT EXISTS (
	      SELECT 1 FROM user_birds ub WHERE ub.user_id = $1 AND ub.bird_id = b.id
	  )
	RETURNING (SELECT slug FROM birds WHERE id = bird_id)
	`

	rows, err := s.db.Query(ctx, query, userID, currentStreak)
	if err != nil {
		return nil, fmt.Errorf("failed to unlock birds: %w", err)
	}
	defer rows.Close()

	unlocked := []string{}
	for rows.Next() {
		var slug string
		if err := rows.Scan(&slug); err != nil {
			return nil, fmt.Errorf("failed to scan unlocked bird: %w", err)
		}
		unlocked = append(unlocked, slug)
	}

	return unlocked, rows.Err()
}

// GetBirds returns the full catalog with the user's unlock status.
func (s *BirdService) GetBirds(ctx context.Context, clerkID string) ([]*bird.BirdWithStatus, error) {
	var userID uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT id FROM users WHERE clerk_id = $1`, clerkID).Scan(&userID)
	if err != nil {
		return nil, fmt.Errorf("user not found: %w", err)
	}

	query := `
	SELECT b.id, b.slug, b.name, b.short_name, b.unlock_condition, b.unlock_type, b.requirement_value, b.created_at,
	       ub.unlocked_at
	FROM birds b
	LEFT JOIN user_birds ub ON ub.bird_id = b.id AND ub.user_id = $1
	ORDER BY b.unlock_type = 'default' DESC, b.requirement_value ASC
	`

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get birds: %w", err)
	}
	defer rows.Close()

	birds := []*bird.BirdWithStatus{}
	for rows.Next() {
		b := &bird.BirdWithStatus{}
		if err := rows.Scan(
			&b.ID,
			&b.Slug,
			&b.Name,
			&b.ShortName,
			&b.UnlockCondition,
			&b.UnlockType,
			&b.RequirementValue,
			&b.CreatedAt,
			&b.UnlockedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan bird: %w", err)
		}
		b.Unlocked = b.UnlockedAt != nil || b.UnlockType == bird.UnlockDefault
		birds = append(birds, b)
	}

	return birds, rows.Err()
}
