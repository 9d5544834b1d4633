package bird

import (
	"time"

	"github.com/google/uuid"
)

// UnlockType says what kind of progress unlocks a bird. The streak engine
// only signals "streak advanced to N"; this catalog decides what that means.
type UnlockType string

const (
	UnlockDefault UnlockType = "default"
	UnlockStreak  UnlockType = "streak"
	UnlockEntries UnlockType = "entries"
	UnlockTime    UnlockType = "time"
	UnlockPremium UnlockType = "premium"
)

type Bird struct {
	ID               uuid.UUID  `json:"id" db:"id"`
	Slug             string     `json:"slug" db:"slug"`
	Name             string     `json:"name" db:"name"`
	ShortName        string     `json:"short_name" db:"short_name"`
	UnlockCondition  string     `json:"unlock_condition" db:"unlock_condition"`
	UnlockType       UnlockType `json:"unlock_type" db:"unlock_type"`
	RequirementValue int        `json:"requirement_value" db:"requirement_value"`
	CreatedAt        time.Time  `json:"created_at" db:"created_at"`
}

type UserBird struct {
	ID         uuid.UUID `json:"id" db:"id"`
	UserID     uuid.UUID `json:"user_id" db:"user_id"`
	BirdID     uuid.UUID `json:"bird_id" db:"bird_id"`
	UnlockedAt time.Time `json:"unlocked_at" db:"unlocked_at"`
}

type BirdWithStatus struct {
	Bird
	Unlocked   bool       `json:"unlocked"`
	UnlockedAt *time.Time `json:"unlocked_at,omitempty"`
}
