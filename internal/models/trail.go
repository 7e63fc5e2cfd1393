package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Trail is an ordered sequence of restaurant visits. Completing every
// step may grant BadgeID and awards XPReward.
type Trail struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Slug        string         `gorm:"not null;size:255;uniqueIndex" json:"slug"`
	Name        string         `gorm:"not null;size:255" json:"name"`
	Description string         `gorm:"type:text" json:"description"`
	BadgeID     *uuid.UUID     `gorm:"type:uuid" json:"badge_id,omitempty"`
	XPReward    int            `gorm:"not null;default:0" json:"xp_reward"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

type TrailStep struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	TrailID      uuid.UUID `gorm:"type:uuid;not null;index" json:"trail_id"`
	RestaurantID uuid.UUID `gorm:"type:uuid;not null" json:"restaurant_id"`
	Position     int       `gorm:"not null" json:"position"`
}

// TrailStepCompletion is a unique (user, step) fact.
type TrailStepCompletion struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_step_completions_user_step;index" json:"user_id"`
	StepID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_step_completions_user_step" json:"step_id"`
	CompletedAt time.Time `gorm:"not null" json:"completed_at"`
}
