package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Badge struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Slug        string    `gorm:"not null;size:100;uniqueIndex" json:"slug"`
	Name        string    `gorm:"not null;size:255" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Icon        string    `gorm:"size:255" json:"icon"`
	CreatedAt   time.Time `json:"created_at"`
}

// UserBadge is an immutable grant record, at most one per (user, badge).
type UserBadge struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_user_badges_user_badge;index" json:"user_id"`
	BadgeID   uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_user_badges_user_badge" json:"badge_id"`
	AwardedAt time.Time      `gorm:"not null" json:"awarded_at"`
	Meta      datatypes.JSON `gorm:"type:jsonb" json:"meta,omitempty"`
}
