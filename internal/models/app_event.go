package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	EventSignup        = "signup"
	EventStamp         = "stamp"
	EventTrailComplete = "trail_complete"
	EventDropClaim     = "drop_claim"
	EventReferralClick = "referral_click"
	EventReferralSign  = "referral_signup"
)

// AppEvent is the generic append-only analytics fact. The partial unique
// index makes the signup milestone exactly-once per user no matter how
// many times logging is invoked.
type AppEvent struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    *uuid.UUID     `gorm:"type:uuid;index;uniqueIndex:idx_app_events_signup_once,where:event_type = 'signup'" json:"user_id,omitempty"`
	EventType string         `gorm:"not null;size:50;index" json:"event_type"`
	Source    string         `gorm:"size:50" json:"source"`
	EntityID  string         `gorm:"size:64" json:"entity_id"`
	Metadata  datatypes.JSON `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt time.Time      `gorm:"index" json:"created_at"`
}
