package models

import (
	"time"

	"github.com/google/uuid"
)

// ReferralCode is the one active invite code per referrer, immutable
// once issued.
type ReferralCode struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	Code      string    `gorm:"not null;size:16;uniqueIndex" json:"code"`
	CreatedAt time.Time `json:"created_at"`
}

const (
	ReferralEventClick  = "click"
	ReferralEventSignup = "signup"
)

// ReferralEvent is an append-only click/signup fact. The partial unique
// index enforces at most one signup credit per (inviter, invitee) pair;
// clicks carry a null invitee and are never constrained by it.
type ReferralEvent struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	InviterID uuid.UUID  `gorm:"type:uuid;not null;index;uniqueIndex:idx_referral_signup_once,where:event_type = 'signup'" json:"inviter_id"`
	InviteeID *uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_referral_signup_once,where:event_type = 'signup'" json:"invitee_id,omitempty"`
	EventType string     `gorm:"not null;size:20;index" json:"event_type"`
	CreatedAt time.Time  `json:"created_at"`
}
