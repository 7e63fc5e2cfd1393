package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DailyDrop is a time-boxed promotional offer with a hard claim capacity.
type DailyDrop struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	RestaurantID uuid.UUID      `gorm:"type:uuid;not null;index" json:"restaurant_id"`
	Title        string         `gorm:"not null;size:255" json:"title"`
	Description  string         `gorm:"type:text" json:"description"`
	StartsAt     time.Time      `gorm:"not null;index" json:"starts_at"`
	EndsAt       time.Time      `gorm:"not null;index" json:"ends_at"`
	Capacity     int            `gorm:"not null;default:0" json:"capacity"`
	IsPublished  bool           `gorm:"not null;default:false;index" json:"is_published"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// DropClaim reserves one unit of a drop's capacity. The composite unique
// index is what makes a duplicate claim attempt detectable; the claim
// count for a drop must never exceed its capacity.
type DropClaim struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	DropID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_drop_claims_drop_user;index" json:"drop_id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_drop_claims_drop_user;index" json:"user_id"`
	ClaimedAt time.Time `gorm:"not null" json:"claimed_at"`
}
