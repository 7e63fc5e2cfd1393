package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Restaurant struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string         `gorm:"not null;size:255" json:"name"`
	Slug      string         `gorm:"not null;size:255;uniqueIndex" json:"slug"`
	City      string         `gorm:"size:100;index" json:"city"`
	Country   string         `gorm:"size:100;index" json:"country"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// RestaurantStamp records a user's first check-in at a restaurant.
// Repeat visits do not create new rows.
type RestaurantStamp struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID         uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_stamps_user_restaurant;index" json:"user_id"`
	RestaurantID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_stamps_user_restaurant" json:"restaurant_id"`
	FirstStampedAt time.Time `gorm:"not null;index" json:"first_stamped_at"`
}
