package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateRestaurantRequest struct {
	Name    string `json:"name"`
	Slug    string `json:"slug"`
	City    string `json:"city"`
	Country string `json:"country"`
}

type CreateBadgeRequest struct {
	Slug        string `json:"slug"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

type CreateTrailStepRequest struct {
	RestaurantID uuid.UUID `json:"restaurant_id"`
	Position     int       `json:"position"`
}

type CreateTrailRequest struct {
	Slug        string                   `json:"slug"`
	Name        string                   `json:"name"`
	Description string                   `json:"description"`
	BadgeID     *uuid.UUID               `json:"badge_id,omitempty"`
	XPReward    int                      `json:"xp_reward"`
	Steps       []CreateTrailStepRequest `json:"steps"`
}

type CreateDropRequest struct {
	RestaurantID uuid.UUID `json:"restaurant_id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	StartsAt     time.Time `json:"starts_at"`
	EndsAt       time.Time `json:"ends_at"`
	Capacity     int       `json:"capacity"`
	IsPublished  bool      `json:"is_published"`
}
