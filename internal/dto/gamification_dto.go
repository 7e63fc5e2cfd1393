package dto

import (
	"time"

	"github.com/google/uuid"
)

type ProfileView struct {
	XP        int `json:"xp"`
	Level     int `json:"level"`
	XPInLevel int `json:"xpInLevel"`
	XPToNext  int `json:"xpToNext"`
	Progress  int `json:"progress"`
}

type StampView struct {
	RestaurantID   uuid.UUID `json:"restaurant_id"`
	RestaurantName string    `json:"restaurant_name"`
	RestaurantSlug string    `json:"restaurant_slug"`
	FirstStampedAt time.Time `json:"first_stamped_at"`
}

type StampsView struct {
	Total  int64       `json:"total"`
	Recent []StampView `json:"recent"`
}

type BadgeView struct {
	ID          uuid.UUID `json:"id"`
	Slug        string    `json:"slug"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	AwardedAt   time.Time `json:"awarded_at"`
}

type BadgesView struct {
	Earned []BadgeView `json:"earned"`
}

type PassportResponse struct {
	Profile ProfileView `json:"profile"`
	Stamps  StampsView  `json:"stamps"`
	Badges  BadgesView  `json:"badges"`
}

type LeaderboardItem struct {
	UserID   uuid.UUID `json:"user_id"`
	Points   int64     `json:"points"`
	Checkins int64     `json:"checkins"`
	FirstDay string    `json:"first_day"`
	LastDay  string    `json:"last_day"`
}

type LeaderboardResponse struct {
	Items  []LeaderboardItem `json:"items"`
	Scope  string            `json:"scope"`
	CityID string            `json:"cityId"`
}

type StampResponse struct {
	RestaurantID uuid.UUID   `json:"restaurant_id"`
	AlreadyHad   bool        `json:"already_had"`
	XPAwarded    int         `json:"xp_awarded"`
	Profile      ProfileView `json:"profile"`
}

type StepCompletionResponse struct {
	AlreadyCompleted bool       `json:"already_completed"`
	TrailCompleted   bool       `json:"trail_completed"`
	BadgeAwarded     *BadgeView `json:"badge_awarded,omitempty"`
	XPAwarded        int        `json:"xp_awarded"`
}
