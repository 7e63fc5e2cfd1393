package dto

import (
	"time"

	"github.com/google/uuid"
)

type RestaurantSummary struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Slug string    `json:"slug"`
}

type TodayDrop struct {
	ID             uuid.UUID         `json:"id"`
	Title          string            `json:"title"`
	Description    string            `json:"description"`
	StartsAt       time.Time         `json:"starts_at"`
	EndsAt         time.Time         `json:"ends_at"`
	Capacity       int               `json:"capacity"`
	SlotsUsed      int               `json:"slots_used"`
	SlotsRemaining int               `json:"slots_remaining"`
	ClaimedByMe    bool              `json:"claimed_by_me"`
	Restaurant     RestaurantSummary `json:"restaurant"`
}

type TodayDropResponse struct {
	Drop *TodayDrop `json:"drop"`
}

type ClaimInfo struct {
	ID        uuid.UUID `json:"id"`
	DropID    uuid.UUID `json:"drop_id"`
	ClaimedAt time.Time `json:"claimed_at"`
}

type ClaimResponse struct {
	Status string     `json:"status"`
	Claim  *ClaimInfo `json:"claim,omitempty"`
}

type MyClaim struct {
	ID             uuid.UUID `json:"id"`
	ClaimedAt      time.Time `json:"claimed_at"`
	DropID         uuid.UUID `json:"drop_id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	StartsAt       time.Time `json:"starts_at"`
	EndsAt         time.Time `json:"ends_at"`
	RestaurantID   uuid.UUID `json:"restaurant_id"`
	RestaurantName string    `json:"restaurant_name"`
	RestaurantSlug string    `json:"restaurant_slug"`
}

type MyClaimsResponse struct {
	Claims []MyClaim `json:"claims"`
}
