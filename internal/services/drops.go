package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tastetrail/engagement-backend/internal/dto"
	"github.com/tastetrail/engagement-backend/internal/models"
	"gorm.io/gorm"
)

type ClaimStatus string

const (
	StatusClaimed        ClaimStatus = "claimed"
	StatusAlreadyClaimed ClaimStatus = "already_claimed"
	StatusFull           ClaimStatus = "full"
	StatusDropNotActive  ClaimStatus = "drop_not_active"
)

type ClaimResult struct {
	Status ClaimStatus
	Claim  *models.DropClaim
}

// DropService allocates capacity-bounded claims on daily drops. All
// mutual exclusion lives in the store: the capacity check and the claim
// insert happen inside one transaction that row-locks the drop, so
// concurrent claimers across server instances serialize per drop and
// can never overshoot capacity.
type DropService struct {
	db     *gorm.DB
	ledger *LedgerService
}

func NewDropService(db *gorm.DB, ledger *LedgerService) *DropService {
	return &DropService{db: db, ledger: ledger}
}

// Claim reserves one unit of the drop's capacity for the user.
func (s *DropService) Claim(dropID, userID uuid.UUID) (*ClaimResult, error) {
	result := &ClaimResult{}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		// Touch the drop row to take a row lock. A plain self-assign
		// UPDATE serializes concurrent claimers on both Postgres and
		// SQLite, unlike FOR UPDATE which SQLite cannot parse.
		lock := tx.Exec("UPDATE daily_drops SET id = id WHERE id = ?", dropID)
		if lock.Error != nil {
			return fmt.Errorf("failed to lock drop: %w", lock.Error)
		}
		if lock.RowsAffected == 0 {
			result.Status = StatusDropNotActive
			return nil
		}

		var drop models.DailyDrop
		if err := tx.First(&drop, "id = ?", dropID).Error; err != nil {
			// The raw lock statement ignores soft deletes; a deleted
			// drop is simply not active.
			if errors.Is(err, gorm.ErrRecordNotFound) {
				result.Status = StatusDropNotActive
				return nil
			}
			return fmt.Errorf("failed to load drop: %w", err)
		}

		now := time.Now().UTC()
		if !drop.IsPublished || now.Before(drop.StartsAt) || !now.Before(drop.EndsAt) {
			result.Status = StatusDropNotActive
			return nil
		}

		var existing models.DropClaim
		err := tx.Where("drop_id = ? AND user_id = ?", dropID, userID).First(&existing).Error
		if err == nil {
			result.Status = StatusAlreadyClaimed
			result.Claim = &existing
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to check existing claim: %w", err)
		}

		// Re-validate the authoritative count under the lock,
		// immediately before the insert.
		var used int64
		if err := tx.Model(&models.DropClaim{}).
			Where("drop_id = ?", dropID).Count(&used).Error; err != nil {
			return fmt.Errorf("failed to count claims: %w", err)
		}
		if used >= int64(drop.Capacity) {
			result.Status = StatusFull
			return nil
		}

		claim := models.DropClaim{
			ID:        uuid.New(),
			DropID:    dropID,
			UserID:    userID,
			ClaimedAt: now,
		}
		if err := tx.Create(&claim).Error; err != nil {
			// Duplicate from a racing request by the same user; the
			// unique (drop, user) index absorbs it.
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				result.Status = StatusAlreadyClaimed
				return nil
			}
			return fmt.Errorf("failed to create claim: %w", err)
		}

		result.Status = StatusClaimed
		result.Claim = &claim
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Status == StatusAlreadyClaimed && result.Claim == nil {
		var existing models.DropClaim
		if err := s.db.Where("drop_id = ? AND user_id = ?", dropID, userID).
			First(&existing).Error; err == nil {
			result.Claim = &existing
		}
	}

	if result.Status == StatusClaimed {
		s.ledger.LogEvent(&userID, models.EventDropClaim, "drops", result.Claim.ID.String(), map[string]interface{}{
			"drop_id": dropID.String(),
		})
	}

	return result, nil
}

// Today resolves the currently active published drop: the most recent
// by start time whose window contains now. Slot counts come from the
// authoritative claim count, never a cached counter.
func (s *DropService) Today(userID *uuid.UUID) (*dto.TodayDrop, error) {
	now := time.Now().UTC()

	var drop models.DailyDrop
	err := s.db.Where("is_published = ? AND starts_at <= ? AND ends_at > ?", true, now, now).
		Order("starts_at DESC").
		First(&drop).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load current drop: %w", err)
	}

	var restaurant models.Restaurant
	if err := s.db.First(&restaurant, "id = ?", drop.RestaurantID).Error; err != nil {
		return nil, fmt.Errorf("failed to load drop restaurant: %w", err)
	}

	var used int64
	if err := s.db.Model(&models.DropClaim{}).
		Where("drop_id = ?", drop.ID).Count(&used).Error; err != nil {
		return nil, fmt.Errorf("failed to count claims: %w", err)
	}

	claimedByMe := false
	if userID != nil {
		var mine int64
		if err := s.db.Model(&models.DropClaim{}).
			Where("drop_id = ? AND user_id = ?", drop.ID, *userID).
			Count(&mine).Error; err != nil {
			return nil, fmt.Errorf("failed to check user claim: %w", err)
		}
		claimedByMe = mine > 0
	}

	remaining := drop.Capacity - int(used)
	if remaining < 0 {
		remaining = 0
	}

	return &dto.TodayDrop{
		ID:             drop.ID,
		Title:          drop.Title,
		Description:    drop.Description,
		StartsAt:       drop.StartsAt,
		EndsAt:         drop.EndsAt,
		Capacity:       drop.Capacity,
		SlotsUsed:      int(used),
		SlotsRemaining: remaining,
		ClaimedByMe:    claimedByMe,
		Restaurant: dto.RestaurantSummary{
			ID:   restaurant.ID,
			Name: restaurant.Name,
			Slug: restaurant.Slug,
		},
	}, nil
}

// MyClaims lists the user's claims with drop and restaurant context,
// newest first.
func (s *DropService) MyClaims(userID uuid.UUID) ([]dto.MyClaim, error) {
	var claims []dto.MyClaim
	err := s.db.Table("drop_claims").
		Select("drop_claims.id, drop_claims.claimed_at, daily_drops.id AS drop_id, daily_drops.title, daily_drops.description, daily_drops.starts_at, daily_drops.ends_at, restaurants.id AS restaurant_id, restaurants.name AS restaurant_name, restaurants.slug AS restaurant_slug").
		Joins("JOIN daily_drops ON daily_drops.id = drop_claims.drop_id").
		Joins("JOIN restaurants ON restaurants.id = daily_drops.restaurant_id").
		Where("drop_claims.user_id = ?", userID).
		Order("drop_claims.claimed_at DESC").
		Scan(&claims).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load claims: %w", err)
	}
	if claims == nil {
		claims = []dto.MyClaim{}
	}
	return claims, nil
}
