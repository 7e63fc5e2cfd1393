package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tastetrail/engagement-backend/internal/dto"
	"github.com/tastetrail/engagement-backend/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrRestaurantNotFound = errors.New("restaurant not found")
	ErrStepNotFound       = errors.New("trail step not found")
	ErrTrailNotFound      = errors.New("trail not found")
)

// ProgressService derives XP, levels, and badges from stamp and trail
// activity. Every mutation is an idempotent guarded insert; XP is only
// granted when the insert actually created a row.
type ProgressService struct {
	db      *gorm.DB
	ledger  *LedgerService
	stampXP int
}

func NewProgressService(db *gorm.DB, ledger *LedgerService, stampXP int) *ProgressService {
	return &ProgressService{db: db, ledger: ledger, stampXP: stampXP}
}

type StampResult struct {
	Stamp      *models.RestaurantStamp
	AlreadyHad bool
	XPAwarded  int
}

// RecordStamp records a first-time check-in. A repeat visit to the same
// restaurant is a no-op: no new row, no second XP grant.
func (s *ProgressService) RecordStamp(userID, restaurantID uuid.UUID) (*StampResult, error) {
	var restaurant models.Restaurant
	if err := s.db.First(&restaurant, "id = ?", restaurantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRestaurantNotFound
		}
		return nil, fmt.Errorf("failed to load restaurant: %w", err)
	}

	stamp := models.RestaurantStamp{
		ID:             uuid.New(),
		UserID:         userID,
		RestaurantID:   restaurantID,
		FirstStampedAt: time.Now().UTC(),
	}

	res := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&stamp)
	if res.Error != nil && !errors.Is(res.Error, gorm.ErrDuplicatedKey) {
		return nil, fmt.Errorf("failed to record stamp: %w", res.Error)
	}
	if res.Error != nil || res.RowsAffected == 0 {
		var existing models.RestaurantStamp
		if err := s.db.Where("user_id = ? AND restaurant_id = ?", userID, restaurantID).
			First(&existing).Error; err != nil {
			return nil, fmt.Errorf("failed to load existing stamp: %w", err)
		}
		return &StampResult{Stamp: &existing, AlreadyHad: true}, nil
	}

	if err := s.grantXP(userID, s.stampXP); err != nil {
		return nil, err
	}

	s.ledger.LogEvent(&userID, models.EventStamp, "passport", stamp.ID.String(), map[string]interface{}{
		"restaurant_id": restaurantID.String(),
	})

	return &StampResult{Stamp: &stamp, XPAwarded: s.stampXP}, nil
}

type StepCompletionResult struct {
	AlreadyCompleted bool
	TrailCompleted   bool
	BadgeAwarded     *models.Badge
	XPAwarded        int
}

// CompleteStep marks a trail step done for the user. Completing the last
// open step of a trail grants the trail's badge (at most once) and its
// XP reward alongside it.
func (s *ProgressService) CompleteStep(userID, stepID uuid.UUID) (*StepCompletionResult, error) {
	var step models.TrailStep
	if err := s.db.First(&step, "id = ?", stepID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStepNotFound
		}
		return nil, fmt.Errorf("failed to load step: %w", err)
	}

	var trail models.Trail
	if err := s.db.First(&trail, "id = ?", step.TrailID).Error; err != nil {
		return nil, fmt.Errorf("failed to load trail: %w", err)
	}

	completion := models.TrailStepCompletion{
		ID:          uuid.New(),
		UserID:      userID,
		StepID:      stepID,
		CompletedAt: time.Now().UTC(),
	}
	res := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&completion)
	if res.Error != nil && !errors.Is(res.Error, gorm.ErrDuplicatedKey) {
		return nil, fmt.Errorf("failed to record completion: %w", res.Error)
	}
	if res.Error != nil || res.RowsAffected == 0 {
		return &StepCompletionResult{AlreadyCompleted: true}, nil
	}

	result := &StepCompletionResult{}

	var totalSteps, doneSteps int64
	if err := s.db.Model(&models.TrailStep{}).
		Where("trail_id = ?", trail.ID).Count(&totalSteps).Error; err != nil {
		return nil, fmt.Errorf("failed to count trail steps: %w", err)
	}
	stepIDs := s.db.Model(&models.TrailStep{}).Select("id").Where("trail_id = ?", trail.ID)
	if err := s.db.Model(&models.TrailStepCompletion{}).
		Where("user_id = ? AND step_id IN (?)", userID, stepIDs).
		Count(&doneSteps).Error; err != nil {
		return nil, fmt.Errorf("failed to count completions: %w", err)
	}

	if totalSteps > 0 && doneSteps >= totalSteps {
		result.TrailCompleted = true

		if trail.BadgeID != nil {
			awarded, badge, err := s.grantBadge(userID, *trail.BadgeID, map[string]interface{}{
				"trail_id": trail.ID.String(),
			})
			if err != nil {
				return nil, err
			}
			// The badge grant doubles as the once-only guard for the
			// trail XP reward: two racing final-step completions both
			// see the trail as done, but only one creates the grant.
			if awarded {
				result.BadgeAwarded = badge
				if trail.XPReward > 0 {
					if err := s.grantXP(userID, trail.XPReward); err != nil {
						return nil, err
					}
					result.XPAwarded = trail.XPReward
				}
			}
		}

		s.ledger.LogEvent(&userID, models.EventTrailComplete, "passport", trail.ID.String(), nil)
	}

	return result, nil
}

// grantBadge creates the (user, badge) grant if absent. Granting an
// already-held badge is a no-op.
func (s *ProgressService) grantBadge(userID, badgeID uuid.UUID, meta map[string]interface{}) (bool, *models.Badge, error) {
	var badge models.Badge
	if err := s.db.First(&badge, "id = ?", badgeID).Error; err != nil {
		return false, nil, fmt.Errorf("failed to load badge: %w", err)
	}

	grant := models.UserBadge{
		ID:        uuid.New(),
		UserID:    userID,
		BadgeID:   badgeID,
		AwardedAt: time.Now().UTC(),
	}
	if len(meta) > 0 {
		if b, err := json.Marshal(meta); err == nil {
			grant.Meta = datatypes.JSON(b)
		}
	}

	res := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&grant)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return false, &badge, nil
		}
		return false, nil, fmt.Errorf("failed to grant badge: %w", res.Error)
	}
	return res.RowsAffected == 1, &badge, nil
}

func (s *ProgressService) ensureProfile(userID uuid.UUID) error {
	profile := models.UserProfile{ID: uuid.New(), UserID: userID, XP: 0}
	res := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&profile)
	if res.Error != nil && !errors.Is(res.Error, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("failed to ensure profile: %w", res.Error)
	}
	return nil
}

// grantXP increments the profile's XP in a single atomic update so
// concurrent grants never lose each other.
func (s *ProgressService) grantXP(userID uuid.UUID, amount int) error {
	if amount <= 0 {
		return nil
	}
	if err := s.ensureProfile(userID); err != nil {
		return err
	}
	err := s.db.Model(&models.UserProfile{}).
		Where("user_id = ?", userID).
		UpdateColumn("xp", gorm.Expr("xp + ?", amount)).Error
	if err != nil {
		return fmt.Errorf("failed to grant xp: %w", err)
	}
	return nil
}

// Passport returns the user's profile view, stamp summary, and earned
// badges. Level fields are recomputed from xp on every read.
func (s *ProgressService) Passport(userID uuid.UUID) (*dto.PassportResponse, error) {
	if err := s.ensureProfile(userID); err != nil {
		return nil, err
	}

	var profile models.UserProfile
	if err := s.db.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	resp := &dto.PassportResponse{
		Profile: ProfileView(profile.XP),
		Stamps:  dto.StampsView{Recent: []dto.StampView{}},
		Badges:  dto.BadgesView{Earned: []dto.BadgeView{}},
	}

	if err := s.db.Model(&models.RestaurantStamp{}).
		Where("user_id = ?", userID).Count(&resp.Stamps.Total).Error; err != nil {
		return nil, fmt.Errorf("failed to count stamps: %w", err)
	}

	var recent []dto.StampView
	err := s.db.Table("restaurant_stamps").
		Select("restaurant_stamps.restaurant_id, restaurants.name AS restaurant_name, restaurants.slug AS restaurant_slug, restaurant_stamps.first_stamped_at").
		Joins("JOIN restaurants ON restaurants.id = restaurant_stamps.restaurant_id").
		Where("restaurant_stamps.user_id = ?", userID).
		Order("restaurant_stamps.first_stamped_at DESC").
		Limit(10).
		Scan(&recent).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load recent stamps: %w", err)
	}
	if recent != nil {
		resp.Stamps.Recent = recent
	}

	var earned []dto.BadgeView
	err = s.db.Table("user_badges").
		Select("badges.id, badges.slug, badges.name, badges.description, badges.icon, user_badges.awarded_at").
		Joins("JOIN badges ON badges.id = user_badges.badge_id").
		Where("user_badges.user_id = ?", userID).
		Order("user_badges.awarded_at DESC").
		Scan(&earned).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load badges: %w", err)
	}
	if earned != nil {
		resp.Badges.Earned = earned
	}

	return resp, nil
}

// EarnedBadges lists the user's badge grants, newest first.
func (s *ProgressService) EarnedBadges(userID uuid.UUID) ([]dto.BadgeView, error) {
	var earned []dto.BadgeView
	err := s.db.Table("user_badges").
		Select("badges.id, badges.slug, badges.name, badges.description, badges.icon, user_badges.awarded_at").
		Joins("JOIN badges ON badges.id = user_badges.badge_id").
		Where("user_badges.user_id = ?", userID).
		Order("user_badges.awarded_at DESC").
		Scan(&earned).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load badges: %w", err)
	}
	if earned == nil {
		earned = []dto.BadgeView{}
	}
	return earned, nil
}

// ProfileView derives the level fields from raw xp.
func ProfileView(xp int) dto.ProfileView {
	return dto.ProfileView{
		XP:        xp,
		Level:     Level(xp),
		XPInLevel: XPInLevel(xp),
		XPToNext:  XPToNext(xp),
		Progress:  Progress(xp),
	}
}
