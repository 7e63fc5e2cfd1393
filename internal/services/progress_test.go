package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/tastetrail/engagement-backend/internal/models"
)

func TestRecordStampFirstTime(t *testing.T) {
	db := openTestDB(t)
	svc := NewProgressService(db, NewLedgerService(db), 10)
	r := createRestaurant(t, db, "Taco Stand", "Berlin", "DE")
	userID := uuid.New()

	result, err := svc.RecordStamp(userID, r.ID)
	require.NoError(t, err)
	require.False(t, result.AlreadyHad)
	require.Equal(t, 10, result.XPAwarded)

	var profile models.UserProfile
	require.NoError(t, db.Where("user_id = ?", userID).First(&profile).Error)
	require.Equal(t, 10, profile.XP)

	var events int64
	require.NoError(t, db.Model(&models.AppEvent{}).
		Where("user_id = ? AND event_type = ?", userID, models.EventStamp).
		Count(&events).Error)
	require.Equal(t, int64(1), events)
}

func TestRecordStampRepeatIsNoOp(t *testing.T) {
	db := openTestDB(t)
	svc := NewProgressService(db, NewLedgerService(db), 10)
	r := createRestaurant(t, db, "Taco Stand", "Berlin", "DE")
	userID := uuid.New()

	_, err := svc.RecordStamp(userID, r.ID)
	require.NoError(t, err)

	result, err := svc.RecordStamp(userID, r.ID)
	require.NoError(t, err)
	require.True(t, result.AlreadyHad)
	require.Zero(t, result.XPAwarded)

	var rows int64
	require.NoError(t, db.Model(&models.RestaurantStamp{}).
		Where("user_id = ?", userID).Count(&rows).Error)
	require.Equal(t, int64(1), rows)

	var profile models.UserProfile
	require.NoError(t, db.Where("user_id = ?", userID).First(&profile).Error)
	require.Equal(t, 10, profile.XP)
}

func TestRecordStampUnknownRestaurant(t *testing.T) {
	db := openTestDB(t)
	svc := NewProgressService(db, NewLedgerService(db), 10)

	_, err := svc.RecordStamp(uuid.New(), uuid.New())
	require.ErrorIs(t, err, ErrRestaurantNotFound)
}

func TestCompleteStepGrantsBadgeOnTrailCompletion(t *testing.T) {
	db := openTestDB(t)
	svc := NewProgressService(db, NewLedgerService(db), 10)
	r1 := createRestaurant(t, db, "Stop One", "Berlin", "DE")
	r2 := createRestaurant(t, db, "Stop Two", "Berlin", "DE")
	badge := createBadge(t, db, "street-food-tour")

	trail := &models.Trail{
		ID:       uuid.New(),
		Slug:     "street-food",
		Name:     "Street Food Tour",
		BadgeID:  &badge.ID,
		XPReward: 50,
	}
	require.NoError(t, db.Create(trail).Error)
	step1 := &models.TrailStep{ID: uuid.New(), TrailID: trail.ID, RestaurantID: r1.ID, Position: 1}
	step2 := &models.TrailStep{ID: uuid.New(), TrailID: trail.ID, RestaurantID: r2.ID, Position: 2}
	require.NoError(t, db.Create(step1).Error)
	require.NoError(t, db.Create(step2).Error)

	userID := uuid.New()

	result, err := svc.CompleteStep(userID, step1.ID)
	require.NoError(t, err)
	require.False(t, result.AlreadyCompleted)
	require.False(t, result.TrailCompleted)
	require.Nil(t, result.BadgeAwarded)

	result, err = svc.CompleteStep(userID, step2.ID)
	require.NoError(t, err)
	require.True(t, result.TrailCompleted)
	require.NotNil(t, result.BadgeAwarded)
	require.Equal(t, badge.ID, result.BadgeAwarded.ID)
	require.Equal(t, 50, result.XPAwarded)

	var grants int64
	require.NoError(t, db.Model(&models.UserBadge{}).
		Where("user_id = ? AND badge_id = ?", userID, badge.ID).Count(&grants).Error)
	require.Equal(t, int64(1), grants)

	var profile models.UserProfile
	require.NoError(t, db.Where("user_id = ?", userID).First(&profile).Error)
	require.Equal(t, 50, profile.XP)
}

func TestCompleteStepIdempotent(t *testing.T) {
	db := openTestDB(t)
	svc := NewProgressService(db, NewLedgerService(db), 10)
	r := createRestaurant(t, db, "Stop One", "Berlin", "DE")
	badge := createBadge(t, db, "solo-tour")

	trail := &models.Trail{ID: uuid.New(), Slug: "solo", Name: "Solo", BadgeID: &badge.ID, XPReward: 30}
	require.NoError(t, db.Create(trail).Error)
	step := &models.TrailStep{ID: uuid.New(), TrailID: trail.ID, RestaurantID: r.ID, Position: 1}
	require.NoError(t, db.Create(step).Error)

	userID := uuid.New()

	first, err := svc.CompleteStep(userID, step.ID)
	require.NoError(t, err)
	require.True(t, first.TrailCompleted)
	require.Equal(t, 30, first.XPAwarded)

	second, err := svc.CompleteStep(userID, step.ID)
	require.NoError(t, err)
	require.True(t, second.AlreadyCompleted)
	require.Zero(t, second.XPAwarded)

	var completions, grants int64
	require.NoError(t, db.Model(&models.TrailStepCompletion{}).
		Where("user_id = ?", userID).Count(&completions).Error)
	require.Equal(t, int64(1), completions)
	require.NoError(t, db.Model(&models.UserBadge{}).
		Where("user_id = ?", userID).Count(&grants).Error)
	require.Equal(t, int64(1), grants)

	// XP stays at the single trail reward.
	var profile models.UserProfile
	require.NoError(t, db.Where("user_id = ?", userID).First(&profile).Error)
	require.Equal(t, 30, profile.XP)
}

func TestCompleteStepUnknownStep(t *testing.T) {
	db := openTestDB(t)
	svc := NewProgressService(db, NewLedgerService(db), 10)

	_, err := svc.CompleteStep(uuid.New(), uuid.New())
	require.ErrorIs(t, err, ErrStepNotFound)
}

func TestPassportView(t *testing.T) {
	db := openTestDB(t)
	svc := NewProgressService(db, NewLedgerService(db), 10)
	r1 := createRestaurant(t, db, "Stop One", "Berlin", "DE")
	r2 := createRestaurant(t, db, "Stop Two", "Berlin", "DE")
	userID := uuid.New()

	_, err := svc.RecordStamp(userID, r1.ID)
	require.NoError(t, err)
	_, err = svc.RecordStamp(userID, r2.ID)
	require.NoError(t, err)

	passport, err := svc.Passport(userID)
	require.NoError(t, err)
	require.Equal(t, 20, passport.Profile.XP)
	require.Equal(t, 1, passport.Profile.Level)
	require.Equal(t, 20, passport.Profile.XPInLevel)
	require.Equal(t, 80, passport.Profile.XPToNext)
	require.Equal(t, int64(2), passport.Stamps.Total)
	require.Len(t, passport.Stamps.Recent, 2)
	require.Empty(t, passport.Badges.Earned)
}

func TestPassportForNewUserIsEmpty(t *testing.T) {
	db := openTestDB(t)
	svc := NewProgressService(db, NewLedgerService(db), 10)

	passport, err := svc.Passport(uuid.New())
	require.NoError(t, err)
	require.Zero(t, passport.Profile.XP)
	require.Equal(t, 1, passport.Profile.Level)
	require.Zero(t, passport.Stamps.Total)
	require.Empty(t, passport.Badges.Earned)
}

func TestLeaderboardRankingAndWindow(t *testing.T) {
	db := openTestDB(t)
	svc := NewProgressService(db, NewLedgerService(db), 10)
	berlin1 := createRestaurant(t, db, "Berlin One", "Berlin", "DE")
	berlin2 := createRestaurant(t, db, "Berlin Two", "Berlin", "DE")
	paris := createRestaurant(t, db, "Paris One", "Paris", "FR")

	alice := uuid.New()
	bob := uuid.New()
	now := time.Now().UTC()

	seedStamp := func(user, restaurant uuid.UUID, at time.Time) {
		require.NoError(t, db.Create(&models.RestaurantStamp{
			ID: uuid.New(), UserID: user, RestaurantID: restaurant, FirstStampedAt: at,
		}).Error)
	}

	// Alice: two check-ins this week, Bob: one this week, one stale.
	seedStamp(alice, berlin1.ID, now.Add(-2*time.Hour))
	seedStamp(alice, berlin2.ID, now.Add(-26*time.Hour))
	seedStamp(bob, berlin1.ID, now.Add(-3*time.Hour))
	seedStamp(bob, paris.ID, now.AddDate(0, 0, -30))

	items, err := svc.Leaderboard(ScopeWeekly, "", "", 10)
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, alice, items[0].UserID)
	require.Equal(t, int64(2), items[0].Checkins)
	require.Equal(t, int64(20), items[0].Points)
	require.Equal(t, bob, items[1].UserID)
	require.Equal(t, int64(1), items[1].Checkins)

	// City scope drops the Paris activity entirely.
	items, err = svc.Leaderboard(ScopeAllTime, "", "Paris", 10)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, bob, items[0].UserID)

	// Country scope keeps only German restaurants.
	items, err = svc.Leaderboard(ScopeAllTime, "DE", "", 10)
	require.NoError(t, err)
	require.Len(t, items, 2)
}

func TestLeaderboardDailyWindow(t *testing.T) {
	db := openTestDB(t)
	svc := NewProgressService(db, NewLedgerService(db), 10)
	r1 := createRestaurant(t, db, "Fresh Spot", "Berlin", "DE")
	r2 := createRestaurant(t, db, "Old Spot", "Berlin", "DE")

	today := uuid.New()
	yesterday := uuid.New()
	now := time.Now().UTC()

	require.NoError(t, db.Create(&models.RestaurantStamp{
		ID: uuid.New(), UserID: today, RestaurantID: r1.ID, FirstStampedAt: now,
	}).Error)
	require.NoError(t, db.Create(&models.RestaurantStamp{
		ID: uuid.New(), UserID: yesterday, RestaurantID: r2.ID, FirstStampedAt: now.AddDate(0, 0, -2),
	}).Error)

	items, err := svc.Leaderboard(ScopeDaily, "", "", 10)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, today, items[0].UserID)
	require.NotEmpty(t, items[0].FirstDay)
	require.NotEmpty(t, items[0].LastDay)
}
