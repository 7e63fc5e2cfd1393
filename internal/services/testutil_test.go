package services

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/tastetrail/engagement-backend/internal/config"
	"github.com/tastetrail/engagement-backend/internal/database"
	"github.com/tastetrail/engagement-backend/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// openTestDB spins up a per-test in-memory database with the full
// schema. A single connection serializes writers, which keeps SQLite
// happy while concurrency tests still contend at the service level.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.MigrateModels(db))
	return db
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:           "test-jwt-secret",
		ReferralTokenSecret: "test-ref-secret",
		ReferralTokenTTL:    336 * time.Hour,
		AppBaseURL:          "http://localhost:3000",
		InviteSignupURL:     "/signup",
		InviteHomeURL:       "/",
		StampXP:             10,
	}
}

func createRestaurant(t *testing.T, db *gorm.DB, name, city, country string) *models.Restaurant {
	t.Helper()
	r := &models.Restaurant{
		ID:      uuid.New(),
		Name:    name,
		Slug:    strings.ToLower(strings.ReplaceAll(name, " ", "-")) + "-" + uuid.NewString()[:8],
		City:    city,
		Country: country,
	}
	require.NoError(t, db.Create(r).Error)
	return r
}

func createDrop(t *testing.T, db *gorm.DB, restaurantID uuid.UUID, capacity int, startsAt, endsAt time.Time, published bool) *models.DailyDrop {
	t.Helper()
	d := &models.DailyDrop{
		ID:           uuid.New(),
		RestaurantID: restaurantID,
		Title:        "Test Drop",
		Description:  "two-for-one tasting menu",
		StartsAt:     startsAt,
		EndsAt:       endsAt,
		Capacity:     capacity,
		IsPublished:  published,
	}
	require.NoError(t, db.Create(d).Error)
	return d
}

func createBadge(t *testing.T, db *gorm.DB, slug string) *models.Badge {
	t.Helper()
	b := &models.Badge{
		ID:   uuid.New(),
		Slug: slug,
		Name: slug,
	}
	require.NoError(t, db.Create(b).Error)
	return b
}
