package database

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/tastetrail/engagement-backend/internal/config"
	"github.com/tastetrail/engagement-backend/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

func Connect(cfg *config.Config) error {
	var err error
	DB, err = gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
		// Uniqueness violations are part of the contract (duplicate
		// claims, repeat signup facts); translate them to
		// gorm.ErrDuplicatedKey so callers can branch on them.
		TranslateError: true,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetMaxIdleConns(25)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	slog.Info("database connected")
	return nil
}

// Migrate runs AutoMigrate for every model owned by this service.
func Migrate() error {
	return MigrateModels(DB)
}

// MigrateModels migrates the full schema on the given connection.
// Split out so tests can run the same schema on their own database.
func MigrateModels(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.UserProfile{},
		&models.Restaurant{},
		&models.RestaurantStamp{},
		&models.Badge{},
		&models.UserBadge{},
		&models.Trail{},
		&models.TrailStep{},
		&models.TrailStepCompletion{},
		&models.DailyDrop{},
		&models.DropClaim{},
		&models.ReferralCode{},
		&models.ReferralEvent{},
		&models.AppEvent{},
		&models.SystemLog{},
	)
}

func Ping() error {
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
