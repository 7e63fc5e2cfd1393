package services

import (
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/tastetrail/engagement-backend/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LedgerService appends analytics and milestone facts. Writes are
// best-effort: losing a fact is acceptable, blocking a user-facing flow
// is not.
type LedgerService struct {
	db *gorm.DB
}

func NewLedgerService(db *gorm.DB) *LedgerService {
	return &LedgerService{db: db}
}

// LogEvent appends a generic AppEvent. Persistence failures are logged
// and swallowed; the return value reports whether the fact was stored.
func (l *LedgerService) LogEvent(userID *uuid.UUID, eventType, source, entityID string, metadata map[string]interface{}) bool {
	event := models.AppEvent{
		ID:        uuid.New(),
		UserID:    userID,
		EventType: eventType,
		Source:    source,
		EntityID:  entityID,
		CreatedAt: time.Now().UTC(),
	}

	if len(metadata) > 0 {
		if b, err := json.Marshal(metadata); err == nil {
			event.Metadata = datatypes.JSON(b)
		}
	}

	if err := l.db.Create(&event).Error; err != nil {
		slog.Error("event ledger write failed",
			"event_type", eventType, "source", source, "error", err)
		return false
	}
	return true
}

// LogSignupOnce records the signup milestone for a user at most once,
// no matter how many times it is invoked or from how many concurrent
// requests. The guard is the partial unique index on app_events; the
// insert is a single atomic statement, never read-then-write.
func (l *LedgerService) LogSignupOnce(userID uuid.UUID) (bool, error) {
	event := models.AppEvent{
		ID:        uuid.New(),
		UserID:    &userID,
		EventType: models.EventSignup,
		Source:    "auth",
		CreatedAt: time.Now().UTC(),
	}

	res := l.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&event)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return false, nil
		}
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
