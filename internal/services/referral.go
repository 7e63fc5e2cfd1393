package services

import (
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/tastetrail/engagement-backend/internal/config"
	"github.com/tastetrail/engagement-backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrCodeNotFound = errors.New("referral code not found")

// Alphabet for invite codes; drops easily confused glyphs (0/O, 1/I).
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
const codeLength = 8

// ReferralService issues invite codes, hands out signed attribution
// tokens on invite-link visits, and credits inviters exactly once per
// distinct invitee.
type ReferralService struct {
	db     *gorm.DB
	ledger *LedgerService
	cfg    *config.Config
}

func NewReferralService(db *gorm.DB, ledger *LedgerService, cfg *config.Config) *ReferralService {
	return &ReferralService{db: db, ledger: ledger, cfg: cfg}
}

// EnsureCode returns the user's referral code, minting one on first
// call. Codes are immutable; concurrent first calls converge on a
// single row through the unique user index.
func (s *ReferralService) EnsureCode(userID uuid.UUID) (*models.ReferralCode, error) {
	var existing models.ReferralCode
	err := s.db.Where("user_id = ?", userID).First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up referral code: %w", err)
	}

	code, err := randomCode()
	if err != nil {
		return nil, err
	}
	rc := models.ReferralCode{ID: uuid.New(), UserID: userID, Code: code}
	res := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&rc)
	if res.Error != nil && !errors.Is(res.Error, gorm.ErrDuplicatedKey) {
		return nil, fmt.Errorf("failed to create referral code: %w", res.Error)
	}
	if res.Error == nil && res.RowsAffected == 1 {
		return &rc, nil
	}

	if err := s.db.Where("user_id = ?", userID).First(&existing).Error; err != nil {
		return nil, fmt.Errorf("failed to load referral code after conflict: %w", err)
	}
	return &existing, nil
}

// ResolveInviter maps a code to its owner.
func (s *ReferralService) ResolveInviter(code string) (uuid.UUID, error) {
	var rc models.ReferralCode
	if err := s.db.Where("code = ?", code).First(&rc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return uuid.Nil, ErrCodeNotFound
		}
		return uuid.Nil, fmt.Errorf("failed to resolve code: %w", err)
	}
	return rc.UserID, nil
}

// RecordClick appends a click fact for the code's inviter. The invitee
// is unknown at click time and stays null.
func (s *ReferralService) RecordClick(code string) error {
	inviterID, err := s.ResolveInviter(code)
	if err != nil {
		return err
	}

	event := models.ReferralEvent{
		ID:        uuid.New(),
		InviterID: inviterID,
		EventType: models.ReferralEventClick,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.db.Create(&event).Error; err != nil {
		return fmt.Errorf("failed to record click: %w", err)
	}

	s.ledger.LogEvent(&inviterID, models.EventReferralClick, "referral", code, nil)
	return nil
}

// IssueToken mints the stateless attribution token carried by the
// invite cookie. It is advisory only and re-validated on consumption.
func (s *ReferralService) IssueToken(code string) (string, error) {
	now := time.Now().UTC()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"code": code,
		"iat":  now.Unix(),
		"exp":  now.Add(s.cfg.ReferralTokenTTL).Unix(),
	})
	signed, err := token.SignedString([]byte(s.cfg.ReferralTokenSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign attribution token: %w", err)
	}
	return signed, nil
}

// ParseToken verifies a token and extracts its code. An invalid or
// expired token yields ok=false, never an error: attribution is
// best-effort and a stale cookie must not break the request.
func (s *ReferralService) ParseToken(tokenString string) (string, bool) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.ReferralTokenSecret), nil
	})
	if err != nil || !token.Valid {
		return "", false
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", false
	}
	code, _ := claims["code"].(string)
	return code, code != ""
}

// ConsumeAttribution credits the inviter behind the token for the newly
// authenticated user. At most one signup fact ever exists per
// (inviter, invitee) pair, so retries and duplicate calls are no-ops.
// Self-referral never credits.
func (s *ReferralService) ConsumeAttribution(tokenString string, newUserID uuid.UUID) (bool, error) {
	code, ok := s.ParseToken(tokenString)
	if !ok {
		return false, nil
	}

	inviterID, err := s.ResolveInviter(code)
	if err != nil {
		if errors.Is(err, ErrCodeNotFound) {
			return false, nil
		}
		return false, err
	}

	if inviterID == newUserID {
		return false, nil
	}

	event := models.ReferralEvent{
		ID:        uuid.New(),
		InviterID: inviterID,
		InviteeID: &newUserID,
		EventType: models.ReferralEventSignup,
		CreatedAt: time.Now().UTC(),
	}
	res := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&event)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return false, nil
		}
		return false, fmt.Errorf("failed to record referral signup: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return false, nil
	}

	s.ledger.LogEvent(&inviterID, models.EventReferralSign, "referral", newUserID.String(), nil)
	return true, nil
}

// Stats aggregates the inviter-facing click and signup counts.
func (s *ReferralService) Stats(userID uuid.UUID) (clicks, signups int64, err error) {
	if err = s.db.Model(&models.ReferralEvent{}).
		Where("inviter_id = ? AND event_type = ?", userID, models.ReferralEventClick).
		Count(&clicks).Error; err != nil {
		return 0, 0, fmt.Errorf("failed to count clicks: %w", err)
	}
	if err = s.db.Model(&models.ReferralEvent{}).
		Where("inviter_id = ? AND event_type = ?", userID, models.ReferralEventSignup).
		Count(&signups).Error; err != nil {
		return 0, 0, fmt.Errorf("failed to count signups: %w", err)
	}
	return clicks, signups, nil
}

func randomCode() (string, error) {
	buf := make([]byte, codeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate code: %w", err)
	}
	for i, b := range buf {
		buf[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(buf), nil
}
