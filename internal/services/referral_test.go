package services

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/tastetrail/engagement-backend/internal/models"
)

func TestEnsureCodeIdempotent(t *testing.T) {
	db := openTestDB(t)
	svc := NewReferralService(db, NewLedgerService(db), testConfig())
	userID := uuid.New()

	first, err := svc.EnsureCode(userID)
	require.NoError(t, err)
	require.Len(t, first.Code, 8)

	second, err := svc.EnsureCode(userID)
	require.NoError(t, err)
	require.Equal(t, first.Code, second.Code)
	require.Equal(t, first.ID, second.ID)

	var rows int64
	require.NoError(t, db.Model(&models.ReferralCode{}).
		Where("user_id = ?", userID).Count(&rows).Error)
	require.Equal(t, int64(1), rows)
}

func TestEnsureCodeConcurrent(t *testing.T) {
	db := openTestDB(t)
	svc := NewReferralService(db, NewLedgerService(db), testConfig())
	userID := uuid.New()

	const attempts = 5
	var wg sync.WaitGroup
	codes := make([]string, attempts)
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rc, err := svc.EnsureCode(userID)
			errs[i] = err
			if err == nil {
				codes[i] = rc.Code
			}
		}(i)
	}
	wg.Wait()

	for i := 0; i < attempts; i++ {
		require.NoError(t, errs[i])
		require.Equal(t, codes[0], codes[i])
	}

	var rows int64
	require.NoError(t, db.Model(&models.ReferralCode{}).
		Where("user_id = ?", userID).Count(&rows).Error)
	require.Equal(t, int64(1), rows)
}

func TestResolveInviter(t *testing.T) {
	db := openTestDB(t)
	svc := NewReferralService(db, NewLedgerService(db), testConfig())
	userID := uuid.New()

	code, err := svc.EnsureCode(userID)
	require.NoError(t, err)

	inviterID, err := svc.ResolveInviter(code.Code)
	require.NoError(t, err)
	require.Equal(t, userID, inviterID)

	_, err = svc.ResolveInviter("NOPE1234")
	require.ErrorIs(t, err, ErrCodeNotFound)
}

func TestRecordClick(t *testing.T) {
	db := openTestDB(t)
	svc := NewReferralService(db, NewLedgerService(db), testConfig())
	inviter := uuid.New()
	code, err := svc.EnsureCode(inviter)
	require.NoError(t, err)

	require.NoError(t, svc.RecordClick(code.Code))
	require.NoError(t, svc.RecordClick(code.Code))

	clicks, signups, err := svc.Stats(inviter)
	require.NoError(t, err)
	require.Equal(t, int64(2), clicks)
	require.Zero(t, signups)

	require.ErrorIs(t, svc.RecordClick("NOPE1234"), ErrCodeNotFound)
}

func TestAttributionTokenRoundTrip(t *testing.T) {
	db := openTestDB(t)
	svc := NewReferralService(db, NewLedgerService(db), testConfig())

	token, err := svc.IssueToken("ABCD2345")
	require.NoError(t, err)

	code, ok := svc.ParseToken(token)
	require.True(t, ok)
	require.Equal(t, "ABCD2345", code)

	_, ok = svc.ParseToken("not-a-token")
	require.False(t, ok)

	_, ok = svc.ParseToken("")
	require.False(t, ok)
}

func TestAttributionTokenExpiry(t *testing.T) {
	db := openTestDB(t)
	cfg := testConfig()
	cfg.ReferralTokenTTL = -time.Minute
	svc := NewReferralService(db, NewLedgerService(db), cfg)

	token, err := svc.IssueToken("ABCD2345")
	require.NoError(t, err)

	_, ok := svc.ParseToken(token)
	require.False(t, ok)
}

func TestConsumeAttributionCreditsOnce(t *testing.T) {
	db := openTestDB(t)
	svc := NewReferralService(db, NewLedgerService(db), testConfig())
	inviter := uuid.New()
	invitee := uuid.New()

	code, err := svc.EnsureCode(inviter)
	require.NoError(t, err)
	token, err := svc.IssueToken(code.Code)
	require.NoError(t, err)

	credited, err := svc.ConsumeAttribution(token, invitee)
	require.NoError(t, err)
	require.True(t, credited)

	// Retried or duplicated consumption is a no-op, not a double credit.
	credited, err = svc.ConsumeAttribution(token, invitee)
	require.NoError(t, err)
	require.False(t, credited)

	var rows int64
	require.NoError(t, db.Model(&models.ReferralEvent{}).
		Where("inviter_id = ? AND invitee_id = ? AND event_type = ?",
			inviter, invitee, models.ReferralEventSignup).
		Count(&rows).Error)
	require.Equal(t, int64(1), rows)

	_, signups, err := svc.Stats(inviter)
	require.NoError(t, err)
	require.Equal(t, int64(1), signups)
}

func TestConsumeAttributionConcurrent(t *testing.T) {
	db := openTestDB(t)
	svc := NewReferralService(db, NewLedgerService(db), testConfig())
	inviter := uuid.New()
	invitee := uuid.New()

	code, err := svc.EnsureCode(inviter)
	require.NoError(t, err)
	token, err := svc.IssueToken(code.Code)
	require.NoError(t, err)

	const attempts = 5
	var wg sync.WaitGroup
	credits := make([]bool, attempts)
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			credits[i], errs[i] = svc.ConsumeAttribution(token, invitee)
		}(i)
	}
	wg.Wait()

	wins := 0
	for i := 0; i < attempts; i++ {
		require.NoError(t, errs[i])
		if credits[i] {
			wins++
		}
	}
	require.Equal(t, 1, wins)

	var rows int64
	require.NoError(t, db.Model(&models.ReferralEvent{}).
		Where("inviter_id = ? AND event_type = ?", inviter, models.ReferralEventSignup).
		Count(&rows).Error)
	require.Equal(t, int64(1), rows)
}

func TestConsumeAttributionRejectsSelfReferral(t *testing.T) {
	db := openTestDB(t)
	svc := NewReferralService(db, NewLedgerService(db), testConfig())
	inviter := uuid.New()

	code, err := svc.EnsureCode(inviter)
	require.NoError(t, err)
	token, err := svc.IssueToken(code.Code)
	require.NoError(t, err)

	credited, err := svc.ConsumeAttribution(token, inviter)
	require.NoError(t, err)
	require.False(t, credited)

	var rows int64
	require.NoError(t, db.Model(&models.ReferralEvent{}).
		Where("event_type = ?", models.ReferralEventSignup).Count(&rows).Error)
	require.Zero(t, rows)
}

func TestConsumeAttributionDistinctInviteesBothCredit(t *testing.T) {
	db := openTestDB(t)
	svc := NewReferralService(db, NewLedgerService(db), testConfig())
	inviter := uuid.New()

	code, err := svc.EnsureCode(inviter)
	require.NoError(t, err)
	token, err := svc.IssueToken(code.Code)
	require.NoError(t, err)

	credited, err := svc.ConsumeAttribution(token, uuid.New())
	require.NoError(t, err)
	require.True(t, credited)

	credited, err = svc.ConsumeAttribution(token, uuid.New())
	require.NoError(t, err)
	require.True(t, credited)

	_, signups, err := svc.Stats(inviter)
	require.NoError(t, err)
	require.Equal(t, int64(2), signups)
}

func TestConsumeAttributionUnknownOrInvalidToken(t *testing.T) {
	db := openTestDB(t)
	svc := NewReferralService(db, NewLedgerService(db), testConfig())

	// Token signed for a code that was never issued.
	token, err := svc.IssueToken("GHOST234")
	require.NoError(t, err)
	credited, err := svc.ConsumeAttribution(token, uuid.New())
	require.NoError(t, err)
	require.False(t, credited)

	credited, err = svc.ConsumeAttribution("garbage", uuid.New())
	require.NoError(t, err)
	require.False(t, credited)
}
