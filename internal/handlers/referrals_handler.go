package handlers

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/tastetrail/engagement-backend/internal/config"
	"github.com/tastetrail/engagement-backend/internal/dto"
	"github.com/tastetrail/engagement-backend/internal/identity"
	"github.com/tastetrail/engagement-backend/internal/services"
)

type ReferralsHandler struct {
	referral *services.ReferralService
	identity *identity.Service
	cfg      *config.Config
}

func NewReferralsHandler(referral *services.ReferralService, identitySvc *identity.Service, cfg *config.Config) *ReferralsHandler {
	return &ReferralsHandler{referral: referral, identity: identitySvc, cfg: cfg}
}

// Me handles GET /referrals/me: the inviter-facing code + stats view.
func (h *ReferralsHandler) Me(c *fiber.Ctx) error {
	user, err := h.identity.FromCtx(c)
	if err != nil {
		if errors.Is(err, identity.ErrUnauthenticated) {
			return unauthorized(c)
		}
		return internalError(c, "failed to resolve identity", err)
	}

	code, err := h.referral.EnsureCode(user.ID)
	if err != nil {
		return internalError(c, "failed to ensure referral code", err)
	}

	clicks, signups, err := h.referral.Stats(user.ID)
	if err != nil {
		return internalError(c, "failed to load referral stats", err)
	}

	return c.JSON(dto.ReferralStatsResponse{
		Code:      code.Code,
		InviteURL: h.cfg.AppBaseURL + "/invite/" + code.Code,
		Clicks:    clicks,
		Signups:   signups,
	})
}

// Invite handles GET /invite/:code. It always redirects: a known code
// records a click and sets the attribution cookie, an unknown code just
// sends the visitor home without crediting anyone.
func (h *ReferralsHandler) Invite(c *fiber.Ctx) error {
	code := c.Params("code")

	if err := h.referral.RecordClick(code); err != nil {
		if !errors.Is(err, services.ErrCodeNotFound) {
			slog.Error("failed to record invite click", "code", code, "error", err)
		}
		return c.Redirect(h.cfg.InviteHomeURL, fiber.StatusFound)
	}

	token, err := h.referral.IssueToken(code)
	if err != nil {
		slog.Error("failed to issue attribution token", "code", code, "error", err)
		return c.Redirect(h.cfg.InviteHomeURL, fiber.StatusFound)
	}

	c.Cookie(&fiber.Cookie{
		Name:     AttributionCookie,
		Value:    token,
		Expires:  time.Now().Add(h.cfg.ReferralTokenTTL),
		Path:     "/",
		HTTPOnly: true,
		SameSite: "Lax",
	})

	return c.Redirect(h.cfg.InviteSignupURL, fiber.StatusFound)
}
