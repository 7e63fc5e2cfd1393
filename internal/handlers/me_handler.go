package handlers

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/tastetrail/engagement-backend/internal/dto"
	"github.com/tastetrail/engagement-backend/internal/identity"
	"github.com/tastetrail/engagement-backend/internal/services"
)

// AttributionCookie carries the signed referral token between the
// invite-link visit and the first authenticated request.
const AttributionCookie = "tt_ref"

type MeHandler struct {
	identity *identity.Service
	ledger   *services.LedgerService
	referral *services.ReferralService
}

func NewMeHandler(identitySvc *identity.Service, ledger *services.LedgerService, referral *services.ReferralService) *MeHandler {
	return &MeHandler{identity: identitySvc, ledger: ledger, referral: referral}
}

// Me ensures the mirrored identity row exists and runs the two
// at-most-once side effects every authenticated request is allowed to
// retry: the signup milestone and referral attribution consumption.
func (h *MeHandler) Me(c *fiber.Ctx) error {
	claims, ok := identity.ClaimsFromCtx(c)
	if !ok {
		return c.JSON(fiber.Map{"user": nil})
	}

	user, err := h.identity.EnsureUser(claims)
	if err != nil {
		slog.Error("failed to ensure user", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Internal server error",
		})
	}

	if _, err := h.ledger.LogSignupOnce(user.ID); err != nil {
		// Milestone bookkeeping must not fail the identity read.
		slog.Error("signup milestone write failed", "user_id", user.ID, "error", err)
	}

	if token := c.Cookies(AttributionCookie); token != "" {
		credited, err := h.referral.ConsumeAttribution(token, user.ID)
		if err != nil {
			slog.Error("attribution consumption failed", "user_id", user.ID, "error", err)
		} else {
			if credited {
				slog.Info("referral credited", "invitee_id", user.ID)
			}
			// Expire the cookie either way; the store-side uniqueness
			// already absorbed or rejected this token.
			c.Cookie(&fiber.Cookie{
				Name:    AttributionCookie,
				Value:   "",
				Expires: time.Now().Add(-time.Hour),
				Path:    "/",
			})
		}
	}

	return c.JSON(dto.MeResponse{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Image: user.Image,
		Role:  user.Role,
	})
}
