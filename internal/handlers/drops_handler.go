package handlers

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/tastetrail/engagement-backend/internal/dto"
	"github.com/tastetrail/engagement-backend/internal/identity"
	"github.com/tastetrail/engagement-backend/internal/services"
)

type DropsHandler struct {
	drops    *services.DropService
	identity *identity.Service
}

func NewDropsHandler(drops *services.DropService, identitySvc *identity.Service) *DropsHandler {
	return &DropsHandler{drops: drops, identity: identitySvc}
}

// Today handles GET /drops/today. Works with or without identity;
// claimed_by_me is only meaningful when authenticated.
func (h *DropsHandler) Today(c *fiber.Ctx) error {
	var userID *uuid.UUID
	if claims, ok := identity.ClaimsFromCtx(c); ok {
		if user, err := h.identity.EnsureUser(claims); err == nil {
			userID = &user.ID
		}
	}

	drop, err := h.drops.Today(userID)
	if err != nil {
		slog.Error("failed to resolve today's drop", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to load today's drop",
		})
	}

	return c.JSON(dto.TodayDropResponse{Drop: drop})
}

// Claim handles POST /drops/:id/claim. Conflict outcomes come back as a
// status field, never an HTTP error: duplicates and full drops are
// expected under contention.
func (h *DropsHandler) Claim(c *fiber.Ctx) error {
	user, err := h.identity.FromCtx(c)
	if err != nil {
		return unauthorized(c)
	}

	dropID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid drop id",
		})
	}

	result, err := h.drops.Claim(dropID, user.ID)
	if err != nil {
		slog.Error("claim failed", "drop_id", dropID, "user_id", user.ID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to claim drop",
		})
	}

	resp := dto.ClaimResponse{Status: string(result.Status)}
	if result.Claim != nil {
		resp.Claim = &dto.ClaimInfo{
			ID:        result.Claim.ID,
			DropID:    result.Claim.DropID,
			ClaimedAt: result.Claim.ClaimedAt,
		}
	}
	return c.JSON(resp)
}

// MyClaims handles GET /drops/my-claims.
func (h *DropsHandler) MyClaims(c *fiber.Ctx) error {
	user, err := h.identity.FromCtx(c)
	if err != nil {
		if errors.Is(err, identity.ErrUnauthenticated) {
			return unauthorized(c)
		}
		return internalError(c, "failed to resolve identity", err)
	}

	claims, err := h.drops.MyClaims(user.ID)
	if err != nil {
		return internalError(c, "failed to load claims", err)
	}
	return c.JSON(dto.MyClaimsResponse{Claims: claims})
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
		Error: true, Message: "Unauthorized",
	})
}

func internalError(c *fiber.Ctx, msg string, err error) error {
	slog.Error(msg, "path", c.Path(), "error", err)
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
		Error: true, Message: "Internal server error",
	})
}
