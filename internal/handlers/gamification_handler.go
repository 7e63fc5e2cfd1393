package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/tastetrail/engagement-backend/internal/dto"
	"github.com/tastetrail/engagement-backend/internal/identity"
	"github.com/tastetrail/engagement-backend/internal/services"
)

type GamificationHandler struct {
	progress *services.ProgressService
	identity *identity.Service
}

func NewGamificationHandler(progress *services.ProgressService, identitySvc *identity.Service) *GamificationHandler {
	return &GamificationHandler{progress: progress, identity: identitySvc}
}

// Passport handles GET /passport.
func (h *GamificationHandler) Passport(c *fiber.Ctx) error {
	user, err := h.identity.FromCtx(c)
	if err != nil {
		if errors.Is(err, identity.ErrUnauthenticated) {
			return unauthorized(c)
		}
		return internalError(c, "failed to resolve identity", err)
	}

	passport, err := h.progress.Passport(user.ID)
	if err != nil {
		return internalError(c, "failed to build passport", err)
	}
	return c.JSON(passport)
}

// Leaderboard handles GET /gamification/leaderboard.
func (h *GamificationHandler) Leaderboard(c *fiber.Ctx) error {
	scope := c.Query("scope", services.ScopeWeekly)
	switch scope {
	case services.ScopeDaily, services.ScopeWeekly, services.ScopeAllTime:
	default:
		scope = services.ScopeWeekly
	}

	country := c.Query("country")
	city := c.Query("city")
	limit := c.QueryInt("limit", 20)

	items, err := h.progress.Leaderboard(scope, country, city, limit)
	if err != nil {
		return internalError(c, "failed to build leaderboard", err)
	}

	return c.JSON(dto.LeaderboardResponse{Items: items, Scope: scope, CityID: city})
}

// Badges handles GET /gamification/badges.
func (h *GamificationHandler) Badges(c *fiber.Ctx) error {
	user, err := h.identity.FromCtx(c)
	if err != nil {
		if errors.Is(err, identity.ErrUnauthenticated) {
			return unauthorized(c)
		}
		return internalError(c, "failed to resolve identity", err)
	}

	earned, err := h.progress.EarnedBadges(user.ID)
	if err != nil {
		return internalError(c, "failed to load badges", err)
	}
	return c.JSON(fiber.Map{"badges": earned})
}

// Stamp handles POST /stamps: a check-in scan at a restaurant.
func (h *GamificationHandler) Stamp(c *fiber.Ctx) error {
	user, err := h.identity.FromCtx(c)
	if err != nil {
		if errors.Is(err, identity.ErrUnauthenticated) {
			return unauthorized(c)
		}
		return internalError(c, "failed to resolve identity", err)
	}

	var req struct {
		RestaurantID uuid.UUID `json:"restaurant_id"`
	}
	if err := c.BodyParser(&req); err != nil || req.RestaurantID == uuid.Nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "restaurant_id is required",
		})
	}

	result, err := h.progress.RecordStamp(user.ID, req.RestaurantID)
	if err != nil {
		if errors.Is(err, services.ErrRestaurantNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "Restaurant not found",
			})
		}
		return internalError(c, "failed to record stamp", err)
	}

	passport, err := h.progress.Passport(user.ID)
	if err != nil {
		return internalError(c, "failed to load profile", err)
	}

	return c.JSON(dto.StampResponse{
		RestaurantID: req.RestaurantID,
		AlreadyHad:   result.AlreadyHad,
		XPAwarded:    result.XPAwarded,
		Profile:      passport.Profile,
	})
}

// CompleteStep handles POST /trails/:id/steps/:stepId/complete.
func (h *GamificationHandler) CompleteStep(c *fiber.Ctx) error {
	user, err := h.identity.FromCtx(c)
	if err != nil {
		if errors.Is(err, identity.ErrUnauthenticated) {
			return unauthorized(c)
		}
		return internalError(c, "failed to resolve identity", err)
	}

	stepID, err := uuid.Parse(c.Params("stepId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid step id",
		})
	}

	result, err := h.progress.CompleteStep(user.ID, stepID)
	if err != nil {
		if errors.Is(err, services.ErrStepNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "Trail step not found",
			})
		}
		return internalError(c, "failed to complete step", err)
	}

	resp := dto.StepCompletionResponse{
		AlreadyCompleted: result.AlreadyCompleted,
		TrailCompleted:   result.TrailCompleted,
		XPAwarded:        result.XPAwarded,
	}
	if result.BadgeAwarded != nil {
		resp.BadgeAwarded = &dto.BadgeView{
			ID:          result.BadgeAwarded.ID,
			Slug:        result.BadgeAwarded.Slug,
			Name:        result.BadgeAwarded.Name,
			Description: result.BadgeAwarded.Description,
			Icon:        result.BadgeAwarded.Icon,
		}
	}
	return c.JSON(resp)
}

// Trails handles GET /trails.
func (h *GamificationHandler) Trails(c *fiber.Ctx) error {
	trails, err := h.progress.Trails()
	if err != nil {
		return internalError(c, "failed to list trails", err)
	}
	return c.JSON(fiber.Map{"trails": trails})
}

// Trail handles GET /trails/:id.
func (h *GamificationHandler) Trail(c *fiber.Ctx) error {
	trailID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid trail id",
		})
	}

	detail, err := h.progress.Trail(trailID)
	if err != nil {
		if errors.Is(err, services.ErrTrailNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "Trail not found",
			})
		}
		return internalError(c, "failed to load trail", err)
	}
	return c.JSON(detail)
}
