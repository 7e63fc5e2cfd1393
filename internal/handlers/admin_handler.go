package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/tastetrail/engagement-backend/internal/dto"
	"github.com/tastetrail/engagement-backend/internal/models"
	"gorm.io/gorm"
)

// AdminHandler covers the minimal catalog management the engagement
// core needs: restaurants, badges, trails, and drops have to exist
// before anyone can stamp, complete, or claim them.
type AdminHandler struct {
	db *gorm.DB
}

func NewAdminHandler(db *gorm.DB) *AdminHandler {
	return &AdminHandler{db: db}
}

func (h *AdminHandler) CreateRestaurant(c *fiber.Ctx) error {
	var req dto.CreateRestaurantRequest
	if err := c.BodyParser(&req); err != nil || req.Name == "" || req.Slug == "" {
		return badRequest(c, "name and slug are required")
	}

	restaurant := models.Restaurant{
		ID:      uuid.New(),
		Name:    req.Name,
		Slug:    req.Slug,
		City:    req.City,
		Country: req.Country,
	}
	if err := h.db.Create(&restaurant).Error; err != nil {
		return internalError(c, "failed to create restaurant", err)
	}
	return c.Status(fiber.StatusCreated).JSON(restaurant)
}

func (h *AdminHandler) CreateBadge(c *fiber.Ctx) error {
	var req dto.CreateBadgeRequest
	if err := c.BodyParser(&req); err != nil || req.Slug == "" || req.Name == "" {
		return badRequest(c, "slug and name are required")
	}

	badge := models.Badge{
		ID:          uuid.New(),
		Slug:        req.Slug,
		Name:        req.Name,
		Description: req.Description,
		Icon:        req.Icon,
	}
	if err := h.db.Create(&badge).Error; err != nil {
		return internalError(c, "failed to create badge", err)
	}
	return c.Status(fiber.StatusCreated).JSON(badge)
}

func (h *AdminHandler) CreateTrail(c *fiber.Ctx) error {
	var req dto.CreateTrailRequest
	if err := c.BodyParser(&req); err != nil || req.Slug == "" || req.Name == "" {
		return badRequest(c, "slug and name are required")
	}

	trail := models.Trail{
		ID:          uuid.New(),
		Slug:        req.Slug,
		Name:        req.Name,
		Description: req.Description,
		BadgeID:     req.BadgeID,
		XPReward:    req.XPReward,
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&trail).Error; err != nil {
			return err
		}
		for _, step := range req.Steps {
			s := models.TrailStep{
				ID:           uuid.New(),
				TrailID:      trail.ID,
				RestaurantID: step.RestaurantID,
				Position:     step.Position,
			}
			if err := tx.Create(&s).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return internalError(c, "failed to create trail", err)
	}
	return c.Status(fiber.StatusCreated).JSON(trail)
}

func (h *AdminHandler) CreateDrop(c *fiber.Ctx) error {
	var req dto.CreateDropRequest
	if err := c.BodyParser(&req); err != nil || req.Title == "" {
		return badRequest(c, "title is required")
	}
	if !req.StartsAt.Before(req.EndsAt) {
		return badRequest(c, "starts_at must be before ends_at")
	}
	if req.Capacity < 0 {
		return badRequest(c, "capacity must be non-negative")
	}

	drop := models.DailyDrop{
		ID:           uuid.New(),
		RestaurantID: req.RestaurantID,
		Title:        req.Title,
		Description:  req.Description,
		StartsAt:     req.StartsAt,
		EndsAt:       req.EndsAt,
		Capacity:     req.Capacity,
		IsPublished:  req.IsPublished,
	}
	if err := h.db.Create(&drop).Error; err != nil {
		return internalError(c, "failed to create drop", err)
	}
	return c.Status(fiber.StatusCreated).JSON(drop)
}

func (h *AdminHandler) PublishDrop(c *fiber.Ctx) error {
	dropID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid drop id")
	}

	res := h.db.Model(&models.DailyDrop{}).
		Where("id = ?", dropID).
		Update("is_published", true)
	if res.Error != nil {
		return internalError(c, "failed to publish drop", res.Error)
	}
	if res.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: "Drop not found",
		})
	}
	return c.JSON(fiber.Map{"published": true})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
		Error: true, Message: msg,
	})
}
