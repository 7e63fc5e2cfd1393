package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/tastetrail/engagement-backend/internal/dto"
	"github.com/tastetrail/engagement-backend/internal/identity"
	"github.com/tastetrail/engagement-backend/internal/services"
)

type EventsHandler struct {
	ledger   *services.LedgerService
	identity *identity.Service
}

func NewEventsHandler(ledger *services.LedgerService, identitySvc *identity.Service) *EventsHandler {
	return &EventsHandler{ledger: ledger, identity: identitySvc}
}

// Log handles POST /events/log. Fire-and-forget: the response is ok
// regardless of whether the fact could be persisted, because analytics
// never blocks a user-facing flow.
func (h *EventsHandler) Log(c *fiber.Ctx) error {
	var req dto.LogEventRequest
	if err := c.BodyParser(&req); err != nil || req.EventType == "" {
		return c.JSON(dto.LogEventResponse{OK: true, Skipped: true})
	}

	var userID *uuid.UUID
	if claims, ok := identity.ClaimsFromCtx(c); ok {
		if user, err := h.identity.EnsureUser(claims); err == nil {
			userID = &user.ID
		}
	}

	logged := h.ledger.LogEvent(userID, req.EventType, req.Source, req.EntityID, req.Metadata)
	return c.JSON(dto.LogEventResponse{OK: true, Skipped: !logged})
}
