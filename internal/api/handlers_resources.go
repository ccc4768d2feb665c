package api

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/calm/internal/query"
	"github.com/terraincognita07/calm/internal/services"
)

// listProfessionals switches to the availability view when both window
// bounds are sent.
func (handler *Handler) listProfessionals(c *fiber.Ctx, q query.Query) (any, error) {
	rawStart := c.Query("start_time")
	rawEnd := c.Query("end_time")
	if services.HasAvailabilityWindow(rawStart, rawEnd) {
		return handler.professionalService.Availability(c.UserContext(), q, rawStart, rawEnd)
	}
	return handler.professionalService.List(c.UserContext(), q)
}

// listFeedback narrows feedback to one professional when asked. An unknown
// professional fails the request instead of returning an empty list.
func (handler *Handler) listFeedback(c *fiber.Ctx, q query.Query) (any, error) {
	raw, present := c.Queries()["professional"]
	if !present {
		return handler.feedbackService.List(c.UserContext(), q)
	}

	professionalID, err := query.ParseIDParam("professional", strings.TrimSpace(raw))
	if err != nil {
		return nil, err
	}
	return handler.feedbackService.ListForProfessional(c.UserContext(), q, professionalID)
}
