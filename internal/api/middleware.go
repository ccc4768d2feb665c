package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/calm/internal/models"
	"github.com/terraincognita07/calm/internal/policy"
)

const (
	authCookieName      = "calm_auth"
	contextUserKey      = "current_user"
	contextRequestIDKey = "request_id"
	requestIDHeader     = "X-Request-ID"
)

func currentUser(c *fiber.Ctx) (*models.User, bool) {
	user, ok := c.Locals(contextUserKey).(*models.User)
	return user, ok && user != nil
}

// currentRequester is anonymous unless Authenticate resolved a user.
func currentRequester(c *fiber.Ctx) policy.Requester {
	if user, ok := currentUser(c); ok {
		return policy.Requester{UserID: user.ID}
	}
	return policy.Anonymous()
}

func requestID(c *fiber.Ctx) string {
	id, _ := c.Locals(contextRequestIDKey).(string)
	return id
}
