package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

const messageInvalidToken = "Invalid or expired token."

// Authenticate resolves the requester when credentials are sent. A bad
// Authorization header is rejected; a stale auth cookie is ignored so that
// public reads keep working.
func (handler *Handler) Authenticate(c *fiber.Ctx) error {
	user, fromHeader, err := handler.authenticateRequest(c)
	switch {
	case err == nil:
		c.Locals(contextUserKey, user)
	case errors.Is(err, errNoCredentials):
	case fromHeader:
		return apiError(c, fiber.StatusUnauthorized, messageInvalidToken)
	}
	return c.Next()
}

func (handler *Handler) AuthRequired(c *fiber.Ctx) error {
	if _, ok := currentUser(c); !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	return c.Next()
}
