package api

import (
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/calm/internal/services"
)

const (
	messageInvalidCredentials = "Invalid email or password."
	messageTooManyAttempts    = "Too many login attempts. Try again later."
)

// IssueToken exchanges credentials for a signed token, also set as an
// HTTP-only cookie. Failures are counted per client address and email.
func (handler *Handler) IssueToken(c *fiber.Ctx) error {
	var input credentialsInput
	if err := json.Unmarshal(c.Body(), &input); err != nil {
		return apiError(c, fiber.StatusBadRequest, messageInvalidBody)
	}

	limiterKey := loginLimiterKey(c, input.Email)
	if handler.loginLimiter.blocked(limiterKey) {
		handler.metrics.RecordRateLimited()
		return apiError(c, fiber.StatusTooManyRequests, messageTooManyAttempts)
	}

	user, err := handler.authService.Authenticate(c.UserContext(), input.Email, input.Password)
	if err != nil {
		if errors.Is(err, services.ErrAuthCredentialsInvalid) {
			handler.loginLimiter.recordFailure(limiterKey)
			handler.metrics.RecordAuthAttempt(false)
			return apiError(c, fiber.StatusUnauthorized, messageInvalidCredentials)
		}
		return handler.respondError(c, err)
	}
	handler.loginLimiter.reset(limiterKey)
	handler.metrics.RecordAuthAttempt(true)

	token, expiresAt, err := handler.buildToken(&user)
	if err != nil {
		return handler.respondError(c, err)
	}
	handler.setAuthCookie(c, token, expiresAt)

	handler.log.WithRequestID(requestID(c)).WithField("user_id", user.ID).Info("token issued")
	return c.JSON(tokenResponse{Token: token, ExpiresAt: expiresAt, User: user})
}

func (handler *Handler) Logout(c *fiber.Ctx) error {
	handler.clearAuthCookie(c)
	return c.SendStatus(fiber.StatusNoContent)
}

func (handler *Handler) Me(c *fiber.Ctx) error {
	user, _ := currentUser(c)
	return c.JSON(user)
}

func loginLimiterKey(c *fiber.Ctx, email string) string {
	return requestLimiterKey(c) + "|" + services.EmailKey(email)
}
