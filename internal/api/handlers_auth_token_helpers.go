package api

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/terraincognita07/calm/internal/models"
)

// authCookie carries the session token for browser clients. An empty value
// with a past expiry deletes it.
func (handler *Handler) authCookie(value string, expiresAt time.Time) *fiber.Cookie {
	return &fiber.Cookie{
		Name:     authCookieName,
		Value:    value,
		Path:     "/",
		Expires:  expiresAt,
		HTTPOnly: true,
		Secure:   handler.cookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	}
}

func (handler *Handler) setAuthCookie(c *fiber.Ctx, token string, expiresAt time.Time) {
	c.Cookie(handler.authCookie(token, expiresAt))
}

func (handler *Handler) clearAuthCookie(c *fiber.Ctx) {
	c.Cookie(handler.authCookie("", time.Unix(0, 0)))
}

// buildToken signs an HS256 token for user that expires tokenTTL from now,
// truncated to whole seconds as the exp claim is.
func (handler *Handler) buildToken(user *models.User) (string, time.Time, error) {
	issuedAt := handler.now().UTC()
	expiresAt := issuedAt.Add(handler.tokenTTL).Truncate(time.Second)

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, authClaims{
		UserID: user.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}).SignedString(handler.secretKey)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}
