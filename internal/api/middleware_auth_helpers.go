package api

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/terraincognita07/calm/internal/models"
)

var (
	errNoCredentials = errors.New("no credentials")
	errInvalidToken  = errors.New("invalid token")
)

// requestToken returns the bearer token, falling back to the auth cookie.
// fromHeader reports which one was used.
func requestToken(c *fiber.Ctx) (token string, fromHeader bool) {
	header := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	if header != "" {
		scheme, value, found := strings.Cut(header, " ")
		if found && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(value), true
		}
		return "", true
	}
	return strings.TrimSpace(c.Cookies(authCookieName)), false
}

func (handler *Handler) parseToken(tokenValue string) (*authClaims, error) {
	claims := &authClaims{}
	token, err := jwt.ParseWithClaims(tokenValue, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return handler.secretKey, nil
	}, jwt.WithTimeFunc(handler.now))
	if err != nil || !token.Valid {
		return nil, errInvalidToken
	}
	if claims.ExpiresAt == nil || claims.ExpiresAt.Time.Before(handler.now()) {
		return nil, errInvalidToken
	}
	if claims.UserID == 0 {
		return nil, errInvalidToken
	}
	return claims, nil
}

func (handler *Handler) authenticateRequest(c *fiber.Ctx) (*models.User, bool, error) {
	tokenValue, fromHeader := requestToken(c)
	if tokenValue == "" {
		if fromHeader {
			return nil, true, errInvalidToken
		}
		return nil, false, errNoCredentials
	}

	claims, err := handler.parseToken(tokenValue)
	if err != nil {
		return nil, fromHeader, err
	}

	user, err := handler.authService.FindByID(c.UserContext(), claims.UserID)
	if err != nil {
		return nil, fromHeader, errInvalidToken
	}
	return &user, fromHeader, nil
}
