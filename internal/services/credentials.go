package services

import (
	"errors"
	"net/mail"
	"strings"
)

var ErrAuthCredentialsInvalid = errors.New("auth credentials invalid")

// Credentials is a login request after normalization.
type Credentials struct {
	Email    string
	Password string
}

// EmailKey is the case-insensitive lookup key for an account email. It is
// empty when raw does not parse as an address.
func EmailKey(raw string) string {
	key := strings.ToLower(strings.TrimSpace(raw))
	if key == "" {
		return ""
	}
	if _, err := mail.ParseAddress(key); err != nil {
		return ""
	}
	return key
}

func ParseCredentials(email string, password string) (Credentials, error) {
	credentials := Credentials{Email: EmailKey(email), Password: strings.TrimSpace(password)}
	if credentials.Email == "" || credentials.Password == "" {
		return Credentials{}, ErrAuthCredentialsInvalid
	}
	return credentials, nil
}
