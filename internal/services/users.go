package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/terraincognita07/calm/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// normalizedEmailColumn matches the expression the unique email index is
// built on.
const normalizedEmailColumn = "lower(trim(email))"

type UserInput struct {
	Email    *string `json:"email"`
	Name     *string `json:"name"`
	Password *string `json:"password"`
}

func (UserInput) ClaimedUser() uint { return 0 }

type userRules struct {
	users Store[models.User]
}

func NewUserService(users Store[models.User]) *Service[models.User, UserInput] {
	return NewService[models.User, UserInput](users, userRules{users: users}).
		withUnique("email", MessageEmailTaken)
}

func (rules userRules) Build(ctx context.Context, _ uint, input UserInput) (models.User, error) {
	fields := newFieldSet(false)
	user := models.User{}
	if err := rules.validate(ctx, fields, &user, input); err != nil {
		return models.User{}, err
	}
	if err := fields.errs.Err(); err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (rules userRules) Apply(ctx context.Context, current *models.User, input UserInput, partial bool) error {
	fields := newFieldSet(partial)
	if err := rules.validate(ctx, fields, current, input); err != nil {
		return err
	}
	return fields.errs.Err()
}

func (rules userRules) validate(ctx context.Context, fields fieldSet, user *models.User, input UserInput) error {
	if email, ok := fields.email("email", input.Email); ok {
		email = NormalizeEmail(email)
		taken, err := rules.users.ExistsWhere(ctx, normalizedEmailColumn, strings.ToLower(email), user.ID)
		if err != nil {
			return fmt.Errorf("check email uniqueness: %w", err)
		}
		if taken {
			fields.errs.Add("email", MessageEmailTaken)
		} else {
			user.Email = email
		}
	}

	if name, ok := fields.text("name", input.Name, maxCharLength); ok {
		user.Name = name
	}

	if password, ok := fields.text("password", input.Password, maxPassword); ok {
		passwordHash, err := HashPassword(password)
		if err != nil {
			return err
		}
		user.PasswordHash = passwordHash
	}
	return nil
}

func HashPassword(password string) (string, error) {
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(passwordHash), nil
}
