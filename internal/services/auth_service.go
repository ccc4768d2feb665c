package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/terraincognita07/calm/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var ErrUserNotFound = errors.New("user not found")

type AuthUserRepository interface {
	FindByEmailKey(ctx context.Context, key string) (models.User, error)
	FindByID(ctx context.Context, userID uint) (models.User, error)
	UpdateLastLogin(ctx context.Context, userID uint, at time.Time) error
	UpdatePassword(ctx context.Context, userID uint, passwordHash string) error
}

type AuthService struct {
	users AuthUserRepository
	now   func() time.Time
	// dummyHash keeps the cost of a failed lookup close to a failed compare.
	dummyHash []byte
}

func NewAuthService(users AuthUserRepository) *AuthService {
	dummyHash, _ := bcrypt.GenerateFromPassword([]byte("calm-dummy-password"), bcrypt.DefaultCost)
	return &AuthService{users: users, now: time.Now, dummyHash: dummyHash}
}

// Authenticate checks credentials and records the login time. Unknown
// emails and wrong passwords both yield ErrAuthCredentialsInvalid.
func (service *AuthService) Authenticate(ctx context.Context, emailRaw string, passwordRaw string) (models.User, error) {
	credentials, err := ParseCredentials(emailRaw, passwordRaw)
	if err != nil {
		return models.User{}, err
	}

	user, err := service.users.FindByEmailKey(ctx, credentials.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			_ = bcrypt.CompareHashAndPassword(service.dummyHash, []byte(credentials.Password))
			return models.User{}, ErrAuthCredentialsInvalid
		}
		return models.User{}, fmt.Errorf("load user: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(credentials.Password)) != nil {
		return models.User{}, ErrAuthCredentialsInvalid
	}

	loginAt := service.now().UTC()
	if err := service.users.UpdateLastLogin(ctx, user.ID, loginAt); err != nil {
		return models.User{}, fmt.Errorf("record login: %w", err)
	}
	user.LastLoginAt = &loginAt
	return user, nil
}

func (service *AuthService) FindByID(ctx context.Context, userID uint) (models.User, error) {
	user, err := service.users.FindByID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, ErrUserNotFound
	}
	return user, err
}

// ResetPassword replaces the password of the account behind emailRaw.
func (service *AuthService) ResetPassword(ctx context.Context, emailRaw string, password string) (models.User, error) {
	key := EmailKey(emailRaw)
	if key == "" {
		return models.User{}, ErrAuthCredentialsInvalid
	}

	user, err := service.users.FindByEmailKey(ctx, key)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, fmt.Errorf("%w: %s", ErrUserNotFound, key)
		}
		return models.User{}, fmt.Errorf("load user: %w", err)
	}

	passwordHash, err := HashPassword(password)
	if err != nil {
		return models.User{}, err
	}
	if err := service.users.UpdatePassword(ctx, user.ID, passwordHash); err != nil {
		return models.User{}, fmt.Errorf("update user password: %w", err)
	}
	user.PasswordHash = passwordHash
	return user, nil
}
