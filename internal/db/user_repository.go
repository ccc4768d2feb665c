package db

import (
	"context"
	"time"

	"github.com/terraincognita07/calm/internal/models"
	"gorm.io/gorm"
)

// UserRepository adds the credential lookups the auth flow needs on top of
// the generic store.
type UserRepository struct {
	*Repository[models.User]
	database *gorm.DB
}

func NewUserRepository(database *gorm.DB) *UserRepository {
	return &UserRepository{
		Repository: NewRepository[models.User](database),
		database:   database,
	}
}

// FindByEmailKey matches key against the lowercased email, the same
// expression the unique index is built on.
func (repo *UserRepository) FindByEmailKey(ctx context.Context, key string) (models.User, error) {
	var user models.User
	err := repo.database.WithContext(ctx).Where("lower(trim(email)) = ?", key).Take(&user).Error
	return user, err
}

func (repo *UserRepository) UpdateLastLogin(ctx context.Context, userID uint, at time.Time) error {
	return repo.touch(ctx, userID, map[string]any{"last_login_at": at})
}

func (repo *UserRepository) UpdatePassword(ctx context.Context, userID uint, passwordHash string) error {
	return repo.touch(ctx, userID, map[string]any{
		"password_hash": passwordHash,
		"updated_at":    time.Now().UTC(),
	})
}

// touch writes exactly the given columns, skipping hooks and the automatic
// updated_at bump.
func (repo *UserRepository) touch(ctx context.Context, userID uint, columns map[string]any) error {
	result := repo.database.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).UpdateColumns(columns)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
