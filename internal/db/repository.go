package db

import (
	"context"

	"github.com/terraincognita07/calm/internal/query"
	"gorm.io/gorm"
)

const defaultOrder = "id ASC"

// Repository is the CRUD store for one model type.
type Repository[T any] struct {
	database *gorm.DB
}

func NewRepository[T any](database *gorm.DB) *Repository[T] {
	return &Repository[T]{database: database}
}

func (repo *Repository[T]) List(ctx context.Context, q query.Query) ([]T, error) {
	statement := repo.database.WithContext(ctx).Model(new(T))
	for _, predicate := range q.Predicates {
		statement = statement.Where(predicate.SQL, predicate.Args...)
	}

	order := q.Order
	if len(order) == 0 {
		order = []string{defaultOrder}
	}
	for _, clause := range order {
		statement = statement.Order(clause)
	}

	records := make([]T, 0)
	if err := statement.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (repo *Repository[T]) FindByID(ctx context.Context, id uint) (T, error) {
	var record T
	if err := repo.database.WithContext(ctx).First(&record, id).Error; err != nil {
		var zero T
		return zero, err
	}
	return record, nil
}

func (repo *Repository[T]) Exists(ctx context.Context, id uint) (bool, error) {
	var matched int64
	if err := repo.database.WithContext(ctx).Model(new(T)).Where("id = ?", id).Count(&matched).Error; err != nil {
		return false, err
	}
	return matched > 0, nil
}

// ExistsWhere reports whether another row has condition equal to value.
// condition is a column or SQL expression and must never come from a
// client.
func (repo *Repository[T]) ExistsWhere(ctx context.Context, condition string, value any, excludeID uint) (bool, error) {
	statement := repo.database.WithContext(ctx).Model(new(T)).Where(condition+" = ?", value)
	if excludeID != 0 {
		statement = statement.Where("id <> ?", excludeID)
	}

	var matched int64
	if err := statement.Count(&matched).Error; err != nil {
		return false, err
	}
	return matched > 0, nil
}

func (repo *Repository[T]) Create(ctx context.Context, record *T) error {
	return repo.database.WithContext(ctx).Create(record).Error
}

func (repo *Repository[T]) Save(ctx context.Context, record *T) error {
	return repo.database.WithContext(ctx).Save(record).Error
}

func (repo *Repository[T]) Delete(ctx context.Context, record *T) error {
	result := repo.database.WithContext(ctx).Delete(record)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
