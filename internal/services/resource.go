package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/terraincognita07/calm/internal/query"
	"gorm.io/gorm"
)

// Store is the persistence surface one resource needs. Implementations
// return gorm.ErrRecordNotFound for missing rows.
type Store[T any] interface {
	List(ctx context.Context, q query.Query) ([]T, error)
	FindByID(ctx context.Context, id uint) (T, error)
	Exists(ctx context.Context, id uint) (bool, error)
	ExistsWhere(ctx context.Context, condition string, value any, excludeID uint) (bool, error)
	Create(ctx context.Context, record *T) error
	Save(ctx context.Context, record *T) error
	Delete(ctx context.Context, record *T) error
}

// Rules turns client payloads into records. Build validates a create
// payload; Apply validates an update payload onto a copy of the stored
// record. Both return *ValidationError for rejected input.
type Rules[T any, In Input] interface {
	Build(ctx context.Context, requesterID uint, input In) (T, error)
	Apply(ctx context.Context, current *T, input In, partial bool) error
}

// Input is a decoded client payload. ClaimedUser reports the user the
// payload assigns ownership to, zero when it names nobody.
type Input interface {
	ClaimedUser() uint
}

// uniqueField names the field a unique-index violation is reported on.
type uniqueField struct {
	Field   string
	Message string
}

// Service runs the CRUD lifecycle of one resource.
type Service[T any, In Input] struct {
	store  Store[T]
	rules  Rules[T, In]
	unique *uniqueField
}

func NewService[T any, In Input](store Store[T], rules Rules[T, In]) *Service[T, In] {
	return &Service[T, In]{store: store, rules: rules}
}

func (service *Service[T, In]) withUnique(field string, message string) *Service[T, In] {
	service.unique = &uniqueField{Field: field, Message: message}
	return service
}

func (service *Service[T, In]) List(ctx context.Context, q query.Query) ([]T, error) {
	return service.store.List(ctx, q)
}

func (service *Service[T, In]) Get(ctx context.Context, id uint) (T, error) {
	record, err := service.store.FindByID(ctx, id)
	if err != nil {
		var zero T
		return zero, translateStoreError(err)
	}
	return record, nil
}

func (service *Service[T, In]) Create(ctx context.Context, requesterID uint, input In) (T, error) {
	var zero T
	if service.rules == nil {
		return zero, ErrReadOnly
	}

	record, err := service.rules.Build(ctx, requesterID, input)
	if err != nil {
		return zero, err
	}
	if err := service.store.Create(ctx, &record); err != nil {
		return zero, service.translateWriteError(err)
	}
	return record, nil
}

func (service *Service[T, In]) Update(ctx context.Context, current T, input In, partial bool) (T, error) {
	var zero T
	if service.rules == nil {
		return zero, ErrReadOnly
	}

	updated := current
	if err := service.rules.Apply(ctx, &updated, input, partial); err != nil {
		return zero, err
	}
	if err := service.store.Save(ctx, &updated); err != nil {
		return zero, service.translateWriteError(err)
	}
	return updated, nil
}

func (service *Service[T, In]) Delete(ctx context.Context, current T) error {
	if service.rules == nil {
		return ErrReadOnly
	}
	if err := service.store.Delete(ctx, &current); err != nil {
		return translateStoreError(err)
	}
	return nil
}

// translateWriteError maps constraint violations raised by the store back
// onto the fields the pre-write checks would have reported.
func (service *Service[T, In]) translateWriteError(err error) error {
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey) && service.unique != nil:
		return fieldError(service.unique.Field, service.unique.Message)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return fmt.Errorf("%w: %v", ErrReferenceNotFound, err)
	default:
		return translateStoreError(err)
	}
}

func translateStoreError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return err
}
