package services

import (
	"context"
	"sort"
	"strings"

	"github.com/terraincognita07/calm/internal/models"
	"github.com/terraincognita07/calm/internal/query"
	"gorm.io/gorm"
)

// memoryStore is an in-memory Store. It ignores query predicates.
type memoryStore[T any] struct {
	records     map[uint]T
	nextID      uint
	idOf        func(T) uint
	setID       func(*T, uint)
	existsWhere func(record T, condition string, value any) bool
	writeErr    error
	lastQuery   query.Query
}

func newMemoryStore[T any](idOf func(T) uint, setID func(*T, uint)) *memoryStore[T] {
	return &memoryStore[T]{records: make(map[uint]T), idOf: idOf, setID: setID}
}

func (store *memoryStore[T]) List(_ context.Context, q query.Query) ([]T, error) {
	store.lastQuery = q
	ids := make([]uint, 0, len(store.records))
	for id := range store.records {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	records := make([]T, 0, len(ids))
	for _, id := range ids {
		records = append(records, store.records[id])
	}
	return records, nil
}

func (store *memoryStore[T]) FindByID(_ context.Context, id uint) (T, error) {
	record, ok := store.records[id]
	if !ok {
		var zero T
		return zero, gorm.ErrRecordNotFound
	}
	return record, nil
}

func (store *memoryStore[T]) Exists(_ context.Context, id uint) (bool, error) {
	_, ok := store.records[id]
	return ok, nil
}

func (store *memoryStore[T]) ExistsWhere(_ context.Context, condition string, value any, excludeID uint) (bool, error) {
	if store.existsWhere == nil {
		return false, nil
	}
	for id, record := range store.records {
		if id == excludeID {
			continue
		}
		if store.existsWhere(record, condition, value) {
			return true, nil
		}
	}
	return false, nil
}

func (store *memoryStore[T]) Create(_ context.Context, record *T) error {
	if store.writeErr != nil {
		return store.writeErr
	}
	store.nextID++
	store.setID(record, store.nextID)
	store.records[store.nextID] = *record
	return nil
}

func (store *memoryStore[T]) Save(_ context.Context, record *T) error {
	if store.writeErr != nil {
		return store.writeErr
	}
	store.records[store.idOf(*record)] = *record
	return nil
}

func (store *memoryStore[T]) Delete(_ context.Context, record *T) error {
	id := store.idOf(*record)
	if _, ok := store.records[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(store.records, id)
	return nil
}

func (store *memoryStore[T]) put(record T) T {
	store.nextID++
	store.setID(&record, store.nextID)
	store.records[store.nextID] = record
	return record
}

func newUserStore() *memoryStore[models.User] {
	store := newMemoryStore(
		func(user models.User) uint { return user.ID },
		func(user *models.User, id uint) { user.ID = id },
	)
	store.existsWhere = func(user models.User, condition string, value any) bool {
		return condition == normalizedEmailColumn && strings.ToLower(strings.TrimSpace(user.Email)) == value
	}
	return store
}

func newProfessionalStore() *memoryStore[models.Professional] {
	store := newMemoryStore(
		func(professional models.Professional) uint { return professional.ID },
		func(professional *models.Professional, id uint) { professional.ID = id },
	)
	store.existsWhere = func(professional models.Professional, condition string, value any) bool {
		return condition == "user_id" && professional.UserID == value
	}
	return store
}

func newProfileStore() *memoryStore[models.Profile] {
	store := newMemoryStore(
		func(profile models.Profile) uint { return profile.ID },
		func(profile *models.Profile, id uint) { profile.ID = id },
	)
	store.existsWhere = func(profile models.Profile, condition string, value any) bool {
		return condition == "user_id" && profile.UserID == value
	}
	return store
}

func newAppointmentStore() *memoryStore[models.Appointment] {
	return newMemoryStore(
		func(appointment models.Appointment) uint { return appointment.ID },
		func(appointment *models.Appointment, id uint) { appointment.ID = id },
	)
}

func newFeedbackStore() *memoryStore[models.Feedback] {
	return newMemoryStore(
		func(feedback models.Feedback) uint { return feedback.ID },
		func(feedback *models.Feedback, id uint) { feedback.ID = id },
	)
}

func newClinicStore() *memoryStore[models.Clinic] {
	return newMemoryStore(
		func(clinic models.Clinic) uint { return clinic.ID },
		func(clinic *models.Clinic, id uint) { clinic.ID = id },
	)
}

func stringPointer(value string) *string {
	return &value
}
