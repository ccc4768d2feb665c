package api

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/calm/internal/policy"
	"github.com/terraincognita07/calm/internal/query"
	"github.com/terraincognita07/calm/internal/services"
)

// ownedRecord is implemented by every model; OwnerID is zero for records
// nobody owns.
type ownedRecord interface {
	OwnerID() uint
}

type crudService[T any, In services.Input] interface {
	List(ctx context.Context, q query.Query) ([]T, error)
	Get(ctx context.Context, id uint) (T, error)
	Create(ctx context.Context, requesterID uint, input In) (T, error)
	Update(ctx context.Context, current T, input In, partial bool) (T, error)
	Delete(ctx context.Context, current T) error
}

// listFunc replaces the plain collection listing for resources whose list
// endpoint understands extra parameters.
type listFunc func(c *fiber.Ctx, q query.Query) (any, error)

// resource serves the five CRUD endpoints of one resource. Every request
// is checked against the resource's access policy before the service runs.
type resource[T ownedRecord, In services.Input] struct {
	handler *Handler
	name    policy.Resource
	access  policy.AccessPolicy
	spec    query.Spec
	service crudService[T, In]
	list    listFunc
}

func newResource[T ownedRecord, In services.Input](handler *Handler, name policy.Resource, spec query.Spec, service crudService[T, In]) (*resource[T, In], error) {
	access, err := handler.policies.For(name)
	if err != nil {
		return nil, err
	}
	return &resource[T, In]{
		handler: handler,
		name:    name,
		access:  access,
		spec:    spec,
		service: service,
	}, nil
}

func (r *resource[T, In]) List(c *fiber.Ctx) error {
	if err := r.authorize(c, policy.ActionList, 0, 0); err != nil {
		return r.fail(c, err)
	}

	q, err := r.spec.Build(queryValues(c))
	if err != nil {
		return r.fail(c, err)
	}

	if r.list != nil {
		payload, err := r.list(c, q)
		if err != nil {
			return r.fail(c, err)
		}
		return c.JSON(payload)
	}

	records, err := r.service.List(c.UserContext(), q)
	if err != nil {
		return r.fail(c, err)
	}
	return c.JSON(records)
}

func (r *resource[T, In]) Create(c *fiber.Ctx) error {
	if err := r.authorize(c, policy.ActionCreate, 0, 0); err != nil {
		return r.fail(c, err)
	}

	input, err := decodeInput[In](c)
	if err != nil {
		return r.fail(c, err)
	}
	if claimed := input.ClaimedUser(); claimed != 0 {
		if err := r.authorize(c, policy.ActionCreate, 0, claimed); err != nil {
			return r.fail(c, err)
		}
	}

	record, err := r.service.Create(c.UserContext(), currentRequester(c).UserID, input)
	if err != nil {
		return r.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(record)
}

func (r *resource[T, In]) Retrieve(c *fiber.Ctx) error {
	record, err := r.load(c)
	if err != nil {
		return r.fail(c, err)
	}
	if err := r.authorize(c, policy.ActionRetrieve, record.OwnerID(), 0); err != nil {
		return r.fail(c, err)
	}
	return c.JSON(record)
}

// Update serves PUT and PATCH. PATCH validates only the fields sent.
func (r *resource[T, In]) Update(c *fiber.Ctx) error {
	record, err := r.load(c)
	if err != nil {
		return r.fail(c, err)
	}
	if err := r.authorize(c, policy.ActionUpdate, record.OwnerID(), 0); err != nil {
		return r.fail(c, err)
	}

	input, err := decodeInput[In](c)
	if err != nil {
		return r.fail(c, err)
	}
	if claimed := input.ClaimedUser(); claimed != 0 {
		if err := r.authorize(c, policy.ActionUpdate, record.OwnerID(), claimed); err != nil {
			return r.fail(c, err)
		}
	}

	partial := c.Method() == fiber.MethodPatch
	updated, err := r.service.Update(c.UserContext(), record, input, partial)
	if err != nil {
		return r.fail(c, err)
	}
	return c.JSON(updated)
}

func (r *resource[T, In]) Delete(c *fiber.Ctx) error {
	record, err := r.load(c)
	if err != nil {
		return r.fail(c, err)
	}
	if err := r.authorize(c, policy.ActionDelete, record.OwnerID(), 0); err != nil {
		return r.fail(c, err)
	}
	if err := r.service.Delete(c.UserContext(), record); err != nil {
		return r.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// load resolves the :id path parameter. Malformed ids are reported as
// missing records.
func (r *resource[T, In]) load(c *fiber.Ctx) (T, error) {
	var zero T
	id, err := query.ParseID(c.Params("id"))
	if err != nil {
		return zero, services.ErrNotFound
	}
	return r.service.Get(c.UserContext(), id)
}

func (r *resource[T, In]) authorize(c *fiber.Ctx, action policy.Action, ownerID uint, claimedOwnerID uint) error {
	return r.handler.authorize(c, r.name, r.access, policy.Request{
		Action:         action,
		Requester:      currentRequester(c),
		OwnerID:        ownerID,
		ClaimedOwnerID: claimedOwnerID,
	})
}

func (r *resource[T, In]) fail(c *fiber.Ctx, err error) error {
	if _, ok := services.AsValidationError(err); ok {
		r.handler.metrics.RecordValidationFailure(string(r.name))
	}
	var paramErrs query.ParamErrors
	if errors.As(err, &paramErrs) {
		r.handler.metrics.RecordValidationFailure(string(r.name))
	}
	return r.handler.respondError(c, err)
}
