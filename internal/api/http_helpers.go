package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/url"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/calm/internal/policy"
	"github.com/terraincognita07/calm/internal/query"
	"github.com/terraincognita07/calm/internal/services"
)

const (
	messageNotFound             = "not found"
	messageProfessionalNotFound = "Professional not found"
	messageInvalidBody          = "invalid request body"
	messageInternal             = "internal error"
	messageInvalidType          = "Incorrect type."
)

var errInvalidBody = errors.New(messageInvalidBody)

// accessDenied carries a refused policy decision to the response writer.
type accessDenied struct {
	decision policy.Decision
}

func (denied *accessDenied) Error() string {
	return "access denied: " + denied.decision.Reason
}

func (denied *accessDenied) status() int {
	switch denied.decision.Outcome {
	case policy.DenyUnauthenticated:
		return fiber.StatusUnauthorized
	case policy.DenyReadOnly:
		return fiber.StatusMethodNotAllowed
	default:
		return fiber.StatusForbidden
	}
}

func apiError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": message})
}

// respondError writes the response for err. Anything not recognised here is
// logged and hidden behind a 500.
func (handler *Handler) respondError(c *fiber.Ctx, err error) error {
	var denied *accessDenied
	if errors.As(err, &denied) {
		return apiError(c, denied.status(), denied.decision.Reason)
	}
	if validationErr, ok := services.AsValidationError(err); ok {
		return c.Status(fiber.StatusBadRequest).JSON(validationErr.Fields)
	}
	var paramErrs query.ParamErrors
	if errors.As(err, &paramErrs) {
		return c.Status(fiber.StatusBadRequest).JSON(paramErrs)
	}

	switch {
	case errors.Is(err, errInvalidBody):
		return apiError(c, fiber.StatusBadRequest, messageInvalidBody)
	case errors.Is(err, services.ErrProfessionalNotFound):
		return apiError(c, fiber.StatusNotFound, messageProfessionalNotFound)
	case errors.Is(err, services.ErrNotFound), errors.Is(err, services.ErrReferenceNotFound):
		return apiError(c, fiber.StatusNotFound, messageNotFound)
	case errors.Is(err, services.ErrReadOnly):
		return apiError(c, fiber.StatusMethodNotAllowed, policy.ReasonReadOnly)
	}

	handler.log.WithRequestID(requestID(c)).WithError(err).Error("request failed")
	return apiError(c, fiber.StatusInternalServerError, messageInternal)
}

// decodeInput reads a JSON payload. An empty body decodes as an empty
// object so that required-field errors are reported per field.
func decodeInput[In any](c *fiber.Ctx) (In, error) {
	var input In
	body := bytes.TrimSpace(c.Body())
	if len(body) == 0 {
		return input, nil
	}

	if err := json.Unmarshal(body, &input); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return input, &services.ValidationError{Fields: map[string][]string{
				typeErr.Field: {messageInvalidType},
			}}
		}
		return input, errInvalidBody
	}
	return input, nil
}

func queryValues(c *fiber.Ctx) url.Values {
	values, _ := url.ParseQuery(string(c.Request().URI().QueryString()))
	return values
}
