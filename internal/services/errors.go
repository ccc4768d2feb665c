package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrReferenceNotFound = errors.New("referenced record not found")
	ErrReadOnly          = errors.New("resource is read-only")
)

// NonFieldErrors keys failures that span several fields.
const NonFieldErrors = "non_field_errors"

const (
	MessageRequired       = "This field is required."
	MessageBlank          = "This field may not be blank."
	MessageInvalidEmail   = "Enter a valid email address."
	MessageInvalidNumber  = "A valid number is required."
	MessageEmailTaken     = "user with this email already exists."
	MessageProfileExists  = "profile with this user already exists."
	MessageProfessional   = "A professional with this user already exists."
	MessageEndBeforeStart = "End time must be after start time."
	MessageInvalidPKType  = "Incorrect type. Expected pk value, received %s."
	MessageMissingPK      = `Invalid pk "%s" - object does not exist.`
	MessageMaxLength      = "Ensure this field has no more than %d characters."
	MessageMaxDigits      = "Ensure that there are no more than %d digits in total."
	MessageDecimalPlaces  = "Ensure that there are no more than %d decimal places."
	MessageWholeDigits    = "Ensure that there are no more than %d digits before the decimal point."
	MessageDatetimeFormat = "Datetime has wrong format. Use one of these formats instead: YYYY-MM-DDThh:mm[:ss[.uuuuuu]][+HH:MM|-HH:MM|Z]."
)

// ValidationError maps each rejected field to its messages.
type ValidationError struct {
	Fields map[string][]string
}

func (validationErr *ValidationError) Error() string {
	fields := make([]string, 0, len(validationErr.Fields))
	for field := range validationErr.Fields {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fmt.Sprintf("validation failed: %s", strings.Join(fields, ", "))
}

func (validationErr *ValidationError) Add(field string, message string) {
	if validationErr.Fields == nil {
		validationErr.Fields = make(map[string][]string)
	}
	validationErr.Fields[field] = append(validationErr.Fields[field], message)
}

func (validationErr *ValidationError) Has(field string) bool {
	return len(validationErr.Fields[field]) > 0
}

func (validationErr *ValidationError) Empty() bool {
	return len(validationErr.Fields) == 0
}

// Err returns nil when nothing was rejected.
func (validationErr *ValidationError) Err() error {
	if validationErr.Empty() {
		return nil
	}
	return validationErr
}

func fieldError(field string, message string) *ValidationError {
	validationErr := &ValidationError{}
	validationErr.Add(field, message)
	return validationErr
}

// AsValidationError unwraps err into its field map.
func AsValidationError(err error) (*ValidationError, bool) {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return validationErr, true
	}
	return nil, false
}
