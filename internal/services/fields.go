package services

import (
	"context"
	"fmt"
	"net/mail"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	maxCharLength  = 255
	maxEmailLength = 254
	maxPhoneLength = 20
	maxPassword    = 128
)

// Reference is a primary key as sent by a client. It accepts a JSON number
// or a numeric string and never fails to decode; malformed values surface as
// field errors instead.
type Reference struct {
	ID  uint
	Raw string

	kind string
}

func NewReference(id uint) *Reference {
	return &Reference{ID: id, Raw: strconv.FormatUint(uint64(id), 10), kind: "int"}
}

func (reference *Reference) UnmarshalJSON(data []byte) error {
	text := strings.TrimSpace(string(data))
	reference.ID = 0
	reference.Raw = text
	reference.kind = jsonKind(text)

	switch reference.kind {
	case "str":
		unquoted, err := strconv.Unquote(text)
		if err != nil {
			return nil
		}
		reference.Raw = unquoted
		text = strings.TrimSpace(unquoted)
	case "int":
	default:
		return nil
	}

	id, err := strconv.ParseUint(text, 10, 0)
	if err != nil {
		return nil
	}
	reference.ID = uint(id)
	return nil
}

// Claimed returns the referenced id, or zero when absent or malformed.
func (reference *Reference) Claimed() uint {
	if reference == nil {
		return 0
	}
	return reference.ID
}

func jsonKind(token string) string {
	switch {
	case token == "":
		return ""
	case token[0] == '"':
		return "str"
	case token == "true" || token == "false":
		return "bool"
	case token[0] == '[':
		return "list"
	case token[0] == '{':
		return "dict"
	case strings.ContainsAny(token, ".eE"):
		return "float"
	default:
		return "int"
	}
}

// Decimal keeps the client's textual number so precision limits can be
// checked before conversion.
type Decimal struct {
	Raw string
}

func NewDecimal(raw string) *Decimal {
	return &Decimal{Raw: raw}
}

func (decimal *Decimal) UnmarshalJSON(data []byte) error {
	text := strings.TrimSpace(string(data))
	if unquoted, err := strconv.Unquote(text); err == nil {
		text = strings.TrimSpace(unquoted)
	}
	decimal.Raw = text
	return nil
}

var decimalPattern = regexp.MustCompile(`^[+-]?(\d*)(?:\.(\d*))?$`)

// fieldSet applies the per-field rules of one payload and collects every
// failure. In partial mode absent fields are skipped instead of required.
type fieldSet struct {
	errs    *ValidationError
	partial bool
}

func newFieldSet(partial bool) fieldSet {
	return fieldSet{errs: &ValidationError{}, partial: partial}
}

func (fields fieldSet) missing(name string) {
	if !fields.partial {
		fields.errs.Add(name, MessageRequired)
	}
}

// text validates a required, non-blank string. maxLength of zero means
// unbounded. ok is false when the field was absent or rejected.
func (fields fieldSet) text(name string, value *string, maxLength int) (string, bool) {
	if value == nil {
		fields.missing(name)
		return "", false
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		fields.errs.Add(name, MessageBlank)
		return "", false
	}
	return fields.bounded(name, trimmed, maxLength)
}

// optionalText accepts blank values and absence.
func (fields fieldSet) optionalText(name string, value *string, maxLength int) (string, bool) {
	if value == nil {
		return "", false
	}
	return fields.bounded(name, strings.TrimSpace(*value), maxLength)
}

func (fields fieldSet) bounded(name string, value string, maxLength int) (string, bool) {
	if maxLength > 0 && utf8.RuneCountInString(value) > maxLength {
		fields.errs.Add(name, fmt.Sprintf(MessageMaxLength, maxLength))
		return "", false
	}
	return value, true
}

func (fields fieldSet) email(name string, value *string) (string, bool) {
	email, ok := fields.text(name, value, maxEmailLength)
	if !ok {
		return "", false
	}
	if !validEmail(email) {
		fields.errs.Add(name, MessageInvalidEmail)
		return "", false
	}
	return email, true
}

func validEmail(email string) bool {
	address, err := mail.ParseAddress(email)
	if err != nil {
		return false
	}
	return address.Address == email && strings.Contains(email[strings.LastIndex(email, "@")+1:], ".")
}

// NormalizeEmail lowercases the domain part, keeping the local part as
// typed. Uniqueness compares case-insensitively on top of this.
func NormalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	return email[:at] + strings.ToLower(email[at:])
}

type existsFunc func(ctx context.Context, id uint) (bool, error)

// reference validates a primary key against exists. A lookup failure is
// returned as err; a missing row is a field error.
func (fields fieldSet) reference(ctx context.Context, name string, value *Reference, exists existsFunc) (uint, bool, error) {
	if value == nil {
		fields.missing(name)
		return 0, false, nil
	}
	if value.kind != "int" && value.kind != "str" {
		fields.errs.Add(name, fmt.Sprintf(MessageInvalidPKType, value.kind))
		return 0, false, nil
	}
	if value.ID == 0 {
		if value.kind == "str" {
			if _, err := strconv.ParseInt(strings.TrimSpace(value.Raw), 10, 64); err != nil {
				fields.errs.Add(name, fmt.Sprintf(MessageInvalidPKType, value.kind))
				return 0, false, nil
			}
		}
		fields.errs.Add(name, fmt.Sprintf(MessageMissingPK, value.Raw))
		return 0, false, nil
	}

	found, err := exists(ctx, value.ID)
	if err != nil {
		return 0, false, err
	}
	if !found {
		fields.errs.Add(name, fmt.Sprintf(MessageMissingPK, value.Raw))
		return 0, false, nil
	}
	return value.ID, true, nil
}

// decimal validates a number with at most maxDigits significant digits,
// places of which may follow the decimal point.
func (fields fieldSet) decimal(name string, value *Decimal, maxDigits int, places int) (float64, bool) {
	if value == nil {
		fields.missing(name)
		return 0, false
	}

	matches := decimalPattern.FindStringSubmatch(value.Raw)
	if matches == nil || matches[1]+matches[2] == "" {
		fields.errs.Add(name, MessageInvalidNumber)
		return 0, false
	}

	whole := strings.TrimLeft(matches[1], "0")
	fraction := matches[2]
	switch {
	case len(whole)+len(fraction) > maxDigits:
		fields.errs.Add(name, fmt.Sprintf(MessageMaxDigits, maxDigits))
		return 0, false
	case len(fraction) > places:
		fields.errs.Add(name, fmt.Sprintf(MessageDecimalPlaces, places))
		return 0, false
	case len(whole) > maxDigits-places:
		fields.errs.Add(name, fmt.Sprintf(MessageWholeDigits, maxDigits-places))
		return 0, false
	}

	parsed, err := strconv.ParseFloat(value.Raw, 64)
	if err != nil {
		fields.errs.Add(name, MessageInvalidNumber)
		return 0, false
	}
	return parsed, true
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04",
}

// timestamp parses an ISO 8601 date-time. Values without an offset are read
// in location. Results are normalized to UTC.
func (fields fieldSet) timestamp(name string, value *string, location *time.Location) (time.Time, bool) {
	if value == nil {
		fields.missing(name)
		return time.Time{}, false
	}
	parsed, ok := ParseTimestamp(*value, location)
	if !ok {
		fields.errs.Add(name, MessageDatetimeFormat)
		return time.Time{}, false
	}
	return parsed, true
}

func ParseTimestamp(raw string, location *time.Location) (time.Time, bool) {
	if location == nil {
		location = time.UTC
	}
	raw = strings.TrimSpace(raw)
	for _, layout := range timestampLayouts {
		if parsed, err := time.ParseInLocation(layout, raw, location); err == nil {
			return parsed.UTC(), true
		}
	}
	return time.Time{}, false
}

// owner resolves the user a create payload assigns a record to. An absent
// value falls back to the requester.
func (fields fieldSet) owner(ctx context.Context, value *Reference, requesterID uint, exists existsFunc) (uint, bool, error) {
	if value == nil && requesterID != 0 && !fields.partial {
		return requesterID, true, nil
	}
	return fields.reference(ctx, "user", value, exists)
}
