package query

import (
	"strconv"
	"strings"
)

const (
	MessageNotWholeNumber = "Enter a whole number."
	MessageNotNumber      = "Enter a number."
)

type valueError string

func (message valueError) Error() string { return string(message) }

// ParseID parses a positive integer identifier taken from a path or query
// parameter.
func ParseID(raw string) (uint, error) {
	parsed, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil || parsed == 0 {
		return 0, valueError(MessageNotWholeNumber)
	}
	return uint(parsed), nil
}

// ParseIDParam parses an identifier query parameter, reporting problems in
// the same shape Build does.
func ParseIDParam(param string, raw string) (uint, error) {
	id, err := ParseID(raw)
	if err != nil {
		return 0, ParamErrors{param: {err.Error()}}
	}
	return id, nil
}
