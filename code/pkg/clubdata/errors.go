package clubdata

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrStoreNotReady is returned by Initialize if the store doesn't become
// ready in time.
var ErrStoreNotReady = errors.New("store not ready")

// ValidationError is returned when the input to an operation is invalid or
// breaks a business rule.  Fields holds a message for each bad field.
// Nothing has been changed in the store.
type ValidationError struct {
	Op     string            // The operation, eg "register member".
	Fields map[string]string // Field name to error message.
	Reason string            // A general reason, if the problem isn't with one field.
}

func (e *ValidationError) Error() string {

	parts := make([]string, 0, len(e.Fields)+1)
	if len(e.Reason) > 0 {
		parts = append(parts, e.Reason)
	}

	fields := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	for _, field := range fields {
		parts = append(parts, fmt.Sprintf("%s %s", field, e.Fields[field]))
	}

	return fmt.Sprintf("%s: invalid input: %s", e.Op, strings.Join(parts, "; "))
}

func fieldError(op string, fields map[string]string) *ValidationError {
	return &ValidationError{Op: op, Fields: fields}
}

func reasonError(op, reason string) *ValidationError {
	return &ValidationError{Op: op, Reason: reason}
}
