// Package apperr defines the error taxonomy shared by the storage, thread and
// hub layers. Concrete errors wrap one of the sentinels with fmt.Errorf("%w")
// so callers can classify them with errors.Is.
package apperr

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidOperation is returned for requests that can never succeed,
	// e.g. a user sending a message to themselves.
	ErrInvalidOperation = errors.New("invalid operation")
	// ErrNotFound is returned when a user, group, connection or message
	// does not exist.
	ErrNotFound = errors.New("not found")
	// ErrPersistence is returned when the database rejected a write or read.
	ErrPersistence = errors.New("persistence failure")
)

// Error codes sent to clients and used for localization lookups.
const (
	CodeInvalidOperation = "invalid_operation"
	CodeNotFound         = "not_found"
	CodePersistence      = "persistence_failure"
	CodeInternal         = "internal"
)

// InvalidOperation builds an ErrInvalidOperation with a short reason.
func InvalidOperation(reason string) error {
	return fmt.Errorf("%w: %s", ErrInvalidOperation, reason)
}

// NotFound builds an ErrNotFound naming the missing entity.
func NotFound(what string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, what)
}

// Persistence wraps a storage error with the operation that failed.
func Persistence(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrPersistence, op, err)
}

// Code classifies err into one of the Code* constants.
func Code(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidOperation):
		return CodeInvalidOperation
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	case errors.Is(err, ErrPersistence):
		return CodePersistence
	default:
		return CodeInternal
	}
}

// Reason extracts the short reason that follows the sentinel text, e.g.
// "self-message" from "invalid operation: self-message". It returns "" for
// unclassified errors.
func Reason(err error) string {
	var sentinel error
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidOperation):
		sentinel = ErrInvalidOperation
	case errors.Is(err, ErrNotFound):
		sentinel = ErrNotFound
	case errors.Is(err, ErrPersistence):
		sentinel = ErrPersistence
	default:
		return ""
	}

	msg := err.Error()
	prefix := sentinel.Error() + ": "
	i := strings.Index(msg, prefix)
	if i < 0 {
		return ""
	}
	rest := msg[i+len(prefix):]
	if j := strings.Index(rest, ": "); j >= 0 {
		rest = rest[:j]
	}
	return rest
}
