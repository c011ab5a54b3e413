package domain

import (
	"errors"
	"fmt"
)

// Domain error types. Handlers decide how each category surfaces to the
// user; none of them is fatal to the process.
type (
	// NotFoundError indicates a record is missing or not owned by the caller.
	NotFoundError struct {
		Message string
	}

	// ValidationError indicates invalid user input (bad file, short name,
	// unparseable date). Always recovered by re-prompting.
	ValidationError struct {
		Message string
	}

	// ConflictError indicates a uniqueness violation (duplicate template name).
	ConflictError struct {
		Message string
	}

	// LimitExceededError indicates a per-owner quota is already at its cap.
	LimitExceededError struct {
		Message string
		Limit   int
	}

	// RoutingError indicates a malformed or unroutable action token.
	RoutingError struct {
		Token   string
		Message string
	}
)

func (e *NotFoundError) Error() string      { return e.Message }
func (e *ValidationError) Error() string    { return e.Message }
func (e *ConflictError) Error() string      { return e.Message }
func (e *LimitExceededError) Error() string { return e.Message }

func (e *RoutingError) Error() string {
	return fmt.Sprintf("%s: %q", e.Message, e.Token)
}

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound      = errors.New("not found")
	ErrValidation    = errors.New("validation failed")
	ErrConflict      = errors.New("already exists")
	ErrLimitExceeded = errors.New("limit exceeded")
	ErrNoRoute       = errors.New("no matching route")
	ErrDelivery      = errors.New("delivery failed")
)

// Is implementations let errors.Is() match typed errors against sentinels,
// so callers can classify without knowing which layer produced the error.
func (e *NotFoundError) Is(target error) bool      { return target == ErrNotFound }
func (e *ValidationError) Is(target error) bool    { return target == ErrValidation }
func (e *ConflictError) Is(target error) bool      { return target == ErrConflict }
func (e *LimitExceededError) Is(target error) bool { return target == ErrLimitExceeded }
func (e *RoutingError) Is(target error) bool       { return target == ErrNoRoute }
