// Package apperr defines the error taxonomy shared by the membership core.
// Services return these errors; the HTTP layer maps them to status codes via
// HTTPStatus. Kinds are closed: callers match with errors.Is against the
// exported sentinels.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an Error. The set is closed; new kinds require a new
// HTTP mapping and handler support.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindForbidden
	KindConflict
	KindNotFound
	KindTransientStore
	KindInconsistentState
)

// String returns the wire-level error code for the kind (e.g. "NOT_FOUND").
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "VALIDATION"
	case KindForbidden:
		return "FORBIDDEN"
	case KindConflict:
		return "CONFLICT"
	case KindNotFound:
		return "NOT_FOUND"
	case KindTransientStore:
		return "TRANSIENT_STORE"
	case KindInconsistentState:
		return "INCONSISTENT_STATE"
	default:
		return "INTERNAL"
	}
}

// Error is a classified application error with an optional wrapped cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so errors.Is(err, ErrNotFound)
// works regardless of message.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Kind == t.Kind
	}
	return false
}

// Sentinels for errors.Is matching by kind.
var (
	ErrValidation        = &Error{Kind: KindValidation, Message: "invalid input"}
	ErrForbidden         = &Error{Kind: KindForbidden, Message: "forbidden"}
	ErrConflict          = &Error{Kind: KindConflict, Message: "conflict"}
	ErrNotFound          = &Error{Kind: KindNotFound, Message: "not found"}
	ErrTransientStore    = &Error{Kind: KindTransientStore, Message: "transient store failure"}
	ErrInconsistentState = &Error{Kind: KindInconsistentState, Message: "inconsistent state"}
)

// Validation returns a KindValidation error with the given message.
func Validation(msg string) error {
	return &Error{Kind: KindValidation, Message: msg}
}

// Forbidden returns a KindForbidden error with the given message.
func Forbidden(msg string) error {
	return &Error{Kind: KindForbidden, Message: msg}
}

// Conflict returns a KindConflict error with the given message.
func Conflict(msg string) error {
	return &Error{Kind: KindConflict, Message: msg}
}

// NotFound returns a KindNotFound error for the named resource.
func NotFound(resource string) error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf("%s not found", resource)}
}

// TransientStore wraps a retryable store or collaborator failure observed
// during op.
func TransientStore(op string, err error) error {
	return &Error{Kind: KindTransientStore, Message: fmt.Sprintf("%s failed", op), Err: err}
}

// InconsistentState reports a compensation failure during op. cause is the
// original step error, compErr the compensation error; both are retained for
// logs, never for API responses.
func InconsistentState(op string, cause, compErr error) error {
	return &Error{
		Kind:    KindInconsistentState,
		Message: fmt.Sprintf("%s left stores inconsistent", op),
		Err:     fmt.Errorf("original: %w; compensation: %w", cause, compErr),
	}
}

// HTTPStatus maps the taxonomy to the product's HTTP contract. Unclassified
// errors and both store-failure kinds map to 500; inconsistent state leaks no
// further detail.
func HTTPStatus(err error) int {
	var e *Error
	if !errors.As(err, &e) {
		return http.StatusInternalServerError
	}
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Code returns the wire-level code for err, or "INTERNAL" for unclassified
// errors. Inconsistent-state errors are reported as INTERNAL so the
// taxonomy's internal distinction is not exposed to clients.
func Code(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return "INTERNAL"
	}
	if e.Kind == KindInconsistentState || e.Kind == KindTransientStore {
		return "INTERNAL"
	}
	return e.Kind.String()
}
