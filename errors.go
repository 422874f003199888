package action

import (
	"fmt"
	"sort"
	"strings"

	"github.com/goliatone/go-errors"
)

// ErrValidation is a sentinel marking validation failures. Wrappers can
// compare with errors.Is(err, ErrValidation) to propagate validation intent
// through additional layers.
var ErrValidation = errors.New("validation error", errors.CategoryValidation).
	WithTextCode("VALIDATION_FAILED")

// ErrAuthorization is the sentinel counterpart for access denials.
var ErrAuthorization = errors.New("authorization error", errors.CategoryConflict).
	WithTextCode("AUTHORIZATION_FAILED")

// ValidationError carries one or more field→message pairs. It is recoverable
// by the caller correcting input and is never retried by the pipeline.
type ValidationError struct {
	Errors map[string]string
}

// NewValidationError creates a failure for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Errors: map[string]string{field: message}}
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "validation failed"
	}
	keys := make([]string, 0, len(e.Errors))
	for k := range e.Errors {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Errors[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// ValidationAccumulator collects field errors across checks before failing
// the request once, so a client sees every invalid field in one round trip.
type ValidationAccumulator struct {
	errs map[string]string
}

// AddError records a field failure. Later errors for the same field win.
func (a *ValidationAccumulator) AddError(field, message string) {
	if a.errs == nil {
		a.errs = make(map[string]string)
	}
	a.errs[field] = message
}

// HasErrors reports whether any field failed.
func (a *ValidationAccumulator) HasErrors() bool {
	return len(a.errs) > 0
}

// Result returns the accumulated ValidationError, or nil when all checks
// passed.
func (a *ValidationAccumulator) Result() error {
	if len(a.errs) == 0 {
		return nil
	}
	return &ValidationError{Errors: a.errs}
}

// AuthorizationError is a terminal, single-message denial. It has no
// partial-success concept and is never retried.
type AuthorizationError struct {
	Message string
}

func NewAuthorizationError(message string) *AuthorizationError {
	return &AuthorizationError{Message: message}
}

func (e *AuthorizationError) Error() string {
	if e.Message == "" {
		return "authorization denied"
	}
	return "authorization denied: " + e.Message
}

func (e *AuthorizationError) Is(target error) bool {
	return target == ErrAuthorization
}

// ExecutionError wraps pipeline misuse or unexpected collaborator failures
// surfacing from execution. It signals a bug or misconfiguration, not a
// normal-flow outcome.
type ExecutionError struct {
	Message string
	Err     error
}

func NewExecutionError(message string, err error) *ExecutionError {
	return &ExecutionError{Message: message, Err: err}
}

func (e *ExecutionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("execution failed: %s: %v", e.Message, e.Err)
	}
	return "execution failed: " + e.Message
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}

// wrapTransaction annotates transaction-manager failures with the action name.
func wrapTransaction(err error, op, name string) error {
	return errors.Wrap(err, errors.CategoryExternal, "transaction "+op+" failed").
		WithTextCode("TRANSACTION_" + strings.ToUpper(op) + "_FAILED").
		WithMetadata(map[string]any{
			"action": name,
		})
}
