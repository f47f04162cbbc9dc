package common

import (
	"errors"
	"fmt"
	"net/http"

	"codecoach/internal/domain/model"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound           = errors.New("requested resource not found")
	ErrBadRequest         = errors.New("bad request")
	ErrConflict           = errors.New("resource conflict")
	ErrValidation         = errors.New("validation failed")
	ErrServiceUnavailable = errors.New("service unavailable") // e.g. completion API down
	ErrExecution          = errors.New("code execution failed")
	ErrUpstreamFormat     = errors.New("malformed upstream response")
	ErrPersistence        = errors.New("failed to persist result")
)

// ExecutionError reports the test case whose sandbox call failed. Grading
// stops at this case.
type ExecutionError struct {
	Index int
	Input string
	Err   error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("test case %d: %v", e.Index+1, e.Err)
}

func (e *ExecutionError) Unwrap() error { return e.Err }

func (e *ExecutionError) Is(target error) bool { return target == ErrExecution }

// PersistenceError is returned when a logically successful operation could not
// be recorded. Outcome holds the grading result so callers can still show it.
type PersistenceError struct {
	Op      string
	Outcome *model.SubmissionOutcome
	Err     error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func (e *PersistenceError) Is(target error) bool { return target == ErrPersistence }

// UpstreamFormatError means the completion service answered, but not with the
// JSON document we asked for.
type UpstreamFormatError struct {
	Raw string
	Err error
}

func (e *UpstreamFormatError) Error() string {
	return fmt.Sprintf("failed to parse AI response: %v", e.Err)
}

func (e *UpstreamFormatError) Unwrap() error { return e.Err }

func (e *UpstreamFormatError) Is(target error) bool { return target == ErrUpstreamFormat }

// HTTPStatusFromError maps domain errors to HTTP status codes.
func HTTPStatusFromError(err error) int {
	if err == nil {
		return http.StatusOK
	}
	if errors.Is(err, ErrBadRequest) || errors.Is(err, ErrValidation) {
		return http.StatusBadRequest
	}
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrConflict) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrUpstreamFormat) {
		return http.StatusBadGateway
	}
	if errors.Is(err, ErrServiceUnavailable) {
		return http.StatusServiceUnavailable
	}
	if errors.Is(err, ErrExecution) || errors.Is(err, ErrPersistence) {
		return http.StatusInternalServerError
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23505" { // unique_violation
			return http.StatusConflict
		}
	}

	return http.StatusInternalServerError
}

// MissingField builds the validation error returned for an absent required input.
func MissingField(name string) error {
	return fmt.Errorf("missing required field %q: %w", name, ErrValidation)
}
