// Package apperr defines the error kinds surfaced by the CRM core.
//
// Every error returned by the storage and registry layers either wraps one of
// the sentinels below or is an unclassified internal failure. Callers test the
// kind with errors.Is.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrValidation marks malformed input rejected before it reaches storage.
	ErrValidation = errors.New("validation error")
	// ErrNotFound marks a referenced entity or tenant store that does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict marks a duplicate value in a unique field.
	ErrConflict = errors.New("conflict")
	// ErrStorageUnavailable marks a tenant store file that cannot be opened or read.
	ErrStorageUnavailable = errors.New("storage unavailable")
)

func Validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func NotFound(entity string, id any) error {
	return fmt.Errorf("%w: %s %v", ErrNotFound, entity, id)
}

func Conflict(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}

func Unavailable(err error) error {
	return fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
}

// HTTPStatus maps an error kind to the status code the REST layer responds with.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrStorageUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
