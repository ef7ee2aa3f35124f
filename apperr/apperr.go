// Package apperr defines the business-error taxonomy shared by the
// inventory and lifecycle cores and mapped to HTTP statuses at the
// handler boundary.
package apperr

import (
	"errors"
	"net/http"
)

var (
	// ErrValidation marks malformed input; the caller's fault, never retried.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound marks a referenced entity that does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidTransition marks an attempt to move a request or
	// assignment out of a terminal or mismatched state.
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrInventoryExhausted marks an approval against an asset with no
	// remaining available units.
	ErrInventoryExhausted = errors.New("inventory exhausted")

	// ErrCapacityExceeded marks a first-time affiliation that would
	// push an HR account past its seat limit.
	ErrCapacityExceeded = errors.New("employee capacity exceeded")

	// ErrNotReturnable marks a return attempt on a non-returnable asset.
	ErrNotReturnable = errors.New("asset is not returnable")

	// ErrConflict marks a mutation blocked by dependent state, such as
	// deleting an asset with active assignments.
	ErrConflict = errors.New("conflict")

	// ErrForbidden marks an actor operating on a record it does not own.
	ErrForbidden = errors.New("forbidden")

	// ErrStorageUnavailable marks a transient store failure; safe to
	// retry, never surfaced as a business error.
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// HTTPStatus maps a core error to the response code the API surface
// reports. Unknown errors are treated as storage failures.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrValidation),
		errors.Is(err, ErrInvalidTransition),
		errors.Is(err, ErrInventoryExhausted),
		errors.Is(err, ErrCapacityExceeded),
		errors.Is(err, ErrNotReturnable):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrStorageUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
