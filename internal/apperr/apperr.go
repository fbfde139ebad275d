// Package apperr holds the sentinel errors the service layer speaks.
package apperr

import (
	"errors"
	"net/http"
)

var (
	ErrForbidden       = errors.New("forbidden")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNotFound        = errors.New("not found")
	ErrTransient       = errors.New("temporarily unavailable")
)

// HTTPStatus maps a service error to a response status.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrTransient):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
