// Package server provides the HTTP API the AppyCrew widget talks to.
package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/appycrew-ocr/internal/form"
	"github.com/jonathan/appycrew-ocr/internal/imaging"
	"github.com/jonathan/appycrew-ocr/internal/session"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrNotConfigured indicates a provider-backed endpoint has no provider to call.
type ErrNotConfigured struct {
	Service string
	Hint    string
}

func (e *ErrNotConfigured) Error() string {
	return fmt.Sprintf("%s not configured", e.Service)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var validation *ErrValidation
	var tooLarge *http.MaxBytesError

	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &validation),
		errors.Is(err, imaging.ErrInvalidImage),
		errors.Is(err, form.ErrNoForm),
		errors.Is(err, session.ErrNoMapping):
		return http.StatusBadRequest
	default:
		// Provider failures, including ErrNotConfigured, are server errors.
		return http.StatusInternalServerError
	}
}
