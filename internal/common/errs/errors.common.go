package errs

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrValidation        = errors.New("validation failed")
	ErrExternalService   = errors.New("external service error")
	ErrNotification      = errors.New("notification failed")
	ErrConcurrencyHazard = errors.New("concurrent modification detected")
)

func NotFound(format string, a ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, a...))
}

func Validation(format string, a ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, a...))
}

func ExternalService(format string, a ...any) error {
	return fmt.Errorf("%w: %s", ErrExternalService, fmt.Sprintf(format, a...))
}

func Notification(format string, a ...any) error {
	return fmt.Errorf("%w: %s", ErrNotification, fmt.Sprintf(format, a...))
}

func Conflict(format string, a ...any) error {
	return fmt.Errorf("%w: %s", ErrConcurrencyHazard, fmt.Sprintf(format, a...))
}

// HTTPStatus maps an error to the status code surfaced by the API.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrConcurrencyHazard):
		return http.StatusConflict
	case errors.Is(err, ErrExternalService), errors.Is(err, ErrNotification):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
