package listings

import (
	"errors"
	"net/http"
)

// Domain errors for listing operations.
var (
	ErrNotFound            = errors.New("listing not found")
	ErrDuplicate           = errors.New("listing already exists")
	ErrInvalidListing      = errors.New("invalid listing")
	ErrCertificateNotFound = errors.New("certificate not found")
	ErrNotAuthenticated    = errors.New("certificate is not authenticated")
	ErrNotActive           = errors.New("listing is not active")
)

// MapHTTPStatus maps listing domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate), errors.Is(err, ErrNotActive):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidListing):
		return http.StatusBadRequest
	case errors.Is(err, ErrCertificateNotFound), errors.Is(err, ErrNotAuthenticated):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
