package certificates

import (
	"errors"
	"net/http"

	"github.com/ecoledger/credence/internal/extraction"
)

// Domain errors for certificate operations.
var (
	ErrNotFound     = errors.New("certificate not found")
	ErrDuplicate    = errors.New("certificate already exists")
	ErrFileTooLarge = errors.New("file exceeds maximum upload size")
	ErrInvalidFile  = errors.New("invalid file")
)

// MapHTTPStatus maps certificate domain and extraction errors to HTTP
// status codes. An unreadable container is a client error; a readable
// document without text is unprocessable rather than malformed.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ErrInvalidFile):
		return http.StatusBadRequest
	case errors.Is(err, extraction.ErrExtraction):
		return http.StatusBadRequest
	case errors.Is(err, extraction.ErrNoText):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
