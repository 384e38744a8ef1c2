package carbonmark

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ErrorCategory classifies registry verification failures.
type ErrorCategory string

const (
	CategoryMissingCredential ErrorCategory = "missing_credential"
	CategoryNotFound          ErrorCategory = "not_found"
	CategoryTimeout           ErrorCategory = "timeout"
	CategoryConnection        ErrorCategory = "connection"
	CategoryHTTPStatus        ErrorCategory = "http_status"
	CategoryInvalidResponse   ErrorCategory = "invalid_response"
)

// VerifyError is a categorized registry failure. It wraps the underlying
// transport or decode error when one exists.
type VerifyError struct {
	Category   ErrorCategory
	Message    string
	Underlying error
}

func (e *VerifyError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Underlying)
	}
	return e.Message
}

func (e *VerifyError) Unwrap() error {
	return e.Underlying
}

// classify wraps a transport error with the category a caller can act on.
// Timeouts are distinguished from other connection failures.
func classify(err error, message string) *VerifyError {
	category := CategoryConnection

	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		category = CategoryTimeout
	case errors.As(err, &netErr) && netErr.Timeout():
		category = CategoryTimeout
	}

	return &VerifyError{
		Category:   category,
		Message:    message,
		Underlying: err,
	}
}
