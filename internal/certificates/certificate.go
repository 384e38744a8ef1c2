// Package certificates implements the certificate authentication domain for
// Credence. It orchestrates the processing pipeline over uploaded retirement
// certificates: text extraction, field parsing, required-field validation,
// registry verification, and content-addressed deduplication.
package certificates

import (
	"time"

	"github.com/google/uuid"

	"github.com/ecoledger/credence/internal/carbonmark"
	"github.com/ecoledger/credence/internal/extraction"
)

// Certificate status values. A certificate authenticates only when every
// required field is present and the registry verified its project.
const (
	StatusAuthenticated = "authenticated"
	StatusRejected      = "rejected"
)

// Certificate is a processed certificate record. ContentDigest is the
// identity key: two uploads with identical bytes resolve to one record.
type Certificate struct {
	ID               uuid.UUID           `json:"id"`
	ContentDigest    string              `json:"content_digest"`
	SerialNumber     *string             `json:"serial_number"`
	OriginalFilename string              `json:"original_filename"`
	SizeBytes        int64               `json:"size_bytes"`
	PageCount        *int                `json:"page_count"`
	Fields           extraction.FieldSet `json:"fields"`
	Verdict          carbonmark.Verdict  `json:"verdict"`
	Authenticated    bool                `json:"authenticated"`
	Status           string              `json:"status"`
	ProcessedAt      time.Time           `json:"processed_at"`
}

// AuthenticateCommand carries the data needed to process an uploaded
// certificate. Data holds the raw file bytes. PageCount is optional and may
// be extracted by the caller via pdfcpu; nil values are stored as NULL.
type AuthenticateCommand struct {
	Data      []byte
	Filename  string
	PageCount *int
}

// AuthenticationResult is the outcome of processing one upload. Duplicate
// reports whether the certificate had already been processed, in which case
// the stored record is returned untouched.
type AuthenticationResult struct {
	Certificate   *Certificate `json:"certificate"`
	Duplicate     bool         `json:"duplicate"`
	MissingFields []string     `json:"missing_fields"`
	FabricTxID    string       `json:"fabric_tx_id,omitempty"`
	Message       string       `json:"message"`
}

// BatchResult reports the outcome of a single file within a batch upload.
// On success, Result is populated and Error is empty.
type BatchResult struct {
	Filename string                `json:"filename"`
	Result   *AuthenticationResult `json:"result,omitempty"`
	Error    string                `json:"error,omitempty"`
}
