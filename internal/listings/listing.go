// Package listings implements the marketplace listing domain for Credence.
// It provides types, data access, and HTTP handlers for offering
// authenticated certificates for sale.
package listings

import (
	"time"

	"github.com/google/uuid"
)

// Listing status values. Only active listings can be purchased or withdrawn.
const (
	StatusActive    = "active"
	StatusSold      = "sold"
	StatusWithdrawn = "withdrawn"
)

// Listing represents an authenticated certificate offered for sale.
type Listing struct {
	ID            uuid.UUID `json:"id"`
	CertificateID uuid.UUID `json:"certificate_id"`
	Price         float64   `json:"price"`
	Quantity      float64   `json:"quantity"`
	Status        string    `json:"status"`
	Description   *string   `json:"description"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// CreateCommand carries the data needed to create a new listing.
type CreateCommand struct {
	CertificateID uuid.UUID `json:"certificate_id"`
	Price         float64   `json:"price"`
	Quantity      float64   `json:"quantity"`
	Description   *string   `json:"description"`
}

// UpdateCommand carries the data needed to update an existing listing.
type UpdateCommand struct {
	Price       float64 `json:"price"`
	Quantity    float64 `json:"quantity"`
	Description *string `json:"description"`
}
