package listings

import (
	"net/url"

	"github.com/google/uuid"

	"github.com/ecoledger/credence/pkg/query"
	"github.com/ecoledger/credence/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "listings", "l").
	Project("id", "ID").
	Project("certificate_id", "CertificateID").
	Project("price", "Price").
	Project("quantity", "Quantity").
	Project("status", "Status").
	Project("description", "Description").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

var defaultSort = query.SortField{
	Field:      "CreatedAt",
	Descending: true,
}

// Filters contains optional filtering criteria for listing queries.
// Nil fields are ignored and all matching is exact.
type Filters struct {
	Status        *string    `json:"status,omitempty"`
	CertificateID *uuid.UUID `json:"certificate_id,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("Status", f.Status).
		WhereEquals("CertificateID", f.CertificateID)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if s := values.Get("status"); s != "" {
		f.Status = &s
	}

	if c := values.Get("certificate_id"); c != "" {
		if id, err := uuid.Parse(c); err == nil {
			f.CertificateID = &id
		}
	}

	return f
}

func scanListing(s repository.Scanner) (Listing, error) {
	var l Listing
	err := s.Scan(
		&l.ID,
		&l.CertificateID,
		&l.Price,
		&l.Quantity,
		&l.Status,
		&l.Description,
		&l.CreatedAt,
		&l.UpdatedAt,
	)
	return l, err
}
