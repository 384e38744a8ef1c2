package certificates

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/ecoledger/credence/pkg/query"
	"github.com/ecoledger/credence/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "certificates", "c").
	Project("id", "ID").
	Project("content_digest", "ContentDigest").
	Project("serial_number", "SerialNumber").
	Project("original_filename", "OriginalFilename").
	Project("size_bytes", "SizeBytes").
	Project("page_count", "PageCount").
	Project("fields", "Fields").
	Project("verdict", "Verdict").
	Project("authenticated", "Authenticated").
	Project("status", "Status").
	Project("processed_at", "ProcessedAt")

var defaultSort = query.SortField{
	Field:      "ProcessedAt",
	Descending: true,
}

// Filters contains optional filtering criteria for certificate queries.
// Nil fields are ignored. Status and Authenticated use exact matching.
// SerialNumber and Filename use case-insensitive contains matching.
type Filters struct {
	Status        *string `json:"status,omitempty"`
	Authenticated *bool   `json:"authenticated,omitempty"`
	SerialNumber  *string `json:"serial_number,omitempty"`
	Filename      *string `json:"filename,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("Status", f.Status).
		WhereEquals("Authenticated", f.Authenticated).
		WhereContains("SerialNumber", f.SerialNumber).
		WhereContains("OriginalFilename", f.Filename)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if s := values.Get("status"); s != "" {
		f.Status = &s
	}

	if a := values.Get("authenticated"); a != "" {
		if v, err := strconv.ParseBool(a); err == nil {
			f.Authenticated = &v
		}
	}

	if sn := values.Get("serial_number"); sn != "" {
		f.SerialNumber = &sn
	}

	if fn := values.Get("filename"); fn != "" {
		f.Filename = &fn
	}

	return f
}

func scanCertificate(s repository.Scanner) (Certificate, error) {
	var (
		c       Certificate
		fields  []byte
		verdict []byte
	)

	err := s.Scan(
		&c.ID,
		&c.ContentDigest,
		&c.SerialNumber,
		&c.OriginalFilename,
		&c.SizeBytes,
		&c.PageCount,
		&fields,
		&verdict,
		&c.Authenticated,
		&c.Status,
		&c.ProcessedAt,
	)
	if err != nil {
		return c, err
	}

	if len(fields) > 0 {
		if err := json.Unmarshal(fields, &c.Fields); err != nil {
			return c, fmt.Errorf("decode fields: %w", err)
		}
	}
	if len(verdict) > 0 {
		if err := json.Unmarshal(verdict, &c.Verdict); err != nil {
			return c, fmt.Errorf("decode verdict: %w", err)
		}
	}

	return c, nil
}
