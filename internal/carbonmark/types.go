package carbonmark

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Project is a registry project record as returned by the Carbonmark API.
type Project struct {
	Key           string        `json:"key"`
	ProjectID     string        `json:"projectID"`
	Name          string        `json:"name"`
	Country       string        `json:"country"`
	Methodologies []Methodology `json:"methodologies"`
	Vintages      []string      `json:"vintages"`
}

// Methodology describes a crediting methodology attached to a project.
type Methodology struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
}

// Product is a registry listing, either a single project or a bundle that
// aggregates credits from several projects.
type Product struct {
	Name             string   `json:"name"`
	Type             string   `json:"type"`
	ProjectIDs       []string `json:"projectIds"`
	ShortDescription string   `json:"short_description"`
	URL              string   `json:"url"`
	CoverImage       string   `json:"coverImage"`
}

// Verdict is the outcome of a registry verification attempt. A failed
// attempt carries a category so callers can distinguish "project absent"
// from "registry unreachable".
type Verdict struct {
	Verified bool            `json:"verified"`
	Message  string          `json:"message"`
	Category ErrorCategory   `json:"error_category,omitempty"`
	Details  *ProjectDetails `json:"details,omitempty"`
}

// ProjectDetails is the subset of registry data attached to a positive
// verdict. Bundle matches populate Type and Description instead of the
// project-level fields.
type ProjectDetails struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Country       string        `json:"country,omitempty"`
	Methodologies []Methodology `json:"methodologies,omitempty"`
	Vintages      []string      `json:"vintages,omitempty"`
	Type          string        `json:"type,omitempty"`
	Description   string        `json:"description,omitempty"`
	URL           string        `json:"url,omitempty"`
	CoverImage    string        `json:"cover_image,omitempty"`
}

// decodeList tolerates both response shapes the registry API has used: a
// bare JSON array and an object wrapping the array in an "items" key.
func decodeList[T any](data []byte) ([]T, error) {
	trimmed := bytes.TrimSpace(data)

	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("decode list: %w", err)
		}
		return items, nil
	}

	var envelope struct {
		Items []T `json:"items"`
	}
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	return envelope.Items, nil
}
