// Package carbonmark verifies certificate project identifiers against the
// Carbonmark registry API. Verification never fails a request outright: a
// registry failure produces an unverified verdict with a failure category,
// and the caller decides what that means for the certificate.
package carbonmark

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
)

// System defines the public contract for registry verification.
type System interface {
	Handler() *Handler
	Verify(ctx context.Context, projectID string) Verdict
}

type client struct {
	cfg    Config
	http   *http.Client
	logger *slog.Logger
}

// New creates a registry verification system backed by the Carbonmark API.
func New(cfg Config, logger *slog.Logger) System {
	return &client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.TimeoutDuration()},
		logger: logger.With("system", "carbonmark"),
	}
}

func (c *client) Handler() *Handler {
	return NewHandler(c, c.logger)
}

// Verify resolves a project identifier through three strategies in order:
// project search, direct lookup, then bundle membership. The first positive
// match wins. Identifiers are normalized to trimmed upper case before
// comparison.
func (c *client) Verify(ctx context.Context, projectID string) Verdict {
	if !c.cfg.Configured() {
		return Verdict{
			Message:  "registry credentials not configured",
			Category: CategoryMissingCredential,
		}
	}

	id := normalize(projectID)

	verdict, verr := c.searchProjects(ctx, id)
	if verr != nil {
		return c.failure(verr)
	}
	if verdict != nil {
		return *verdict
	}

	verdict, verr = c.directLookup(ctx, id)
	if verr != nil {
		return c.failure(verr)
	}
	if verdict != nil {
		return *verdict
	}

	verdict, verr = c.searchBundles(ctx, id)
	if verr != nil {
		return c.failure(verr)
	}
	if verdict != nil {
		return *verdict
	}

	return Verdict{
		Message:  "project not found in registry",
		Category: CategoryNotFound,
	}
}

func (c *client) searchProjects(ctx context.Context, id string) (*Verdict, *VerifyError) {
	body, status, err := c.get(ctx, "/carbonProjects", url.Values{"search": {id}})
	if err != nil {
		return nil, classify(err, "registry search failed")
	}
	if status != http.StatusOK {
		return nil, &VerifyError{
			Category: CategoryHTTPStatus,
			Message:  fmt.Sprintf("registry search returned status %d", status),
		}
	}

	projects, err := decodeList[Project](body)
	if err != nil {
		return nil, &VerifyError{
			Category:   CategoryInvalidResponse,
			Message:    "registry search response malformed",
			Underlying: err,
		}
	}

	for _, p := range projects {
		if normalize(p.Key) == id || normalize(p.ProjectID) == id {
			v := verified("found via registry search", projectDetails(p))
			return &v, nil
		}
	}

	return nil, nil
}

// directLookup treats any non-200 status as a miss rather than a failure so
// the bundle strategy still gets a chance.
func (c *client) directLookup(ctx context.Context, id string) (*Verdict, *VerifyError) {
	body, status, err := c.get(ctx, "/carbonProjects/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, classify(err, "registry lookup failed")
	}
	if status != http.StatusOK {
		return nil, nil
	}

	var p Project
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, &VerifyError{
			Category:   CategoryInvalidResponse,
			Message:    "registry lookup response malformed",
			Underlying: err,
		}
	}

	v := verified("found via direct lookup", projectDetails(p))
	return &v, nil
}

func (c *client) searchBundles(ctx context.Context, id string) (*Verdict, *VerifyError) {
	body, status, err := c.get(ctx, "/products", nil)
	if err != nil {
		return nil, classify(err, "registry product listing failed")
	}
	if status != http.StatusOK {
		return nil, &VerifyError{
			Category: CategoryHTTPStatus,
			Message:  fmt.Sprintf("registry product listing returned status %d", status),
		}
	}

	products, err := decodeList[Product](body)
	if err != nil {
		return nil, &VerifyError{
			Category:   CategoryInvalidResponse,
			Message:    "registry product listing response malformed",
			Underlying: err,
		}
	}

	for _, product := range products {
		for _, member := range product.ProjectIDs {
			if normalize(member) == id {
				v := verified(
					fmt.Sprintf("found in bundle: %s", product.Name),
					bundleDetails(id, product),
				)
				return &v, nil
			}
		}
	}

	return nil, nil
}

func (c *client) get(ctx context.Context, path string, query url.Values) ([]byte, int, error) {
	target := strings.TrimRight(c.cfg.BaseURL, "/") + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Accept", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, 0, err
	}

	return body, res.StatusCode, nil
}

func (c *client) failure(verr *VerifyError) Verdict {
	c.logger.Warn("registry verification failed",
		"category", verr.Category,
		"error", verr,
	)

	return Verdict{
		Message:  verr.Message,
		Category: verr.Category,
	}
}

func verified(message string, details *ProjectDetails) Verdict {
	return Verdict{
		Verified: true,
		Message:  message,
		Details:  details,
	}
}

func projectDetails(p Project) *ProjectDetails {
	id := p.Key
	if id == "" {
		id = p.ProjectID
	}

	return &ProjectDetails{
		ID:            id,
		Name:          p.Name,
		Country:       p.Country,
		Methodologies: p.Methodologies,
		Vintages:      p.Vintages,
	}
}

func bundleDetails(id string, product Product) *ProjectDetails {
	return &ProjectDetails{
		ID:          id,
		Name:        product.Name,
		Type:        "bundle",
		Description: product.ShortDescription,
		URL:         product.URL,
		CoverImage:  product.CoverImage,
	}
}

func normalize(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}
