package listings_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ecoledger/credence/internal/listings"
	"github.com/ecoledger/credence/pkg/pagination"
)

type mockSystem struct {
	listFn     func(ctx context.Context, page pagination.PageRequest, filters listings.Filters) (*pagination.PageResult[listings.Listing], error)
	findFn     func(ctx context.Context, id uuid.UUID) (*listings.Listing, error)
	createFn   func(ctx context.Context, cmd listings.CreateCommand) (*listings.Listing, error)
	updateFn   func(ctx context.Context, id uuid.UUID, cmd listings.UpdateCommand) (*listings.Listing, error)
	deleteFn   func(ctx context.Context, id uuid.UUID) error
	withdrawFn func(ctx context.Context, id uuid.UUID) (*listings.Listing, error)
	purchaseFn func(ctx context.Context, id uuid.UUID) (*listings.Listing, error)
}

func (m *mockSystem) Handler() *listings.Handler {
	return newTestHandler(m)
}

func (m *mockSystem) List(ctx context.Context, page pagination.PageRequest, filters listings.Filters) (*pagination.PageResult[listings.Listing], error) {
	return m.listFn(ctx, page, filters)
}

func (m *mockSystem) Find(ctx context.Context, id uuid.UUID) (*listings.Listing, error) {
	return m.findFn(ctx, id)
}

func (m *mockSystem) Create(ctx context.Context, cmd listings.CreateCommand) (*listings.Listing, error) {
	return m.createFn(ctx, cmd)
}

func (m *mockSystem) Update(ctx context.Context, id uuid.UUID, cmd listings.UpdateCommand) (*listings.Listing, error) {
	return m.updateFn(ctx, id, cmd)
}

func (m *mockSystem) Delete(ctx context.Context, id uuid.UUID) error {
	return m.deleteFn(ctx, id)
}

func (m *mockSystem) Withdraw(ctx context.Context, id uuid.UUID) (*listings.Listing, error) {
	return m.withdrawFn(ctx, id)
}

func (m *mockSystem) Purchase(ctx context.Context, id uuid.UUID) (*listings.Listing, error) {
	return m.purchaseFn(ctx, id)
}

func newTestHandler(sys *mockSystem) *listings.Handler {
	return listings.NewHandler(
		sys,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		pagination.Config{DefaultPageSize: 20, MaxPageSize: 100},
	)
}

func setupMux(h *listings.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	group := h.Routes()
	for _, route := range group.Routes {
		pattern := route.Method + " " + group.Prefix + route.Pattern
		mux.HandleFunc(pattern, route.Handler)
	}
	return mux
}

func sampleListing() listings.Listing {
	desc := "500 tonnes, Katingan Peatland Restoration"
	return listings.Listing{
		ID:            uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8"),
		CertificateID: uuid.MustParse("550e8400-e29b-41d4-a716-446655440000"),
		Price:         12.50,
		Quantity:      500,
		Status:        listings.StatusActive,
		Description:   &desc,
		CreatedAt:     time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC),
		UpdatedAt:     time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestHandlerCreate(t *testing.T) {
	listing := sampleListing()

	t.Run("created", func(t *testing.T) {
		var captured listings.CreateCommand
		sys := &mockSystem{
			createFn: func(_ context.Context, cmd listings.CreateCommand) (*listings.Listing, error) {
				captured = cmd
				return &listing, nil
			},
		}

		body := bytes.NewBufferString(`{
			"certificate_id": "550e8400-e29b-41d4-a716-446655440000",
			"price": 12.50,
			"quantity": 500
		}`)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/listings", body)
		req.Header.Set("Content-Type", "application/json")
		setupMux(newTestHandler(sys)).ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d, want 201", rec.Code)
		}
		if captured.CertificateID != listing.CertificateID {
			t.Errorf("certificate_id = %v", captured.CertificateID)
		}
		if captured.Price != 12.50 {
			t.Errorf("price = %v", captured.Price)
		}
	})

	t.Run("unauthenticated certificate returns 422", func(t *testing.T) {
		sys := &mockSystem{
			createFn: func(_ context.Context, _ listings.CreateCommand) (*listings.Listing, error) {
				return nil, listings.ErrNotAuthenticated
			},
		}

		body := bytes.NewBufferString(`{
			"certificate_id": "550e8400-e29b-41d4-a716-446655440000",
			"price": 1,
			"quantity": 1
		}`)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/listings", body)
		req.Header.Set("Content-Type", "application/json")
		setupMux(newTestHandler(sys)).ServeHTTP(rec, req)

		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("status = %d, want 422", rec.Code)
		}
	})

	t.Run("malformed body returns 400", func(t *testing.T) {
		sys := &mockSystem{}

		rec := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/listings", bytes.NewBufferString("{"))
		setupMux(newTestHandler(sys)).ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
	})
}

func TestHandlerTransitions(t *testing.T) {
	listing := sampleListing()

	t.Run("withdraw", func(t *testing.T) {
		withdrawn := listing
		withdrawn.Status = listings.StatusWithdrawn

		sys := &mockSystem{
			withdrawFn: func(_ context.Context, id uuid.UUID) (*listings.Listing, error) {
				return &withdrawn, nil
			},
		}

		rec := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/listings/"+listing.ID.String()+"/withdraw", nil)
		setupMux(newTestHandler(sys)).ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}

		var decoded listings.Listing
		if err := json.NewDecoder(rec.Body).Decode(&decoded); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if decoded.Status != listings.StatusWithdrawn {
			t.Errorf("status = %q, want withdrawn", decoded.Status)
		}
	})

	t.Run("purchase", func(t *testing.T) {
		sold := listing
		sold.Status = listings.StatusSold

		sys := &mockSystem{
			purchaseFn: func(_ context.Context, id uuid.UUID) (*listings.Listing, error) {
				return &sold, nil
			},
		}

		rec := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/listings/"+listing.ID.String()+"/purchase", nil)
		setupMux(newTestHandler(sys)).ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
	})

	t.Run("inactive listing returns 409", func(t *testing.T) {
		sys := &mockSystem{
			purchaseFn: func(_ context.Context, id uuid.UUID) (*listings.Listing, error) {
				return nil, listings.ErrNotActive
			},
		}

		rec := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/listings/"+listing.ID.String()+"/purchase", nil)
		setupMux(newTestHandler(sys)).ServeHTTP(rec, req)

		if rec.Code != http.StatusConflict {
			t.Fatalf("status = %d, want 409", rec.Code)
		}
	})
}

func TestHandlerList(t *testing.T) {
	listing := sampleListing()

	t.Run("returns paginated list", func(t *testing.T) {
		sys := &mockSystem{
			listFn: func(_ context.Context, _ pagination.PageRequest, _ listings.Filters) (*pagination.PageResult[listings.Listing], error) {
				result := pagination.NewPageResult([]listings.Listing{listing}, 1, 1, 20)
				return &result, nil
			},
		}

		rec := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/listings", nil)
		setupMux(newTestHandler(sys)).ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
	})

	t.Run("passes query filters", func(t *testing.T) {
		var captured listings.Filters
		sys := &mockSystem{
			listFn: func(_ context.Context, _ pagination.PageRequest, filters listings.Filters) (*pagination.PageResult[listings.Listing], error) {
				captured = filters
				result := pagination.NewPageResult([]listings.Listing{}, 0, 1, 20)
				return &result, nil
			},
		}

		rec := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/listings?status=active&certificate_id="+listing.CertificateID.String(), nil)
		setupMux(newTestHandler(sys)).ServeHTTP(rec, req)

		if captured.Status == nil || *captured.Status != "active" {
			t.Errorf("status filter = %v", captured.Status)
		}
		if captured.CertificateID == nil || *captured.CertificateID != listing.CertificateID {
			t.Errorf("certificate_id filter = %v", captured.CertificateID)
		}
	})
}

func TestHandlerFind(t *testing.T) {
	listing := sampleListing()

	sys := &mockSystem{
		findFn: func(_ context.Context, id uuid.UUID) (*listings.Listing, error) {
			if id != listing.ID {
				return nil, listings.ErrNotFound
			}
			return &listing, nil
		},
	}

	mux := setupMux(newTestHandler(sys))

	t.Run("found", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/listings/"+listing.ID.String(), nil)
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
	})

	t.Run("unknown id returns 404", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/listings/"+uuid.NewString(), nil)
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want 404", rec.Code)
		}
	})
}

func TestHandlerDelete(t *testing.T) {
	listing := sampleListing()

	sys := &mockSystem{
		deleteFn: func(_ context.Context, id uuid.UUID) error {
			if id != listing.ID {
				return listings.ErrNotFound
			}
			return nil
		},
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("DELETE", "/listings/"+listing.ID.String(), nil)
	setupMux(newTestHandler(sys)).ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
}
