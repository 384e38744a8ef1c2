package certificates_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ecoledger/credence/internal/carbonmark"
	"github.com/ecoledger/credence/internal/certificates"
	"github.com/ecoledger/credence/internal/extraction"
	"github.com/ecoledger/credence/pkg/pagination"
)

type mockSystem struct {
	listFn         func(ctx context.Context, page pagination.PageRequest, filters certificates.Filters) (*pagination.PageResult[certificates.Certificate], error)
	findFn         func(ctx context.Context, id uuid.UUID) (*certificates.Certificate, error)
	findDigestFn   func(ctx context.Context, digest string) (*certificates.Certificate, error)
	authenticateFn func(ctx context.Context, cmd certificates.AuthenticateCommand) (*certificates.AuthenticationResult, error)
	deleteFn       func(ctx context.Context, id uuid.UUID) error
}

func (m *mockSystem) Handler(maxUploadSize int64) *certificates.Handler {
	return newTestHandler(m)
}

func (m *mockSystem) List(ctx context.Context, page pagination.PageRequest, filters certificates.Filters) (*pagination.PageResult[certificates.Certificate], error) {
	return m.listFn(ctx, page, filters)
}

func (m *mockSystem) Find(ctx context.Context, id uuid.UUID) (*certificates.Certificate, error) {
	return m.findFn(ctx, id)
}

func (m *mockSystem) FindByDigest(ctx context.Context, digest string) (*certificates.Certificate, error) {
	return m.findDigestFn(ctx, digest)
}

func (m *mockSystem) Authenticate(ctx context.Context, cmd certificates.AuthenticateCommand) (*certificates.AuthenticationResult, error) {
	return m.authenticateFn(ctx, cmd)
}

func (m *mockSystem) Delete(ctx context.Context, id uuid.UUID) error {
	return m.deleteFn(ctx, id)
}

func newTestHandler(sys *mockSystem) *certificates.Handler {
	return certificates.NewHandler(
		sys,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		pagination.Config{DefaultPageSize: 20, MaxPageSize: 100},
		50*1024*1024,
	)
}

func setupMux(h *certificates.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	group := h.Routes()
	for _, route := range group.Routes {
		pattern := route.Method + " " + group.Prefix + route.Pattern
		mux.HandleFunc(pattern, route.Handler)
	}
	return mux
}

func sampleCert() certificates.Certificate {
	serial := "VCS-1234-2020-XYZ"
	return certificates.Certificate{
		ID:               uuid.MustParse("550e8400-e29b-41d4-a716-446655440000"),
		ContentDigest:    "a3f5b8c9d2e1f4a6b7c8d9e0f1a2b3c4d5e6f7a8b9c0d1e2f3a4b5c6d7e8f9a0",
		SerialNumber:     &serial,
		OriginalFilename: "cert.pdf",
		SizeBytes:        1024,
		PageCount:        ptr(1),
		Fields: extraction.FieldSet{
			SerialNumber: extraction.Raw(serial),
			ProjectID:    extraction.Raw("VCS-1234"),
			Amount:       extraction.Number(500),
			Registry:     extraction.Raw("Verra"),
		},
		Verdict: carbonmark.Verdict{
			Verified: true,
			Message:  "found via registry search",
		},
		Authenticated: true,
		Status:        certificates.StatusAuthenticated,
		ProcessedAt:   time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC),
	}
}

func multipartBody(t *testing.T, field string, files map[string][]byte) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for name, data := range files {
		part, err := writer.CreateFormFile(field, name)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := part.Write(data); err != nil {
			t.Fatalf("write form file: %v", err)
		}
	}

	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	return &buf, writer.FormDataContentType()
}

func TestHandlerAuthenticate(t *testing.T) {
	cert := sampleCert()

	t.Run("new certificate returns 201", func(t *testing.T) {
		var captured certificates.AuthenticateCommand
		sys := &mockSystem{
			authenticateFn: func(_ context.Context, cmd certificates.AuthenticateCommand) (*certificates.AuthenticationResult, error) {
				captured = cmd
				return &certificates.AuthenticationResult{
					Certificate: &cert,
					FabricTxID:  "tx_0011223344556677",
					Message:     "certificate authenticated",
				}, nil
			},
		}

		body, contentType := multipartBody(t, "certificate", map[string][]byte{
			"cert.pdf": []byte("certificate bytes"),
		})

		rec := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/certificates/authenticate", body)
		req.Header.Set("Content-Type", contentType)
		setupMux(newTestHandler(sys)).ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d, want 201", rec.Code)
		}
		if captured.Filename != "cert.pdf" {
			t.Errorf("filename = %q, want cert.pdf", captured.Filename)
		}
		if string(captured.Data) != "certificate bytes" {
			t.Errorf("data = %q", captured.Data)
		}

		var result certificates.AuthenticationResult
		if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if result.FabricTxID != "tx_0011223344556677" {
			t.Errorf("fabric tx id = %q", result.FabricTxID)
		}
	})

	t.Run("duplicate returns 200", func(t *testing.T) {
		sys := &mockSystem{
			authenticateFn: func(_ context.Context, _ certificates.AuthenticateCommand) (*certificates.AuthenticationResult, error) {
				return &certificates.AuthenticationResult{
					Certificate: &cert,
					Duplicate:   true,
					Message:     "certificate already processed",
				}, nil
			},
		}

		body, contentType := multipartBody(t, "certificate", map[string][]byte{
			"cert.pdf": []byte("certificate bytes"),
		})

		rec := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/certificates/authenticate", body)
		req.Header.Set("Content-Type", contentType)
		setupMux(newTestHandler(sys)).ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
	})

	t.Run("missing file returns 400", func(t *testing.T) {
		sys := &mockSystem{}

		body, contentType := multipartBody(t, "wrong", map[string][]byte{
			"cert.pdf": []byte("bytes"),
		})

		rec := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/certificates/authenticate", body)
		req.Header.Set("Content-Type", contentType)
		setupMux(newTestHandler(sys)).ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("unreadable document returns 400", func(t *testing.T) {
		sys := &mockSystem{
			authenticateFn: func(_ context.Context, _ certificates.AuthenticateCommand) (*certificates.AuthenticationResult, error) {
				return nil, extraction.ErrExtraction
			},
		}

		body, contentType := multipartBody(t, "certificate", map[string][]byte{
			"cert.pdf": []byte("not a pdf"),
		})

		rec := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/certificates/authenticate", body)
		req.Header.Set("Content-Type", contentType)
		setupMux(newTestHandler(sys)).ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("textless document returns 422", func(t *testing.T) {
		sys := &mockSystem{
			authenticateFn: func(_ context.Context, _ certificates.AuthenticateCommand) (*certificates.AuthenticationResult, error) {
				return nil, extraction.ErrNoText
			},
		}

		body, contentType := multipartBody(t, "certificate", map[string][]byte{
			"scan.pdf": []byte("image only"),
		})

		rec := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/certificates/authenticate", body)
		req.Header.Set("Content-Type", contentType)
		setupMux(newTestHandler(sys)).ServeHTTP(rec, req)

		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("status = %d, want 422", rec.Code)
		}
	})
}

func TestHandlerAuthenticateBatch(t *testing.T) {
	cert := sampleCert()

	sys := &mockSystem{
		authenticateFn: func(_ context.Context, cmd certificates.AuthenticateCommand) (*certificates.AuthenticationResult, error) {
			if cmd.Filename == "bad.pdf" {
				return nil, extraction.ErrExtraction
			}
			return &certificates.AuthenticationResult{
				Certificate: &cert,
				Message:     "certificate authenticated",
			}, nil
		},
	}

	body, contentType := multipartBody(t, "certificates", map[string][]byte{
		"good.pdf":  []byte("certificate one"),
		"bad.pdf":   []byte("garbage"),
		"other.pdf": []byte("certificate two"),
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/certificates/authenticate/batch", body)
	req.Header.Set("Content-Type", contentType)
	setupMux(newTestHandler(sys)).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var results []certificates.BatchResult
	if err := json.NewDecoder(rec.Body).Decode(&results); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if len(results) != 3 {
		t.Fatalf("results = %d, want 3", len(results))
	}

	byName := map[string]certificates.BatchResult{}
	for _, r := range results {
		byName[r.Filename] = r
	}

	if byName["bad.pdf"].Error == "" {
		t.Error("expected error for bad.pdf")
	}
	if byName["good.pdf"].Result == nil {
		t.Error("expected result for good.pdf")
	}
	if byName["other.pdf"].Result == nil {
		t.Error("expected result for other.pdf")
	}
}

func TestHandlerFind(t *testing.T) {
	cert := sampleCert()

	sys := &mockSystem{
		findFn: func(_ context.Context, id uuid.UUID) (*certificates.Certificate, error) {
			if id != cert.ID {
				return nil, certificates.ErrNotFound
			}
			return &cert, nil
		},
	}

	mux := setupMux(newTestHandler(sys))

	t.Run("found", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/certificates/"+cert.ID.String(), nil)
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
	})

	t.Run("unknown id returns 404", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/certificates/"+uuid.NewString(), nil)
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want 404", rec.Code)
		}
	})

	t.Run("invalid id returns 400", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/certificates/not-a-uuid", nil)
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
	})
}

func TestHandlerFindByDigest(t *testing.T) {
	cert := sampleCert()

	sys := &mockSystem{
		findDigestFn: func(_ context.Context, digest string) (*certificates.Certificate, error) {
			if digest != cert.ContentDigest {
				return nil, certificates.ErrNotFound
			}
			return &cert, nil
		},
	}

	mux := setupMux(newTestHandler(sys))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/certificates/digest/"+cert.ContentDigest, nil)
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var decoded certificates.Certificate
	if err := json.NewDecoder(rec.Body).Decode(&decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.ContentDigest != cert.ContentDigest {
		t.Errorf("digest = %q", decoded.ContentDigest)
	}
}

func TestHandlerList(t *testing.T) {
	cert := sampleCert()

	t.Run("returns paginated list", func(t *testing.T) {
		sys := &mockSystem{
			listFn: func(_ context.Context, _ pagination.PageRequest, _ certificates.Filters) (*pagination.PageResult[certificates.Certificate], error) {
				result := pagination.NewPageResult([]certificates.Certificate{cert}, 1, 1, 20)
				return &result, nil
			},
		}

		rec := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/certificates", nil)
		setupMux(newTestHandler(sys)).ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}

		var result pagination.PageResult[certificates.Certificate]
		if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if result.Total != 1 {
			t.Errorf("total = %d, want 1", result.Total)
		}
	})

	t.Run("passes query filters", func(t *testing.T) {
		var captured certificates.Filters
		sys := &mockSystem{
			listFn: func(_ context.Context, _ pagination.PageRequest, filters certificates.Filters) (*pagination.PageResult[certificates.Certificate], error) {
				captured = filters
				result := pagination.NewPageResult([]certificates.Certificate{}, 0, 1, 20)
				return &result, nil
			},
		}

		rec := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/certificates?status=authenticated&authenticated=true", nil)
		setupMux(newTestHandler(sys)).ServeHTTP(rec, req)

		if captured.Status == nil || *captured.Status != "authenticated" {
			t.Errorf("status filter = %v", captured.Status)
		}
		if captured.Authenticated == nil || !*captured.Authenticated {
			t.Errorf("authenticated filter = %v", captured.Authenticated)
		}
	})
}

func TestHandlerSearch(t *testing.T) {
	var captured certificates.Filters
	sys := &mockSystem{
		listFn: func(_ context.Context, _ pagination.PageRequest, filters certificates.Filters) (*pagination.PageResult[certificates.Certificate], error) {
			captured = filters
			result := pagination.NewPageResult([]certificates.Certificate{}, 0, 1, 20)
			return &result, nil
		},
	}

	body := bytes.NewBufferString(`{"page":1,"page_size":10,"serial_number":"VCS"}`)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/certificates/search", body)
	req.Header.Set("Content-Type", "application/json")
	setupMux(newTestHandler(sys)).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if captured.SerialNumber == nil || *captured.SerialNumber != "VCS" {
		t.Errorf("serial number filter = %v", captured.SerialNumber)
	}
}

func TestHandlerDelete(t *testing.T) {
	cert := sampleCert()

	sys := &mockSystem{
		deleteFn: func(_ context.Context, id uuid.UUID) error {
			if id != cert.ID {
				return certificates.ErrNotFound
			}
			return nil
		},
	}

	mux := setupMux(newTestHandler(sys))

	t.Run("deleted", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest("DELETE", "/certificates/"+cert.ID.String(), nil)
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusNoContent {
			t.Fatalf("status = %d, want 204", rec.Code)
		}
	})

	t.Run("unknown id returns 404", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest("DELETE", "/certificates/"+uuid.NewString(), nil)
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want 404", rec.Code)
		}
	})
}

func ptr[T any](v T) *T {
	return &v
}
