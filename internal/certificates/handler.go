package certificates

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"golang.org/x/sync/errgroup"

	"github.com/ecoledger/credence/pkg/handlers"
	"github.com/ecoledger/credence/pkg/pagination"
	"github.com/ecoledger/credence/pkg/routes"
)

// batchConcurrency bounds parallel pipeline runs within one batch upload.
const batchConcurrency = 4

// Handler provides HTTP endpoints for certificate operations.
type Handler struct {
	sys           System
	logger        *slog.Logger
	pagination    pagination.Config
	maxUploadSize int64
}

// SearchRequest combines pagination and filter criteria for the search endpoint.
type SearchRequest struct {
	pagination.PageRequest
	Filters
}

// NewHandler creates a Handler with the given system, logger, pagination config, and upload size limit.
func NewHandler(
	sys System,
	logger *slog.Logger,
	pagination pagination.Config,
	maxUploadSize int64,
) *Handler {
	return &Handler{
		sys:           sys,
		logger:        logger.With("handler", "certificates"),
		pagination:    pagination,
		maxUploadSize: maxUploadSize,
	}
}

// Routes returns the route group definition for certificate endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/certificates",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find},
			{Method: "GET", Pattern: "/digest/{digest}", Handler: h.FindByDigest},
			{Method: "POST", Pattern: "/authenticate", Handler: h.Authenticate},
			{Method: "POST", Pattern: "/authenticate/batch", Handler: h.AuthenticateBatch},
			{Method: "POST", Pattern: "/search", Handler: h.Search},
			{Method: "DELETE", Pattern: "/{id}", Handler: h.Delete},
		},
	}
}

// List returns a paginated list of certificates with optional query parameter filters.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)
	filters := FiltersFromQuery(r.URL.Query())

	result, err := h.sys.List(r.Context(), page, filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Find returns a single certificate by its UUID path parameter.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidFile)
		return
	}

	cert, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, cert)
}

// FindByDigest returns a single certificate by its content digest path parameter.
func (h *Handler) FindByDigest(w http.ResponseWriter, r *http.Request) {
	cert, err := h.sys.FindByDigest(r.Context(), r.PathValue("digest"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, cert)
}

// Search accepts a JSON body with pagination and filter criteria and returns matching certificates.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidFile)
		return
	}

	req.PageRequest.Normalize(h.pagination)

	result, err := h.sys.List(r.Context(), req.PageRequest, req.Filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Authenticate processes a multipart form upload containing one certificate
// file. A duplicate upload returns the stored record with 200 rather than
// 201 for a newly processed one.
func (h *Handler) Authenticate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		handlers.RespondError(w, h.logger, http.StatusRequestEntityTooLarge, ErrFileTooLarge)
		return
	}

	file, header, err := r.FormFile("certificate")
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidFile)
		return
	}
	defer file.Close()

	cmd, err := readCommand(h.logger, file, header)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidFile)
		return
	}

	result, err := h.sys.Authenticate(r.Context(), *cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	status := http.StatusCreated
	if result.Duplicate {
		status = http.StatusOK
	}

	handlers.RespondJSON(w, status, result)
}

// AuthenticateBatch processes every file under the "certificates" form key.
// Files run through the pipeline concurrently; one failing file reports its
// error in place without affecting the others.
func (h *Handler) AuthenticateBatch(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		handlers.RespondError(w, h.logger, http.StatusRequestEntityTooLarge, ErrFileTooLarge)
		return
	}

	headers := r.MultipartForm.File["certificates"]
	if len(headers) == 0 {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidFile)
		return
	}

	results := make([]BatchResult, len(headers))

	var mu sync.Mutex
	g, ctx := errgroup.WithContext(r.Context())
	g.SetLimit(batchConcurrency)

	for i, header := range headers {
		g.Go(func() error {
			result := h.processBatchFile(ctx, header)

			mu.Lock()
			results[i] = result
			mu.Unlock()
			return nil
		})
	}

	// workers never return errors; Wait only joins them
	g.Wait()

	handlers.RespondJSON(w, http.StatusOK, results)
}

// Delete removes a certificate by its UUID path parameter.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidFile)
		return
	}

	if err := h.sys.Delete(r.Context(), id); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) processBatchFile(
	ctx context.Context,
	header *multipart.FileHeader,
) BatchResult {
	file, err := header.Open()
	if err != nil {
		return BatchResult{Filename: header.Filename, Error: ErrInvalidFile.Error()}
	}
	defer file.Close()

	cmd, err := readCommand(h.logger, file, header)
	if err != nil {
		return BatchResult{Filename: header.Filename, Error: ErrInvalidFile.Error()}
	}

	result, err := h.sys.Authenticate(ctx, *cmd)
	if err != nil {
		return BatchResult{Filename: header.Filename, Error: err.Error()}
	}

	return BatchResult{Filename: header.Filename, Result: result}
}

func readCommand(
	logger *slog.Logger,
	file multipart.File,
	header *multipart.FileHeader,
) (*AuthenticateCommand, error) {
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}

	contentType := detectContentType(header.Header.Get("Content-Type"), data)

	return &AuthenticateCommand{
		Data:      data,
		Filename:  header.Filename,
		PageCount: extractPDFPageCount(logger, data, contentType),
	}, nil
}

func detectContentType(header string, data []byte) string {
	header = strings.TrimSpace(header)
	if header != "" && header != "application/octet-stream" {
		return header
	}
	return http.DetectContentType(data)
}

func extractPDFPageCount(logger *slog.Logger, data []byte, contentType string) *int {
	if contentType != "application/pdf" {
		return nil
	}

	count, err := api.PageCount(bytes.NewReader(data), nil)
	if err != nil {
		logger.Warn("failed to extract PDF page count", "error", err)
		return nil
	}

	return &count
}
