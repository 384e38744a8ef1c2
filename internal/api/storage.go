package api

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/ecoledger/credence/pkg/handlers"
	"github.com/ecoledger/credence/pkg/routes"
	"github.com/ecoledger/credence/pkg/storage"
)

// archiveHandler exposes the retained certificate originals when the
// archive is enabled. Keys are content digests.
type archiveHandler struct {
	store  storage.System
	logger *slog.Logger
}

func newArchiveHandler(store storage.System, logger *slog.Logger) *archiveHandler {
	return &archiveHandler{
		store:  store,
		logger: logger.With("handler", "archive"),
	}
}

func (h *archiveHandler) routes() routes.Group {
	return routes.Group{
		Prefix: "/archive",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/{digest}", Handler: h.exists},
			{Method: "GET", Pattern: "/{digest}/download", Handler: h.download},
		},
	}
}

func (h *archiveHandler) exists(w http.ResponseWriter, r *http.Request) {
	key := archiveKey(r.PathValue("digest"))

	found, err := h.store.Exists(r.Context(), key)
	if err != nil {
		handlers.RespondError(
			w, h.logger,
			storage.MapHTTPStatus(err), err,
		)
		return
	}
	if !found {
		handlers.RespondError(
			w, h.logger,
			http.StatusNotFound, storage.ErrNotFound,
		)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, map[string]any{
		"digest":   r.PathValue("digest"),
		"archived": true,
	})
}

func (h *archiveHandler) download(w http.ResponseWriter, r *http.Request) {
	digest := r.PathValue("digest")

	body, err := h.store.Download(r.Context(), archiveKey(digest))
	if err != nil {
		handlers.RespondError(
			w, h.logger,
			storage.MapHTTPStatus(err), err,
		)
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set(
		"Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", digest+".pdf"),
	)
	w.WriteHeader(http.StatusOK)
	io.Copy(w, body)
}

func archiveKey(digest string) string {
	return fmt.Sprintf("certificates/%s.pdf", digest)
}
