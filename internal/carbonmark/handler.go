package carbonmark

import (
	"log/slog"
	"net/http"

	"github.com/ecoledger/credence/pkg/handlers"
	"github.com/ecoledger/credence/pkg/routes"
)

// Handler provides HTTP endpoints for ad hoc registry lookups.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// NewHandler creates a Handler with the given system and logger.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "registry"),
	}
}

// Routes returns the route group definition for registry endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/registry",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/projects/{id}", Handler: h.Lookup},
		},
	}
}

// Lookup verifies a single project identifier and returns the verdict. A
// clean registry miss is a 404; verification failures surface as 200 with
// the category in the body so callers can distinguish outage from absence.
func (h *Handler) Lookup(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	verdict := h.sys.Verify(r.Context(), id)

	status := http.StatusOK
	if !verdict.Verified && verdict.Category == CategoryNotFound {
		status = http.StatusNotFound
	}

	handlers.RespondJSON(w, status, verdict)
}
