package api

import (
	"net/http"

	"github.com/ecoledger/credence/internal/config"
	"github.com/ecoledger/credence/pkg/openapi"
	"github.com/ecoledger/credence/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	cfg *config.Config,
	runtime *Runtime,
) error {
	routes.Register(
		mux,
		domain.Certificates.Handler(cfg.API.MaxUploadSizeBytes()).Routes(),
	)
	routes.Register(mux, domain.Listings.Handler().Routes())
	routes.Register(mux, domain.Registry.Handler().Routes())

	if runtime.Storage != nil {
		archive := newArchiveHandler(runtime.Storage, runtime.Logger)
		routes.Register(mux, archive.routes())
	}

	specBytes, err := openapi.MarshalJSON(buildSpec(cfg))
	if err != nil {
		return err
	}
	mux.HandleFunc("GET /openapi.json", openapi.ServeSpec(specBytes))

	return nil
}
