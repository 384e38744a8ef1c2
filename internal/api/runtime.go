package api

import (
	"github.com/ecoledger/credence/internal/carbonmark"
	"github.com/ecoledger/credence/internal/config"
	"github.com/ecoledger/credence/internal/infrastructure"
	"github.com/ecoledger/credence/pkg/pagination"
)

// Runtime extends Infrastructure with API-specific configuration.
type Runtime struct {
	*infrastructure.Infrastructure
	Registry   carbonmark.Config
	Pagination pagination.Config
}

// NewRuntime creates an API runtime with a module-scoped logger.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) *Runtime {
	return &Runtime{
		Infrastructure: &infrastructure.Infrastructure{
			Lifecycle: infra.Lifecycle,
			Logger:    infra.Logger.With("module", "api"),
			Database:  infra.Database,
			Storage:   infra.Storage,
		},
		Registry:   cfg.Registry,
		Pagination: cfg.API.Pagination,
	}
}
