package api

import (
	"github.com/ecoledger/credence/internal/carbonmark"
	"github.com/ecoledger/credence/internal/certificates"
	"github.com/ecoledger/credence/internal/listings"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Registry     carbonmark.System
	Certificates certificates.System
	Listings     listings.System
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime) *Domain {
	registry := carbonmark.New(runtime.Registry, runtime.Logger)

	certsSystem := certificates.New(
		runtime.Database.Connection(),
		registry,
		runtime.Storage,
		runtime.Logger,
		runtime.Pagination,
	)

	listingsSystem := listings.New(
		runtime.Database.Connection(),
		certsSystem,
		runtime.Logger,
		runtime.Pagination,
	)

	return &Domain{
		Registry:     registry,
		Certificates: certsSystem,
		Listings:     listingsSystem,
	}
}
