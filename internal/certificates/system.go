package certificates

import (
	"context"

	"github.com/google/uuid"

	"github.com/ecoledger/credence/pkg/pagination"
)

// System defines the public contract for certificate domain operations.
type System interface {
	Handler(maxUploadSize int64) *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Certificate], error)

	Find(ctx context.Context, id uuid.UUID) (*Certificate, error)
	FindByDigest(ctx context.Context, digest string) (*Certificate, error)
	Authenticate(ctx context.Context, cmd AuthenticateCommand) (*AuthenticationResult, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
