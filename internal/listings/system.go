package listings

import (
	"context"

	"github.com/google/uuid"

	"github.com/ecoledger/credence/pkg/pagination"
)

// System defines the public contract for listing domain operations.
type System interface {
	Handler() *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Listing], error)

	Find(ctx context.Context, id uuid.UUID) (*Listing, error)
	Create(ctx context.Context, cmd CreateCommand) (*Listing, error)
	Update(ctx context.Context, id uuid.UUID, cmd UpdateCommand) (*Listing, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Withdraw(ctx context.Context, id uuid.UUID) (*Listing, error)
	Purchase(ctx context.Context, id uuid.UUID) (*Listing, error)
}
