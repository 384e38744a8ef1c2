package listings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/ecoledger/credence/internal/certificates"
	"github.com/ecoledger/credence/pkg/pagination"
	"github.com/ecoledger/credence/pkg/query"
	"github.com/ecoledger/credence/pkg/repository"
)

const listingColumns = "id, certificate_id, price, quantity, status, description, created_at, updated_at"

type repo struct {
	db           *sql.DB
	certificates certificates.System
	logger       *slog.Logger
	pagination   pagination.Config
}

// New creates a listing repository implementing the System interface.
func New(
	db *sql.DB,
	certs certificates.System,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &repo{
		db:           db,
		certificates: certs,
		logger:       logger.With("system", "listings"),
		pagination:   pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Listing], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Description")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count listings: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanListing)
	if err != nil {
		return nil, fmt.Errorf("query listings: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Listing, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	l, err := repository.QueryOne(ctx, r.db, q, args, scanListing)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &l, nil
}

// Create verifies the referenced certificate exists and authenticated
// before offering it for sale.
func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Listing, error) {
	if cmd.Price <= 0 || cmd.Quantity <= 0 {
		return nil, ErrInvalidListing
	}

	cert, err := r.certificates.Find(ctx, cmd.CertificateID)
	if err != nil {
		if errors.Is(err, certificates.ErrNotFound) {
			return nil, ErrCertificateNotFound
		}
		return nil, err
	}
	if cert.Status != certificates.StatusAuthenticated {
		return nil, ErrNotAuthenticated
	}

	q := fmt.Sprintf(`
		INSERT INTO listings(certificate_id, price, quantity, description)
		VALUES ($1, $2, $3, $4)
		RETURNING %s`, listingColumns)

	args := []any{cmd.CertificateID, cmd.Price, cmd.Quantity, cmd.Description}

	l, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Listing, error) {
		return repository.QueryOne(ctx, tx, q, args, scanListing)
	})

	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("listing created", "id", l.ID, "certificate_id", l.CertificateID)
	return &l, nil
}

func (r *repo) Update(ctx context.Context, id uuid.UUID, cmd UpdateCommand) (*Listing, error) {
	if cmd.Price <= 0 || cmd.Quantity <= 0 {
		return nil, ErrInvalidListing
	}

	q := fmt.Sprintf(`
		UPDATE listings
		SET price = $1, quantity = $2, description = $3, updated_at = now()
		WHERE id = $4
		RETURNING %s`, listingColumns)

	args := []any{cmd.Price, cmd.Quantity, cmd.Description, id}

	l, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Listing, error) {
		return repository.QueryOne(ctx, tx, q, args, scanListing)
	})

	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("listing updated", "id", l.ID)
	return &l, nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		if err := repository.ExecExpectOne(
			ctx, tx,
			"DELETE FROM listings WHERE id = $1",
			id,
		); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, nil
	})

	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("listing deleted", "id", id)
	return nil
}

func (r *repo) Withdraw(ctx context.Context, id uuid.UUID) (*Listing, error) {
	return r.transition(ctx, id, StatusWithdrawn)
}

func (r *repo) Purchase(ctx context.Context, id uuid.UUID) (*Listing, error) {
	return r.transition(ctx, id, StatusSold)
}

// transition moves an active listing to a terminal status. The status check
// happens inside the transaction so two concurrent purchases cannot both
// succeed.
func (r *repo) transition(ctx context.Context, id uuid.UUID, status string) (*Listing, error) {
	l, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Listing, error) {
		q := fmt.Sprintf(`
			UPDATE listings SET status = $1, updated_at = now()
			WHERE id = $2 AND status = $3
			RETURNING %s`, listingColumns)

		updated, err := repository.QueryOne(
			ctx, tx, q,
			[]any{status, id, StatusActive},
			scanListing,
		)
		if err == nil {
			return updated, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return Listing{}, err
		}

		// no active row: distinguish missing from already terminal
		findQ, findArgs := query.NewBuilder(projection).BuildSingle("ID", id)
		if _, findErr := repository.QueryOne(ctx, tx, findQ, findArgs, scanListing); findErr != nil {
			return Listing{}, findErr
		}
		return Listing{}, ErrNotActive
	})

	if err != nil {
		if errors.Is(err, ErrNotActive) {
			return nil, ErrNotActive
		}
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("listing transitioned", "id", l.ID, "status", l.Status)
	return &l, nil
}
