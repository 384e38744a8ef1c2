package certificates

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/ecoledger/credence/internal/carbonmark"
	"github.com/ecoledger/credence/pkg/pagination"
	"github.com/ecoledger/credence/pkg/query"
	"github.com/ecoledger/credence/pkg/repository"
	"github.com/ecoledger/credence/pkg/storage"
)

type repo struct {
	db         *sql.DB
	registry   carbonmark.System
	archive    storage.System
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a certificate repository implementing the System interface.
// The archive is optional; a nil value disables original-document retention.
func New(
	db *sql.DB,
	registry carbonmark.System,
	archive storage.System,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &repo{
		db:         db,
		registry:   registry,
		archive:    archive,
		logger:     logger.With("system", "certificates"),
		pagination: pagination,
	}
}

func (r *repo) Handler(maxUploadSize int64) *Handler {
	return NewHandler(r, r.logger, r.pagination, maxUploadSize)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Certificate], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "SerialNumber", "OriginalFilename")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count certificates: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	certs, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanCertificate)
	if err != nil {
		return nil, fmt.Errorf("query certificates: %w", err)
	}

	result := pagination.NewPageResult(certs, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Certificate, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	c, err := repository.QueryOne(ctx, r.db, q, args, scanCertificate)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &c, nil
}

func (r *repo) FindByDigest(ctx context.Context, digest string) (*Certificate, error) {
	return r.findByDigest(ctx, digest)
}

func (r *repo) Authenticate(
	ctx context.Context,
	cmd AuthenticateCommand,
) (*AuthenticationResult, error) {
	a := &authenticator{
		records:  r,
		registry: r.registry,
		archive:  r.archive,
		logger:   r.logger,
	}
	return a.authenticate(ctx, cmd)
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	cert, err := r.Find(ctx, id)
	if err != nil {
		return err
	}

	_, err = repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		if err := repository.ExecExpectOne(
			ctx, tx,
			"DELETE FROM certificates WHERE id = $1",
			id,
		); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, nil
	})

	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	if r.archive != nil {
		if delErr := r.archive.Delete(ctx, archiveKey(cert.ContentDigest)); delErr != nil {
			r.logger.Warn(
				"archive delete failed after DB delete",
				"digest", cert.ContentDigest,
				"error", delErr,
			)
		}
	}

	r.logger.Info("certificate deleted", "id", id)
	return nil
}

func (r *repo) findByDigest(ctx context.Context, digest string) (*Certificate, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ContentDigest", digest)

	c, err := repository.QueryOne(ctx, r.db, q, args, scanCertificate)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &c, nil
}

func (r *repo) insert(ctx context.Context, cert Certificate) (*Certificate, error) {
	fields, err := json.Marshal(cert.Fields)
	if err != nil {
		return nil, fmt.Errorf("encode fields: %w", err)
	}
	verdict, err := json.Marshal(cert.Verdict)
	if err != nil {
		return nil, fmt.Errorf("encode verdict: %w", err)
	}

	q := `
		INSERT INTO certificates(id, content_digest, serial_number, original_filename, size_bytes, page_count, fields, verdict, authenticated, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, content_digest, serial_number, original_filename, size_bytes, page_count, fields, verdict, authenticated, status, processed_at`

	insertArgs := []any{
		cert.ID,
		cert.ContentDigest,
		cert.SerialNumber,
		cert.OriginalFilename,
		cert.SizeBytes,
		cert.PageCount,
		fields,
		verdict,
		cert.Authenticated,
		cert.Status,
	}

	c, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Certificate, error) {
		return repository.QueryOne(ctx, tx, q, insertArgs, scanCertificate)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("certificate stored",
		"id", c.ID,
		"digest", c.ContentDigest,
		"status", c.Status,
	)
	return &c, nil
}

func archiveKey(digest string) string {
	return fmt.Sprintf("certificates/%s.pdf", digest)
}
