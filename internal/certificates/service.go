package certificates

import (
	"bytes"
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/ecoledger/credence/internal/carbonmark"
	"github.com/ecoledger/credence/internal/extraction"
	"github.com/ecoledger/credence/pkg/storage"
)

// records is the persistence surface the pipeline needs. Insert reports
// ErrDuplicate on a digest collision so the pipeline can resolve concurrent
// identical uploads to the record that won the race.
type records interface {
	findByDigest(ctx context.Context, digest string) (*Certificate, error)
	insert(ctx context.Context, cert Certificate) (*Certificate, error)
}

type authenticator struct {
	records  records
	registry carbonmark.System
	archive  storage.System
	logger   *slog.Logger
	extract  func(data []byte) (string, error)
}

// authenticate runs the full pipeline over one upload: digest, dedup, text
// extraction, field parsing, validation, registry verification, persistence.
func (a *authenticator) authenticate(
	ctx context.Context,
	cmd AuthenticateCommand,
) (*AuthenticationResult, error) {
	if a.extract == nil {
		a.extract = extraction.ExtractText
	}

	digest := extraction.DigestBytes(cmd.Data)

	existing, err := a.records.findByDigest(ctx, digest)
	if err == nil {
		return duplicateResult(existing), nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	text, err := a.extract(cmd.Data)
	if err != nil {
		return nil, err
	}
	if !extraction.HasText(text) {
		return nil, extraction.ErrNoText
	}

	fields := extraction.ParseFields(text)
	missing := fields.MissingRequired()

	var verdict carbonmark.Verdict
	if fields.ProjectID.Blank() {
		verdict = carbonmark.Verdict{Message: "verification skipped: no project id"}
	} else {
		verdict = a.registry.Verify(ctx, fields.ProjectID.String())
	}

	authenticated := len(missing) == 0 && verdict.Verified

	status := StatusRejected
	if authenticated {
		status = StatusAuthenticated
	}

	cert := Certificate{
		ID:               uuid.New(),
		ContentDigest:    digest,
		SerialNumber:     serialNumber(fields),
		OriginalFilename: cmd.Filename,
		SizeBytes:        int64(len(cmd.Data)),
		PageCount:        cmd.PageCount,
		Fields:           fields,
		Verdict:          verdict,
		Authenticated:    authenticated,
		Status:           status,
	}

	stored, err := a.records.insert(ctx, cert)
	if errors.Is(err, ErrDuplicate) {
		// a concurrent identical upload won the insert race
		winner, findErr := a.records.findByDigest(ctx, digest)
		if findErr != nil {
			return nil, findErr
		}
		return duplicateResult(winner), nil
	}
	if err != nil {
		return nil, err
	}

	a.archiveOriginal(ctx, digest, cmd.Data)

	result := &AuthenticationResult{
		Certificate:   stored,
		MissingFields: missing,
		Message:       composeMessage(authenticated, missing, verdict),
	}
	if authenticated {
		result.FabricTxID = newTxID()
	}

	return result, nil
}

// archiveOriginal retains the uploaded bytes keyed by digest. Retention is
// optional and never fails the request.
func (a *authenticator) archiveOriginal(ctx context.Context, digest string, data []byte) {
	if a.archive == nil {
		return
	}

	key := archiveKey(digest)
	if err := a.archive.Upload(ctx, key, bytes.NewReader(data), "application/pdf"); err != nil {
		a.logger.Warn("certificate archive failed", "key", key, "error", err)
	}
}

func duplicateResult(cert *Certificate) *AuthenticationResult {
	return &AuthenticationResult{
		Certificate:   cert,
		Duplicate:     true,
		MissingFields: cert.Fields.MissingRequired(),
		Message:       "certificate already processed",
	}
}

func composeMessage(authenticated bool, missing []string, verdict carbonmark.Verdict) string {
	if authenticated {
		return "certificate authenticated"
	}
	if len(missing) > 0 {
		return fmt.Sprintf("missing required fields: %s", strings.Join(missing, ", "))
	}
	return fmt.Sprintf("certificate not verified: %s", verdict.Message)
}

// newTxID issues a placeholder ledger transaction reference. A real ledger
// write replaces this once the chaincode integration lands.
func newTxID() string {
	buf := make([]byte, 8)
	rand.Read(buf)
	return fmt.Sprintf("tx_%x", buf)
}

func serialNumber(fields extraction.FieldSet) *string {
	if fields.SerialNumber.Blank() {
		return nil
	}
	s := fields.SerialNumber.String()
	return &s
}
