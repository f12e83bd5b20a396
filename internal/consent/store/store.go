package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"consentd/internal/consent/models"
	dErrors "consentd/pkg/domain-errors"
)

// Error Contract:
// All store methods follow this error pattern:
// - Return ErrNotFound when the requested record does not exist
// - Return ErrUnavailable-coded errors for infrastructure failures
// - Return nil for successful operations

var (
	// ErrNotFound keeps storage-specific 404s consistent across implementations.
	ErrNotFound = dErrors.New(dErrors.CodeNotFound, "consent record not found")
)

// Store is the persistence boundary for consent records. Records are
// append-only apart from the single Active -> Revoked transition, which Revoke
// applies atomically.
type Store interface {
	// Insert assigns an id and persists the record. Validation happens
	// upstream; Insert only fails on infrastructure errors.
	Insert(ctx context.Context, record *models.Record) error

	// GetByID returns the record or ErrNotFound.
	GetByID(ctx context.Context, id uuid.UUID) (*models.Record, error)

	// ListByIdentity returns the identity's records, most recent first.
	ListByIdentity(ctx context.Context, identity string) ([]*models.Record, error)

	// ListAll returns every record matching the filter, most recent first.
	ListAll(ctx context.Context, filter *models.Filter) ([]*models.Record, error)

	// Revoke atomically applies the Active -> Revoked transition. The bool
	// reports whether THIS call performed the transition: under concurrent
	// revokes exactly one caller observes true, the rest get the
	// already-revoked record and false. Returns ErrNotFound when the id does
	// not exist.
	Revoke(ctx context.Context, id uuid.UUID, revokedAt time.Time) (*models.Record, bool, error)
}
