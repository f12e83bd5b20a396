package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"consentd/internal/audit"
	"consentd/internal/consent/metrics"
	"consentd/internal/consent/models"
	dErrors "consentd/pkg/domain-errors"
)

// Store defines the persistence interface for consent records.
// Error Contract:
// - GetByID and Revoke return a CodeNotFound error when the id does not exist
// - Infrastructure failures carry CodeUnavailable
type Store interface {
	Insert(ctx context.Context, record *models.Record) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Record, error)
	ListByIdentity(ctx context.Context, identity string) ([]*models.Record, error)
	ListAll(ctx context.Context, filter *models.Filter) ([]*models.Record, error)
	Revoke(ctx context.Context, id uuid.UUID, revokedAt time.Time) (*models.Record, bool, error)
}

type Option func(*Service)

// Service orchestrates the consent record lifecycle. It is the only component
// aware of caller context: creation stamps identity and network origin here,
// and every read or mutation of an existing record goes through CanAccess.
type Service struct {
	store   Store
	auditor *audit.Publisher
	metrics *metrics.Metrics
	logger  *slog.Logger
	now     func() time.Time
}

func NewService(store Store, auditor *audit.Publisher, logger *slog.Logger, opts ...Option) *Service {
	svc := &Service{
		store:   store,
		auditor: auditor,
		logger:  logger,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// WithMetrics sets the metrics instance for the service.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// Create validates the candidate and persists it with server-stamped context.
// Anything the caller may have claimed about identity, origin or timing is
// ignored: the Candidate type cannot carry those fields, and the stamps below
// come exclusively from the caller session and request metadata observed by
// this process.
func (s *Service) Create(ctx context.Context, caller models.Caller, candidate models.Candidate, meta models.RequestMeta) (*models.Record, error) {
	start := s.now()
	if err := ValidateCandidate(caller, candidate); err != nil {
		s.incrementValidationFailures(dErrors.FieldOf(err))
		return nil, err
	}

	record := &models.Record{
		Identity:       caller.Subject,
		Email:          strings.TrimSpace(candidate.Email),
		TermsVersion:   strings.TrimSpace(candidate.TermsVersion),
		PrivacyVersion: strings.TrimSpace(candidate.PrivacyVersion),
		Source:         strings.TrimSpace(candidate.Source),
		Metadata:       candidate.Metadata,
		AcceptedAt:     start.UTC(),
		IPAddress:      meta.IPAddress,
		ClientAgent:    meta.ClientAgent,
	}

	if err := s.store.Insert(ctx, record); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record consent")
	}

	s.emitAudit(ctx, audit.Event{
		Subject:   record.SubjectLabel(),
		ConsentID: record.ID.String(),
		Action:    audit.ActionConsentRecorded,
		Source:    record.Source,
		Timestamp: record.AcceptedAt,
	})
	s.incrementConsentsRecorded(record.Source)
	s.observeCreateLatency(s.now().Sub(start).Seconds())
	s.log(ctx, slog.LevelInfo, "consent recorded",
		"consent_id", record.ID,
		"subject", record.SubjectLabel(),
		"terms_version", record.TermsVersion,
		"privacy_version", record.PrivacyVersion,
		"source", record.Source,
	)
	return record, nil
}

// ListMine returns the caller's own records, most recent first.
func (s *Service) ListMine(ctx context.Context, caller models.Caller) ([]*models.Record, error) {
	if !caller.Authenticated() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	records, err := s.store.ListByIdentity(ctx, caller.Subject)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list consents")
	}
	return records, nil
}

// ListAll returns every record matching the filter. Administrator only.
func (s *Service) ListAll(ctx context.Context, caller models.Caller, filter *models.Filter) ([]*models.Record, error) {
	if !caller.Admin {
		s.incrementAccessDenied("list_all")
		return nil, dErrors.New(dErrors.CodeForbidden, "administrator privilege required")
	}
	records, err := s.store.ListAll(ctx, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list consents")
	}
	return records, nil
}

// Get fetches a single record for its owner or an administrator. Absence is
// reported before authorization, so a caller probing a missing id learns only
// that it does not exist.
func (s *Service) Get(ctx context.Context, caller models.Caller, id uuid.UUID) (*models.Record, error) {
	record, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read consent")
	}
	if !CanAccess(caller, record) {
		s.denyAccess(ctx, caller, record, "get")
		return nil, dErrors.New(dErrors.CodeForbidden, "not allowed to access this consent")
	}
	return record, nil
}

// Revoke withdraws a consent on behalf of its owner or an administrator.
// Revoking an already-revoked record succeeds without changing anything; the
// store's compare-and-set guarantees a single revokedAt stamp even under
// concurrent calls, where the loser of the race degrades to the same
// idempotent outcome.
func (s *Service) Revoke(ctx context.Context, caller models.Caller, id uuid.UUID) (*models.Record, error) {
	record, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read consent")
	}
	if !CanAccess(caller, record) {
		s.denyAccess(ctx, caller, record, "revoke")
		return nil, dErrors.New(dErrors.CodeForbidden, "not allowed to revoke this consent")
	}
	if record.Revoked {
		return record, nil
	}

	record, transitioned, err := s.store.Revoke(ctx, id, s.now().UTC())
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to revoke consent")
	}
	if !transitioned {
		// Lost a race with a concurrent revoke; the record is already in the
		// state we wanted.
		return record, nil
	}

	s.emitAudit(ctx, audit.Event{
		Subject:   record.SubjectLabel(),
		ConsentID: record.ID.String(),
		Action:    audit.ActionConsentRevoked,
		Source:    record.Source,
		Timestamp: *record.RevokedAt,
	})
	s.incrementConsentsRevoked()
	s.log(ctx, slog.LevelInfo, "consent revoked",
		"consent_id", record.ID,
		"subject", record.SubjectLabel(),
		"revoked_by", caller.Subject,
	)
	return record, nil
}

func (s *Service) denyAccess(ctx context.Context, caller models.Caller, record *models.Record, operation string) {
	s.emitAudit(ctx, audit.Event{
		Subject:   record.SubjectLabel(),
		ConsentID: record.ID.String(),
		Action:    audit.ActionAccessDenied,
		Reason:    operation,
	})
	s.incrementAccessDenied(operation)
	s.log(ctx, slog.LevelWarn, "consent access denied",
		"consent_id", record.ID,
		"operation", operation,
		"caller", caller.Subject,
	)
}

func (s *Service) emitAudit(ctx context.Context, event audit.Event) {
	if s.auditor == nil {
		return
	}
	_ = s.auditor.Emit(ctx, event)
}

func (s *Service) incrementConsentsRecorded(source string) {
	if s.metrics != nil {
		s.metrics.IncrementConsentsRecorded(source)
	}
}

func (s *Service) incrementConsentsRevoked() {
	if s.metrics != nil {
		s.metrics.IncrementConsentsRevoked()
	}
}

func (s *Service) incrementAccessDenied(operation string) {
	if s.metrics != nil {
		s.metrics.IncrementAccessDenied(operation)
	}
}

func (s *Service) incrementValidationFailures(field string) {
	if s.metrics != nil {
		s.metrics.IncrementValidationFailures(field)
	}
}

func (s *Service) observeCreateLatency(seconds float64) {
	if s.metrics != nil {
		s.metrics.ObserveCreateLatency(seconds)
	}
}

func (s *Service) log(ctx context.Context, level slog.Level, msg string, args ...any) {
	if s.logger == nil {
		return
	}
	s.logger.Log(ctx, level, msg, args...)
}
