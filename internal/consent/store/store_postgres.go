package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"consentd/internal/consent/models"
	dErrors "consentd/pkg/domain-errors"
)

// PostgresStore persists consent records in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed consent store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const recordColumns = `id, identity, email, terms_version, privacy_version, accepted_at, ip_address, client_agent, source, metadata, revoked, revoked_at`

func (s *PostgresStore) Insert(ctx context.Context, record *models.Record) error {
	if record == nil {
		return fmt.Errorf("consent record is required")
	}
	metadata, err := marshalMetadata(record.Metadata)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "encode consent metadata")
	}

	record.ID = uuid.New()
	query := `
		INSERT INTO consents (` + recordColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err = s.db.ExecContext(ctx, query,
		record.ID,
		nullString(record.Identity),
		nullString(record.Email),
		record.TermsVersion,
		record.PrivacyVersion,
		record.AcceptedAt,
		nullString(record.IPAddress),
		record.ClientAgent,
		record.Source,
		metadata,
		record.Revoked,
		record.RevokedAt,
	)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "insert consent")
	}
	return nil
}

func (s *PostgresStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Record, error) {
	query := `SELECT ` + recordColumns + ` FROM consents WHERE id = $1`
	record, err := scanRecord(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "find consent")
	}
	return record, nil
}

func (s *PostgresStore) ListByIdentity(ctx context.Context, identity string) ([]*models.Record, error) {
	query := `
		SELECT ` + recordColumns + `
		FROM consents
		WHERE identity = $1
		ORDER BY accepted_at DESC, id DESC
	`
	return s.queryRecords(ctx, query, identity)
}

func (s *PostgresStore) ListAll(ctx context.Context, filter *models.Filter) ([]*models.Record, error) {
	query := `SELECT ` + recordColumns + ` FROM consents`
	var (
		conds []string
		args  []any
	)
	appendCond := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if filter != nil {
		if filter.TermsVersion != nil {
			appendCond("terms_version = $%d", *filter.TermsVersion)
		}
		if filter.PrivacyVersion != nil {
			appendCond("privacy_version = $%d", *filter.PrivacyVersion)
		}
		if filter.Revoked != nil {
			appendCond("revoked = $%d", *filter.Revoked)
		}
		if filter.AcceptedAfter != nil {
			appendCond("accepted_at >= $%d", *filter.AcceptedAfter)
		}
		if filter.AcceptedBefore != nil {
			appendCond("accepted_at <= $%d", *filter.AcceptedBefore)
		}
	}
	for i, cond := range conds {
		if i == 0 {
			query += " WHERE " + cond
		} else {
			query += " AND " + cond
		}
	}
	query += " ORDER BY accepted_at DESC, id DESC"

	return s.queryRecords(ctx, query, args...)
}

// Revoke relies on the conditional UPDATE as the compare-and-set: only one of
// two concurrent revokes matches revoked = FALSE and stamps revoked_at.
func (s *PostgresStore) Revoke(ctx context.Context, id uuid.UUID, revokedAt time.Time) (*models.Record, bool, error) {
	query := `
		UPDATE consents
		SET revoked = TRUE, revoked_at = $2
		WHERE id = $1 AND revoked = FALSE
		RETURNING ` + recordColumns + `
	`
	record, err := scanRecord(s.db.QueryRowContext(ctx, query, id, revokedAt))
	if err == nil {
		return record, true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, dErrors.Wrap(err, dErrors.CodeUnavailable, "revoke consent")
	}

	// No row transitioned: either the id is unknown or the record was already
	// revoked. GetByID distinguishes the two.
	record, err = s.GetByID(ctx, id)
	if err != nil {
		return nil, false, err
	}
	return record, false, nil
}

func (s *PostgresStore) queryRecords(ctx context.Context, query string, args ...any) ([]*models.Record, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "list consents")
	}
	defer rows.Close()

	var records []*models.Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "scan consent")
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "iterate consents")
	}
	return records, nil
}

type recordRow interface {
	Scan(dest ...any) error
}

func scanRecord(row recordRow) (*models.Record, error) {
	var (
		record    models.Record
		identity  sql.NullString
		email     sql.NullString
		ipAddress sql.NullString
		metadata  []byte
		revokedAt sql.NullTime
	)
	if err := row.Scan(
		&record.ID,
		&identity,
		&email,
		&record.TermsVersion,
		&record.PrivacyVersion,
		&record.AcceptedAt,
		&ipAddress,
		&record.ClientAgent,
		&record.Source,
		&metadata,
		&record.Revoked,
		&revokedAt,
	); err != nil {
		return nil, err
	}
	record.Identity = identity.String
	record.Email = email.String
	record.IPAddress = ipAddress.String
	if revokedAt.Valid {
		record.RevokedAt = &revokedAt.Time
	}
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &record.Metadata); err != nil {
			return nil, fmt.Errorf("decode consent metadata: %w", err)
		}
	}
	return &record, nil
}

func marshalMetadata(metadata map[string]any) ([]byte, error) {
	if metadata == nil {
		return nil, nil
	}
	return json.Marshal(metadata)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
