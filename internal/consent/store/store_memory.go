package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"consentd/internal/consent/models"
)

// InMemoryStore keeps consent records in memory. It backs tests and local
// development when no database is configured.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[uuid.UUID]*models.Record
}

// New constructs an empty in-memory consent store.
func New() *InMemoryStore {
	return &InMemoryStore{records: make(map[uuid.UUID]*models.Record)}
}

func (s *InMemoryStore) Insert(_ context.Context, record *models.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record.ID = uuid.New()
	s.records[record.ID] = copyRecord(record)
	return nil
}

func (s *InMemoryStore) GetByID(_ context.Context, id uuid.UUID) (*models.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyRecord(record), nil
}

func (s *InMemoryStore) ListByIdentity(_ context.Context, identity string) ([]*models.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*models.Record
	for _, record := range s.records {
		if record.Identity == identity && identity != "" {
			matched = append(matched, copyRecord(record))
		}
	}
	sortRecent(matched)
	return matched, nil
}

func (s *InMemoryStore) ListAll(_ context.Context, filter *models.Filter) ([]*models.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*models.Record
	for _, record := range s.records {
		if filter.Matches(record) {
			matched = append(matched, copyRecord(record))
		}
	}
	sortRecent(matched)
	return matched, nil
}

// Revoke performs the Active -> Revoked compare-and-set under the store lock,
// so of two concurrent revokes only one observes the transition.
func (s *InMemoryStore) Revoke(_ context.Context, id uuid.UUID, revokedAt time.Time) (*models.Record, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[id]
	if !ok {
		return nil, false, ErrNotFound
	}
	if record.Revoked {
		return copyRecord(record), false, nil
	}
	record.Revoked = true
	record.RevokedAt = &revokedAt
	return copyRecord(record), true, nil
}

// copyRecord returns a deep enough copy to keep callers from mutating stored
// state through returned pointers.
func copyRecord(record *models.Record) *models.Record {
	clone := *record
	if record.RevokedAt != nil {
		at := *record.RevokedAt
		clone.RevokedAt = &at
	}
	if record.Metadata != nil {
		meta := make(map[string]any, len(record.Metadata))
		for k, v := range record.Metadata {
			meta[k] = v
		}
		clone.Metadata = meta
	}
	return &clone
}

func sortRecent(records []*models.Record) {
	sort.Slice(records, func(i, j int) bool {
		return models.MoreRecent(records[i], records[j])
	})
}
