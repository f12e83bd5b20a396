//go:build integration

package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"consentd/internal/consent/models"
	"consentd/pkg/testutil/containers"
)

func newPostgresStore(t *testing.T) (*PostgresStore, func()) {
	t.Helper()
	pc := containers.GetManager().GetPostgres(t)
	cleanup := func() {
		require.NoError(t, pc.TruncateTables(context.Background(), "consents"))
	}
	cleanup()
	return NewPostgres(pc.DB), cleanup
}

func TestPostgresStoreRoundtrip(t *testing.T) {
	store, cleanup := newPostgresStore(t)
	defer cleanup()
	ctx := context.Background()

	record := &models.Record{
		Identity:       "tester",
		TermsVersion:   "v1.2",
		PrivacyVersion: "v1.0",
		AcceptedAt:     time.Now().UTC().Truncate(time.Microsecond),
		IPAddress:      "203.0.113.7",
		ClientAgent:    "curl/8.0",
		Source:         "signup",
		Metadata:       map[string]any{"booking_id": float64(123)},
	}
	require.NoError(t, store.Insert(ctx, record))
	require.NotEqual(t, uuid.Nil, record.ID)

	fetched, err := store.GetByID(ctx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, "tester", fetched.Identity)
	assert.Equal(t, "v1.2", fetched.TermsVersion)
	assert.Equal(t, record.AcceptedAt, fetched.AcceptedAt.UTC())
	assert.Equal(t, record.Metadata, fetched.Metadata)
	assert.False(t, fetched.Revoked)
	assert.Nil(t, fetched.RevokedAt)

	_, err = store.GetByID(ctx, uuid.New())
	require.ErrorIs(t, err, ErrNotFound)
}

func TestPostgresStoreGuestRecord(t *testing.T) {
	store, cleanup := newPostgresStore(t)
	defer cleanup()
	ctx := context.Background()

	record := &models.Record{
		Email:          "guest@example.com",
		TermsVersion:   "v1.2",
		PrivacyVersion: "v1.0",
		AcceptedAt:     time.Now().UTC(),
	}
	require.NoError(t, store.Insert(ctx, record))

	fetched, err := store.GetByID(ctx, record.ID)
	require.NoError(t, err)
	assert.Empty(t, fetched.Identity)
	assert.Equal(t, "guest@example.com", fetched.Email)

	// An identity-less record must not leak into identity listings.
	records, err := store.ListByIdentity(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestPostgresStoreListOrderingAndFilters(t *testing.T) {
	store, cleanup := newPostgresStore(t)
	defer cleanup()
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	versions := []string{"v1.0", "v2.0", "v2.0"}
	var last *models.Record
	for i, v := range versions {
		record := &models.Record{
			Identity:       "tester",
			TermsVersion:   v,
			PrivacyVersion: "p1",
			AcceptedAt:     base.Add(time.Duration(i) * time.Hour),
		}
		require.NoError(t, store.Insert(ctx, record))
		last = record
	}
	_, transitioned, err := store.Revoke(ctx, last.ID, base.Add(24*time.Hour))
	require.NoError(t, err)
	require.True(t, transitioned)

	mine, err := store.ListByIdentity(ctx, "tester")
	require.NoError(t, err)
	require.Len(t, mine, 3)
	for i := 1; i < len(mine); i++ {
		assert.False(t, mine[i].AcceptedAt.After(mine[i-1].AcceptedAt))
	}

	terms := "v2.0"
	byVersion, err := store.ListAll(ctx, &models.Filter{TermsVersion: &terms})
	require.NoError(t, err)
	assert.Len(t, byVersion, 2)

	revoked := true
	byRevoked, err := store.ListAll(ctx, &models.Filter{Revoked: &revoked})
	require.NoError(t, err)
	require.Len(t, byRevoked, 1)
	assert.Equal(t, last.ID, byRevoked[0].ID)

	cutoff := base.Add(30 * time.Minute)
	byTime, err := store.ListAll(ctx, &models.Filter{AcceptedAfter: &cutoff})
	require.NoError(t, err)
	assert.Len(t, byTime, 2)

	all, err := store.ListAll(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestPostgresStoreRevokeCompareAndSet(t *testing.T) {
	store, cleanup := newPostgresStore(t)
	defer cleanup()
	ctx := context.Background()

	record := &models.Record{
		Identity:       "tester",
		TermsVersion:   "v1.0",
		PrivacyVersion: "v1.0",
		AcceptedAt:     time.Now().UTC(),
	}
	require.NoError(t, store.Insert(ctx, record))

	stamp := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	revoked, transitioned, err := store.Revoke(ctx, record.ID, stamp)
	require.NoError(t, err)
	assert.True(t, transitioned)
	require.NotNil(t, revoked.RevokedAt)
	assert.Equal(t, stamp, revoked.RevokedAt.UTC())

	// Second revoke keeps the first stamp.
	again, transitioned, err := store.Revoke(ctx, record.ID, stamp.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, transitioned)
	require.NotNil(t, again.RevokedAt)
	assert.Equal(t, stamp, again.RevokedAt.UTC())

	_, _, err = store.Revoke(ctx, uuid.New(), stamp)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestPostgresStoreConcurrentRevoke(t *testing.T) {
	store, cleanup := newPostgresStore(t)
	defer cleanup()
	ctx := context.Background()

	record := &models.Record{
		Identity:       "tester",
		TermsVersion:   "v1.0",
		PrivacyVersion: "v1.0",
		AcceptedAt:     time.Now().UTC(),
	}
	require.NoError(t, store.Insert(ctx, record))

	const workers = 8
	var (
		wg          sync.WaitGroup
		mu          sync.Mutex
		transitions int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, transitioned, err := store.Revoke(ctx, record.ID, time.Now().UTC().Add(time.Duration(i)*time.Millisecond))
			assert.NoError(t, err)
			if transitioned {
				mu.Lock()
				transitions++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, transitions, "exactly one revoke must observe the transition")
}
