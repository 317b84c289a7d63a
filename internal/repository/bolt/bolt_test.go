package bolt

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	bolt "go.etcd.io/bbolt"

	"commondays/internal/domain"
)

func openTestDB(t *testing.T) *bolt.DB {
	t.Helper()
	db, err := bolt.Open(filepath.Join(t.TempDir(), "test.db"), 0o600, &bolt.Options{Timeout: time.Second})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestGuestRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	repo, err := NewGuestRepository(openTestDB(t))
	require.NoError(t, err)

	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	guest := domain.NewGuest("gAAAAAA1", "eAAAAAA1", "Ada", now, now)
	require.NoError(t, repo.Create(ctx, guest))

	got, err := repo.GetByID(ctx, "gAAAAAA1")
	require.NoError(t, err)
	assert.Equal(t, "Ada", got.Name)
	assert.Equal(t, "eAAAAAA1", got.EventID)
	assert.Nil(t, got.Availability)

	// The empty response survives the JSON round trip distinct from unset.
	got.Availability = &[]string{}
	require.NoError(t, repo.Update(ctx, got))
	reloaded, err := repo.GetByID(ctx, "gAAAAAA1")
	require.NoError(t, err)
	require.NotNil(t, reloaded.Availability)
	assert.Empty(t, *reloaded.Availability)

	got.Availability = &[]string{"2025-06-01", "2025-06-02"}
	require.NoError(t, repo.Update(ctx, got))
	reloaded, err = repo.GetByID(ctx, "gAAAAAA1")
	require.NoError(t, err)
	require.NotNil(t, reloaded.Availability)
	assert.Equal(t, []string{"2025-06-01", "2025-06-02"}, *reloaded.Availability)
}

func TestGuestRepository_Missing(t *testing.T) {
	ctx := context.Background()
	repo, err := NewGuestRepository(openTestDB(t))
	require.NoError(t, err)

	_, err = repo.GetByID(ctx, "gAAAAAA9")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, repo.Update(ctx, &domain.Guest{ID: "gAAAAAA9"}), domain.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, "gAAAAAA9"), domain.ErrNotFound)
}

func TestGuestRepository_Delete(t *testing.T) {
	ctx := context.Background()
	repo, err := NewGuestRepository(openTestDB(t))
	require.NoError(t, err)

	now := time.Now()
	require.NoError(t, repo.Create(ctx, domain.NewGuest("gAAAAAA1", "eAAAAAA1", "", now, now)))
	require.NoError(t, repo.Delete(ctx, "gAAAAAA1"))

	_, err = repo.GetByID(ctx, "gAAAAAA1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEventRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	repo, err := NewEventRepository(openTestDB(t))
	require.NoError(t, err)

	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	event := domain.NewEvent("eAAAAAA1", "Summer BBQ", "bring snacks", "gAAAAAA1", now, now)
	require.NoError(t, repo.Create(ctx, event))

	got, err := repo.GetByID(ctx, "eAAAAAA1")
	require.NoError(t, err)
	assert.Equal(t, "Summer BBQ", got.Name)
	assert.Equal(t, []string{"gAAAAAA1"}, got.GuestIDs)

	got.GuestIDs = append(got.GuestIDs, "gAAAAAA2")
	require.NoError(t, repo.Update(ctx, got))
	reloaded, err := repo.GetByID(ctx, "eAAAAAA1")
	require.NoError(t, err)
	assert.Equal(t, []string{"gAAAAAA1", "gAAAAAA2"}, reloaded.GuestIDs)
}

func TestEventRepository_Missing(t *testing.T) {
	ctx := context.Background()
	repo, err := NewEventRepository(openTestDB(t))
	require.NoError(t, err)

	_, err = repo.GetByID(ctx, "eAAAAAA9")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, repo.Update(ctx, &domain.Event{ID: "eAAAAAA9"}), domain.ErrNotFound)
}
