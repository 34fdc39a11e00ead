package sessionstore_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dukwonit/farm-admin-server/server/sessionstore"
)

func TestSetAndGet(t *testing.T) {
	repo := sessionstore.NewInMemoryRepo(time.Hour)

	record := sessionstore.Record{
		Name:              "Kim Dukwon",
		PreferredUsername: "kim@dukwon.co.kr",
		ObjectID:          "oid-1",
		TenantID:          "tid-1",
	}
	require.NoError(t, repo.Set("sid-1", record))

	got, err := repo.Get("sid-1")
	require.NoError(t, err)
	require.Equal(t, record.Name, got.Name)
	require.Equal(t, record.PreferredUsername, got.PreferredUsername)
	require.Equal(t, record.ObjectID, got.ObjectID)
	require.Equal(t, record.TenantID, got.TenantID)
	require.False(t, got.CreatedAt.IsZero())
}

func TestGetUnknownSession(t *testing.T) {
	repo := sessionstore.NewInMemoryRepo(time.Hour)

	_, err := repo.Get("missing")
	require.ErrorIs(t, err, sessionstore.ErrNotFound)

	_, err = repo.Get("")
	require.ErrorIs(t, err, sessionstore.ErrNotFound)
}

func TestDelete(t *testing.T) {
	repo := sessionstore.NewInMemoryRepo(time.Hour)

	require.NoError(t, repo.Set("sid-1", sessionstore.Record{PreferredUsername: "kim@dukwon.co.kr"}))
	require.NoError(t, repo.Delete("sid-1"))

	_, err := repo.Get("sid-1")
	require.ErrorIs(t, err, sessionstore.ErrNotFound)

	// Deleting an unknown or empty id is a no-op.
	require.NoError(t, repo.Delete("sid-1"))
	require.NoError(t, repo.Delete(""))
}

func TestTTLExpiry(t *testing.T) {
	repo := sessionstore.NewInMemoryRepo(time.Hour)

	require.NoError(t, repo.Set("stale", sessionstore.Record{
		PreferredUsername: "kim@dukwon.co.kr",
		CreatedAt:         time.Now().Add(-2 * time.Hour),
	}))

	_, err := repo.Get("stale")
	require.ErrorIs(t, err, sessionstore.ErrNotFound)
}

func TestZeroTTLDisablesExpiry(t *testing.T) {
	repo := sessionstore.NewInMemoryRepo(0)

	require.NoError(t, repo.Set("old", sessionstore.Record{
		PreferredUsername: "kim@dukwon.co.kr",
		CreatedAt:         time.Now().Add(-24 * time.Hour),
	}))

	_, err := repo.Get("old")
	require.NoError(t, err)
}
