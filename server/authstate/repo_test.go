package authstate_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dukwonit/farm-admin-server/server/authstate"
)

func TestConsumeReturnsStoredState(t *testing.T) {
	repo := authstate.NewInMemoryRepo()

	err := repo.Upsert("state-1", &authstate.State{
		State:        "state-1",
		CodeVerifier: "verifier-1",
	})
	require.NoError(t, err)

	record, err := repo.Consume("state-1")
	require.NoError(t, err)
	require.Equal(t, "state-1", record.State)
	require.Equal(t, "verifier-1", record.CodeVerifier)
	require.False(t, record.CreatedAt.IsZero())
}

func TestConsumeIsSingleUse(t *testing.T) {
	repo := authstate.NewInMemoryRepo()

	require.NoError(t, repo.Upsert("state-1", &authstate.State{State: "state-1", CodeVerifier: "v"}))

	_, err := repo.Consume("state-1")
	require.NoError(t, err)

	_, err = repo.Consume("state-1")
	require.ErrorIs(t, err, authstate.ErrNotFound)
}

func TestConsumeUnknownState(t *testing.T) {
	repo := authstate.NewInMemoryRepo()

	_, err := repo.Consume("never-stored")
	require.ErrorIs(t, err, authstate.ErrNotFound)

	_, err = repo.Consume("")
	require.ErrorIs(t, err, authstate.ErrNotFound)
}

func TestConsumeExpiredState(t *testing.T) {
	repo := authstate.NewInMemoryRepo()

	require.NoError(t, repo.Upsert("stale", &authstate.State{
		State:        "stale",
		CodeVerifier: "v",
		CreatedAt:    time.Now().Add(-11 * time.Minute),
	}))

	_, err := repo.Consume("stale")
	require.ErrorIs(t, err, authstate.ErrNotFound)

	// Expired entries are removed, not retried.
	_, err = repo.Consume("stale")
	require.ErrorIs(t, err, authstate.ErrNotFound)
}

func TestUpsertValidation(t *testing.T) {
	repo := authstate.NewInMemoryRepo()

	require.Error(t, repo.Upsert("", &authstate.State{State: "x"}))
	require.Error(t, repo.Upsert("x", nil))
}

func TestUpsertReplacesExisting(t *testing.T) {
	repo := authstate.NewInMemoryRepo()

	require.NoError(t, repo.Upsert("state-1", &authstate.State{State: "state-1", CodeVerifier: "old"}))
	require.NoError(t, repo.Upsert("state-1", &authstate.State{State: "state-1", CodeVerifier: "new"}))

	record, err := repo.Consume("state-1")
	require.NoError(t, err)
	require.Equal(t, "new", record.CodeVerifier)
}
