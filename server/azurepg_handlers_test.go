package server_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dukwonit/farm-admin-server/azuremgmt"
	"github.com/dukwonit/farm-admin-server/internal/config"
	"github.com/dukwonit/farm-admin-server/server"
	"github.com/dukwonit/farm-admin-server/server/authstate"
	"github.com/dukwonit/farm-admin-server/server/sessionstore"
)

func setupServerWithMgmt(t *testing.T, mgmt *azuremgmt.Client) *testFixture {
	t.Helper()

	cfg := config.Config{
		Env:          "TEST",
		TenantID:     "test-tenant",
		ClientID:     "test-client",
		ClientSecret: "test-secret",
		RedirectURI:  "http://localhost:3000/auth/redirect",
		Admins:       config.ParseAdminAllowList("admin@dukwon.co.kr"),
	}

	sessions := sessionstore.NewInMemoryRepo(time.Hour)
	srv, err := server.New(cfg, server.Deps{
		Sessions:  sessions,
		AuthState: authstate.NewInMemoryRepo(),
		Mgmt:      mgmt,
	})
	require.NoError(t, err)

	return &testFixture{srv: srv, sessions: sessions, cfg: cfg}
}

func TestPostgresActionMissingTarget(t *testing.T) {
	f := setupServerWithMgmt(t, azuremgmt.NewClient(azuremgmt.Options{
		Defaults: azuremgmt.Target{SubscriptionID: "sub-1"},
	}))
	cookie := f.signIn(t, "admin@dukwon.co.kr")

	rr := f.doJSON(t, http.MethodPost, "/api/azure-postgres/start", `{}`, cookie)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Contains(t, decodeJSON(t, rr)["error"], "Missing target")
}

func TestPostgresActionBodyOverrideCompletesTarget(t *testing.T) {
	// Only the subscription is configured; the body supplies the rest. The
	// call then fails at credential lookup, past target validation.
	f := setupServerWithMgmt(t, azuremgmt.NewClient(azuremgmt.Options{
		Defaults: azuremgmt.Target{SubscriptionID: "sub-1"},
	}))
	cookie := f.signIn(t, "admin@dukwon.co.kr")

	rr := f.doJSON(t, http.MethodPost, "/api/azure-postgres/stop",
		`{"resourceGroup": "rg-manual", "serverName": "pg-manual"}`, cookie)
	require.Equal(t, http.StatusInternalServerError, rr.Code)
	require.Contains(t, decodeJSON(t, rr)["error"], "missing Azure AD credentials")
}

func TestPostgresActionWithoutCredentials(t *testing.T) {
	f := setupServerWithMgmt(t, azuremgmt.NewClient(azuremgmt.Options{
		Defaults: azuremgmt.Target{
			SubscriptionID: "sub-1",
			ResourceGroup:  "rg-1",
			ServerName:     "pg-1",
		},
	}))
	cookie := f.signIn(t, "admin@dukwon.co.kr")

	rr := f.doJSON(t, http.MethodPost, "/api/azure-postgres/start", `{}`, cookie)
	require.Equal(t, http.StatusInternalServerError, rr.Code)
	require.Contains(t, decodeJSON(t, rr)["error"], "missing Azure AD credentials")
}
