package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dukwonit/farm-admin-server/internal/config"
)

func TestFromEnvironmentDefaults(t *testing.T) {
	t.Setenv("TENANT_ID", "tenant-123")
	t.Setenv("PORT", "3000")
	t.Setenv("ENV", "DEV")
	t.Setenv("ENTRA_ISSUER", "")
	t.Setenv("PGDATABASE", "postgres")
	t.Setenv("PGPORT", "5432")

	cfg, err := config.FromEnvironment()
	require.NoError(t, err)

	require.Equal(t, 3000, cfg.Port)
	require.Equal(t, ":3000", cfg.Addr())
	require.Equal(t, "DEV", cfg.Env)
	require.Equal(t, "postgres", cfg.PGDatabase)
	require.Equal(t, 5432, cfg.PGPort)
	require.Equal(t, "https://login.microsoftonline.com/tenant-123/v2.0", cfg.Issuer)
}

func TestFromEnvironmentIssuerOverride(t *testing.T) {
	t.Setenv("TENANT_ID", "tenant-123")
	t.Setenv("ENTRA_ISSUER", "http://127.0.0.1:9999/oidc")

	cfg, err := config.FromEnvironment()
	require.NoError(t, err)
	require.Equal(t, "http://127.0.0.1:9999/oidc", cfg.Issuer)
}

func TestFromEnvironmentAdminAllowList(t *testing.T) {
	t.Setenv("ADMIN_UPNS", "Kim@Dukwon.co.kr, lee@dukwon.co.kr")

	cfg, err := config.FromEnvironment()
	require.NoError(t, err)
	require.True(t, cfg.Admins.Contains("kim@dukwon.co.kr"))
	require.True(t, cfg.Admins.Contains("LEE@dukwon.co.kr"))
	require.False(t, cfg.Admins.Contains("park@dukwon.co.kr"))
}

func TestCredentialSourceDetection(t *testing.T) {
	t.Run("defaults to azure cli", func(t *testing.T) {
		t.Setenv("WEBSITE_INSTANCE_ID", "")
		t.Setenv("MSI_ENDPOINT", "")
		t.Setenv("IDENTITY_ENDPOINT", "")

		cfg, err := config.FromEnvironment()
		require.NoError(t, err)
		require.Equal(t, config.CredentialAzureCli, cfg.DBCredential)
		require.Equal(t, "azure-cli", cfg.DBCredential.String())
	})

	t.Run("app service marker selects managed identity", func(t *testing.T) {
		t.Setenv("WEBSITE_INSTANCE_ID", "instance-1")

		cfg, err := config.FromEnvironment()
		require.NoError(t, err)
		require.Equal(t, config.CredentialManagedIdentity, cfg.DBCredential)
		require.Equal(t, "managed-identity", cfg.DBCredential.String())
	})
}

func TestEntraHTTPTimeout(t *testing.T) {
	t.Setenv("ENTRA_HTTP_TIMEOUT_MS", "")

	cfg, err := config.FromEnvironment()
	require.NoError(t, err)
	require.Equal(t, 15*time.Second, cfg.EntraHTTPTimeout())

	cfg.EntraHTTPTimeoutMS = 2500
	require.Equal(t, 2500*time.Millisecond, cfg.EntraHTTPTimeout())

	// A hand-built config is still bounded.
	require.Equal(t, 15*time.Second, config.Config{}.EntraHTTPTimeout())
}

func TestEndSessionURL(t *testing.T) {
	cfg := config.Config{TenantID: "tenant-123"}
	require.Equal(t,
		"https://login.microsoftonline.com/tenant-123/oauth2/v2.0/logout",
		cfg.EndSessionURL())
}
