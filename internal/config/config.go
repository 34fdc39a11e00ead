package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// CredentialSource selects how the database bearer credential is obtained.
// It is resolved exactly once at startup rather than re-checking environment
// markers per call: auto-detection across ambient credential sources has been
// observed to silently pick the wrong principal, which then fails as an
// auth_oid mismatch at the database.
type CredentialSource int

const (
	// CredentialAzureCli uses the developer's `az login` identity.
	CredentialAzureCli CredentialSource = iota
	// CredentialManagedIdentity uses the platform-assigned service identity.
	CredentialManagedIdentity
)

func (s CredentialSource) String() string {
	if s == CredentialManagedIdentity {
		return "managed-identity"
	}
	return "azure-cli"
}

// Config holds every recognized environment setting, resolved once at startup.
type Config struct {
	Port    int    `envconfig:"PORT" default:"3000"`
	Env     string `envconfig:"ENV" default:"DEV"`
	AppName string `envconfig:"APP_NAME" default:"Farm Admin"`

	AdminUPNs string `envconfig:"ADMIN_UPNS"`

	// Entra ID (OIDC relying party)
	TenantID              string `envconfig:"TENANT_ID"`
	ClientID              string `envconfig:"CLIENT_ID"`
	ClientSecret          string `envconfig:"CLIENT_SECRET"`
	RedirectURI           string `envconfig:"ENTRA_REDIRECT_URI"`
	PostLogoutRedirectURI string `envconfig:"POST_LOGOUT_REDIRECT_URI" default:"/"`
	// Issuer override, used by tests to point the flow at a local provider.
	// Defaults to the Entra v2.0 issuer for TENANT_ID.
	Issuer string `envconfig:"ENTRA_ISSUER"`
	// Hard cap on any single HTTP call to the identity provider (discovery,
	// code exchange, JWKS fetch).
	EntraHTTPTimeoutMS int `envconfig:"ENTRA_HTTP_TIMEOUT_MS" default:"15000"`

	CORSOrigins []string `envconfig:"CORS_ORIGINS" default:"http://localhost:3000"`

	// PostgreSQL (the Entra token is used as the password, see the db package)
	PGHost             string `envconfig:"PGHOST"`
	PGUser             string `envconfig:"PGUSER"`
	PGPort             int    `envconfig:"PGPORT" default:"5432"`
	PGDatabase         string `envconfig:"PGDATABASE" default:"postgres"`
	PGPoolMax          int    `envconfig:"PGPOOL_MAX" default:"5"`
	PGConnTimeoutMS    int    `envconfig:"PG_CONN_TIMEOUT_MS" default:"20000"`
	PGDebugToken       bool   `envconfig:"PG_DEBUG_TOKEN"`
	PGValidateOnCreate bool   `envconfig:"PG_VALIDATE_ON_CREATE"`

	// Azure management API (flexible server start/stop)
	AzureTenantID     string `envconfig:"AZURE_TENANT_ID"`
	AzureClientID     string `envconfig:"AZURE_CLIENT_ID"`
	AzureClientSecret string `envconfig:"AZURE_CLIENT_SECRET"`
	SubscriptionID    string `envconfig:"AZURE_SUBSCRIPTION_ID"`
	ResourceGroup     string `envconfig:"AZURE_RESOURCE_GROUP"`
	PGServerName      string `envconfig:"AZURE_PG_SERVER_NAME"`
	MgmtAPIVersion    string `envconfig:"AZURE_MGMT_API_VERSION" default:"2021-06-01"`
	AutoStartDatabase bool   `envconfig:"AUTO_START_DATABASE"`

	// Databricks SQL warehouse
	DatabricksToken         string `envconfig:"DATABRICKS_TOKEN"`
	DatabricksTokenEndpoint string `envconfig:"DATABRICKS_TOKEN_ENDPOINT" default:"https://accounts.azuredatabricks.net/oauth2/token"`
	DatabricksClientID      string `envconfig:"DATABRICKS_CLIENT_ID"`
	DatabricksClientSecret  string `envconfig:"DATABRICKS_CLIENT_SECRET"`
	DatabricksServerHost    string `envconfig:"DATABRICKS_SERVER_HOST"`
	DatabricksHTTPPath      string `envconfig:"DATABRICKS_HTTP_PATH"`
	DatabricksDashboardURL  string `envconfig:"DATABRICKS_DASHBOARD_URL"`

	// Data lake upload target
	StorageConnectionString string `envconfig:"AZURE_STORAGE_CONNECTION_STRING"`
	StorageContainer        string `envconfig:"AZURE_STORAGE_CONTAINER"`

	// Derived fields, populated by FromEnvironment.
	Admins       AdminAllowList   `ignored:"true"`
	DBCredential CredentialSource `ignored:"true"`
}

// FromEnvironment returns configuration derived from environment variables.
// Derived fields (admin allow-list, credential source) are resolved here and
// never re-evaluated.
func FromEnvironment() (Config, error) {
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return c, fmt.Errorf("config.FromEnvironment: %w", err)
	}

	c.Admins = ParseAdminAllowList(c.AdminUPNs)
	c.DBCredential = detectCredentialSource()

	if c.Issuer == "" && c.TenantID != "" {
		c.Issuer = fmt.Sprintf("https://login.microsoftonline.com/%s/v2.0", c.TenantID)
	}

	return c, nil
}

// detectCredentialSource prefers the platform-assigned identity when any of
// the App Service identity markers is present, the Azure CLI otherwise.
func detectCredentialSource() CredentialSource {
	if os.Getenv("WEBSITE_INSTANCE_ID") != "" ||
		os.Getenv("MSI_ENDPOINT") != "" ||
		os.Getenv("IDENTITY_ENDPOINT") != "" {
		return CredentialManagedIdentity
	}
	return CredentialAzureCli
}

// EntraHTTPTimeout bounds outbound calls to the identity provider. Always
// positive: a config built without the envconfig default still gets a cap.
func (c Config) EntraHTTPTimeout() time.Duration {
	if c.EntraHTTPTimeoutMS <= 0 {
		return 15 * time.Second
	}
	return time.Duration(c.EntraHTTPTimeoutMS) * time.Millisecond
}

// EndSessionURL is the Entra logout endpoint. The post-logout redirect target
// is appended by the caller.
func (c Config) EndSessionURL() string {
	return fmt.Sprintf("https://login.microsoftonline.com/%s/oauth2/v2.0/logout", c.TenantID)
}

// Addr returns the listen address for the HTTP server.
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
