package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"

	"github.com/dukwonit/farm-admin-server/azuremgmt"
	"github.com/dukwonit/farm-admin-server/internal/config"
	"github.com/dukwonit/farm-admin-server/server/authstate"
	"github.com/dukwonit/farm-admin-server/server/sessionstore"
	"github.com/dukwonit/farm-admin-server/storage"
	"github.com/dukwonit/farm-admin-server/warehouse"
)

// QueryExecutor is what the CRUD handlers need from the database pool.
type QueryExecutor interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) (pgx.Row, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// OidcConfig bundles the provider handles for the Entra tenant.
type OidcConfig struct {
	OidcProvider *oidc.Provider
	OAuth2Config *oauth2.Config
	OidcVerifier *oidc.IDTokenVerifier
}

type Server struct {
	env    string
	mux    *http.ServeMux
	routes []string
	config config.Config

	sessions  sessionstore.Repo
	authState authstate.Repo
	pool      QueryExecutor
	mgmt      *azuremgmt.Client
	warehouse *warehouse.Client
	uploader  *storage.Uploader

	oidcOnce sync.Mutex
	oidc     *OidcConfig

	autoStart sync.Once
}

// Deps are the constructed collaborators the server routes against. Explicit
// construction and injection, no package-level state: lifecycle is owned by
// cmd/server.
type Deps struct {
	Sessions  sessionstore.Repo
	AuthState authstate.Repo
	Pool      QueryExecutor
	Mgmt      *azuremgmt.Client
	Warehouse *warehouse.Client
	Uploader  *storage.Uploader
}

func New(cfg config.Config, deps Deps) (*Server, error) {
	if deps.Sessions == nil || deps.AuthState == nil {
		return nil, fmt.Errorf("[Server New] session and auth state repos are required")
	}

	s := &Server{
		env:       cfg.Env,
		mux:       http.NewServeMux(),
		config:    cfg,
		sessions:  deps.Sessions,
		authState: deps.AuthState,
		pool:      deps.Pool,
		mgmt:      deps.Mgmt,
		warehouse: deps.Warehouse,
		uploader:  deps.Uploader,
	}

	if cfg.TenantID == "" || cfg.ClientID == "" || cfg.ClientSecret == "" || cfg.RedirectURI == "" {
		log.Warn().Msg("missing Entra env vars; required: TENANT_ID, CLIENT_ID, CLIENT_SECRET, ENTRA_REDIRECT_URI")
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

// providerContext attaches an HTTP client with a hard timeout for calls to
// the identity provider, so a hung provider fails the request instead of
// pinning it. go-oidc clones this client into the remote keyset, which bounds
// later JWKS fetches as well.
func (s *Server) providerContext(ctx context.Context) context.Context {
	return oidc.ClientContext(ctx, &http.Client{Timeout: s.config.EntraHTTPTimeout()})
}

// oidcConfig lazily discovers the Entra endpoints. Discovery is a network
// call, so it happens on first login rather than at startup, and the result
// is cached for the process lifetime.
func (s *Server) oidcConfig(ctx context.Context) (*OidcConfig, error) {
	s.oidcOnce.Lock()
	defer s.oidcOnce.Unlock()
	if s.oidc != nil {
		return s.oidc, nil
	}

	if s.config.Issuer == "" {
		return nil, fmt.Errorf("oidc issuer not configured (TENANT_ID)")
	}

	provider, err := oidc.NewProvider(s.providerContext(ctx), s.config.Issuer)
	if err != nil {
		return nil, fmt.Errorf("create OIDC provider: %w", err)
	}

	s.oidc = &OidcConfig{
		OidcProvider: provider,
		OAuth2Config: &oauth2.Config{
			ClientID:     s.config.ClientID,
			ClientSecret: s.config.ClientSecret,
			Endpoint:     provider.Endpoint(),
			RedirectURL:  s.config.RedirectURI,
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
		},
		OidcVerifier: provider.Verifier(&oidc.Config{ClientID: s.config.ClientID}),
	}
	return s.oidc, nil
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)
		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

// triggerAutoStart fires one background start of the flexible server on the
// first request after boot. Dev convenience: the server is usually stopped
// overnight to save cost. Failures are logged and never touch the request.
func (s *Server) triggerAutoStart(requestPath string) {
	if !s.config.AutoStartDatabase || s.mgmt == nil {
		return
	}
	s.autoStart.Do(func() {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
			defer cancel()
			log.Info().Str("path", requestPath).Msg("[AutoDB] background start triggered by first request")
			if _, err := s.mgmt.Start(ctx, s.mgmt.ResolveTarget(azuremgmt.Target{})); err != nil {
				log.Error().Err(err).Msg("[AutoDB] background start failed")
				return
			}
			log.Info().Msg("[AutoDB] background start completed")
		}()
	})
}

// Helper to determine the scheme (http/https) behind the App Service proxy.
func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}
