// Package azuremgmt proxies the handful of Azure management-plane calls the
// admin UI exposes: starting and stopping the PostgreSQL flexible server.
package azuremgmt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2/clientcredentials"
)

const managementScope = "https://management.azure.com/.default"

// Target identifies the flexible server a management call operates on.
// Request-body overrides win over the configured defaults.
type Target struct {
	SubscriptionID string `json:"subscriptionId"`
	ResourceGroup  string `json:"resourceGroup"`
	ServerName     string `json:"serverName"`
}

// Options configure the management client.
type Options struct {
	TenantID     string
	ClientID     string
	ClientSecret string
	APIVersion   string
	Defaults     Target
}

// APIError carries the management API status and body through to the caller.
// The routes behind this client are admin-facing tooling, so the detail is
// deliberately not hidden.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("management API returned %d: %s", e.StatusCode, e.Body)
}

// Client calls the Azure management API with a client-credentials token.
type Client struct {
	opts     Options
	baseURL  string
	tokenURL string

	mu    sync.Mutex
	httpc *http.Client
}

// NewClient builds a management client. Credential completeness is checked
// per call, not here: the server must start even when the admin tooling is
// unconfigured.
func NewClient(opts Options) *Client {
	if opts.APIVersion == "" {
		opts.APIVersion = "2021-06-01"
	}
	return &Client{
		opts:    opts,
		baseURL: "https://management.azure.com",
	}
}

// ResolveTarget fills the blanks of an override from the configured defaults.
func (c *Client) ResolveTarget(override Target) Target {
	t := override
	if t.SubscriptionID == "" {
		t.SubscriptionID = c.opts.Defaults.SubscriptionID
	}
	if t.ResourceGroup == "" {
		t.ResourceGroup = c.opts.Defaults.ResourceGroup
	}
	if t.ServerName == "" {
		t.ServerName = c.opts.Defaults.ServerName
	}
	return t
}

// Defaults returns the configured target so the UI can display the
// environment-backed values.
func (c *Client) Defaults() Target {
	return c.opts.Defaults
}

// Start requests a start of the target server.
func (c *Client) Start(ctx context.Context, target Target) (json.RawMessage, error) {
	return c.serverAction(ctx, target, "start")
}

// Stop requests a stop of the target server.
func (c *Client) Stop(ctx context.Context, target Target) (json.RawMessage, error) {
	return c.serverAction(ctx, target, "stop")
}

func (c *Client) serverAction(ctx context.Context, target Target, action string) (json.RawMessage, error) {
	if target.SubscriptionID == "" {
		return nil, errors.New("missing subscription id (pass in body or set AZURE_SUBSCRIPTION_ID)")
	}

	httpc, err := c.tokenClient()
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf(
		"%s/subscriptions/%s/resourceGroups/%s/providers/Microsoft.DBforPostgreSQL/flexibleServers/%s/%s?api-version=%s",
		c.baseURL,
		url.PathEscape(target.SubscriptionID),
		url.PathEscape(target.ResourceGroup),
		url.PathEscape(target.ServerName),
		action,
		url.QueryEscape(c.opts.APIVersion),
	)

	// The management API rejects form encoding; send an explicit empty JSON
	// body with the matching Content-Type.
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader("{}"))
	if err != nil {
		return nil, fmt.Errorf("azuremgmt: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("azuremgmt: %s %s: %w", action, target.ServerName, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("azuremgmt: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	if len(body) == 0 {
		return nil, nil
	}
	return json.RawMessage(body), nil
}

// tokenClient returns an HTTP client that injects a client-credentials token
// for the management scope. The oauth2 transport caches the token until
// expiry, so repeated admin actions reuse it.
//
// The token source is built once, from the background context: it lives for
// the process, not for the request that happened to build it, so a token
// refresh long after that request ended still works.
func (c *Client) tokenClient() (*http.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.httpc != nil {
		return c.httpc, nil
	}
	if c.opts.TenantID == "" || c.opts.ClientID == "" || c.opts.ClientSecret == "" {
		return nil, errors.New("missing Azure AD credentials (AZURE_TENANT_ID/AZURE_CLIENT_ID/AZURE_CLIENT_SECRET)")
	}

	tokenURL := c.tokenURL
	if tokenURL == "" {
		tokenURL = fmt.Sprintf("https://login.microsoftonline.com/%s/oauth2/v2.0/token", c.opts.TenantID)
	}
	cc := clientcredentials.Config{
		ClientID:     c.opts.ClientID,
		ClientSecret: c.opts.ClientSecret,
		TokenURL:     tokenURL,
		Scopes:       []string{managementScope},
	}
	c.httpc = cc.Client(context.Background())
	c.httpc.Timeout = 30 * time.Second
	return c.httpc, nil
}
