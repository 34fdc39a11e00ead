package azuremgmt

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, defaults Target) *Client {
	t.Helper()

	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	c := NewClient(Options{APIVersion: "2021-06-01", Defaults: defaults})
	c.baseURL = ts.URL
	c.httpc = ts.Client()
	return c
}

func TestResolveTarget(t *testing.T) {
	c := NewClient(Options{Defaults: Target{
		SubscriptionID: "sub-default",
		ResourceGroup:  "rg-default",
		ServerName:     "pg-default",
	}})

	t.Run("blanks fall back to defaults", func(t *testing.T) {
		target := c.ResolveTarget(Target{})
		require.Equal(t, "sub-default", target.SubscriptionID)
		require.Equal(t, "rg-default", target.ResourceGroup)
		require.Equal(t, "pg-default", target.ServerName)
	})

	t.Run("overrides win per field", func(t *testing.T) {
		target := c.ResolveTarget(Target{ServerName: "pg-override"})
		require.Equal(t, "sub-default", target.SubscriptionID)
		require.Equal(t, "rg-default", target.ResourceGroup)
		require.Equal(t, "pg-override", target.ServerName)
	})
}

func TestStartCallsManagementAPI(t *testing.T) {
	var captured *http.Request
	var capturedBody string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		captured, capturedBody = r.Clone(context.Background()), string(body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"starting"}`))
	}, Target{SubscriptionID: "sub-1", ResourceGroup: "rg-1", ServerName: "pg-1"})

	raw, err := c.Start(context.Background(), c.ResolveTarget(Target{}))
	require.NoError(t, err)
	require.JSONEq(t, `{"status":"starting"}`, string(raw))

	require.JSONEq(t, "{}", capturedBody)
	require.Equal(t, http.MethodPost, captured.Method)
	require.Equal(t,
		"/subscriptions/sub-1/resourceGroups/rg-1/providers/Microsoft.DBforPostgreSQL/flexibleServers/pg-1/start",
		captured.URL.Path)
	require.Equal(t, "2021-06-01", captured.URL.Query().Get("api-version"))
	require.Equal(t, "application/json", captured.Header.Get("Content-Type"))
}

func TestStopSurfacesAPIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"error":{"code":"ServerNotRunning"}}`))
	}, Target{SubscriptionID: "sub-1", ResourceGroup: "rg-1", ServerName: "pg-1"})

	_, err := c.Stop(context.Background(), c.ResolveTarget(Target{}))
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusConflict, apiErr.StatusCode)
	require.Contains(t, apiErr.Body, "ServerNotRunning")
}

func TestServerActionRequiresSubscription(t *testing.T) {
	c := NewClient(Options{})

	_, err := c.Start(context.Background(), Target{ResourceGroup: "rg", ServerName: "pg"})
	require.ErrorContains(t, err, "missing subscription id")
}

func TestAcceptedWithEmptyBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}, Target{SubscriptionID: "sub-1", ResourceGroup: "rg-1", ServerName: "pg-1"})

	raw, err := c.Start(context.Background(), c.ResolveTarget(Target{}))
	require.NoError(t, err)
	require.Nil(t, raw)
}

func TestTokenClientOutlivesFirstRequest(t *testing.T) {
	var tokenCalls int
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		tokenCalls++
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": fmt.Sprintf("tok-%d", tokenCalls),
			"token_type":   "Bearer",
			// Immediately stale, forcing a refresh on the next call.
			"expires_in": 1,
		})
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)

	c := NewClient(Options{
		TenantID:     "tenant-1",
		ClientID:     "client-1",
		ClientSecret: "secret-1",
		Defaults:     Target{SubscriptionID: "sub-1", ResourceGroup: "rg-1", ServerName: "pg-1"},
	})
	c.baseURL = ts.URL
	c.tokenURL = ts.URL + "/token"

	ctx, cancel := context.WithCancel(context.Background())
	_, err := c.Start(ctx, c.ResolveTarget(Target{}))
	require.NoError(t, err)
	cancel()

	// The first request's context is gone; the token refresh for the next
	// call must not be tied to it.
	_, err = c.Stop(context.Background(), c.ResolveTarget(Target{}))
	require.NoError(t, err)
	require.Equal(t, 2, tokenCalls)
}

func TestDefaults(t *testing.T) {
	defaults := Target{SubscriptionID: "sub-1", ResourceGroup: "rg-1", ServerName: "pg-1"}
	c := NewClient(Options{Defaults: defaults})

	got := c.Defaults()
	require.Equal(t, defaults, got)

	data, err := json.Marshal(got)
	require.NoError(t, err)
	require.JSONEq(t, `{"subscriptionId":"sub-1","resourceGroup":"rg-1","serverName":"pg-1"}`, string(data))
}
