// Package warehouse bridges ad hoc SQL to the Databricks warehouse.
package warehouse

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	dbsql "github.com/databricks/databricks-sql-go"
	"golang.org/x/oauth2/clientcredentials"
)

// Options configure the warehouse connection. A static Token wins over the
// client-credentials pair.
type Options struct {
	Token         string
	TokenEndpoint string
	ClientID      string
	ClientSecret  string
	ServerHost    string
	HTTPPath      string
}

type Client struct {
	opts Options
}

func NewClient(opts Options) *Client {
	if opts.TokenEndpoint == "" {
		opts.TokenEndpoint = "https://accounts.azuredatabricks.net/oauth2/token"
	}
	return &Client{opts: opts}
}

// Configured reports whether a warehouse target is set. Used by the handler
// to answer 400 instead of attempting a connection.
func (c *Client) Configured() bool {
	return c.opts.ServerHost != "" && c.opts.HTTPPath != ""
}

// RunQuery opens a session, runs one statement and returns the rows as maps.
// Connections are not pooled; this backs a low-traffic diagnostic endpoint.
func (c *Client) RunQuery(ctx context.Context, query string) ([]map[string]any, error) {
	if !c.Configured() {
		return nil, errors.New("missing Databricks configuration (host/path)")
	}

	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	connector, err := dbsql.NewConnector(
		dbsql.WithServerHostname(c.opts.ServerHost),
		dbsql.WithHTTPPath(c.opts.HTTPPath),
		dbsql.WithAccessToken(token),
		dbsql.WithPort(443),
	)
	if err != nil {
		return nil, fmt.Errorf("warehouse: build connector: %w", err)
	}

	conn := sql.OpenDB(connector)
	defer conn.Close()

	rows, err := conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("warehouse: query: %w", err)
	}
	defer rows.Close()

	return scanRows(rows)
}

// accessToken returns the static token when configured, otherwise runs the
// client-credentials grant against the Databricks account endpoint.
func (c *Client) accessToken(ctx context.Context) (string, error) {
	if c.opts.Token != "" {
		return c.opts.Token, nil
	}
	if c.opts.ClientID == "" || c.opts.ClientSecret == "" {
		return "", errors.New("missing Databricks credentials (token or client id/secret)")
	}

	cc := clientcredentials.Config{
		ClientID:     c.opts.ClientID,
		ClientSecret: c.opts.ClientSecret,
		TokenURL:     c.opts.TokenEndpoint,
		Scopes:       []string{"all"},
	}
	token, err := cc.Token(ctx)
	if err != nil {
		return "", fmt.Errorf("warehouse: token fetch: %w", err)
	}
	return token.AccessToken, nil
}

func scanRows(rows *sql.Rows) ([]map[string]any, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("warehouse: columns: %w", err)
	}

	var result []map[string]any
	for rows.Next() {
		values := make([]any, len(columns))
		pointers := make([]any, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, fmt.Errorf("warehouse: scan: %w", err)
		}

		row := make(map[string]any, len(columns))
		for i, column := range columns {
			row[column] = values[i]
		}
		result = append(result, row)
	}
	return result, rows.Err()
}
