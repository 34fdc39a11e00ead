package db

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

const (
	// refreshSkew is subtracted from the credential expiry so the pool is
	// replaced before the token actually lapses mid-query.
	refreshSkew = 2 * time.Minute

	// defaultTokenLifetime is assumed when the credential carries no expiry.
	defaultTokenLifetime = 50 * time.Minute
)

// Handle is the subset of *pgxpool.Pool the handlers use. Satisfied by
// *pgxpool.Pool and by fakes in tests.
type Handle interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Close()
}

// Options are the connection parameters for the pool. The bearer token from
// the TokenSource is used as the password; host and user differ per
// environment (local: the developer's UPN, production: the managed-identity
// role name registered in the database).
type Options struct {
	Host             string
	Port             int
	User             string
	Database         string
	MaxConns         int
	ConnTimeout      time.Duration
	ValidateOnCreate bool
	DebugToken       bool
}

// Pool owns at most one live connection handle at a time and replaces it
// transparently when the backing credential nears expiry.
//
// Refresh is optimistic: overlapping Acquire calls near expiry may each fetch
// a credential and build a handle, and the last install wins. Superseded
// handles are closed best-effort. The mutex only guards the install step;
// serializing the whole refresh would let one stuck token fetch stall every
// request in the process.
type Pool struct {
	opts   Options
	tokens TokenSource

	// swapped in tests
	now     func() time.Time
	connect func(ctx context.Context, dsn string) (Handle, error)

	mu        sync.Mutex
	current   Handle
	expiresAt time.Time
}

// NewPool validates the required connection parameters and returns a pool.
// No network activity happens here; the first Acquire connects.
func NewPool(opts Options, tokens TokenSource) (*Pool, error) {
	if opts.Host == "" || opts.User == "" {
		return nil, errors.New("db.NewPool: missing PGHOST or PGUSER in environment variables")
	}
	if tokens == nil {
		return nil, errors.New("db.NewPool: token source is required")
	}
	if opts.Port == 0 {
		opts.Port = 5432
	}
	if opts.Database == "" {
		opts.Database = "postgres"
	}
	if opts.MaxConns == 0 {
		opts.MaxConns = 5
	}
	if opts.ConnTimeout == 0 {
		opts.ConnTimeout = 20 * time.Second
	}
	return &Pool{
		opts:    opts,
		tokens:  tokens,
		now:     time.Now,
		connect: pgxConnect,
	}, nil
}

// Acquire returns the current handle, refreshing it first when the cached
// credential is within refreshSkew of expiry.
func (p *Pool) Acquire(ctx context.Context) (Handle, error) {
	p.mu.Lock()
	current, expiresAt := p.current, p.expiresAt
	p.mu.Unlock()

	if current != nil && p.now().Before(expiresAt.Add(-refreshSkew)) {
		return current, nil
	}

	token, err := p.tokens.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("db.Pool.Acquire: %w", err)
	}

	expiry := token.ExpiresOn
	if expiry.IsZero() {
		expiry = p.now().Add(defaultTokenLifetime)
	}

	if p.opts.DebugToken {
		logTokenIdentity(token.Value)
	}

	handle, err := p.connect(ctx, p.dsn(token.Value))
	if err != nil {
		return nil, fmt.Errorf("db.Pool.Acquire: %w", err)
	}

	// Fast diagnosis of network/firewall/role problems on the new handle,
	// rather than on the first real query.
	if p.opts.ValidateOnCreate {
		if _, err := handle.Exec(ctx, "SELECT 1"); err != nil {
			handle.Close()
			return nil, fmt.Errorf("db.Pool.Acquire: validate on create: %w", err)
		}
	}

	p.mu.Lock()
	old := p.current
	p.current, p.expiresAt = handle, expiry
	p.mu.Unlock()

	if old != nil {
		closeQuietly(old)
	}
	return handle, nil
}

// Query acquires the current handle and runs a parameterized query.
func (p *Pool) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	handle, err := p.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return handle.Query(ctx, sql, args...)
}

// QueryRow acquires the current handle and runs a single-row query.
func (p *Pool) QueryRow(ctx context.Context, sql string, args ...any) (pgx.Row, error) {
	handle, err := p.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return handle.QueryRow(ctx, sql, args...), nil
}

// Exec acquires the current handle and runs a statement.
func (p *Pool) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	handle, err := p.Acquire(ctx)
	if err != nil {
		return pgconn.CommandTag{}, err
	}
	return handle.Exec(ctx, sql, args...)
}

// Close retires the current handle. Safe to call with none open.
func (p *Pool) Close() {
	p.mu.Lock()
	current := p.current
	p.current = nil
	p.expiresAt = time.Time{}
	p.mu.Unlock()

	if current != nil {
		closeQuietly(current)
	}
}

func (p *Pool) dsn(password string) string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=require connect_timeout=%d pool_max_conns=%d",
		p.opts.Host, p.opts.Port, p.opts.User, password, p.opts.Database,
		int(p.opts.ConnTimeout.Seconds()), p.opts.MaxConns,
	)
}

func pgxConnect(ctx context.Context, dsn string) (Handle, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}
	return pool, nil
}

// closeQuietly retires a superseded handle. A failed close must never fail
// the request that triggered the refresh.
func closeQuietly(h Handle) {
	defer func() {
		if r := recover(); r != nil {
			log.Warn().Interface("panic", r).Msg("closing superseded database pool")
		}
	}()
	h.Close()
}
