// Package db owns the process-wide connection pool and the SQL execution
// layer that the orm package issues its statements through.
//
// Statements are written with ? placeholders and rebound to the driver's
// native bind variable before execution:
//
//	pool, err := db.Open(ctx, cfg)
//	rows, err := pool.Select(ctx, "select `id` from `users` where `email`=?", []any{email}, 1)
//	n, err := pool.Execute(ctx, "delete from `users` where `id`=?", []any{id}, true)
package db

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

// Pool is a bounded set of reusable connections to the relational store.
// It is safe for concurrent use; callers beyond MaxSize wait for a release.
type Pool struct {
	xdb  *sqlx.DB
	bind int
}

// Open creates the pool described by cfg and warms MinSize connections.
// Open is meant to be called once at startup; the returned Pool is passed by
// reference to whatever needs it and closed at shutdown.
func Open(ctx context.Context, cfg Config) (*Pool, error) {
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "create database connection pool",
		"driver", cfg.Driver,
		"host", cfg.Host,
		"database", cfg.Database,
		"minsize", cfg.MinSize,
		"maxsize", cfg.MaxSize,
	)

	xdb, err := sqlx.Open(cfg.Driver, cfg.DataSourceName())
	if err != nil {
		return nil, errors.Wrap(err, "open pool")
	}
	xdb.SetMaxOpenConns(cfg.MaxSize)
	xdb.SetMaxIdleConns(cfg.MaxSize)

	p := &Pool{xdb: xdb, bind: sqlx.BindType(cfg.Driver)}
	if err := p.warm(ctx, cfg.MinSize); err != nil {
		//nolint:errcheck,gosec // already failing
		xdb.Close()
		return nil, err
	}
	return p, nil
}

// New wraps an already opened handle. driver selects the bind variable style.
func New(sdb *sql.DB, driver string) *Pool {
	return &Pool{
		xdb:  sqlx.NewDb(sdb, driver),
		bind: sqlx.BindType(driver),
	}
}

// warm holds n connections at once so they are established before the first
// request, then returns them to the idle set.
func (p *Pool) warm(ctx context.Context, n int) error {
	conns := make([]*sqlx.Conn, 0, n)
	defer func() {
		for _, c := range conns {
			//nolint:errcheck,gosec // returning to the pool
			c.Close()
		}
	}()

	for range n {
		c, err := p.xdb.Connx(ctx)
		if err != nil {
			return errors.Wrap(err, "acquire connection")
		}
		conns = append(conns, c)
	}
	return nil
}

// Close stops new statements from starting, waits for in-flight ones to
// finish, and releases every connection.
func (p *Pool) Close() error {
	slog.Info("close database connection pool")
	return p.xdb.Close()
}

// DB exposes the underlying handle for work the execution layer does not
// cover, such as schema setup.
func (p *Pool) DB() *sqlx.DB { return p.xdb }

// Rebind rewrites ? placeholders into the driver's native bind variables.
// It is purely textual and does not inspect the statement.
func (p *Pool) Rebind(query string) string {
	return sqlx.Rebind(p.bind, query)
}
