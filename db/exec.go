package db

import (
	"context"
	"log/slog"

	"github.com/pkg/errors"
)

// Select runs a read statement and returns its rows in store order. When size
// is positive at most size rows are fetched.
func (p *Pool) Select(ctx context.Context, query string, args []any, size int) ([]Row, error) {
	query = p.Rebind(query)
	slog.DebugContext(ctx, "SQL", "sql", query)

	rows, err := p.xdb.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "select")
	}
	defer func() {
		//nolint:errcheck,gosec // read-only cursor
		rows.Close()
	}()

	cols, err := rows.Columns()
	if err != nil {
		return nil, errors.Wrap(err, "select columns")
	}

	var out []Row
	for (size <= 0 || len(out) < size) && rows.Next() {
		values := make(map[string]any, len(cols))
		if err := rows.MapScan(values); err != nil {
			return nil, errors.Wrap(err, "select scan")
		}
		out = append(out, NewRow(cols, values))
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "select rows")
	}

	slog.DebugContext(ctx, "rows returned", "rows", len(out))
	return out, nil
}

// Execute runs an insert, update or delete and returns the affected-row count.
// With autocommit false the statement runs inside its own transaction, which
// is committed on success and rolled back before any error is returned.
func (p *Pool) Execute(ctx context.Context, query string, args []any, autocommit bool) (int64, error) {
	query = p.Rebind(query)
	slog.DebugContext(ctx, "SQL", "sql", query)

	if autocommit {
		res, err := p.xdb.ExecContext(ctx, query, args...)
		if err != nil {
			return 0, errors.Wrap(err, "execute")
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, errors.Wrap(err, "rows affected")
		}
		return n, nil
	}

	tx, err := p.xdb.BeginTxx(ctx, nil)
	if err != nil {
		return 0, errors.Wrap(err, "begin")
	}
	defer func() {
		if rec := recover(); rec != nil {
			//nolint:errcheck,gosec // re-panicking
			tx.Rollback()
			panic(rec)
		}
	}()

	var affected int64
	res, err := tx.ExecContext(ctx, query, args...)
	if err == nil {
		affected, err = res.RowsAffected()
	}
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			slog.WarnContext(ctx, "rollback failed", "err", rbErr)
		}
		return 0, errors.Wrap(err, "execute")
	}

	if err := tx.Commit(); err != nil {
		return 0, errors.Wrap(err, "commit")
	}
	return affected, nil
}
