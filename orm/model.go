// Package orm maps single tables onto records through an explicit Schema.
//
// A Schema is declared once from field descriptors and derives the table's
// select, insert, update and delete statements:
//
//	var users = orm.MustSchema("users",
//	    orm.StringField("id", orm.PrimaryKey(), orm.WithDefault(nextID)),
//	    orm.StringField("name"),
//	    orm.StringField("email"),
//	)
//
// A Model binds a Schema to an Executor (normally a *db.Pool) and provides
// the finders; the Records it returns persist themselves:
//
//	m := orm.NewModel(users, pool)
//	u := m.New(map[string]any{"name": "t", "email": "t@x.com"})
//	err := u.Save(ctx)
//	found, err := m.Find(ctx, u.Value("id"))
package orm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pkg/errors"

	"github.com/bjaus/web/db"
)

// Executor issues statements written with ? placeholders. *db.Pool
// implements it.
type Executor interface {
	Select(ctx context.Context, query string, args []any, size int) ([]db.Row, error)
	Execute(ctx context.Context, query string, args []any, autocommit bool) (int64, error)
}

// Model binds a Schema to an Executor.
type Model struct {
	schema *Schema
	exec   Executor

	strict     bool
	autocommit bool
}

// ModelOption configures a Model.
type ModelOption func(*Model)

// WithStrictRows makes save, update and remove fail with ErrAffectedRows when
// the statement touches anything other than exactly one row. By default the
// anomaly is logged and the call succeeds.
func WithStrictRows() ModelOption {
	return func(m *Model) {
		m.strict = true
	}
}

// WithTransactions runs every write in its own explicit transaction instead
// of relying on the connection's autocommit.
func WithTransactions() ModelOption {
	return func(m *Model) {
		m.autocommit = false
	}
}

// NewModel creates a Model for schema.
func NewModel(schema *Schema, exec Executor, opts ...ModelOption) *Model {
	m := &Model{
		schema:     schema,
		exec:       exec,
		autocommit: true,
	}
	for _, opt := range opts {
		opt(m)
	}
	slog.Debug("found model", "table", schema.table, "fields", len(schema.fields)+1)
	return m
}

// Schema returns the model's schema.
func (m *Model) Schema() *Schema { return m.schema }

// New creates an unsaved record holding values.
func (m *Model) New(values map[string]any) *Record {
	r := &Record{model: m, values: make(map[string]any, len(values))}
	for k, v := range values {
		r.values[k] = v
	}
	return r
}

// fromRow builds a record from a result row, translating column names back
// to field names.
func (m *Model) fromRow(row db.Row) *Record {
	r := &Record{model: m, values: make(map[string]any, row.Len())}
	for _, col := range row.Columns() {
		name, ok := m.schema.byColumn[col]
		if !ok {
			name = col
		}
		r.values[name] = row.Value(col)
	}
	return r
}

// QueryOption refines FindAll and FindNumber.
type QueryOption func(*query)

type query struct {
	where   string
	args    []any
	orderBy string
	limit   []int
	limited bool
}

// Where filters rows with a SQL condition written with ? placeholders.
func Where(clause string, args ...any) QueryOption {
	return func(q *query) {
		q.where = clause
		q.args = append(q.args, args...)
	}
}

// OrderBy sorts rows by a SQL ordering clause.
func OrderBy(clause string) QueryOption {
	return func(q *query) {
		q.orderBy = clause
	}
}

// Limit caps the rows returned. One value is a row count; two values are an
// offset followed by a count. Any other number of values is rejected by the
// finder with ErrInvalidLimit.
func Limit(n ...int) QueryOption {
	return func(q *query) {
		q.limit = n
		q.limited = true
	}
}

// Find returns the record whose primary key is pk, or nil if there is none.
func (m *Model) Find(ctx context.Context, pk any) (*Record, error) {
	sql := fmt.Sprintf("%s where %s=?", m.schema.selectSQL, quote(m.schema.pk.ColumnName()))
	rows, err := m.exec.Select(ctx, sql, []any{pk}, 1)
	if err != nil {
		return nil, errors.Wrapf(err, "find %s", m.schema.table)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return m.fromRow(rows[0]), nil
}

// FindAll returns every record matching opts, in the order the store
// returns them.
func (m *Model) FindAll(ctx context.Context, opts ...QueryOption) ([]*Record, error) {
	var q query
	for _, opt := range opts {
		opt(&q)
	}

	sql := []string{m.schema.selectSQL}
	args := append([]any{}, q.args...)
	if q.where != "" {
		sql = append(sql, "where", q.where)
	}
	if q.orderBy != "" {
		sql = append(sql, "order by", q.orderBy)
	}
	if q.limited {
		switch len(q.limit) {
		case 1:
			sql = append(sql, "limit", "?")
			args = append(args, q.limit[0])
		case 2:
			sql = append(sql, "limit", "?, ?")
			args = append(args, q.limit[0], q.limit[1])
		default:
			return nil, fmt.Errorf("%w: %v", ErrInvalidLimit, q.limit)
		}
	}

	rows, err := m.exec.Select(ctx, strings.Join(sql, " "), args, 0)
	if err != nil {
		return nil, errors.Wrapf(err, "find all %s", m.schema.table)
	}

	records := make([]*Record, len(rows))
	for i, row := range rows {
		records[i] = m.fromRow(row)
	}
	return records, nil
}

// numAlias is the column alias FindNumber reads its result from.
const numAlias = "_num_"

// FindNumber evaluates a single expression such as count(id) over the table
// and returns its value, or nil when no row comes back. Only Where applies.
func (m *Model) FindNumber(ctx context.Context, expr string, opts ...QueryOption) (any, error) {
	var q query
	for _, opt := range opts {
		opt(&q)
	}

	sql := []string{fmt.Sprintf("select %s %s from %s", expr, numAlias, quote(m.schema.table))}
	if q.where != "" {
		sql = append(sql, "where", q.where)
	}

	rows, err := m.exec.Select(ctx, strings.Join(sql, " "), q.args, 1)
	if err != nil {
		return nil, errors.Wrapf(err, "find number %s", m.schema.table)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0].Value(numAlias), nil
}

func (m *Model) write(ctx context.Context, op, sql string, args []any) error {
	n, err := m.exec.Execute(ctx, sql, args, m.autocommit)
	if err != nil {
		return errors.Wrapf(err, "%s %s", op, m.schema.table)
	}
	if n == 1 {
		return nil
	}
	if m.strict {
		return fmt.Errorf("%w: %s %s: affected rows: %d", ErrAffectedRows, op, m.schema.table, n)
	}
	slog.WarnContext(ctx, "failed to "+op+" record", "table", m.schema.table, "affected", n)
	return nil
}
