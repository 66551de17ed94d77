package orm

import (
	"fmt"
	"log/slog"
	"strings"
)

// Schema is the immutable description of one table: its name, its fields
// split into the primary key and the rest, and the statements every record
// of the table is read and written with.
type Schema struct {
	table    string
	pk       Field
	fields   []Field
	byName   map[string]Field
	byColumn map[string]string

	selectSQL string
	insertSQL string
	updateSQL string
	deleteSQL string
}

// NewSchema derives a Schema from an ordered field list. Exactly one field
// must be marked as the primary key.
func NewSchema(table string, fields ...Field) (*Schema, error) {
	if table == "" {
		return nil, fmt.Errorf("%w: table", ErrEmptyName)
	}

	s := &Schema{
		table:    table,
		byName:   make(map[string]Field, len(fields)),
		byColumn: make(map[string]string, len(fields)),
	}

	var havePK bool
	for _, f := range fields {
		if f.Name == "" {
			return nil, fmt.Errorf("%w: field in %s", ErrEmptyName, table)
		}
		if _, ok := s.byName[f.Name]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateField, f.Name)
		}
		if other, ok := s.byColumn[f.ColumnName()]; ok {
			return nil, fmt.Errorf("%w: %s and %s share column %s", ErrDuplicateField, other, f.Name, f.ColumnName())
		}
		slog.Debug("found mapping", "table", table, "field", f.Name, "type", f.ColumnType)

		s.byName[f.Name] = f
		s.byColumn[f.ColumnName()] = f.Name
		if !f.PrimaryKey {
			s.fields = append(s.fields, f)
			continue
		}
		if havePK {
			return nil, fmt.Errorf("%w for field: %s", ErrDuplicatePrimaryKey, f.Name)
		}
		s.pk = f
		havePK = true
	}
	if !havePK {
		return nil, fmt.Errorf("%w in %s", ErrMissingPrimaryKey, table)
	}

	s.buildStatements()
	return s, nil
}

// MustSchema is NewSchema for package-level schema variables; it panics on a
// definition error.
func MustSchema(table string, fields ...Field) *Schema {
	s, err := NewSchema(table, fields...)
	if err != nil {
		panic(err)
	}
	return s
}

func quote(name string) string { return "`" + name + "`" }

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func (s *Schema) buildStatements() {
	table := quote(s.table)
	pk := quote(s.pk.ColumnName())

	cols := make([]string, len(s.fields))
	sets := make([]string, len(s.fields))
	for i, f := range s.fields {
		cols[i] = quote(f.ColumnName())
		sets[i] = cols[i] + "=?"
	}

	selectList := append([]string{pk}, cols...)
	insertList := append(append([]string{}, cols...), pk)

	s.selectSQL = fmt.Sprintf("select %s from %s", strings.Join(selectList, ", "), table)
	s.insertSQL = fmt.Sprintf("insert into %s (%s) values (%s)", table, strings.Join(insertList, ", "), placeholders(len(insertList)))
	s.updateSQL = fmt.Sprintf("update %s set %s where %s=?", table, strings.Join(sets, ", "), pk)
	s.deleteSQL = fmt.Sprintf("delete from %s where %s=?", table, pk)
}

// Table returns the table name.
func (s *Schema) Table() string { return s.table }

// PrimaryKey returns the primary-key field.
func (s *Schema) PrimaryKey() Field { return s.pk }

// Fields returns the non-key fields in declaration order.
func (s *Schema) Fields() []Field {
	out := make([]Field, len(s.fields))
	copy(out, s.fields)
	return out
}

// Field looks up a field, key or not, by name.
func (s *Schema) Field(name string) (Field, bool) {
	f, ok := s.byName[name]
	return f, ok
}

// Names returns the primary key name followed by the other field names, the
// same order as the select statement.
func (s *Schema) Names() []string {
	names := make([]string, 0, len(s.fields)+1)
	names = append(names, s.pk.Name)
	for _, f := range s.fields {
		names = append(names, f.Name)
	}
	return names
}

// SelectSQL returns the select statement without a where clause.
func (s *Schema) SelectSQL() string { return s.selectSQL }

// InsertSQL returns the insert statement; the primary key is bound last.
func (s *Schema) InsertSQL() string { return s.insertSQL }

// UpdateSQL returns the update-by-primary-key statement.
func (s *Schema) UpdateSQL() string { return s.updateSQL }

// DeleteSQL returns the delete-by-primary-key statement.
func (s *Schema) DeleteSQL() string { return s.deleteSQL }

// DDL renders a create table statement for the schema.
func (s *Schema) DDL() string {
	var b strings.Builder
	fmt.Fprintf(&b, "create table %s (\n", quote(s.table))
	fmt.Fprintf(&b, "  %s %s not null,\n", quote(s.pk.ColumnName()), s.pk.ColumnType)
	for _, f := range s.fields {
		fmt.Fprintf(&b, "  %s %s,\n", quote(f.ColumnName()), f.ColumnType)
	}
	fmt.Fprintf(&b, "  primary key (%s)\n)", quote(s.pk.ColumnName()))
	return b.String()
}
