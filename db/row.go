package db

import (
	"bytes"
	"encoding/json"
)

// Row is one result row: column names in select order mapped to their values.
// Text returned by the driver as []byte is normalized to string.
type Row struct {
	columns []string
	values  map[string]any
}

// NewRow builds a Row from column names and a column-to-value mapping.
func NewRow(columns []string, values map[string]any) Row {
	for k, v := range values {
		if b, ok := v.([]byte); ok {
			values[k] = string(b)
		}
	}
	return Row{columns: columns, values: values}
}

// Columns returns the column names in select order.
func (r Row) Columns() []string { return r.columns }

// Get returns the value of a column and whether the row has it.
func (r Row) Get(column string) (any, bool) {
	v, ok := r.values[column]
	return v, ok
}

// Value returns the value of a column, or nil.
func (r Row) Value(column string) any { return r.values[column] }

// Len returns the number of columns.
func (r Row) Len() int { return len(r.columns) }

// Map returns a copy of the row as a plain map.
func (r Row) Map() map[string]any {
	m := make(map[string]any, len(r.values))
	for k, v := range r.values {
		m[k] = v
	}
	return m
}

// MarshalJSON encodes the row as an object with keys in column order.
func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, col := range r.columns {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(col)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(r.values[col])
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
