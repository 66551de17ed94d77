package orm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"reflect"
	"slices"
	"strconv"

	"github.com/muir/reflectutils"
)

// Record is one row of a Model's table: a mapping from field name to value.
// Keys outside the schema are kept but never written.
type Record struct {
	model  *Model
	values map[string]any
}

// Model returns the model the record belongs to.
func (r *Record) Model() *Model { return r.model }

// Get returns a value and whether it is set.
func (r *Record) Get(name string) (any, bool) {
	v, ok := r.values[name]
	return v, ok
}

// Value returns a value, or nil when it is unset.
func (r *Record) Value(name string) any { return r.values[name] }

// Set stores a value.
func (r *Record) Set(name string, v any) { r.values[name] = v }

// ValueOrDefault returns the value of name, falling back to the field's
// default when it is unset or nil. A default that is used is stored.
func (r *Record) ValueOrDefault(name string) any {
	if v := r.values[name]; v != nil {
		return v
	}
	f, ok := r.model.schema.byName[name]
	if !ok {
		return nil
	}
	v, ok := f.DefaultValue()
	if !ok {
		return nil
	}
	slog.Debug("using default value", "field", name, "value", v)
	r.values[name] = v
	return v
}

// String returns a value as a string; unset values are "".
func (r *Record) String(name string) string {
	switch v := r.values[name].(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return fmt.Sprint(v)
	}
}

// Int64 returns a value as an int64; unset or non-numeric values are 0.
func (r *Record) Int64(name string) int64 {
	n, _ := toInt64(r.values[name])
	return n
}

// Float64 returns a value as a float64; unset or non-numeric values are 0.
func (r *Record) Float64(name string) float64 {
	switch v := r.values[name].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case json.Number:
		f, _ := v.Float64()
		return f
	case string:
		f, _ := strconv.ParseFloat(v, 64)
		return f
	default:
		n, _ := toInt64(v)
		return float64(n)
	}
}

// Bool returns a value as a bool. Numeric values are true when non-zero,
// which covers drivers that store booleans as tinyint.
func (r *Record) Bool(name string) bool {
	switch v := r.values[name].(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(v)
		return b
	default:
		n, _ := toInt64(v)
		return n != 0
	}
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint64:
		return int64(n), true
	case float64:
		return int64(n), true
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	case string:
		i, err := strconv.ParseInt(n, 10, 64)
		return i, err == nil
	default:
		return 0, false
	}
}

// Map returns a copy of the record's values.
func (r *Record) Map() map[string]any {
	m := make(map[string]any, len(r.values))
	for k, v := range r.values {
		m[k] = v
	}
	return m
}

// keys returns schema fields that are set, in select order, then any other
// keys sorted.
func (r *Record) keys() []string {
	keys := make([]string, 0, len(r.values))
	for _, name := range r.model.schema.Names() {
		if _, ok := r.values[name]; ok {
			keys = append(keys, name)
		}
	}
	var extra []string
	for k := range r.values {
		if _, ok := r.model.schema.byName[k]; !ok {
			extra = append(extra, k)
		}
	}
	slices.Sort(extra)
	return append(keys, extra...)
}

// MarshalJSON encodes the record as an object in schema order.
func (r *Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(r.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Scan copies the record into the struct dst points to. Fields are matched
// by their db tag; untagged fields and unset values are left alone.
func (r *Record) Scan(dst any) error {
	v := reflect.ValueOf(dst)
	if v.Kind() != reflect.Pointer || v.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("%w: destination must be a struct pointer, got %T", ErrScan, dst)
	}
	v = v.Elem()

	var err error
	reflectutils.WalkStructElements(v.Type(), func(f reflect.StructField) bool {
		name, ok := f.Tag.Lookup("db")
		if !ok || name == "-" {
			return true
		}
		val, set := r.values[name]
		if !set || val == nil {
			return false
		}
		field, ferr := v.FieldByIndexErr(f.Index)
		if ferr != nil || !field.CanSet() {
			return false
		}
		if serr := assign(field, val); serr != nil {
			err = fmt.Errorf("%w: %s: %w", ErrScan, name, serr)
		}
		return false
	})
	return err
}

func assign(field reflect.Value, val any) error {
	if field.Kind() == reflect.Bool {
		n, ok := toInt64(val)
		if b, isBool := val.(bool); isBool {
			field.SetBool(b)
			return nil
		}
		if !ok {
			return fmt.Errorf("cannot use %T as bool", val)
		}
		field.SetBool(n != 0)
		return nil
	}

	rv := reflect.ValueOf(val)
	if rv.Type().AssignableTo(field.Type()) {
		field.Set(rv)
		return nil
	}
	if field.Kind() == reflect.String {
		return assignString(field, rv)
	}
	if rv.Kind() == reflect.String {
		return fmt.Errorf("cannot use string as %s", field.Type())
	}
	if rv.Type().ConvertibleTo(field.Type()) {
		field.Set(rv.Convert(field.Type()))
		return nil
	}
	return fmt.Errorf("cannot use %T as %s", val, field.Type())
}

// assignString formats numbers in decimal; reflect's int to string
// conversion would yield a rune.
func assignString(field reflect.Value, rv reflect.Value) error {
	//exhaustive:ignore
	switch rv.Kind() {
	case reflect.String:
		field.SetString(rv.String())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		field.SetString(strconv.FormatInt(rv.Int(), 10))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		field.SetString(strconv.FormatUint(rv.Uint(), 10))
	case reflect.Float32, reflect.Float64:
		field.SetString(strconv.FormatFloat(rv.Float(), 'f', -1, 64))
	case reflect.Slice:
		b, ok := rv.Interface().([]byte)
		if !ok {
			return fmt.Errorf("cannot use %s as %s", rv.Type(), field.Type())
		}
		field.SetString(string(b))
	default:
		return fmt.Errorf("cannot use %s as %s", rv.Type(), field.Type())
	}
	return nil
}

// Save inserts the record. Unset fields take their schema default.
func (r *Record) Save(ctx context.Context) error {
	s := r.model.schema
	args := make([]any, 0, len(s.fields)+1)
	for _, f := range s.fields {
		args = append(args, r.ValueOrDefault(f.Name))
	}
	args = append(args, r.ValueOrDefault(s.pk.Name))
	return r.model.write(ctx, "insert", s.insertSQL, args)
}

// Update writes every field of the record by primary key. Defaults are not
// applied.
func (r *Record) Update(ctx context.Context) error {
	s := r.model.schema
	args := make([]any, 0, len(s.fields)+1)
	for _, f := range s.fields {
		args = append(args, r.Value(f.Name))
	}
	args = append(args, r.Value(s.pk.Name))
	return r.model.write(ctx, "update", s.updateSQL, args)
}

// Remove deletes the record by primary key.
func (r *Record) Remove(ctx context.Context) error {
	s := r.model.schema
	return r.model.write(ctx, "remove", s.deleteSQL, []any{r.Value(s.pk.Name)})
}
