package orm

import (
	"fmt"
	"reflect"
)

// Field describes one table column. Default is either a value or a
// zero-argument function producing one; nil means no default.
type Field struct {
	Name       string
	Column     string // defaults to Name
	ColumnType string
	PrimaryKey bool
	Default    any
}

// FieldOption configures a Field.
type FieldOption func(*Field)

// PrimaryKey marks the field as the schema's primary key.
func PrimaryKey() FieldOption {
	return func(f *Field) {
		f.PrimaryKey = true
	}
}

// WithDefault sets the value used by save when the record leaves the field
// unset. A func() T is called each time a default is needed.
func WithDefault(v any) FieldOption {
	return func(f *Field) {
		f.Default = v
	}
}

// WithDDL overrides the column type.
func WithDDL(ddl string) FieldOption {
	return func(f *Field) {
		f.ColumnType = ddl
	}
}

// WithColumn maps the field to a column with a different name.
func WithColumn(name string) FieldOption {
	return func(f *Field) {
		f.Column = name
	}
}

func newField(name, ddl string, def any, opts []FieldOption) Field {
	f := Field{Name: name, ColumnType: ddl, Default: def}
	for _, opt := range opts {
		opt(&f)
	}
	return f
}

// StringField is a varchar(100) column with no default.
func StringField(name string, opts ...FieldOption) Field {
	return newField(name, "varchar(100)", nil, opts)
}

// IntegerField is a bigint column defaulting to 0.
func IntegerField(name string, opts ...FieldOption) Field {
	return newField(name, "bigint", int64(0), opts)
}

// FloatField is a real column defaulting to 0.0.
func FloatField(name string, opts ...FieldOption) Field {
	return newField(name, "real", 0.0, opts)
}

// TextField is a text column with no default.
func TextField(name string, opts ...FieldOption) Field {
	return newField(name, "text", nil, opts)
}

// BooleanField is a boolean column defaulting to false.
func BooleanField(name string, opts ...FieldOption) Field {
	return newField(name, "boolean", false, opts)
}

// ColumnName returns the column the field is stored in.
func (f Field) ColumnName() string {
	if f.Column != "" {
		return f.Column
	}
	return f.Name
}

// DefaultValue resolves the field default, calling it when it is a
// zero-argument function. ok is false when the field has no default.
func (f Field) DefaultValue() (v any, ok bool) {
	if f.Default == nil {
		return nil, false
	}
	fn := reflect.ValueOf(f.Default)
	if fn.Kind() == reflect.Func && fn.Type().NumIn() == 0 && fn.Type().NumOut() == 1 {
		return fn.Call(nil)[0].Interface(), true
	}
	return f.Default, true
}

func (f Field) String() string {
	return fmt.Sprintf("<%s:%s>", f.ColumnType, f.Name)
}
