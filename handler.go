package web

import (
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"reflect"
	"strconv"
	"time"

	"github.com/muir/reflectutils"
)

// HandlerFunc is the core handler signature. A handler receives the
// arguments the binder extracted for its Profile and returns a value the
// router shapes into a response.
type HandlerFunc func(ctx context.Context, args Args) (any, error)

// Args are the arguments extracted for one request. Values are strings from
// the query string, path and forms, json values from JSON bodies, a
// *multipart.FileHeader for uploaded files and the *http.Request itself when
// the profile asks for it.
type Args map[string]any

// Has reports whether name was supplied.
func (a Args) Has(name string) bool {
	_, ok := a[name]
	return ok
}

// String returns an argument as a string; missing arguments are "".
func (a Args) String(name string) string {
	switch v := a[name].(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// Int returns an argument as an int, or def when it is missing or not a number.
func (a Args) Int(name string, def int) int {
	switch v := a[name].(type) {
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return int(n)
		}
	case float64:
		return int(v)
	case int:
		return v
	}
	return def
}

// File returns an uploaded multipart file.
func (a Args) File(name string) (*multipart.FileHeader, bool) {
	fh, ok := a[name].(*multipart.FileHeader)
	return fh, ok
}

// Request returns the raw request if the profile asked for it.
func (a Args) Request() *http.Request {
	for _, v := range a {
		if r, ok := v.(*http.Request); ok {
			return r
		}
	}
	return nil
}

// Decode copies the arguments into the struct dst points to. Fields are
// matched by their arg tag; untagged fields and missing arguments are left
// alone.
func (a Args) Decode(dst any) error {
	v := reflect.ValueOf(dst)
	if v.Kind() != reflect.Pointer || v.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("decode args: destination must be a struct pointer, got %T", dst)
	}
	v = v.Elem()

	var err error
	reflectutils.WalkStructElements(v.Type(), func(f reflect.StructField) bool {
		name, ok := f.Tag.Lookup("arg")
		if !ok || name == "-" {
			return true
		}
		val, set := a[name]
		if !set || val == nil || err != nil {
			return false
		}
		field, ferr := v.FieldByIndexErr(f.Index)
		if ferr != nil || !field.CanSet() {
			return false
		}
		if serr := setArgValue(field, val); serr != nil {
			err = badRequest(fmt.Errorf("%w: %s: %w", ErrMalformedBody, name, serr))
		}
		return false
	})
	return err
}

func setArgValue(field reflect.Value, val any) error {
	switch v := val.(type) {
	case string:
		return setFieldValue(field, v)
	case json.Number:
		return setFieldValue(field, v.String())
	}

	rv := reflect.ValueOf(val)
	if rv.Type().AssignableTo(field.Type()) {
		field.Set(rv)
		return nil
	}
	if rv.Type().ConvertibleTo(field.Type()) && rv.Kind() != reflect.String {
		field.Set(rv.Convert(field.Type()))
		return nil
	}
	return fmt.Errorf("cannot use %T as %s", val, field.Type())
}

// setFieldValue parses a textual argument into a scalar field.
func setFieldValue(field reflect.Value, value string) error {
	if field.Type() == reflect.TypeFor[time.Duration]() {
		d, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		field.Set(reflect.ValueOf(d))
		return nil
	}

	//exhaustive:ignore
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Int, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return err
		}
		field.SetInt(n)
	case reflect.Float32, reflect.Float64:
		n, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}
		field.SetFloat(n)
	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		field.SetBool(b)
	default:
		return fmt.Errorf("unsupported type: %s", field.Type())
	}
	return nil
}
