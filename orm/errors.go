package orm

import (
	"errors"
	"fmt"
)

// Schema definition errors. Every one of them wraps ErrSchema.
var (
	ErrSchema              = errors.New("schema")
	ErrMissingPrimaryKey   = fmt.Errorf("%w: primary key not found", ErrSchema)
	ErrDuplicatePrimaryKey = fmt.Errorf("%w: duplicate primary key", ErrSchema)
	ErrDuplicateField      = fmt.Errorf("%w: duplicate field", ErrSchema)
	ErrEmptyName           = fmt.Errorf("%w: empty name", ErrSchema)
)

// ErrInvalidLimit is returned by FindAll when Limit was given neither one
// value nor an offset and count pair.
var ErrInvalidLimit = errors.New("invalid limit value")

// ErrAffectedRows is returned in strict mode when a save, update or remove
// touched a row count other than one.
var ErrAffectedRows = errors.New("unexpected affected rows")

// ErrScan is returned when a record value cannot be stored in a struct field.
var ErrScan = errors.New("scan record")
