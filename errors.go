package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Definition-time errors, returned when a route or profile is registered.
var (
	ErrRouteDefinition = errors.New("route definition")
	ErrProfile         = errors.New("parameter profile")
	ErrRequestNotLast  = fmt.Errorf("%w: request parameter must be the last named parameter", ErrProfile)
)

// Request-time binding errors. They reach the client as 400 responses.
var (
	ErrMissingContentType     = errors.New("missing content-type")
	ErrUnsupportedContentType = errors.New("unsupported content-type")
	ErrBodyNotObject          = errors.New("json body must be object")
	ErrMalformedBody          = errors.New("malformed body")
	ErrMissingArgument        = errors.New("missing argument")
)

// StatusCoder is implemented by errors or responses that carry an HTTP status code.
type StatusCoder interface {
	StatusCode() int
}

// ProblemDetail is an RFC 9457 problem details response.
//
//nolint:errname // RFC 9457 standard name
type ProblemDetail struct {
	Type     string `json:"type,omitempty"`
	Title    string `json:"title,omitempty"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
}

// Error returns the detail message (or title if detail is empty).
func (p *ProblemDetail) Error() string {
	if p.Detail != "" {
		return p.Detail
	}
	return p.Title
}

// StatusCode returns the HTTP status code.
func (p *ProblemDetail) StatusCode() int { return p.Status }

// HTTPError is an error with an HTTP status code. It may wrap the error that
// caused it.
type HTTPError struct {
	Status  int    `json:"status"`
	Message string `json:"message"`

	err error
}

// Error returns the error message.
func (e *HTTPError) Error() string { return e.Message }

// StatusCode returns the HTTP status code.
func (e *HTTPError) StatusCode() int { return e.Status }

// Unwrap returns the wrapped cause, if any.
func (e *HTTPError) Unwrap() error { return e.err }

// Error returns an error with the given HTTP status code and message.
func Error(status int, message string) error {
	return &HTTPError{Status: status, Message: message}
}

// Errorf returns a formatted error with the given HTTP status code.
func Errorf(status int, format string, args ...any) error {
	return &HTTPError{Status: status, Message: fmt.Sprintf(format, args...)}
}

// badRequest turns a binding failure into a 400 that still matches its
// sentinel with errors.Is.
func badRequest(err error) error {
	return &HTTPError{Status: http.StatusBadRequest, Message: err.Error(), err: err}
}

// ErrorStatus extracts the HTTP status code from an error. An expired request
// deadline is 503; other errors that do not implement StatusCoder are 500.
func ErrorStatus(err error) int {
	var sc StatusCoder
	if errors.As(err, &sc) {
		return sc.StatusCode()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// APIError is a domain error raised by a handler. It is not a failure of the
// request: the binder renders it as a {error, data, message} payload.
type APIError struct {
	Code    string `json:"error"`
	Data    any    `json:"data"`
	Message string `json:"message"`
}

// NewAPIError returns an APIError.
func NewAPIError(code string, data any, message string) *APIError {
	return &APIError{Code: code, Data: data, Message: message}
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return e.Code
	}
	return e.Code + ": " + e.Message
}

// InvalidValue reports bad or missing input for field.
func InvalidValue(field, message string) *APIError {
	return NewAPIError("value:invalid", field, message)
}

// ResourceNotFound reports that the resource named by field does not exist.
func ResourceNotFound(field, message string) *APIError {
	return NewAPIError("value:notfound", field, message)
}

// PermissionDenied reports that the caller may not perform the operation.
func PermissionDenied(message string) *APIError {
	return NewAPIError("permission:forbidden", "permission", message)
}
