package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
)

// maxMultipartMemory is the maximum memory used for multipart form parsing (32 MB).
const maxMultipartMemory = 32 << 20

// bodyMethod reports whether arguments come from the request body.
func bodyMethod(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return true
	}
	return false
}

// queryMethod reports whether arguments come from the query string. HEAD
// is served by every GET route.
func queryMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodDelete:
		return true
	}
	return false
}

// bindArgs extracts the arguments for one request.
//
// A nil map from the body or query step means no source produced anything,
// which is different from a source that produced an empty map: only the
// former falls back to the path values alone.
func bindArgs(p Profile, placeholders []string, r *http.Request) (Args, error) {
	var args Args
	if p.NeedsArgs() {
		var err error
		switch {
		case bodyMethod(r.Method):
			args, err = readBody(r)
		case queryMethod(r.Method):
			args = readQuery(r.URL.RawQuery)
		}
		if err != nil {
			return nil, err
		}
	}

	path := pathArgs(r, placeholders)
	if args == nil {
		args = path
	} else {
		if !p.catchAll && len(p.named) > 0 {
			filtered := make(Args, len(p.named)+len(path))
			for _, name := range p.named {
				if v, ok := args[name]; ok {
					filtered[name] = v
				}
			}
			args = filtered
		}
		for name, v := range path {
			if _, ok := args[name]; ok {
				slog.WarnContext(r.Context(), "duplicate arg name in named arg and kw args", "name", name)
			}
			args[name] = v
		}
	}

	if p.request != "" {
		args[p.request] = r
	}

	for _, name := range p.required {
		if _, ok := args[name]; !ok {
			return nil, badRequest(fmt.Errorf("%w: %s", ErrMissingArgument, name))
		}
	}
	return args, nil
}

// pathArgs returns the route's placeholder values. The map is never nil.
func pathArgs(r *http.Request, placeholders []string) Args {
	args := make(Args, len(placeholders))
	for _, name := range placeholders {
		args[name] = r.PathValue(name)
	}
	return args
}

// readQuery parses a query string keeping the first value of each key and
// blank values. An empty query string yields nil.
func readQuery(raw string) Args {
	if raw == "" {
		return nil
	}
	// Malformed pairs are skipped; ParseQuery still returns the rest.
	values, _ := url.ParseQuery(raw)
	args := make(Args, len(values))
	for k, vs := range values {
		if len(vs) > 0 {
			args[k] = vs[0]
		}
	}
	return args
}

// readBody parses the body by content type: a JSON object or a form.
func readBody(r *http.Request) (Args, error) {
	ct := r.Header.Get("Content-Type")
	if ct == "" {
		return nil, badRequest(ErrMissingContentType)
	}

	switch lower := strings.ToLower(ct); {
	case strings.HasPrefix(lower, "application/json"):
		return readJSON(r)
	case strings.HasPrefix(lower, "application/x-www-form-urlencoded"),
		strings.HasPrefix(lower, "multipart/form-data"):
		return readForm(r, strings.HasPrefix(lower, "multipart/"))
	default:
		return nil, badRequest(fmt.Errorf("%w: %s", ErrUnsupportedContentType, ct))
	}
}

func readJSON(r *http.Request) (Args, error) {
	if r.Body == nil {
		return nil, badRequest(fmt.Errorf("%w: empty body", ErrMalformedBody))
	}
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, bodyError(err)
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, badRequest(ErrBodyNotObject)
	}
	return Args(obj), nil
}

func readForm(r *http.Request, multi bool) (Args, error) {
	var err error
	if multi {
		err = r.ParseMultipartForm(maxMultipartMemory)
	} else {
		err = r.ParseForm()
	}
	if err != nil {
		return nil, bodyError(err)
	}

	args := make(Args, len(r.PostForm))
	for k, vs := range r.PostForm {
		if len(vs) > 0 {
			args[k] = vs[0]
		}
	}
	if r.MultipartForm != nil {
		for k, fhs := range r.MultipartForm.File {
			if _, ok := args[k]; !ok && len(fhs) > 0 {
				args[k] = fhs[0]
			}
		}
	}
	return args, nil
}

// bodyError maps a body read failure to its response status.
func bodyError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return &HTTPError{Status: http.StatusRequestEntityTooLarge, Message: "request body too large", err: err}
	}
	return badRequest(fmt.Errorf("%w: %w", ErrMalformedBody, err))
}
