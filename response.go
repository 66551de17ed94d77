package web

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
)

// redirectPrefix marks a string result as a redirect target.
const redirectPrefix = "redirect:"

// Redirect is returned from a handler to issue an HTTP redirect.
type Redirect struct {
	URL    string
	Status int
}

// Stream is a response type for binary or streaming responses.
// Return *Stream from a handler to bypass encoding.
type Stream struct {
	ContentType string
	Status      int
	Body        io.Reader
}

// HeaderSetter is optionally implemented by response types to set response headers.
type HeaderSetter interface {
	SetHeaders(h http.Header)
}

// encodeResponse shapes a handler result into a response:
//
//	nil                   204 No Content
//	*Redirect             redirect, 302 unless Status is set
//	"redirect:<url>"      302 to url
//	string                text/html
//	[]byte                application/octet-stream
//	*Stream               raw body
//	anything else         negotiated encoding, JSON by default
func encodeResponse(w http.ResponseWriter, r *http.Request, resp any, defaultStatus int, encoders []Encoder) {
	switch v := resp.(type) {
	case nil:
		w.WriteHeader(http.StatusNoContent)
		return
	case *Redirect:
		status := v.Status
		if status == 0 {
			status = http.StatusFound
		}
		http.Redirect(w, r, v.URL, status)
		return
	case string:
		if target, ok := strings.CutPrefix(v, redirectPrefix); ok {
			http.Redirect(w, r, target, http.StatusFound)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(defaultStatus)
		//nolint:errcheck,gosec // best-effort after WriteHeader
		io.WriteString(w, v)
		return
	case []byte:
		w.Header().Set("Content-Type", "application/octet-stream")
		w.WriteHeader(defaultStatus)
		//nolint:errcheck,gosec // best-effort after WriteHeader
		w.Write(v)
		return
	case *Stream:
		writeStream(w, v)
		return
	}

	if hs, ok := resp.(HeaderSetter); ok {
		hs.SetHeaders(w.Header())
	}

	status := defaultStatus

	// Let the response override the status dynamically.
	if sc, ok := resp.(StatusCoder); ok {
		status = sc.StatusCode()
	}

	enc := negotiate(encoders, r.Header.Get("Accept"))

	w.Header().Set("Content-Type", enc.ContentType()+"; charset=utf-8")
	w.WriteHeader(status)
	//nolint:errcheck,gosec // best-effort after WriteHeader
	enc.Encode(w, resp)
}

// writeStream writes a Stream response.
func writeStream(w http.ResponseWriter, s *Stream) {
	if s.ContentType != "" {
		w.Header().Set("Content-Type", s.ContentType)
	}
	status := s.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	if s.Body != nil {
		//nolint:errcheck,gosec // best-effort streaming copy
		io.Copy(w, s.Body)
	}
}

// writeErrorResponse writes an error as an RFC 9457 problem details response.
func writeErrorResponse(w http.ResponseWriter, err error) {
	var pd *ProblemDetail
	if !errors.As(err, &pd) {
		status := ErrorStatus(err)
		pd = &ProblemDetail{
			Type:   "about:blank",
			Title:  http.StatusText(status),
			Status: status,
			Detail: err.Error(),
		}
	}

	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(pd.Status)
	//nolint:errcheck,errchkjson,gosec // best-effort after WriteHeader
	json.NewEncoder(w).Encode(pd)
}
