// Package apitest provides test helpers for routers built with web.
package apitest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/bjaus/web"
)

// Client wraps an httptest.Server for convenient API testing. Redirects are
// not followed so tests can assert on them; cookies are kept between calls.
type Client struct {
	Server *httptest.Server
	http   *http.Client
}

// NewClient creates a test client from a router.
func NewClient(t testing.TB, r *web.Router) *Client {
	t.Helper()
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookie jar: %v", err)
	}
	return &Client{
		Server: srv,
		http: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// Response holds a decoded API response. Body is set when the response is
// JSON and decodes into T; Text always holds the raw body.
type Response[T any] struct {
	Status  int
	Headers http.Header
	Body    *T
	Text    string
}

// Get sends a GET request with query appended to path.
func Get[Resp any](t testing.TB, c *Client, path string, query url.Values) *Response[Resp] {
	t.Helper()
	return do[Resp](t, c, http.MethodGet, withQuery(path, query), "", nil)
}

// Delete sends a DELETE request with query appended to path.
func Delete[Resp any](t testing.TB, c *Client, path string, query url.Values) *Response[Resp] {
	t.Helper()
	return do[Resp](t, c, http.MethodDelete, withQuery(path, query), "", nil)
}

// PostJSON sends a POST request with body encoded as JSON.
func PostJSON[Resp any](t testing.TB, c *Client, path string, body any) *Response[Resp] {
	t.Helper()
	return send[Resp](t, c, http.MethodPost, path, body)
}

// PutJSON sends a PUT request with body encoded as JSON.
func PutJSON[Resp any](t testing.TB, c *Client, path string, body any) *Response[Resp] {
	t.Helper()
	return send[Resp](t, c, http.MethodPut, path, body)
}

// PostForm sends a POST request with a urlencoded form body.
func PostForm[Resp any](t testing.TB, c *Client, path string, form url.Values) *Response[Resp] {
	t.Helper()
	return do[Resp](t, c, http.MethodPost, path, "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
}

// PostRaw sends a POST request with an arbitrary content type and body.
// An empty contentType sends no Content-Type header.
func PostRaw[Resp any](t testing.TB, c *Client, path, contentType, body string) *Response[Resp] {
	t.Helper()
	return do[Resp](t, c, http.MethodPost, path, contentType, strings.NewReader(body))
}

func withQuery(path string, query url.Values) string {
	if len(query) == 0 {
		return path
	}
	return path + "?" + query.Encode()
}

func send[Resp any](t testing.TB, c *Client, method, path string, body any) *Response[Resp] {
	t.Helper()
	b, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("apitest: marshal request body: %v", err)
	}
	return do[Resp](t, c, method, path, "application/json", bytes.NewReader(b))
}

func do[Resp any](t testing.TB, c *Client, method, path, contentType string, body io.Reader) *Response[Resp] {
	t.Helper()

	req, err := http.NewRequestWithContext(context.Background(), method, c.Server.URL+path, body)
	if err != nil {
		t.Fatalf("apitest: create request: %v", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		t.Fatalf("apitest: execute request: %v", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			t.Errorf("apitest: close body: %v", closeErr)
		}
	}()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("apitest: read body: %v", err)
	}

	result := &Response[Resp]{
		Status:  resp.StatusCode,
		Headers: resp.Header,
		Text:    string(raw),
	}

	if strings.Contains(resp.Header.Get("Content-Type"), "json") && len(raw) > 0 {
		var decoded Resp
		if json.Unmarshal(raw, &decoded) == nil {
			result.Body = &decoded
		}
	}
	return result
}
