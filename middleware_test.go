package web_test

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bjaus/web"
	"github.com/bjaus/web/apitest"
)

func TestRecovery(t *testing.T) {
	t.Parallel()

	r := web.New()
	r.Use(web.Recovery())
	web.Get(r, "/panic", func(context.Context, web.Args) (any, error) {
		panic("boom")
	})
	c := apitest.NewClient(t, r)

	resp := apitest.Get[web.ProblemDetail](t, c, "/panic", nil)
	assert.Equal(t, http.StatusInternalServerError, resp.Status)
	require.NotNil(t, resp.Body)
	assert.Equal(t, "Internal Server Error", resp.Body.Detail)
}

func TestTimeout(t *testing.T) {
	t.Parallel()

	r := web.New()
	r.Use(web.Timeout(10 * time.Millisecond))
	web.Get(r, "/slow", func(ctx context.Context, _ web.Args) (any, error) {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Second):
			return "late", nil
		}
	})
	c := apitest.NewClient(t, r)

	resp := apitest.Get[web.ProblemDetail](t, c, "/slow", nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.Status)
}

func TestBodyLimit(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		global     int64
		route      []web.RouteOption
		body       string
		wantStatus int
	}{
		"under the limit": {
			global:     64,
			body:       `{"a":"b"}`,
			wantStatus: http.StatusOK,
		},
		"over the global limit": {
			global:     8,
			body:       `{"a":"` + strings.Repeat("x", 64) + `"}`,
			wantStatus: http.StatusRequestEntityTooLarge,
		},
		"over the route limit": {
			route:      []web.RouteOption{web.WithBodyLimit(8)},
			body:       `{"a":"` + strings.Repeat("x", 64) + `"}`,
			wantStatus: http.StatusRequestEntityTooLarge,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			r := web.New()
			if tc.global > 0 {
				r.Use(web.BodyLimit(tc.global))
			}
			require.NoError(t, r.AddRoutes(web.POST("/items", echo, web.Extra()).With(tc.route...)))
			c := apitest.NewClient(t, r)

			resp := apitest.PostRaw[any](t, c, "/items", "application/json", tc.body)
			assert.Equal(t, tc.wantStatus, resp.Status)
		})
	}
}

func TestRequestID(t *testing.T) {
	t.Parallel()

	var seen string
	r := web.New()
	r.Use(web.RequestID())
	web.Get(r, "/", func(ctx context.Context, _ web.Args) (any, error) {
		seen = web.RequestIDFrom(ctx)
		return nil, nil
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	generated := w.Header().Get(web.RequestIDHeader)
	assert.Len(t, generated, 36)
	assert.Equal(t, generated, seen)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(web.RequestIDHeader, "client-id")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "client-id", w.Header().Get(web.RequestIDHeader))
	assert.Equal(t, "client-id", seen)

	assert.Empty(t, web.RequestIDFrom(context.Background()))
}

func TestLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	r := web.New()
	r.Use(web.RequestID(), web.Logger(logger))
	web.Get(r, "/items/{id}", returning("ok"), web.Arg("id"))
	web.Get(r, "/fail", func(context.Context, web.Args) (any, error) {
		return nil, web.Error(http.StatusBadGateway, "upstream")
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/items/1", nil))
	out := buf.String()
	assert.Contains(t, out, "level=INFO")
	assert.Contains(t, out, "path=/items/1")
	assert.Contains(t, out, "status=200")
	assert.Contains(t, out, "request_id=")
	assert.Contains(t, out, `route="GET /items/{id}"`)

	buf.Reset()
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/fail", nil))
	assert.Contains(t, buf.String(), "level=ERROR")
	assert.Contains(t, buf.String(), "status=502")
}

func TestRateLimit(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		rate        float64
		burst       int
		numReqs     int
		wantOK      int
		wantLimited int
	}{
		"requests within rate succeed": {
			rate:    100,
			burst:   10,
			numReqs: 5,
			wantOK:  5,
		},
		"requests exceeding rate get 429": {
			rate:        1,
			burst:       1,
			numReqs:     5,
			wantOK:      1,
			wantLimited: 4,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			r := web.New()
			r.Use(web.RateLimit(web.RateLimitConfig{Rate: tc.rate, Burst: tc.burst}))
			web.Get(r, "/", returning("ok"))

			var okCount, limited int
			for range tc.numReqs {
				w := httptest.NewRecorder()
				r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
				switch w.Code {
				case http.StatusOK:
					okCount++
				case http.StatusTooManyRequests:
					limited++
					assert.Equal(t, "1", w.Header().Get("Retry-After"))
				}
			}
			assert.Equal(t, tc.wantOK, okCount)
			assert.Equal(t, tc.wantLimited, limited)
		})
	}
}

func TestRateLimit_per_key(t *testing.T) {
	t.Parallel()

	r := web.New()
	r.Use(web.RateLimit(web.RateLimitConfig{
		Rate:    1,
		Burst:   1,
		KeyFunc: func(req *http.Request) string { return req.Header.Get("X-Client") },
	}))
	web.Get(r, "/", returning("ok"))

	call := func(client string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Client", client)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, call("a"))
	assert.Equal(t, http.StatusTooManyRequests, call("a"))
	assert.Equal(t, http.StatusOK, call("b"))
}
