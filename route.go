package web

import (
	"net/http"
	"strings"
)

// Route declares a handler together with its method, path pattern and
// parameter profile.
type Route struct {
	Method  string
	Pattern string
	Handler HandlerFunc
	Params  []Param
	Options []RouteOption
}

// GET declares a GET route.
func GET(pattern string, h HandlerFunc, params ...Param) Route {
	return Route{Method: http.MethodGet, Pattern: pattern, Handler: h, Params: params}
}

// POST declares a POST route.
func POST(pattern string, h HandlerFunc, params ...Param) Route {
	return Route{Method: http.MethodPost, Pattern: pattern, Handler: h, Params: params}
}

// PUT declares a PUT route.
func PUT(pattern string, h HandlerFunc, params ...Param) Route {
	return Route{Method: http.MethodPut, Pattern: pattern, Handler: h, Params: params}
}

// DELETE declares a DELETE route.
func DELETE(pattern string, h HandlerFunc, params ...Param) Route {
	return Route{Method: http.MethodDelete, Pattern: pattern, Handler: h, Params: params}
}

// With returns a copy of the route with opts appended.
func (rt Route) With(opts ...RouteOption) Route {
	rt.Options = append(append([]RouteOption(nil), rt.Options...), opts...)
	return rt
}

// routeInfo holds what a registered route needs at request time.
type routeInfo struct {
	method       string
	pattern      string
	status       int
	bodyLimit    int64
	profile      Profile
	placeholders []string

	handler http.Handler
}

// RouteOption configures a route at registration time.
type RouteOption func(*routeInfo)

// WithStatus sets the HTTP status code for successful responses.
func WithStatus(code int) RouteOption {
	return func(ri *routeInfo) {
		ri.status = code
	}
}

// WithBodyLimit sets a per-route maximum request body size in bytes.
// This overrides any global BodyLimit middleware for this route.
func WithBodyLimit(maxBytes int64) RouteOption {
	return func(ri *routeInfo) {
		ri.bodyLimit = maxBytes
	}
}

// placeholders returns the names of the {name} and {name...} wildcards in a
// ServeMux pattern, in order.
func placeholders(pattern string) []string {
	var names []string
	for {
		start := strings.IndexByte(pattern, '{')
		if start < 0 {
			return names
		}
		end := strings.IndexByte(pattern[start:], '}')
		if end < 0 {
			return names
		}
		name := strings.TrimSuffix(pattern[start+1:start+end], "...")
		if name != "" && name != "$" {
			names = append(names, name)
		}
		pattern = pattern[start+end+1:]
	}
}
