package web

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
)

// Registrar is the interface accepted by the registration functions.
// Both *Router and *Group implement it.
type Registrar interface {
	addRoute(ri routeInfo)
	prefix() string
	getErrorHandler() ErrorHandler
	getEncoders() []Encoder
	routeMiddleware() []Middleware
}

func (r *Router) prefix() string                { return "" }
func (r *Router) getErrorHandler() ErrorHandler { return r.errorHandler }
func (r *Router) getEncoders() []Encoder        { return r.encoders }
func (r *Router) routeMiddleware() []Middleware { return nil }

// Handle validates rt and registers it. It fails with ErrRouteDefinition when
// the method, pattern or handler is missing and with ErrProfile when the
// parameters are inconsistent.
func Handle(reg Registrar, rt Route) error {
	if rt.Method == "" || rt.Pattern == "" {
		return fmt.Errorf("%w: method and pattern are required", ErrRouteDefinition)
	}
	if !strings.HasPrefix(rt.Pattern, "/") {
		return fmt.Errorf("%w: pattern %q must start with /", ErrRouteDefinition, rt.Pattern)
	}
	if rt.Handler == nil {
		return fmt.Errorf("%w: %s %s has no handler", ErrRouteDefinition, rt.Method, rt.Pattern)
	}

	profile, err := NewProfile(rt.Params...)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %w", ErrRouteDefinition, rt.Method, rt.Pattern, err)
	}

	pattern := reg.prefix() + rt.Pattern
	ri := routeInfo{
		method:       strings.ToUpper(rt.Method),
		pattern:      pattern,
		profile:      profile,
		placeholders: placeholders(pattern),
	}
	for _, opt := range rt.Options {
		opt(&ri)
	}
	if ri.status == 0 {
		ri.status = http.StatusOK
	}

	ri.handler = buildHandler(&ri, rt.Handler, reg.getErrorHandler(), reg.getEncoders())

	// Apply route-level middleware (from Group).
	routeMW := reg.routeMiddleware()
	for i := len(routeMW) - 1; i >= 0; i-- {
		ri.handler = routeMW[i](ri.handler)
	}

	slog.Info("add route", "method", ri.method, "pattern", ri.pattern, "params", profile.Names())
	reg.addRoute(ri)
	return nil
}

// AddRoutes registers every valid route and returns the joined errors of
// the invalid ones.
func AddRoutes(reg Registrar, routes ...Route) error {
	var errs []error
	for _, rt := range routes {
		if err := Handle(reg, rt); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// buildHandler adapts a HandlerFunc to an http.Handler: bind, call, shape.
func buildHandler(ri *routeInfo, h HandlerFunc, errHandler ErrorHandler, encoders []Encoder) http.Handler {
	writeErr := func(w http.ResponseWriter, r *http.Request, err error) {
		if errHandler != nil {
			errHandler(w, r, err)
			return
		}
		writeErrorResponse(w, err)
	}

	profile, names, status, limit := ri.profile, ri.placeholders, ri.status, ri.bodyLimit

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if limit > 0 && r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, limit)
		}

		args, err := bindArgs(profile, names, r)
		if err != nil {
			writeErr(w, r, err)
			return
		}

		slog.DebugContext(r.Context(), "call handler", "pattern", r.Pattern, "args", len(args))
		resp, err := h(r.Context(), args)
		if err != nil {
			var apiErr *APIError
			if errors.As(err, &apiErr) {
				encodeResponse(w, r, apiErr, http.StatusOK, encoders)
				return
			}
			writeErr(w, r, err)
			return
		}

		encodeResponse(w, r, resp, status, encoders)
	})
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

// Get registers a GET handler. It panics on an invalid definition.
func Get(reg Registrar, pattern string, h HandlerFunc, params ...Param) {
	must(Handle(reg, GET(pattern, h, params...)))
}

// Post registers a POST handler. It panics on an invalid definition.
func Post(reg Registrar, pattern string, h HandlerFunc, params ...Param) {
	must(Handle(reg, POST(pattern, h, params...)))
}

// Put registers a PUT handler. It panics on an invalid definition.
func Put(reg Registrar, pattern string, h HandlerFunc, params ...Param) {
	must(Handle(reg, PUT(pattern, h, params...)))
}

// Delete registers a DELETE handler. It panics on an invalid definition.
func Delete(reg Registrar, pattern string, h HandlerFunc, params ...Param) {
	must(Handle(reg, DELETE(pattern, h, params...)))
}
