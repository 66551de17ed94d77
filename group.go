package web

// Group is a collection of routes under a shared prefix with shared middleware.
type Group struct {
	router     *Router
	pathPrefix string
	middleware []Middleware
}

// Group creates a route group. Routes registered on it get prefix prepended
// and mw applied after the router's global middleware.
func (r *Router) Group(prefix string, mw ...Middleware) *Group {
	return &Group{
		router:     r,
		pathPrefix: prefix,
		middleware: mw,
	}
}

// AddRoutes registers routes on the group. See AddRoutes.
func (g *Group) AddRoutes(routes ...Route) error { return AddRoutes(g, routes...) }

func (g *Group) addRoute(ri routeInfo)         { g.router.addRoute(ri) }
func (g *Group) prefix() string                { return g.router.prefix() + g.pathPrefix }
func (g *Group) getErrorHandler() ErrorHandler { return g.router.errorHandler }
func (g *Group) getEncoders() []Encoder        { return g.router.encoders }
func (g *Group) routeMiddleware() []Middleware { return g.middleware }
