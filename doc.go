// Package web is a small HTTP framework built around declared handler
// parameters. A handler never sees http.ResponseWriter; it receives the
// arguments the framework extracted for it and returns a value that is shaped
// into a response:
//
//	type HandlerFunc func(ctx context.Context, args Args) (any, error)
//
// Each route declares its parameters, and that profile drives binding:
//
//	r := web.New()
//	web.Get(r, "/api/blogs/{id}", getBlog, web.Arg("id"))
//	web.Post(r, "/api/users", register, web.Required("name"), web.Required("email"))
//	web.Post(r, "/api/blogs", createBlog, web.Extra())
//
// Named parameters come from the query string (GET, DELETE) or from a JSON
// or form body (POST, PUT, PATCH). Only declared names are kept unless the
// handler takes Extra. Path placeholders always win over query and body
// values. A missing required parameter is a 400.
//
// Results map to responses by type: nil is 204, a string is HTML (or a
// redirect when it starts with "redirect:"), []byte is a download, and
// anything else is encoded as JSON. An *APIError is reported to the client as
// a JSON payload rather than as an HTTP failure.
//
// Middleware uses the standard func(http.Handler) http.Handler signature,
// so the entire Go middleware ecosystem works natively.
package web
