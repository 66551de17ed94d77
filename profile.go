package web

import "fmt"

// ParamKind says how a handler parameter receives its value.
type ParamKind int

const (
	KindPositional ParamKind = iota // plain parameter, usually a path placeholder
	KindNamed                       // keyword parameter from the query, body or path
	KindCatchAll                    // receives every extracted argument unfiltered
	KindRequest                     // receives the *http.Request itself
)

// Param declares one handler parameter.
type Param struct {
	Name     string
	Kind     ParamKind
	Required bool
}

// Arg declares a plain parameter. It does not by itself make the binder read
// the query or body.
func Arg(name string) Param { return Param{Name: name, Kind: KindPositional} }

// Optional declares a named parameter that may be absent.
func Optional(name string) Param { return Param{Name: name, Kind: KindNamed} }

// Required declares a named parameter; requests without it fail with 400.
func Required(name string) Param { return Param{Name: name, Kind: KindNamed, Required: true} }

// Extra declares a catch-all parameter: every extracted argument is passed
// through, not just the declared ones.
func Extra() Param { return Param{Name: "kw", Kind: KindCatchAll} }

// RawRequest declares a parameter receiving the *http.Request under the name
// "request". It must not be followed by a plain parameter.
func RawRequest() Param { return Param{Name: "request", Kind: KindRequest} }

// Profile is what the binder needs to know about a handler's parameters. It
// is computed once when the route is registered.
type Profile struct {
	params   []Param
	request  string
	catchAll bool
	named    []string
	required []string
}

// NewProfile validates params and derives a Profile from them.
func NewProfile(params ...Param) (Profile, error) {
	p := Profile{params: append([]Param(nil), params...)}
	seen := make(map[string]bool, len(params))

	for _, param := range params {
		if param.Name == "" {
			return Profile{}, fmt.Errorf("%w: parameter without a name", ErrProfile)
		}
		if seen[param.Name] {
			return Profile{}, fmt.Errorf("%w: duplicate parameter %q", ErrProfile, param.Name)
		}
		seen[param.Name] = true

		switch param.Kind {
		case KindPositional:
			if p.request != "" {
				return Profile{}, fmt.Errorf("%w: %q follows %q", ErrRequestNotLast, param.Name, p.request)
			}
		case KindNamed:
			p.named = append(p.named, param.Name)
			if param.Required {
				p.required = append(p.required, param.Name)
			}
		case KindCatchAll:
			if p.catchAll {
				return Profile{}, fmt.Errorf("%w: more than one catch-all parameter", ErrProfile)
			}
			p.catchAll = true
		case KindRequest:
			if p.request != "" {
				return Profile{}, fmt.Errorf("%w: more than one request parameter", ErrProfile)
			}
			p.request = param.Name
		default:
			return Profile{}, fmt.Errorf("%w: unknown kind %d for %q", ErrProfile, param.Kind, param.Name)
		}
	}
	return p, nil
}

// HasRequest reports whether the handler takes the raw request.
func (p Profile) HasRequest() bool { return p.request != "" }

// HasCatchAll reports whether the handler takes every argument.
func (p Profile) HasCatchAll() bool { return p.catchAll }

// Named returns the named parameters in declaration order.
func (p Profile) Named() []string { return append([]string(nil), p.named...) }

// Required returns the required named parameters in declaration order.
func (p Profile) Required() []string { return append([]string(nil), p.required...) }

// NeedsArgs reports whether the query string or body must be read.
func (p Profile) NeedsArgs() bool {
	return p.catchAll || len(p.named) > 0
}

// Names returns every declared parameter name.
func (p Profile) Names() []string {
	names := make([]string, len(p.params))
	for i, param := range p.params {
		names[i] = param.Name
	}
	return names
}
