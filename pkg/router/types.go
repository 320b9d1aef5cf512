package router

import (
	"github.com/vango-dev/isorouter/pkg/pathmatch"
)

// Location describes a dispatched URL. A fresh Location is built for
// every Route call and is not retained by the router.
type Location struct {
	// URL is the string passed to Route.
	URL string `json:"url"`

	// Path is URL without its query string.
	Path string `json:"path"`

	// Params are the named path parameters of the matched pattern.
	// Empty (never nil) when nothing matched.
	Params map[string]string `json:"params"`

	// Query maps decoded query keys to decoded values.
	Query map[string]string `json:"query"`

	// QueryString is the raw text after the first "?".
	QueryString string `json:"queryString"`

	// Pattern is the matched registration pattern, "" when nothing matched.
	Pattern string `json:"pattern,omitempty"`
}

// Bind copies Params into the `param`-tagged fields of target.
func (l Location) Bind(target any) error {
	return pathmatch.Bind(l.Params, target)
}

// Handler handles a dispatched route. It must eventually call done; the
// router neither times it out nor inspects anything it returns.
type Handler func(done Done, loc Location, ctx any, preRouted bool)

// FinishFunc receives the effective outcome of a dispatch. Exactly one of
// data, redirect and err is set, or none of them when no route matched.
type FinishFunc func(loc Location, data any, redirect string, err error)

// registration pairs a compiled pattern with its handler. Registrations
// are never modified after Use appends them.
type registration struct {
	pattern *pathmatch.Pattern
	handler Handler
}

func noopFinish(Location, any, string, error) {}
