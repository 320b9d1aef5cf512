package server

import (
	stderrors "errors"
	"maps"
	"time"

	"github.com/vango-dev/isorouter/internal/config"
	"github.com/vango-dev/isorouter/internal/errors"
	"github.com/vango-dev/isorouter/pkg/pathmatch"
	"github.com/vango-dev/isorouter/pkg/router"
)

// Table is an immutable route table that can build any number of routers.
type Table struct {
	routes  []config.RouteSpec
	context map[string]any
}

// NewTable checks that every pattern in cfg compiles.
func NewTable(cfg *config.Config) (*Table, error) {
	for _, spec := range cfg.Routes {
		if _, err := pathmatch.Compile(spec.Pattern); err != nil {
			return nil, errors.New("R001").WithDetail("pattern " + spec.Pattern).Wrap(err)
		}
	}
	return &Table{
		routes:  append([]config.RouteSpec(nil), cfg.Routes...),
		context: maps.Clone(cfg.Context),
	}, nil
}

// Routes returns the route specs in priority order.
func (t *Table) Routes() []config.RouteSpec {
	return append([]config.RouteSpec(nil), t.routes...)
}

// Len returns the number of routes.
func (t *Table) Len() int {
	return len(t.routes)
}

// Build returns a new router with every route registered in order and the
// table's context set.
func (t *Table) Build(opts ...router.Option) (*router.Router, error) {
	if t.context != nil {
		opts = append([]router.Option{router.WithContext(maps.Clone(t.context))}, opts...)
	}
	r := router.New(opts...)
	for _, spec := range t.routes {
		if err := r.Use(spec.Pattern, routeHandler(spec)); err != nil {
			return nil, errors.New("R001").WithDetail("pattern " + spec.Pattern).Wrap(err)
		}
	}
	return r, nil
}

// routeHandler reports the outcome configured by spec, after its delay.
func routeHandler(spec config.RouteSpec) router.Handler {
	delay := spec.DelayDuration()
	return func(done router.Done, loc router.Location, _ any, _ bool) {
		if delay <= 0 {
			done(outcome(spec, loc))
			return
		}
		time.AfterFunc(delay, func() {
			done(outcome(spec, loc))
		})
	}
}

// outcome applies error > redirect > data. Path params are added to the
// data and win over data keys of the same name.
func outcome(spec config.RouteSpec, loc router.Location) router.Result {
	switch {
	case spec.Error != "":
		return router.Fail(stderrors.New(spec.Error))
	case spec.Redirect != "":
		return router.Redirect(spec.Redirect)
	}

	data := make(map[string]any, len(spec.Data)+len(loc.Params))
	maps.Copy(data, spec.Data)
	for k, v := range loc.Params {
		data[k] = v
	}
	return router.Ok(data)
}
