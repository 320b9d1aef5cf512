package router

import (
	"sync/atomic"

	"github.com/vango-dev/isorouter/pkg/history"
)

// StartRouting routes every location published by src. The first dispatch
// is marked preRouted, since the initial location has already been
// resolved upstream; every later one is not. If src knows its current
// location, that location is routed immediately and counts as the first
// dispatch. The returned function stops listening.
func (r *Router) StartRouting(src history.Source, finish FinishFunc) (stop func()) {
	var first atomic.Bool
	first.Store(true)

	dispatch := func(loc history.Location) {
		r.Route(loc.URL(), finish, first.Swap(false))
	}

	if cur, ok := src.(history.Current); ok {
		dispatch(cur.Current())
	}
	return src.Listen(dispatch)
}
