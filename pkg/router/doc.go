// Package router dispatches URLs to registered handlers and delivers only
// the outcome of the most recently dispatched route.
//
// The router provides:
//   - Ordered registrations; the first pattern that matches wins
//   - Location descriptors with path params and decoded query
//   - A completion protocol (success, redirect, error) for async handlers
//   - A latest-route-wins guard that drops stale completions
//   - History integration via StartRouting
//
// # Registration
//
// Patterns use the pathmatch syntax. Registration order is priority order,
// so a broad pattern registered first shadows a more specific one
// registered later:
//
//	r := router.New()
//	r.MustUse("/bar/:x", showBar)
//	r.MustUse("/bar/nog", neverReached)
//
// # Handlers
//
// A handler receives a Done callback, the Location, the router context and
// the preRouted flag. It may finish synchronously or from another
// goroutine:
//
//	r.MustUse("/users/:id", func(done router.Done, loc router.Location, ctx any, preRouted bool) {
//	    go func() {
//	        user, err := load(loc.Params["id"])
//	        if err != nil {
//	            done.Error(err)
//	            return
//	        }
//	        done.Ok(user)
//	    }()
//	})
//
// # Latest Route Wins
//
// Every Route call supersedes the one before it. When a handler finishes,
// its outcome reaches the finish callback only if no newer Route call has
// been issued in the meantime; otherwise it is dropped without a trace
// beyond a debug log and the stale-completion metric. Superseded handlers
// are not cancelled.
//
// # Outcomes
//
// The finish callback always receives the Location first:
//
//	success    finish(loc, data, "", nil)
//	redirect   finish(loc, nil, url, nil)
//	error      finish(loc, nil, "", err)
//	not found  finish(loc, nil, "", nil)
package router
