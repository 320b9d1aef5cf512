// Package history provides navigation sources that feed URL changes to a
// router.
//
// A Source notifies listeners whenever the current location changes.
// Sources that also know where they currently are implement Current, which
// lets the router resolve the initial location before the first change.
//
// Two sources are provided:
//   - Memory keeps an in-process history stack (tests, CLIs, servers)
//   - WebSocketSource receives navigations from connected browsers
package history

import "github.com/vango-dev/isorouter/pkg/urlparse"

// Location is the navigation state reported by a source.
type Location struct {
	// Pathname is the path component, e.g. "/users/42".
	Pathname string `json:"pathname"`

	// Search is the query component including its leading "?", or "".
	Search string `json:"search"`
}

// URL joins the location back into a router URL.
func (l Location) URL() string {
	return l.Pathname + l.Search
}

// ParseLocation splits a URL into a Location.
func ParseLocation(rawURL string) Location {
	p := urlparse.Parse(rawURL)
	loc := Location{Pathname: p.Path}
	if p.QueryString != "" {
		loc.Search = "?" + p.QueryString
	}
	return loc
}

// Listener receives location changes.
type Listener func(Location)

// Source publishes location changes.
type Source interface {
	// Listen registers l and returns a function that removes it.
	Listen(l Listener) (unlisten func())
}

// Current is implemented by sources that know the ambient location.
type Current interface {
	Current() Location
}

// listeners is a registration list shared by the sources in this package.
// Callers hold their own lock.
type listeners struct {
	nextID int
	items  []listenerEntry
}

type listenerEntry struct {
	id int
	fn Listener
}

func (ls *listeners) add(fn Listener) int {
	ls.nextID++
	ls.items = append(ls.items, listenerEntry{id: ls.nextID, fn: fn})
	return ls.nextID
}

func (ls *listeners) remove(id int) {
	for i, item := range ls.items {
		if item.id == id {
			ls.items = append(ls.items[:i], ls.items[i+1:]...)
			return
		}
	}
}

func (ls *listeners) snapshot() []Listener {
	out := make([]Listener, len(ls.items))
	for i, item := range ls.items {
		out[i] = item.fn
	}
	return out
}
