package history

import (
	"sync"

	"github.com/vango-dev/isorouter/pkg/urlparse"
)

// NavigateOptions configures a navigation.
type NavigateOptions struct {
	// Replace replaces the current entry instead of pushing.
	Replace bool

	// Params are query parameters merged into the target URL.
	Params map[string]string
}

// NavigateOption is a functional option for Navigate.
type NavigateOption func(*NavigateOptions)

// WithReplace replaces the current history entry instead of pushing.
func WithReplace() NavigateOption {
	return func(o *NavigateOptions) {
		o.Replace = true
	}
}

// WithParams adds query parameters to the navigation URL.
func WithParams(params map[string]string) NavigateOption {
	return func(o *NavigateOptions) {
		o.Params = params
	}
}

// Memory is an in-process history stack. Listeners are notified
// synchronously, outside the internal lock, so a listener may navigate.
type Memory struct {
	mu        sync.Mutex
	entries   []Location
	index     int
	listeners listeners
}

// NewMemory creates a history positioned at initialURL ("/" when empty).
func NewMemory(initialURL string) *Memory {
	if initialURL == "" {
		initialURL = "/"
	}
	return &Memory{entries: []Location{ParseLocation(initialURL)}}
}

// Listen implements Source.
func (m *Memory) Listen(l Listener) func() {
	m.mu.Lock()
	id := m.listeners.add(l)
	m.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			m.listeners.remove(id)
			m.mu.Unlock()
		})
	}
}

// Current implements Current.
func (m *Memory) Current() Location {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.entries[m.index]
}

// Len returns the number of history entries.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Navigate moves to path, dropping any forward entries.
func (m *Memory) Navigate(path string, opts ...NavigateOption) {
	var options NavigateOptions
	for _, opt := range opts {
		opt(&options)
	}

	target := path
	if len(options.Params) > 0 {
		p := urlparse.Parse(path)
		query := p.Query
		for k, v := range options.Params {
			query[k] = v
		}
		target = urlparse.Join(p.Path, query)
	}
	loc := ParseLocation(target)

	m.mu.Lock()
	if options.Replace {
		m.entries[m.index] = loc
	} else {
		m.entries = append(m.entries[:m.index+1], loc)
		m.index++
	}
	m.mu.Unlock()

	m.notify(loc)
}

// Push is Navigate without options.
func (m *Memory) Push(path string) {
	m.Navigate(path)
}

// Replace replaces the current entry with path.
func (m *Memory) Replace(path string) {
	m.Navigate(path, WithReplace())
}

// Back moves one entry back. It reports false at the start of history.
func (m *Memory) Back() bool {
	return m.Go(-1)
}

// Forward moves one entry forward. It reports false at the end of history.
func (m *Memory) Forward() bool {
	return m.Go(1)
}

// Go moves delta entries through history. Out-of-range moves are ignored.
func (m *Memory) Go(delta int) bool {
	m.mu.Lock()
	next := m.index + delta
	if delta == 0 || next < 0 || next >= len(m.entries) {
		m.mu.Unlock()
		return false
	}
	m.index = next
	loc := m.entries[next]
	m.mu.Unlock()

	m.notify(loc)
	return true
}

func (m *Memory) notify(loc Location) {
	m.mu.Lock()
	fns := m.listeners.snapshot()
	m.mu.Unlock()

	for _, fn := range fns {
		fn(loc)
	}
}
