package router

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/isorouter/pkg/pathmatch"
	"github.com/vango-dev/isorouter/pkg/urlparse"
)

// ErrNilHandler is returned by Use when handler is nil.
var ErrNilHandler = errors.New("router: nil handler")

// defaultTracerName is the tracer resolved from the global provider.
const defaultTracerName = "isorouter"

// Router matches URLs against ordered registrations and delivers the
// outcome of the latest dispatch. The zero value is not usable; call New.
// A Router is safe for concurrent use.
type Router struct {
	mu            sync.RWMutex
	registrations []registration
	context       any

	// latest is the generation of the most recent Route call.
	latest atomic.Uint64

	// current is the dispatch with the highest generation seen so far.
	current atomic.Pointer[dispatch]

	logger  *slog.Logger
	metrics *Metrics
	tracer  trace.Tracer
}

// Option configures a Router.
type Option func(*Router)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Router) {
		if logger != nil {
			r.logger = logger.With("component", "router")
		}
	}
}

// WithMetrics records dispatch metrics into m.
func WithMetrics(m *Metrics) Option {
	return func(r *Router) {
		r.metrics = m
	}
}

// WithTracer sets the tracer used for dispatch spans. Defaults to the
// tracer of the global OpenTelemetry provider.
func WithTracer(tracer trace.Tracer) Option {
	return func(r *Router) {
		if tracer != nil {
			r.tracer = tracer
		}
	}
}

// WithContext sets the initial context value.
func WithContext(ctx any) Option {
	return func(r *Router) {
		r.context = ctx
	}
}

// New creates a router with an empty context map.
func New(opts ...Option) *Router {
	r := &Router{
		context: map[string]any{},
		logger:  slog.Default().With("component", "router"),
		tracer:  otel.Tracer(defaultTracerName),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// SetContext replaces the value passed to handlers.
func (r *Router) SetContext(ctx any) {
	r.mu.Lock()
	r.context = ctx
	r.mu.Unlock()
}

// Context returns the current context value.
func (r *Router) Context() any {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.context
}

// Use compiles pattern and appends it with handler. Later registrations
// have lower priority. Duplicate patterns are not rejected.
func (r *Router) Use(pattern string, handler Handler) error {
	if handler == nil {
		return ErrNilHandler
	}
	p, err := pathmatch.Compile(pattern)
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.registrations = append(r.registrations, registration{pattern: p, handler: handler})
	r.mu.Unlock()
	return nil
}

// MustUse is like Use but panics on error.
func (r *Router) MustUse(pattern string, handler Handler) {
	if err := r.Use(pattern, handler); err != nil {
		panic(err)
	}
}

// Patterns returns the registered patterns in priority order.
func (r *Router) Patterns() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, len(r.registrations))
	for i, reg := range r.registrations {
		out[i] = reg.pattern.String()
	}
	return out
}

// Route dispatches rawURL. It never blocks on the handler: the outcome
// reaches finish later, through the handler's Done, and only if no newer
// Route call has happened by then. An unmatched URL is delivered to
// finish synchronously with no data, redirect or error. A nil finish is a
// no-op.
func (r *Router) Route(rawURL string, finish FinishFunc, preRouted bool) {
	r.RouteContext(context.Background(), rawURL, finish, preRouted)
}

// RouteContext is Route with a parent context for the dispatch span.
func (r *Router) RouteContext(ctx context.Context, rawURL string, finish FinishFunc, preRouted bool) {
	if finish == nil {
		finish = noopFinish
	}

	parsed := urlparse.Parse(rawURL)

	r.mu.RLock()
	registrations := r.registrations
	handlerCtx := r.context
	r.mu.RUnlock()

	var matched *registration
	params := map[string]string{}
	for i := range registrations {
		if p, ok := registrations[i].pattern.Match(parsed.Path); ok {
			matched = &registrations[i]
			params = p
			break
		}
	}

	loc := Location{
		URL:         rawURL,
		Path:        parsed.Path,
		Params:      params,
		Query:       parsed.Query,
		QueryString: parsed.QueryString,
	}
	if matched != nil {
		loc.Pattern = matched.pattern.String()
	}

	// Everything dispatched before this point is now stale.
	gen := r.latest.Add(1)
	d := r.newDispatch(ctx, gen, loc, finish, preRouted)
	r.replaceCurrent(d)

	if matched == nil {
		r.logger.Debug("route not found", "url", rawURL, "generation", gen)
		d.notFound()
		return
	}

	r.logger.Debug("dispatching route",
		"url", rawURL,
		"pattern", loc.Pattern,
		"generation", gen,
		"preRouted", preRouted,
	)
	matched.handler(d.complete, loc, handlerCtx, preRouted)
}

// replaceCurrent records d as the current dispatch and closes the span of
// the one it replaces. Concurrent Route calls may get here out of
// generation order, so the lower generation always loses.
func (r *Router) replaceCurrent(d *dispatch) {
	for {
		prev := r.current.Load()
		if prev != nil && prev.gen > d.gen {
			d.supersede()
			return
		}
		if r.current.CompareAndSwap(prev, d) {
			if prev != nil {
				prev.supersede()
			}
			return
		}
	}
}

// isLatest reports whether gen is still the current dispatch.
func (r *Router) isLatest(gen uint64) bool {
	return r.latest.Load() == gen
}
