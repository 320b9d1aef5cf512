package router

import (
	"context"
	"sync"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// recordingTracer records span names and hands out noop spans.
type recordingTracer struct {
	noop.Tracer
	mu    sync.Mutex
	names []string
}

func (rt *recordingTracer) Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	rt.mu.Lock()
	rt.names = append(rt.names, name)
	rt.mu.Unlock()
	return rt.Tracer.Start(ctx, name, opts...)
}

func TestRouteStartsSpanPerDispatch(t *testing.T) {
	tracer := &recordingTracer{}
	r := New(WithTracer(tracer))
	r.MustUse("/users/:id", func(done Done, _ Location, _ any, _ bool) { done.Ok(nil) })

	r.RouteContext(context.Background(), "/users/1", nil, false)
	r.Route("/nowhere", nil, false)

	want := []string{"route /users/:id", "route not_found"}
	if len(tracer.names) != len(want) {
		t.Fatalf("spans = %v, want %v", tracer.names, want)
	}
	for i := range want {
		if tracer.names[i] != want[i] {
			t.Errorf("span[%d] = %q, want %q", i, tracer.names[i], want[i])
		}
	}
}

// hookSpan remembers its outcome attribute and calls back on End.
type hookSpan struct {
	noop.Span
	name    string
	tracer  *hookTracer
	outcome string
	ended   bool
}

func (s *hookSpan) SetAttributes(kv ...attribute.KeyValue) {
	for _, a := range kv {
		if a.Key == "isorouter.outcome" {
			s.outcome = a.Value.AsString()
		}
	}
}

func (s *hookSpan) End(...trace.SpanEndOption) {
	s.ended = true
	if s.tracer.onEnd != nil {
		s.tracer.onEnd(s)
	}
}

// hookTracer hands out hookSpans.
type hookTracer struct {
	noop.Tracer
	spans []*hookSpan
	onEnd func(*hookSpan)
}

func (ht *hookTracer) Start(ctx context.Context, name string, _ ...trace.SpanStartOption) (context.Context, trace.Span) {
	s := &hookSpan{name: name, tracer: ht}
	ht.spans = append(ht.spans, s)
	return ctx, s
}

func TestSpanEndRunsAfterDelivery(t *testing.T) {
	tracer := &hookTracer{}
	r := New(WithTracer(tracer))

	var pendingA Done
	r.MustUse("/a", func(done Done, _ Location, _ any, _ bool) { pendingA = done })
	r.MustUse("/b", func(done Done, _ Location, _ any, _ bool) { done.Ok(nil) })

	var order []string
	finish := func(loc Location, _ any, _ string, _ error) {
		order = append(order, loc.Path)
	}

	// Ending the span of /a starts a newer dispatch.
	rerouted := false
	tracer.onEnd = func(s *hookSpan) {
		if s.name == "route /a" && !rerouted {
			rerouted = true
			r.Route("/b", finish, false)
		}
	}

	r.Route("/a", finish, false)
	pendingA.Ok(nil)

	want := []string{"/a", "/b"}
	if len(order) != len(want) || order[0] != want[0] || order[1] != want[1] {
		t.Errorf("delivery order = %v, want %v", order, want)
	}
}

func TestSupersededDispatchEndsSpan(t *testing.T) {
	tracer := &hookTracer{}
	r := New(WithTracer(tracer))
	r.MustUse("/hang", func(Done, Location, any, bool) {})
	r.MustUse("/ok", func(done Done, _ Location, _ any, _ bool) { done.Ok(nil) })

	r.Route("/hang", nil, false)
	if tracer.spans[0].ended {
		t.Fatal("span of a pending dispatch ended early")
	}

	r.Route("/ok", nil, false)

	if !tracer.spans[0].ended || tracer.spans[0].outcome != outcomeSuperseded {
		t.Errorf("superseded span ended = %v outcome = %q, want ended %q",
			tracer.spans[0].ended, tracer.spans[0].outcome, outcomeSuperseded)
	}
	if !tracer.spans[1].ended || tracer.spans[1].outcome != "ok" {
		t.Errorf("latest span ended = %v outcome = %q, want ended ok",
			tracer.spans[1].ended, tracer.spans[1].outcome)
	}
}

func TestRedirectFollowedInFinishKeepsOutcome(t *testing.T) {
	tracer := &hookTracer{}
	r := New(WithTracer(tracer))
	r.MustUse("/old", func(done Done, _ Location, _ any, _ bool) { done.Redirect("/new") })
	r.MustUse("/new", func(done Done, _ Location, _ any, _ bool) { done.Ok(nil) })

	var finish FinishFunc
	finish = func(_ Location, _ any, redirect string, _ error) {
		if redirect != "" {
			r.Route(redirect, finish, false)
		}
	}
	r.Route("/old", finish, false)

	if len(tracer.spans) != 2 {
		t.Fatalf("spans = %d, want 2", len(tracer.spans))
	}
	if got := tracer.spans[0].outcome; got != "redirect" {
		t.Errorf("redirecting span outcome = %q, want redirect", got)
	}
	if got := tracer.spans[1].outcome; got != "ok" {
		t.Errorf("target span outcome = %q, want ok", got)
	}
}
