package router

import (
	"context"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Outcome recorded on the span of a dispatch that a newer Route replaced
// before its handler reported anything.
const outcomeSuperseded = "superseded"

// dispatch is the state of one Route call. Its complete method is the
// Done handed to the handler.
type dispatch struct {
	router *Router
	gen    uint64
	loc    Location
	finish FinishFunc
	start  time.Time
	span   trace.Span

	fired     atomic.Bool
	spanEnded atomic.Bool
}

func (r *Router) newDispatch(ctx context.Context, gen uint64, loc Location, finish FinishFunc, preRouted bool) *dispatch {
	_, span := r.tracer.Start(ctx, spanName(loc),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("isorouter.url", loc.URL),
			attribute.String("isorouter.path", loc.Path),
			attribute.String("isorouter.pattern", loc.Pattern),
			attribute.Int64("isorouter.generation", int64(gen)),
			attribute.Bool("isorouter.pre_routed", preRouted),
		),
	)
	return &dispatch{
		router: r,
		gen:    gen,
		loc:    loc,
		finish: finish,
		start:  time.Now(),
		span:   span,
	}
}

func spanName(loc Location) string {
	if loc.Pattern == "" {
		return "route not_found"
	}
	return "route " + loc.Pattern
}

// endSpan ends the span once. It does not block, so a span processor may
// call back into the router.
func (d *dispatch) endSpan(outcome string, res *Result) {
	if !d.spanEnded.CompareAndSwap(false, true) {
		return
	}
	d.span.SetAttributes(attribute.String("isorouter.outcome", outcome))
	switch {
	case res == nil:
	case res.Kind == KindError:
		d.span.RecordError(res.Err)
		d.span.SetStatus(codes.Error, res.Err.Error())
	case res.Kind == KindRedirect:
		d.span.SetAttributes(attribute.String("isorouter.redirect", res.Redirect))
		d.span.SetStatus(codes.Ok, "")
	default:
		d.span.SetStatus(codes.Ok, "")
	}
	d.span.End()
}

// supersede closes the span of a dispatch that a newer Route replaced.
// Its handler may never call done. A dispatch that already fired ends its
// own span.
func (d *dispatch) supersede() {
	if d.fired.Load() {
		return
	}
	d.endSpan(outcomeSuperseded, nil)
}

// notFound delivers the all-empty outcome without the staleness check.
func (d *dispatch) notFound() {
	d.fired.Store(true)
	d.finish(d.loc, nil, "", nil)

	d.router.metrics.observe(outcomeNotFound, time.Since(d.start))
	d.endSpan(outcomeNotFound, &Result{Kind: KindOk})
}

// complete is the Done callback. The generation is compared immediately
// before finish runs; bookkeeping happens afterwards.
func (d *dispatch) complete(res Result) {
	if !d.fired.CompareAndSwap(false, true) {
		return
	}

	res = res.normalize()
	r := d.router
	if !r.isLatest(d.gen) {
		r.logger.Debug("dropping stale completion",
			"url", d.loc.URL,
			"generation", d.gen,
			"latest", r.latest.Load(),
			"kind", res.Kind.String(),
		)
		r.metrics.observeStale()
		d.endSpan(outcomeStale, nil)
		return
	}

	switch res.Kind {
	case KindError:
		d.finish(d.loc, nil, "", res.Err)
	case KindRedirect:
		d.finish(d.loc, nil, res.Redirect, nil)
	default:
		d.finish(d.loc, res.Data, "", nil)
	}

	outcome := res.Kind.String()
	r.metrics.observe(outcome, time.Since(d.start))
	d.endSpan(outcome, &res)
}
