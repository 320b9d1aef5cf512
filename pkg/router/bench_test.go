package router

import (
	"fmt"
	"io"
	"log/slog"
	"testing"

	"go.opentelemetry.io/otel/trace/noop"
)

func benchRouter(b *testing.B, patterns ...string) *Router {
	b.Helper()
	r := New(
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithTracer(noop.NewTracerProvider().Tracer("bench")),
	)
	for _, p := range patterns {
		r.MustUse(p, func(done Done, loc Location, ctx any, preRouted bool) {
			done.Ok(nil)
		})
	}
	return r
}

// BenchmarkRouteStatic benchmarks routing to a static pattern.
func BenchmarkRouteStatic(b *testing.B) {
	r := benchRouter(b, "/", "/about", "/contact", "/pricing", "/features")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r.Route("/pricing", nil, false)
	}
}

// BenchmarkRouteParam benchmarks routing to a parameterized pattern.
func BenchmarkRouteParam(b *testing.B) {
	r := benchRouter(b, "/users/:id")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r.Route("/users/123", nil, false)
	}
}

// BenchmarkRouteMultipleParams benchmarks routing with several parameters
// and a query string.
func BenchmarkRouteMultipleParams(b *testing.B) {
	r := benchRouter(b, "/users/:userId:int/posts/:postId:int/comments/:commentId")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r.Route("/users/42/posts/100/comments/999?sort=new&page=2", nil, false)
	}
}

// BenchmarkRouteCatchAll benchmarks routing to a catch-all pattern.
func BenchmarkRouteCatchAll(b *testing.B) {
	r := benchRouter(b, "/files/*path")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r.Route("/files/a/b/c/d/e", nil, false)
	}
}

// BenchmarkRouteLastOfMany benchmarks a match at the end of a long table.
func BenchmarkRouteLastOfMany(b *testing.B) {
	patterns := make([]string, 100)
	for i := range patterns {
		patterns[i] = fmt.Sprintf("/section%d/:id", i)
	}
	r := benchRouter(b, patterns...)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r.Route("/section99/abc", nil, false)
	}
}

// BenchmarkRouteNotFound benchmarks an unmatched URL.
func BenchmarkRouteNotFound(b *testing.B) {
	r := benchRouter(b, "/", "/about", "/users/:id")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r.Route("/missing/page", nil, false)
	}
}

// BenchmarkRouteParallel benchmarks concurrent routing.
func BenchmarkRouteParallel(b *testing.B) {
	r := benchRouter(b, "/users/:id")

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			r.Route("/users/123", nil, false)
		}
	})
}
