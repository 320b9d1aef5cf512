package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vango-dev/isorouter/internal/config"
	"github.com/vango-dev/isorouter/internal/errors"
	"github.com/vango-dev/isorouter/pkg/history"
	"github.com/vango-dev/isorouter/pkg/router"
)

// Config configures a Server.
type Config struct {
	// Address is the listen address. Default: ":8080".
	Address string

	// ResolveTimeout bounds how long /resolve waits for an outcome.
	// Default: 5s.
	ResolveTimeout time.Duration

	// ShutdownTimeout bounds graceful shutdown. Default: 10s.
	ShutdownTimeout time.Duration

	// DisableMetrics removes /metrics and dispatch metrics.
	DisableMetrics bool

	// MetricsNamespace prefixes exported metrics. Default: "isorouter".
	MetricsNamespace string

	// CheckOrigin is passed to the WebSocket upgrader.
	CheckOrigin func(r *http.Request) bool

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// DefaultConfig returns the default server configuration.
func DefaultConfig() *Config {
	return &Config{
		Address:          config.DefaultAddress,
		ResolveTimeout:   config.DefaultResolveTimeout,
		ShutdownTimeout:  10 * time.Second,
		MetricsNamespace: config.DefaultMetricsNamespace,
	}
}

// ConfigFrom derives server settings from a loaded configuration.
func ConfigFrom(cfg *config.Config) *Config {
	c := DefaultConfig()
	c.Address = cfg.Server.Address
	c.ResolveTimeout = cfg.ResolveTimeout()
	c.DisableMetrics = cfg.Server.DisableMetrics
	c.MetricsNamespace = cfg.Server.MetricsNamespace
	return c
}

// Server serves a route table over HTTP and WebSocket.
type Server struct {
	config  *Config
	table   atomic.Pointer[Table]
	handler http.Handler

	registry    *prometheus.Registry
	metrics     *router.Metrics
	connections prometheus.Gauge

	httpServer *http.Server
	logger     *slog.Logger
}

// New creates a server for table.
func New(table *Table, cfg *Config) *Server {
	defaults := DefaultConfig()
	if cfg == nil {
		cfg = defaults
	}
	if cfg.Address == "" {
		cfg.Address = defaults.Address
	}
	if cfg.ResolveTimeout <= 0 {
		cfg.ResolveTimeout = defaults.ResolveTimeout
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaults.ShutdownTimeout
	}
	if cfg.MetricsNamespace == "" {
		cfg.MetricsNamespace = defaults.MetricsNamespace
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		config: cfg,
		logger: logger.With("component", "server"),
	}
	s.table.Store(table)

	if !cfg.DisableMetrics {
		s.registry = prometheus.NewRegistry()
		s.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		s.metrics = router.NewMetrics(
			router.WithNamespace(cfg.MetricsNamespace),
			router.WithRegistry(s.registry),
		)
		s.connections = promauto.With(s.registry).NewGauge(prometheus.GaugeOpts{
			Namespace: cfg.MetricsNamespace,
			Name:      "websocket_connections",
			Help:      "Number of open /ws connections.",
		})
	}

	s.handler = s.routes()
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("ok"))
	})
	r.Get("/resolve", s.handleResolve)
	r.Get("/routes", s.handleRoutes)
	r.Get("/ws", s.handleWebSocket)
	if s.registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	}
	return r
}

// requestLogger logs each request at debug level.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// Table returns the current route table.
func (s *Server) Table() *Table {
	return s.table.Load()
}

// SetTable swaps the route table. Requests already in flight keep the
// router they were built with.
func (s *Server) SetTable(t *Table) {
	s.table.Store(t)
	s.logger.Info("route table replaced", "routes", t.Len())
}

// Registry returns the metrics registry, nil when metrics are disabled.
func (s *Server) Registry() *prometheus.Registry {
	return s.registry
}

func (s *Server) buildRouter() (*router.Router, error) {
	opts := []router.Option{router.WithLogger(s.config.Logger)}
	if s.metrics != nil {
		opts = append(opts, router.WithMetrics(s.metrics))
	}
	return s.Table().Build(opts...)
}

// handleResolve routes ?url= on a fresh router and waits for the outcome.
func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	target := r.URL.Query().Get("url")
	if target == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing url parameter"})
		return
	}

	rt, err := s.buildRouter()
	if err != nil {
		s.logger.Error("build router", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	results := make(chan Resolution, 1)
	rt.RouteContext(r.Context(), target, func(loc router.Location, data any, redirect string, err error) {
		results <- NewResolution(loc, data, redirect, err)
	}, false)

	ctx, cancel := context.WithTimeout(r.Context(), s.config.ResolveTimeout)
	defer cancel()

	select {
	case res := <-results:
		if res.Redirect != "" {
			w.Header().Set("Location", res.Redirect)
		}
		writeJSON(w, res.Status(), res)
	case <-ctx.Done():
		rerr := errors.New("R006").WithDetail("resolving " + target)
		s.logger.Warn("resolve timed out", "url", target, "timeout", s.config.ResolveTimeout)
		writeJSON(w, http.StatusGatewayTimeout, map[string]string{"error": rerr.Error()})
	}
}

type routeInfo struct {
	Pattern string `json:"pattern"`
	Action  string `json:"action"`
	Delay   string `json:"delay,omitempty"`
}

func (s *Server) handleRoutes(w http.ResponseWriter, r *http.Request) {
	specs := s.Table().Routes()
	out := make([]routeInfo, len(specs))
	for i, spec := range specs {
		out[i] = routeInfo{Pattern: spec.Pattern, Action: Action(spec), Delay: spec.Delay}
	}
	writeJSON(w, http.StatusOK, out)
}

// Action names the outcome a route reports.
func Action(spec config.RouteSpec) string {
	switch {
	case spec.Error != "":
		return "error " + spec.Error
	case spec.Redirect != "":
		return "redirect " + spec.Redirect
	default:
		return "data"
	}
}

// handleWebSocket routes every navigation a client sends on a router of
// its own and writes each delivered outcome back on the same connection.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	rt, err := s.buildRouter()
	if err != nil {
		s.logger.Error("build router", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	src := history.NewWebSocketSource(&history.WebSocketConfig{
		CheckOrigin: s.config.CheckOrigin,
		Logger:      s.config.Logger,
	})
	defer src.Close()

	stop := rt.StartRouting(src, func(loc router.Location, data any, redirect string, err error) {
		if berr := src.Broadcast(NewResolution(loc, data, redirect, err)); berr != nil {
			s.logger.Debug("outcome not sent", "url", loc.URL, "error", berr)
		}
	})
	defer stop()

	if s.connections != nil {
		s.connections.Inc()
		defer s.connections.Dec()
	}

	// Blocks until the client disconnects.
	src.ServeHTTP(w, r)
}

// Run starts the server and blocks until ctx is cancelled, a shutdown
// signal arrives, or the listener fails.
func (s *Server) Run(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:              s.config.Address,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Set up graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "address", s.config.Address, "routes", s.Table().Len())
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != http.ErrServerClosed {
			return err
		}
		return nil
	case <-shutdown:
		s.logger.Info("shutting down...")
	case <-ctx.Done():
		s.logger.Info("shutting down...", "reason", ctx.Err())
	}
	return s.Shutdown(context.Background())
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			return err
		}
	}
	s.logger.Info("server stopped")
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Default().Debug("write response", "error", err)
	}
}
