package main

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vango-dev/isorouter/internal/config"
	"github.com/vango-dev/isorouter/internal/server"
)

func serveCmd(opts *globalOptions) *cobra.Command {
	var (
		addr  string
		watch bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the route table over HTTP",
		Long: `Start an HTTP server for the route table.

Endpoints:
  GET /resolve?url=...   resolve one URL
  GET /ws                stream navigations over WebSocket
  GET /routes            list the route table
  GET /metrics           Prometheus metrics
  GET /healthz           liveness

With --watch, edits to a local config file replace the route table
without a restart.

Examples:
  isorouter serve
  isorouter serve --addr=:9000 --watch`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts, addr, watch)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address (default from config)")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Reload the route table when the config file changes")

	return cmd
}

func runServe(ctx context.Context, opts *globalOptions, addr string, watch bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cfg, err := loadConfig(ctx, opts)
	if err != nil {
		return err
	}
	table, err := server.NewTable(cfg)
	if err != nil {
		return err
	}

	srvConfig := server.ConfigFrom(cfg)
	if addr != "" {
		srvConfig.Address = addr
	}
	srv := server.New(table, srvConfig)

	printBanner()
	success("Serving %d routes on %s", table.Len(), srvConfig.Address)
	info("Config: %s", cfg.Path())

	if watch {
		if strings.HasPrefix(cfg.Path(), "s3://") {
			warn("--watch ignored for %s", cfg.Path())
		} else {
			go watchConfig(ctx, cfg.Path(), srv)
			info("Watching for changes")
		}
	}

	return srv.Run(ctx)
}

// watchConfig swaps the server's table on every valid config change.
func watchConfig(ctx context.Context, path string, srv *server.Server) {
	err := config.Watch(ctx, path, func(cfg *config.Config, err error) {
		if err != nil {
			errorMsg("Config reload failed: %v", err)
			return
		}
		table, err := server.NewTable(cfg)
		if err != nil {
			errorMsg("Config reload failed: %v", err)
			return
		}
		srv.SetTable(table)
		success("Reloaded %d routes", table.Len())
	})
	if err != nil {
		errorMsg("Watch stopped: %v", err)
	}
}
