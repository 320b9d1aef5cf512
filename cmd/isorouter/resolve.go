package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/vango-dev/isorouter/internal/errors"
	"github.com/vango-dev/isorouter/internal/server"
	"github.com/vango-dev/isorouter/pkg/router"
)

func resolveCmd(opts *globalOptions) *cobra.Command {
	var (
		asJSON    bool
		preRouted bool
	)

	cmd := &cobra.Command{
		Use:   "resolve <url>...",
		Short: "Route URLs and print the delivered outcomes",
		Long: `Route each URL in order on a single router, as if the user
navigated through them. Every URL supersedes the one before it, so an
outcome that is still pending when the next URL is routed is dropped.

Only delivered outcomes are printed. The command waits for the last URL
to resolve, bounded by server.resolveTimeout.

Examples:
  isorouter resolve /users/42
  isorouter resolve /slow /users/42     # /slow is superseded
  isorouter resolve --json /old`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return errors.New("R008").
					WithDetail("resolve needs at least one URL").
					WithSuggestion("isorouter resolve /users/42")
			}
			return runResolve(cmd, opts, args, asJSON, preRouted)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print one JSON object per outcome")
	cmd.Flags().BoolVar(&preRouted, "pre-routed", false, "Mark the first URL as already resolved upstream")

	return cmd
}

type delivered struct {
	index int
	res   server.Resolution
}

func runResolve(cmd *cobra.Command, opts *globalOptions, urls []string, asJSON, preRouted bool) error {
	cfg, err := loadConfig(cmd.Context(), opts)
	if err != nil {
		return err
	}
	table, err := server.NewTable(cfg)
	if err != nil {
		return err
	}
	rt, err := table.Build()
	if err != nil {
		return err
	}

	// Buffered so that synchronous deliveries never block Route.
	results := make(chan delivered, len(urls))
	for i, u := range urls {
		i := i
		rt.RouteContext(cmd.Context(), u, func(loc router.Location, data any, redirect string, err error) {
			results <- delivered{index: i, res: server.NewResolution(loc, data, redirect, err)}
		}, preRouted && i == 0)
	}

	out := cmd.OutOrStdout()
	timeout := time.After(cfg.ResolveTimeout())
	for {
		select {
		case d := <-results:
			if err := printResolution(out, d.res, asJSON); err != nil {
				return err
			}
			if d.index == len(urls)-1 {
				return nil
			}
		case <-timeout:
			return errors.New("R006").
				WithDetail(fmt.Sprintf("%s did not resolve within %s", urls[len(urls)-1], cfg.ResolveTimeout()))
		}
	}
}

func printResolution(w io.Writer, res server.Resolution, asJSON bool) error {
	if asJSON {
		return json.NewEncoder(w).Encode(res)
	}

	var detail string
	switch {
	case res.Error != "":
		detail = res.Error
	case res.Redirect != "":
		detail = "-> " + res.Redirect
	case res.NotFound:
		detail = ""
	default:
		data, err := json.Marshal(res.Data)
		if err != nil {
			return err
		}
		detail = string(data)
	}

	pattern := res.Location.Pattern
	if pattern == "" {
		pattern = "-"
	}
	_, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", res.Location.URL, pattern, res.Outcome(), detail)
	return err
}
