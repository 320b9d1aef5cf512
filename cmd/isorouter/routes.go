package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vango-dev/isorouter/internal/server"
)

func routesCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "List the route table in priority order",
		Long: `List every route in the order it is matched. The first pattern
that matches a path wins.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd.Context(), opts)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "#\tPATTERN\tACTION\tDELAY")
			for i, spec := range cfg.Routes {
				delay := spec.Delay
				if delay == "" {
					delay = "-"
				}
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", i+1, spec.Pattern, server.Action(spec), delay)
			}
			return tw.Flush()
		},
	}
}
