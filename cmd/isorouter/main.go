package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vango-dev/isorouter/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ╦┌─┐┌─┐┬─┐┌─┐┬ ┬┌┬┐┌─┐┬─┐
  ║└─┐│ │├┬┘│ ││ │ │ ├┤ ├┬┘
  ╩└─┘└─┘┴└─└─┘└─┘ ┴ └─┘┴└─
`

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	configPath string
	region     string
	logLevel   string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		errors.Fprint(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "isorouter",
		Short: "Resolve URLs against a route table",
		Long: `isorouter maps URLs to route handlers and reports the outcome
of the most recent navigation only.

The route table is read from isorouter.json (or .yaml/.yml) in the
current directory, from --config, or from an S3 object:

  isorouter routes
  isorouter resolve /users/42 /users/43?tab=posts
  isorouter serve --config s3://my-bucket/prod/isorouter.json --region eu-west-1`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging(opts.logLevel)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Config file, directory or s3://bucket/key (default: current directory)")
	rootCmd.PersistentFlags().StringVar(&opts.region, "region", "", "AWS region for s3:// configs (default: $AWS_REGION or us-east-1)")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(
		resolveCmd(opts),
		routesCmd(opts),
		serveCmd(opts),
		versionCmd(),
	)

	return rootCmd
}

func setupLogging(level string) error {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		return errors.New("R008").
			WithDetail(fmt.Sprintf("unknown log level %q", level)).
			WithSuggestion("Use debug, info, warn or error")
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l})))
	return nil
}

// printBanner prints the ASCII art banner.
func printBanner() {
	fmt.Print(banner)
}

// success prints a success message.
func success(format string, args ...any) {
	fmt.Printf("\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(format string, args ...any) {
	fmt.Printf("  %s\n", fmt.Sprintf(format, args...))
}

// warn prints a warning message.
func warn(format string, args ...any) {
	fmt.Printf("\033[33m⚠\033[0m %s\n", fmt.Sprintf(format, args...))
}

// errorMsg prints an error message.
func errorMsg(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "\033[31m✗\033[0m %s\n", fmt.Sprintf(format, args...))
}
