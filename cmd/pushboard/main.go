// Package main is the entry point for the pushboard CLI.
//
// Usage:
//
//	pushboard                      # Open the dashboard
//	pushboard list -o json         # Print saved audiences
//	pushboard create --name VIPs --platform ios --where "vip = true"
//	pushboard delete <objectId>
//	pushboard mock-server --seed 5 # In-memory Parse backend for development
//	pushboard logs --level warn    # Tail the dashboard log
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/five82/pushboard/internal/app"
	"github.com/five82/pushboard/internal/config"
	"github.com/five82/pushboard/internal/logging"
)

// Version information, set at build time via ldflags.
// Example: go build -ldflags "-X main.version=1.0.0"
var (
	version = "dev"
	commit  = "none"
)

// rootOptions holds global flags for all commands.
type rootOptions struct {
	ConfigPath string
	PrefsPath  string
	Verbose    bool
}

func main() {
	os.Exit(run())
}

func run() int {
	app.Version = version

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		// Cobra prints usage errors; print the rest ourselves.
		fmt.Fprintf(os.Stderr, "pushboard: %v\n", err)
		return 1
	}
	return 0
}

// newRootCommand creates the root command. Without a subcommand it opens
// the dashboard.
func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "pushboard",
		Short: "Manage push audience filters of a Parse server",
		Long: `pushboard lists, creates and deletes the saved push audiences of a
Parse-compatible backend, from a terminal dashboard or from scripts.

It reads ~/.config/pushboard/config.toml:
  server_url = "http://127.0.0.1:1337/parse"
  app_id     = "pushboard"
  master_key = "..."   # or PUSHBOARD_MASTER_KEY`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, opts)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file (default ~/.config/pushboard/config.toml)")
	cmd.PersistentFlags().StringVar(&opts.PrefsPath, "prefs", "", "preferences file (default ~/.config/pushboard/prefs.toml)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "debug logging to stderr")

	cmd.AddCommand(newTUICommand(opts))
	cmd.AddCommand(newListCommand(opts))
	cmd.AddCommand(newCreateCommand(opts))
	cmd.AddCommand(newDeleteCommand(opts))
	cmd.AddCommand(newMockServerCommand(opts))
	cmd.AddCommand(newLogsCommand(opts))
	cmd.AddCommand(newVersionCommand())

	return cmd
}

func newTUICommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the dashboard (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, opts)
		},
	}
}

func runTUI(cmd *cobra.Command, opts *rootOptions) error {
	return app.Run(cmd.Context(), app.Options{
		ConfigPath: opts.ConfigPath,
		PrefsPath:  opts.PrefsPath,
	})
}

// session loads config and connects a store for one CLI command. CLI logs
// go to the command's stderr.
func (o *rootOptions) session(cmd *cobra.Command) (*app.Session, error) {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return app.NewSession(cfg, o.logger(cmd))
}

func (o *rootOptions) logger(cmd *cobra.Command) *slog.Logger {
	return logging.CLI(cmd.ErrOrStderr(), o.Verbose)
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "pushboard %s\n", app.Version)
			fmt.Fprintf(cmd.OutOrStdout(), "  commit: %s\n", commit)
		},
	}
}
