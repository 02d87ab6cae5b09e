package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/five82/pushboard/internal/config"
	"github.com/five82/pushboard/internal/logtail"
)

type logsOptions struct {
	*rootOptions
	Lines int
	Level string
}

func newLogsCommand(rootOpts *rootOptions) *cobra.Command {
	opts := &logsOptions{rootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the end of the dashboard log file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.ConfigPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			minLevel := slog.LevelDebug
			if opts.Level != "" {
				if minLevel, err = config.ParseLevel(opts.Level); err != nil {
					return err
				}
			}

			lines, err := logtail.Read(cfg.LogFile, opts.Lines)
			if err != nil {
				return err
			}
			if len(lines) == 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "no log entries in %s\n", cfg.LogFile)
				return nil
			}
			for _, line := range logtail.Filter(lines, minLevel) {
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&opts.Lines, "lines", "n", 50, "number of lines to read from the end")
	cmd.Flags().StringVar(&opts.Level, "level", "", "minimum level to show (debug|info|warn|error)")

	return cmd
}
