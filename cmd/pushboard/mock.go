package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/five82/pushboard/internal/config"
	"github.com/five82/pushboard/internal/mockparse"
)

const defaultMockMasterKey = "master"

type mockOptions struct {
	*rootOptions
	Addr    string
	Seed    int
	Devices []string
}

func newMockServerCommand(rootOpts *rootOptions) *cobra.Command {
	opts := &mockOptions{rootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "mock-server",
		Short: "Serve an in-memory Parse backend for development",
		Long: `Serve the Parse routes pushboard uses from memory, under /parse.

The app id and master key come from the config file; when no master key is
configured "master" is accepted. Point server_url at
http://<addr>/parse to use it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.ConfigPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			masterKey := cfg.MasterKey
			if masterKey == "" {
				masterKey = defaultMockMasterKey
			}
			logger := opts.logger(cmd)

			srv := mockparse.New(mockparse.Options{
				AppID:     cfg.AppID,
				MasterKey: masterKey,
				Devices:   opts.Devices,
				Logger:    logger,
			})
			srv.Seed(mockparse.SampleFilters(opts.Seed, time.Now())...)

			ln, err := net.Listen("tcp", opts.Addr)
			if err != nil {
				return fmt.Errorf("listen %s: %w", opts.Addr, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "mock Parse server on http://%s/parse (app id %q, %d filters)\n",
				ln.Addr(), cfg.AppID, opts.Seed)

			return serve(cmd.Context(), &http.Server{
				Handler:           srv.Handler(),
				ReadHeaderTimeout: 5 * time.Second,
			}, ln)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", "127.0.0.1:1337", "listen address")
	cmd.Flags().IntVar(&opts.Seed, "seed", 0, "number of sample filters to preload")
	cmd.Flags().StringSliceVar(&opts.Devices, "devices", []string{"ios", "android"}, "device types reported by /available_devices")

	return cmd
}

// serve runs httpServer on ln until ctx is cancelled, then shuts it down.
func serve(ctx context.Context, httpServer *http.Server, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
