package app

import (
	"context"
	"fmt"

	"github.com/five82/pushboard/internal/config"
	"github.com/five82/pushboard/internal/logging"
	"github.com/five82/pushboard/internal/prefs"
	"github.com/five82/pushboard/internal/ui"
)

// Options configure the pushboard TUI.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/pushboard/prefs.toml
}

// Run boots the pushboard TUI until the user quits or the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}
	userPrefs, err := prefs.Load(prefsPath)
	if err != nil {
		return fmt.Errorf("load prefs: %w", err)
	}

	// stdout belongs to the terminal UI.
	logger, closer, err := logging.OpenFile(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer closer.Close()

	session, err := NewSession(cfg, logger)
	if err != nil {
		return err
	}
	logger.Info("pushboard starting", "server_url", session.Client.BaseURL(), "version", Version)

	err = ui.Run(ui.Options{
		Context:         ctx,
		Store:           session.Store,
		Devices:         session.Client,
		Logger:          logger,
		ThemeName:       userPrefs.Theme,
		PrefsPath:       prefsPath,
		Platforms:       userPrefs.Platforms,
		InitialPageSize: cfg.Filters.InitialPageSize,
		ShowMoreLimit:   cfg.Filters.ShowMoreLimit,
		ServerLabel:     session.Client.BaseURL(),
	})
	if err != nil {
		logger.Error("pushboard exited with error", "error", err)
		return err
	}
	logger.Info("pushboard stopped")
	return nil
}
