package app

import (
	"fmt"
	"log/slog"

	"github.com/five82/pushboard/internal/audience"
	"github.com/five82/pushboard/internal/config"
	"github.com/five82/pushboard/internal/logging"
	"github.com/five82/pushboard/internal/parse"
	"github.com/five82/pushboard/internal/state"
)

// Version is reported in the User-Agent header and by `pushboard version`.
var Version = "dev"

// Session is one connection to a Parse server: the client and the store
// that reduces audience actions against it.
type Session struct {
	Config config.Config
	Client *parse.Client
	Store  *state.Store
	Logger *slog.Logger
}

// NewSession builds the client and store for cfg.
func NewSession(cfg config.Config, logger *slog.Logger) (*Session, error) {
	if logger == nil {
		logger = logging.Discard()
	}
	client, err := parse.NewClient(cfg.ServerURL,
		parse.Credentials{AppID: cfg.AppID, MasterKey: cfg.MasterKey},
		parse.WithTimeout(cfg.RequestTimeout),
		parse.WithUserAgent("pushboard/"+Version),
	)
	if err != nil {
		return nil, fmt.Errorf("init parse client: %w", err)
	}
	store := state.New(audience.Env{
		Client:   client,
		Requests: audience.NewRequests(),
		Logger:   logger,
	})
	return &Session{Config: cfg, Client: client, Store: store, Logger: logger}, nil
}

// Fetch returns the action that lists filters with the configured sizes.
func (s *Session) Fetch(key string) audience.Fetch {
	return audience.Fetch{
		Limit: s.Config.Filters.ShowMoreLimit,
		Min:   s.Config.Filters.InitialPageSize,
		Key:   key,
	}
}
