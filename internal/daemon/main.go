// Package daemon wires configuration, storage and the web service into one
// application context with explicit construction and teardown.
package daemon

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/dealerdesk/dealerdesk/internal/config"
	"github.com/dealerdesk/dealerdesk/internal/store"
	"github.com/dealerdesk/dealerdesk/internal/web"
)

// Daemon represents the main application daemon. It owns the storage backend
// chosen for this process and the web service in front of it.
type Daemon struct {
	cfg        *config.Config
	store      store.Store
	webService *web.Service

	initOnce sync.Once
	initErr  error
}

// New creates a new Daemon instance with the provided configuration.
func New(cfg *config.Config) (*Daemon, error) {
	if cfg == nil {
		log.Fatal().Msg("config is nil")
		return nil, nil
	}

	st, err := store.FromConfig(cfg)
	if err != nil {
		return nil, err
	}

	return &Daemon{
		cfg:        cfg,
		store:      st,
		webService: web.New(cfg, st),
	}, nil
}

// InitData initializes the storage backend and seeds the default template,
// exactly once per Daemon. Backend initialization failure is fatal; a failed
// seed is logged and swallowed so startup proceeds. The guard latches after
// the seed attempt regardless of its outcome.
func (d *Daemon) InitData(ctx context.Context) error {
	d.initOnce.Do(func() {
		if err := d.store.Init(ctx); err != nil {
			d.initErr = err
			return
		}

		if err := seed(ctx, d.cfg, d.store); err != nil {
			log.Warn().Err(err).Msg("failed to seed default template")
		}
	})

	return d.initErr
}

// Start runs the web service until a termination signal arrives and the
// graceful drain completes.
func (d *Daemon) Start() error {
	go d.webService.WaitShutdown()

	return d.webService.Start(fmt.Sprintf(":%d", d.cfg.Webserver.Port))
}

// Close flushes pending writes and releases the storage backend.
func (d *Daemon) Close() {
	if err := d.store.Flush(context.Background()); err != nil {
		log.Error().Err(err).Msg("failed to flush storage on close")
	}

	if err := d.store.Close(); err != nil {
		log.Error().Err(err).Msg("failed to close storage")
	}
}
