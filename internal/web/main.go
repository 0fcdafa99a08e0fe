// Package web implements the JSON API service in front of the storage
// adapter.
package web

import (
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog/log"

	"github.com/dealerdesk/dealerdesk/internal/config"
	"github.com/dealerdesk/dealerdesk/internal/store"
	"github.com/dealerdesk/dealerdesk/internal/web/handler/dealer"
	"github.com/dealerdesk/dealerdesk/internal/web/handler/prices"
	"github.com/dealerdesk/dealerdesk/internal/web/handler/template"
)

// Service represents the web service.
type Service struct {
	App   *fiber.App
	cfg   *config.Config
	store store.Store
	alive atomic.Bool
}

// Start starts the web service on the given address.
func (s *Service) Start(addr string) error {
	var doneFiber = make(chan bool)

	go func() {
		if err := s.App.Listen(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Msgf("fiber listen error: %v", err)
		}

		doneFiber <- true
	}()

	<-doneFiber // wait for fiber to stop

	return nil
}

// WaitShutdown waits for graceful shutdown of the service.
func (s *Service) WaitShutdown() {
	irqSig := make(chan os.Signal, 1)
	signal.Notify(irqSig, syscall.SIGINT, syscall.SIGTERM)

	sig := <-irqSig
	log.Info().Msgf("shutdown request (signal: %v)", sig)

	// Graceful shutdown for reverse proxies: fail the health check first so
	// the LB removes this instance from active targets.
	s.alive.Store(false)
	time.Sleep(time.Duration(s.cfg.Webserver.ShutDownTime) * time.Second)

	serverShutdown := make(chan struct{})

	go func() {
		log.Info().Msg("stopping http server ...")

		if err := s.App.Shutdown(); err != nil {
			log.Error().Err(err).Msg("")
		}

		serverShutdown <- struct{}{}
	}()

	<-serverShutdown
	log.Info().Msg("http server was stopped")
}

// New creates a new web service with the given configuration.
func New(cfg *config.Config, st store.Store) *Service {
	if cfg == nil {
		panic("config cannot be nil")
	}

	if st == nil {
		panic("store cannot be nil")
	}

	app := fiber.New(
		fiber.Config{
			AppName:       "DealerDesk",
			CaseSensitive: true,
			Prefork:       false,
			Immutable:     true,
		},
	)

	if !cfg.Webserver.DisableRecover {
		app.Use(recover.New())
	}

	// In an ephemeral runtime there is no background continuation after the
	// response, so pending writes are flushed at the end of every request.
	if cfg.Storage.Ephemeral {
		app.Use(func(c *fiber.Ctx) error {
			err := c.Next()

			if flushErr := st.Flush(c.Context()); flushErr != nil {
				log.Error().Err(flushErr).Msg("failed to flush storage after request")
			}

			return err
		})
	}

	service := &Service{
		cfg:   cfg,
		App:   app,
		store: st,
	}
	service.alive.Store(true)

	// health check, fails while draining so the LB stops routing here
	app.Get("/api/health", func(c *fiber.Ctx) error {
		if !service.alive.Load() {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"ok": false})
		}

		return c.JSON(fiber.Map{"ok": true})
	})

	// init handlers (they register their own routes)
	template.Handler.Init(app, cfg, st)
	dealer.Handler.Init(app, cfg, st)
	prices.Handler.Init(app, cfg, st)

	return service
}
