// Package handler defines the shared surface of the web handler packages.
package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/dealerdesk/dealerdesk/internal/config"
	"github.com/dealerdesk/dealerdesk/internal/store"
)

// Service is the interface for a web handler service.
type Service interface {
	Init(app *fiber.App, cfg *config.Config, st store.Store) error
}
