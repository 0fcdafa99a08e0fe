// Package prices provides handlers for per-brand vehicle price sheets.
package prices

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/dealerdesk/dealerdesk/internal/config"
	"github.com/dealerdesk/dealerdesk/internal/store"
	"github.com/dealerdesk/dealerdesk/internal/web/handler"
)

// Service is the price sheet handler service.
type Service struct {
	handler.Service
	cfg   *config.Config
	store store.Store
}

// Handler is the price sheet handler.
var Handler = Service{}

type saveRequest struct {
	Content *string `json:"content"`
}

// Init initializes the price sheet handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, st store.Store) error {
	if app == nil || cfg == nil || st == nil {
		return errors.New(handler.ErrNilACSFatalLogMsg)
	}

	s.cfg = cfg
	s.store = st

	app.Route("/api/prices", func(router fiber.Router) {
		router.Get(handler.RouterRootPath, s.List)
		router.Get("/:brand", s.Get)
		router.Put("/:brand", s.Put)
		router.Delete("/:brand", s.Delete)
	})

	return nil
}

// List returns all price sheets, most recently updated first.
func (s *Service) List(c *fiber.Ctx) error {
	infos, err := s.store.ListPriceSheets(c.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to list price sheets")
		return handler.Fail(c, fiber.StatusInternalServerError, "Failed to list price sheets")
	}

	return c.JSON(fiber.Map{"prices": infos})
}

// Get returns the price sheet content for a brand, empty when absent.
func (s *Service) Get(c *fiber.Ctx) error {
	content, err := s.store.GetPriceSheet(c.Context(), c.Params("brand"))
	if err != nil {
		log.Error().Err(err).Msg("failed to read price sheet")
		return handler.Fail(c, fiber.StatusInternalServerError, "Failed to read price sheet")
	}

	return c.JSON(fiber.Map{"price": content})
}

// Put saves the price sheet for a brand.
func (s *Service) Put(c *fiber.Ctx) error {
	var req saveRequest
	if err := c.BodyParser(&req); err != nil || req.Content == nil {
		return handler.Fail(c, fiber.StatusBadRequest, "content must be string")
	}

	if err := s.store.SavePriceSheet(c.Context(), c.Params("brand"), *req.Content); err != nil {
		log.Error().Err(err).Msg("failed to write price sheet")
		return handler.Fail(c, fiber.StatusInternalServerError, "Failed to write price sheet")
	}

	return handler.OK(c)
}

// Delete removes the price sheet for a brand.
func (s *Service) Delete(c *fiber.Ctx) error {
	ok, err := s.store.DeletePriceSheet(c.Context(), c.Params("brand"))
	if err != nil {
		log.Error().Err(err).Msg("failed to delete price sheet")
		return handler.Fail(c, fiber.StatusInternalServerError, "Failed to delete price sheet")
	}

	if !ok {
		return handler.Fail(c, fiber.StatusNotFound, "not found")
	}

	return handler.OK(c)
}
