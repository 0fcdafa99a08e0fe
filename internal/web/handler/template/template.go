// Package template provides handlers for template management.
package template

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/dealerdesk/dealerdesk/internal/config"
	"github.com/dealerdesk/dealerdesk/internal/store"
	"github.com/dealerdesk/dealerdesk/internal/web/handler"
)

// Service is the template handler service.
type Service struct {
	handler.Service
	cfg   *config.Config
	store store.Store
}

// Handler is the template handler.
var Handler = Service{}

type saveRequest struct {
	Template *string `json:"template"`
}

type renameRequest struct {
	To string `json:"to"`
}

// Init initializes the template handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, st store.Store) error {
	if app == nil || cfg == nil || st == nil {
		return errors.New(handler.ErrNilACSFatalLogMsg)
	}

	s.cfg = cfg
	s.store = st

	// the unkeyed routes operate on the default template
	app.Route("/api/template", func(router fiber.Router) {
		router.Get(handler.RouterRootPath, s.Get)
		router.Put(handler.RouterRootPath, s.Put)
	})

	app.Route("/api/templates", func(router fiber.Router) {
		router.Get(handler.RouterRootPath, s.List)
		router.Get("/:key", s.GetKeyed)
		router.Put("/:key", s.PutKeyed)
		router.Delete("/:key", s.Delete)
		router.Post("/:key/rename", s.Rename)
	})

	return nil
}

// Get returns the default template content.
func (s *Service) Get(c *fiber.Ctx) error {
	return s.get(c, "")
}

// GetKeyed returns the content of the named template.
func (s *Service) GetKeyed(c *fiber.Ctx) error {
	return s.get(c, c.Params("key"))
}

func (s *Service) get(c *fiber.Ctx, key string) error {
	content, err := s.store.GetTemplate(c.Context(), key)
	if err != nil {
		log.Error().Err(err).Msg("failed to read template")
		return handler.Fail(c, fiber.StatusInternalServerError, "Failed to read template")
	}

	return c.JSON(fiber.Map{"template": content})
}

// Put saves the default template.
func (s *Service) Put(c *fiber.Ctx) error {
	return s.put(c, "")
}

// PutKeyed saves the named template.
func (s *Service) PutKeyed(c *fiber.Ctx) error {
	return s.put(c, c.Params("key"))
}

func (s *Service) put(c *fiber.Ctx, key string) error {
	var req saveRequest
	if err := c.BodyParser(&req); err != nil || req.Template == nil {
		return handler.Fail(c, fiber.StatusBadRequest, "template must be string")
	}

	if err := s.store.SaveTemplate(c.Context(), key, *req.Template); err != nil {
		log.Error().Err(err).Msg("failed to write template")
		return handler.Fail(c, fiber.StatusInternalServerError, "Failed to write template")
	}

	return handler.OK(c)
}

// List returns all templates, most recently updated first.
func (s *Service) List(c *fiber.Ctx) error {
	infos, err := s.store.ListTemplates(c.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to list templates")
		return handler.Fail(c, fiber.StatusInternalServerError, "Failed to list templates")
	}

	return c.JSON(fiber.Map{"templates": infos})
}

// Delete removes a template. The default template is protected.
func (s *Service) Delete(c *fiber.Ctx) error {
	ok, err := s.store.DeleteTemplate(c.Context(), c.Params("key"))
	if err != nil {
		log.Error().Err(err).Msg("failed to delete template")
		return handler.Fail(c, fiber.StatusInternalServerError, "Failed to delete template")
	}

	if !ok {
		return handler.Fail(c, fiber.StatusNotFound, "not found")
	}

	return handler.OK(c)
}

// Rename changes a template key.
func (s *Service) Rename(c *fiber.Ctx) error {
	var req renameRequest
	if err := c.BodyParser(&req); err != nil || req.To == "" {
		return handler.Fail(c, fiber.StatusBadRequest, "to required")
	}

	ok, err := s.store.RenameTemplate(c.Context(), c.Params("key"), req.To)
	if err != nil {
		log.Error().Err(err).Msg("failed to rename template")
		return handler.Fail(c, fiber.StatusInternalServerError, "Failed to rename template")
	}

	if !ok {
		return handler.Fail(c, fiber.StatusBadRequest, "rename failed")
	}

	return handler.OK(c)
}
