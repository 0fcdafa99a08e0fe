// Package dealer provides handlers for dealer record management.
package dealer

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/dealerdesk/dealerdesk/internal/config"
	"github.com/dealerdesk/dealerdesk/internal/render"
	"github.com/dealerdesk/dealerdesk/internal/store"
	"github.com/dealerdesk/dealerdesk/internal/web/handler"
)

// Service is the dealer handler service.
type Service struct {
	handler.Service
	cfg       *config.Config
	store     store.Store
	validator *validator.Validate
}

// Handler is the dealer handler.
var Handler = Service{}

// Init initializes the dealer handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, st store.Store) error {
	if app == nil || cfg == nil || st == nil {
		return errors.New(handler.ErrNilACSFatalLogMsg)
	}

	s.cfg = cfg
	s.store = st
	s.validator = validator.New()

	app.Route("/api/dealers", func(router fiber.Router) {
		router.Get(handler.RouterRootPath, s.List)
		router.Post(handler.RouterRootPath, s.Create)
		router.Post("/import", s.Import)
		router.Get("/:id", s.Get)
		router.Put("/:id", s.Update)
		router.Delete("/:id", s.Delete)
		router.Get("/:id/render", s.Render)
	})

	return nil
}

// List returns all dealers ordered by name.
func (s *Service) List(c *fiber.Ctx) error {
	dealers, err := s.store.ListDealers(c.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to list dealers")
		return handler.Fail(c, fiber.StatusInternalServerError, "Failed to read dealers")
	}

	return c.JSON(fiber.Map{"dealers": dealers})
}

// Get returns a single dealer.
func (s *Service) Get(c *fiber.Ctx) error {
	d, err := s.store.GetDealer(c.Context(), c.Params("id"))
	if err != nil {
		log.Error().Err(err).Msg("failed to read dealer")
		return handler.Fail(c, fiber.StatusInternalServerError, "Failed to read dealer")
	}

	if d == nil {
		return handler.Fail(c, fiber.StatusNotFound, "not found")
	}

	return c.JSON(fiber.Map{"dealer": d})
}

// Create adds a new dealer record.
func (s *Service) Create(c *fiber.Ctx) error {
	var req createRequest
	if err := c.BodyParser(&req); err != nil {
		return handler.Fail(c, fiber.StatusBadRequest, "invalid body")
	}

	if err := s.validator.Struct(req); err != nil {
		return handler.Fail(c, fiber.StatusBadRequest, "name required")
	}

	d, err := s.store.CreateDealer(c.Context(), store.DealerFields{
		Name:         req.Name,
		Address:      req.Address,
		Number:       req.Number,
		Brand:        req.Brand,
		ShowroomLink: req.ShowroomLink,
	})

	switch {
	case errors.Is(err, store.ErrNameRequired):
		return handler.Fail(c, fiber.StatusBadRequest, "name required")
	case errors.Is(err, store.ErrDealerExists):
		return handler.Fail(c, fiber.StatusConflict, "dealer already exists")
	case err != nil:
		log.Error().Err(err).Msg("failed to create dealer")
		return handler.Fail(c, fiber.StatusInternalServerError, "Failed to create dealer")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"dealer": d})
}

// Update merges a partial update over an existing dealer.
func (s *Service) Update(c *fiber.Ctx) error {
	var req updateRequest
	if err := c.BodyParser(&req); err != nil {
		return handler.Fail(c, fiber.StatusBadRequest, "invalid body")
	}

	d, err := s.store.UpdateDealer(c.Context(), c.Params("id"), store.DealerPatch{
		Name:         req.Name,
		Address:      req.Address,
		Number:       req.Number,
		Brand:        req.Brand,
		ShowroomLink: req.ShowroomLink,
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to update dealer")
		return handler.Fail(c, fiber.StatusInternalServerError, "Failed to update dealer")
	}

	if d == nil {
		return handler.Fail(c, fiber.StatusNotFound, "not found")
	}

	return c.JSON(fiber.Map{"dealer": d})
}

// Delete removes a dealer record.
func (s *Service) Delete(c *fiber.Ctx) error {
	ctx := c.Context()
	id := c.Params("id")

	existing, err := s.store.GetDealer(ctx, id)
	if err != nil {
		log.Error().Err(err).Msg("failed to read dealer")
		return handler.Fail(c, fiber.StatusInternalServerError, "Failed to delete dealer")
	}

	if existing == nil {
		return handler.Fail(c, fiber.StatusNotFound, "not found")
	}

	if err := s.store.DeleteDealer(ctx, id); err != nil {
		log.Error().Err(err).Msg("failed to delete dealer")
		return handler.Fail(c, fiber.StatusInternalServerError, "Failed to delete dealer")
	}

	return handler.OK(c)
}

// Render substitutes the dealer's fields into the default template.
func (s *Service) Render(c *fiber.Ctx) error {
	ctx := c.Context()

	d, err := s.store.GetDealer(ctx, c.Params("id"))
	if err != nil {
		log.Error().Err(err).Msg("failed to read dealer")
		return handler.Fail(c, fiber.StatusInternalServerError, "Failed to render")
	}

	if d == nil {
		return handler.Fail(c, fiber.StatusNotFound, "not found")
	}

	tpl, err := s.store.GetTemplate(ctx, "")
	if err != nil {
		log.Error().Err(err).Msg("failed to read template")
		return handler.Fail(c, fiber.StatusInternalServerError, "Failed to render")
	}

	return c.JSON(fiber.Map{
		"rendered": render.Dealer(tpl, d),
		"dealer":   d,
	})
}

// Import bulk-inserts dealer records, skipping names that already exist.
func (s *Service) Import(c *fiber.Ctx) error {
	var records []store.ImportRecord
	if err := c.BodyParser(&records); err != nil {
		// tolerate the wrapped export format
		var wrapped struct {
			Dealers []store.ImportRecord `json:"dealers"`
		}
		if err := c.BodyParser(&wrapped); err != nil {
			return handler.Fail(c, fiber.StatusBadRequest, "dealers must be a list")
		}

		records = wrapped.Dealers
	}

	inserted, err := s.store.UpsertDealers(c.Context(), records)
	if err != nil {
		log.Error().Err(err).Msg("failed to import dealers")
		return handler.Fail(c, fiber.StatusInternalServerError, "Failed to import dealers")
	}

	return c.JSON(fiber.Map{"inserted": inserted})
}
