package handler

import (
	"github.com/gofiber/fiber/v2"
)

const (
	// RouterRootPath is the root path of a route group.
	RouterRootPath = "/"

	// ErrNilACSFatalLogMsg is used if the app, cfg or store pointer is nil.
	ErrNilACSFatalLogMsg = "app, cfg or store is nil"
)

// Fail writes the generic error shape the API uses for every failure.
// Internal detail never crosses this boundary beyond the message string.
func Fail(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"error": msg})
}

// OK writes the plain success shape.
func OK(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"ok": true})
}
