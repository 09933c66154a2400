package routes

import (
	link_handlers "nika.id/handlers/link"

	"github.com/gofiber/fiber/v2"
)

// registerPublicLinkRoutes must run after every fixed top-level route.
func registerPublicLinkRoutes(app *fiber.App, d Dependencies) {
	linkHandler := link_handlers.NewLinkHandler(d.Services.Public)
	app.Get("/:slug", linkHandler.HandleLink)
}
