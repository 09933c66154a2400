package routes

import (
	site_handlers "nika.id/handlers/site"

	"github.com/gofiber/fiber/v2"
)

func registerSiteRoutes(app *fiber.App, d Dependencies) {
	siteHandler := site_handlers.NewSiteHandler(d.Services)
	app.Get("/", siteHandler.Landing)
	app.Get("/pricing", siteHandler.Pricing)
	app.Get("/templates", siteHandler.Templates)
	app.Get("/home", rootRedirector)
}
