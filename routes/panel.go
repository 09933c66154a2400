package routes

import (
	panel_handlers "nika.id/handlers/panel"
	"nika.id/middlewares"

	"github.com/gofiber/fiber/v2"
)

// registerPanelRoutes serves the couple's panel. Admins may open it too; they own an invitation like anyone else.
func registerPanelRoutes(app *fiber.App, d Dependencies) {
	panelHandler := panel_handlers.NewPanelHandler(d.Services)

	panelGroup := app.Group("/panel")
	panelGroup.Use(
		middlewares.AuthMiddleware,
		middlewares.StatusMiddleware(d.Users),
	)

	panelGroup.Get("/home", panelHandler.Home)
	panelGroup.Get("/editor", panelHandler.Editor)
	panelGroup.Get("/templates", panelHandler.Templates)
	panelGroup.Post("/templates", panelHandler.ChooseTemplate)
	panelGroup.Get("/guests", panelHandler.Guests)
	panelGroup.Get("/guests/export", panelHandler.GuestsCSV)
	panelGroup.Get("/messages", panelHandler.Messages)
	panelGroup.Get("/upgrade", panelHandler.Upgrade)
	panelGroup.Get("/transactions", panelHandler.Transactions)
	panelGroup.Get("/settings", panelHandler.Settings)
	panelGroup.Post("/settings", panelHandler.UpdateSettings)
}
