package routes

import (
	dashboard_handlers "nika.id/handlers/dashboard"
	"nika.id/middlewares"

	"github.com/gofiber/fiber/v2"
)

func registerDashboardRoutes(app *fiber.App, d Dependencies) {
	dashboardHandler := dashboard_handlers.NewDashboardHandler(d.Services)

	dashboardGroup := app.Group("/dashboard")
	dashboardGroup.Use(
		middlewares.AuthMiddleware,
		middlewares.StatusMiddleware(d.Users),
		middlewares.RequireAdmin(),
	)

	dashboardGroup.Get("/home", dashboardHandler.Home)

	dashboardGroup.Get("/users", dashboardHandler.Users)
	dashboardGroup.Post("/users/:id/active", dashboardHandler.ToggleUser)
	dashboardGroup.Post("/users/:id/delete", dashboardHandler.DeleteUser)
	dashboardGroup.Post("/users/:id/impersonate", dashboardHandler.ImpersonateUser)

	dashboardGroup.Get("/templates", dashboardHandler.Templates)
	dashboardGroup.Post("/templates", dashboardHandler.CreateTemplate)
	dashboardGroup.Post("/templates/:id", dashboardHandler.UpdateTemplate)
	dashboardGroup.Post("/templates/:id/delete", dashboardHandler.DeleteTemplate)

	dashboardGroup.Get("/moderation", dashboardHandler.Moderation)
	dashboardGroup.Post("/moderation/:id/approve", dashboardHandler.ApproveMessage)
	dashboardGroup.Post("/moderation/:id/delete", dashboardHandler.DeleteMessage)

	dashboardGroup.Get("/transactions", dashboardHandler.Transactions)
	dashboardGroup.Post("/transactions/:id/status", dashboardHandler.SetTransactionStatus)
}
