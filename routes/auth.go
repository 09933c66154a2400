package routes

import (
	auth_handlers "nika.id/handlers/auth"
	"nika.id/middlewares"

	"github.com/gofiber/fiber/v2"
)

func registerAuthRoutes(app *fiber.App, d Dependencies) {
	authHandler := auth_handlers.NewAuthHandler(d.Services)
	authGroup := app.Group("/auth")

	guest := []fiber.Handler{middlewares.GuestMiddleware}
	authGroup.Get("/login", chain(guest, authHandler.ShowLogin)...)
	authGroup.Post("/login", chain(guest, authHandler.Login)...)
	authGroup.Get("/register", chain(guest, authHandler.ShowRegister)...)
	authGroup.Post("/register", chain(guest, authHandler.Register)...)
	authGroup.Get("/google", chain(guest, authHandler.GoogleStart)...)
	authGroup.Get("/google/callback", chain(guest, authHandler.GoogleCallback)...)

	user := []fiber.Handler{middlewares.AuthMiddleware}
	authGroup.Get("/logout", chain(user, authHandler.Logout)...)
	authGroup.Post("/logout", chain(user, authHandler.Logout)...)
	authGroup.Get("/impersonate", chain(user, middlewares.RequireAdmin(), authHandler.Impersonate)...)
	authGroup.Post("/impersonate/stop", chain(user, authHandler.StopImpersonation)...)
	authGroup.Post("/password", chain(user, middlewares.StatusMiddleware(d.Users), authHandler.UpdatePassword)...)
}
