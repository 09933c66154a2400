package routes

import (
	"time"

	api_handlers "nika.id/handlers/api"
	"nika.id/middlewares"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

const (
	submitLimit       = 20
	submitLimitWindow = time.Minute
)

func submitLimiter() fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        submitLimit,
		Expiration: submitLimitWindow,
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "TOO_MANY_REQUESTS"})
		},
	})
}

func registerAPIRoutes(app *fiber.App, d Dependencies) {
	h := api_handlers.NewHandler(d.Services)
	apiGroup := app.Group("/api")

	// Anonymous endpoints.
	apiGroup.Post("/public/submit", submitLimiter(), h.Submit)
	apiGroup.Post("/payment/notification", h.PaymentNotification)
	apiGroup.Get("/plans", h.Plans)
	apiGroup.Get("/templates", h.ListTemplates)

	user := []fiber.Handler{middlewares.AuthMiddleware, middlewares.StatusMiddleware(d.Users)}
	apiGroup.Get("/invitation", chain(user, h.GetInvitation)...)
	apiGroup.Put("/invitation", chain(user, h.SaveInvitation)...)
	apiGroup.Post("/payment/token", chain(user, h.CreatePaymentToken)...)
	apiGroup.Post("/payment/simulate", chain(user, h.SimulatePayment)...)
	apiGroup.Post("/upload", chain(user, h.Upload)...)
	apiGroup.Post("/upload/image", chain(user, h.UploadImage)...)
	apiGroup.Post("/upload/audio", chain(user, h.UploadAudio)...)

	admin := chain(user, middlewares.RequireAdmin())
	apiGroup.Post("/templates", chain(admin, h.CreateTemplate)...)
	apiGroup.Post("/templates/upload", chain(admin, h.UploadTemplateThumbnail)...)
	apiGroup.Get("/templates/:id", chain(admin, h.GetTemplate)...)
	apiGroup.Patch("/templates/:id", chain(admin, h.UpdateTemplate)...)
	apiGroup.Delete("/templates/:id", chain(admin, h.DeleteTemplate)...)
	apiGroup.Get("/admin/stats", chain(admin, h.Stats)...)
	apiGroup.Get("/admin/moderation", chain(admin, h.ListMessages)...)
	apiGroup.Patch("/admin/moderation/:id", chain(admin, h.ModerateMessage)...)
	apiGroup.Delete("/admin/moderation/:id", chain(admin, h.DeleteMessage)...)
	apiGroup.Post("/admin/impersonate", chain(admin, h.Impersonate)...)
	apiGroup.Get("/admin/transactions", chain(admin, h.ListTransactions)...)
	apiGroup.Patch("/admin/transactions/:id", chain(admin, h.SetTransactionStatus)...)
	apiGroup.Delete("/users/:id", chain(admin, h.DeleteUser)...)
}
