package routes

import (
	"errors"
	"strings"

	"nika.id/configs"
	"nika.id/configs/configslog"
	api_handlers "nika.id/handlers/api"
	"nika.id/models"
	"nika.id/repositories"
	"nika.id/services"
	"nika.id/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	recoverMiddleware "github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/session"
	"go.uber.org/zap"
)

// Dependencies is what the route groups are built from.
type Dependencies struct {
	Services *services.Services
	Users    repositories.IUserRepository
	Sessions *session.Store
	// SecureCookies marks session and CSRF cookies Secure (HTTPS deployments).
	SecureCookies bool
	// DisableCSRF is for tests that post forms without a token.
	DisableCSRF bool
}

// SetupRoutes registers every middleware and route group. The public /:slug route goes last so
// fixed paths win.
func SetupRoutes(app *fiber.App, d Dependencies) {
	app.Use(recoverMiddleware.New())
	app.Use(logger.New())
	app.Use(initializeSessionAndLocals(d.Sessions))
	if !d.DisableCSRF {
		app.Use(configs.SetupCSRF(d.Sessions, d.SecureCookies))
	}

	registerAPIRoutes(app, d)
	registerAuthRoutes(app, d)
	registerPanelRoutes(app, d)
	registerDashboardRoutes(app, d)
	registerSiteRoutes(app, d)
	registerPublicLinkRoutes(app, d)

	app.Use(notFoundHandler)
}

// initializeSessionAndLocals copies the session identity into Locals for the rest of the chain.
func initializeSessionAndLocals(store *session.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(utils.LocalsSessionStore, store)
		if strings.HasPrefix(c.Path(), "/api/payment/notification") {
			return c.Next()
		}
		sess, err := utils.SessionStart(c)
		if err != nil {
			configslog.Log.Warn("session start failed", zap.Error(err))
			return c.Next()
		}
		if userID, err := utils.GetUserIDFromSession(sess); err == nil {
			c.Locals(utils.LocalsUserID, userID)
			c.Locals(utils.LocalsUserRole, utils.GetRoleFromSession(sess))
			if name, ok := sess.Get(utils.SessionUserNameKey).(string); ok {
				c.Locals(utils.LocalsUserName, name)
			}
			if adminID, ok := utils.GetImpersonatorFromSession(sess); ok {
				c.Locals(utils.LocalsImpersonatorID, adminID)
			}
		}
		return c.Next()
	}
}

func rootRedirector(c *fiber.Ctx) error {
	if _, ok := utils.CurrentUserID(c); !ok {
		return c.Redirect("/auth/login", fiber.StatusSeeOther)
	}
	if models.IsAdminRole(utils.CurrentRole(c)) {
		return c.Redirect("/dashboard/home", fiber.StatusSeeOther)
	}
	return c.Redirect("/panel/home", fiber.StatusSeeOther)
}

func isAPI(c *fiber.Ctx) bool {
	return strings.HasPrefix(c.Path(), "/api/")
}

func notFoundHandler(c *fiber.Ctx) error {
	if isAPI(c) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "NOT_FOUND"})
	}
	return c.Status(fiber.StatusNotFound).Render("errors/404", fiber.Map{
		"Title":   "Halaman Tidak Ditemukan",
		"Message": "Halaman yang Anda cari tidak ada.",
	}, "layouts/error_layout")
}

// ErrorHandler answers JSON under /api and renders the error page everywhere else.
func ErrorHandler(c *fiber.Ctx, err error) error {
	if isAPI(c) {
		return api_handlers.ErrorHandler(c, err)
	}
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	if code >= fiber.StatusInternalServerError {
		configslog.Log.Error("request failed", zap.String("method", c.Method()), zap.String("path", c.Path()), zap.Error(err))
	}
	view := "errors/500"
	title := "Terjadi Kesalahan"
	if code == fiber.StatusNotFound {
		view = "errors/404"
		title = "Halaman Tidak Ditemukan"
	}
	if rerr := c.Status(code).Render(view, fiber.Map{"Title": title}, "layouts/error_layout"); rerr != nil {
		return c.Status(code).SendString(title)
	}
	return nil
}
