package middlewares

import (
	"errors"
	"strings"

	"nika.id/configs/configslog"
	"nika.id/models"
	"nika.id/pkg/flashmessages"
	"nika.id/repositories"
	"nika.id/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"
)

// LocalsUser holds the *models.User loaded by StatusMiddleware.
const LocalsUser = "currentUser"

func isAPI(c *fiber.Ctx) bool {
	return strings.HasPrefix(c.Path(), "/api/")
}

func unauthorized(c *fiber.Ctx) error {
	if isAPI(c) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": CodeUnauthorized})
	}
	return c.Redirect("/auth/login", fiber.StatusSeeOther)
}

func forbidden(c *fiber.Ctx) error {
	if isAPI(c) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": CodeForbidden})
	}
	_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, "Anda tidak memiliki akses ke halaman tersebut.")
	return c.Redirect("/panel/home", fiber.StatusSeeOther)
}

// AuthMiddleware requires a session user. Pages redirect to the login form, /api answers 401.
func AuthMiddleware(c *fiber.Ctx) error {
	if _, ok := utils.CurrentUserID(c); !ok {
		return unauthorized(c)
	}
	return c.Next()
}

// GuestMiddleware keeps signed-in users away from the login and register forms.
func GuestMiddleware(c *fiber.Ctx) error {
	if _, ok := utils.CurrentUserID(c); ok {
		if models.IsAdminRole(utils.CurrentRole(c)) {
			return c.Redirect("/dashboard/home", fiber.StatusSeeOther)
		}
		return c.Redirect("/panel/home", fiber.StatusSeeOther)
	}
	return c.Next()
}

// StatusMiddleware reloads the user, drops sessions of deleted or deactivated accounts and
// refreshes the role in Locals so a demotion takes effect on the next request.
func StatusMiddleware(users repositories.IUserRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := utils.CurrentUserID(c)
		if !ok {
			return unauthorized(c)
		}
		user, err := users.FindByID(c.UserContext(), id)
		if err != nil {
			if !errors.Is(err, repositories.ErrNotFound) {
				configslog.Log.Error("StatusMiddleware: user lookup failed", zap.Uint("user_id", id), zap.Error(err))
				return fiber.ErrInternalServerError
			}
			_ = utils.LogoutUser(c)
			return unauthorized(c)
		}
		if !user.IsActive {
			configslog.SLog.Infof("Inactive user %d tried to access %s", id, c.Path())
			_ = utils.LogoutUser(c)
			if isAPI(c) {
				return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": CodeForbidden})
			}
			return c.Redirect("/auth/login", fiber.StatusSeeOther)
		}
		c.Locals(LocalsUser, user)
		c.Locals(utils.LocalsUserRole, models.ParseRole(string(user.Role)))
		c.Locals(utils.LocalsUserName, user.Name)
		return c.Next()
	}
}

// RequireAdmin must run after AuthMiddleware.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !models.IsAdminRole(utils.CurrentRole(c)) {
			id, _ := utils.CurrentUserID(c)
			configslog.Log.Warn("admin route denied", zap.Uint("user_id", id), zap.String("path", c.Path()))
			return forbidden(c)
		}
		return c.Next()
	}
}

// CurrentUser returns the user StatusMiddleware loaded, or nil on routes without it.
func CurrentUser(c *fiber.Ctx) *models.User {
	u, _ := c.Locals(LocalsUser).(*models.User)
	return u
}
