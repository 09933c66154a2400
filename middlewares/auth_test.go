package middlewares_test

import (
	"net/http/httptest"
	"testing"

	"nika.id/internal/testutil"
	"nika.id/middlewares"
	"nika.id/models"
	"nika.id/repositories"
	"nika.id/utils"

	"github.com/gofiber/fiber/v2"
)

// withIdentity fakes what the session middleware would place in Locals.
func withIdentity(id uint, role models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if id != 0 {
			c.Locals(utils.LocalsUserID, id)
			c.Locals(utils.LocalsUserRole, role)
		}
		return c.Next()
	}
}

func ok(c *fiber.Ctx) error { return c.SendString("ok") }

func TestAPIAuthFailuresAreJSON(t *testing.T) {
	cases := []struct {
		name string
		id   uint
		role models.Role
		want int
	}{
		{"anonymous", 0, "", fiber.StatusUnauthorized},
		{"plain user", 1, models.RoleUser, fiber.StatusForbidden},
		{"admin", 1, models.RoleAdmin, fiber.StatusOK},
		{"legacy lowercase admin", 1, models.Role("admin"), fiber.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/api/admin/x", withIdentity(tc.id, tc.role), middlewares.AuthMiddleware, middlewares.RequireAdmin(), ok)
			resp, err := app.Test(httptest.NewRequest("GET", "/api/admin/x", nil))
			if err != nil {
				t.Fatal(err)
			}
			if resp.StatusCode != tc.want {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tc.want)
			}
		})
	}
}

func TestPageAuthRedirectsToLogin(t *testing.T) {
	app := fiber.New()
	app.Get("/panel/home", withIdentity(0, ""), middlewares.AuthMiddleware, ok)
	resp, err := app.Test(httptest.NewRequest("GET", "/panel/home", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusSeeOther || resp.Header.Get("Location") != "/auth/login" {
		t.Fatalf("got %d %q", resp.StatusCode, resp.Header.Get("Location"))
	}
}

func TestStatusMiddlewareRejectsInactive(t *testing.T) {
	db := testutil.NewDB(t)
	u := testutil.CreateUser(t, db, "inactive-user")
	if err := db.Model(u).Update("is_active", false).Error; err != nil {
		t.Fatal(err)
	}
	app := fiber.New()
	app.Get("/api/invitation", withIdentity(u.ID, models.RoleUser), middlewares.StatusMiddleware(repositories.NewUserRepository(db)), ok)
	resp, err := app.Test(httptest.NewRequest("GET", "/api/invitation", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusForbidden {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestStatusMiddlewareRefreshesRole(t *testing.T) {
	db := testutil.NewDB(t)
	u := testutil.CreateUser(t, db, "promoted-user")
	if err := db.Model(u).Update("role", "admin").Error; err != nil {
		t.Fatal(err)
	}
	app := fiber.New()
	app.Get("/api/admin/x",
		withIdentity(u.ID, models.RoleUser),
		middlewares.StatusMiddleware(repositories.NewUserRepository(db)),
		middlewares.RequireAdmin(),
		ok)
	resp, err := app.Test(httptest.NewRequest("GET", "/api/admin/x", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}
