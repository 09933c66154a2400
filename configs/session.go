package configs

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/gofiber/fiber/v2/utils"
)

const SessionCookieName = "nika_session"

// SetupSession creates the cookie-backed session store shared by all handlers.
func SetupSession(secure bool) *session.Store {
	return session.New(session.Config{
		Expiration:     7 * 24 * time.Hour,
		KeyLookup:      "cookie:" + SessionCookieName,
		CookieHTTPOnly: true,
		CookieSecure:   secure,
		CookieSameSite: "Lax",
		KeyGenerator:   utils.UUIDv4,
	})
}

// SetupCSRF protects the HTML form routes. Next skips every /api path, the payment webhook
// included; those routes read JSON, not forms.
func SetupCSRF(store *session.Store, secure bool) fiber.Handler {
	return csrf.New(csrf.Config{
		KeyLookup:      "form:_csrf",
		CookieName:     "nika_csrf",
		CookieSameSite: "Lax",
		CookieSecure:   secure,
		CookieHTTPOnly: true,
		Expiration:     2 * time.Hour,
		Session:        store,
		ContextKey:     "csrf",
		Next: func(c *fiber.Ctx) bool {
			return len(c.Path()) >= 4 && c.Path()[:4] == "/api"
		},
	})
}
