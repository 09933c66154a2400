package configs

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestCSRFSkipsAPIRoutes(t *testing.T) {
	store := SetupSession(false)
	app := fiber.New()
	app.Use(SetupCSRF(store, false))
	ok := func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) }
	app.Post("/api/payment/notification", ok)
	app.Post("/panel/settings", ok)

	cases := []struct {
		path string
		want int
	}{
		{"/api/payment/notification", fiber.StatusOK},
		{"/panel/settings", fiber.StatusForbidden},
	}
	for _, tc := range cases {
		resp, err := app.Test(httptest.NewRequest(http.MethodPost, tc.path, nil))
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != tc.want {
			t.Errorf("POST %s = %d, want %d", tc.path, resp.StatusCode, tc.want)
		}
	}
}
