package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"nika.id/configs"
	"nika.id/internal/testutil"
	"nika.id/models"
	"nika.id/services"
	"nika.id/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func newGoogleServer(t *testing.T, profile services.GoogleProfile) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"google-test-token","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer google-test-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(profile)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newGoogleApp(t *testing.T, profile services.GoogleProfile) (*fiber.App, *gorm.DB) {
	t.Helper()
	srv := newGoogleServer(t, profile)
	db := testutil.NewDB(t)
	google := services.NewGoogleOAuth("client-id", "client-secret", "http://localhost/auth/google/callback").
		WithEndpoints(srv.URL+"/auth", srv.URL+"/token", srv.URL+"/userinfo")
	svc := services.New(services.Options{DB: db, JWTSecret: []byte("auth-test"), Google: google})
	h := NewAuthHandler(svc)

	store := configs.SetupSession(false)
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals(utils.LocalsSessionStore, store)
		return c.Next()
	})
	app.Get("/auth/google", h.GoogleStart)
	app.Get("/auth/google/callback", h.GoogleCallback)
	return app, db
}

// startGoogle returns the state sent to the provider and the session cookie holding it.
func startGoogle(t *testing.T, app *fiber.App) (string, string) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/auth/google", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusTemporaryRedirect {
		t.Fatalf("start status = %d", resp.StatusCode)
	}
	loc, err := url.Parse(resp.Header.Get("Location"))
	if err != nil {
		t.Fatal(err)
	}
	state := loc.Query().Get("state")
	if state == "" {
		t.Fatalf("no state in %s", loc)
	}
	for _, ck := range resp.Cookies() {
		if ck.Name == configs.SessionCookieName {
			return state, ck.Name + "=" + ck.Value
		}
	}
	t.Fatal("session cookie not set")
	return "", ""
}

func callback(t *testing.T, app *fiber.App, state, cookie string) string {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/auth/google/callback?code=abc&state="+url.QueryEscape(state), nil)
	req.Header.Set("Cookie", cookie)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusSeeOther {
		t.Fatalf("callback status = %d", resp.StatusCode)
	}
	return resp.Header.Get("Location")
}

func TestGoogleCallbackCreatesAccount(t *testing.T) {
	app, db := newGoogleApp(t, services.GoogleProfile{ID: "g-77", Email: "rina@example.com", VerifiedEmail: true, Name: "Rina Putri"})

	state, cookie := startGoogle(t, app)
	if loc := callback(t, app, state, cookie); loc != "/panel/home" {
		t.Fatalf("redirect = %q, want /panel/home", loc)
	}

	var u models.User
	if err := db.Where("google_id = ?", "g-77").First(&u).Error; err != nil {
		t.Fatal(err)
	}
	if u.Email != "rina@example.com" || !u.IsActive {
		t.Fatalf("user = %+v", u)
	}
}

func TestGoogleCallbackRejectsForeignState(t *testing.T) {
	app, db := newGoogleApp(t, services.GoogleProfile{ID: "g-78", Email: "doni@example.com", VerifiedEmail: true, Name: "Doni"})

	_, cookie := startGoogle(t, app)
	if loc := callback(t, app, "not-the-state", cookie); loc != "/auth/login" {
		t.Fatalf("redirect = %q, want /auth/login", loc)
	}
	var n int64
	if err := db.Model(&models.User{}).Count(&n).Error; err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Fatalf("users = %d, want 0", n)
	}
}

func TestGoogleStartWithoutGoogle(t *testing.T) {
	svc := services.New(services.Options{DB: testutil.NewDB(t), JWTSecret: []byte("auth-test")})
	app := fiber.New()
	app.Get("/auth/google", NewAuthHandler(svc).GoogleStart)
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/auth/google", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusSeeOther || resp.Header.Get("Location") != "/auth/login" {
		t.Fatalf("status = %d location = %q", resp.StatusCode, resp.Header.Get("Location"))
	}
}
