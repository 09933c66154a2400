package handlers

import (
	"errors"
	"net/http"
	"time"

	"nika.id/configs/configslog"
	"nika.id/models"
	"nika.id/pkg/flashmessages"
	"nika.id/pkg/renderer"
	"nika.id/services"
	"nika.id/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const oauthStateKey = "oauth_state"

type AuthHandler struct {
	auth          services.IAuthService
	users         services.IUserService
	impersonation services.IImpersonationService
	google        *services.GoogleOAuth
}

func NewAuthHandler(svc *services.Services) *AuthHandler {
	return &AuthHandler{
		auth:          svc.Auth,
		users:         svc.Users,
		impersonation: svc.Impersonation,
		google:        svc.Google,
	}
}

func homeFor(u *models.User) string {
	if u.IsAdmin() {
		return "/dashboard/home"
	}
	return "/panel/home"
}

func (h *AuthHandler) ShowLogin(c *fiber.Ctx) error {
	return renderer.Render(c, "auth/login", "layouts/auth_layout", fiber.Map{
		"Title":         "Masuk",
		"GoogleEnabled": h.google.Enabled(),
		"FormData":      flashmessages.GetFlashFormData(c),
	})
}

type loginRequest struct {
	Email    string `form:"email"`
	Password string `form:"password"`
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, "Data login tidak valid.")
		return c.Redirect("/auth/login", fiber.StatusSeeOther)
	}
	user, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		msg := "Terjadi kesalahan, silakan coba lagi."
		switch {
		case errors.Is(err, services.ErrInvalidCredentials), errors.Is(err, services.ErrAccountInactive):
			msg = err.Error()
		default:
			configslog.Log.Error("Login failed", zap.String("email", req.Email), zap.Error(err))
		}
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, msg)
		_ = flashmessages.SetFlashFormData(c, fiber.Map{"email": req.Email})
		return c.Redirect("/auth/login", fiber.StatusSeeOther)
	}
	if err := utils.LoginUser(c, user); err != nil {
		configslog.Log.Error("Login: session save failed", zap.Uint("user_id", user.ID), zap.Error(err))
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, "Sesi tidak dapat dibuat.")
		return c.Redirect("/auth/login", fiber.StatusSeeOther)
	}
	configslog.SLog.Infof("User %d logged in", user.ID)
	return c.Redirect(homeFor(user), fiber.StatusSeeOther)
}

func (h *AuthHandler) ShowRegister(c *fiber.Ctx) error {
	return renderer.Render(c, "auth/register", "layouts/auth_layout", fiber.Map{
		"Title":         "Daftar",
		"GoogleEnabled": h.google.Enabled(),
		"FormData":      flashmessages.GetFlashFormData(c),
	})
}

type registerRequest struct {
	Name        string `form:"name"`
	PartnerName string `form:"partner_name"`
	Email       string `form:"email"`
	Password    string `form:"password"`
	Slug        string `form:"slug"`
	WeddingDate string `form:"wedding_date"`
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, "Data pendaftaran tidak valid.")
		return c.Redirect("/auth/register", fiber.StatusSeeOther)
	}
	in := services.RegisterInput{
		Name:        req.Name,
		PartnerName: req.PartnerName,
		Email:       req.Email,
		Password:    req.Password,
		Slug:        req.Slug,
	}
	if req.WeddingDate != "" {
		d, err := time.Parse("2006-01-02", req.WeddingDate)
		if err != nil {
			_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, "Format tanggal pernikahan tidak valid.")
			return c.Redirect("/auth/register", fiber.StatusSeeOther)
		}
		in.WeddingDate = &d
	}
	user, err := h.auth.Register(c.UserContext(), in)
	if err != nil {
		msg := "Pendaftaran gagal, silakan coba lagi."
		if isUserFacing(err) {
			msg = err.Error()
		} else {
			configslog.Log.Error("Register failed", zap.String("email", req.Email), zap.Error(err))
		}
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, msg)
		_ = flashmessages.SetFlashFormData(c, fiber.Map{
			"name": req.Name, "partner_name": req.PartnerName, "email": req.Email,
			"slug": req.Slug, "wedding_date": req.WeddingDate,
		})
		return c.Redirect("/auth/register", fiber.StatusSeeOther)
	}
	if err := utils.LoginUser(c, user); err != nil {
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashSuccessKey, "Akun dibuat. Silakan masuk.")
		return c.Redirect("/auth/login", fiber.StatusSeeOther)
	}
	_ = flashmessages.SetFlashMessage(c, flashmessages.FlashSuccessKey, "Selamat datang di nika.id! Undangan Anda sudah siap diedit.")
	return c.Redirect("/panel/editor", fiber.StatusSeeOther)
}

// isUserFacing reports whether err is a service validation error whose message can be shown as is.
func isUserFacing(err error) bool {
	var (
		ae services.AuthServiceError
		ue services.UserServiceError
	)
	return errors.As(err, &ae) || errors.As(err, &ue)
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if err := utils.LogoutUser(c); err != nil {
		configslog.Log.Warn("Logout: session destroy failed", zap.Error(err))
	}
	return c.Redirect("/auth/login", fiber.StatusSeeOther)
}

// GoogleStart redirects to the Google consent screen with a state bound to the session.
func (h *AuthHandler) GoogleStart(c *fiber.Ctx) error {
	if !h.google.Enabled() {
		return c.Redirect("/auth/login", fiber.StatusSeeOther)
	}
	sess, err := utils.SessionStart(c)
	if err != nil {
		return err
	}
	state, err := utils.GenerateSecureRandomString(16)
	if err != nil {
		return err
	}
	sess.Set(oauthStateKey, state)
	if err := sess.Save(); err != nil {
		return err
	}
	return c.Redirect(h.google.AuthURL(state), http.StatusTemporaryRedirect)
}

func (h *AuthHandler) GoogleCallback(c *fiber.Ctx) error {
	fail := func(msg string) error {
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, msg)
		return c.Redirect("/auth/login", fiber.StatusSeeOther)
	}
	if !h.google.Enabled() {
		return fail("Login Google tidak tersedia.")
	}
	sess, err := utils.SessionStart(c)
	if err != nil {
		return err
	}
	want, _ := sess.Get(oauthStateKey).(string)
	sess.Delete(oauthStateKey)
	_ = sess.Save()
	if want == "" || c.Query("state") != want {
		return fail("Sesi login Google tidak valid, silakan coba lagi.")
	}
	profile, err := h.google.Profile(c.UserContext(), c.Query("code"))
	if err != nil {
		configslog.Log.Warn("Google profile exchange failed", zap.Error(err))
		return fail("Login Google gagal.")
	}
	user, err := h.auth.LoginWithGoogle(c.UserContext(), profile)
	if err != nil {
		if isUserFacing(err) {
			return fail(err.Error())
		}
		configslog.Log.Error("Google login failed", zap.String("email", profile.Email), zap.Error(err))
		return fail("Login Google gagal.")
	}
	if err := utils.LoginUser(c, user); err != nil {
		return fail("Sesi tidak dapat dibuat.")
	}
	return c.Redirect(homeFor(user), fiber.StatusSeeOther)
}

// Impersonate redeems an admin grant and switches the session to the target user.
func (h *AuthHandler) Impersonate(c *fiber.Ctx) error {
	grant, err := h.impersonation.Verify(c.UserContext(), c.Query("token"))
	if err != nil {
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, err.Error())
		return c.Redirect("/dashboard/users", fiber.StatusSeeOther)
	}
	if id, ok := utils.CurrentUserID(c); !ok || id != grant.AdminID {
		return c.Redirect("/auth/login", fiber.StatusSeeOther)
	}
	user, err := h.users.GetByID(c.UserContext(), grant.UserID)
	if err != nil {
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, "Pengguna tidak ditemukan.")
		return c.Redirect("/dashboard/users", fiber.StatusSeeOther)
	}
	if err := utils.StartImpersonation(c, user, grant.AdminID); err != nil {
		return err
	}
	configslog.SLog.Infof("Admin %d is now impersonating user %d", grant.AdminID, user.ID)
	return c.Redirect("/panel/home", fiber.StatusSeeOther)
}

// StopImpersonation restores the admin's own session.
func (h *AuthHandler) StopImpersonation(c *fiber.Ctx) error {
	adminID, ok := c.Locals(utils.LocalsImpersonatorID).(uint)
	if !ok {
		return c.Redirect("/panel/home", fiber.StatusSeeOther)
	}
	admin, err := h.users.GetByID(c.UserContext(), adminID)
	if err != nil || !admin.IsAdmin() {
		_ = utils.LogoutUser(c)
		return c.Redirect("/auth/login", fiber.StatusSeeOther)
	}
	if err := utils.LoginUser(c, admin); err != nil {
		return err
	}
	return c.Redirect("/dashboard/users", fiber.StatusSeeOther)
}

type passwordRequest struct {
	Current string `form:"current_password"`
	New     string `form:"new_password"`
	Confirm string `form:"confirm_password"`
}

func (h *AuthHandler) UpdatePassword(c *fiber.Ctx) error {
	var req passwordRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Redirect("/panel/settings", fiber.StatusSeeOther)
	}
	if req.New != req.Confirm {
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, services.ErrPasswordMismatch.Error())
		return c.Redirect("/panel/settings", fiber.StatusSeeOther)
	}
	id, _ := utils.CurrentUserID(c)
	if err := h.auth.ChangePassword(c.UserContext(), id, req.Current, req.New); err != nil {
		msg := "Kata sandi gagal diubah."
		if isUserFacing(err) {
			msg = err.Error()
		} else {
			configslog.Log.Error("UpdatePassword failed", zap.Uint("user_id", id), zap.Error(err))
		}
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, msg)
		return c.Redirect("/panel/settings", fiber.StatusSeeOther)
	}
	_ = flashmessages.SetFlashMessage(c, flashmessages.FlashSuccessKey, "Kata sandi berhasil diubah.")
	return c.Redirect("/panel/settings", fiber.StatusSeeOther)
}
