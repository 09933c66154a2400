package handlers

import (
	"encoding/json"
	"errors"
	"strconv"

	"nika.id/configs/configslog"
	"nika.id/models"
	"nika.id/pkg/flashmessages"
	"nika.id/pkg/queryparams"
	"nika.id/pkg/renderer"
	"nika.id/services"
	"nika.id/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const dashboardLayout = "layouts/dashboard_layout"

// DashboardHandler serves the admin back-office under /dashboard.
type DashboardHandler struct {
	svc *services.Services
}

func NewDashboardHandler(svc *services.Services) *DashboardHandler {
	return &DashboardHandler{svc: svc}
}

func listParams(c *fiber.Ctx, defaultSort string) queryparams.ListParams {
	params := queryparams.DefaultListParams(defaultSort)
	if err := c.QueryParser(&params); err != nil {
		params = queryparams.DefaultListParams(defaultSort)
	}
	return params
}

func paramID(c *fiber.Ctx) uint {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return 0
	}
	return uint(id)
}

// flashResult sets a success or error flash for a form action and redirects back to path.
func flashResult(c *fiber.Ctx, path string, err error, ok string) error {
	if err != nil {
		msg := err.Error()
		if _, known := userFacing(err); !known {
			configslog.Log.Error("Dashboard action failed", zap.String("path", c.Path()), zap.Error(err))
			msg = "Terjadi kesalahan, silakan coba lagi."
		}
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, msg)
	} else {
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashSuccessKey, ok)
	}
	return c.Redirect(path, fiber.StatusSeeOther)
}

func userFacing(err error) (string, bool) {
	var (
		us services.UserServiceError
		ts services.TemplateServiceError
		ms services.ModerationServiceError
		ps services.PaymentServiceError
	)
	if errors.As(err, &us) || errors.As(err, &ts) || errors.As(err, &ms) || errors.As(err, &ps) {
		return err.Error(), true
	}
	return "", false
}

func (h *DashboardHandler) Home(c *fiber.Ctx) error {
	stats, err := h.svc.Dashboard.AdminStats(c.UserContext())
	if err != nil {
		configslog.Log.Error("Dashboard stats failed", zap.Error(err))
		stats = &services.AdminStats{}
	}
	return renderer.Render(c, "dashboard/home", dashboardLayout, fiber.Map{
		"Title":   "Dashboard",
		"Stats":   stats,
		"Revenue": utils.FormatRupiah(stats.Revenue),
	})
}

func (h *DashboardHandler) Users(c *fiber.Ctx) error {
	params := listParams(c, "created_at")
	res, err := h.svc.Users.List(c.UserContext(), params)
	if err != nil {
		return err
	}
	return renderer.Render(c, "dashboard/users", dashboardLayout, fiber.Map{
		"Title":  "Pengguna",
		"Result": res,
		"Params": params,
	})
}

func (h *DashboardHandler) ToggleUser(c *fiber.Ctx) error {
	actorID, _ := utils.CurrentUserID(c)
	active := c.FormValue("active") == "true"
	err := h.svc.Users.SetActive(c.UserContext(), actorID, paramID(c), active)
	msg := "Pengguna dinonaktifkan."
	if active {
		msg = "Pengguna diaktifkan."
	}
	return flashResult(c, "/dashboard/users", err, msg)
}

func (h *DashboardHandler) DeleteUser(c *fiber.Ctx) error {
	actorID, _ := utils.CurrentUserID(c)
	err := h.svc.Users.Delete(c.UserContext(), actorID, paramID(c))
	return flashResult(c, "/dashboard/users", err, "Pengguna dan seluruh datanya telah dihapus.")
}

// ImpersonateUser issues a grant and follows it straight away; the API variant returns the link instead.
func (h *DashboardHandler) ImpersonateUser(c *fiber.Ctx) error {
	actorID, _ := utils.CurrentUserID(c)
	token, err := h.svc.Impersonation.Issue(c.UserContext(), actorID, paramID(c))
	if err != nil {
		return flashResult(c, "/dashboard/users", err, "")
	}
	return c.Redirect("/auth/impersonate?token="+token, fiber.StatusSeeOther)
}

func (h *DashboardHandler) Templates(c *fiber.Ctx) error {
	params := listParams(c, "created_at")
	res, err := h.svc.Templates.List(c.UserContext(), params)
	if err != nil {
		return err
	}
	return renderer.Render(c, "dashboard/templates", dashboardLayout, fiber.Map{
		"Title":      "Template",
		"Result":     res,
		"Params":     params,
		"BaseThemes": h.svc.Templates.BaseThemes(),
		"FormData":   flashmessages.GetFlashFormData(c),
	})
}

type templateForm struct {
	Name      string `form:"name" json:"name"`
	Slug      string `form:"slug" json:"slug"`
	Category  string `form:"category" json:"category"`
	Type      string `form:"type" json:"type"`
	Thumbnail string `form:"thumbnail" json:"thumbnail"`
	Config    string `form:"config" json:"config"`
	IsActive  string `form:"is_active" json:"is_active"`
}

func (f templateForm) active() *bool {
	b := f.IsActive == "on" || f.IsActive == "true"
	return &b
}

func (h *DashboardHandler) CreateTemplate(c *fiber.Ctx) error {
	var f templateForm
	if err := c.BodyParser(&f); err != nil {
		return flashResult(c, "/dashboard/templates", services.ErrInvalidTemplate, "")
	}
	in := services.TemplateInput{
		Name:      f.Name,
		Slug:      f.Slug,
		Category:  f.Category,
		Type:      models.TemplateType(f.Type),
		Thumbnail: f.Thumbnail,
		IsActive:  f.active(),
	}
	if f.Config != "" {
		in.Config = json.RawMessage(f.Config)
	}
	if fh, err := c.FormFile("theme"); err == nil {
		raw, rerr := readFormFile(fh)
		if rerr != nil {
			return flashResult(c, "/dashboard/templates", rerr, "")
		}
		cfg, perr := h.svc.Templates.ParseThemeFile(fh.Filename, raw)
		if perr != nil {
			return flashResult(c, "/dashboard/templates", perr, "")
		}
		in.Config = cfg
	}
	_, err := h.svc.Templates.Create(c.UserContext(), in)
	if err != nil {
		_ = flashmessages.SetFlashFormData(c, f)
	}
	return flashResult(c, "/dashboard/templates", err, "Template berhasil dibuat.")
}

func (h *DashboardHandler) UpdateTemplate(c *fiber.Ctx) error {
	var f templateForm
	if err := c.BodyParser(&f); err != nil {
		return flashResult(c, "/dashboard/templates", services.ErrInvalidTemplate, "")
	}
	tt := models.TemplateType(f.Type)
	patch := services.TemplatePatch{
		Name:      &f.Name,
		Category:  &f.Category,
		Type:      &tt,
		Thumbnail: &f.Thumbnail,
		IsActive:  f.active(),
	}
	if f.Config != "" {
		patch.Config = json.RawMessage(f.Config)
	}
	_, err := h.svc.Templates.Update(c.UserContext(), paramID(c), patch)
	return flashResult(c, "/dashboard/templates", err, "Template berhasil diperbarui.")
}

func (h *DashboardHandler) DeleteTemplate(c *fiber.Ctx) error {
	err := h.svc.Templates.Delete(c.UserContext(), paramID(c))
	return flashResult(c, "/dashboard/templates", err, "Template dihapus.")
}

func (h *DashboardHandler) Moderation(c *fiber.Ctx) error {
	params := listParams(c, "created_at")
	switch params.Status {
	case "":
		params.Status = string(models.MessagePending)
	case "ALL":
		params.Status = ""
	}
	res, err := h.svc.Moderation.List(c.UserContext(), params)
	if err != nil {
		return err
	}
	return renderer.Render(c, "dashboard/moderation", dashboardLayout, fiber.Map{
		"Title":  "Moderasi Ucapan",
		"Result": res,
		"Params": params,
	})
}

func (h *DashboardHandler) ApproveMessage(c *fiber.Ctx) error {
	err := h.svc.Moderation.Approve(c.UserContext(), paramID(c))
	return flashResult(c, "/dashboard/moderation", err, "Ucapan disetujui.")
}

func (h *DashboardHandler) DeleteMessage(c *fiber.Ctx) error {
	err := h.svc.Moderation.Delete(c.UserContext(), paramID(c))
	return flashResult(c, "/dashboard/moderation", err, "Ucapan dihapus.")
}

func (h *DashboardHandler) Transactions(c *fiber.Ctx) error {
	params := listParams(c, "created_at")
	res, err := h.svc.Payments.List(c.UserContext(), params)
	if err != nil {
		return err
	}
	return renderer.Render(c, "dashboard/transactions", dashboardLayout, fiber.Map{
		"Title":     "Transaksi",
		"Result":    res,
		"Params":    params,
		"Simulator": h.svc.Payments.SimulatorEnabled(true),
	})
}

func (h *DashboardHandler) SetTransactionStatus(c *fiber.Ctx) error {
	actorID, _ := utils.CurrentUserID(c)
	_, err := h.svc.Payments.AdminSetStatus(c.UserContext(), actorID, paramID(c), c.FormValue("status"))
	return flashResult(c, "/dashboard/transactions", err, "Status transaksi diperbarui.")
}
