package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"nika.id/configs/configslog"
	"nika.id/middlewares"
	"nika.id/models"
	"nika.id/pkg/flashmessages"
	"nika.id/pkg/plans"
	"nika.id/pkg/renderer"
	"nika.id/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const panelLayout = "layouts/panel_layout"

// PanelHandler serves the couple's own pages under /panel.
type PanelHandler struct {
	svc *services.Services
}

func NewPanelHandler(svc *services.Services) *PanelHandler {
	return &PanelHandler{svc: svc}
}

func (h *PanelHandler) Home(c *fiber.Ctx) error {
	user := middlewares.CurrentUser(c)
	summary, err := h.svc.Guests.Summary(c.UserContext(), user.ID)
	if err != nil {
		configslog.Log.Error("Panel home: guest summary failed", zap.Uint("user_id", user.ID), zap.Error(err))
		summary = &services.GuestSummary{}
	}
	return renderer.Render(c, "panel/home", panelLayout, fiber.Map{
		"Title":   "Beranda",
		"User":    user,
		"Plan":    user.EffectivePlan(time.Now()),
		"Summary": summary,
		"PageURL": h.svc.BaseURL + "/" + user.InvitationSlug,
	})
}

func (h *PanelHandler) Editor(c *fiber.Ctx) error {
	user := middlewares.CurrentUser(c)
	state, err := h.svc.Invitations.GetEditor(c.UserContext(), user.ID)
	if err != nil {
		configslog.Log.Error("Panel editor: load failed", zap.Uint("user_id", user.ID), zap.Error(err))
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, "Editor tidak dapat dimuat.")
		return c.Redirect("/panel/home", fiber.StatusSeeOther)
	}
	stateJSON, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return renderer.Render(c, "panel/editor", panelLayout, fiber.Map{
		"Title":     "Edit Undangan",
		"State":     state,
		"StateJSON": string(stateJSON),
		"PageURL":   h.svc.BaseURL + "/" + user.InvitationSlug,
	})
}

func (h *PanelHandler) Templates(c *fiber.Ctx) error {
	user := middlewares.CurrentUser(c)
	list, err := h.svc.Templates.ListActive(c.UserContext())
	if err != nil {
		configslog.Log.Error("Panel templates: list failed", zap.Error(err))
	}
	return renderer.Render(c, "panel/templates", panelLayout, fiber.Map{
		"Title":     "Pilih Template",
		"Templates": list,
		"Current":   user.TemplateSlug,
		"IsPaid":    user.EffectivePlan(time.Now()).IsPaid(),
	})
}

func (h *PanelHandler) ChooseTemplate(c *fiber.Ctx) error {
	user := middlewares.CurrentUser(c)
	slug := c.FormValue("template")
	if err := h.svc.Users.ChooseTemplate(c.UserContext(), user.ID, slug); err != nil {
		msg := "Template gagal dipilih."
		switch {
		case errors.Is(err, services.ErrPlanRequired), errors.Is(err, services.ErrTemplateNotFound):
			msg = err.Error()
		default:
			configslog.Log.Error("ChooseTemplate failed", zap.Uint("user_id", user.ID), zap.String("template", slug), zap.Error(err))
		}
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, msg)
		return c.Redirect("/panel/templates", fiber.StatusSeeOther)
	}
	_ = flashmessages.SetFlashMessage(c, flashmessages.FlashSuccessKey, "Template berhasil diganti.")
	return c.Redirect("/panel/templates", fiber.StatusSeeOther)
}

func (h *PanelHandler) Guests(c *fiber.Ctx) error {
	user := middlewares.CurrentUser(c)
	ctx := c.UserContext()
	summary, err := h.svc.Guests.Summary(ctx, user.ID)
	if err != nil {
		return err
	}
	list, err := h.svc.Guests.ListRSVPs(ctx, user.ID)
	if err != nil {
		return err
	}
	return renderer.Render(c, "panel/guests", panelLayout, fiber.Map{
		"Title":   "Daftar Tamu",
		"Summary": summary,
		"RSVPs":   list,
	})
}

// GuestsCSV streams the RSVP list as a spreadsheet download.
func (h *PanelHandler) GuestsCSV(c *fiber.Ctx) error {
	user := middlewares.CurrentUser(c)
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="tamu-%s.csv"`, user.InvitationSlug))
	return h.svc.Guests.WriteCSV(c.UserContext(), user.ID, c.Response().BodyWriter())
}

func (h *PanelHandler) Messages(c *fiber.Ctx) error {
	user := middlewares.CurrentUser(c)
	list, err := h.svc.Guests.ListMessages(c.UserContext(), user.ID)
	if err != nil {
		return err
	}
	return renderer.Render(c, "panel/messages", panelLayout, fiber.Map{
		"Title":    "Ucapan Tamu",
		"Messages": list,
	})
}

type planOption struct {
	Tier    plans.Tier
	Limits  plans.Limits
	Current bool
}

func (h *PanelHandler) Upgrade(c *fiber.Ctx) error {
	user := middlewares.CurrentUser(c)
	current := user.EffectivePlan(time.Now())
	options := make([]planOption, 0, 3)
	for _, tier := range h.svc.Plans.Tiers() {
		options = append(options, planOption{Tier: tier, Limits: h.svc.Plans.Get(tier), Current: tier == current})
	}
	return renderer.Render(c, "panel/upgrade", panelLayout, fiber.Map{
		"Title":         "Upgrade Paket",
		"Plans":         options,
		"User":          user,
		"ClientKey":     h.svc.Payments.ClientKey(),
		"SnapScriptURL": h.svc.Payments.SnapScriptURL(),
		"Simulator":     h.svc.Payments.SimulatorEnabled(models.IsAdminRole(user.Role)),
	})
}

func (h *PanelHandler) Transactions(c *fiber.Ctx) error {
	user := middlewares.CurrentUser(c)
	list, err := h.svc.Payments.ListForUser(c.UserContext(), user.ID)
	if err != nil {
		return err
	}
	return renderer.Render(c, "panel/transactions", panelLayout, fiber.Map{
		"Title":        "Riwayat Transaksi",
		"Transactions": list,
		"Simulator":    h.svc.Payments.SimulatorEnabled(models.IsAdminRole(user.Role)),
	})
}

func (h *PanelHandler) Settings(c *fiber.Ctx) error {
	return renderer.Render(c, "panel/settings", panelLayout, fiber.Map{
		"Title":    "Pengaturan",
		"User":     middlewares.CurrentUser(c),
		"FormData": flashmessages.GetFlashFormData(c),
	})
}

type settingsRequest struct {
	Name        string `form:"name" json:"name"`
	PartnerName string `form:"partner_name" json:"partner_name"`
	Phone       string `form:"phone" json:"phone"`
	Slug        string `form:"slug" json:"slug"`
	WeddingDate string `form:"wedding_date" json:"wedding_date"`
}

func (h *PanelHandler) UpdateSettings(c *fiber.Ctx) error {
	user := middlewares.CurrentUser(c)
	var req settingsRequest
	if err := c.BodyParser(&req); err != nil {
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, services.ErrInvalidSettings.Error())
		return c.Redirect("/panel/settings", fiber.StatusSeeOther)
	}
	in := services.SettingsInput{Name: req.Name, PartnerName: req.PartnerName, Phone: req.Phone, Slug: req.Slug}
	if req.WeddingDate != "" {
		d, err := time.Parse("2006-01-02", req.WeddingDate)
		if err != nil {
			_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, "Format tanggal pernikahan tidak valid.")
			return c.Redirect("/panel/settings", fiber.StatusSeeOther)
		}
		in.WeddingDate = &d
	}
	if _, err := h.svc.Users.UpdateSettings(c.UserContext(), user.ID, in); err != nil {
		var ue services.UserServiceError
		msg := "Pengaturan gagal disimpan."
		if errors.As(err, &ue) {
			msg = err.Error()
		} else {
			configslog.Log.Error("UpdateSettings failed", zap.Uint("user_id", user.ID), zap.Error(err))
		}
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, msg)
		_ = flashmessages.SetFlashFormData(c, req)
		return c.Redirect("/panel/settings", fiber.StatusSeeOther)
	}
	_ = flashmessages.SetFlashMessage(c, flashmessages.FlashSuccessKey, "Pengaturan berhasil disimpan.")
	return c.Redirect("/panel/settings", fiber.StatusSeeOther)
}
