package handlers

import (
	"nika.id/configs/configslog"
	"nika.id/pkg/plans"
	"nika.id/pkg/renderer"
	"nika.id/services"
	"nika.id/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const siteLayout = "layouts/site_layout"

// SiteHandler serves the marketing pages.
type SiteHandler struct {
	templates services.ITemplateService
	plans     *plans.Registry
}

func NewSiteHandler(svc *services.Services) *SiteHandler {
	return &SiteHandler{templates: svc.Templates, plans: svc.Plans}
}

type priceCard struct {
	Tier   plans.Tier
	Limits plans.Limits
	Price  string
}

func (h *SiteHandler) priceCards() []priceCard {
	tiers := h.plans.Tiers()
	out := make([]priceCard, 0, len(tiers))
	for _, t := range tiers {
		l := h.plans.Get(t)
		out = append(out, priceCard{Tier: t, Limits: l, Price: utils.FormatRupiah(l.Price)})
	}
	return out
}

func (h *SiteHandler) Landing(c *fiber.Ctx) error {
	list, err := h.templates.ListActive(c.UserContext())
	if err != nil {
		configslog.Log.Warn("Landing: template list failed", zap.Error(err))
	}
	if len(list) > 6 {
		list = list[:6]
	}
	return renderer.Render(c, "site/landing", siteLayout, fiber.Map{
		"Title":     "Undangan Pernikahan Digital",
		"Templates": list,
		"Plans":     h.priceCards(),
	})
}

func (h *SiteHandler) Pricing(c *fiber.Ctx) error {
	return renderer.Render(c, "site/pricing", siteLayout, fiber.Map{
		"Title": "Harga",
		"Plans": h.priceCards(),
	})
}

func (h *SiteHandler) Templates(c *fiber.Ctx) error {
	list, err := h.templates.ListActive(c.UserContext())
	if err != nil {
		configslog.Log.Error("Template gallery: list failed", zap.Error(err))
	}
	return renderer.Render(c, "site/templates", siteLayout, fiber.Map{
		"Title":     "Galeri Template",
		"Templates": list,
	})
}
