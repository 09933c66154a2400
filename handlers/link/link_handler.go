package handlers

import (
	"errors"
	"strings"

	"nika.id/configs/configslog"
	"nika.id/pkg/slugify"
	"nika.id/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// LinkHandler serves public invitation pages at /:slug.
type LinkHandler struct {
	public services.IPublicService
}

func NewLinkHandler(public services.IPublicService) *LinkHandler {
	return &LinkHandler{public: public}
}

// HandleLink renders the invitation for :slug. The optional ?to= query personalises the greeting.
func (h *LinkHandler) HandleLink(c *fiber.Ctx) error {
	slug := strings.ToLower(c.Params("slug"))
	if !slugify.Valid(slug) {
		return h.renderNotFound(c)
	}
	page, err := h.public.RenderInvitation(c.UserContext(), slug, c.Query("to"))
	if err != nil {
		if errors.Is(err, services.ErrInvitationNotFound) {
			return h.renderNotFound(c)
		}
		configslog.Log.Error("HandleLink: render failed", zap.String("slug", slug), zap.Error(err))
		return fiber.ErrInternalServerError
	}
	status := fiber.StatusOK
	if !page.TemplateFound {
		status = fiber.StatusNotFound
	}
	c.Set(fiber.HeaderCacheControl, "no-store")
	c.Type("html", "utf-8")
	return c.Status(status).Send(page.Body)
}

func (h *LinkHandler) renderNotFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).Render("errors/404", fiber.Map{
		"Title":   "Undangan Tidak Ditemukan",
		"Message": "Undangan yang Anda cari tidak ada atau sudah tidak aktif.",
	}, "layouts/error_layout")
}
