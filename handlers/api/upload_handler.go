package handlers

import (
	"nika.id/services"

	"github.com/gofiber/fiber/v2"
)

// uploadFile reads the multipart "file" field and stores it as kind.
func (h *Handler) uploadFile(c *fiber.Ctx, kind services.UploadKind) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return invalidInput(c)
	}
	f, err := fh.Open()
	if err != nil {
		return respondError(c, err)
	}
	defer f.Close()
	url, err := h.svc.Uploads.Upload(c.UserContext(), kind, fh.Size, f)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"url": url})
}

func (h *Handler) Upload(c *fiber.Ctx) error      { return h.uploadFile(c, services.UploadAny) }
func (h *Handler) UploadImage(c *fiber.Ctx) error { return h.uploadFile(c, services.UploadImage) }
func (h *Handler) UploadAudio(c *fiber.Ctx) error { return h.uploadFile(c, services.UploadAudio) }

// UploadTemplateThumbnail is the admin thumbnail upload used by the template form.
func (h *Handler) UploadTemplateThumbnail(c *fiber.Ctx) error {
	return h.uploadFile(c, services.UploadThumbnail)
}
