package handlers

import (
	"encoding/json"
	"io"
	"strconv"
	"strings"

	"nika.id/models"
	"nika.id/services"

	"github.com/gofiber/fiber/v2"
)

const maxThemeFileBytes = 256 << 10

// ListTemplates returns the active gallery, or every template paginated for admins.
func (h *Handler) ListTemplates(c *fiber.Ctx) error {
	if isAdmin(c) {
		res, err := h.svc.Templates.List(c.UserContext(), listParams(c, "created_at"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(res)
	}
	list, err := h.svc.Templates.ListActive(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"data": list})
}

func (h *Handler) GetTemplate(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return invalidInput(c)
	}
	t, err := h.svc.Templates.Get(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(t)
}

func (h *Handler) CreateTemplate(c *fiber.Ctx) error {
	var in services.TemplateInput
	if err := c.BodyParser(&in); err != nil {
		return invalidInput(c)
	}
	t, err := h.svc.Templates.Create(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(t)
}

// UpdateTemplate accepts a JSON patch, or a multipart form with metadata fields plus optional
// "thumbnail" image and "theme" YAML/JSON files.
func (h *Handler) UpdateTemplate(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return invalidInput(c)
	}
	var (
		patch services.TemplatePatch
		err   error
	)
	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		patch, err = h.multipartPatch(c)
	} else {
		err = json.Unmarshal(c.Body(), &patch)
		if err != nil {
			err = services.ErrInvalidTemplate
		}
	}
	if err != nil {
		return respondError(c, err)
	}
	t, err := h.svc.Templates.Update(c.UserContext(), id, patch)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(t)
}

func (h *Handler) multipartPatch(c *fiber.Ctx) (services.TemplatePatch, error) {
	var p services.TemplatePatch
	form, err := c.MultipartForm()
	if err != nil {
		return p, services.ErrInvalidTemplate
	}
	value := func(key string) *string {
		if v, ok := form.Value[key]; ok && len(v) > 0 {
			s := v[0]
			return &s
		}
		return nil
	}
	p.Name = value("name")
	p.Category = value("category")
	if v := value("type"); v != nil {
		tt := models.TemplateType(*v)
		p.Type = &tt
	}
	if v := value("isActive"); v != nil {
		b, perr := strconv.ParseBool(*v)
		if perr != nil {
			return p, services.ErrInvalidTemplate
		}
		p.IsActive = &b
	}
	if v := value("config"); v != nil && strings.TrimSpace(*v) != "" {
		p.Config = json.RawMessage(*v)
	}

	if files := form.File["theme"]; len(files) > 0 {
		fh := files[0]
		if fh.Size > maxThemeFileBytes {
			return p, services.ErrUploadTooLarge
		}
		f, err := fh.Open()
		if err != nil {
			return p, err
		}
		raw, err := io.ReadAll(io.LimitReader(f, maxThemeFileBytes))
		f.Close()
		if err != nil {
			return p, err
		}
		cfg, err := h.svc.Templates.ParseThemeFile(fh.Filename, raw)
		if err != nil {
			return p, err
		}
		p.Config = cfg
	}

	if files := form.File["thumbnail"]; len(files) > 0 {
		fh := files[0]
		f, err := fh.Open()
		if err != nil {
			return p, err
		}
		url, err := h.svc.Uploads.Upload(c.UserContext(), services.UploadThumbnail, fh.Size, f)
		f.Close()
		if err != nil {
			return p, err
		}
		p.Thumbnail = &url
	} else {
		p.Thumbnail = value("thumbnail")
	}
	return p, nil
}

func (h *Handler) DeleteTemplate(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return invalidInput(c)
	}
	if err := h.svc.Templates.Delete(c.UserContext(), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}
