// Package renderer renders HTML views with the values every layout expects.
package renderer

import (
	"net/http"

	"nika.id/models"
	"nika.id/pkg/flashmessages"
	"nika.id/utils"

	"github.com/gofiber/fiber/v2"
)

const (
	FlashSuccessKeyView = "Success"
	FlashErrorKeyView   = "Error"
)

func SetFlashMessages(data fiber.Map, flash flashmessages.FlashMessages) {
	if flash.Success != "" {
		data[FlashSuccessKeyView] = flash.Success
	}
	if flash.Error != "" {
		data[FlashErrorKeyView] = flash.Error
	}
}

// Render adds CSRF token, current user and pending flash messages to data before rendering.
func Render(c *fiber.Ctx, view, layout string, data fiber.Map, status ...int) error {
	if data == nil {
		data = fiber.Map{}
	}
	if _, ok := data["CsrfToken"]; !ok {
		data["CsrfToken"] = c.Locals("csrf")
	}
	if _, ok := data["UserName"]; !ok {
		data["UserName"] = c.Locals(utils.LocalsUserName)
	}
	data["IsAdmin"] = isAdmin(c)
	data["Impersonating"] = c.Locals(utils.LocalsImpersonatorID) != nil
	data["CurrentPath"] = c.Path()
	if _, hasS := data[FlashSuccessKeyView]; !hasS {
		if _, hasE := data[FlashErrorKeyView]; !hasE {
			if flash, err := flashmessages.GetFlashMessages(c); err == nil {
				SetFlashMessages(data, flash)
			}
		}
	}
	code := http.StatusOK
	if len(status) > 0 {
		code = status[0]
	}
	if layout == "" {
		return c.Status(code).Render(view, data)
	}
	return c.Status(code).Render(view, data, layout)
}

func isAdmin(c *fiber.Ctx) bool {
	_, ok := utils.CurrentUserID(c)
	return ok && models.IsAdminRole(utils.CurrentRole(c))
}
