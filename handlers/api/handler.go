package handlers

import (
	"strconv"

	"nika.id/middlewares"
	"nika.id/models"
	"nika.id/pkg/queryparams"
	"nika.id/services"
	"nika.id/utils"

	"github.com/gofiber/fiber/v2"
)

// Handler carries the services behind every /api endpoint.
type Handler struct {
	svc *services.Services
}

func NewHandler(svc *services.Services) *Handler {
	return &Handler{svc: svc}
}

func currentUserID(c *fiber.Ctx) uint {
	if u := middlewares.CurrentUser(c); u != nil {
		return u.ID
	}
	id, _ := utils.CurrentUserID(c)
	return id
}

func isAdmin(c *fiber.Ctx) bool {
	return models.IsAdminRole(utils.CurrentRole(c))
}

func paramID(c *fiber.Ctx) (uint, bool) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func listParams(c *fiber.Ctx, defaultSort string) queryparams.ListParams {
	params := queryparams.DefaultListParams(defaultSort)
	if err := c.QueryParser(&params); err != nil {
		params = queryparams.DefaultListParams(defaultSort)
	}
	return params
}
