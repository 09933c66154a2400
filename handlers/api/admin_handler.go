package handlers

import (
	"strings"

	"nika.id/configs/configslog"

	"github.com/gofiber/fiber/v2"
)

type moderationRequest struct {
	Action string `json:"action"`
}

// ModerateMessage approves a guest message; {"action":"approve"} is the only action.
func (h *Handler) ModerateMessage(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return invalidInput(c)
	}
	var req moderationRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidInput(c)
	}
	if action := strings.ToLower(strings.TrimSpace(req.Action)); action != "" && action != "approve" {
		return invalidInput(c)
	}
	if err := h.svc.Moderation.Approve(c.UserContext(), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

func (h *Handler) DeleteMessage(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return invalidInput(c)
	}
	if err := h.svc.Moderation.Delete(c.UserContext(), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

type impersonateRequest struct {
	UserID uint `json:"userId"`
}

// Impersonate issues a short-lived grant; the browser follows redirectUrl to switch sessions.
func (h *Handler) Impersonate(c *fiber.Ctx) error {
	var req impersonateRequest
	if err := c.BodyParser(&req); err != nil || req.UserID == 0 {
		return invalidInput(c)
	}
	adminID := currentUserID(c)
	token, err := h.svc.Impersonation.Issue(c.UserContext(), adminID, req.UserID)
	if err != nil {
		return respondError(c, err)
	}
	configslog.SLog.Infof("Admin %d requested impersonation of user %d", adminID, req.UserID)
	return c.JSON(fiber.Map{"token": token, "redirectUrl": "/auth/impersonate?token=" + token})
}

type transactionStatusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) SetTransactionStatus(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return invalidInput(c)
	}
	var req transactionStatusRequest
	if err := c.BodyParser(&req); err != nil || req.Status == "" {
		return invalidInput(c)
	}
	t, err := h.svc.Payments.AdminSetStatus(c.UserContext(), currentUserID(c), id, req.Status)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(t)
}

func (h *Handler) DeleteUser(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return invalidInput(c)
	}
	if err := h.svc.Users.Delete(c.UserContext(), currentUserID(c), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

func (h *Handler) ListMessages(c *fiber.Ctx) error {
	res, err := h.svc.Moderation.List(c.UserContext(), listParams(c, "created_at"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(res)
}

func (h *Handler) ListTransactions(c *fiber.Ctx) error {
	res, err := h.svc.Payments.List(c.UserContext(), listParams(c, "created_at"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(res)
}

func (h *Handler) Stats(c *fiber.Ctx) error {
	stats, err := h.svc.Dashboard.AdminStats(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(stats)
}
