package handlers

import (
	"nika.id/configs/configslog"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type tokenRequest struct {
	Plan string `json:"plan"`
}

// CreatePaymentToken starts an upgrade. An Idempotency-Key header makes retries return the same order.
func (h *Handler) CreatePaymentToken(c *fiber.Ctx) error {
	var req tokenRequest
	if err := c.BodyParser(&req); err != nil || req.Plan == "" {
		return invalidInput(c)
	}
	res, err := h.svc.Payments.CreateToken(c.UserContext(), currentUserID(c), req.Plan, c.Get("Idempotency-Key"))
	if err != nil {
		return respondError(c, err)
	}
	status := fiber.StatusCreated
	if res.Reused {
		status = fiber.StatusOK
	}
	return c.Status(status).JSON(res)
}

// PaymentNotification receives Midtrans HTTP notifications. Everything except a bad signature, a
// malformed body or an unknown order answers 200 so the gateway stops retrying.
func (h *Handler) PaymentNotification(c *fiber.Ctx) error {
	res, err := h.svc.Payments.HandleNotification(c.UserContext(), c.Body())
	if err != nil {
		return respondError(c, err)
	}
	if res.Duplicate {
		configslog.Log.Info("duplicate payment notification ignored", zap.String("order_id", res.OrderID))
	}
	return c.JSON(res)
}

type simulateRequest struct {
	OrderID string `json:"orderId"`
	Status  string `json:"status"`
}

func (h *Handler) SimulatePayment(c *fiber.Ctx) error {
	var req simulateRequest
	if err := c.BodyParser(&req); err != nil || req.OrderID == "" || req.Status == "" {
		return invalidInput(c)
	}
	res, err := h.svc.Payments.Simulate(c.UserContext(), isAdmin(c), req.OrderID, req.Status)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(res)
}
