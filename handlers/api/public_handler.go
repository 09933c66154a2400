package handlers

import (
	"nika.id/services"

	"github.com/gofiber/fiber/v2"
)

// Submit handles RSVP and guestbook posts from public invitation pages. No session is required.
func (h *Handler) Submit(c *fiber.Ctx) error {
	var in services.SubmissionInput
	if err := c.BodyParser(&in); err != nil {
		return invalidInput(c)
	}
	if err := h.svc.Submissions.Submit(c.UserContext(), in); err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true})
}

// Plans lists every tier with its limits, cheapest first.
func (h *Handler) Plans(c *fiber.Ctx) error {
	out := make([]fiber.Map, 0, 3)
	for _, tier := range h.svc.Plans.Tiers() {
		out = append(out, fiber.Map{"tier": tier, "limits": h.svc.Plans.Get(tier)})
	}
	return c.JSON(fiber.Map{"plans": out})
}
