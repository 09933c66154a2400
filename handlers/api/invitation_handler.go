package handlers

import "github.com/gofiber/fiber/v2"

// GetInvitation loads the editor state of the signed-in user.
func (h *Handler) GetInvitation(c *fiber.Ctx) error {
	state, err := h.svc.Invitations.GetEditor(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(state)
}

// SaveInvitation replaces the whole invitation blob. The response carries the stored data, which
// may differ from the request when the plan forbids some features.
func (h *Handler) SaveInvitation(c *fiber.Ctx) error {
	res, err := h.svc.Invitations.Save(c.UserContext(), currentUserID(c), c.Body())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "data": res.Data, "clamped": res.Clamped})
}
