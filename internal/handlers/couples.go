package handlers

import (
	"github.com/arnold/couples-api/internal/models"
	"github.com/gofiber/fiber/v2"
)

// CreateInvite invites another user, by email, to form a couple.
func (h *Handler) CreateInvite(c *fiber.Ctx) error {
	var req models.CreateInviteRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	couple, err := h.couples.CreateInvite(c.UserContext(), userID(c), req.InvitedEmail)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(couple)
}

func (h *Handler) GetCouple(c *fiber.Ctx) error {
	couple, err := h.couples.GetActiveCouple(c.UserContext(), userID(c))
	if err != nil {
		return err
	}
	return c.JSON(couple)
}

func (h *Handler) ListInvites(c *fiber.Ctx) error {
	invites, err := h.couples.ListPendingInvitesForUser(c.UserContext(), userID(c))
	if err != nil {
		return err
	}
	return c.JSON(invites)
}

func (h *Handler) ListCouples(c *fiber.Ctx) error {
	couples, err := h.couples.ListAll(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(couples)
}

func (h *Handler) UpdateCouplePhoto(c *fiber.Ctx) error {
	var req models.UpdateCouplePhotoRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	couple, err := h.couples.UpdateCouplePhoto(c.UserContext(), userID(c), models.CouplePatch{PhotoURL: req.PhotoURL})
	if err != nil {
		return err
	}
	return c.JSON(couple)
}

func (h *Handler) CancelInvite(c *fiber.Ctx) error {
	coupleID, err := paramID(c, "coupleId", "couple")
	if err != nil {
		return err
	}
	if err := h.couples.CancelInvite(c.UserContext(), userID(c), coupleID); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) AcceptInvite(c *fiber.Ctx) error {
	coupleID, err := paramID(c, "coupleId", "couple")
	if err != nil {
		return err
	}
	couple, err := h.couples.AcceptInvite(c.UserContext(), userID(c), coupleID)
	if err != nil {
		return err
	}
	return c.JSON(couple)
}

func (h *Handler) DeclineInvite(c *fiber.Ctx) error {
	coupleID, err := paramID(c, "coupleId", "couple")
	if err != nil {
		return err
	}
	if err := h.couples.DeclineInvite(c.UserContext(), userID(c), coupleID); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) LeaveCouple(c *fiber.Ctx) error {
	if err := h.couples.LeaveCouple(c.UserContext(), userID(c)); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
