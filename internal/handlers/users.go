package handlers

import (
	"github.com/arnold/couples-api/internal/models"
	"github.com/gofiber/fiber/v2"
)

func (h *Handler) GetProfile(c *fiber.Ctx) error {
	user, err := h.users.GetProfile(c.UserContext(), userID(c))
	if err != nil {
		return err
	}
	return c.JSON(user)
}

func (h *Handler) UpdateProfile(c *fiber.Ctx) error {
	var patch models.UserPatch
	if err := c.BodyParser(&patch); err != nil {
		return badRequest(c, "Invalid request body")
	}

	user, err := h.users.UpdateProfile(c.UserContext(), userID(c), patch)
	if err != nil {
		return err
	}
	return c.JSON(user)
}

func (h *Handler) ListUsers(c *fiber.Ctx) error {
	users, err := h.users.ListUsers(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(users)
}
