package handlers

import (
	"github.com/arnold/couples-api/internal/middleware"
	"github.com/arnold/couples-api/internal/models"
	"github.com/gofiber/fiber/v2"
)

func (h *Handler) Signup(c *fiber.Ctx) error {
	var req models.SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	resp, err := h.auth.Signup(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

func (h *Handler) Login(c *fiber.Ctx) error {
	var req models.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	resp, err := h.auth.Login(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// GoogleLogin exchanges a Google ID token for a session.
func (h *Handler) GoogleLogin(c *fiber.Ctx) error {
	var req models.GoogleAuthRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	resp, err := h.auth.GoogleLogin(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

func (h *Handler) Logout(c *fiber.Ctx) error {
	token, expiresAt := middleware.GetToken(c)
	if err := h.auth.Logout(c.UserContext(), token, expiresAt); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
