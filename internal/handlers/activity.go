package handlers

import (
	"github.com/gofiber/fiber/v2"
)

// GetActivity returns a page of the caller's couple activity feed, newest
// first.
func (h *Handler) GetActivity(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 20)

	feed, err := h.activity.List(c.UserContext(), userID(c), page, limit)
	if err != nil {
		return err
	}
	return c.JSON(feed)
}
