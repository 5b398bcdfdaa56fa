package handlers

import (
	"github.com/arnold/couples-api/internal/apperrors"
	"github.com/arnold/couples-api/internal/models"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func (h *Handler) CompleteTask(c *fiber.Ctx) error {
	var req models.CompleteTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	taskID, err := uuid.Parse(req.TaskID)
	if err != nil {
		return apperrors.BadRequest("Invalid task ID")
	}

	completion, err := h.completions.CompleteTask(c.UserContext(), userID(c), models.CompleteTaskInput{
		TaskID:   taskID,
		PhotoRef: req.PhotoURL,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(completion)
}

func (h *Handler) ListCompletions(c *fiber.Ctx) error {
	challengeID, err := paramID(c, "challengeId", "challenge")
	if err != nil {
		return err
	}
	completions, err := h.completions.ListCompletions(c.UserContext(), userID(c), challengeID)
	if err != nil {
		return err
	}
	return c.JSON(completions)
}

func (h *Handler) UndoCompletion(c *fiber.Ctx) error {
	completionID, err := paramID(c, "completionId", "completion")
	if err != nil {
		return err
	}
	if err := h.completions.UndoCompletion(c.UserContext(), userID(c), completionID); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
