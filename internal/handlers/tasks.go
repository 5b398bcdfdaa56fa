package handlers

import (
	"github.com/arnold/couples-api/internal/apperrors"
	"github.com/arnold/couples-api/internal/models"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func (h *Handler) CreateTask(c *fiber.Ctx) error {
	var req models.CreateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	challengeID, err := uuid.Parse(req.ChallengeID)
	if err != nil {
		return apperrors.BadRequest("Invalid challenge ID")
	}

	task, err := h.tasks.CreateTask(c.UserContext(), userID(c), models.CreateTaskInput{
		ChallengeID:    challengeID,
		Name:           req.Name,
		Description:    req.Description,
		Points:         req.Points,
		MaxCompletions: req.MaxCompletions,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(task)
}

// ListTasks returns the challenge's tasks with their completion counts.
func (h *Handler) ListTasks(c *fiber.Ctx) error {
	challengeID, err := paramID(c, "challengeId", "challenge")
	if err != nil {
		return err
	}
	tasks, err := h.tasks.ListTasksWithProgress(c.UserContext(), userID(c), challengeID)
	if err != nil {
		return err
	}
	return c.JSON(tasks)
}

func (h *Handler) UpdateTask(c *fiber.Ctx) error {
	taskID, err := paramID(c, "taskId", "task")
	if err != nil {
		return err
	}
	var patch models.TaskPatch
	if err := c.BodyParser(&patch); err != nil {
		return badRequest(c, "Invalid request body")
	}

	task, err := h.tasks.UpdateTask(c.UserContext(), userID(c), taskID, patch)
	if err != nil {
		return err
	}
	return c.JSON(task)
}

func (h *Handler) DeleteTask(c *fiber.Ctx) error {
	taskID, err := paramID(c, "taskId", "task")
	if err != nil {
		return err
	}
	if err := h.tasks.DeleteTask(c.UserContext(), userID(c), taskID); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
