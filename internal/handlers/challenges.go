package handlers

import (
	"strings"
	"time"

	"github.com/arnold/couples-api/internal/apperrors"
	"github.com/arnold/couples-api/internal/models"
	"github.com/gofiber/fiber/v2"
)

const dateLayout = "2006-01-02"

// parseDate accepts a calendar date or a full RFC 3339 timestamp.
func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), true
	}
	return time.Time{}, false
}

func (h *Handler) CreateChallenge(c *fiber.Ctx) error {
	var req models.CreateChallengeRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	start, ok := parseDate(req.StartDate)
	if !ok {
		return apperrors.BadRequest("Invalid start date")
	}
	end, ok := parseDate(req.EndDate)
	if !ok {
		return apperrors.BadRequest("Invalid end date")
	}

	challenge, err := h.challenges.CreateChallenge(c.UserContext(), userID(c), models.CreateChallengeInput{
		Name:       req.Name,
		StartDate:  start,
		EndDate:    end,
		PeriodType: req.PeriodType,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(challenge)
}

func (h *Handler) ListChallenges(c *fiber.Ctx) error {
	challenges, err := h.challenges.ListChallenges(c.UserContext(), userID(c))
	if err != nil {
		return err
	}
	return c.JSON(challenges)
}

func (h *Handler) GetActiveChallenge(c *fiber.Ctx) error {
	challenge, err := h.challenges.GetActiveChallenge(c.UserContext(), userID(c))
	if err != nil {
		return err
	}
	return c.JSON(challenge)
}

// FinishChallenge scores the challenge and records the winner.
func (h *Handler) FinishChallenge(c *fiber.Ctx) error {
	challengeID, err := paramID(c, "challengeId", "challenge")
	if err != nil {
		return err
	}
	result, err := h.challenges.FinishChallenge(c.UserContext(), userID(c), challengeID)
	if err != nil {
		return err
	}
	return c.JSON(result)
}

func (h *Handler) CancelChallenge(c *fiber.Ctx) error {
	challengeID, err := paramID(c, "challengeId", "challenge")
	if err != nil {
		return err
	}
	challenge, err := h.challenges.CancelChallenge(c.UserContext(), userID(c), challengeID)
	if err != nil {
		return err
	}
	return c.JSON(challenge)
}

func (h *Handler) Scoreboard(c *fiber.Ctx) error {
	challengeID, err := paramID(c, "challengeId", "challenge")
	if err != nil {
		return err
	}
	score, err := h.challenges.Scoreboard(c.UserContext(), userID(c), challengeID)
	if err != nil {
		return err
	}
	return c.JSON(score)
}
