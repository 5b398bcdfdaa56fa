// Package handlers adapts HTTP requests onto the service layer.
package handlers

import (
	"errors"

	"github.com/arnold/couples-api/internal/apperrors"
	"github.com/arnold/couples-api/internal/middleware"
	"github.com/arnold/couples-api/internal/services"
	"github.com/arnold/couples-api/internal/store"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Handler struct {
	store       *store.Store
	auth        *services.AuthService
	users       *services.UserService
	couples     *services.CoupleService
	challenges  *services.ChallengeService
	tasks       *services.TaskService
	completions *services.CompletionService
	activity    *services.ActivityService
	log         *zap.Logger
}

type Services struct {
	Auth        *services.AuthService
	Users       *services.UserService
	Couples     *services.CoupleService
	Challenges  *services.ChallengeService
	Tasks       *services.TaskService
	Completions *services.CompletionService
	Activity    *services.ActivityService
}

func New(st *store.Store, svc Services, log *zap.Logger) *Handler {
	return &Handler{
		store:       st,
		auth:        svc.Auth,
		users:       svc.Users,
		couples:     svc.Couples,
		challenges:  svc.Challenges,
		tasks:       svc.Tasks,
		completions: svc.Completions,
		activity:    svc.Activity,
		log:         log,
	}
}

// ErrorHandler turns service errors into JSON responses. Internal causes are
// only exposed in development.
func ErrorHandler(log *zap.Logger, development bool) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
		}

		var ae *apperrors.Error
		if !errors.As(err, &ae) {
			log.Error("unhandled error", zap.String("path", c.Path()), zap.Error(err))
			msg := "Internal server error"
			if development {
				msg = err.Error()
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": msg})
		}

		if ae.Kind == apperrors.KindInternal {
			log.Error(ae.Message, zap.String("path", c.Path()), zap.Error(ae.Err))
			if development && ae.Err != nil {
				return c.Status(ae.Kind.Status()).JSON(fiber.Map{
					"error":   ae.Message,
					"details": ae.Err.Error(),
				})
			}
		}
		return c.Status(ae.Kind.Status()).JSON(fiber.Map{"error": ae.Message})
	}
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}

func paramID(c *fiber.Ctx, name, label string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, apperrors.BadRequest("Invalid " + label + " ID")
	}
	return id, nil
}

func userID(c *fiber.Ctx) uuid.UUID {
	return middleware.GetUserID(c)
}

// Health reports whether the database is reachable.
func (h *Handler) Health(c *fiber.Ctx) error {
	if err := h.store.Ping(c.UserContext()); err != nil {
		h.log.Warn("health check failed", zap.Error(err))
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "unavailable",
		})
	}
	return c.JSON(fiber.Map{"status": "ok"})
}
