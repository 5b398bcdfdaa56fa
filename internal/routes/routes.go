package routes

import (
	"github.com/arnold/couples-api/internal/cache"
	"github.com/arnold/couples-api/internal/handlers"
	"github.com/arnold/couples-api/internal/middleware"
	"github.com/gofiber/fiber/v2"
)

func Setup(app *fiber.App, h *handlers.Handler, identity middleware.Identity, revoker cache.Revoker, limiter *middleware.RateLimiter) {
	app.Get("/health", h.Health)

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/signup", middleware.RateLimit(limiter), h.Signup)
	auth.Post("/login", middleware.RateLimit(limiter), h.Login)
	auth.Post("/google", middleware.RateLimit(limiter), h.GoogleLogin)

	protected := api.Group("/", middleware.Protected(identity, revoker))

	protected.Post("/auth/logout", h.Logout)

	protected.Get("/users/profile", h.GetProfile)
	protected.Put("/users/profile", h.UpdateProfile)
	protected.Get("/users", h.ListUsers)

	couples := protected.Group("/couples")
	couples.Post("/", h.CreateInvite)
	couples.Get("/me", h.GetCouple)
	couples.Put("/me/photo", h.UpdateCouplePhoto)
	couples.Get("/invites", h.ListInvites)
	couples.Get("/all", h.ListCouples)
	couples.Get("/activity", h.GetActivity)
	couples.Post("/leave", h.LeaveCouple)
	couples.Delete("/:coupleId", h.CancelInvite)
	couples.Post("/:coupleId/accept", h.AcceptInvite)
	couples.Post("/:coupleId/decline", h.DeclineInvite)

	challenges := protected.Group("/challenges")
	challenges.Post("/", h.CreateChallenge)
	challenges.Get("/", h.ListChallenges)
	challenges.Get("/active", h.GetActiveChallenge)
	challenges.Post("/:challengeId/finish", h.FinishChallenge)
	challenges.Post("/:challengeId/cancel", h.CancelChallenge)
	challenges.Get("/:challengeId/tasks", h.ListTasks)
	challenges.Get("/:challengeId/scoreboard", h.Scoreboard)
	challenges.Get("/:challengeId/completions", h.ListCompletions)

	tasks := protected.Group("/tasks")
	tasks.Post("/", h.CreateTask)
	tasks.Put("/:taskId", h.UpdateTask)
	tasks.Delete("/:taskId", h.DeleteTask)

	completions := protected.Group("/completions")
	completions.Post("/", h.CompleteTask)
	completions.Delete("/:completionId", h.UndoCompletion)
}
