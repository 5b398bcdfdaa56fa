package routes

import (
	"strings"
	"time"

	"github.com/arnold/couples-api/internal/config"
	"github.com/arnold/couples-api/internal/handlers"
	"github.com/arnold/couples-api/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

// NewApp builds the Fiber app with the shared middleware stack. Routes are
// registered separately by Setup.
func NewApp(cfg *config.Config, log *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "couples-api",
		ErrorHandler: handlers.ErrorHandler(log, cfg.IsDevelopment()),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(cfg.CORSOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))
	app.Use(middleware.RequestLogger(log))

	return app
}
