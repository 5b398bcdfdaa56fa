package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestRequestLoggerLevels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	app := fiber.New()
	app.Use(RequestLogger(zap.New(core)))
	app.Get("/ok", func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/missing", func(c *fiber.Ctx) error { return fiber.NewError(fiber.StatusNotFound, "nope") })
	app.Get("/boom", func(c *fiber.Ctx) error { return fiber.ErrInternalServerError })

	tests := []struct {
		path   string
		status int
		level  zapcore.Level
	}{
		{"/ok", 200, zapcore.InfoLevel},
		{"/missing", 404, zapcore.WarnLevel},
		{"/boom", 500, zapcore.ErrorLevel},
	}
	for _, tt := range tests {
		resp, err := app.Test(httptest.NewRequest("GET", tt.path, nil))
		if err != nil {
			t.Fatalf("request %s: %v", tt.path, err)
		}
		if resp.StatusCode != tt.status {
			t.Errorf("%s status = %d, want %d", tt.path, resp.StatusCode, tt.status)
		}
	}

	entries := logs.All()
	if len(entries) != len(tests) {
		t.Fatalf("logged %d entries, want %d", len(entries), len(tests))
	}
	for i, tt := range tests {
		if entries[i].Level != tt.level {
			t.Errorf("%s level = %s, want %s", tt.path, entries[i].Level, tt.level)
		}
		if got := entries[i].ContextMap()["status"]; got != int64(tt.status) {
			t.Errorf("%s logged status = %v", tt.path, got)
		}
	}
}
