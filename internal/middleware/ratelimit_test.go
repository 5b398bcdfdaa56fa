package middleware

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
)

func TestRateLimiterAllowsBurstThenBlocks(t *testing.T) {
	rl := NewRateLimiter(6)
	now := time.Now()
	rl.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		if !rl.Allow("1.2.3.4") {
			t.Fatalf("request %d blocked, want allowed", i+1)
		}
	}
	if rl.Allow("1.2.3.4") {
		t.Error("request 4 allowed, want blocked")
	}
	if !rl.Allow("5.6.7.8") {
		t.Error("other client blocked, want allowed")
	}

	now = now.Add(10 * time.Second)
	if !rl.Allow("1.2.3.4") {
		t.Error("request after refill blocked, want allowed")
	}
}

func TestRateLimiterForgetsIdleClients(t *testing.T) {
	rl := NewRateLimiter(60)
	now := time.Now()
	rl.now = func() time.Time { return now }

	rl.Allow("1.2.3.4")
	now = now.Add(limiterIdle + time.Second)
	rl.Allow("5.6.7.8")

	rl.mu.Lock()
	defer rl.mu.Unlock()
	if _, ok := rl.visitors["1.2.3.4"]; ok {
		t.Error("idle visitor was not removed")
	}
	if len(rl.visitors) != 1 {
		t.Errorf("visitors = %d, want 1", len(rl.visitors))
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	app := fiber.New()
	app.Post("/login", RateLimit(NewRateLimiter(2)), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		resp, err := app.Test(httptest.NewRequest("POST", "/login", nil))
		if err != nil {
			t.Fatalf("request: %v", err)
		}
		codes = append(codes, resp.StatusCode)
	}
	if codes[0] != fiber.StatusOK || codes[1] != fiber.StatusTooManyRequests {
		t.Errorf("status codes = %v, want [200 429]", codes)
	}
}
