package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"billwise/pkg/auth"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap/zaptest"
)

func TestAuthMiddleware(t *testing.T) {
	jwtManager := auth.NewJWTManager("test-secret", time.Hour, time.Hour)

	app := fiber.New()
	app.Get("/me", AuthMiddleware(jwtManager, zaptest.NewLogger(t)), func(c *fiber.Ctx) error {
		return c.SendString(c.Locals(LocalUserID).(string))
	})

	access, _ := jwtManager.GenerateToken("user-1", "alice", "alice@example.com")
	refresh, _ := jwtManager.GenerateRefreshToken("user-1")

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing", "", fiber.StatusUnauthorized},
		{"garbage", "Bearer nope", fiber.StatusUnauthorized},
		{"refresh token", "Bearer " + refresh, fiber.StatusUnauthorized},
		{"access token", "Bearer " + access, fiber.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set(fiber.HeaderAuthorization, tt.header)
			}
			resp, err := app.Test(req)
			if err != nil {
				t.Fatal(err)
			}
			if resp.StatusCode != tt.status {
				t.Errorf("expected %d, got %d", tt.status, resp.StatusCode)
			}
		})
	}
}
