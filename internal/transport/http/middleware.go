package http

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"learning-service/internal/domain"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "requestID"
	userIDKey       = "userID"
)

// requestLogger tags each request with an id and logs it once the handler chain returns.
func requestLogger(c *fiber.Ctx) error {
	id := c.Get(requestIDHeader)
	if id == "" {
		id = uuid.NewString()
	}
	c.Set(requestIDHeader, id)
	c.Locals(requestIDKey, id)

	start := time.Now()
	err := c.Next()
	status := c.Response().StatusCode()
	if err != nil {
		// the error handler has not run yet
		status = statusFor(err)
	}
	slog.Info("request",
		"request_id", id,
		"method", c.Method(),
		"path", c.OriginalURL(),
		"status", status,
		"duration", time.Since(start),
	)
	return err
}

func requireAuth(tokens TokenParser) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			return fmt.Errorf("%w: missing bearer token", domain.ErrUnauthorized)
		}
		userID, err := tokens.Parse(strings.TrimSpace(raw))
		if err != nil {
			return err
		}
		c.Locals(userIDKey, userID)
		return c.Next()
	}
}

func currentUserID(c *fiber.Ctx) int64 {
	id, _ := c.Locals(userIDKey).(int64)
	return id
}
