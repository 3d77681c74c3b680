package logger

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// RequestIDHeader is echoed back on every response.
const RequestIDHeader = "X-Request-ID"

// Middleware tags each request with a request id, binds a request-scoped
// logger to the fiber user context and logs the outcome once the chain returns.
func Middleware(l *Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		requestID := c.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(RequestIDHeader, requestID)

		ctx := l.WithRequestID(c.UserContext(), requestID)
		ctx = l.WithFields(ctx, map[string]any{
			"method": c.Method(),
			"path":   c.Path(),
		})
		c.SetUserContext(ctx)

		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			}
		}
		done := l.WithFields(c.UserContext(), map[string]any{
			"status":     status,
			"latency_ms": time.Since(start).Milliseconds(),
		})
		msg := fmt.Sprintf("%s %s", c.Method(), c.Path())
		switch {
		case status >= fiber.StatusInternalServerError:
			l.Error(done, msg, err)
		case status >= fiber.StatusBadRequest:
			l.Warn(done, msg)
		default:
			l.Info(done, msg)
		}
		return err
	}
}
