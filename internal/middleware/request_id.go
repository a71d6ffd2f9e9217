package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type requestIDKey struct{}

var requestKey = requestIDKey{}

// RequestID ensures every request carries a request identifier so log lines
// from one request can be tied together.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := strings.TrimSpace(c.Get("X-Request-ID"))
		if id == "" {
			id = uuid.NewString()
		}

		c.Locals("request_id", id)
		c.Set("X-Request-ID", id)
		c.SetUserContext(context.WithValue(c.Context(), requestKey, id))

		return c.Next()
	}
}

// RequestIDFromContext extracts the request identifier from a context, if present.
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(requestKey).(string); ok {
		return id
	}
	return ""
}

// GetRequestID returns the request identifier bound to the active request.
func GetRequestID(c *fiber.Ctx) string {
	if c == nil {
		return ""
	}
	if id, ok := c.Locals("request_id").(string); ok {
		return id
	}
	return RequestIDFromContext(c.Context())
}
