package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const correlationHeader = "X-Correlation-ID"

type correlationIDKey struct{}

// CorrelationID tags every request with an identifier taken from the
// X-Correlation-ID or X-Request-ID header, or a fresh uuid. The id is echoed
// back and stored on the user context.
func CorrelationID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := strings.TrimSpace(c.Get(correlationHeader))
		if id == "" {
			id = strings.TrimSpace(c.Get(fiber.HeaderXRequestID))
		}
		if id == "" {
			id = uuid.NewString()
		}

		c.Locals("correlation_id", id)
		c.Set(correlationHeader, id)
		c.SetUserContext(context.WithValue(c.UserContext(), correlationIDKey{}, id))

		return c.Next()
	}
}

// CorrelationIDFromContext extracts the correlation identifier from ctx.
func CorrelationIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(correlationIDKey{}).(string)
	return id
}

// GetCorrelationID returns the correlation identifier of the active request.
func GetCorrelationID(c *fiber.Ctx) string {
	if c == nil {
		return ""
	}
	if id, ok := c.Locals("correlation_id").(string); ok {
		return id
	}
	return CorrelationIDFromContext(c.UserContext())
}

// RequestLogger derives a logger carrying the request correlation id and,
// once authenticated, the user id.
func RequestLogger(base zerolog.Logger, c *fiber.Ctx) zerolog.Logger {
	if c == nil {
		return base
	}
	builder := base.With()
	if id := GetCorrelationID(c); id != "" {
		builder = builder.Str("correlation_id", id)
	}
	if userID := UserID(c); userID != "" {
		builder = builder.Str("user_id", userID)
	}
	return builder.Logger()
}
