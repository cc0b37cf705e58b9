package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/planner-go-api/internal/utils"
)

// RequireOwner restricts a single-owner deployment to one user id. An empty
// allowedUserID lets every authenticated user through.
func RequireOwner(allowedUserID string) fiber.Handler {
	allowed := strings.TrimSpace(allowedUserID)

	return func(c *fiber.Ctx) error {
		userID := UserID(c)
		if userID == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
		}
		if allowed != "" && userID != allowed {
			return utils.SendError(c, fiber.StatusForbidden, "access restricted to the planner owner")
		}
		return c.Next()
	}
}
