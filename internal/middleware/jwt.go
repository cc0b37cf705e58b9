package middleware

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/noah-isme/planner-go-api/internal/utils"
)

// UserIDKey is the fiber local holding the authenticated user id.
const UserIDKey = "user_id"

// JWTProtected returns a middleware that validates HMAC bearer tokens and
// binds the token subject as the user id of the request.
func JWTProtected(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authorization := c.Get(fiber.HeaderAuthorization)
		if authorization == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "authorization header missing")
		}

		const bearer = "Bearer "
		if len(authorization) < len(bearer) || !strings.EqualFold(authorization[:len(bearer)], bearer) {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid authorization header")
		}

		tokenString := strings.TrimSpace(authorization[len(bearer):])
		if tokenString == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
		}

		token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token claims")
		}

		userID := extractUserIDFromClaims(claims)
		if userID == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "token has no subject")
		}
		c.Locals(UserIDKey, userID)

		return c.Next()
	}
}

// UserID returns the authenticated user id bound by JWTProtected, or "".
func UserID(c *fiber.Ctx) string {
	if value, ok := c.Locals(UserIDKey).(string); ok {
		return value
	}
	return ""
}

func extractUserIDFromClaims(claims jwt.MapClaims) string {
	for _, key := range []string{"sub", "user_id", "uid"} {
		if value, ok := claims[key]; ok {
			if normalized := normalizeUserID(value); normalized != "" {
				return normalized
			}
		}
	}
	return ""
}

// normalizeUserID accepts string subjects and, for older tokens, integral
// numeric ones.
func normalizeUserID(value interface{}) string {
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		if v < 0 || v != float64(int64(v)) {
			return ""
		}
		return strconv.FormatInt(int64(v), 10)
	default:
		return ""
	}
}
