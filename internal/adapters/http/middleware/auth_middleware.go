package middleware

import (
	"strings"

	"nja-ledger/internal/config"
	"nja-ledger/internal/core/domain"
	"nja-ledger/internal/pkg/jwt"
	"nja-ledger/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// ActorKey is the locals key holding the resolved actor descriptor
const ActorKey = "actor"

// AuthMiddleware validates the access token and resolves the actor
// descriptor once, at the boundary. Handlers and services consume the
// descriptor; nothing downstream re-derives roles or capabilities.
func AuthMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		accessToken := c.Cookies("access_token")

		if accessToken == "" {
			authHeader := c.Get("Authorization")
			if authHeader != "" && strings.HasPrefix(authHeader, "Bearer ") {
				accessToken = strings.TrimPrefix(authHeader, "Bearer ")
			}
		}

		if accessToken == "" {
			return response.Unauthorized(c, "Access token required")
		}

		claims, err := jwt.ValidateAccessToken(accessToken, cfg.JWT.Secret)
		if err != nil {
			if err == jwt.ErrTokenExpired {
				return response.Unauthorized(c, "Access token expired")
			}
			return response.Unauthorized(c, "Invalid access token")
		}

		actor := domain.NewActor(claims.MemberID, claims.Name, domain.Role(claims.Role))
		c.Locals(ActorKey, actor)

		return c.Next()
	}
}

// GetActor retrieves the actor descriptor placed by AuthMiddleware
func GetActor(c *fiber.Ctx) (domain.Actor, bool) {
	actor, ok := c.Locals(ActorKey).(domain.Actor)
	return actor, ok
}
