package middleware

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
)

// CacheControl sets cache headers on successful GET responses.
// Statements and similar read-only aggregations are point-in-time
// snapshots anyway, so a short client cache is harmless.
func CacheControl(maxAge time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		if c.Method() == fiber.MethodGet && c.Response().StatusCode() == fiber.StatusOK {
			c.Set("Cache-Control", "public, max-age="+strconv.Itoa(int(maxAge.Seconds())))
		}

		return err
	}
}

// StatementCache returns cache middleware for statement endpoints
func StatementCache() fiber.Handler {
	return CacheControl(5 * time.Minute)
}
