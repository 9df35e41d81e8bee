package ratelimit

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// PerClient returns middleware that limits requests per client IP for
// a single route group. Each route gets its own limiter so the login
// route can carry a stricter budget than the task routes.
//
// Limiter backend errors fail open: an unreachable Redis server must
// not take the API down with it. A missing client IP fails closed.
func PerClient(limiter Limiter, route string) fiber.Handler {
	logger := slog.Default()

	return func(c *fiber.Ctx) error {
		ip := c.IP()
		if ip == "" {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"detail": "Unable to determine client IP address",
			})
		}

		result, err := limiter.Allow(c.Context(), route+":"+ip)
		if err != nil {
			logger.Error("rate limit check failed",
				"route", route,
				"client_ip", ip,
				"error", err)
			return c.Next()
		}

		c.Set("X-RateLimit-Limit", strconv.Itoa(limiter.Config().RequestsPerWindow))
		c.Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		c.Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

		if !result.Allowed {
			retryAfter := int(result.RetryAfter.Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Set("Retry-After", strconv.Itoa(retryAfter))

			logger.Warn("rate limit exceeded",
				"route", route,
				"client_ip", ip,
				"limit", limiter.Config().RequestsPerWindow)

			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"detail": fmt.Sprintf("Rate limit exceeded. Retry after %d seconds.", retryAfter),
			})
		}

		return c.Next()
	}
}
