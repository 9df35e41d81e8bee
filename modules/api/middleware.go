package api

import (
	"strings"

	"github.com/example/task-api/modules/auth"
	"github.com/gofiber/fiber/v2"
)

const (
	// SubjectContextKey is the key used to store the authenticated
	// subject in the Fiber context.
	SubjectContextKey = "subject"
)

// AuthMiddleware creates a middleware that guards task routes behind
// a bearer access token.
//
// An absent credential is a different failure from an invalid one: no
// usable Authorization header yields 403, while a presented token
// that fails verification yields 401 with a WWW-Authenticate
// challenge.
func AuthMiddleware(authPort auth.AuthPort) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)

		token, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok || token == "" {
			return c.Status(fiber.StatusForbidden).JSON(ErrorResponse{
				Detail: "Not authenticated",
			})
		}

		subject, err := authPort.VerifyAccessToken(c.UserContext(), token)
		if err != nil {
			c.Set(fiber.HeaderWWWAuthenticate, "Bearer")
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
				Detail: "Invalid authentication credentials",
			})
		}

		c.Locals(SubjectContextKey, subject)

		return c.Next()
	}
}
