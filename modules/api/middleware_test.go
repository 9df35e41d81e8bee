package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
)

// mockAuthPort implements auth.AuthPort for testing.
type mockAuthPort struct {
	verifyFunc func(ctx context.Context, token string) (string, error)
}

func (m *mockAuthPort) VerifyAccessToken(ctx context.Context, token string) (string, error) {
	if m.verifyFunc != nil {
		return m.verifyFunc(ctx, token)
	}
	return "", errors.New("not implemented")
}

func TestAuthMiddleware(t *testing.T) {
	validPort := &mockAuthPort{
		verifyFunc: func(_ context.Context, token string) (string, error) {
			if token == "valid-token" {
				return "admin", nil
			}
			return "", errors.New("token rejected: invalid token")
		},
	}

	tests := []struct {
		name           string
		authHeader     string
		expectedStatus int
		expectedBody   string
		wantChallenge  bool
	}{
		{
			name:           "missing authorization header",
			authHeader:     "",
			expectedStatus: http.StatusForbidden,
			expectedBody:   `"Not authenticated"`,
		},
		{
			name:           "wrong scheme",
			authHeader:     "Basic dXNlcjpwYXNz",
			expectedStatus: http.StatusForbidden,
			expectedBody:   `"Not authenticated"`,
		},
		{
			name:           "bearer without token",
			authHeader:     "Bearer",
			expectedStatus: http.StatusForbidden,
			expectedBody:   `"Not authenticated"`,
		},
		{
			name:           "invalid token",
			authHeader:     "Bearer bad-token",
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `"Invalid authentication credentials"`,
			wantChallenge:  true,
		},
		{
			name:           "valid token",
			authHeader:     "Bearer valid-token",
			expectedStatus: http.StatusOK,
			expectedBody:   `"authenticated"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Use(AuthMiddleware(validPort))
			app.Get("/test", func(c *fiber.Ctx) error {
				return c.JSON(fiber.Map{"status": "authenticated"})
			})

			req := httptest.NewRequest("GET", "/test", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}

			resp, err := app.Test(req, -1)
			if err != nil {
				t.Fatalf("app.Test() error = %v", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != tt.expectedStatus {
				t.Errorf("status = %v, want %v", resp.StatusCode, tt.expectedStatus)
			}

			if challenge := resp.Header.Get("WWW-Authenticate"); tt.wantChallenge && challenge != "Bearer" {
				t.Errorf("WWW-Authenticate = %q, want Bearer", challenge)
			}

			body, err := io.ReadAll(resp.Body)
			if err != nil {
				t.Fatalf("io.ReadAll() error = %v", err)
			}
			if !strings.Contains(string(body), tt.expectedBody) {
				t.Errorf("body = %v, want to contain %v", string(body), tt.expectedBody)
			}
		})
	}
}

func TestAuthMiddleware_SubjectContext(t *testing.T) {
	port := &mockAuthPort{
		verifyFunc: func(_ context.Context, _ string) (string, error) {
			return "admin", nil
		},
	}

	app := fiber.New()
	app.Use(AuthMiddleware(port))

	var capturedSubject string
	app.Get("/test", func(c *fiber.Ctx) error {
		subject, ok := c.Locals(SubjectContextKey).(string)
		if !ok {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "no subject"})
		}
		capturedSubject = subject
		return c.JSON(fiber.Map{"status": "ok"})
	})

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer valid-token")

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %v, want %v", resp.StatusCode, http.StatusOK)
	}
	if capturedSubject != "admin" {
		t.Errorf("subject = %q, want admin", capturedSubject)
	}
}
