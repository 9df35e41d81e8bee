package api

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/example/task-api/middleware/ratelimit"
	"github.com/example/task-api/modules/auth"
	"github.com/go-monolith/mono"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Per-route rate limit budgets. The login route carries a stricter
// budget than the task routes; refresh sits in between.
const (
	loginLimitPerMinute   = 10
	refreshLimitPerMinute = 30
	defaultTaskLimit      = 100
)

// APIModule is the HTTP API module. It exposes the Fiber surface and
// talks to the auth and task modules through the service container.
type APIModule struct {
	app           *fiber.App
	authContainer mono.ServiceContainer
	taskContainer mono.ServiceContainer
	authAdapter   auth.AuthPort
	redisClient   *redis.Client
	addr          string
	redisAddr     string
	taskLimit     int
}

// Compile-time interface checks.
var _ mono.Module = (*APIModule)(nil)
var _ mono.DependentModule = (*APIModule)(nil)
var _ mono.HealthCheckableModule = (*APIModule)(nil)

// NewModule creates a new APIModule configured from the environment.
func NewModule() *APIModule {
	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":3000"
	}

	taskLimit := defaultTaskLimit
	if raw := os.Getenv("RATE_LIMIT_PER_MINUTE"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			taskLimit = n
		}
	}

	return &APIModule{
		addr:      addr,
		redisAddr: os.Getenv("REDIS_ADDR"),
		taskLimit: taskLimit,
	}
}

// Name returns the module name.
func (m *APIModule) Name() string {
	return "api"
}

// Dependencies returns the list of module dependencies.
func (m *APIModule) Dependencies() []string {
	return []string{"auth", "task"}
}

// SetDependencyServiceContainer receives service containers from dependencies.
func (m *APIModule) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	switch dependency {
	case "auth":
		m.authContainer = container
		m.authAdapter = auth.NewAuthAdapter(container)
	case "task":
		m.taskContainer = container
	}
}

// Start initializes the Fiber HTTP server.
func (m *APIModule) Start(ctx context.Context) error {
	if m.authContainer == nil {
		return fmt.Errorf("auth dependency not set")
	}
	if m.taskContainer == nil {
		return fmt.Errorf("task dependency not set")
	}

	m.app = fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          customErrorHandler,
	})

	m.app.Use(recover.New())
	m.app.Use(requestid.New(requestid.Config{
		Header:    "X-Request-ID",
		Generator: uuid.NewString,
	}))
	m.app.Use(logger.New(logger.Config{
		Format: "[${time}] ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
	}))
	m.app.Use(cors.New())

	m.setupRoutes(ctx)

	go func() {
		if err := m.app.Listen(m.addr); err != nil {
			log.Printf("[api] HTTP server error: %v", err)
		}
	}()

	log.Printf("[api] HTTP server started on %s", m.addr)
	return nil
}

// Stop shuts down the Fiber HTTP server.
func (m *APIModule) Stop(_ context.Context) error {
	if m.redisClient != nil {
		if err := m.redisClient.Close(); err != nil {
			log.Printf("[api] Failed to close Redis connection: %v", err)
		}
	}
	if m.app == nil {
		return nil
	}
	log.Println("[api] Shutting down HTTP server...")
	return m.app.Shutdown()
}

// Health returns the health status of the module.
func (m *APIModule) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: m.app != nil,
		Message: "operational",
		Details: map[string]any{
			"addr": m.addr,
		},
	}
}

// setupRoutes configures all API routes.
func (m *APIModule) setupRoutes(ctx context.Context) {
	handlers := NewHandlers(m.authContainer, m.taskContainer)

	m.app.Get("/health", handlers.Health)

	v1 := m.app.Group("/api/v1")

	v1.Post("/login",
		ratelimit.PerClient(m.newLimiter(ctx, loginLimitPerMinute), "login"),
		handlers.Login)
	v1.Post("/refresh",
		ratelimit.PerClient(m.newLimiter(ctx, refreshLimitPerMinute), "refresh"),
		handlers.Refresh)

	// Task routes: rate limited, then authenticated.
	tasks := v1.Group("/tasks",
		ratelimit.PerClient(m.newLimiter(ctx, m.taskLimit), "tasks"),
		AuthMiddleware(m.authAdapter))
	tasks.Post("/", handlers.CreateTask)
	tasks.Get("/", handlers.ListTasks)
	tasks.Get("/:id", handlers.GetTask)
	tasks.Put("/:id", handlers.UpdateTask)
	tasks.Delete("/:id", handlers.DeleteTask)
}

// newLimiter builds a per-minute rate limiter. When REDIS_ADDR is set
// and reachable the limit is shared across instances; otherwise an
// in-process limiter is used.
func (m *APIModule) newLimiter(ctx context.Context, perMinute int) ratelimit.Limiter {
	config := ratelimit.Config{
		RequestsPerWindow: perMinute,
		WindowSize:        time.Minute,
	}

	if m.redisAddr == "" {
		return ratelimit.NewMemoryLimiter(config)
	}

	if m.redisClient == nil {
		client := redis.NewClient(&redis.Options{
			Addr: m.redisAddr,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			log.Printf("[api] Redis at %s unreachable, using in-memory rate limits: %v", m.redisAddr, err)
			client.Close()
			m.redisAddr = ""
			return ratelimit.NewMemoryLimiter(config)
		}
		m.redisClient = client
	}

	return ratelimit.NewRedisLimiter(m.redisClient, config, "ratelimit:")
}

// customErrorHandler handles errors escaping route handlers. Details
// of unanticipated faults are logged, never returned to the client.
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	detail := "An internal error occurred"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		detail = e.Message
	} else {
		log.Printf("[api] Unhandled error: %v", err)
	}

	return c.Status(code).JSON(ErrorResponse{
		Detail: detail,
	})
}
