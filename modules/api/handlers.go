package api

import (
	"encoding/json"
	"log"
	"strconv"
	"strings"
	"unicode/utf8"

	domain "github.com/example/task-api/domain/task"
	"github.com/example/task-api/modules/auth"
	"github.com/example/task-api/modules/task"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/gofiber/fiber/v2"
)

const (
	maxTitleLength = 200
	defaultLimit   = 100
	maxLimit       = 100
)

// Handlers contains HTTP handlers for the API. They validate request
// shape at the boundary and call the auth and task modules through
// the service container; invalid input never reaches those modules.
type Handlers struct {
	authContainer mono.ServiceContainer
	taskContainer mono.ServiceContainer
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(authContainer, taskContainer mono.ServiceContainer) *Handlers {
	return &Handlers{
		authContainer: authContainer,
		taskContainer: taskContainer,
	}
}

// Login handles POST /api/v1/login.
func (h *Handlers) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return validationError(c, "Invalid request body")
	}
	if req.Username == "" || req.Password == "" {
		return validationError(c, "Username and password are required")
	}

	authReq := auth.LoginRequest{
		Username: req.Username,
		Password: req.Password,
	}
	var resp auth.LoginResponse

	if err := helper.CallRequestReplyService(
		c.UserContext(), h.authContainer, "login",
		json.Marshal, json.Unmarshal, &authReq, &resp,
	); err != nil {
		if strings.Contains(err.Error(), "incorrect username or password") {
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
				Detail: "Incorrect username or password",
			})
		}
		return internalError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(TokenResponse(resp))
}

// Refresh handles POST /api/v1/refresh.
func (h *Handlers) Refresh(c *fiber.Ctx) error {
	var req RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return validationError(c, "Invalid request body")
	}
	if req.RefreshToken == "" {
		return validationError(c, "Refresh token is required")
	}

	authReq := auth.RefreshRequest{
		RefreshToken: req.RefreshToken,
	}
	var resp auth.RefreshResponse

	if err := helper.CallRequestReplyService(
		c.UserContext(), h.authContainer, "refresh-token",
		json.Marshal, json.Unmarshal, &authReq, &resp,
	); err != nil {
		return h.handleRefreshError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(TokenResponse(resp))
}

// handleRefreshError maps refresh failures to HTTP responses. Token
// rejections cross the service container as strings and get 401;
// anything else is an internal fault, not the client's.
func (h *Handlers) handleRefreshError(c *fiber.Ctx, err error) error {
	errStr := err.Error()

	if strings.Contains(errStr, "invalid refresh token") ||
		strings.Contains(errStr, "incorrect username or password") {
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
			Detail: "Invalid or expired refresh token",
		})
	}
	return internalError(c, err)
}

// CreateTask handles POST /api/v1/tasks.
func (h *Handlers) CreateTask(c *fiber.Ctx) error {
	var body CreateTaskBody
	if err := c.BodyParser(&body); err != nil {
		return validationError(c, "Invalid request body")
	}

	if body.Title == "" {
		return validationError(c, "title is required")
	}
	// The limit counts characters, not bytes.
	if utf8.RuneCountInString(body.Title) > maxTitleLength {
		return validationError(c, "title must be at most 200 characters")
	}
	if body.Status != "" && !domain.Status(body.Status).Valid() {
		return validationError(c, "invalid status")
	}

	taskReq := task.CreateTaskRequest{
		Title:       body.Title,
		Description: body.Description,
		Status:      body.Status,
	}
	var resp task.TaskResponse

	if err := helper.CallRequestReplyService(
		c.UserContext(), h.taskContainer, "create",
		json.Marshal, json.Unmarshal, &taskReq, &resp,
	); err != nil {
		return h.handleTaskError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(TaskResponse(resp))
}

// ListTasks handles GET /api/v1/tasks.
func (h *Handlers) ListTasks(c *fiber.Ctx) error {
	status := c.Query("status")
	if status != "" && !domain.Status(status).Valid() {
		return validationError(c, "invalid status")
	}

	skip, err := queryInt(c, "skip", 0)
	if err != nil {
		return validationError(c, "skip must be an integer")
	}
	if skip < 0 {
		return validationError(c, "skip must be non-negative")
	}

	limit, err := queryInt(c, "limit", defaultLimit)
	if err != nil {
		return validationError(c, "limit must be an integer")
	}
	if limit < 1 || limit > maxLimit {
		return validationError(c, "limit must be between 1 and 100")
	}

	taskReq := task.ListTasksRequest{
		Status: status,
		Search: c.Query("search"),
		Skip:   skip,
		Limit:  limit,
	}
	var resp task.ListTasksResponse

	if err := helper.CallRequestReplyService(
		c.UserContext(), h.taskContainer, "list",
		json.Marshal, json.Unmarshal, &taskReq, &resp,
	); err != nil {
		return h.handleTaskError(c, err)
	}

	// The response body is a bare array, empty but non-null when no
	// tasks match.
	tasks := make([]TaskResponse, 0, len(resp.Tasks))
	for _, t := range resp.Tasks {
		tasks = append(tasks, TaskResponse(t))
	}

	return c.Status(fiber.StatusOK).JSON(tasks)
}

// GetTask handles GET /api/v1/tasks/:id.
func (h *Handlers) GetTask(c *fiber.Ctx) error {
	id, err := taskID(c)
	if err != nil {
		return validationError(c, "Invalid task id")
	}

	taskReq := task.GetTaskRequest{ID: id}
	var resp task.TaskResponse

	if err := helper.CallRequestReplyService(
		c.UserContext(), h.taskContainer, "get",
		json.Marshal, json.Unmarshal, &taskReq, &resp,
	); err != nil {
		return h.handleTaskError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(TaskResponse(resp))
}

// UpdateTask handles PUT /api/v1/tasks/:id.
func (h *Handlers) UpdateTask(c *fiber.Ctx) error {
	id, err := taskID(c)
	if err != nil {
		return validationError(c, "Invalid task id")
	}

	var body UpdateTaskBody
	if err := c.BodyParser(&body); err != nil {
		return validationError(c, "Invalid request body")
	}

	if body.Title != nil {
		if *body.Title == "" {
			return validationError(c, "title is required")
		}
		if utf8.RuneCountInString(*body.Title) > maxTitleLength {
			return validationError(c, "title must be at most 200 characters")
		}
	}
	if body.Status != nil && !domain.Status(*body.Status).Valid() {
		return validationError(c, "invalid status")
	}

	taskReq := task.UpdateTaskRequest{
		ID:          id,
		Title:       body.Title,
		Description: body.Description,
		Status:      body.Status,
	}
	var resp task.TaskResponse

	if err := helper.CallRequestReplyService(
		c.UserContext(), h.taskContainer, "update",
		json.Marshal, json.Unmarshal, &taskReq, &resp,
	); err != nil {
		return h.handleTaskError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(TaskResponse(resp))
}

// DeleteTask handles DELETE /api/v1/tasks/:id.
func (h *Handlers) DeleteTask(c *fiber.Ctx) error {
	id, err := taskID(c)
	if err != nil {
		return validationError(c, "Invalid task id")
	}

	taskReq := task.DeleteTaskRequest{ID: id}
	var resp task.DeleteTaskResponse

	if err := helper.CallRequestReplyService(
		c.UserContext(), h.taskContainer, "delete",
		json.Marshal, json.Unmarshal, &taskReq, &resp,
	); err != nil {
		return h.handleTaskError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// Health handles GET /health. It reports 503 when the task storage
// is unreachable.
func (h *Handlers) Health(c *fiber.Ctx) error {
	pingReq := task.PingRequest{}
	var resp task.PingResponse

	if err := helper.CallRequestReplyService(
		c.UserContext(), h.taskContainer, "ping",
		json.Marshal, json.Unmarshal, &pingReq, &resp,
	); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(HealthResponse{
			Status:   "degraded",
			Database: "unreachable",
		})
	}

	return c.Status(fiber.StatusOK).JSON(HealthResponse{
		Status:   "ok",
		Database: resp.Database,
	})
}

// handleTaskError maps task module errors to HTTP responses. Errors
// cross the service container as strings, so known failures are
// matched by message (validation failures are normally caught at the
// boundary; the matching here is a second line of defense).
func (h *Handlers) handleTaskError(c *fiber.Ctx, err error) error {
	errStr := err.Error()

	switch {
	case strings.Contains(errStr, "task not found"):
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
			Detail: "Task not found",
		})
	case strings.Contains(errStr, "title is required"),
		strings.Contains(errStr, "title must be at most"),
		strings.Contains(errStr, "invalid status"),
		strings.Contains(errStr, "skip must be"),
		strings.Contains(errStr, "limit must be"):
		return validationError(c, errStr)
	default:
		return internalError(c, err)
	}
}

// validationError responds with 422 and the given detail.
func validationError(c *fiber.Ctx, detail string) error {
	return c.Status(fiber.StatusUnprocessableEntity).JSON(ErrorResponse{
		Detail: detail,
	})
}

// internalError logs the fault and responds with an opaque 500.
func internalError(c *fiber.Ctx, err error) error {
	log.Printf("[api] Internal error: %v", err)
	return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
		Detail: "An internal error occurred",
	})
}

// taskID parses the :id path parameter.
func taskID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

// queryInt parses an optional integer query parameter.
func queryInt(c *fiber.Ctx, name string, def int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}
