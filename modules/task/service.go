package task

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	domain "github.com/example/task-api/domain/task"
	"github.com/go-monolith/mono"
)

// Validation errors. Their messages are stable: they cross the
// service container as strings and the API layer matches on them.
var (
	ErrTitleRequired = errors.New("title is required")
	ErrTitleTooLong  = errors.New("title must be at most 200 characters")
	ErrInvalidStatus = errors.New("invalid status")
	ErrInvalidSkip   = errors.New("skip must be non-negative")
	ErrInvalidLimit  = errors.New("limit must be between 1 and 100")
)

const (
	maxTitleLength = 200
	defaultLimit   = 100
	maxLimit       = 100
)

// createTask handles the task.create service request.
func (m *TaskModule) createTask(_ context.Context, req CreateTaskRequest, _ *mono.Msg) (TaskResponse, error) {
	if req.Title == "" {
		return TaskResponse{}, ErrTitleRequired
	}
	// The limit counts characters, not bytes.
	if utf8.RuneCountInString(req.Title) > maxTitleLength {
		return TaskResponse{}, ErrTitleTooLong
	}

	status := domain.StatusPending
	if req.Status != "" {
		status = domain.Status(req.Status)
		if !status.Valid() {
			return TaskResponse{}, ErrInvalidStatus
		}
	}

	task := &domain.Task{
		Title:       req.Title,
		Description: req.Description,
		Status:      status,
	}

	if err := m.repo.Create(task); err != nil {
		return TaskResponse{}, fmt.Errorf("failed to save task: %w", err)
	}

	return toTaskResponse(task), nil
}

// getTask handles the task.get service request.
func (m *TaskModule) getTask(_ context.Context, req GetTaskRequest, _ *mono.Msg) (TaskResponse, error) {
	task, err := m.repo.FindByID(req.ID)
	if err != nil {
		return TaskResponse{}, err
	}
	return toTaskResponse(task), nil
}

// listTasks handles the task.list service request.
func (m *TaskModule) listTasks(_ context.Context, req ListTasksRequest, _ *mono.Msg) (ListTasksResponse, error) {
	if req.Skip < 0 {
		return ListTasksResponse{}, ErrInvalidSkip
	}
	if req.Limit == 0 {
		req.Limit = defaultLimit
	}
	if req.Limit < 1 || req.Limit > maxLimit {
		return ListTasksResponse{}, ErrInvalidLimit
	}

	filter := ListFilter{
		Search: req.Search,
		Skip:   req.Skip,
		Limit:  req.Limit,
	}
	if req.Status != "" {
		status := domain.Status(req.Status)
		if !status.Valid() {
			return ListTasksResponse{}, ErrInvalidStatus
		}
		filter.Status = status
	}

	tasks, err := m.repo.FindAll(filter)
	if err != nil {
		return ListTasksResponse{}, err
	}

	response := ListTasksResponse{
		Tasks: make([]TaskResponse, 0, len(tasks)),
	}
	for _, task := range tasks {
		response.Tasks = append(response.Tasks, toTaskResponse(task))
	}
	return response, nil
}

// updateTask handles the task.update service request. Only fields
// present in the request change; UpdatedAt is refreshed on every
// successful update, even when the new values equal the old ones.
func (m *TaskModule) updateTask(_ context.Context, req UpdateTaskRequest, _ *mono.Msg) (TaskResponse, error) {
	task, err := m.repo.FindByID(req.ID)
	if err != nil {
		return TaskResponse{}, err
	}

	if req.Title != nil {
		if *req.Title == "" {
			return TaskResponse{}, ErrTitleRequired
		}
		if utf8.RuneCountInString(*req.Title) > maxTitleLength {
			return TaskResponse{}, ErrTitleTooLong
		}
		task.Title = *req.Title
	}
	if req.Description != nil {
		task.Description = req.Description
	}
	if req.Status != nil {
		status := domain.Status(*req.Status)
		if !status.Valid() {
			return TaskResponse{}, ErrInvalidStatus
		}
		task.Status = status
	}

	if err := m.repo.Update(task); err != nil {
		return TaskResponse{}, fmt.Errorf("failed to update task: %w", err)
	}

	return toTaskResponse(task), nil
}

// deleteTask handles the task.delete service request. Deletion is
// permanent.
func (m *TaskModule) deleteTask(_ context.Context, req DeleteTaskRequest, _ *mono.Msg) (DeleteTaskResponse, error) {
	if err := m.repo.Delete(req.ID); err != nil {
		return DeleteTaskResponse{Deleted: false, ID: req.ID}, err
	}
	return DeleteTaskResponse{Deleted: true, ID: req.ID}, nil
}

// pingStorage handles the task.ping service request used by the
// health endpoint.
func (m *TaskModule) pingStorage(ctx context.Context, _ PingRequest, _ *mono.Msg) (PingResponse, error) {
	if err := m.repo.Ping(ctx); err != nil {
		return PingResponse{}, fmt.Errorf("database unreachable: %w", err)
	}
	return PingResponse{Database: "ok"}, nil
}

// toTaskResponse converts a Task entity to a TaskResponse.
func toTaskResponse(task *domain.Task) TaskResponse {
	return TaskResponse{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Status:      string(task.Status),
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
}
