package task

import "time"

// CreateTaskRequest is the request for creating a task. A nil
// Description stays NULL in storage and null in responses.
type CreateTaskRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Status      string  `json:"status"`
}

// GetTaskRequest is the request for getting a task.
type GetTaskRequest struct {
	ID uint `json:"id"`
}

// ListTasksRequest is the request for listing tasks.
type ListTasksRequest struct {
	Status string `json:"status"`
	Search string `json:"search"`
	Skip   int    `json:"skip"`
	Limit  int    `json:"limit"`
}

// ListTasksResponse is the response containing a page of tasks.
type ListTasksResponse struct {
	Tasks []TaskResponse `json:"tasks"`
}

// UpdateTaskRequest is the request for partially updating a task.
// Nil fields are left unchanged.
type UpdateTaskRequest struct {
	ID          uint    `json:"id"`
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Status      *string `json:"status,omitempty"`
}

// DeleteTaskRequest is the request for deleting a task.
type DeleteTaskRequest struct {
	ID uint `json:"id"`
}

// DeleteTaskResponse is the response after deleting a task.
type DeleteTaskResponse struct {
	Deleted bool `json:"deleted"`
	ID      uint `json:"id"`
}

// PingRequest is the request for a storage reachability check.
type PingRequest struct{}

// PingResponse reports storage reachability.
type PingResponse struct {
	Database string `json:"database"`
}

// TaskResponse represents a task in responses.
type TaskResponse struct {
	ID          uint      `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
