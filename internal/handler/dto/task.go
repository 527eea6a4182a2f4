// Package dto defines request and response shapes for the HTTP API.
package dto

import (
	"time"

	"github.com/taskdeck/taskdeck/internal/model"
)

// CreateTaskRequest is the request body for creating a task.
type CreateTaskRequest struct {
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
	Priority  string `json:"priority"`
	Tag       string `json:"tag"`
}

// UpdateTaskRequest is the request body for a partial task update.
// Absent fields are left unchanged.
type UpdateTaskRequest struct {
	Title     *string `json:"title"`
	Completed *bool   `json:"completed"`
	Priority  *string `json:"priority"`
	Tag       *string `json:"tag"`
}

// TaskResponse is the API representation of a task.
type TaskResponse struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"ownerId"`
	Title     string    `json:"title"`
	Completed bool      `json:"completed"`
	Priority  string    `json:"priority,omitempty"`
	Tag       string    `json:"tag,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// DeleteTaskResponse confirms a hard delete.
type DeleteTaskResponse struct {
	Deleted bool   `json:"deleted"`
	ID      string `json:"id"`
}

// ToTaskResponse converts a task model to its API representation.
func ToTaskResponse(task *model.Task) TaskResponse {
	return TaskResponse{
		ID:        task.ID,
		OwnerID:   task.OwnerID,
		Title:     task.Title,
		Completed: task.Completed,
		Priority:  string(task.Priority),
		Tag:       task.Tag,
		CreatedAt: task.CreatedAt,
		UpdatedAt: task.UpdatedAt,
	}
}

// ToTaskListResponse converts a slice of tasks. Always returns a non-nil
// slice so an empty list serializes as [] rather than null.
func ToTaskListResponse(tasks []*model.Task) []TaskResponse {
	out := make([]TaskResponse, 0, len(tasks))
	for _, task := range tasks {
		out = append(out, ToTaskResponse(task))
	}
	return out
}
