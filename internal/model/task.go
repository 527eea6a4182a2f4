// Package model defines domain entities for the application.
package model

import "time"

// Priority classifies a task for filtering and sorting.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// IsValid checks if the priority is a known value.
// Empty is valid: priority is an optional attribute.
func (p Priority) IsValid() bool {
	return p == "" || p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

// Task represents one to-do item owned by exactly one user.
// OwnerID is set at creation and never changes.
type Task struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"ownerId"`
	Title     string    `json:"title"`
	Completed bool      `json:"completed"`
	Priority  Priority  `json:"priority,omitempty"`
	Tag       string    `json:"tag,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// IsOwnedBy reports whether the task belongs to the given user.
func (t *Task) IsOwnedBy(userID string) bool {
	return t.OwnerID == userID
}
