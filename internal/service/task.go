// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/taskdeck/taskdeck/internal/metrics"
	"github.com/taskdeck/taskdeck/internal/model"
	"github.com/taskdeck/taskdeck/internal/repository"
)

// Task service errors.
var (
	ErrTaskNotFound    = errors.New("task not found")
	ErrTitleRequired   = errors.New("title is required")
	ErrTitleTooLong    = errors.New("title exceeds maximum length")
	ErrInvalidPriority = errors.New("invalid priority")
)

const maxTitleLength = 500

// TaskStore defines the persistence operations the task service needs.
// Implemented by repository.Repository.
type TaskStore interface {
	CreateTask(ctx context.Context, task *model.Task) error
	GetTask(ctx context.Context, id, ownerID string) (*model.Task, error)
	ListTasks(ctx context.Context, ownerID string, filter repository.TaskFilter) ([]*model.Task, error)
	UpdateTask(ctx context.Context, task *model.Task) error
	DeleteTask(ctx context.Context, id, ownerID string) error
}

// TaskService mediates between route handlers and persistence.
// Every operation is scoped to the authenticated user's id; a client can
// never reach another user's tasks through this service.
type TaskService struct {
	store   TaskStore
	metrics metrics.Recorder
}

// NewTaskService creates a new TaskService.
func NewTaskService(store TaskStore, recorder metrics.Recorder) *TaskService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &TaskService{
		store:   store,
		metrics: recorder,
	}
}

// TaskFilters defines the optional filters for listing tasks.
type TaskFilters struct {
	Search    string
	Completed *bool
	Priority  string
	Tag       string
	Sort      string
	Order     string
}

// GetTasks returns the user's tasks matching the filter set.
func (s *TaskService) GetTasks(ctx context.Context, userID string, filters TaskFilters) ([]*model.Task, error) {
	tasks, err := s.store.ListTasks(ctx, userID, repository.TaskFilter{
		Search:    filters.Search,
		Completed: filters.Completed,
		Priority:  filters.Priority,
		Tag:       filters.Tag,
		Sort:      filters.Sort,
		Order:     filters.Order,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	return tasks, nil
}

// GetTaskByID returns a single task if it exists and is owned by the user.
func (s *TaskService) GetTaskByID(ctx context.Context, userID, taskID string) (*model.Task, error) {
	task, err := s.store.GetTask(ctx, taskID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}

	return task, nil
}

// CreateTaskInput defines input for creating a task.
type CreateTaskInput struct {
	Title     string
	Completed bool
	Priority  model.Priority
	Tag       string
}

// CreateTask creates a new task owned by the given user.
func (s *TaskService) CreateTask(ctx context.Context, userID string, input CreateTaskInput) (*model.Task, error) {
	title, err := validateTitle(input.Title)
	if err != nil {
		return nil, err
	}

	if !input.Priority.IsValid() {
		return nil, ErrInvalidPriority
	}

	now := time.Now().UTC()
	task := &model.Task{
		ID:        newTaskID(),
		OwnerID:   userID,
		Title:     title,
		Completed: input.Completed,
		Priority:  input.Priority,
		Tag:       input.Tag,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.store.CreateTask(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.metrics.IncTaskCreated()

	return task, nil
}

// UpdateTaskInput defines input for a partial task update.
// Nil fields are left unchanged; the owner is never updatable.
type UpdateTaskInput struct {
	Title     *string
	Completed *bool
	Priority  *model.Priority
	Tag       *string
}

// UpdateTask applies a partial update to a task owned by the user.
func (s *TaskService) UpdateTask(ctx context.Context, userID, taskID string, input UpdateTaskInput) (*model.Task, error) {
	// Re-verify ownership before mutating
	task, err := s.GetTaskByID(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		title, err := validateTitle(*input.Title)
		if err != nil {
			return nil, err
		}
		task.Title = title
	}

	if input.Completed != nil {
		task.Completed = *input.Completed
	}

	if input.Priority != nil {
		if !input.Priority.IsValid() {
			return nil, ErrInvalidPriority
		}
		task.Priority = *input.Priority
	}

	if input.Tag != nil {
		task.Tag = *input.Tag
	}

	task.UpdatedAt = time.Now().UTC()

	if err := s.store.UpdateTask(ctx, task); err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}

	s.metrics.IncTaskUpdated()

	return task, nil
}

// DeleteTask removes a task owned by the user. Hard delete.
func (s *TaskService) DeleteTask(ctx context.Context, userID, taskID string) error {
	if err := s.store.DeleteTask(ctx, taskID, userID); err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return ErrTaskNotFound
		}
		return err
	}

	s.metrics.IncTaskDeleted()

	return nil
}

// MarkComplete sets completed=true. Idempotent.
func (s *TaskService) MarkComplete(ctx context.Context, userID, taskID string) (*model.Task, error) {
	task, err := s.setCompleted(ctx, userID, taskID, true)
	if err != nil {
		return nil, err
	}

	s.metrics.IncTaskCompleted()

	return task, nil
}

// MarkIncomplete sets completed=false. Idempotent.
func (s *TaskService) MarkIncomplete(ctx context.Context, userID, taskID string) (*model.Task, error) {
	return s.setCompleted(ctx, userID, taskID, false)
}

// setCompleted performs a partial update of the completed field only.
func (s *TaskService) setCompleted(ctx context.Context, userID, taskID string, completed bool) (*model.Task, error) {
	task, err := s.GetTaskByID(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}

	task.Completed = completed
	task.UpdatedAt = time.Now().UTC()

	if err := s.store.UpdateTask(ctx, task); err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}

	s.metrics.IncTaskUpdated()

	return task, nil
}

// validateTitle trims and validates a task title.
func validateTitle(title string) (string, error) {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return "", ErrTitleRequired
	}
	if len(trimmed) > maxTitleLength {
		return "", ErrTitleTooLong
	}
	return trimmed, nil
}

// newTaskID generates a lexicographically sortable unique task id.
func newTaskID() string {
	return ulid.Make().String()
}
