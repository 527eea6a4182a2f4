package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/taskdeck/taskdeck/internal/auth"
	"github.com/taskdeck/taskdeck/internal/handler/dto"
	"github.com/taskdeck/taskdeck/internal/model"
	"github.com/taskdeck/taskdeck/internal/service"
)

// TaskHandler handles HTTP requests for task operations.
type TaskHandler struct {
	svc    *service.TaskService
	logger *slog.Logger
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(svc *service.TaskService, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{
		svc:    svc,
		logger: logger,
	}
}

// List handles GET /api/v1/tasks.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	query := r.URL.Query()

	filters := service.TaskFilters{
		Search:   query.Get("search"),
		Priority: query.Get("priority"),
		Tag:      query.Get("tag"),
		Sort:     query.Get("sort"),
		Order:    query.Get("order"),
	}

	if c := query.Get("completed"); c != "" {
		if parsed, err := strconv.ParseBool(c); err == nil {
			filters.Completed = &parsed
		}
	}

	tasks, err := h.svc.GetTasks(r.Context(), userID, filters)
	if err != nil {
		h.logger.Error("list_tasks_failed", "error", err)
		writeError(w, http.StatusInternalServerError, "GET_TASKS_FAILED", "Failed to fetch tasks")
		return
	}

	writeSuccess(w, http.StatusOK, dto.ToTaskListResponse(tasks))
}

// Create handles POST /api/v1/tasks.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	var req dto.CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	task, err := h.svc.CreateTask(r.Context(), userID, service.CreateTaskInput{
		Title:     req.Title,
		Completed: req.Completed,
		Priority:  model.Priority(req.Priority),
		Tag:       req.Tag,
	})
	if err != nil {
		h.handleTaskError(w, err, "CREATE_TASK_FAILED", "Failed to create task")
		return
	}

	h.logger.Info("task_created",
		"task_id", task.ID,
		"user_id", userID,
	)

	writeSuccess(w, http.StatusCreated, dto.ToTaskResponse(task))
}

// Get handles GET /api/v1/tasks/{id}.
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	task, err := h.svc.GetTaskByID(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		h.handleTaskError(w, err, "GET_TASK_FAILED", "Failed to fetch task")
		return
	}

	writeSuccess(w, http.StatusOK, dto.ToTaskResponse(task))
}

// Update handles PUT (and PATCH) /api/v1/tasks/{id}.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	var req dto.UpdateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	input := service.UpdateTaskInput{
		Title:     req.Title,
		Completed: req.Completed,
		Tag:       req.Tag,
	}
	if req.Priority != nil {
		p := model.Priority(*req.Priority)
		input.Priority = &p
	}

	task, err := h.svc.UpdateTask(r.Context(), userID, chi.URLParam(r, "id"), input)
	if err != nil {
		h.handleTaskError(w, err, "UPDATE_TASK_FAILED", "Failed to update task")
		return
	}

	writeSuccess(w, http.StatusOK, dto.ToTaskResponse(task))
}

// Delete handles DELETE /api/v1/tasks/{id}. Hard delete.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.svc.DeleteTask(r.Context(), userID, id); err != nil {
		h.handleTaskError(w, err, "DELETE_TASK_FAILED", "Failed to delete task")
		return
	}

	h.logger.Info("task_deleted",
		"task_id", id,
		"user_id", userID,
	)

	writeSuccess(w, http.StatusOK, dto.DeleteTaskResponse{Deleted: true, ID: id})
}

// Complete handles PATCH /api/v1/tasks/{id}/complete. Idempotent.
func (h *TaskHandler) Complete(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	task, err := h.svc.MarkComplete(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		h.handleTaskError(w, err, "MARK_COMPLETE_FAILED", "Failed to mark task complete")
		return
	}

	writeSuccess(w, http.StatusOK, dto.ToTaskResponse(task))
}

// Incomplete handles PATCH /api/v1/tasks/{id}/incomplete. Idempotent.
func (h *TaskHandler) Incomplete(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	task, err := h.svc.MarkIncomplete(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		h.handleTaskError(w, err, "MARK_INCOMPLETE_FAILED", "Failed to mark task incomplete")
		return
	}

	writeSuccess(w, http.StatusOK, dto.ToTaskResponse(task))
}

// handleTaskError maps service errors to HTTP responses. A task that does
// not exist and a task owned by someone else produce the same 404 body.
// Unexpected failures use the operation's failure code.
func (h *TaskHandler) handleTaskError(w http.ResponseWriter, err error, failCode, failMessage string) {
	switch {
	case errors.Is(err, service.ErrTaskNotFound):
		writeError(w, http.StatusNotFound, "TASK_NOT_FOUND", "Task not found")
	case errors.Is(err, service.ErrTitleRequired):
		writeValidationError(w, map[string]string{"title": "must be provided"})
	case errors.Is(err, service.ErrTitleTooLong):
		writeValidationError(w, map[string]string{"title": "must be at most 500 characters long"})
	case errors.Is(err, service.ErrInvalidPriority):
		writeValidationError(w, map[string]string{"priority": "must be one of low, medium, high"})
	default:
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, failCode, failMessage)
	}
}
