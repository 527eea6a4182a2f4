package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/taskdeck/taskdeck/internal/model"
)

// ErrTaskNotFound covers both a missing row and a row owned by another
// user: every task query is scoped to the caller's owner id, so the two
// cases are indistinguishable on purpose.
var ErrTaskNotFound = errors.New("task not found")

// TaskFilter defines filters and ordering for listing tasks.
type TaskFilter struct {
	Search    string
	Completed *bool
	Priority  string
	Tag       string
	Sort      string // API field name, resolved against sortColumns
	Order     string // "asc" or "desc"
}

// sortColumns maps API sort field names to their columns.
var sortColumns = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"title":     "title",
	"priority":  "priority",
}

// CreateTask inserts a new task into the database.
func (r *Repository) CreateTask(ctx context.Context, task *model.Task) error {
	query := `
		INSERT INTO tasks (id, owner_id, title, completed, priority, tag, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.pool.Exec(ctx, query,
		task.ID,
		task.OwnerID,
		task.Title,
		task.Completed,
		string(task.Priority),
		task.Tag,
		task.CreatedAt,
		task.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}

	return nil
}

// GetTask retrieves a task by id, scoped to the given owner.
func (r *Repository) GetTask(ctx context.Context, id, ownerID string) (*model.Task, error) {
	query := `
		SELECT id, owner_id, title, completed, priority, tag, created_at, updated_at
		FROM tasks
		WHERE id = $1 AND owner_id = $2
	`

	task, err := scanTask(r.pool.QueryRow(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	return task, nil
}

// ListTasks retrieves all tasks for an owner matching the filter.
func (r *Repository) ListTasks(ctx context.Context, ownerID string, filter TaskFilter) ([]*model.Task, error) {
	query := `
		SELECT id, owner_id, title, completed, priority, tag, created_at, updated_at
		FROM tasks
		WHERE owner_id = $1
	`
	args := []any{ownerID}
	argIndex := 2

	if filter.Search != "" {
		query += fmt.Sprintf(" AND title ILIKE $%d", argIndex)
		args = append(args, "%"+filter.Search+"%")
		argIndex++
	}

	if filter.Completed != nil {
		query += fmt.Sprintf(" AND completed = $%d", argIndex)
		args = append(args, *filter.Completed)
		argIndex++
	}

	if filter.Priority != "" {
		query += fmt.Sprintf(" AND priority = $%d", argIndex)
		args = append(args, filter.Priority)
		argIndex++
	}

	if filter.Tag != "" {
		query += fmt.Sprintf(" AND tag = $%d", argIndex)
		args = append(args, filter.Tag)
		argIndex++
	}

	query += " ORDER BY " + orderClause(filter.Sort, filter.Order)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*model.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tasks: %w", err)
	}

	return tasks, nil
}

// UpdateTask updates a task's mutable fields, scoped to its owner.
// The owner id is never part of the SET clause.
func (r *Repository) UpdateTask(ctx context.Context, task *model.Task) error {
	query := `
		UPDATE tasks
		SET title = $3, completed = $4, priority = $5, tag = $6, updated_at = $7
		WHERE id = $1 AND owner_id = $2
	`

	result, err := r.pool.Exec(ctx, query,
		task.ID,
		task.OwnerID,
		task.Title,
		task.Completed,
		string(task.Priority),
		task.Tag,
		task.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrTaskNotFound
	}

	return nil
}

// DeleteTask removes a task, scoped to its owner. Hard delete.
func (r *Repository) DeleteTask(ctx context.Context, id, ownerID string) error {
	query := `DELETE FROM tasks WHERE id = $1 AND owner_id = $2`

	result, err := r.pool.Exec(ctx, query, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrTaskNotFound
	}

	return nil
}

// orderClause builds a safe ORDER BY clause from the filter. Unknown sort
// fields fall back to creation time; id breaks ties for a stable order.
func orderClause(sort, order string) string {
	column, ok := sortColumns[sort]
	if !ok {
		column = "created_at"
	}

	direction := "DESC"
	if strings.EqualFold(order, "asc") {
		direction = "ASC"
	}

	return fmt.Sprintf("%s %s, id DESC", column, direction)
}

// scanTask scans a single row into a Task model.
func scanTask(row pgx.Row) (*model.Task, error) {
	var task model.Task
	var priority string
	err := row.Scan(
		&task.ID,
		&task.OwnerID,
		&task.Title,
		&task.Completed,
		&priority,
		&task.Tag,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	task.Priority = model.Priority(priority)
	return &task, err
}
