package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/rensmac/tasktalk/internal/domain"
)

// TaskRepository implements domain.TaskRepository on Postgres. Every query
// carries the owner ID so a foreign task behaves exactly like a missing one.
type TaskRepository struct {
	db *DB
}

// NewTaskRepository creates a new task repository
func NewTaskRepository(db *DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, task *domain.Task) error {
	query := `
		INSERT INTO tasks (title, description, priority, completed, created_at, owner_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	err := r.db.Pool.QueryRow(ctx, query,
		task.Title,
		task.Description,
		task.Priority,
		task.Completed,
		task.CreatedAt,
		task.OwnerID,
	).Scan(&task.ID)
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

func (r *TaskRepository) GetByID(ctx context.Context, id, ownerID int64) (*domain.Task, error) {
	query := `
		SELECT id, title, description, priority, completed, created_at, owner_id
		FROM tasks
		WHERE id = $1 AND owner_id = $2
	`
	var t domain.Task
	err := r.db.Pool.QueryRow(ctx, query, id, ownerID).Scan(
		&t.ID,
		&t.Title,
		&t.Description,
		&t.Priority,
		&t.Completed,
		&t.CreatedAt,
		&t.OwnerID,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return &t, nil
}

func (r *TaskRepository) ListByOwner(ctx context.Context, ownerID int64) ([]domain.Task, error) {
	query := `
		SELECT id, title, description, priority, completed, created_at, owner_id
		FROM tasks
		WHERE owner_id = $1
		ORDER BY created_at, id
	`
	rows, err := r.db.Pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		var t domain.Task
		if err := rows.Scan(
			&t.ID,
			&t.Title,
			&t.Description,
			&t.Priority,
			&t.Completed,
			&t.CreatedAt,
			&t.OwnerID,
		); err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read tasks: %w", err)
	}
	return tasks, nil
}

// Update applies a partial update and returns the updated row. Nil fields in
// update keep their stored values.
func (r *TaskRepository) Update(ctx context.Context, id, ownerID int64, update *domain.TaskUpdate) (*domain.Task, error) {
	sets := make([]string, 0, 4)
	args := make([]any, 0, 6)

	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if update.Title != nil {
		add("title", *update.Title)
	}
	if update.Description != nil {
		add("description", *update.Description)
	}
	if update.Priority != nil {
		add("priority", *update.Priority)
	}
	if update.Completed != nil {
		add("completed", *update.Completed)
	}

	if len(sets) == 0 {
		// Nothing to change; an empty update is a read.
		return r.GetByID(ctx, id, ownerID)
	}

	args = append(args, id, ownerID)
	query := fmt.Sprintf(`
		UPDATE tasks SET %s
		WHERE id = $%d AND owner_id = $%d
		RETURNING id, title, description, priority, completed, created_at, owner_id
	`, strings.Join(sets, ", "), len(args)-1, len(args))

	var t domain.Task
	err := r.db.Pool.QueryRow(ctx, query, args...).Scan(
		&t.ID,
		&t.Title,
		&t.Description,
		&t.Priority,
		&t.Completed,
		&t.CreatedAt,
		&t.OwnerID,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	return &t, nil
}

func (r *TaskRepository) Delete(ctx context.Context, id, ownerID int64) error {
	query := `DELETE FROM tasks WHERE id = $1 AND owner_id = $2`

	tag, err := r.db.Pool.Exec(ctx, query, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
