package domain

import (
	"context"
	"time"
)

// Priority is the task priority level
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Valid reports whether p is one of the enumerated priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Rank orders priorities for sorting: high before medium before low, with
// anything unknown last.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 3
	}
	return 4
}

// Task is a to-do item owned by exactly one user. OwnerID and CreatedAt are
// set at creation and never change.
type Task struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Priority    Priority  `json:"priority"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"created_at"`
	OwnerID     int64     `json:"-"`
}

// TaskCreate represents the fields accepted when creating a task
type TaskCreate struct {
	Title       string   `json:"title" validate:"required"`
	Description string   `json:"description"`
	Priority    Priority `json:"priority"`
}

// TaskUpdate carries a partial update: nil fields are left untouched.
type TaskUpdate struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Priority    *Priority `json:"priority"`
	Completed   *bool     `json:"completed"`
}

// Sort keys accepted by the list endpoint.
const (
	SortByCreatedAt = "created_at"
	SortByPriority  = "priority"
)

// TaskFilter narrows and orders a task listing. Zero value lists everything
// in creation order.
type TaskFilter struct {
	Completed     *bool
	Priority      *Priority
	Search        string
	CaseSensitive bool
	SortBy        string
	Reverse       bool
}

// TaskRepository is the persistence contract for tasks. Every read or write
// is scoped to an owner; implementations must treat a task belonging to a
// different owner exactly like a missing one.
type TaskRepository interface {
	Create(ctx context.Context, task *Task) error
	GetByID(ctx context.Context, id, ownerID int64) (*Task, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]Task, error)
	Update(ctx context.Context, id, ownerID int64, update *TaskUpdate) (*Task, error)
	Delete(ctx context.Context, id, ownerID int64) error
}
