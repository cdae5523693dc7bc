package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/rensmac/tasktalk/internal/domain"
)

// TaskService is the validation gate in front of the task store. Field rules
// live here so they apply no matter which surface (REST or chat tools) is
// calling.
type TaskService struct {
	taskRepo domain.TaskRepository
}

// NewTaskService creates a new task service
func NewTaskService(taskRepo domain.TaskRepository) *TaskService {
	return &TaskService{taskRepo: taskRepo}
}

// Add validates and stores a new task bound to ownerID.
func (s *TaskService) Add(ctx context.Context, ownerID int64, input domain.TaskCreate) (*domain.Task, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, domain.NewValidationError("title", "task title cannot be empty")
	}

	priority := input.Priority
	if priority == "" {
		priority = domain.PriorityMedium
	}
	if !priority.Valid() {
		return nil, domain.NewValidationError("priority", "priority must be 'low', 'medium', or 'high'")
	}

	task := &domain.Task{
		Title:       input.Title,
		Description: input.Description,
		Priority:    priority,
		Completed:   false,
		CreatedAt:   time.Now(),
		OwnerID:     ownerID,
	}
	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// Get returns a single owned task.
func (s *TaskService) Get(ctx context.Context, id, ownerID int64) (*domain.Task, error) {
	return s.taskRepo.GetByID(ctx, id, ownerID)
}

// Update applies a partial update. Only fields present in update are
// validated and written; the rest keep their stored values.
func (s *TaskService) Update(ctx context.Context, id, ownerID int64, update domain.TaskUpdate) (*domain.Task, error) {
	if update.Title != nil && strings.TrimSpace(*update.Title) == "" {
		return nil, domain.NewValidationError("title", "task title cannot be empty")
	}
	if update.Priority != nil && !update.Priority.Valid() {
		return nil, domain.NewValidationError("priority", "priority must be 'low', 'medium', or 'high'")
	}

	return s.taskRepo.Update(ctx, id, ownerID, &update)
}

// Delete removes an owned task. A missing or foreign task yields
// domain.ErrNotFound.
func (s *TaskService) Delete(ctx context.Context, id, ownerID int64) error {
	return s.taskRepo.Delete(ctx, id, ownerID)
}

// SetCompleted flips the completion flag on an owned task.
func (s *TaskService) SetCompleted(ctx context.Context, id, ownerID int64, completed bool) (*domain.Task, error) {
	return s.taskRepo.Update(ctx, id, ownerID, &domain.TaskUpdate{Completed: &completed})
}

// List returns the owner's tasks narrowed and ordered by filter.
func (s *TaskService) List(ctx context.Context, ownerID int64, filter domain.TaskFilter) ([]domain.Task, error) {
	tasks, err := s.taskRepo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	if filter.Completed != nil {
		tasks = keep(tasks, func(t domain.Task) bool { return t.Completed == *filter.Completed })
	}
	if filter.Priority != nil {
		tasks = keep(tasks, func(t domain.Task) bool { return t.Priority == *filter.Priority })
	}
	if filter.Search != "" {
		needle := filter.Search
		if !filter.CaseSensitive {
			needle = strings.ToLower(needle)
		}
		tasks = keep(tasks, func(t domain.Task) bool {
			title, desc := t.Title, t.Description
			if !filter.CaseSensitive {
				title = strings.ToLower(title)
				desc = strings.ToLower(desc)
			}
			return strings.Contains(title, needle) || strings.Contains(desc, needle)
		})
	}

	switch filter.SortBy {
	case "", domain.SortByCreatedAt:
		sort.SliceStable(tasks, func(i, j int) bool {
			return tasks[i].CreatedAt.Before(tasks[j].CreatedAt)
		})
	case domain.SortByPriority:
		sort.SliceStable(tasks, func(i, j int) bool {
			return tasks[i].Priority.Rank() < tasks[j].Priority.Rank()
		})
	default:
		return nil, domain.NewValidationError("sort", "sort by must be 'created_at' or 'priority'")
	}

	if filter.Reverse {
		for i, j := 0, len(tasks)-1; i < j; i, j = i+1, j-1 {
			tasks[i], tasks[j] = tasks[j], tasks[i]
		}
	}

	return tasks, nil
}

func keep(tasks []domain.Task, pred func(domain.Task) bool) []domain.Task {
	out := tasks[:0]
	for _, t := range tasks {
		if pred(t) {
			out = append(out, t)
		}
	}
	return out
}
