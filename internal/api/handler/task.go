package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rensmac/tasktalk/internal/api/middleware"
	"github.com/rensmac/tasktalk/internal/api/response"
	"github.com/rensmac/tasktalk/internal/domain"
	"github.com/rensmac/tasktalk/internal/service"
)

// TaskHandler handles task CRUD endpoints
type TaskHandler struct {
	taskService *service.TaskService
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(taskService *service.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

// Create handles task creation
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		response.Unauthorized(w, "could not validate credentials")
		return
	}

	var input domain.TaskCreate
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	task, err := h.taskService.Add(r.Context(), user.ID, input)
	if err != nil {
		writeTaskError(w, err)
		return
	}

	response.Created(w, task)
}

// List handles task listing with optional filters
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		response.Unauthorized(w, "could not validate credentials")
		return
	}

	filter, err := parseTaskFilter(r)
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	tasks, err := h.taskService.List(r.Context(), user.ID, filter)
	if err != nil {
		writeTaskError(w, err)
		return
	}

	response.OK(w, tasks)
}

// Get handles fetching a single task
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		response.Unauthorized(w, "could not validate credentials")
		return
	}

	taskID, ok := parseTaskID(w, r)
	if !ok {
		return
	}

	task, err := h.taskService.Get(r.Context(), taskID, user.ID)
	if err != nil {
		writeTaskError(w, err)
		return
	}

	response.OK(w, task)
}

// Update handles partial task updates
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		response.Unauthorized(w, "could not validate credentials")
		return
	}

	taskID, ok := parseTaskID(w, r)
	if !ok {
		return
	}

	var input domain.TaskUpdate
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	task, err := h.taskService.Update(r.Context(), taskID, user.ID, input)
	if err != nil {
		writeTaskError(w, err)
		return
	}

	response.OK(w, task)
}

// Delete handles task deletion
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		response.Unauthorized(w, "could not validate credentials")
		return
	}

	taskID, ok := parseTaskID(w, r)
	if !ok {
		return
	}

	if err := h.taskService.Delete(r.Context(), taskID, user.ID); err != nil {
		writeTaskError(w, err)
		return
	}

	response.OK(w, map[string]any{"deleted": taskID})
}

// Complete handles marking a task complete or incomplete
func (h *TaskHandler) Complete(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		response.Unauthorized(w, "could not validate credentials")
		return
	}

	taskID, ok := parseTaskID(w, r)
	if !ok {
		return
	}

	// Absent body or absent field means "mark complete".
	input := struct {
		Completed *bool `json:"completed"`
	}{}
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&input)
	}
	completed := true
	if input.Completed != nil {
		completed = *input.Completed
	}

	task, err := h.taskService.SetCompleted(r.Context(), taskID, user.ID, completed)
	if err != nil {
		writeTaskError(w, err)
		return
	}

	response.OK(w, task)
}

func parseTaskID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "taskID")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(w, "invalid task id")
		return 0, false
	}
	return id, true
}

func parseTaskFilter(r *http.Request) (domain.TaskFilter, error) {
	q := r.URL.Query()
	var filter domain.TaskFilter

	switch strings.ToLower(q.Get("status")) {
	case "", "all":
	case "completed":
		completed := true
		filter.Completed = &completed
	case "pending":
		completed := false
		filter.Completed = &completed
	default:
		return filter, domain.NewValidationError("status", "status must be 'all', 'completed', or 'pending'")
	}

	if raw := q.Get("priority"); raw != "" {
		priority := domain.Priority(strings.ToLower(raw))
		if !priority.Valid() {
			return filter, domain.NewValidationError("priority", "priority must be 'low', 'medium', or 'high'")
		}
		filter.Priority = &priority
	}

	filter.Search = q.Get("search")
	filter.CaseSensitive = q.Get("case_sensitive") == "true"
	filter.SortBy = q.Get("sort")
	filter.Reverse = q.Get("reverse") == "true"

	return filter, nil
}

func writeTaskError(w http.ResponseWriter, err error) {
	switch {
	case domain.IsValidation(err):
		response.BadRequest(w, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		response.NotFound(w, "task not found")
	default:
		response.InternalError(w, "task operation failed")
	}
}
