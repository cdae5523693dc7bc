package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// Category buckets tool failures for rendering. An empty category means
// success.
type Category string

const (
	CategoryValidation Category = "validation"
	CategoryNotFound   Category = "not_found"
	CategoryAuth       Category = "auth"
	CategoryTimeout    Category = "timeout"
	CategoryConnection Category = "connection"
	CategoryInternal   Category = "internal"
)

// TaskView is the task shape tools report back to the resolver.
type TaskView struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
	Completed   bool   `json:"completed"`
}

// Result is the uniform outcome envelope every tool returns. Tools never
// return a Go error to their caller; every fault is folded in here.
type Result struct {
	OK       bool
	Summary  string
	Category Category
	Detail   string
	TaskID   int64
	Tasks    []TaskView
}

// Tool parameter sets, one per catalog entry.

type AddTaskParams struct {
	Title       string
	Description string
	DueDate     string
}

type ListTasksParams struct {
	Status string // "all", "pending", "completed"
}

type UpdateTaskParams struct {
	TaskID      int64
	Title       string
	Description string
	DueDate     string
}

type DeleteTaskParams struct {
	TaskID int64
}

type MarkTaskCompleteParams struct {
	TaskID   int64
	Complete bool
}

// Client calls the task API on behalf of the chat agent, forwarding whatever
// bearer token the conversation turn supplied.
type Client struct {
	http *resty.Client
}

// NewClient creates a tool client against the task API at baseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	cli := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")

	return &Client{http: cli}
}

// envelope matches the task API's response wrapper.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   any             `json:"error"`
}

// AddTask creates a task. A due date has no dedicated field on the backend;
// it is folded into the description as an annotation.
func (c *Client) AddTask(ctx context.Context, token string, params AddTaskParams) Result {
	description := params.Description
	if params.DueDate != "" {
		if description != "" {
			description += fmt.Sprintf(" (Due: %s)", params.DueDate)
		} else {
			description = fmt.Sprintf("Due: %s", params.DueDate)
		}
	}

	body := map[string]any{
		"title":       params.Title,
		"description": description,
		"priority":    "medium",
	}

	resp, err := c.request(ctx, token).SetBody(body).Post("/api/v1/tasks")
	if err != nil {
		return transportFailure("adding the task", err)
	}
	env, fail := c.decode(resp, "adding the task")
	if fail != nil {
		return *fail
	}

	var task TaskView
	if err := json.Unmarshal(env.Data, &task); err != nil || task.ID == 0 {
		return Result{
			Summary:  "Error adding the task",
			Category: CategoryInternal,
			Detail:   "invalid response from backend, the task may not have been stored",
		}
	}

	return Result{
		OK:      true,
		Summary: fmt.Sprintf("Task %d added successfully", task.ID),
		TaskID:  task.ID,
		Tasks:   []TaskView{task},
	}
}

// ListTasks fetches tasks and filters by completion status client-side.
func (c *Client) ListTasks(ctx context.Context, token string, params ListTasksParams) Result {
	resp, err := c.request(ctx, token).Get("/api/v1/tasks")
	if err != nil {
		return transportFailure("listing tasks", err)
	}
	env, fail := c.decode(resp, "listing tasks")
	if fail != nil {
		return *fail
	}

	var tasks []TaskView
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &tasks); err != nil {
			return Result{
				Summary:  "Error listing tasks",
				Category: CategoryInternal,
				Detail:   "invalid response from backend",
			}
		}
	}

	switch params.Status {
	case "completed":
		tasks = filterTasks(tasks, true)
	case "pending":
		tasks = filterTasks(tasks, false)
	}

	return Result{
		OK:      true,
		Summary: fmt.Sprintf("Found %d tasks", len(tasks)),
		Tasks:   tasks,
	}
}

// UpdateTask applies a partial update to a task.
func (c *Client) UpdateTask(ctx context.Context, token string, params UpdateTaskParams) Result {
	body := map[string]any{}
	if params.Title != "" {
		body["title"] = params.Title
	}
	description := params.Description
	if params.DueDate != "" {
		description = strings.TrimSpace(fmt.Sprintf("%s (Due: %s)", description, params.DueDate))
	}
	if description != "" {
		body["description"] = description
	}

	resp, err := c.request(ctx, token).SetBody(body).Put(fmt.Sprintf("/api/v1/tasks/%d", params.TaskID))
	if err != nil {
		return transportFailure(fmt.Sprintf("updating task %d", params.TaskID), err)
	}
	if _, fail := c.decode(resp, fmt.Sprintf("updating task %d", params.TaskID)); fail != nil {
		return *fail
	}

	return Result{
		OK:      true,
		Summary: fmt.Sprintf("Task %d updated successfully", params.TaskID),
		TaskID:  params.TaskID,
	}
}

// DeleteTask removes a task.
func (c *Client) DeleteTask(ctx context.Context, token string, params DeleteTaskParams) Result {
	resp, err := c.request(ctx, token).Delete(fmt.Sprintf("/api/v1/tasks/%d", params.TaskID))
	if err != nil {
		return transportFailure(fmt.Sprintf("deleting task %d", params.TaskID), err)
	}
	if _, fail := c.decode(resp, fmt.Sprintf("deleting task %d", params.TaskID)); fail != nil {
		return *fail
	}

	return Result{
		OK:      true,
		Summary: fmt.Sprintf("Task %d deleted successfully", params.TaskID),
		TaskID:  params.TaskID,
	}
}

// MarkTaskComplete flips a task's completion flag.
func (c *Client) MarkTaskComplete(ctx context.Context, token string, params MarkTaskCompleteParams) Result {
	body := map[string]any{"completed": params.Complete}

	resp, err := c.request(ctx, token).SetBody(body).Put(fmt.Sprintf("/api/v1/tasks/%d/complete", params.TaskID))
	if err != nil {
		return transportFailure(fmt.Sprintf("updating task %d status", params.TaskID), err)
	}
	if _, fail := c.decode(resp, fmt.Sprintf("updating task %d status", params.TaskID)); fail != nil {
		return *fail
	}

	status := "pending"
	if params.Complete {
		status = "completed"
	}
	return Result{
		OK:      true,
		Summary: fmt.Sprintf("Task %d marked as %s", params.TaskID, status),
		TaskID:  params.TaskID,
	}
}

func (c *Client) request(ctx context.Context, token string) *resty.Request {
	req := c.http.R().SetContext(ctx)
	if token != "" {
		req.SetHeader("Authorization", "Bearer "+token)
	}
	return req
}

// decode maps an HTTP response onto the result envelope. Returns the parsed
// body on success, or a ready-to-return failure.
func (c *Client) decode(resp *resty.Response, action string) (*envelope, *Result) {
	var env envelope
	if len(resp.Body()) > 0 {
		// A decode failure leaves env zero-valued; status mapping below still applies.
		_ = json.Unmarshal(resp.Body(), &env)
	}

	code := resp.StatusCode()
	if code >= 200 && code < 300 {
		return &env, nil
	}

	detail := errorDetail(env.Error)
	if detail == "" {
		detail = strings.TrimSpace(string(resp.Body()))
	}

	var category Category
	switch {
	case code == http.StatusUnauthorized:
		category = CategoryAuth
		if detail == "" {
			detail = "not authorized"
		}
	case code == http.StatusNotFound:
		category = CategoryNotFound
		if detail == "" {
			detail = "task not found"
		}
	case code == http.StatusRequestTimeout:
		category = CategoryTimeout
	case code >= 400 && code < 500:
		category = CategoryValidation
	default:
		category = CategoryInternal
	}

	return nil, &Result{
		Summary:  fmt.Sprintf("Error %s", action),
		Category: category,
		Detail:   detail,
	}
}

// transportFailure maps client-side errors (timeouts, refused connections)
// onto the result envelope.
func transportFailure(action string, err error) Result {
	category := CategoryConnection
	detail := "could not connect to the task backend"

	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		category = CategoryTimeout
		detail = "request to the task backend timed out"
	case errors.As(err, &netErr) && netErr.Timeout():
		category = CategoryTimeout
		detail = "request to the task backend timed out"
	}

	return Result{
		Summary:  fmt.Sprintf("Error %s", action),
		Category: category,
		Detail:   detail,
	}
}

func errorDetail(v any) string {
	switch e := v.(type) {
	case nil:
		return ""
	case string:
		return e
	default:
		raw, err := json.Marshal(e)
		if err != nil {
			return ""
		}
		return string(raw)
	}
}

func filterTasks(tasks []TaskView, completed bool) []TaskView {
	out := tasks[:0]
	for _, t := range tasks {
		if t.Completed == completed {
			out = append(out, t)
		}
	}
	return out
}
