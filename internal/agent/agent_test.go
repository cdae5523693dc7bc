package agent

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rensmac/tasktalk/internal/agent/tools"
	"github.com/rensmac/tasktalk/internal/llm"
)

// fakeProvider scripts the language-model side of a resolution.
type fakeProvider struct {
	resp *llm.Response
	err  error
}

func (f *fakeProvider) Name() string         { return "fake" }
func (f *fakeProvider) DefaultModel() string { return "fake-1" }
func (f *fakeProvider) IsConfigured() bool   { return true }

func (f *fakeProvider) ResolveTool(ctx context.Context, req llm.Request, model string) (*llm.Response, error) {
	return f.resp, f.err
}

func fakeRouter(p llm.Provider) *llm.Router {
	router := llm.NewRouter("fake")
	router.RegisterProvider(p)
	return router
}

func stubBackend(t *testing.T, handler http.HandlerFunc) *tools.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return tools.NewClient(srv.URL, 5*time.Second)
}

func okBackend(t *testing.T) *tools.Client {
	return stubBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodPost:
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"success": true,
				"data":    map[string]any{"id": 1, "title": "buy groceries"},
			})
		case r.Method == http.MethodGet:
			_ = json.NewEncoder(w).Encode(map[string]any{
				"success": true,
				"data": []map[string]any{
					{"id": 1, "title": "buy groceries", "completed": false},
					{"id": 2, "title": "walk the dog", "completed": false},
				},
			})
		default:
			_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "data": map[string]any{"id": 1}})
		}
	})
}

func TestResolve_Rules_Add(t *testing.T) {
	a := New(okBackend(t), nil, time.Second)

	text := a.Resolve(context.Background(), "Add a task to buy groceries", "tok")

	assert.Contains(t, text, "I've added the task 'buy groceries'")
}

func TestResolve_Rules_List(t *testing.T) {
	a := New(okBackend(t), nil, time.Second)

	text := a.Resolve(context.Background(), "Show my tasks", "tok")

	assert.Contains(t, text, "You have 2 all tasks")
	assert.Contains(t, text, "buy groceries")
	assert.Contains(t, text, "walk the dog")
}

func TestResolve_Rules_Clarifications(t *testing.T) {
	a := New(okBackend(t), nil, time.Second)

	text := a.Resolve(context.Background(), "mark it as done", "tok")
	assert.Contains(t, text, "specify which task by number")

	text = a.Resolve(context.Background(), "delete that thing", "tok")
	assert.Contains(t, text, "specify which task by number")
}

func TestResolve_Rules_Unknown(t *testing.T) {
	a := New(okBackend(t), nil, time.Second)

	// No tool call happens; a backend hit would fail loudly.
	failing := stubBackend(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("unexpected backend call")
	})
	a = New(failing, nil, time.Second)

	text := a.Resolve(context.Background(), "asdkjasd", "tok")

	assert.Equal(t, helpText, text)
}

func TestResolve_Provider_ToolCall(t *testing.T) {
	provider := &fakeProvider{resp: &llm.Response{
		ToolCall: &llm.ToolCall{
			Name: "add_task",
			Args: map[string]any{"title": "buy groceries"},
		},
	}}
	a := New(okBackend(t), fakeRouter(provider), time.Second)

	text := a.Resolve(context.Background(), "please put groceries on my list", "tok")

	assert.Contains(t, text, "I've added the task 'buy groceries'")
}

func TestResolve_Provider_Reply(t *testing.T) {
	provider := &fakeProvider{resp: &llm.Response{Reply: "You're all caught up."}}
	a := New(okBackend(t), fakeRouter(provider), time.Second)

	text := a.Resolve(context.Background(), "anything left to do?", "tok")

	assert.Equal(t, "You're all caught up.", text)
}

func TestResolve_Provider_Failure(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"quota", errors.New("429: rate limit exceeded"), "usage quota"},
		{"auth", errors.New("invalid api key"), "service configuration"},
		{"timeout", context.DeadlineExceeded, "taking too long"},
		{"connection", errors.New("dial tcp: connection refused"), "couldn't connect"},
		{"other", errors.New("boom"), "error processing your request"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &fakeProvider{err: tt.err}
			a := New(okBackend(t), fakeRouter(provider), time.Second)

			text := a.Resolve(context.Background(), "Show my tasks", "tok")

			assert.True(t, strings.HasPrefix(text, "Sorry,"), text)
			assert.Contains(t, text, tt.want)
		})
	}
}

func TestResolve_Provider_UnusableOutputFallsBack(t *testing.T) {
	// Neither a tool call nor a reply: the rule path should answer.
	provider := &fakeProvider{resp: &llm.Response{}}
	a := New(okBackend(t), fakeRouter(provider), time.Second)

	text := a.Resolve(context.Background(), "Show my tasks", "tok")

	require.Contains(t, text, "You have 2 all tasks")
}

func TestRenderList_Truncation(t *testing.T) {
	var views []tools.TaskView
	for i := 1; i <= 8; i++ {
		views = append(views, tools.TaskView{ID: int64(i), Title: strings.Repeat("x", i)})
	}

	text := renderList("all", tools.Result{OK: true, Tasks: views})

	assert.Contains(t, text, "You have 8 all tasks")
	assert.Contains(t, text, "...and 3 more tasks.")
}
