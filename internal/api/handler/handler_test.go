package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rensmac/tasktalk/internal/api/middleware"
	"github.com/rensmac/tasktalk/internal/domain"
	"github.com/rensmac/tasktalk/internal/security"
	"github.com/rensmac/tasktalk/internal/service"
)

// In-memory repositories backing the handler tests.

type memUserRepo struct {
	mu     sync.Mutex
	nextID int64
	users  map[string]*domain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{nextID: 1, users: make(map[string]*domain.User)}
}

func (r *memUserRepo) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user.ID = r.nextID
	r.nextID++
	r.users[user.Email] = user
	return nil
}

func (r *memUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[email]; ok {
		return u, nil
	}
	return nil, domain.ErrNotFound
}

func (r *memUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memUserRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.users[email]
	return ok, nil
}

type memTaskRepo struct {
	mu     sync.Mutex
	nextID int64
	tasks  map[int64]*domain.Task
}

func newMemTaskRepo() *memTaskRepo {
	return &memTaskRepo{nextID: 1, tasks: make(map[int64]*domain.Task)}
}

func (r *memTaskRepo) Create(ctx context.Context, task *domain.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	task.ID = r.nextID
	r.nextID++
	copied := *task
	r.tasks[task.ID] = &copied
	return nil
}

func (r *memTaskRepo) GetByID(ctx context.Context, id, ownerID int64) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	if !ok || t.OwnerID != ownerID {
		return nil, domain.ErrNotFound
	}
	copied := *t
	return &copied, nil
}

func (r *memTaskRepo) ListByOwner(ctx context.Context, ownerID int64) ([]domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Task
	for _, t := range r.tasks {
		if t.OwnerID == ownerID {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memTaskRepo) Update(ctx context.Context, id, ownerID int64, update *domain.TaskUpdate) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	if !ok || t.OwnerID != ownerID {
		return nil, domain.ErrNotFound
	}
	if update.Title != nil {
		t.Title = *update.Title
	}
	if update.Description != nil {
		t.Description = *update.Description
	}
	if update.Priority != nil {
		t.Priority = *update.Priority
	}
	if update.Completed != nil {
		t.Completed = *update.Completed
	}
	copied := *t
	return &copied, nil
}

func (r *memTaskRepo) Delete(ctx context.Context, id, ownerID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	if !ok || t.OwnerID != ownerID {
		return domain.ErrNotFound
	}
	delete(r.tasks, id)
	return nil
}

func newTestAPI(t *testing.T) http.Handler {
	t.Helper()

	tokens := security.NewTokenManager("test-secret", 30*time.Minute)
	userRepo := newMemUserRepo()
	taskRepo := newMemTaskRepo()

	authHandler := NewAuthHandler(service.NewAuthService(userRepo, tokens))
	taskHandler := NewTaskHandler(service.NewTaskService(taskRepo))
	authMW := middleware.NewAuthMiddleware(tokens, userRepo)

	r := chi.NewRouter()
	r.Post("/api/v1/auth/register", authHandler.Register)
	r.Post("/api/v1/auth/login", authHandler.Login)
	r.Group(func(r chi.Router) {
		r.Use(authMW.Authenticate)
		r.Get("/api/v1/auth/me", authHandler.Me)
		r.Route("/api/v1/tasks", func(r chi.Router) {
			r.Post("/", taskHandler.Create)
			r.Get("/", taskHandler.List)
			r.Get("/{taskID}", taskHandler.Get)
			r.Put("/{taskID}", taskHandler.Update)
			r.Delete("/{taskID}", taskHandler.Delete)
			r.Put("/{taskID}/complete", taskHandler.Complete)
		})
	})
	return r
}

type apiResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   any             `json:"error"`
}

func doJSON(t *testing.T, h http.Handler, method, path, token string, body any) (*httptest.ResponseRecorder, apiResponse) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var resp apiResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	return rec, resp
}

func registerAndLogin(t *testing.T, h http.Handler, email string) string {
	t.Helper()

	rec, _ := doJSON(t, h, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email":    email,
		"password": "secret-password",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, resp := doJSON(t, h, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    email,
		"password": "secret-password",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var token domain.Token
	require.NoError(t, json.Unmarshal(resp.Data, &token))
	require.NotEmpty(t, token.AccessToken)
	return token.AccessToken
}

func TestAuthFlow(t *testing.T) {
	h := newTestAPI(t)
	token := registerAndLogin(t, h, "alice@example.com")

	rec, resp := doJSON(t, h, http.MethodGet, "/api/v1/auth/me", token, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	var me struct {
		ID    int64  `json:"id"`
		Email string `json:"email"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &me))
	assert.Equal(t, "alice@example.com", me.Email)
}

func TestRegister_Validation(t *testing.T) {
	h := newTestAPI(t)

	tests := []struct {
		name string
		body map[string]string
	}{
		{"bad email", map[string]string{"email": "not-an-email", "password": "secret-password"}},
		{"short password", map[string]string{"email": "bob@example.com", "password": "short"}},
		{"missing fields", map[string]string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, _ := doJSON(t, h, http.MethodPost, "/api/v1/auth/register", "", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	h := newTestAPI(t)
	registerAndLogin(t, h, "alice@example.com")

	rec, _ := doJSON(t, h, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email":    "alice@example.com",
		"password": "secret-password",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogin_WrongPassword(t *testing.T) {
	h := newTestAPI(t)
	registerAndLogin(t, h, "alice@example.com")

	rec, _ := doJSON(t, h, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "wrong-password",
	})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestTaskCRUD(t *testing.T) {
	h := newTestAPI(t)
	token := registerAndLogin(t, h, "alice@example.com")

	// Create
	rec, resp := doJSON(t, h, http.MethodPost, "/api/v1/tasks", token, map[string]any{
		"title":    "buy groceries",
		"priority": "high",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created domain.Task
	require.NoError(t, json.Unmarshal(resp.Data, &created))
	assert.Equal(t, domain.PriorityHigh, created.Priority)
	require.NotZero(t, created.ID)

	// Read
	rec, resp = doJSON(t, h, http.MethodGet, fmt.Sprintf("/api/v1/tasks/%d", created.ID), token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// Update
	rec, resp = doJSON(t, h, http.MethodPut, fmt.Sprintf("/api/v1/tasks/%d", created.ID), token, map[string]any{
		"title": "buy more groceries",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var updated domain.Task
	require.NoError(t, json.Unmarshal(resp.Data, &updated))
	assert.Equal(t, "buy more groceries", updated.Title)
	assert.Equal(t, domain.PriorityHigh, updated.Priority)

	// Complete with empty body defaults to done
	rec, resp = doJSON(t, h, http.MethodPut, fmt.Sprintf("/api/v1/tasks/%d/complete", created.ID), token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var completed domain.Task
	require.NoError(t, json.Unmarshal(resp.Data, &completed))
	assert.True(t, completed.Completed)

	// Delete
	rec, _ = doJSON(t, h, http.MethodDelete, fmt.Sprintf("/api/v1/tasks/%d", created.ID), token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = doJSON(t, h, http.MethodGet, fmt.Sprintf("/api/v1/tasks/%d", created.ID), token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTask_CrossOwnerIsNotFound(t *testing.T) {
	h := newTestAPI(t)
	aliceToken := registerAndLogin(t, h, "alice@example.com")
	bobToken := registerAndLogin(t, h, "bob@example.com")

	rec, resp := doJSON(t, h, http.MethodPost, "/api/v1/tasks", aliceToken, map[string]any{
		"title": "private task",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var created domain.Task
	require.NoError(t, json.Unmarshal(resp.Data, &created))

	// Another user's task is indistinguishable from a missing one.
	paths := []struct {
		method string
		path   string
		body   any
	}{
		{http.MethodGet, fmt.Sprintf("/api/v1/tasks/%d", created.ID), nil},
		{http.MethodPut, fmt.Sprintf("/api/v1/tasks/%d", created.ID), map[string]any{"title": "hijack"}},
		{http.MethodDelete, fmt.Sprintf("/api/v1/tasks/%d", created.ID), nil},
		{http.MethodPut, fmt.Sprintf("/api/v1/tasks/%d/complete", created.ID), nil},
	}
	for _, p := range paths {
		rec, resp := doJSON(t, h, p.method, p.path, bobToken, p.body)
		assert.Equal(t, http.StatusNotFound, rec.Code, p.path)
		assert.Equal(t, "task not found", resp.Error)
	}
}

func TestTaskList_QueryParams(t *testing.T) {
	h := newTestAPI(t)
	token := registerAndLogin(t, h, "alice@example.com")

	seed := []map[string]any{
		{"title": "walk the dog", "priority": "low"},
		{"title": "file taxes", "priority": "high"},
		{"title": "buy groceries", "priority": "medium"},
	}
	for _, body := range seed {
		rec, _ := doJSON(t, h, http.MethodPost, "/api/v1/tasks", token, body)
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec, _ := doJSON(t, h, http.MethodPut, "/api/v1/tasks/2/complete", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	listTitles := func(query string) []string {
		rec, resp := doJSON(t, h, http.MethodGet, "/api/v1/tasks"+query, token, nil)
		require.Equal(t, http.StatusOK, rec.Code, query)
		var tasks []domain.Task
		require.NoError(t, json.Unmarshal(resp.Data, &tasks))
		titles := make([]string, 0, len(tasks))
		for _, task := range tasks {
			titles = append(titles, task.Title)
		}
		return titles
	}

	assert.Equal(t, []string{"file taxes"}, listTitles("?status=completed"))
	assert.Equal(t, []string{"walk the dog", "buy groceries"}, listTitles("?status=pending"))
	assert.Equal(t, []string{"file taxes"}, listTitles("?priority=high"))
	assert.Equal(t, []string{"buy groceries"}, listTitles("?search=groceries"))

	rec, _ = doJSON(t, h, http.MethodGet, "/api/v1/tasks?status=bogus", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = doJSON(t, h, http.MethodGet, "/api/v1/tasks?sort=title", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTask_Unauthenticated(t *testing.T) {
	h := newTestAPI(t)

	rec, resp := doJSON(t, h, http.MethodGet, "/api/v1/tasks", "", nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "could not validate credentials", resp.Error)
}
