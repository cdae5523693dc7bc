package handler

import (
	"net/http"

	"github.com/rensmac/tasktalk/internal/api/response"
	"github.com/rensmac/tasktalk/internal/llm"
	"github.com/rensmac/tasktalk/internal/repository/postgres"
)

// HealthHandler handles liveness, readiness, and provider introspection
type HealthHandler struct {
	db        *postgres.DB
	providers *llm.Router
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db *postgres.DB, providers *llm.Router) *HealthHandler {
	return &HealthHandler{db: db, providers: providers}
}

// Health reports process liveness
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	response.OK(w, map[string]string{"status": "ok"})
}

// Ready reports whether the database is reachable
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.db == nil {
		response.Error(w, http.StatusServiceUnavailable, "database not configured")
		return
	}
	if err := h.db.Ping(r.Context()); err != nil {
		response.Error(w, http.StatusServiceUnavailable, "database unreachable")
		return
	}
	response.OK(w, map[string]string{"status": "ready"})
}

// ListProviders reports the registered language model providers
func (h *HealthHandler) ListProviders(w http.ResponseWriter, r *http.Request) {
	if h.providers == nil {
		response.OK(w, []llm.ProviderInfo{})
		return
	}
	response.OK(w, h.providers.GetProvidersInfo())
}
