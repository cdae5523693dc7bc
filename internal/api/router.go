package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"

	"github.com/rensmac/tasktalk/internal/agent"
	"github.com/rensmac/tasktalk/internal/agent/tools"
	"github.com/rensmac/tasktalk/internal/api/handler"
	"github.com/rensmac/tasktalk/internal/api/middleware"
	"github.com/rensmac/tasktalk/internal/config"
	"github.com/rensmac/tasktalk/internal/llm"
	"github.com/rensmac/tasktalk/internal/llm/gemini"
	"github.com/rensmac/tasktalk/internal/llm/ollama"
	"github.com/rensmac/tasktalk/internal/llm/openai"
	"github.com/rensmac/tasktalk/internal/repository/postgres"
	"github.com/rensmac/tasktalk/internal/repository/redis"
	"github.com/rensmac/tasktalk/internal/security"
	"github.com/rensmac/tasktalk/internal/service"
)

// Router bundles the HTTP handler with the resources it owns.
type Router struct {
	Handler     *chi.Mux
	ChatService *service.ChatService
}

// NewRouter wires repositories, services, and handlers into the HTTP surface.
// redisClient may be nil, in which case chat rate limiting is disabled.
func NewRouter(cfg *config.Config, db *postgres.DB, redisClient *redis.Client) *Router {
	tokens := security.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL)

	userRepo := postgres.NewUserRepository(db)
	taskRepo := postgres.NewTaskRepository(db)

	authService := service.NewAuthService(userRepo, tokens)
	taskService := service.NewTaskService(taskRepo)

	providers := buildProviderRouter(cfg.LLM)

	toolClient := tools.NewClient(cfg.Chat.APIBaseURL, cfg.Chat.ToolTimeout)
	chatAgent := agent.New(toolClient, providers, cfg.LLM.RequestTimeout)
	chatService := service.NewChatService(chatAgent, cfg.Chat.Workers, cfg.Chat.QueueSize, cfg.Chat.RequestTimeout)

	authHandler := handler.NewAuthHandler(authService)
	taskHandler := handler.NewTaskHandler(taskService)
	chatHandler := handler.NewChatHandler(chatService)
	healthHandler := handler.NewHealthHandler(db, providers)

	authMiddleware := middleware.NewAuthMiddleware(tokens, userRepo)

	var limiter *redis.RateLimiter
	if redisClient != nil {
		limiter = redis.NewRateLimiter(redisClient, cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.Burst)
	}
	rateLimit := middleware.NewRateLimitMiddleware(limiter, tokens)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(cfg.Server.MiddlewareTimeout))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)

		// Chat takes no auth of its own; a bearer token, when present, is
		// forwarded to the task endpoints the agent calls.
		r.With(rateLimit.Limit).Post("/chat", chatHandler.Chat)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Get("/auth/me", authHandler.Me)

			r.Route("/tasks", func(r chi.Router) {
				r.Post("/", taskHandler.Create)
				r.Get("/", taskHandler.List)
				r.Get("/{taskID}", taskHandler.Get)
				r.Put("/{taskID}", taskHandler.Update)
				r.Delete("/{taskID}", taskHandler.Delete)
				r.Put("/{taskID}/complete", taskHandler.Complete)
			})

			r.Get("/llm-providers", healthHandler.ListProviders)
		})
	})

	return &Router{Handler: r, ChatService: chatService}
}

func buildProviderRouter(cfg config.LLMConfig) *llm.Router {
	router := llm.NewRouter(cfg.DefaultProvider)

	router.RegisterProvider(openai.NewProvider(cfg.OpenAI.APIKey, cfg.OpenAI.Model))
	router.RegisterProvider(gemini.NewProvider(cfg.Gemini))
	router.RegisterProvider(ollama.NewProvider(cfg.Ollama.Host, cfg.Ollama.DefaultModel))

	if !router.HasDefault() {
		log.Warn().Msg("no language model provider configured, chat falls back to rule-based parsing")
	}

	return router
}
