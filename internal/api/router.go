package api

import (
	"net/http"

	customMiddleware "askpdf/internal/api/middleware"

	"askpdf/internal/api/handler"
	"askpdf/internal/config"
	"askpdf/internal/ingest"
	"askpdf/internal/llm"
	"askpdf/internal/llm/gemini"
	"askpdf/internal/pdf"
	"askpdf/internal/repository/postgres"
	"askpdf/internal/repository/redis"
	"askpdf/internal/security"
	"askpdf/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"
)

// NewRouter creates and configures the HTTP router
func NewRouter(cfg *config.Config, db *postgres.DB, redisClient *redis.Client, provider *gemini.Provider) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(customMiddleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.Server.MiddlewareTimeout))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Stores
	sessionStore := redis.NewSessionStore(redisClient)
	vectorIndex := postgres.NewVectorIndex(db)

	// LLM routing
	llmRouter := llm.NewRouter(cfg.LLM.Provider)
	if provider.IsConfigured() {
		llmRouter.RegisterProvider(provider)
	} else {
		log.Warn().Msg("Gemini API key is empty, generation requests will fail")
	}

	// Workflow components
	extractor := pdf.NewDocconvExtractor()
	splitter := ingest.NewSplitter(cfg.Ingest.ChunkSize, cfg.Ingest.ChunkOverlap, cfg.Ingest.MaxChunks)
	locks := service.NewSessionLocks()

	sessionService := service.NewSessionService(
		sessionStore,
		vectorIndex,
		provider,
		extractor,
		splitter,
		cfg.Ingest.MaxSessions,
		locks,
	)
	chatService := service.NewChatService(
		sessionStore,
		vectorIndex,
		provider,
		llmRouter,
		cfg.Chat,
		locks,
	)

	// Handlers
	documentHandler := handler.NewDocumentHandler(sessionService, cfg.Ingest.MaxUploadMB)
	chatHandler := handler.NewChatHandler(chatService, sessionService)

	// Middleware over identity and quota
	identity := customMiddleware.NewIdentityMiddleware(security.NewTokenParser(cfg.Auth.TokenSecret))
	rateLimiter := redis.NewRateLimiter(
		redisClient,
		cfg.Security.RateLimit.RequestsPerMinute,
		cfg.Security.RateLimit.Burst,
	)
	rateLimit := customMiddleware.NewRateLimitMiddleware(rateLimiter)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", handler.HealthCheck)
		r.Get("/ready", handler.ReadyCheck(db))

		r.Group(func(r chi.Router) {
			r.Use(identity.Resolve)
			r.Use(rateLimit.Limit)

			r.Post("/upload", documentHandler.Upload)
			r.Post("/search", chatHandler.Search)
			r.Get("/history/{sessionID}", chatHandler.GetHistory)
			r.Delete("/history/{sessionID}", chatHandler.ClearHistory)
			r.Delete("/session/{sessionID}", chatHandler.DeleteSession)
		})
	})

	return r
}
