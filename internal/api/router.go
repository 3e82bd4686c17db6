package api

import (
	"encoding/json"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/clarionhq/clarion/internal/api/handlers"
	mw "github.com/clarionhq/clarion/internal/api/middleware"
	"github.com/clarionhq/clarion/internal/config"
	"github.com/clarionhq/clarion/internal/domain"
	"github.com/clarionhq/clarion/internal/embedding"
	"github.com/clarionhq/clarion/internal/llm"
	"github.com/clarionhq/clarion/internal/service"
	"github.com/clarionhq/clarion/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// App holds the router and request metrics.
type App struct {
	Router       *chi.Mux
	startTime    time.Time
	requestCount atomic.Int64
	errorCount   atomic.Int64
}

func NewApp(db *pgxpool.Pool, logger *zap.Logger) *App {
	// Stores
	tenantStore := store.NewTenantStore(db)
	briefStore := store.NewBriefStore(db)
	sourceStore := store.NewSourceStore(db)
	auditStore := store.NewAuditStore(db)

	// External clients via provider factory
	llmClient, err := llm.NewClient(config.LLMProvider(), config.LLMAPIKey())
	if err != nil {
		logger.Warn("LLM client initialization failed", zap.String("provider", config.LLMProvider()), zap.Error(err))
	} else {
		logger.Info("LLM client initialized", zap.String("provider", config.LLMProvider()))
	}

	embeddingClient, err := embedding.NewClient(config.EmbeddingProvider(), config.EmbeddingAPIKey())
	if err != nil {
		logger.Warn("embedding client initialization failed", zap.String("provider", config.EmbeddingProvider()), zap.Error(err))
	} else {
		logger.Info("embedding client initialized", zap.String("provider", config.EmbeddingProvider()))
	}

	// Services
	consensusSvc := service.NewConsensusService(llmClient, config.DisagreementTolerance(), logger)
	fixerSvc := service.NewFixerService(llmClient, config.RepairThreshold(), logger)
	refineSvc := service.NewRefineService(consensusSvc, fixerSvc, config.QualityGate(), config.MaxRefineAttempts(), logger)
	sourceSvc := service.NewSourceService(sourceStore, embeddingClient, logger)

	consensusSvc.SetAuditSink(auditStore)
	refineSvc.SetAuditSink(auditStore)
	refineSvc.SetBriefStore(briefStore)

	// Handlers
	tenantHandler := handlers.NewTenantHandler(tenantStore)
	briefHandler := handlers.NewBriefHandler(briefStore)
	scoreHandler := handlers.NewScoreHandler(consensusSvc, briefStore)
	refineHandler := handlers.NewRefineHandler(consensusSvc, refineSvc, sourceSvc, briefStore)
	sourceHandler := handlers.NewSourceHandler(sourceSvc)
	auditHandler := handlers.NewAuditHandler(auditStore)

	r := chi.NewRouter()

	app := &App{
		Router:    r,
		startTime: time.Now(),
	}

	metricsCollector := mw.NewMetricsCollector(&app.requestCount, &app.errorCount)

	// Global middleware (order matters)
	r.Use(mw.RequestID)
	r.Use(middleware.RealIP)
	r.Use(metricsCollector.Middleware)
	r.Use(mw.Logging(logger))
	r.Use(middleware.Recoverer)
	r.Use(mw.RateLimit(config.RateLimitRPS(), config.RateLimitBurst()))

	// Health and metrics (no auth)
	r.Get("/health", healthHandler(db))
	r.Get("/metrics", app.metricsHandler())

	// Tenant creation (no auth, bootstrap endpoint)
	r.Post("/v1/tenants", tenantHandler.Create)

	// Authenticated routes
	r.Route("/v1", func(r chi.Router) {
		r.Use(mw.APIKeyAuth(tenantStore))

		r.Route("/briefs", func(r chi.Router) {
			r.Post("/", briefHandler.Create)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", briefHandler.GetByID)
				r.Post("/score", scoreHandler.Score)
				r.Post("/refine", refineHandler.Refine)
				r.Get("/audit", auditHandler.List)
				r.Get("/attempts", auditHandler.ListAttempts)
			})
		})

		r.Post("/sources", sourceHandler.Create)
	})

	return app
}

// NewRouter returns just the chi.Mux.
func NewRouter(db *pgxpool.Pool, logger *zap.Logger) *chi.Mux {
	return NewApp(db, logger).Router
}

func healthHandler(db *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := db.Ping(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]string{"status": "error", "error": err.Error()})
			return
		}
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}

func (app *App) metricsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var memStats runtime.MemStats
		runtime.ReadMemStats(&memStats)

		uptime := time.Since(app.startTime)

		response := map[string]any{
			"uptime_seconds": uptime.Seconds(),
			"uptime_human":   uptime.Round(time.Second).String(),
			"request_count":  app.requestCount.Load(),
			"error_count":    app.errorCount.Load(),
			"goroutines":     runtime.NumGoroutine(),
			"memory": map[string]any{
				"alloc_mb":       float64(memStats.Alloc) / 1024 / 1024,
				"total_alloc_mb": float64(memStats.TotalAlloc) / 1024 / 1024,
				"sys_mb":         float64(memStats.Sys) / 1024 / 1024,
				"num_gc":         memStats.NumGC,
			},
			"go_version": runtime.Version(),
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(response)
	}
}

// Ensure stores and clients satisfy interfaces at compile time.
var (
	_ domain.TenantStore     = (*store.TenantStore)(nil)
	_ domain.BriefStore      = (*store.BriefStore)(nil)
	_ domain.SourceStore     = (*store.SourceStore)(nil)
	_ domain.AuditStore      = (*store.AuditStore)(nil)
	_ domain.AuditSink       = (*store.AuditStore)(nil)
	_ domain.EmbeddingClient = (*embedding.OpenAIClient)(nil)
	_ domain.EmbeddingClient = (*embedding.MockClient)(nil)
	_ domain.EvaluatorClient = (*llm.OpenAIClient)(nil)
	_ domain.EvaluatorClient = (*llm.AnthropicClient)(nil)
	_ domain.EvaluatorClient = (*llm.GeminiClient)(nil)
	_ domain.FixerClient     = (*llm.OpenAIClient)(nil)
	_ domain.FixerClient     = (*llm.AnthropicClient)(nil)
	_ domain.FixerClient     = (*llm.GeminiClient)(nil)
	_ llm.Client             = (*llm.MockClient)(nil)
)
