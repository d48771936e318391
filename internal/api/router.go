package api

import (
	"encoding/json"
	"net/http"
	"runtime"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/guidedcare/pathway/internal/api/handlers"
	mw "github.com/guidedcare/pathway/internal/api/middleware"
	"github.com/guidedcare/pathway/internal/config"
	"github.com/guidedcare/pathway/internal/domain"
	"github.com/guidedcare/pathway/internal/faq"
	"github.com/guidedcare/pathway/internal/rates"
	"github.com/guidedcare/pathway/internal/scoring"
	"github.com/guidedcare/pathway/internal/service"
	"github.com/guidedcare/pathway/internal/store"
)

// App holds the router and the services main needs for lifecycle
// management (startup indexing and config reloads).
type App struct {
	Router    *chi.Mux
	FAQ       *faq.Service
	startTime time.Time
	metrics   mw.Counters
}

// NewApp wires stores, services and handlers into the HTTP surface.
// rdb may be nil; the journey then runs without a handoff area and
// gating serves projections straight from the stored contracts.
func NewApp(db *pgxpool.Pool, rdb *redis.Client, engine *scoring.Engine, ratesSvc *rates.Service, logger *zap.Logger) *App {
	// Stores
	clientStore := store.NewClientStore(db)
	assessmentStore := store.NewAssessmentStore(db)
	faqStore := store.NewFAQStore(db)

	var handoffStore domain.HandoffStore
	if rdb != nil {
		handoffStore = store.NewHandoffStore(rdb, store.DefaultHandoffTTL)
	} else {
		logger.Warn("no redis configured, running without a handoff area")
	}

	// Services
	faqSvc := faq.NewService(faqStore, config.FAQDir(), logger)
	assessmentSvc := service.NewAssessmentService(assessmentStore, handoffStore, engine, logger)
	gatingSvc := service.NewGatingService(assessmentStore, handoffStore, logger)
	costPlanner := service.NewCostPlanner(ratesSvc, gatingSvc, logger)
	advisorSvc := service.NewAdvisorService(assessmentStore, logger)

	// Handlers
	clientHandler := handlers.NewClientHandler(clientStore)
	assessmentHandler := handlers.NewAssessmentHandler(assessmentSvc, gatingSvc)
	questionnaireHandler := handlers.NewQuestionnaireHandler(engine)
	journeyHandler := handlers.NewJourneyHandler(assessmentSvc, gatingSvc)
	costPlanHandler := handlers.NewCostPlanHandler(costPlanner)
	ratesHandler := handlers.NewRatesHandler(ratesSvc)
	faqHandler := handlers.NewFAQHandler(faqSvc)
	advisorHandler := handlers.NewAdvisorHandler(advisorSvc, engine, ratesSvc, faqSvc, logger)

	r := chi.NewRouter()

	app := &App{
		Router:    r,
		FAQ:       faqSvc,
		startTime: time.Now(),
	}

	// Global middleware (order matters)
	r.Use(mw.RequestID)
	r.Use(middleware.RealIP)
	r.Use(mw.CountRequests(&app.metrics))
	r.Use(mw.Logging(logger))
	r.Use(middleware.Recoverer)
	r.Use(mw.RateLimit(config.RateLimitRPS(), config.RateLimitBurst()))

	// Health (no auth)
	r.Get("/health", healthHandler(db))

	// Metrics (no auth)
	r.Get("/metrics", app.metricsHandler())

	// Client creation (no auth, bootstrap endpoint)
	r.Post("/v1/clients", clientHandler.Create)

	// Authenticated routes
	r.Route("/v1", func(r chi.Router) {
		r.Use(mw.APIKeyAuth(clientStore))

		// Assessments
		r.Route("/assessments", func(r chi.Router) {
			r.Post("/", assessmentHandler.Create)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", assessmentHandler.GetByID)
				r.Put("/answers", assessmentHandler.SaveAnswers)
				r.Post("/complete", assessmentHandler.Complete)
				r.Get("/handoff", assessmentHandler.Handoff)
			})
		})

		// Questionnaire content
		r.Get("/questionnaire", questionnaireHandler.Get)

		// Journey surface
		r.Get("/journey/tiles", journeyHandler.Tiles)

		// Cost planner
		r.Post("/cost-planner/estimate", costPlanHandler.Estimate)

		// Rate lookups
		r.Route("/rates", func(r chi.Router) {
			r.Get("/va", ratesHandler.VA)
			r.Get("/home", ratesHandler.Home)
		})

		// FAQ search
		r.Get("/faq/search", faqHandler.Search)

		// Advisor console and admin (advisor role required)
		r.Group(func(r chi.Router) {
			r.Use(mw.RequireRole(domain.RoleAdvisor))
			r.Get("/advisor/pipeline", advisorHandler.Pipeline)
			r.Post("/admin/reload", advisorHandler.Reload)
		})
	})

	return app
}

func healthHandler(db *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(r.Context()); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]string{"status": "error", "error": err.Error()})
			return
		}

		w.Header().Set("Content-Type", "application/json")
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
			"request_count":  app.metrics.Requests.Load(),
			"error_count":    app.metrics.Errors.Load(),
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

// Ensure stores satisfy their interfaces at compile time.
var (
	_ domain.ClientStore     = (*store.ClientStore)(nil)
	_ domain.AssessmentStore = (*store.AssessmentStore)(nil)
	_ domain.FAQStore        = (*store.FAQStore)(nil)
	_ domain.HandoffStore    = (*store.HandoffStore)(nil)
)
