package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/iho/opsledger/internal/adapter/http/handler"
	"github.com/iho/opsledger/internal/adapter/http/middleware"
	"github.com/iho/opsledger/internal/domain"
	"github.com/iho/opsledger/internal/infrastructure/auth"
	"github.com/iho/opsledger/internal/infrastructure/metrics"
	"github.com/iho/opsledger/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	ApprovalHandler       *handler.ApprovalHandler
	EntryHandler          *handler.EntryHandler
	VendorPaymentHandler  *handler.VendorPaymentHandler
	LiabilityHandler      *handler.LiabilityHandler
	SalaryHandler         *handler.SalaryHandler
	ReconciliationHandler *handler.ReconciliationHandler
	HealthHandler         *handler.HealthHandler

	// JWTManager enables bearer-token authentication. When nil the actor is
	// read from trusted identity headers.
	JWTManager *auth.JWTManager

	IdempotencyStore usecase.IdempotencyStore
	IdempotencyTTL   time.Duration
	RateLimiter      *middleware.RateLimiter

	Metrics        *metrics.Metrics
	MetricsHandler http.Handler
	Logger         zerolog.Logger
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestContext)
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.RequestLogger(cfg.Logger))
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		if cfg.JWTManager != nil {
			r.Use(middleware.AuthMiddleware(cfg.JWTManager, cfg.Metrics))
		} else {
			r.Use(middleware.HeaderActor)
		}
		r.Use(middleware.RequireRole(domain.RoleViewer))

		// Idempotency keys are scoped to the actor, so this runs after auth.
		if cfg.IdempotencyStore != nil {
			ttl := cfg.IdempotencyTTL
			if ttl <= 0 {
				ttl = usecase.IdempotencyKeyTTL
			}
			r.Use(middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, ttl, cfg.Logger).Wrap)
		}

		mutate := middleware.RequireRole(domain.RoleOperator)

		r.Get("/approvers", cfg.ApprovalHandler.Approvers)

		r.Route("/approvals", func(r chi.Router) {
			r.With(mutate).Post("/", cfg.ApprovalHandler.Create)
			r.Get("/", cfg.ApprovalHandler.List)
			r.Get("/stale-holds", cfg.ApprovalHandler.StaleHolds)
			r.Get("/{id}", cfg.ApprovalHandler.Get)
			r.Post("/{id}/decision", cfg.ApprovalHandler.Decide)
		})

		r.Route("/entries", func(r chi.Router) {
			r.Get("/", cfg.EntryHandler.List)
			r.Get("/{id}", cfg.EntryHandler.Get)

			r.Group(func(r chi.Router) {
				r.Use(mutate)
				r.Post("/", cfg.EntryHandler.Create)
				r.Put("/{id}", cfg.EntryHandler.UpdateDraft)
				r.Post("/{id}/post", cfg.EntryHandler.Post)
				r.Post("/{id}/complete", cfg.EntryHandler.Complete)
				r.Post("/{id}/cancel", cfg.EntryHandler.Cancel)
			})
		})

		r.Route("/vendor-payments", func(r chi.Router) {
			r.Get("/", cfg.VendorPaymentHandler.List)
			r.Get("/{id}", cfg.VendorPaymentHandler.Get)
			r.With(mutate).Post("/", cfg.VendorPaymentHandler.Create)
			r.With(mutate).Patch("/{id}/conversion", cfg.VendorPaymentHandler.UpdateConversion)
		})

		r.Route("/liabilities", func(r chi.Router) {
			r.Get("/", cfg.LiabilityHandler.List)
			r.Get("/{id}", cfg.LiabilityHandler.Get)
			r.With(mutate).Post("/", cfg.LiabilityHandler.Create)
		})

		r.Route("/salaries", func(r chi.Router) {
			r.Get("/", cfg.SalaryHandler.List)
			r.Get("/{id}", cfg.SalaryHandler.Get)

			r.Group(func(r chi.Router) {
				r.Use(mutate)
				r.Post("/", cfg.SalaryHandler.Create)
				r.Put("/{id}/components", cfg.SalaryHandler.UpdateComponents)
				r.Post("/{id}/in-process", cfg.SalaryHandler.MarkInProcess)
			})
		})

		r.Route("/reconciliation", func(r chi.Router) {
			r.Use(mutate)
			r.Get("/report", cfg.ReconciliationHandler.Report)
			r.Get("/vendor-payments/{id}", cfg.ReconciliationHandler.VendorPayment)
			r.Get("/liabilities/{id}", cfg.ReconciliationHandler.Liability)
			r.Get("/salaries/{id}", cfg.ReconciliationHandler.Salary)
		})
	})

	return r
}
