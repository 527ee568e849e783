package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/splitledger/splitledger/internal/adapter/http/handler"
	"github.com/splitledger/splitledger/internal/adapter/http/middleware"
	"github.com/splitledger/splitledger/internal/infrastructure/auth"
	"github.com/splitledger/splitledger/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	AuthHandler    *handler.AuthHandler
	GroupHandler   *handler.GroupHandler
	ExpenseHandler *handler.ExpenseHandler
	PaymentHandler *handler.PaymentHandler
	BalanceHandler *handler.BalanceHandler
	InviteHandler  *handler.InviteHandler
	EventsHandler  *handler.EventsHandler
	HealthHandler  *handler.HealthHandler

	JWTManager       *auth.JWTManager
	IdempotencyStore usecase.IdempotencyStore
	Logging          *middleware.LoggingMiddleware
	Metrics          *middleware.MetricsMiddleware
	RateLimiter      *middleware.RateLimiter
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	if cfg.Logging != nil {
		r.Use(cfg.Logging.Wrap)
	}
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Wrap)
	}
	r.Use(middleware.Recovery)
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	// Operational endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/register", cfg.AuthHandler.Register)
		r.Post("/auth/login", cfg.AuthHandler.Login)

		// Invite previews need no account yet.
		r.Get("/invites/{key}", cfg.InviteHandler.Resolve)

		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(cfg.JWTManager))

			// Idempotency middleware for mutating requests
			if cfg.IdempotencyStore != nil {
				idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore)
				r.Use(idempotencyMiddleware.Wrap)
			}

			r.Get("/me", cfg.AuthHandler.Me)
			r.Patch("/me", cfg.AuthHandler.UpdateMe)

			r.Post("/invites/{key}/accept", cfg.InviteHandler.Accept)

			r.Route("/groups", func(r chi.Router) {
				r.Post("/", cfg.GroupHandler.Create)
				r.Get("/", cfg.GroupHandler.List)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", cfg.GroupHandler.Get)
					r.Delete("/", cfg.GroupHandler.Delete)

					r.Post("/members", cfg.GroupHandler.AddMember)
					r.Delete("/members/{userID}", cfg.GroupHandler.RemoveMember)

					r.Post("/expenses", cfg.ExpenseHandler.Create)
					r.Get("/expenses", cfg.ExpenseHandler.List)

					r.Post("/payments", cfg.PaymentHandler.Create)
					r.Get("/payments", cfg.PaymentHandler.List)

					r.Get("/balances", cfg.BalanceHandler.Balances)
					r.Get("/debts", cfg.BalanceHandler.Debts)
					r.Get("/settlements", cfg.BalanceHandler.Settlements)
					r.Get("/summary", cfg.BalanceHandler.Summary)
					r.Get("/consistency", cfg.BalanceHandler.Consistency)

					r.Post("/invites", cfg.InviteHandler.Create)
					r.Get("/invites", cfg.InviteHandler.List)

					r.Get("/events", cfg.EventsHandler.Stream)
				})
			})

			r.Route("/expenses/{id}", func(r chi.Router) {
				r.Get("/", cfg.ExpenseHandler.Get)
				r.Put("/", cfg.ExpenseHandler.Update)
				r.Delete("/", cfg.ExpenseHandler.Delete)
			})

			r.Route("/payments/{id}", func(r chi.Router) {
				r.Get("/", cfg.PaymentHandler.Get)
				r.Delete("/", cfg.PaymentHandler.Delete)
			})
		})
	})

	return r
}
