package handler

import (
	"net/http"
	"time"

	"github.com/boddenberg/buyer-portal-bff-go/internal/domain"
	"github.com/boddenberg/buyer-portal-bff-go/internal/infra/observability"
	"github.com/boddenberg/buyer-portal-bff-go/internal/service"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// RouterDeps bundles everything the router needs.
type RouterDeps struct {
	Auth      *service.AuthService
	Sessions  *service.SessionService
	Company   *service.CompanyService
	Orders    *service.OrdersService
	Quotes    *service.QuotesService
	Invoices  *service.InvoicesService
	Addresses *service.AddressesService

	Metrics        *observability.Metrics
	Logger         *zap.Logger
	AllowedOrigins []string
	RefreshTTL     time.Duration
}

// NewRouter assembles the HTTP surface of the broker.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(deps.Logger))
	r.Use(observability.TracingMiddleware)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Heartbeat("/ping"))
	r.Use(requestDurationMiddleware(deps.Metrics))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	authHandler := NewAuthHandler(deps.Auth, deps.Logger, deps.RefreshTTL)
	companyHandler := NewCompanyHandler(deps.Company, deps.Auth, deps.Logger)
	resourcesHandler := NewResourcesHandler(deps.Orders, deps.Quotes, deps.Invoices, deps.Logger)
	addressesHandler := NewAddressesHandler(deps.Addresses, deps.Logger)
	systemHandler := NewSystemHandler(deps.Metrics)

	requireAuth := RequireAuth(deps.Auth, deps.Sessions)

	// Operational endpoints, outside /v1 and outside auth.
	r.Get("/healthz", systemHandler.Healthz)
	r.Get("/readyz", systemHandler.Readyz)
	r.Handle("/metrics", promhttp.HandlerFor(deps.Metrics.Registry, promhttp.HandlerOpts{}))

	r.Route("/v1", func(r chi.Router) {
		// Public auth surface.
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", authHandler.Login)
			r.Post("/register", authHandler.Register)
			r.Post("/refresh", authHandler.Refresh)
			r.Post("/forgot-password", authHandler.ForgotPassword)
			r.Post("/reset-password", authHandler.ResetPassword)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Post("/logout", authHandler.Logout)
				r.Get("/me", authHandler.Me)
				r.Put("/password", authHandler.ChangePassword)
			})
		})

		// Everything below is authenticated and capability-gated.
		r.Group(func(r chi.Router) {
			r.Use(requireAuth)

			r.Route("/orders", func(r chi.Router) {
				r.Use(RequireCapability(domain.CapViewOrders))
				r.Get("/", resourcesHandler.ListOrders)
				r.Get("/{orderId}", resourcesHandler.GetOrder)
			})

			r.Route("/quotes", func(r chi.Router) {
				r.Use(RequireCapability(domain.CapViewQuotes))
				r.Get("/", resourcesHandler.ListQuotes)
				r.Get("/{quoteId}", resourcesHandler.GetQuote)
			})

			r.Route("/invoices", func(r chi.Router) {
				r.Use(RequireCapability(domain.CapViewInvoices))
				r.Get("/", resourcesHandler.ListInvoices)
				r.Get("/{invoiceId}", resourcesHandler.GetInvoice)
			})

			r.Route("/addresses", func(r chi.Router) {
				r.Get("/", addressesHandler.List)
				r.Get("/{addressId}", addressesHandler.Get)

				r.Group(func(r chi.Router) {
					r.Use(RequireCapability(domain.CapManageAddresses))
					r.Post("/", addressesHandler.Create)
					r.Put("/{addressId}", addressesHandler.Update)
					r.Delete("/{addressId}", addressesHandler.Delete)
				})
			})

			r.Route("/company", func(r chi.Router) {
				r.Get("/", companyHandler.Get)
				r.Get("/hierarchy", companyHandler.Hierarchy)
				r.Get("/dashboard", companyHandler.Dashboard)

				r.With(RequireCapability(domain.CapSwitchCompanies)).
					Post("/switch", companyHandler.Switch)

				r.Route("/users", func(r chi.Router) {
					r.Use(RequireCapability(domain.CapManageUsers))
					r.Get("/", companyHandler.ListUsers)
					r.Put("/{userId}/role", companyHandler.UpdateUserRole)
				})
			})

			r.With(RequireCapability(domain.CapManageUsers)).
				Get("/metrics/session", systemHandler.SessionMetrics)
		})
	})

	return r
}

// requestDurationMiddleware records per-route latency using the chi
// route pattern so path parameters don't explode label cardinality.
func requestDurationMiddleware(metrics *observability.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			pattern := chi.RouteContext(r.Context()).RoutePattern()
			if pattern == "" {
				pattern = "unmatched"
			}
			metrics.RecordRequestDuration(r.Method+" "+pattern, time.Since(start))
		})
	}
}
