package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/zavul0nn/STEALTHNET-Admin-Panel-sub000/internal/infra/logging"
	"github.com/zavul0nn/STEALTHNET-Admin-Panel-sub000/internal/usecase"
)

// Server wires the checkout, status and webhook routes to the engine.
type Server struct {
	checkout   usecase.CheckoutUseCase
	settle     usecase.SettlementUseCase
	status     usecase.StatusUseCase
	auth       *AuthManager
	adminToken string
	log        *zerolog.Logger
}

func NewServer(checkout usecase.CheckoutUseCase, settle usecase.SettlementUseCase, status usecase.StatusUseCase, auth *AuthManager, adminToken string, logger *zerolog.Logger) *Server {
	l := logger.With().Str("component", "web").Logger()
	return &Server{checkout: checkout, settle: settle, status: status, auth: auth, adminToken: adminToken, log: &l}
}

// Router builds the HTTP surface: one webhook route per provider under
// /webhook/{provider}, the authenticated checkout API, health, metrics.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(traceMiddleware)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Group(func(r chi.Router) {
		r.Use(staticBearer(s.adminToken))
		r.Handle("/metrics", promhttp.Handler())
	})

	r.Post("/webhook/{provider}", s.handleWebhook)

	r.Group(func(r chi.Router) {
		r.Use(s.auth.Middleware)
		r.Post("/api/v1/orders", s.handleCreateOrder)
		r.Get("/api/v1/promo/{code}", s.handlePreviewPromo)
		r.Get("/api/v1/subscription", s.handleSubscription)
	})

	return r
}

// staticBearer guards ops routes with a fixed token. An empty token
// leaves the route open, for scrapers on a trusted network.
func staticBearer(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token != "" && r.Header.Get("Authorization") != "Bearer "+token {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// traceMiddleware tags every request context with a trace id so log
// lines emitted while handling it can be correlated.
func traceMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := logging.WithTraceID(r.Context(), uuid.NewString())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
