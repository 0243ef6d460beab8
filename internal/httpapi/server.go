// Package httpapi wires the HTTP surface of the wallet ledger service.
// Handlers stay thin and delegate business rules to the service layer.
package httpapi

import (
	"log/slog"
	"net/http"

	chi "github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/spendware/walletd/internal/identity"
	"github.com/spendware/walletd/internal/media"
	"github.com/spendware/walletd/internal/query"
	ledgersvc "github.com/spendware/walletd/internal/service/ledger"
	walletsvc "github.com/spendware/walletd/internal/service/wallet"
)

// Config carries the collaborators the server is built from. Verifier,
// Provider and Uploader are optional; endpoints needing a missing one answer
// accordingly (dev header auth, 503 for registration/upload).
type Config struct {
	Store    Store
	Verifier identity.Verifier
	Provider identity.Provider
	Uploader media.Uploader
	Logger   *slog.Logger
	Currency string
}

// Server wires handlers and middleware using chi.
type Server struct {
	ledger   ledgersvc.Service
	wallets  walletsvc.Service
	queries  *query.Service
	store    Store
	users    UserStore
	verifier identity.Verifier
	provider identity.Provider
	uploader media.Uploader
	log      *slog.Logger
	currency string
	rt       *chi.Mux
}

// New constructs the HTTP server with routes and middleware.
func New(cfg Config) *Server {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-User-ID"},
		MaxAge:         300,
	}))
	r.Use(requestLogger(cfg.Logger))
	r.Use(recoverer(cfg.Logger))
	r.Use(metricsMiddleware)

	var watcher query.Watcher
	if w, ok := cfg.Store.(query.Watcher); ok {
		watcher = w
	}
	var users UserStore
	if u, ok := cfg.Store.(UserStore); ok {
		users = u
	}

	s := &Server{
		ledger:   ledgersvc.New(cfg.Store, cfg.Store),
		wallets:  walletsvc.New(cfg.Store, cfg.Store, cfg.Currency),
		queries:  query.New(cfg.Store, watcher, cfg.Currency),
		store:    cfg.Store,
		users:    users,
		verifier: cfg.Verifier,
		provider: cfg.Provider,
		uploader: cfg.Uploader,
		log:      cfg.Logger,
		currency: cfg.Currency,
		rt:       r,
	}
	s.routes()
	return s
}

// Handler exposes the configured http.Handler.
func (s *Server) Handler() http.Handler { return s.rt }

// routes declares the public HTTP API endpoints and attaches per-route
// middleware. Everything under /v1 except registration requires a verified
// owner.
func (s *Server) routes() {
	s.rt.Route("/v1", func(r chi.Router) {
		r.Post("/register", s.register)
		r.Get("/categories", s.listCategories)

		r.Group(func(r chi.Router) {
			r.Use(s.requireOwner)
			// Wallets
			r.Post("/wallets", s.postWallet)
			r.Get("/wallets", s.listWallets)
			r.Get("/wallets/{id}", s.getWallet)
			r.Patch("/wallets/{id}", s.patchWallet)
			r.Delete("/wallets/{id}", s.deleteWallet)
			r.Post("/wallets/{id}/recompute", s.recomputeWallet)
			r.Get("/wallets/watch", s.watchWallets)
			// Transactions
			r.With(s.validatePostTransaction()).Post("/transactions", s.postTransaction)
			r.With(s.validateListTransactions()).Get("/transactions", s.listTransactions)
			r.Get("/transactions/watch", s.watchTransactions)
			r.Get("/transactions/{id}", s.getTransaction)
			r.Patch("/transactions/{id}", s.patchTransaction)
			r.Delete("/transactions/{id}", s.deleteTransaction)
			// Statistics
			r.Get("/stats/weekly", s.statsWeekly)
			r.Get("/stats/monthly", s.statsMonthly)
			r.Get("/stats/yearly", s.statsYearly)
			// Media + profile
			r.Post("/images", s.postImage)
			r.Get("/me", s.getProfile)
			r.Patch("/me", s.patchProfile)
		})
	})
	// Health and metrics (unversioned, unauthenticated)
	s.rt.Get("/healthz", s.healthz)
	s.rt.Get("/readyz", s.readyz)
	s.rt.Method(http.MethodGet, "/metrics", metricsHandler())
}
