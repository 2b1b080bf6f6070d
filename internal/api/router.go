// internal/api/router.go
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"fundpool-ledger/internal/api/handler"
)

// NewRouter sets up and returns a new HTTP router.
func NewRouter(
	walletHandler *handler.WalletHandler,
	groupHandler *handler.GroupHandler,
	eventHandler *handler.EventHandler,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middlewares
	r.Use(middleware.RequestID)                       // Add a request ID to the context
	r.Use(middleware.RealIP)                          // Use the real IP address
	r.Use(middleware.Logger)                          // Log HTTP requests
	r.Use(middleware.Recoverer)                       // Recover from panics and return 500
	r.Use(middleware.Timeout(handler.DefaultTimeout)) // Set a default timeout for requests

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	// User routes
	r.Route("/users", func(r chi.Router) {
		r.Post("/", walletHandler.CreateUser)
		r.Get("/{userID}/wallet", walletHandler.GetUserWallet)
	})

	// Wallet and ledger routes
	r.Route("/wallets", func(r chi.Router) {
		r.Post("/{walletID}/credit", walletHandler.Credit)
		r.Post("/{walletID}/debit", walletHandler.Debit)
		r.Get("/{walletID}/balance", walletHandler.GetWalletBalance)
		r.Get("/{walletID}/entries", walletHandler.GetLedgerHistory)
		r.Get("/{walletID}/audit", walletHandler.AuditWallet)
	})

	// Approval event routes
	r.Route("/events", func(r chi.Router) {
		r.Post("/", eventHandler.CreateEvent)
		r.Get("/{eventID}", eventHandler.GetEvent)
		r.Post("/{eventID}/decide", eventHandler.DecideEvent)
		r.Post("/{eventID}/settle", eventHandler.SettleEvent)
		r.Post("/{eventID}/admin-record", eventHandler.RecordAdminEntry)
	})

	// Group routes
	r.Route("/groups", func(r chi.Router) {
		r.Get("/", groupHandler.ListGroups)
		r.Post("/{groupID}/join", groupHandler.Join)
		r.Get("/{groupID}/memberships/{userID}/return", groupHandler.MembershipReturn)
	})

	// Admin accounting book is a separate top-level read surface
	r.Get("/admin-books/{userID}", eventHandler.GetAdminBook)

	return r
}
