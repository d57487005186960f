package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ndewijer/stock-tracker/internal/api/handlers"
	custommiddleware "github.com/ndewijer/stock-tracker/internal/api/middleware"
	"github.com/ndewijer/stock-tracker/internal/config"
	"github.com/ndewijer/stock-tracker/internal/service"
)

// NewRouter creates and configures the HTTP router
func NewRouter(
	systemService *service.SystemService,
	userService *service.UserService,
	stockService *service.StockService,
	transactionService *service.TransactionService,
	cfg *config.Config,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	systemHandler := handlers.NewSystemHandler(systemService)
	userHandler := handlers.NewUserHandler(userService)
	stockHandler := handlers.NewStockHandler(stockService)
	transactionHandler := handlers.NewTransactionHandler(transactionService)

	r.Route("/api", func(r chi.Router) {
		r.Route("/system", func(r chi.Router) {
			r.Get("/health", systemHandler.Health)
			r.Get("/version", systemHandler.Version)
		})

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", userHandler.Register)
			r.Post("/login", userHandler.Login)
		})

		// Everything below requires a session
		r.Group(func(r chi.Router) {
			r.Use(custommiddleware.RequireSession(userService))

			r.Get("/account", userHandler.Account)
			r.Delete("/account", userHandler.DeleteAccount)

			r.Get("/portfolio", stockHandler.PortfolioSummary)

			r.Route("/stock", func(r chi.Router) {
				r.Get("/", stockHandler.Stocks)
				r.Post("/", stockHandler.CreateStock)

				r.Route("/{uuid}", func(r chi.Router) {
					r.Use(custommiddleware.ValidateUUIDMiddleware)
					r.Get("/", stockHandler.StockSummary)
					r.Delete("/", stockHandler.DeleteStock)
					r.Get("/transaction", transactionHandler.StockTransactions)
					r.Post("/transaction", transactionHandler.CreateTransaction)
				})
			})

			r.Route("/transaction/{uuid}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateUUIDMiddleware)
				r.Get("/", transactionHandler.GetTransaction)
				r.Put("/", transactionHandler.UpdateTransaction)
				r.Delete("/", transactionHandler.DeleteTransaction)
			})
		})
	})

	return r
}
