package httpApi

import (
	"net/http"

	"github.com/KotFed0t/invest_tracker/config"
	custommiddleware "github.com/KotFed0t/invest_tracker/internal/transport/httpApi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(ctrl *Controller, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(custommiddleware.NewCORS(cfg.HTTP.AllowedOrigins).Handler)

	r.Get("/health", ctrl.Health)
	r.Get("/ws", ctrl.Events)
	r.Get("/search", ctrl.Search)

	r.Route("/portfolios", func(r chi.Router) {
		r.Get("/", ctrl.ListPortfolios)
		r.Post("/", ctrl.CreatePortfolio)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", ctrl.GetPortfolio)
			r.Delete("/", ctrl.DeletePortfolio)
			r.Post("/activate", ctrl.SwitchPortfolio)
			r.Post("/reset", ctrl.ResetPortfolio)
			r.Post("/deposit", ctrl.Deposit)
			r.Post("/withdraw", ctrl.Withdraw)
			r.Post("/buy", ctrl.Buy)
			r.Post("/sell", ctrl.Sell)
			r.Get("/stats", ctrl.Stats)
			r.Get("/transactions", ctrl.Transactions)
			r.Get("/summary", ctrl.Summary)
			r.Get("/report", ctrl.Report)
		})
	})

	r.Route("/watchlist", func(r chi.Router) {
		r.Get("/", ctrl.GetWatchlist)
		r.Post("/", ctrl.AddToWatchlist)
		r.Delete("/", ctrl.RemoveFromWatchlist)
	})

	return r
}
