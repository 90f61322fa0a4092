package handlers

import (
	"net/http"

	"casino/internal/middleware"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func (h *Handler) Routes() http.Handler {
	router := chi.NewRouter()
	router.Use(chimiddleware.Logger)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{h.cfg.AllowedOrigins},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	router.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
		r.With(middleware.Auth(h.cfg.JWTSecret)).Get("/me", h.Me)
	})
	router.With(middleware.Auth(h.cfg.JWTSecret)).Post("/ledger/balance", h.AdjustBalance)
	router.With(middleware.Auth(h.cfg.JWTSecret)).Post("/ledger/wager", h.PlaceWager)
	router.With(middleware.Auth(h.cfg.JWTSecret)).Post("/ledger/bonus", h.ClaimDailyBonus)
	router.With(middleware.Auth(h.cfg.JWTSecret)).Get("/ledger/wagers", h.ListWagers)
	router.With(middleware.Auth(h.cfg.JWTSecret)).Put("/profile/currency", h.SetCurrency)
	router.Get("/ws/updates", h.WSUpdates)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return router
}
