package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"circlecrates/internal/api/handlers"
	"circlecrates/internal/api/response"
)

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	// Health check endpoint (no versioning)
	s.router.Get("/health", s.healthCheck)

	// API v1 routes
	s.router.Route("/api/v1", func(r chi.Router) {
		// User routes
		userHandler := handlers.NewUserHandler(s.engine)
		crateHandler := handlers.NewCrateHandler(s.engine)
		r.Route("/users/{userID}", func(r chi.Router) {
			r.Get("/", userHandler.GetProfile)
			r.Get("/cards", userHandler.GetCards)
			r.Get("/cards/{cardID}", userHandler.GetCard)
			r.Post("/cards/{cardID}/favorite", userHandler.ToggleFavorite)
			r.Put("/settings", userHandler.UpdateSettings)
			r.Post("/daily", userHandler.ClaimDaily)
			r.Post("/crates/buy", crateHandler.BuyCrates)
			r.Post("/crates/open", crateHandler.Open)
		})

		// Crate catalog and simulation
		r.Route("/crates", func(r chi.Router) {
			r.Get("/", crateHandler.ListCrates)
			r.Get("/{crateKey}/simulate", crateHandler.Simulate)
		})

		// Leaderboard routes
		leaderboardHandler := handlers.NewLeaderboardHandler(s.engine)
		r.Route("/leaderboard", func(r chi.Router) {
			r.Get("/", leaderboardHandler.Top)
			r.Get("/search", leaderboardHandler.Search)
		})

		// Game table routes
		gamedataHandler := handlers.NewGamedataHandler(s.engine)
		r.Route("/gamedata", func(r chi.Router) {
			r.Get("/mutations", gamedataHandler.Mutations)
			r.Get("/flashbacks", gamedataHandler.Flashbacks)
			r.Get("/achievements", gamedataHandler.Achievements)
		})

		// System routes
		systemHandler := handlers.NewSystemHandler(s.engine)
		r.Route("/system", func(r chi.Router) {
			r.Get("/status", systemHandler.GetStatus)
			r.Get("/version", systemHandler.GetVersion)
		})

		// Admin routes, gated on the X-Actor-ID header
		adminHandler := handlers.NewAdminHandler(s.engine, s.users, s.db)
		r.Route("/admin", func(r chi.Router) {
			r.Post("/users/{userID}/crates", adminHandler.GiveCrates)
			r.Post("/users/{userID}/cards", adminHandler.GiveCard)
			r.Delete("/users/{userID}", adminHandler.WipeUser)
			r.Get("/stats", adminHandler.StoreStats)
			r.Get("/backup", adminHandler.ExportBackup)
			r.Post("/backup", adminHandler.ImportBackup)
		})
	})
}

// healthCheck returns server health status.
func (s *Server) healthCheck(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"service": "circlecrates-api",
	})
}
