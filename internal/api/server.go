// Package api wires the arcade operations HTTP surface: the TPT report
// calculator, issue tracking, game inventory, preventive-maintenance
// logs, settings, and the dashboard helpers (health, weather,
// assistant).
package api

import (
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/arcadeworks/arcade-ops/internal/assistant"
	"github.com/arcadeworks/arcade-ops/internal/config"
	"github.com/arcadeworks/arcade-ops/internal/database"
	"github.com/arcadeworks/arcade-ops/internal/tpt"
	"github.com/arcadeworks/arcade-ops/internal/weather"
)

// Service holds every dependency the handlers need.
type Service struct {
	db        *database.DB
	pipeline  *tpt.Pipeline
	history   *tpt.History
	weather   *weather.Client
	assistant *assistant.Client
	cfg       *config.Config

	healthMu      sync.Mutex
	healthPayload map[string]interface{}
	healthAt      time.Time
}

// NewService creates the handler set.
func NewService(db *database.DB, pipeline *tpt.Pipeline, history *tpt.History, w *weather.Client, a *assistant.Client, cfg *config.Config) *Service {
	return &Service{
		db:        db,
		pipeline:  pipeline,
		history:   history,
		weather:   w,
		assistant: a,
		cfg:       cfg,
	}
}

// Routes configures the router.
func (s *Service) Routes() *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.HandleHealth)
	r.Post("/health/refresh", s.HandleHealthRefresh)
	r.Get("/weather", s.HandleWeather)

	r.Route("/api", func(r chi.Router) {
		r.Route("/tpt", func(r chi.Router) {
			r.Post("/calculate", s.HandleTPTCalculate)
			r.Post("/preview", s.HandleTPTPreview)
			r.Get("/history", s.HandleTPTHistory)
			r.Post("/prune", s.HandleTPTPrune)
		})
		r.Get("/tpt_settings", s.HandleGetTPTSettings)
		r.Post("/tpt_settings", s.HandleSaveTPTSettings)

		r.Route("/issues", func(r chi.Router) {
			r.Get("/", s.HandleListIssues)
			r.Post("/", s.HandleCreateIssue)
			r.Get("/count", s.HandleOpenIssueCount)
			r.Put("/{issueID}", s.HandleUpdateIssue)
			r.Delete("/{issueID}", s.HandleDeleteIssue)
		})
		r.Get("/urgent_issues_count", s.HandleUrgentIssueCount)
		r.Get("/equipment_locations", s.HandleEquipmentLocations)
		r.Get("/dashboard/metrics", s.HandleDashboardMetrics)

		r.Route("/games", func(r chi.Router) {
			r.Get("/", s.HandleListGames)
			r.Post("/", s.HandleCreateGame)
			r.Put("/{gameID}", s.HandleUpdateGame)
			r.Delete("/{gameID}", s.HandleDeleteGame)
		})

		r.Get("/pms", s.HandleListPMs)
		r.Post("/pms/add", s.HandleAddPM)

		r.Post("/ai/ask", s.HandleAssistantAsk)
	})

	return r
}
