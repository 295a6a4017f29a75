package api

import (
	"net/http"
	"time"

	"inventory/src/api/handlers"
	"inventory/src/api/middleware"
	"inventory/src/cache"
	"inventory/src/config"
	"inventory/src/repositories"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

type Server struct {
	Router   *chi.Mux
	Handler  *handlers.Handler
	verifier middleware.TokenVerifier
	logger   *logrus.Logger
}

func NewServer(cfg *config.Config, store repositories.Store, cards cache.AssetCardCache, verifier middleware.TokenVerifier, logger *logrus.Logger) *Server {
	server := &Server{
		Router:   chi.NewRouter(),
		Handler:  handlers.NewHandler(cfg, store, cards),
		verifier: verifier,
		logger:   logger,
	}
	server.InitRoutes()
	return server
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}

func (s *Server) InitRoutes() {
	s.Router.Use(middleware.RequestID)
	s.Router.Use(middleware.Logger(s.logger))
	s.Router.Use(chimiddleware.Recoverer)
	s.Router.Use(middleware.Metrics)

	s.Router.Get("/alive", handlers.Healthcheck)
	s.Router.Handle("/metrics", promhttp.Handler())
	s.Router.Get("/public/asset/{id}", s.Handler.GetPublicAsset)

	s.Router.Route("/api", func(r chi.Router) {
		r.Use(middleware.Authenticator(s.verifier))

		r.Route("/assets", func(r chi.Router) {
			r.Get("/", s.Handler.ListAssets)
			r.Post("/", s.Handler.CreateAsset)
			r.Get("/stats", s.Handler.GetAssetStats)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.Handler.GetAsset)
				r.Patch("/", s.Handler.EditAsset)
				r.Delete("/", s.Handler.DeleteAsset)
				r.Get("/assignments", s.Handler.GetAssetAssignments)
				r.Post("/assign", s.Handler.AssignAsset)
				r.Post("/return", s.Handler.ReturnAsset)
				r.Post("/repair", s.Handler.SendAssetToRepair)
				r.Post("/exit-repair", s.Handler.ExitAssetRepair)
				r.Post("/retire", s.Handler.RetireAsset)
				r.Post("/incidents", s.Handler.ReportIncident)
			})
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", s.Handler.GetAllCategories)
			r.Post("/", s.Handler.CreateCategory)
			r.Delete("/{id}", s.Handler.DeleteCategory)
		})

		r.Route("/assignees", func(r chi.Router) {
			r.Get("/", s.Handler.ListAssignees)
			r.Put("/", s.Handler.RenameAssignee)
			r.Delete("/", s.Handler.DeleteAssignee)
		})

		r.Route("/incidents", func(r chi.Router) {
			r.Get("/", s.Handler.ListIncidents)
			r.Get("/{id}", s.Handler.GetIncident)
			r.Put("/{id}/status", s.Handler.UpdateIncidentStatus)
			r.Put("/{id}/assignee", s.Handler.AssignIncident)
		})

		r.Get("/audit", s.Handler.ListAuditEntries)
	})
}

func NewHTTPServer(server *Server, port string) *http.Server {
	if port == "" {
		port = "8000"
	}
	httpServer := &http.Server{
		Addr:         ":" + port,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		Handler:      server,
	}
	return httpServer
}
