package worker

import (
	"net/http"
	"time"

	"inventory/src/api/middleware"
	"inventory/src/cache"
	"inventory/src/config"
	"inventory/src/repositories"
	"inventory/src/services"
	"inventory/src/worker/controllers"
	"inventory/src/worker/handlers"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// Server runs the periodic jobs and exposes liveness, metrics and manual
// triggers. The trigger routes are meant for the internal network only.
type Server struct {
	Router     *chi.Mux
	Handler    *handlers.Handler
	Controller *controllers.Controller
	logger     *logrus.Logger
}

func NewServer(cfg *config.Config, store repositories.Store, logger *logrus.Logger) *Server {
	categories := services.NewCategoryService(store)
	assets := services.NewAssetService(store, categories, cache.NewNoopCache(), cfg.Service.PublicBaseURL, nil)
	controller := controllers.NewController(cfg, assets, logger)

	server := &Server{
		Router:     chi.NewRouter(),
		Handler:    handlers.NewHandler(controller),
		Controller: controller,
		logger:     logger,
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

	s.Router.Get("/alive", handlers.Healthcheck)
	s.Router.Handle("/metrics", promhttp.Handler())
	s.Router.Route("/api/jobs", func(r chi.Router) {
		r.Get("/", s.Handler.ListJobs)
		r.Post("/{name}", s.Handler.RunJob)
	})
}

// Start schedules every configured job.
func (s *Server) Start() error {
	return s.Controller.LoadAllJobs()
}

func (s *Server) Stop() {
	s.Controller.StopAll()
}

func NewHTTPServer(server *Server, port string) *http.Server {
	if port == "" {
		port = "8000"
	}
	httpServer := &http.Server{
		Addr:         ":" + port,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 3 * time.Minute,
		Handler:      server,
	}
	return httpServer
}
