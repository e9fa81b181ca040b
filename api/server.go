package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/melba-site-backend/config"
	"github.com/rpupo63/melba-site-backend/database"
	"github.com/rpupo63/melba-site-backend/services"
	"github.com/rpupo63/melba-site-backend/sessions"
	"github.com/rpupo63/melba-site-backend/storage"
)

// Notifier sends submission notifications in the background and can be
// drained on shutdown.
type Notifier interface {
	Dispatch(n services.Notification)
	Wait(ctx context.Context) error
}

// Dependencies are the backing services the router is built on.
type Dependencies struct {
	Database    database.Database
	Notifier    Notifier
	Sessions    sessions.Store
	Credentials sessions.Credentials
	Uploads     storage.Store
}

type Server struct {
	*http.Server
	startupTime time.Time
	notifier    Notifier
}

func NewServer(settings config.Settings, deps Dependencies) (Server, error) {
	if deps.Notifier == nil || deps.Sessions == nil || deps.Uploads == nil {
		return Server{}, fmt.Errorf("new server: notifier, sessions and uploads are required")
	}

	address := fmt.Sprintf("0.0.0.0:%s", settings.Port) // Bind to 0.0.0.0 for external access

	// Capture startup time
	startupTime := time.Now()

	router := newRouter(deps,
		withSettings(settings),
		withStartupTime(startupTime),
		withUploadPolicy(uploadPolicy(settings.Upload)),
	)

	server := &http.Server{
		Addr:         address,
		Handler:      router,
		ReadTimeout:  settings.ReadTimeout,  // Timeout for reading the entire request
		WriteTimeout: settings.WriteTimeout, // Timeout for writing the response
		IdleTimeout:  settings.IdleTimeout,  // Timeout for idle connections
	}

	return Server{server, startupTime, deps.Notifier}, nil
}

type router struct {
	settings    config.Settings
	startupTime time.Time
	registry    *prometheus.Registry
	policy      storage.Policy
}

func withSettings(s config.Settings) func(*router) {
	return func(r *router) {
		r.settings = s
	}
}

func withStartupTime(startupTime time.Time) func(*router) {
	return func(r *router) {
		r.startupTime = startupTime
	}
}

func withUploadPolicy(p storage.Policy) func(*router) {
	return func(r *router) {
		r.policy = p
	}
}

func uploadPolicy(s config.UploadSettings) storage.Policy {
	policy := storage.DefaultPolicy()
	if s.MaxBytes > 0 {
		policy.MaxBytes = s.MaxBytes
	}
	return policy
}

func newRouter(deps Dependencies, opts ...func(*router)) *chi.Mux {
	router := router{
		startupTime: time.Now(),
		policy:      storage.DefaultPolicy(),
		registry:    prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(&router)
	}
	router.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	chiRouter := chi.NewRouter()
	chiRouter.Use(LogInternalServerErrors)
	chiRouter.Use(RequestLoggingMiddleware)

	// Apply CORS middleware
	acceptedOrigins := router.settings.AcceptedOrigins
	chiRouter.Use(CORSCheckMiddleware(acceptedOrigins))
	chiRouter.Use(cors.Handler(cors.Options{
		AllowedOrigins:   acceptedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	handlers := initializeHandlers(deps, router)
	setupSystemRoutes(chiRouter, handlers, router)
	setupPublicRoutes(chiRouter, handlers)
	setupAdminRoutes(chiRouter, handlers, newSessionGate(deps.Sessions), router.policy)

	return chiRouter
}

func (s Server) Start(errChannel chan<- error) {
	log.Info().Msgf("Server started on: %s", s.Addr)
	errChannel <- s.ListenAndServe()
}

// ShutdownGracefully stops accepting requests, then waits for notifications
// that are still being delivered.
func (s Server) ShutdownGracefully(timeout time.Duration) {
	log.Info().Msg("Gracefully shutting down...")

	gracefullCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.Shutdown(gracefullCtx); err != nil {
		log.Error().Msgf("Error shutting down the server: %v", err)
	} else {
		log.Info().Msg("HttpServer gracefully shut down")
	}

	if err := s.notifier.Wait(gracefullCtx); err != nil {
		log.Warn().Err(err).Msg("Pending notifications abandoned")
	} else {
		log.Info().Msg("Notifications drained")
	}
}
