package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/rpupo63/melba-site-backend/storage"
)

const (
	// Public forms carry no files.
	maxFormBytes = 1 << 20
	// Admin forms carry one image plus text fields.
	adminFormSlack = 1 << 20
)

func setupSystemRoutes(r chi.Router, handlers *routeHandlers, router router) {
	r.Get("/healthz", handlers.healthHandler.healthz())
	r.Handle("/metrics", metricsHandler(router.registry))
}

// setupPublicRoutes sets up the forms and content read by the public site
func setupPublicRoutes(r chi.Router, handlers *routeHandlers) {
	r.Group(func(r chi.Router) {
		r.Use(limitBody(maxFormBytes))

		for _, s := range handlers.submissions {
			for _, path := range s.paths() {
				r.Post(path, s.handle())
			}
		}
	})

	public := handlers.publicHandler
	r.Get("/api/home", public.home())
	r.Get("/api/blog", public.blog())
	r.Get("/api/blog/{slug}", public.postBySlug(blogPosts))
	r.Get("/api/events", public.events())
	r.Get("/api/events/{slug}", public.postBySlug(eventPosts))
	r.Get("/api/programs", public.allPrograms())
	r.Get("/api/programs/{slug}", public.programBySlug())
}

// setupAdminRoutes sets up login and every session-gated admin endpoint
func setupAdminRoutes(r chi.Router, handlers *routeHandlers, gate sessionGate, policy storage.Policy) {
	r.Route("/admin", func(r chi.Router) {
		r.Use(noStore)

		r.With(limitBody(maxFormBytes)).Post("/login", handlers.authHandler.login())
		r.Get("/logout", handlers.authHandler.logout())
		r.Post("/logout", handlers.authHandler.logout())
		r.Get("/session", handlers.authHandler.session())

		// Authenticated routes
		r.Route("/api", func(r chi.Router) {
			r.Use(gate.authenticate)
			r.Use(limitBody(policy.MaxBytes + adminFormSlack))

			mountPosts(r, "/posts", handlers.blogHandler)
			mountPosts(r, "/events", handlers.eventHandler)

			r.Get("/programs", handlers.programHandler.getAllPrograms())
			r.Get("/programs/{id}", handlers.programHandler.getProgram())
			r.Post("/programs", handlers.programHandler.createProgram())
			r.Put("/programs/{id}", handlers.programHandler.updateProgram())
			r.Delete("/programs/{id}", handlers.programHandler.deleteProgram())

			for _, rec := range handlers.records {
				r.Get(rec.path(), rec.list())
				r.Get(rec.path()+"/{id}", rec.get())
				r.Delete(rec.path()+"/{id}", rec.remove())
			}
		})
	})
}

func mountPosts(r chi.Router, prefix string, h postHandler) {
	r.Get(prefix, h.getAllPosts())
	r.Get(prefix+"/{id}", h.getPost())
	r.Post(prefix, h.createPost())
	r.Put(prefix+"/{id}", h.updatePost())
	r.Delete(prefix+"/{id}", h.deletePost())
}
