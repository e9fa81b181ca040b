package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/melba-site-backend/database"
	"github.com/rpupo63/melba-site-backend/models"
)

const homeItems = 3

// publicHandler serves the read-only content shown on the public site.
type publicHandler struct {
	responder Responder
	logger    zerolog.Logger
	posts     database.Store[models.Post]
	programs  database.Store[models.Program]
	now       func() time.Time
}

func newPublicHandler(posts database.Store[models.Post], programs database.Store[models.Program]) publicHandler {
	logger := log.With().Str("handlerName", "publicHandler").Logger()

	return publicHandler{
		responder: NewResponder(logger),
		logger:    logger,
		posts:     posts,
		programs:  programs,
		now:       time.Now,
	}
}

type homeResponse struct {
	Blogs  []models.Post `json:"blogs"`
	Events []models.Post `json:"events"`
}

func (h publicHandler) latestBlogs(limit int) database.Query {
	q := database.NewestFirst(database.Eq("type", models.PostTypeBlog))
	q.Limit = limit
	return q
}

func (h publicHandler) upcomingEvents(limit int) database.Query {
	return database.Query{
		Where:   []database.Cond{database.Eq("type", models.PostTypeEvent), database.Gte("event_date", h.now())},
		OrderBy: "event_date",
		Limit:   limit,
	}
}

// home returns the latest blog posts and the next upcoming events
// @Summary Home page content
// @Tags Public
// @Produce json
// @Success 200 {object} homeResponse
// @Router /api/home [get]
func (h publicHandler) home() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		blogs, err := h.posts.FindAll(r.Context(), h.latestBlogs(homeItems))
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "blog posts", err))
			return
		}
		events, err := h.posts.FindAll(r.Context(), h.upcomingEvents(homeItems))
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "events", err))
			return
		}
		h.responder.WriteJSON(w, homeResponse{Blogs: blogs, Events: events})
	}
}

// blog lists every blog post, newest first
// @Summary Blog posts
// @Tags Public
// @Produce json
// @Success 200 {array} models.Post
// @Router /api/blog [get]
func (h publicHandler) blog() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		posts, err := h.posts.FindAll(r.Context(), h.latestBlogs(0))
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "blog posts", err))
			return
		}
		h.responder.WriteJSON(w, posts)
	}
}

// events lists upcoming events, soonest first
// @Summary Upcoming events
// @Tags Public
// @Produce json
// @Success 200 {array} models.Post
// @Router /api/events [get]
func (h publicHandler) events() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		events, err := h.posts.FindAll(r.Context(), h.upcomingEvents(0))
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "events", err))
			return
		}
		h.responder.WriteJSON(w, events)
	}
}

// postBySlug returns one blog post or event by slug
// @Summary Blog post or event by slug
// @Tags Public
// @Produce json
// @Param slug path string true "Slug"
// @Success 200 {object} models.Post
// @Failure 404 {object} messageResponse "Not found"
// @Router /api/blog/{slug} [get]
// @Router /api/events/{slug} [get]
func (h publicHandler) postBySlug(kind postKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		post, err := h.posts.FindOne(r.Context(),
			database.Eq("type", kind.postType),
			database.Eq("slug", chi.URLParam(r, "slug")),
		)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", kind.entity, err))
			return
		}
		h.responder.WriteJSON(w, post)
	}
}

// allPrograms lists every program, newest first
// @Summary Programs
// @Tags Public
// @Produce json
// @Success 200 {array} models.Program
// @Router /api/programs [get]
func (h publicHandler) allPrograms() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		programs, err := h.programs.FindAll(r.Context(), database.NewestFirst())
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "programs", err))
			return
		}
		h.responder.WriteJSON(w, programs)
	}
}

// programBySlug returns one program by slug
// @Summary Program by slug
// @Tags Public
// @Produce json
// @Param slug path string true "Slug"
// @Success 200 {object} models.Program
// @Failure 404 {object} messageResponse "Program not found"
// @Router /api/programs/{slug} [get]
func (h publicHandler) programBySlug() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		program, err := h.programs.FindOne(r.Context(), database.Eq("slug", chi.URLParam(r, "slug")))
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "program", err))
			return
		}
		h.responder.WriteJSON(w, program)
	}
}
