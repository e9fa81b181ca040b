package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/melba-site-backend/database"
)

// recordRoute is the read and delete surface for one kind of submission.
type recordRoute interface {
	path() string
	list() http.HandlerFunc
	get() http.HandlerFunc
	remove() http.HandlerFunc
}

type recordsHandler[T any] struct {
	prefix    string
	label     string
	store     database.Store[T]
	responder Responder
	logger    zerolog.Logger
}

func newRecordsHandler[T any](prefix, label string, store database.Store[T]) recordsHandler[T] {
	logger := log.With().Str("handlerName", "recordsHandler").Str("records", prefix).Logger()
	return recordsHandler[T]{
		prefix:    prefix,
		label:     label,
		store:     store,
		responder: NewResponder(logger),
		logger:    logger,
	}
}

func (h recordsHandler[T]) path() string {
	return h.prefix
}

func (h recordsHandler[T]) entity() string {
	return strings.ToLower(h.label)
}

// list returns every record, newest first
// @Summary List submissions
// @Tags Admin
// @Produce json
// @Success 200 {array} object
// @Failure 500 {object} messageResponse "Internal Server Error"
// @Router /admin/api/applications/{kind} [get]
func (h recordsHandler[T]) list() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		recs, err := h.store.FindAll(r.Context(), database.NewestFirst())
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", h.entity()+"s", err))
			return
		}
		h.responder.WriteJSON(w, recs)
	}
}

// get returns one record
// @Summary Get submission
// @Tags Admin
// @Produce json
// @Param id path string true "Record ID" format(uuid)
// @Success 200 {object} object
// @Failure 400 {object} messageResponse "Invalid ID format"
// @Failure 404 {object} messageResponse "Not found"
// @Router /admin/api/applications/{kind}/{id} [get]
func (h recordsHandler[T]) get() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, err := h.store.FindByID(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", h.entity(), err))
			return
		}
		h.responder.WriteJSON(w, rec)
	}
}

// remove deletes one record
// @Summary Delete submission
// @Tags Admin
// @Produce json
// @Param id path string true "Record ID" format(uuid)
// @Success 200 {object} messageResponse
// @Failure 400 {object} messageResponse "Invalid ID format"
// @Failure 404 {object} messageResponse "Not found"
// @Router /admin/api/applications/{kind}/{id} [delete]
func (h recordsHandler[T]) remove() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if _, err := h.store.Delete(r.Context(), id); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("delete", h.entity(), err))
			return
		}
		logger := auditLogger(r, h.logger)
		logger.Info().Str("id", id).Msg("record deleted")
		h.responder.WriteSuccess(w, http.StatusOK, h.label+" deleted successfully", nil)
	}
}

func newRecordRoutes(db database.Database) []recordRoute {
	return []recordRoute{
		newRecordsHandler("/subscribers", "Subscriber", db.Subscribers()),
		newRecordsHandler("/contact-forms", "Contact form", db.Contacts()),
		newRecordsHandler("/applications/volunteer", "Volunteer application", db.Volunteers()),
		newRecordsHandler("/applications/enrollment", "Enrollment application", db.Enrollments()),
		newRecordsHandler("/applications/tutor", "Tutor application", db.Tutors()),
		newRecordsHandler("/applications/career/apply", "Internship application", db.Careers()),
		newRecordsHandler("/applications/career/fund-internships", "Funding inquiry", db.FundInquiries()),
		newRecordsHandler("/applications/career/partner", "Partnership inquiry", db.Partners()),
		newRecordsHandler("/applications/sports/join-team", "Team registration", db.JoinTeam()),
		newRecordsHandler("/applications/bootcamp", "Bootcamp registration", db.Bootcamp()),
	}
}
