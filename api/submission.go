package api

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/melba-site-backend/database"
	"github.com/rpupo63/melba-site-backend/errs"
	"github.com/rpupo63/melba-site-backend/models"
	"github.com/rpupo63/melba-site-backend/services"
	"github.com/rpupo63/melba-site-backend/validation"
)

type notifier interface {
	Dispatch(n services.Notification)
}

// submissionDeps are shared by every public form.
type submissionDeps struct {
	validator   *validation.Validator
	notifier    notifier
	metrics     *submissionMetrics
	acknowledge bool
}

type submissionRoute interface {
	paths() []string
	handle() http.HandlerFunc
}

// submission runs one public form: decode, validate, persist, notify,
// respond. The response only ever reflects the persistence outcome.
type submission[T any, PT interface {
	*T
	models.Submission
}] struct {
	kind      kindSpec
	store     database.Store[T]
	deps      submissionDeps
	responder Responder
	logger    zerolog.Logger
}

func newSubmission[T any, PT interface {
	*T
	models.Submission
}](kind kindSpec, store database.Store[T], deps submissionDeps) submission[T, PT] {
	logger := log.With().Str("handlerName", "submission").Str("kind", kind.key).Logger()
	return submission[T, PT]{
		kind:      kind,
		store:     store,
		deps:      deps,
		responder: NewResponder(logger),
		logger:    logger,
	}
}

func (s submission[T, PT]) paths() []string {
	return s.kind.routes
}

// handle accepts a public form submission
// @Summary Submit a public form
// @Accept json,x-www-form-urlencoded,multipart/form-data
// @Produce json
// @Success 200 {object} messageResponse
// @Failure 400 {object} messageResponse "Validation error or malformed body"
// @Failure 500 {object} messageResponse "Persistence fault"
func (s submission[T, PT]) handle() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var rec T
		p := PT(&rec)

		if err := decodeBody(r, p); err != nil {
			s.deps.metrics.inc(s.kind.key, outcomeMalformed)
			s.reject(w, r, err)
			return
		}
		p.ClearIdentity()

		if err := s.deps.validator.Check(p, s.kind.messages); err != nil {
			s.deps.metrics.inc(s.kind.key, outcomeInvalid)
			s.reject(w, r, err)
			return
		}

		if s.kind.idempotent {
			_, err := s.store.FindOne(r.Context(), database.Eq("email", p.SubmitterEmail()))
			switch {
			case err == nil:
				s.alreadyStored(w, r)
				return
			case !errs.IsNotFound(err):
				s.fail(w, r, err)
				return
			}
		}

		if err := s.store.Create(r.Context(), &rec); err != nil {
			switch {
			case errs.IsDuplicateKey(err) && s.kind.idempotent:
				s.alreadyStored(w, r)
			case errs.IsDuplicateKey(err):
				s.deps.metrics.inc(s.kind.key, outcomeInvalid)
				s.reject(w, r, wrapDatabaseError("create", s.kind.label, err))
			default:
				s.fail(w, r, err)
			}
			return
		}

		s.deps.metrics.inc(s.kind.key, outcomeAccepted)
		s.logger.Info().Str("id", p.PrimaryKey().String()).Msg("submission saved")

		s.deps.notifier.Dispatch(services.Notification{
			Kind:        s.kind.key,
			Label:       s.kind.label,
			Name:        p.SubmitterName(),
			Email:       p.SubmitterEmail(),
			Fields:      models.Summarize(p),
			Acknowledge: s.deps.acknowledge && s.kind.acknowledge,
			Submitted:   time.Now(),
		})
		s.accept(w, r)
	}
}

// alreadyStored answers exactly like a fresh success so the caller cannot
// tell whether the record existed. Nothing is written or sent.
func (s submission[T, PT]) alreadyStored(w http.ResponseWriter, r *http.Request) {
	s.deps.metrics.inc(s.kind.key, outcomeDuplicate)
	s.accept(w, r)
}

func (s submission[T, PT]) redirects(r *http.Request) bool {
	return s.kind.redirect != "" && !wantsJSON(r)
}

func (s submission[T, PT]) accept(w http.ResponseWriter, r *http.Request) {
	if s.redirects(r) {
		http.Redirect(w, r, s.kind.redirect+"?success=1", http.StatusSeeOther)
		return
	}
	s.responder.WriteSuccess(w, s.kind.status, s.kind.success, nil)
}

func (s submission[T, PT]) reject(w http.ResponseWriter, r *http.Request, err error) {
	if s.redirects(r) {
		http.Redirect(w, r, s.kind.redirect+"?error=1", http.StatusSeeOther)
		return
	}
	s.responder.WriteError(w, err)
}

func (s submission[T, PT]) fail(w http.ResponseWriter, r *http.Request, err error) {
	s.deps.metrics.inc(s.kind.key, outcomeError)
	s.logger.Error().Err(err).Msg("failed to save submission")
	if s.redirects(r) {
		http.Redirect(w, r, s.kind.redirect+"?error=1", http.StatusSeeOther)
		return
	}
	s.responder.WriteStatus(w, http.StatusInternalServerError, messageResponse{Message: serverErrorMessage})
}
