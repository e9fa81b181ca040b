package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/melba-site-backend/database"
	"github.com/rpupo63/melba-site-backend/errs"
	"github.com/rpupo63/melba-site-backend/models"
	"github.com/rpupo63/melba-site-backend/storage"
	"github.com/rpupo63/melba-site-backend/validation"
)

const programRequired = "Title, slug, and short description are required for a program."

type programInput struct {
	Title               string `json:"title"`
	Slug                string `json:"slug"`
	AgeRange            string `json:"ageRange"`
	Status              string `json:"status"`
	ShortDescription    string `json:"shortDescription"`
	FullDescription     string `json:"fullDescription"`
	DeleteExistingImage string `json:"deleteExistingImage"`
}

type programHandler struct {
	responder Responder
	logger    zerolog.Logger
	programs  database.Store[models.Program]
	validator *validation.Validator
	images    imageUploader
}

func newProgramHandler(programs database.Store[models.Program], v *validation.Validator, uploads storage.Store, policy storage.Policy) programHandler {
	logger := log.With().Str("handlerName", "programHandler").Logger()

	return programHandler{
		responder: NewResponder(logger),
		logger:    logger,
		programs:  programs,
		validator: v,
		images:    imageUploader{store: uploads, policy: policy, logger: logger},
	}
}

// getAllPrograms retrieves all programs
// @Summary Get all programs
// @Tags Admin
// @Produce json
// @Success 200 {array} models.Program "Programs, newest first"
// @Failure 500 {object} messageResponse "Internal Server Error"
// @Router /admin/api/programs [get]
func (h programHandler) getAllPrograms() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		programs, err := h.programs.FindAll(r.Context(), database.NewestFirst())
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "programs", err))
			return
		}
		h.responder.WriteJSON(w, programs)
	}
}

// getProgram retrieves a program by ID
// @Summary Get program
// @Tags Admin
// @Produce json
// @Param id path string true "Program ID" format(uuid)
// @Success 200 {object} models.Program
// @Failure 400 {object} messageResponse "Invalid ID format"
// @Failure 404 {object} messageResponse "Program not found"
// @Router /admin/api/programs/{id} [get]
func (h programHandler) getProgram() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		program, err := h.programs.FindByID(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "program", err))
			return
		}
		h.responder.WriteJSON(w, program)
	}
}

// createProgram creates a new program
// @Summary Create program
// @Description A blank slug is derived from the title and a blank status defaults to Active.
// @Tags Admin
// @Accept multipart/form-data,json
// @Produce json
// @Param image formData file false "Image (jpeg, png, gif, webp; 5MB max)"
// @Success 201 {object} map[string]any "success, message and the created program"
// @Failure 400 {object} messageResponse "Missing fields, invalid values or duplicate slug"
// @Failure 500 {object} messageResponse "Internal Server Error"
// @Router /admin/api/programs [post]
func (h programHandler) createProgram() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := auditLogger(r, h.logger)

		var in programInput
		if err := decodeBody(r, &in); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		program := models.Program{
			Title:            strings.TrimSpace(in.Title),
			Slug:             slugOrTitle(in.Slug, in.Title),
			AgeRange:         strings.TrimSpace(in.AgeRange),
			Status:           models.ProgramStatus(orString(in.Status, string(models.ProgramActive))),
			ShortDescription: strings.TrimSpace(in.ShortDescription),
			FullDescription:  strings.TrimSpace(in.FullDescription),
		}
		if program.Title == "" || program.Slug == "" || program.ShortDescription == "" {
			h.responder.WriteError(w, errs.NewValidationError(nil, []string{programRequired}))
			return
		}
		if err := h.validator.Check(&program, nil); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		image, err := h.images.save(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		program.Image = image

		if err := h.programs.Create(r.Context(), &program); err != nil {
			h.images.discard(r.Context(), image)
			h.responder.WriteError(w, programError("create", err))
			return
		}

		logger.Info().Str("id", program.ID.String()).Str("slug", program.Slug).Msg("program created")
		h.responder.WriteSuccess(w, http.StatusCreated, "Program created successfully!", map[string]any{
			"program": program,
		})
	}
}

// updateProgram updates an existing program
// @Summary Update program
// @Description Blank fields keep their current value. deleteExistingImage=true removes the image.
// @Tags Admin
// @Accept multipart/form-data,json
// @Produce json
// @Param id path string true "Program ID" format(uuid)
// @Success 200 {object} map[string]any "success, message and the updated program"
// @Failure 400 {object} messageResponse "Invalid values or duplicate slug"
// @Failure 404 {object} messageResponse "Program not found"
// @Router /admin/api/programs/{id} [put]
func (h programHandler) updateProgram() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := auditLogger(r, h.logger)

		var in programInput
		if err := decodeBody(r, &in); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		image, err := h.images.save(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var oldImage string
		updated, err := h.programs.Update(r.Context(), chi.URLParam(r, "id"), func(p *models.Program) error {
			oldImage = p.Image

			p.Title = orString(in.Title, p.Title)
			p.Slug = orString(strings.ToLower(in.Slug), p.Slug)
			p.AgeRange = orString(in.AgeRange, p.AgeRange)
			p.Status = models.ProgramStatus(orString(in.Status, string(p.Status)))
			p.ShortDescription = orString(in.ShortDescription, p.ShortDescription)
			p.FullDescription = orString(in.FullDescription, p.FullDescription)
			switch {
			case image != "":
				p.Image = image
			case isTrue(in.DeleteExistingImage):
				p.Image = ""
			}
			if err := h.validator.Check(p, nil); err != nil {
				return err
			}
			p.Touch(time.Now())
			return nil
		})
		if err != nil {
			h.images.discard(r.Context(), image)
			h.responder.WriteError(w, programError("update", err))
			return
		}

		if oldImage != updated.Image {
			h.images.discard(r.Context(), oldImage)
		}

		logger.Info().Str("id", updated.ID.String()).Msg("program updated")
		h.responder.WriteSuccess(w, http.StatusOK, "Program updated successfully!", map[string]any{
			"program": updated,
		})
	}
}

// deleteProgram deletes a program and its image
// @Summary Delete program
// @Tags Admin
// @Produce json
// @Param id path string true "Program ID" format(uuid)
// @Success 200 {object} messageResponse
// @Failure 400 {object} messageResponse "Invalid ID format"
// @Failure 404 {object} messageResponse "Program not found"
// @Router /admin/api/programs/{id} [delete]
func (h programHandler) deleteProgram() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := auditLogger(r, h.logger)

		deleted, err := h.programs.Delete(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("delete", "program", err))
			return
		}
		h.images.discard(r.Context(), deleted.Image)

		logger.Info().Str("id", deleted.ID.String()).Msg("program deleted")
		h.responder.WriteSuccess(w, http.StatusOK, "Program deleted successfully!", nil)
	}
}

func programError(operation string, err error) error {
	if errs.IsDuplicateKey(err) {
		return errs.NewDuplicateSlugError("Program")
	}
	if errs.IsValidationError(err) {
		return err
	}
	return wrapDatabaseError(operation, "program", err)
}
