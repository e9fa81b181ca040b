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

// postKind holds what differs between the blog and event admin screens.
type postKind struct {
	postType models.PostType
	entity   string // used in not-found and id errors
	label    string // "Blog post" / "Event"
	slugName string // "Blog" / "Event"
	jsonKey  string
	required string
}

var (
	blogPosts = postKind{
		postType: models.PostTypeBlog,
		entity:   "blog post",
		label:    "Blog post",
		slugName: "Blog",
		jsonKey:  "post",
		required: "Title, slug, and content are required for a blog post.",
	}
	eventPosts = postKind{
		postType: models.PostTypeEvent,
		entity:   "event",
		label:    "Event",
		slugName: "Event",
		jsonKey:  "event",
		required: "Title, slug, and event date are required for an event.",
	}
)

type postInput struct {
	Title               string `json:"title"`
	Slug                string `json:"slug"`
	Content             string `json:"content"`
	EventDate           string `json:"eventDate"`
	Location            string `json:"location"`
	DeleteExistingImage string `json:"deleteExistingImage"`
}

type postHandler struct {
	kind      postKind
	responder Responder
	logger    zerolog.Logger
	posts     database.Store[models.Post]
	validator *validation.Validator
	images    imageUploader
}

func newPostHandler(kind postKind, posts database.Store[models.Post], v *validation.Validator, uploads storage.Store, policy storage.Policy) postHandler {
	logger := log.With().Str("handlerName", "postHandler").Str("postType", string(kind.postType)).Logger()

	return postHandler{
		kind:      kind,
		responder: NewResponder(logger),
		logger:    logger,
		posts:     posts,
		validator: v,
		images:    imageUploader{store: uploads, policy: policy, logger: logger},
	}
}

// getAllPosts lists posts of this handler's type
// @Summary List blog posts or events
// @Description Blog posts are newest first; events are ordered by event date
// @Tags Admin
// @Produce json
// @Success 200 {array} models.Post
// @Failure 500 {object} messageResponse "Internal Server Error"
// @Router /admin/api/posts [get]
// @Router /admin/api/events [get]
func (h postHandler) getAllPosts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := database.NewestFirst(database.Eq("type", h.kind.postType))
		if h.kind.postType == models.PostTypeEvent {
			q = database.Query{Where: q.Where, OrderBy: "event_date"}
		}

		posts, err := h.posts.FindAll(r.Context(), q)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", h.kind.entity+"s", err))
			return
		}
		h.responder.WriteJSON(w, posts)
	}
}

// getPost returns one post by id
// @Summary Get blog post or event
// @Tags Admin
// @Produce json
// @Param id path string true "Post ID" format(uuid)
// @Success 200 {object} models.Post
// @Failure 400 {object} messageResponse "Invalid ID format"
// @Failure 404 {object} messageResponse "Not found"
// @Router /admin/api/posts/{id} [get]
func (h postHandler) getPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		post, err := h.find(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, post)
	}
}

// createPost creates a blog post or event
// @Summary Create blog post or event
// @Description A blank slug is derived from the title. Without an image the default post image is used.
// @Tags Admin
// @Accept multipart/form-data,json
// @Produce json
// @Param title formData string true "Title"
// @Param slug formData string false "URL slug"
// @Param image formData file false "Image (jpeg, png, gif, webp; 5MB max)"
// @Success 201 {object} map[string]any "success, message and the created record"
// @Failure 400 {object} messageResponse "Missing fields, invalid values or duplicate slug"
// @Failure 500 {object} messageResponse "Internal Server Error"
// @Router /admin/api/posts [post]
// @Router /admin/api/events [post]
func (h postHandler) createPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := auditLogger(r, h.logger)

		var in postInput
		if err := decodeBody(r, &in); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		post := models.Post{
			Type:     h.kind.postType,
			Title:    strings.TrimSpace(in.Title),
			Slug:     slugOrTitle(in.Slug, in.Title),
			Content:  strings.TrimSpace(in.Content),
			Location: strings.TrimSpace(in.Location),
		}
		eventDate, err := parseEventDate(in.EventDate)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		post.EventDate = eventDate

		if err := h.checkRequired(&post); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if err := h.validator.Check(&post, nil); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		image, err := h.images.save(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		post.Image = image
		if post.Image == "" {
			post.Image = models.DefaultPostImage
		}

		if err := h.posts.Create(r.Context(), &post); err != nil {
			h.images.discard(r.Context(), image)
			h.responder.WriteError(w, h.writeError("create", err))
			return
		}

		logger.Info().Str("id", post.ID.String()).Str("slug", post.Slug).Msg("post created")
		h.responder.WriteSuccess(w, http.StatusCreated, h.kind.label+" created successfully!", map[string]any{
			h.kind.jsonKey: post,
		})
	}
}

// updatePost edits a blog post or event
// @Summary Update blog post or event
// @Description Blank fields keep their current value. deleteExistingImage=true resets the image.
// @Tags Admin
// @Accept multipart/form-data,json
// @Produce json
// @Param id path string true "Post ID" format(uuid)
// @Param image formData file false "Replacement image"
// @Param deleteExistingImage formData string false "true to remove the current image"
// @Success 200 {object} map[string]any "success, message and the updated record"
// @Failure 400 {object} messageResponse "Invalid values or duplicate slug"
// @Failure 404 {object} messageResponse "Not found"
// @Router /admin/api/posts/{id} [put]
// @Router /admin/api/events/{id} [put]
func (h postHandler) updatePost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := auditLogger(r, h.logger)

		var in postInput
		if err := decodeBody(r, &in); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		eventDate, err := parseEventDate(in.EventDate)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		image, err := h.images.save(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var oldImage string
		updated, err := h.posts.Update(r.Context(), chi.URLParam(r, "id"), func(p *models.Post) error {
			if p.Type != h.kind.postType {
				return errs.ErrNotFound
			}
			oldImage = p.Image

			p.Title = orString(in.Title, p.Title)
			p.Slug = orString(strings.ToLower(in.Slug), p.Slug)
			p.Content = orString(in.Content, p.Content)
			p.Location = orString(in.Location, p.Location)
			if eventDate != nil {
				p.EventDate = eventDate
			}
			switch {
			case image != "":
				p.Image = image
			case isTrue(in.DeleteExistingImage):
				p.Image = models.DefaultPostImage
			}
			if err := h.validator.Check(p, nil); err != nil {
				return err
			}
			p.Touch(time.Now())
			return nil
		})
		if err != nil {
			h.images.discard(r.Context(), image)
			h.responder.WriteError(w, h.writeError("update", err))
			return
		}

		if oldImage != updated.Image {
			h.images.discard(r.Context(), oldImage)
		}

		logger.Info().Str("id", updated.ID.String()).Msg("post updated")
		h.responder.WriteSuccess(w, http.StatusOK, h.kind.label+" updated successfully!", map[string]any{
			h.kind.jsonKey: updated,
		})
	}
}

// deletePost removes a blog post or event and its uploaded image
// @Summary Delete blog post or event
// @Tags Admin
// @Produce json
// @Param id path string true "Post ID" format(uuid)
// @Success 200 {object} messageResponse
// @Failure 400 {object} messageResponse "Invalid ID format"
// @Failure 404 {object} messageResponse "Not found"
// @Router /admin/api/posts/{id} [delete]
// @Router /admin/api/events/{id} [delete]
func (h postHandler) deletePost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := auditLogger(r, h.logger)

		// Verify the post exists and has this handler's type
		post, err := h.find(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		deleted, err := h.posts.Delete(r.Context(), post.ID.String())
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("delete", h.kind.entity, err))
			return
		}
		h.images.discard(r.Context(), deleted.Image)

		logger.Info().Str("id", deleted.ID.String()).Msg("post deleted")
		h.responder.WriteSuccess(w, http.StatusOK, h.kind.label+" deleted successfully!", nil)
	}
}

func (h postHandler) find(r *http.Request) (*models.Post, error) {
	post, err := h.posts.FindByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		return nil, wrapDatabaseError("find", h.kind.entity, err)
	}
	if post.Type != h.kind.postType {
		return nil, wrapDatabaseError("find", h.kind.entity, errs.ErrNotFound)
	}
	return post, nil
}

func (h postHandler) checkRequired(p *models.Post) error {
	missing := p.Title == "" || p.Slug == ""
	switch h.kind.postType {
	case models.PostTypeEvent:
		missing = missing || p.EventDate == nil
	default:
		missing = missing || p.Content == ""
	}
	if missing {
		return errs.NewValidationError(nil, []string{h.kind.required})
	}
	return nil
}

func (h postHandler) writeError(operation string, err error) error {
	if errs.IsDuplicateKey(err) {
		return errs.NewDuplicateSlugError(h.kind.slugName)
	}
	if errs.IsValidationError(err) {
		return err
	}
	return wrapDatabaseError(operation, h.kind.entity, err)
}

// slugOrTitle normalizes a submitted slug, deriving one from the title when
// it is blank.
func slugOrTitle(slug, title string) string {
	if slug = strings.ToLower(strings.TrimSpace(slug)); slug != "" {
		return slug
	}
	return models.Slugify(title)
}
