package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpupo63/melba-site-backend/database"
	"github.com/rpupo63/melba-site-backend/models"
	"github.com/rpupo63/melba-site-backend/storage"
)

func (e *testEnv) uploadExists(publicPath string) bool {
	name := strings.TrimPrefix(publicPath, storage.DefaultURLPrefix)
	_, err := os.Stat(filepath.Join(e.uploadDir, name))
	return err == nil
}

func TestAdminRequiresSession(t *testing.T) {
	env := newTestEnv(t)

	for _, path := range []string{"/admin/api/posts", "/admin/api/programs", "/admin/api/subscribers"} {
		rec := env.serve(httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusFound, rec.Code, path)
		assert.Equal(t, "/admin/login", rec.Header().Get("Location"))
	}

	req := httptest.NewRequest(http.MethodDelete, "/admin/api/programs/"+uuid.NewString(), nil)
	req.AddCookie(&http.Cookie{Name: "melba_session", Value: "forged"})
	assert.Equal(t, http.StatusFound, env.serve(req).Code)
}

func TestAdminResponsesAreNotCached(t *testing.T) {
	env := newTestEnv(t)
	rec := env.admin(http.MethodGet, "/admin/api/subscribers", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Cache-Control"), "no-store")
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}

func TestAdminRecordIDErrors(t *testing.T) {
	env := newTestEnv(t)

	rec := env.admin(http.MethodGet, "/admin/api/applications/tutor/42", nil, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid tutor application ID format.", decodeMap(t, rec)["message"])

	rec = env.admin(http.MethodGet, "/admin/api/applications/tutor/"+uuid.NewString(), nil, "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Tutor application not found.", decodeMap(t, rec)["message"])

	rec = env.admin(http.MethodDelete, "/admin/api/contact-forms/"+uuid.NewString(), nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminDeleteSubmission(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	app := &models.TutorApplication{
		Person:        models.Person{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"},
		TutorSubjects: models.StringList{"Math"},
	}
	require.NoError(t, env.db.Tutors().Create(ctx, app))

	rec := env.admin(http.MethodDelete, "/admin/api/applications/tutor/"+app.ID.String(), nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Tutor application deleted successfully", decodeMap(t, rec)["message"])

	_, err := env.db.Tutors().FindByID(ctx, app.ID.String())
	assert.Error(t, err)
}

func TestCreateBlogPostDerivesSlug(t *testing.T) {
	env := newTestEnv(t)

	rec := env.adminJSON(http.MethodPost, "/admin/api/posts", map[string]any{
		"title":   "Spring Open House!",
		"content": "Join us for tours and snacks.",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	body := decodeMap(t, rec)
	assert.Equal(t, "Blog post created successfully!", body["message"])

	post := body["post"].(map[string]any)
	assert.Equal(t, "spring-open-house", post["slug"])
	assert.Equal(t, "blog", post["type"])
	assert.Equal(t, models.DefaultPostImage, post["image"])
}

func TestCreatePostMissingFields(t *testing.T) {
	env := newTestEnv(t)

	rec := env.adminJSON(http.MethodPost, "/admin/api/posts", map[string]any{"title": "No body"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Title, slug, and content are required for a blog post.", decodeMap(t, rec)["message"])

	rec = env.adminJSON(http.MethodPost, "/admin/api/events", map[string]any{"title": "Gala", "content": "Dinner"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Title, slug, and event date are required for an event.", decodeMap(t, rec)["message"])

	rec = env.adminJSON(http.MethodPost, "/admin/api/events", map[string]any{"title": "Gala", "eventDate": "next week"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid event date.", decodeMap(t, rec)["message"])

	rec = env.adminJSON(http.MethodPost, "/admin/api/programs", map[string]any{"title": "Chess"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Title, slug, and short description are required for a program.", decodeMap(t, rec)["message"])

	rec = env.adminJSON(http.MethodPost, "/admin/api/programs", map[string]any{
		"title": "Chess", "shortDescription": "Weekly club", "status": "Paused",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, []any{"status"}, decodeMap(t, rec)["fields"])
}

func TestSlugUniquePerType(t *testing.T) {
	env := newTestEnv(t)

	blog := env.adminJSON(http.MethodPost, "/admin/api/posts", map[string]any{
		"title": "Open House", "slug": "open-house", "content": "Tours",
	})
	require.Equal(t, http.StatusCreated, blog.Code, blog.Body.String())

	event := env.adminJSON(http.MethodPost, "/admin/api/events", map[string]any{
		"title": "Open House", "slug": "open-house", "eventDate": "2030-05-01T18:00",
	})
	require.Equal(t, http.StatusCreated, event.Code, event.Body.String())
	assert.Equal(t, "Event created successfully!", decodeMap(t, event)["message"])

	dup := env.adminJSON(http.MethodPost, "/admin/api/posts", map[string]any{
		"title": "Open House Again", "slug": "open-house", "content": "More tours",
	})
	require.Equal(t, http.StatusBadRequest, dup.Code)
	body := decodeMap(t, dup)
	assert.Equal(t, "Blog URL (slug) already exists. Please choose a different one.", body["message"])
	assert.Equal(t, "slug", body["field"])

	badSlug := env.adminJSON(http.MethodPost, "/admin/api/posts", map[string]any{
		"title": "Bad", "slug": "Not A Slug", "content": "x",
	})
	assert.Equal(t, http.StatusBadRequest, badSlug.Code)
}

func TestPostsAreScopedByType(t *testing.T) {
	env := newTestEnv(t)

	rec := env.adminJSON(http.MethodPost, "/admin/api/events", map[string]any{
		"title": "Gala", "eventDate": "2030-05-01",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	id := decodeMap(t, rec)["event"].(map[string]any)["id"].(string)

	asBlog := env.admin(http.MethodGet, "/admin/api/posts/"+id, nil, "")
	require.Equal(t, http.StatusNotFound, asBlog.Code)
	assert.Equal(t, "Blog post not found.", decodeMap(t, asBlog)["message"])

	assert.Equal(t, http.StatusNotFound, env.admin(http.MethodDelete, "/admin/api/posts/"+id, nil, "").Code)
	assert.Equal(t, http.StatusNotFound,
		env.adminJSON(http.MethodPut, "/admin/api/posts/"+id, map[string]any{"title": "Hijack"}).Code)

	asEvent := env.admin(http.MethodGet, "/admin/api/events/"+id, nil, "")
	require.Equal(t, http.StatusOK, asEvent.Code)
	assert.Equal(t, "Gala", decodeMap(t, asEvent)["title"])
}

func TestUpdatePostKeepsBlankFields(t *testing.T) {
	env := newTestEnv(t)

	rec := env.adminJSON(http.MethodPost, "/admin/api/posts", map[string]any{
		"title": "Hello", "content": "First draft",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decodeMap(t, rec)["post"].(map[string]any)["id"].(string)

	rec = env.adminMultipart(http.MethodPut, "/admin/api/posts/"+id, map[string]string{
		"title":   "",
		"content": "Second draft",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeMap(t, rec)
	assert.Equal(t, "Blog post updated successfully!", body["message"])
	post := body["post"].(map[string]any)
	assert.Equal(t, "Hello", post["title"])
	assert.Equal(t, "Second draft", post["content"])
}

func TestPostImageLifecycle(t *testing.T) {
	env := newTestEnv(t)

	rec := env.adminMultipart(http.MethodPost, "/admin/api/posts", map[string]string{
		"title": "Garden Day", "content": "Planting",
	}, pngBytes)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	post := decodeMap(t, rec)["post"].(map[string]any)
	id := post["id"].(string)
	first := post["image"].(string)
	require.True(t, strings.HasPrefix(first, storage.DefaultURLPrefix))
	assert.True(t, env.uploadExists(first))

	// replacing the image removes the old file
	rec = env.adminMultipart(http.MethodPut, "/admin/api/posts/"+id, nil, pngBytes)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	second := decodeMap(t, rec)["post"].(map[string]any)["image"].(string)
	assert.NotEqual(t, first, second)
	assert.False(t, env.uploadExists(first))
	assert.True(t, env.uploadExists(second))

	// deleteExistingImage falls back to the default image
	rec = env.adminMultipart(http.MethodPut, "/admin/api/posts/"+id, map[string]string{
		"deleteExistingImage": "true",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, models.DefaultPostImage, decodeMap(t, rec)["post"].(map[string]any)["image"])
	assert.False(t, env.uploadExists(second))

	rec = env.admin(http.MethodDelete, "/admin/api/posts/"+id, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Blog post deleted successfully!", decodeMap(t, rec)["message"])
}

func TestProgramImageLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	rec := env.adminMultipart(http.MethodPost, "/admin/api/programs", map[string]string{
		"title":            "Robotics",
		"shortDescription": "Build and code robots",
		"ageRange":         "12-18",
	}, pngBytes)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	body := decodeMap(t, rec)
	assert.Equal(t, "Program created successfully!", body["message"])
	program := body["program"].(map[string]any)
	assert.Equal(t, "robotics", program["slug"])
	assert.Equal(t, "Active", program["status"])
	image := program["image"].(string)
	assert.True(t, env.uploadExists(image))

	rec = env.admin(http.MethodDelete, "/admin/api/programs/"+program["id"].(string), nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Program deleted successfully!", decodeMap(t, rec)["message"])
	assert.False(t, env.uploadExists(image))

	all, err := env.db.Programs().FindAll(ctx, database.Query{})
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestDeleteProgramWithoutImage(t *testing.T) {
	env := newTestEnv(t)

	program := &models.Program{Title: "Art", Slug: "art", ShortDescription: "Paint", Status: models.ProgramActive}
	require.NoError(t, env.db.Programs().Create(context.Background(), program))

	rec := env.admin(http.MethodDelete, "/admin/api/programs/"+program.ID.String(), nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.admin(http.MethodDelete, "/admin/api/programs/"+program.ID.String(), nil, "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Program not found.", decodeMap(t, rec)["message"])

	rec = env.admin(http.MethodDelete, "/admin/api/programs/not-a-uuid", nil, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid program ID format.", decodeMap(t, rec)["message"])
}

func TestUploadRejectsNonImages(t *testing.T) {
	env := newTestEnv(t)

	rec := env.adminMultipart(http.MethodPost, "/admin/api/programs", map[string]string{
		"title": "Robotics", "shortDescription": "Robots",
	}, []byte("just some text, not an image"))
	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

	all, err := env.db.Programs().FindAll(context.Background(), database.Query{})
	require.NoError(t, err)
	assert.Empty(t, all)

	entries, err := os.ReadDir(env.uploadDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestUploadSizeLimit(t *testing.T) {
	env := newTestEnv(t)
	uploads, err := storage.NewDiskStore(env.uploadDir, storage.DefaultURLPrefix)
	require.NoError(t, err)

	policy := storage.DefaultPolicy()
	policy.MaxBytes = 32
	env.handler = newRouter(Dependencies{
		Database: env.db,
		Notifier: env.notifier,
		Sessions: env.sessions,
		Uploads:  uploads,
	}, withUploadPolicy(policy))

	rec := env.adminMultipart(http.MethodPost, "/admin/api/programs", map[string]string{
		"title": "Robotics", "shortDescription": "Robots",
	}, pngBytes)
	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	body := decodeMap(t, rec)
	assert.Equal(t, "File size exceeds the maximum allowed size of 32 bytes", body["message"])
	assert.Equal(t, "image", body["field"])
}

func TestFailedUpdateDiscardsNewUpload(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	taken := &models.Program{Title: "Art", Slug: "art", ShortDescription: "Paint", Status: models.ProgramActive}
	other := &models.Program{Title: "Chess", Slug: "chess", ShortDescription: "Play", Status: models.ProgramActive}
	require.NoError(t, env.db.Programs().Create(ctx, taken))
	require.NoError(t, env.db.Programs().Create(ctx, other))

	rec := env.adminMultipart(http.MethodPut, "/admin/api/programs/"+other.ID.String(), map[string]string{
		"slug": "art",
	}, pngBytes)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Program URL (slug) already exists. Please choose a different one.", decodeMap(t, rec)["message"])

	entries, err := os.ReadDir(env.uploadDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
