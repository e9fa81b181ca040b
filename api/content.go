package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/rpupo63/melba-site-backend/errs"
	"github.com/rpupo63/melba-site-backend/storage"
)

const imageField = "image"

// imageUploader stores the optional image of an admin form and cleans up
// files the store produced.
type imageUploader struct {
	store  storage.Store
	policy storage.Policy
	logger zerolog.Logger
}

// save stores the "image" file of a parsed multipart form. An empty path
// and nil error mean no file was sent.
func (u imageUploader) save(r *http.Request) (string, error) {
	if r.MultipartForm == nil {
		return "", nil
	}
	file, header, err := r.FormFile(imageField)
	if errors.Is(err, http.ErrMissingFile) {
		return "", nil
	}
	if err != nil {
		return "", errs.NewMalformedPayloadError("image", err)
	}
	defer file.Close()
	if header.Size == 0 {
		return "", nil
	}

	upload, err := u.policy.Inspect(file)
	if err != nil {
		return "", err
	}
	path, err := u.store.Save(r.Context(), upload)
	if err != nil {
		return "", err
	}
	u.logger.Info().Str("path", path).Str("contentType", upload.ContentType).Msg("image stored")
	return path, nil
}

// discard removes a stored image. Failures are logged only, since the
// record change they follow has already happened.
func (u imageUploader) discard(ctx context.Context, path string) {
	if path == "" || !u.store.Owns(path) {
		return
	}
	if err := u.store.Delete(ctx, path); err != nil {
		u.logger.Warn().Err(err).Str("path", path).Msg("failed to delete image")
	}
}

// isTrue reads a checkbox or boolean string.
func isTrue(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "on", "1", "yes":
		return true
	}
	return false
}

var eventDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// parseEventDate accepts RFC 3339 and the values of HTML date and
// datetime-local inputs, read as UTC.
func parseEventDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	for _, layout := range eventDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t, nil
		}
	}
	return nil, errs.NewBadRequestError("Invalid event date.")
}

// orString keeps the current value when the update leaves a field blank.
func orString(next, current string) string {
	if next = strings.TrimSpace(next); next != "" {
		return next
	}
	return current
}
