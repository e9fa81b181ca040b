package api

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/rpupo63/melba-site-backend/errs"
)

// multipartMemory is how much of a multipart body is held in memory before
// spilling to temp files.
const multipartMemory = 8 << 20

func mediaType(r *http.Request) string {
	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return mt
}

func isFormPost(r *http.Request) bool {
	switch mediaType(r) {
	case "application/x-www-form-urlencoded", "multipart/form-data":
		return true
	}
	return false
}

// wantsJSON is false for plain HTML form posts, which expect a redirect.
func wantsJSON(r *http.Request) bool {
	if !isFormPost(r) {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "application/json") ||
		r.Header.Get("X-Requested-With") == "XMLHttpRequest"
}

// decodeBody fills dst from a JSON, urlencoded or multipart body. Form
// values are mapped onto the JSON field names, so both encodings go through
// the same unmarshalling rules.
func decodeBody(r *http.Request, dst any) error {
	if !isFormPost(r) {
		if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
			return decodeError("json", err)
		}
		return nil
	}

	if err := parseForm(r); err != nil {
		return err
	}
	raw, err := json.Marshal(formToMap(r.PostForm))
	if err != nil {
		return decodeError("form", err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return decodeError("form", err)
	}
	return nil
}

func parseForm(r *http.Request) error {
	var err error
	if mediaType(r) == "multipart/form-data" {
		err = r.ParseMultipartForm(multipartMemory)
	} else {
		err = r.ParseForm()
	}
	if err != nil {
		return decodeError("form", err)
	}
	return nil
}

func decodeError(payloadType string, err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return errs.NewMaxBodySizeExceededError(maxErr.Limit)
	}
	return errs.NewMalformedPayloadError(payloadType, err)
}

// formToMap keeps single values as strings; repeated keys and keys written
// as "name[]" become lists.
func formToMap(form url.Values) map[string]any {
	out := make(map[string]any, len(form))
	for key, values := range form {
		name, isList := strings.CutSuffix(key, "[]")
		if !isList && len(values) == 1 {
			out[name] = values[0]
			continue
		}
		out[name] = values
	}
	return out
}
