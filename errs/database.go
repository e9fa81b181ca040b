package errs

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrMalformedID  = errors.New("malformed id")
	ErrDuplicateKey = errors.New("duplicate key")
	ErrPersistence  = errors.New("persistence fault")
)

// PersistenceFault wraps an infrastructure failure of the store so callers
// can tell it apart from the expected not-found/duplicate outcomes.
func PersistenceFault(operation string, cause error) error {
	return fmt.Errorf("%s: %w: %w", operation, ErrPersistence, cause)
}

func IsDuplicateKey(err error) bool {
	return errors.Is(err, ErrDuplicateKey)
}

func NewMalformedIDError(entity string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		err:        tagged(fmt.Sprintf("Invalid %s ID format.", entity), ErrMalformedID),
		Field:      "id",
	}
}

// NewDuplicateSlugError is returned when a slug is taken; label names the
// kind of page, as in "Blog URL (slug) already exists."
func NewDuplicateSlugError(label string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		err:        tagged(fmt.Sprintf("%s URL (slug) already exists. Please choose a different one.", label), ErrDuplicateKey),
		Field:      "slug",
	}
}

// NewDatabaseError maps a store error onto the HTTP outcome the caller sees.
func NewDatabaseError(operation, entity string, cause error) *ApiErr {
	switch {
	case errors.Is(cause, ErrMalformedID):
		return NewMalformedIDError(entity)
	case errors.Is(cause, ErrNotFound):
		notFound := NewNotFoundError(capitalize(entity) + " not found.")
		notFound.Cause = cause
		return notFound
	case errors.Is(cause, ErrDuplicateKey):
		return &ApiErr{
			StatusCode: http.StatusBadRequest,
			err:        tagged(capitalize(entity)+" already exists.", ErrDuplicateKey),
			Cause:      cause,
		}
	}
	return &ApiErr{
		StatusCode: http.StatusInternalServerError,
		err:        ErrInternal,
		Details:    fmt.Sprintf("Failed to %s %s", operation, entity),
		Cause:      cause,
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
