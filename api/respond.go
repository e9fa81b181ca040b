package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/rpupo63/melba-site-backend/errs"
)

const serverErrorMessage = "Server error. Please try again later."

type Responder struct {
	logger zerolog.Logger
}

func NewResponder(logger zerolog.Logger) Responder {
	return Responder{logger}
}

// messageResponse is the body of every non-listing response.
type messageResponse struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Error   string   `json:"error,omitempty"`
	Errors  []string `json:"errors,omitempty"`
	Fields  []string `json:"fields,omitempty"`
	Field   string   `json:"field,omitempty"`
}

func (r Responder) WriteJSON(w http.ResponseWriter, data any) {
	r.WriteStatus(w, http.StatusOK, data)
}

func (r Responder) WriteStatus(w http.ResponseWriter, status int, data any) {
	// Marshal the data first to check size and handle errors
	jsonData, err := json.Marshal(data)
	if err != nil {
		r.logger.Error().Err(err).Msg("error marshaling response data")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	const maxResponseSize = 10 * 1024 * 1024 // 10MB
	if len(jsonData) > maxResponseSize {
		r.logger.Error().
			Int("responseSize", len(jsonData)).
			Int("maxSize", maxResponseSize).
			Msg("response too large")
		status = http.StatusInternalServerError
		jsonData, _ = json.Marshal(messageResponse{Message: serverErrorMessage})
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(jsonData); err != nil {
		r.logger.Error().Err(err).Msg("error writing response")
	}
}

// WriteSuccess writes {success: true, message} plus any extra keys.
func (r Responder) WriteSuccess(w http.ResponseWriter, status int, message string, extra map[string]any) {
	if len(extra) == 0 {
		r.WriteStatus(w, status, messageResponse{Success: true, Message: message})
		return
	}
	body := map[string]any{"success": true, "message": message}
	for k, v := range extra {
		body[k] = v
	}
	r.WriteStatus(w, status, body)
}

func (r Responder) WriteError(w http.ResponseWriter, err error) {
	var validationErr *errs.ValidationErr
	if errors.As(err, &validationErr) {
		r.WriteStatus(w, http.StatusBadRequest, messageResponse{
			Message: strings.Join(validationErr.Messages, " "),
			Error:   "Validation error",
			Errors:  validationErr.Messages,
			Fields:  validationErr.Fields,
		})
		return
	}

	var apiErr *errs.ApiErr
	if !errors.As(err, &apiErr) || apiErr.StatusCode >= http.StatusInternalServerError {
		r.logger.Error().Err(err).Str("fullError", fullError(err)).Msg("request failed")
		r.WriteStatus(w, http.StatusInternalServerError, messageResponse{
			Message: serverErrorMessage,
			Error:   "Internal Server Error",
		})
		return
	}

	message := apiErr.Message()
	if apiErr.Details != "" {
		message = apiErr.Details
	}
	if apiErr.Cause != nil {
		r.logger.Debug().Str("fullError", apiErr.GetFullError()).Int("status", apiErr.StatusCode).Msg("client error")
	}
	r.WriteStatus(w, apiErr.StatusCode, messageResponse{
		Message: message,
		Error:   http.StatusText(apiErr.StatusCode),
		Field:   apiErr.Field,
	})
}

func fullError(err error) string {
	var apiErr *errs.ApiErr
	if errors.As(err, &apiErr) {
		return apiErr.GetFullError()
	}
	return err.Error()
}

// wrapDatabaseError wraps a database error with context information
func wrapDatabaseError(operation, entity string, cause error) error {
	return errs.NewDatabaseError(operation, entity, cause)
}
