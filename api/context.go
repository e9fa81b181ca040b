package api

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"
)

type keyType string

const sessionIDKey keyType = "sessionID"

func ctxWithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionIDKey, sessionID)
}

// ctxSessionID returns the admin session behind a gated request.
func ctxSessionID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(sessionIDKey).(string)
	return id, ok && id != ""
}

// auditLogger tags admin actions with a short prefix of the session id.
func auditLogger(r *http.Request, logger zerolog.Logger) zerolog.Logger {
	id, ok := ctxSessionID(r.Context())
	if !ok {
		return logger
	}
	if len(id) > 8 {
		id = id[:8]
	}
	return logger.With().Str("session", id).Logger()
}
