package api

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/melba-site-backend/errs"
	"github.com/rpupo63/melba-site-backend/sessions"
)

const (
	dashboardPath      = "/admin/dashboard"
	invalidCredentials = "Invalid username or password."
)

type loginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// authHandler signs the single admin account in and out.
type authHandler struct {
	responder     Responder
	logger        zerolog.Logger
	credentials   sessions.Credentials
	sessions      sessions.Store
	secureCookies bool
	ttl           time.Duration
}

func newAuthHandler(creds sessions.Credentials, store sessions.Store, secureCookies bool) authHandler {
	logger := log.With().Str("handlerName", "authHandler").Logger()
	if !creds.Configured() {
		logger.Warn().Msg("no admin credentials configured; every login will fail")
	}

	return authHandler{
		responder:     NewResponder(logger),
		logger:        logger,
		credentials:   creds,
		sessions:      store,
		secureCookies: secureCookies,
		ttl:           sessions.DefaultTTL,
	}
}

// login checks the admin credentials and starts a session
// @Summary Admin login
// @Tags Admin
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Success 200 {object} messageResponse
// @Success 303 "Form posts are redirected to the dashboard"
// @Failure 401 {object} messageResponse "Invalid username or password"
// @Router /admin/login [post]
func (h authHandler) login() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in loginInput
		if err := decodeBody(r, &in); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if !h.credentials.Verify(in.Username, in.Password) {
			h.logger.Warn().Str("remoteAddr", r.RemoteAddr).Msg("failed admin login")
			if !wantsJSON(r) {
				http.Redirect(w, r, loginPath+"?error=1", http.StatusSeeOther)
				return
			}
			h.responder.WriteError(w, errs.NewUnauthorizedError(invalidCredentials))
			return
		}

		token, err := h.sessions.Create(r.Context())
		if err != nil {
			h.responder.WriteError(w, errs.NewInternalErrorWithCause("failed to create session", err))
			return
		}
		http.SetCookie(w, h.cookie(token, int(h.ttl.Seconds())))
		h.logger.Info().Msg("admin logged in")

		if !wantsJSON(r) {
			http.Redirect(w, r, dashboardPath, http.StatusSeeOther)
			return
		}
		h.responder.WriteSuccess(w, http.StatusOK, "Logged in successfully.", nil)
	}
}

// logout ends the current session
// @Summary Admin logout
// @Tags Admin
// @Success 303 "Redirect to the login page"
// @Router /admin/logout [post]
// @Router /admin/logout [get]
func (h authHandler) logout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if token := sessionToken(r); token != "" {
			if err := h.sessions.Destroy(r.Context(), token); err != nil {
				h.logger.Error().Err(err).Msg("failed to destroy session")
			}
		}
		http.SetCookie(w, h.cookie("", -1))
		http.Redirect(w, r, loginPath, http.StatusSeeOther)
	}
}

type sessionResponse struct {
	Authenticated bool `json:"authenticated"`
}

// session reports whether the caller holds a live admin session
// @Summary Admin session status
// @Tags Admin
// @Produce json
// @Success 200 {object} sessionResponse
// @Router /admin/session [get]
func (h authHandler) session() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ok, err := h.sessions.Authenticated(r.Context(), sessionToken(r))
		if err != nil {
			h.logger.Error().Err(err).Msg("session lookup failed")
		}
		h.responder.WriteJSON(w, sessionResponse{Authenticated: ok})
	}
}

func (h authHandler) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     sessions.CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	}
}
