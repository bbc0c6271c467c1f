package web

import (
	"net/http"
	"time"

	"github.com/maaackz/folio/internal/auth"
	"github.com/maaackz/folio/internal/errors"
)

// session marks the request context as admin when it carries a valid
// session cookie. Invalid or expired cookies are ignored; mutations then
// fail with UNAUTHORIZED in the ops layer.
func (h *Handlers) session(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.auth != nil {
			if c, err := r.Cookie(auth.SessionCookie); err == nil && c.Value != "" {
				if _, err := h.auth.Verify(c.Value); err == nil {
					r = r.WithContext(auth.WithAdmin(r.Context()))
				}
			}
		}
		next.ServeHTTP(w, r)
	})
}

// HandleLogin handles POST /api/login with body {username, password}.
func (h *Handlers) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, w, &body); err != nil {
		h.fail(w, err)
		return
	}
	if h.auth == nil {
		h.fail(w, errors.NewInvalidCredentials())
		return
	}

	sess, err := h.auth.Login(body.Username, body.Password)
	if err != nil {
		h.log.WithField("username", body.Username).Warn("failed admin login")
		h.fail(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    sess.Token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		MaxAge:   int(time.Until(sess.ExpiresAt).Seconds()),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	renderJSON(w, http.StatusOK, map[string]any{
		"authenticated": true,
		"expires_at":    sess.ExpiresAt.Unix(),
	})
}

// HandleSession handles GET /api/login.
func (h *Handlers) HandleSession(w http.ResponseWriter, r *http.Request) {
	renderJSON(w, http.StatusOK, map[string]any{
		"authenticated": auth.IsAdmin(r.Context()),
	})
}

// HandleLogout handles DELETE /api/login.
func (h *Handlers) HandleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	renderJSON(w, http.StatusOK, map[string]any{"authenticated": false})
}
