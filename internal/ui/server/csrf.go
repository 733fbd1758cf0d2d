package server

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/Its-donkey/circuit-console/internal/ui/backend"
	"github.com/google/uuid"
)

const (
	csrfCookieName = "csrf_token"
	csrfFieldName  = "csrf_token"
	csrfFailure    = "CSRF token missing or invalid."
)

// ensureCSRF returns the request's CSRF token, issuing a cookie when absent.
func ensureCSRF(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(csrfCookieName); err == nil && strings.TrimSpace(c.Value) != "" {
		return c.Value
	}
	token := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     csrfCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		Secure:   r.TLS != nil,
	})
	return token
}

// requireCSRF enforces the double-submit check: the cookie must match the
// X-CSRF-Token header or, for form posts, the csrf_token field.
func requireCSRF(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(csrfCookieName)
		if err != nil || cookie.Value == "" {
			rejectCSRF(w, r)
			return
		}
		submitted := r.Header.Get(backend.CSRFHeader)
		if submitted == "" && !isJSONRequest(r) {
			submitted = r.PostFormValue(csrfFieldName)
		}
		if subtle.ConstantTimeCompare([]byte(submitted), []byte(cookie.Value)) != 1 {
			rejectCSRF(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func rejectCSRF(w http.ResponseWriter, r *http.Request) {
	if wantsJSON(r) {
		writeFailure(w, http.StatusForbidden, csrfFailure)
		return
	}
	http.Error(w, csrfFailure, http.StatusForbidden)
}
