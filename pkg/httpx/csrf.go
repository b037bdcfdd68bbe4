package httpx

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/csrf"

	"github.com/aussiebroadwan/tenantry/pkg/slogx"
)

const (
	// CSRFCookieName holds the signed per-browser token.
	CSRFCookieName = "csrf_token"

	// CSRFFormField is the hidden form field forms must echo back.
	CSRFFormField = "authenticity_token"

	// CSRFHeader is accepted instead of the form field for scripted clients.
	CSRFHeader = "X-CSRF-Token"
)

// CSRFToken returns the masked token to embed in forms rendered for r.
func CSRFToken(r *http.Request) string { return csrf.Token(r) }

// CSRF rejects unsafe requests that do not echo the cookie token in the
// form or header with 422. key signs the cookie and must be 32 bytes. When
// secure is false the site is served over plain HTTP and the strict Referer
// check for TLS requests is skipped.
func CSRF(key []byte, secure bool) Middleware {
	protect := csrf.Protect(key,
		csrf.CookieName(CSRFCookieName),
		csrf.FieldName(CSRFFormField),
		csrf.RequestHeader(CSRFHeader),
		csrf.Path("/"),
		csrf.HttpOnly(true),
		csrf.Secure(secure),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.ErrorHandler(http.HandlerFunc(csrfFailed)),
	)

	return func(next http.Handler) http.Handler {
		h := protect(next)
		if secure {
			return h
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h.ServeHTTP(w, csrf.PlaintextHTTPRequest(r))
		})
	}
}

func csrfFailed(w http.ResponseWriter, r *http.Request) {
	slogx.FromContext(r.Context()).Warn("csrf check failed",
		slog.String("method", r.Method),
		slog.Any("reason", csrf.FailureReason(r)),
	)
	http.Error(w, "invalid authenticity token", http.StatusUnprocessableEntity)
}
