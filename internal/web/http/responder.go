package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/aussiebroadwan/tenantry/internal/web/authz"
	"github.com/aussiebroadwan/tenantry/internal/web/nav"
	"github.com/aussiebroadwan/tenantry/internal/web/store"
	"github.com/aussiebroadwan/tenantry/internal/web/view"
	"github.com/aussiebroadwan/tenantry/pkg/httpx"
	"github.com/aussiebroadwan/tenantry/pkg/slogx"
)

// Action is a controller action. Returned errors are mapped to a response
// by Responder.Handle.
type Action func(w http.ResponseWriter, r *http.Request) error

// Responder renders pages and is the single place errors become responses.
type Responder struct {
	Views   view.Renderer
	Flashes *httpx.Flashes
	PerPage int
}

// Handle adapts a to http.Handler.
func (p *Responder) Handle(a Action) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := a(w, r); err != nil {
			p.Error(w, r, err)
		}
	})
}

// Page starts a page for the current request.
func (p *Responder) Page(r *http.Request, title string) *view.Page {
	rc := FromContext(r.Context())
	return &view.Page{
		Title:       title,
		CurrentUser: rc.User,
		Account:     rc.Account,
		Menus:       rc.Menus,
		CSRFToken:   rc.CSRFToken,
	}
}

// Render writes page name inside the application layout. The flash is
// consumed here so a redirect keeps it for the next page.
func (p *Responder) Render(w http.ResponseWriter, r *http.Request, status int, name string, page *view.Page) error {
	if page == nil {
		page = p.Page(r, "")
	}
	flash, err := p.Flashes.Pop(w, r)
	if err != nil {
		slogx.FromContext(r.Context()).Warn("failed to clear flash", slog.Any("err", err))
	}
	page.Flash = flash
	if err := p.Views.Render(w, status, view.LayoutApplication, name, page); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	return nil
}

// Notice flashes msg on the next rendered page.
func (p *Responder) Notice(w http.ResponseWriter, r *http.Request, msg string) {
	if err := p.Flashes.Notice(w, r, msg); err != nil {
		slogx.FromContext(r.Context()).Warn("failed to store flash", slog.Any("err", err))
	}
}

// Alert flashes msg as an alert on the next rendered page.
func (p *Responder) Alert(w http.ResponseWriter, r *http.Request, msg string) {
	if err := p.Flashes.Alert(w, r, msg); err != nil {
		slogx.FromContext(r.Context()).Warn("failed to store flash", slog.Any("err", err))
	}
}

// RequireUser sends signed out requests to the sign in page.
func (p *Responder) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !FromContext(r.Context()).SignedIn() {
			slogx.FromContext(r.Context()).Debug("sign in required", slog.String("path", r.URL.Path))
			p.Alert(w, r, "You need to sign in or sign up before continuing.")
			httpx.Redirect(w, r, nav.SignInPath)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Error maps err to the error pages: denied is 403, not found is 404, the
// rest is 500 and is logged at the fatal level. No error detail reaches the
// body.
func (p *Responder) Error(w http.ResponseWriter, r *http.Request, err error) {
	l := slogx.FromContext(r.Context())

	status, name := http.StatusInternalServerError, "errors/internal_error"
	switch {
	case errors.Is(err, authz.ErrDenied):
		status, name = http.StatusForbidden, "errors/forbidden"
		l.Debug("access denied", slog.String("reason", err.Error()))
	case errors.Is(err, store.ErrNotFound):
		status, name = http.StatusNotFound, "errors/not_found"
		l.Debug("not found", slog.String("reason", err.Error()))
	default:
		slogx.Fatal(r.Context(), l, "unhandled error", slog.Any("err", err))
	}

	page := p.Page(r, http.StatusText(status))
	if rerr := p.Views.Render(w, status, view.LayoutErrors, name, page); rerr != nil {
		l.Error("render error page failed", slog.Any("err", rerr))
		http.Error(w, http.StatusText(status), status)
	}
}

// recoverer turns a panic into the 500 page.
func (p *Responder) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				if v == http.ErrAbortHandler {
					panic(v)
				}
				p.Error(w, r, fmt.Errorf("panic: %v", v))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// PageParam reads ?page=N using the configured page size.
func (p *Responder) PageParam(r *http.Request) store.Page {
	n, _ := strconv.Atoi(r.URL.Query().Get("page"))
	return store.NewPage(n, p.PerPage)
}
