package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/tenantry/internal/web/authz"
	"github.com/aussiebroadwan/tenantry/internal/web/domain"
	"github.com/aussiebroadwan/tenantry/internal/web/nav"
	"github.com/aussiebroadwan/tenantry/internal/web/store"
	"github.com/aussiebroadwan/tenantry/internal/web/tenant"
	"github.com/aussiebroadwan/tenantry/pkg/httpx"
	"github.com/aussiebroadwan/tenantry/pkg/idx"
	"github.com/aussiebroadwan/tenantry/pkg/sessionx"
	"github.com/aussiebroadwan/tenantry/pkg/slogx"
)

// RequestContext is the per-request state every action reads: who is
// signed in, which account the request addresses and what they may do.
type RequestContext struct {
	User      *domain.User
	Account   *domain.Account
	Ability   *authz.Ability
	Menus     nav.Menus
	CSRFToken string
}

// SignedIn reports whether a user is attached to the request.
func (rc *RequestContext) SignedIn() bool { return rc != nil && rc.User != nil }

type requestCtxKey struct{}

func withRequestContext(ctx context.Context, rc *RequestContext) context.Context {
	return context.WithValue(ctx, requestCtxKey{}, rc)
}

// FromContext returns the RequestContext of ctx. Outside the middleware it
// returns an anonymous context with no tenant.
func FromContext(ctx context.Context) *RequestContext {
	if rc, ok := ctx.Value(requestCtxKey{}).(*RequestContext); ok {
		return rc
	}
	return &RequestContext{Ability: authz.Build(nil, nil, nil), Menus: nav.Build(nav.Input{})}
}

// Sessions is the part of sessionx.Manager the handlers use.
type Sessions interface {
	Issue(w http.ResponseWriter, userID idx.ID) error
	UserID(r *http.Request) (idx.ID, error)
	Clear(w http.ResponseWriter)
}

// systemPaths are health checks and scrapes; they never need a user or tenant and
// must answer while the database is down.
var systemPaths = map[string]bool{"/livez": true, "/readyz": true, "/metrics": true}

// requestContext builds the RequestContext: the session user, the tenant and
// the ability for the pair, then the menus derived from them.
func (rt *Router) requestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if systemPaths[r.URL.Path] {
			next.ServeHTTP(w, r)
			return
		}
		ctx := r.Context()

		user, err := rt.currentUser(w, r)
		if err != nil {
			rt.resp.Error(w, r, err)
			return
		}
		if user != nil {
			ctx = slogx.With(ctx, slog.String("user_id", user.ID))
		}

		account, err := rt.resolver.Resolve(ctx, tenant.Lookup{
			Path:      tenantSegment(r.URL.Path),
			Host:      r.Host,
			Subdomain: tenant.SubdomainLabel(r.Host, rt.baseDomain),
		})
		if err != nil {
			rt.resp.Error(w, r, err)
			return
		}
		if account != nil {
			ctx = slogx.With(ctx, slog.String("account_id", account.ID))
		}

		ability, err := authz.ForRequest(ctx, rt.store.UserPermissions(), user, account)
		if err != nil {
			rt.resp.Error(w, r, err)
			return
		}

		rc := &RequestContext{
			User:      user,
			Account:   account,
			Ability:   ability,
			CSRFToken: httpx.CSRFToken(r),
		}
		rc.Menus = nav.Build(nav.Input{
			SignedIn:    rc.SignedIn(),
			CurrentUser: user,
			Account:     account,
			Can:         ability.Can,
		})

		next.ServeHTTP(w, r.WithContext(withRequestContext(ctx, rc)))
	})
}

// currentUser loads the session user. A stale or tampered cookie is cleared
// and the request continues signed out.
func (rt *Router) currentUser(w http.ResponseWriter, r *http.Request) (*domain.User, error) {
	id, err := rt.sessions.UserID(r)
	switch {
	case errors.Is(err, sessionx.ErrNoSession):
		return nil, nil
	case err != nil:
		slogx.FromContext(r.Context()).Debug("dropping invalid session", slog.Any("err", err))
		rt.sessions.Clear(w)
		return nil, nil
	}

	u, err := rt.store.Users().GetUserByID(r.Context(), id.String())
	if errors.Is(err, store.ErrNotFound) {
		rt.sessions.Clear(w)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// tenantSegment returns {path} of a /t/{path}/... URL. Middleware runs
// before the mux has matched, so the pattern value is not available yet.
func tenantSegment(p string) string {
	rest, ok := strings.CutPrefix(p, "/t/")
	if !ok {
		return ""
	}
	seg, _, _ := strings.Cut(rest, "/")
	return seg
}
