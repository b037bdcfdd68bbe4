package http

import (
	"crypto/hmac"
	"crypto/sha256"
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/tenantry/internal/web/service"
	"github.com/aussiebroadwan/tenantry/internal/web/store"
	"github.com/aussiebroadwan/tenantry/internal/web/tenant"
	"github.com/aussiebroadwan/tenantry/internal/web/view"
	"github.com/aussiebroadwan/tenantry/pkg/httpx"
	"github.com/aussiebroadwan/tenantry/pkg/metricsx"
	"github.com/aussiebroadwan/tenantry/pkg/slogx"
)

// Options are the router settings that come from configuration.
type Options struct {
	BuildVersion  string
	BaseDomain    string
	SecureCookies bool
	PerPage       int

	// Secret keys the CSRF and flash cookies. At least 32 bytes.
	Secret []byte
}

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	baseDomain   string
	startTime    time.Time
	logger       *slog.Logger

	store    store.Store
	sessions Sessions
	resolver *tenant.Resolver
	resp     *Responder

	UserService    *service.UserService
	InvoiceService *service.InvoiceService
	Metrics        *metricsx.Metrics // Optional: /metrics is not served without it
}

func NewRouter(
	opts Options,
	st store.Store,
	sessions Sessions,
	views view.Renderer,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: opts.BuildVersion,
		baseDomain:   opts.BaseDomain,
		startTime:    time.Now(),
		logger:       logger,
		store:        st,
		sessions:     sessions,
		resolver:     &tenant.Resolver{Accounts: st.Accounts()},
		resp: &Responder{
			Views:   views,
			Flashes: httpx.NewFlashes(deriveKey(opts.Secret, "flash"), opts.SecureCookies),
			PerPage: opts.PerPage,
		},
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		r.resp.recoverer,
		httpx.MethodOverride,
		httpx.CSRF(deriveKey(opts.Secret, "csrf"), opts.SecureCookies),
		r.requestContext,
	}

	return r
}

// deriveKey gives each cookie its own 32 byte key from secret.
func deriveKey(secret []byte, purpose string) []byte {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(purpose))
	return mac.Sum(nil)
}

// ApplyRoutes registers every route. Services must be set before calling it.
func (r *Router) ApplyRoutes() {
	if r.Metrics != nil {
		// Outermost so the request log and error pages are measured too.
		r.middlewares = append([]httpx.Middleware{r.Metrics.Middleware}, r.middlewares...)
	}

	r.registerPublic()
	r.registerSessions()
	r.registerUsers()
	r.registerAdminInvoices()
	r.registerTenant()
	r.registerSystem()

	// Anything unmatched renders the not found page.
	r.Mux.Handle("/", r.resp.Handle(func(http.ResponseWriter, *http.Request) error {
		return store.ErrNotFound
	}))
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerPublic() {
	h := &PublicHandler{Responder: r.resp}

	r.Mux.Handle("GET /{$}", r.resp.Handle(h.Home))
	r.Mux.Handle("GET /pricing", r.resp.Handle(h.Pricing))
}

func (r *Router) registerSessions() {
	h := &SessionsHandler{
		Responder:   r.resp,
		UserService: r.UserService,
		Sessions:    r.sessions,
	}

	r.Mux.Handle("GET /users/sign_in",
		httpx.Chain(r.resp.Handle(h.New),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)

	// Rate limited by IP + email to slow down password guessing
	r.Mux.Handle("POST /users/sign_in",
		httpx.Chain(r.resp.Handle(h.Create),
			httpx.RateLimitByIPAndFormField(httpx.StrictLimit, "user[email]"),
		),
	)

	signOut := r.resp.Handle(h.Destroy)
	r.Mux.Handle("POST /users/sign_out", signOut)
	r.Mux.Handle("DELETE /users/sign_out", signOut)
}

func (r *Router) registerUsers() {
	h := &UsersHandler{Responder: r.resp, UserService: r.UserService}

	secured := func(a Action) http.Handler {
		return httpx.Chain(r.resp.Handle(a), r.resp.RequireUser)
	}

	r.Mux.Handle("GET /users", secured(h.Index))
	r.Mux.Handle("GET /users/{id}", secured(h.Show))
	r.Mux.Handle("GET /users/{id}/edit", secured(h.Edit))
	r.Mux.Handle("PATCH /users/{id}", secured(h.Update))
	r.Mux.Handle("PUT /users/{id}", secured(h.Update))
	r.Mux.Handle("GET /users/{id}/accounts", secured(h.Accounts))
	r.Mux.Handle("GET /users/{id}/user_invitations", secured(h.UserInvitations))
}

func (r *Router) registerAdminInvoices() {
	h := &AdminInvoicesHandler{Responder: r.resp, InvoiceService: r.InvoiceService}

	r.Mux.Handle("GET /admin/invoices", httpx.Chain(r.resp.Handle(h.Index), r.resp.RequireUser))
	r.Mux.Handle("GET /admin/invoices/{id}", httpx.Chain(r.resp.Handle(h.Show), r.resp.RequireUser))
}

func (r *Router) registerTenant() {
	h := &TenantHandler{Responder: r.resp, InvoiceService: r.InvoiceService}

	secured := func(a Action) http.Handler {
		return httpx.Chain(r.resp.Handle(a), r.resp.RequireUser)
	}

	r.Mux.Handle("GET /t/{path}", http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, req.URL.Path+"/", http.StatusMovedPermanently)
	}))
	r.Mux.Handle("GET /t/{path}/{$}", secured(h.Dashboard))
	r.Mux.Handle("GET /t/{path}/settings", secured(h.Settings))
	r.Mux.Handle("GET /t/{path}/invoices", secured(h.Invoices))
	r.Mux.Handle("GET /t/{path}/invoices/{id}", secured(h.Invoice))
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	if r.Metrics != nil {
		r.Mux.Handle("GET /metrics", r.Metrics.Handler())
	}
}
