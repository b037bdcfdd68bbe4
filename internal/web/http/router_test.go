package http_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/tenantry/internal/web/domain"
	"github.com/aussiebroadwan/tenantry/internal/web/nav"
	"github.com/aussiebroadwan/tenantry/internal/web/view"
	"github.com/aussiebroadwan/tenantry/pkg/cryptox"
	"github.com/aussiebroadwan/tenantry/pkg/httpx"
	"github.com/aussiebroadwan/tenantry/pkg/idx"
	"github.com/aussiebroadwan/tenantry/pkg/sessionx"
)

func TestProtectedActionsRedirectToSignIn(t *testing.T) {
	h := newHarness(t)
	u := h.user("ada@example.com", false)
	h.account("Acme", "acme", "")

	paths := []string{
		"/users",
		"/users/" + u.ID,
		"/users/" + u.ID + "/edit",
		"/users/" + u.ID + "/accounts",
		"/users/" + u.ID + "/user_invitations",
		"/admin/invoices",
		"/admin/invoices/" + idx.New().String(),
		"/t/acme/",
		"/t/acme/settings",
		"/t/acme/invoices",
	}
	for _, p := range paths {
		t.Run(p, func(t *testing.T) {
			rec := h.get(p, nil)
			require.Equal(t, http.StatusFound, rec.Code)
			require.Equal(t, nav.SignInPath, rec.Header().Get("Location"))
			_, rendered := h.views.Last()
			require.False(t, rendered)
		})
	}
}

func TestUnauthenticatedUpdateChangesNothing(t *testing.T) {
	h := newHarness(t)
	u := h.user("ada@example.com", false)

	rec := h.do(h.request(http.MethodPatch, "/users/"+u.ID, nil, url.Values{
		"user[email]":      {"mallory@example.com"},
		"user[first_name]": {"Mallory"},
		"user[last_name]":  {"Evil"},
	}))
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, nav.SignInPath, rec.Header().Get("Location"))

	got, err := h.store.Users().GetUserByID(context.Background(), u.ID)
	require.NoError(t, err)
	require.Equal(t, u.Email, got.Email)
	require.Equal(t, u.FirstName, got.FirstName)
}

func TestForbiddenRendersErrorLayout(t *testing.T) {
	h := newHarness(t)
	ada := h.user("ada@example.com", false)
	bob := h.user("bob@example.com", false)

	for _, p := range []string{
		"/users/" + bob.ID,
		"/users/" + bob.ID + "/edit",
		"/users/" + bob.ID + "/accounts",
		"/users/" + bob.ID + "/user_invitations",
		"/admin/invoices",
	} {
		t.Run(p, func(t *testing.T) {
			rec := h.get(p, &ada)
			require.Equal(t, http.StatusForbidden, rec.Code)

			r := h.rendered()
			require.Equal(t, view.LayoutErrors, r.Layout)
			require.Equal(t, "errors/forbidden", r.Template)
			require.NotContains(t, rec.Body.String(), bob.Email)
		})
	}
}

func TestForbiddenUpdatePersistsNothing(t *testing.T) {
	h := newHarness(t)
	ada := h.user("ada@example.com", false)
	bob := h.user("bob@example.com", false)

	rec := h.do(h.request(http.MethodPatch, "/users/"+bob.ID, &ada, url.Values{
		"user[email]":      {"bob@evil.example"},
		"user[first_name]": {"Bob"},
		"user[last_name]":  {"Owned"},
	}))
	require.Equal(t, http.StatusForbidden, rec.Code)

	got, err := h.store.Users().GetUserByID(context.Background(), bob.ID)
	require.NoError(t, err)
	require.Equal(t, bob.Email, got.Email)
}

func TestNotFound(t *testing.T) {
	h := newHarness(t)
	admin := h.user("root@example.com", true)

	for _, p := range []string{
		"/users/" + idx.New().String(),
		"/users/not-an-id",
		"/admin/invoices/" + idx.New().String(),
		"/admin/invoices?account_id=" + idx.New().String(),
		"/t/missing/",
		"/no/such/route",
	} {
		t.Run(p, func(t *testing.T) {
			rec := h.get(p, &admin)
			require.Equal(t, http.StatusNotFound, rec.Code)

			r := h.rendered()
			require.Equal(t, view.LayoutErrors, r.Layout)
			require.Equal(t, "errors/not_found", r.Template)
		})
	}
}

func TestPanicRendersInternalError(t *testing.T) {
	h := newHarness(t)
	h.router.Mux.HandleFunc("GET /boom", func(http.ResponseWriter, *http.Request) {
		panic("secret database password in panic")
	})

	rec := h.get("/boom", nil)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.NotContains(t, rec.Body.String(), "secret database password")

	r := h.rendered()
	require.Equal(t, view.LayoutErrors, r.Layout)
	require.Equal(t, "errors/internal_error", r.Template)
	require.Contains(t, h.logs.String(), `"level":"FATAL"`)
}

func TestCSRFRequiredOnUnsafeMethods(t *testing.T) {
	h := newHarness(t)
	u := h.user("ada@example.com", false)

	req := h.request(http.MethodPatch, "/users/"+u.ID, &u, url.Values{"user[first_name]": {"X"}})
	req.Form = nil
	req.PostForm = nil
	req.Body = http.NoBody
	rec := h.do(req)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestUsersIndexRedirectsToCurrentUser(t *testing.T) {
	h := newHarness(t)
	u := h.user("ada@example.com", false)

	rec := h.get("/users", &u)
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/users/"+u.ID, rec.Header().Get("Location"))
}

func TestShowAndEditBreadcrumbs(t *testing.T) {
	h := newHarness(t)
	u := h.user("ada@example.com", false)

	rec := h.get("/users/"+u.ID, &u)
	require.Equal(t, http.StatusOK, rec.Code)
	r := h.rendered()
	require.Equal(t, "users/show", r.Template)
	require.Equal(t, view.LayoutApplication, r.Layout)
	require.Equal(t, []string{"Users", u.String()}, titles(r.Page.Breadcrumbs))
	require.Contains(t, rec.Body.String(), u.Email)

	rec = h.get("/users/"+u.ID+"/edit", &u)
	require.Equal(t, http.StatusOK, rec.Code)
	r = h.rendered()
	require.Equal(t, "users/edit", r.Template)
	require.Equal(t, []string{"Users", u.String(), "Edit"}, titles(r.Page.Breadcrumbs))
	require.Contains(t, rec.Body.String(), `value="`+u.Email+`"`)
}

func TestSuperAdminCanShowAnyUser(t *testing.T) {
	h := newHarness(t)
	admin := h.user("root@example.com", true)
	bob := h.user("bob@example.com", false)

	rec := h.get("/users/"+bob.ID, &admin)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), bob.Email)
}

func TestUpdateWithBlankPasswordKeepsHash(t *testing.T) {
	h := newHarness(t)
	u := h.user("ada@example.com", false)

	rec := h.do(h.request(http.MethodPost, "/users/"+u.ID, &u, url.Values{
		"_method":                     {"PATCH"},
		"user[email]":                 {"ada.lovelace@example.com"},
		"user[first_name]":            {"Ada"},
		"user[last_name]":             {"Lovelace"},
		"user[password]":              {""},
		"user[password_confirmation]": {""},
		"user[super_admin]":           {"1"},
	}))
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/users/"+u.ID, rec.Header().Get("Location"))
	require.NotNil(t, cookie(rec, httpx.FlashCookieName))

	got, err := h.store.Users().GetUserByID(context.Background(), u.ID)
	require.NoError(t, err)
	require.Equal(t, "ada.lovelace@example.com", got.Email)
	require.Equal(t, "Ada", got.FirstName)
	require.Equal(t, "Lovelace", got.LastName)
	require.Equal(t, u.PasswordHash, got.PasswordHash)
	require.False(t, got.SuperAdmin, "only whitelisted fields are written")
	require.Contains(t, h.logs.String(), "password is blank")

	evs, err := h.store.AppEvents().ListRecentAppEvents(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, evs, 1)
	require.Equal(t, domain.EventSuccess, evs[0].Level)
	require.Equal(t, "Updated user Ada Lovelace", evs[0].Message)
	require.Equal(t, u.ID, evs[0].UserID)
	require.Equal(t, "user", evs[0].RelatedType)
	require.Equal(t, u.ID, evs[0].RelatedID)
}

func TestUpdateChangesPassword(t *testing.T) {
	h := newHarness(t)
	u := h.user("ada@example.com", false)

	rec := h.do(h.request(http.MethodPatch, "/users/"+u.ID, &u, url.Values{
		"user[email]":                 {u.Email},
		"user[first_name]":            {u.FirstName},
		"user[last_name]":             {u.LastName},
		"user[password]":              {"a much better secret"},
		"user[password_confirmation]": {"a much better secret"},
	}))
	require.Equal(t, http.StatusFound, rec.Code)

	got, err := h.store.Users().GetUserByID(context.Background(), u.ID)
	require.NoError(t, err)
	require.NotEqual(t, u.PasswordHash, got.PasswordHash)
	require.NoError(t, cryptox.VerifyPassword("a much better secret", got.PasswordHash))
}

func TestUpdateWithMismatchedPasswordRendersEdit(t *testing.T) {
	h := newHarness(t)
	u := h.user("ada@example.com", false)

	rec := h.do(h.request(http.MethodPatch, "/users/"+u.ID, &u, url.Values{
		"user[email]":                 {"changed@example.com"},
		"user[first_name]":            {"Changed"},
		"user[last_name]":             {"Name"},
		"user[password]":              {"first secret"},
		"user[password_confirmation]": {"second secret"},
	}))
	require.Equal(t, http.StatusOK, rec.Code)

	r := h.rendered()
	require.Equal(t, "users/edit", r.Template)
	require.Equal(t, []string{"Users", u.String(), "Edit"}, titles(r.Page.Breadcrumbs))

	body := rec.Body.String()
	require.Contains(t, body, "Password confirmation doesn&#39;t match Password")
	require.Contains(t, body, `value="changed@example.com"`)
	require.NotContains(t, body, "first secret")

	got, err := h.store.Users().GetUserByID(context.Background(), u.ID)
	require.NoError(t, err)
	require.Equal(t, u.Email, got.Email)
	require.Equal(t, u.PasswordHash, got.PasswordHash)

	evs, err := h.store.AppEvents().ListRecentAppEvents(context.Background(), 10)
	require.NoError(t, err)
	require.Empty(t, evs)
}

func TestUpdateWithTakenEmail(t *testing.T) {
	h := newHarness(t)
	u := h.user("ada@example.com", false)
	h.user("bob@example.com", false)

	rec := h.do(h.request(http.MethodPatch, "/users/"+u.ID, &u, url.Values{
		"user[email]":      {"BOB@example.com"},
		"user[first_name]": {"Ada"},
		"user[last_name]":  {"Tester"},
	}))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Email has already been taken")
}

func TestUserAccountsAndInvitations(t *testing.T) {
	h := newHarness(t)
	u := h.user("ada@example.com", false)
	owner := h.user("owner@example.com", false)
	acme := h.account("Acme", "acme", "")
	globex := h.account("Globex", "globex", "")
	h.grant(u, acme, domain.RoleMember)

	require.NoError(t, h.store.UserInvitations().CreateUserInvitation(context.Background(), domain.UserInvitation{
		ID: idx.New().String(), AccountID: globex.ID, Email: u.Email,
		InvitedByID: owner.ID, Role: domain.RoleAdmin,
	}))

	rec := h.get("/users/"+u.ID+"/accounts", &u)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, []string{"Users", u.String(), "Accounts"}, titles(h.rendered().Page.Breadcrumbs))
	require.Contains(t, rec.Body.String(), `href="/t/acme/"`)
	require.NotContains(t, rec.Body.String(), "Globex")

	rec = h.get("/users/"+u.ID+"/user_invitations", &u)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, []string{"Users", u.String(), "User Invitations"}, titles(h.rendered().Page.Breadcrumbs))
	require.Contains(t, rec.Body.String(), "Globex")
}

func TestAdminInvoicesForSuperAdmin(t *testing.T) {
	h := newHarness(t)
	admin := h.user("root@example.com", true)
	acme := h.account("Acme", "acme", "")
	globex := h.account("Globex", "globex", "")
	h.invoice(acme, "ACME-1")
	h.invoice(acme, "ACME-2")
	gx := h.invoice(globex, "GLOBEX-1")

	rec := h.get("/admin/invoices", &admin)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 3, strings.Count(rec.Body.String(), "data-invoice-id="))
	require.Equal(t, "invoices", h.rendered().Page.SidebarItem)

	rec = h.get("/admin/invoices?account_id="+globex.ID, &admin)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	require.Equal(t, 1, strings.Count(body, "data-invoice-id="))
	require.Contains(t, body, gx.Number)
	require.Contains(t, body, "Invoices for Globex")
	require.Equal(t, "accounts", h.rendered().Page.SidebarItem)

	rec = h.get("/admin/invoices/"+gx.ID, &admin)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "admin/invoices/show", h.rendered().Template)
	require.Equal(t, "invoices", h.rendered().Page.SidebarItem)
	require.Contains(t, rec.Body.String(), "Globex")
}

func TestAdminInvoicesDeniedToTenantMembers(t *testing.T) {
	h := newHarness(t)
	member := h.user("ada@example.com", false)
	owner := h.user("owner@example.com", false)
	acme := h.account("Acme", "acme", "acme")
	h.grant(member, acme, domain.RoleMember)
	h.grant(owner, acme, domain.RoleOwner)
	mine := h.invoice(acme, "ACME-1")

	for _, u := range []domain.User{member, owner} {
		for _, target := range []string{
			"/admin/invoices",
			"/admin/invoices?account_id=" + acme.ID,
			"/admin/invoices/" + mine.ID,
		} {
			for _, host := range []string{"acme." + baseDomain, baseDomain} {
				req := h.request(http.MethodGet, target, &u, nil)
				req.Host = host
				rec := h.do(req)
				require.Equal(t, http.StatusForbidden, rec.Code, "%s %s%s", u.Email, host, target)
				require.NotContains(t, rec.Body.String(), mine.Number)
				require.Equal(t, "errors/forbidden", h.rendered().Template)
			}
		}
	}

	// The same invoice stays reachable through the tenant pages.
	req := h.request(http.MethodGet, "/t/acme/invoices/"+mine.ID, &member, nil)
	rec := h.do(req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), mine.Number)
}

func TestSidebarSettingsFollowsAbility(t *testing.T) {
	h := newHarness(t)
	owner := h.user("owner@example.com", false)
	member := h.user("member@example.com", false)
	admin := h.user("root@example.com", true)
	acme := h.account("Acme", "acme", "")
	h.grant(owner, acme, domain.RoleOwner)
	h.grant(member, acme, domain.RoleMember)

	tests := []struct {
		name    string
		user    domain.User
		path    string
		sidebar []string
	}{
		{"owner in tenant", owner, "/t/acme/", []string{"dashboard", "settings"}},
		{"member in tenant", member, "/t/acme/", []string{"dashboard"}},
		{"super admin in tenant", admin, "/t/acme/", []string{"dashboard", "settings"}},
		{"owner without tenant", owner, "/users/" + owner.ID, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := h.get(tt.path, &tt.user)
			require.Equal(t, http.StatusOK, rec.Code)
			require.Equal(t, tt.sidebar, keys(h.rendered().Page.Menus.Sidebar))
		})
	}
}

func TestTenantPages(t *testing.T) {
	h := newHarness(t)
	owner := h.user("owner@example.com", false)
	member := h.user("member@example.com", false)
	outsider := h.user("outsider@example.com", false)
	acme := h.account("Acme", "acme", "")
	globex := h.account("Globex", "globex", "")
	h.grant(owner, acme, domain.RoleOwner)
	h.grant(member, acme, domain.RoleMember)
	mine := h.invoice(acme, "ACME-1")
	theirs := h.invoice(globex, "GLOBEX-1")

	rec := h.get("/t/acme/", &member)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "tenant/dashboard", h.rendered().Template)
	require.Equal(t, "dashboard", h.rendered().Page.SidebarItem)
	require.Contains(t, rec.Body.String(), `href="/t/acme/invoices"`)

	rec = h.get("/t/acme/settings", &member)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = h.get("/t/acme/settings", &owner)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "settings", h.rendered().Page.SidebarItem)

	rec = h.get("/t/acme/invoices", &member)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), mine.Number)
	require.NotContains(t, rec.Body.String(), theirs.Number)
	require.Contains(t, rec.Body.String(), `href="/t/acme/invoices/`+mine.ID+`"`)

	rec = h.get("/t/acme/invoices/"+mine.ID, &member)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = h.get("/t/acme/invoices/"+theirs.ID, &member)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = h.get("/t/acme/", &outsider)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = h.get("/t/acme", &member)
	require.Equal(t, http.StatusMovedPermanently, rec.Code)
	require.Equal(t, "/t/acme/", rec.Header().Get("Location"))
}

func TestPathWinsOverHost(t *testing.T) {
	h := newHarness(t)
	member := h.user("member@example.com", false)
	acme := h.account("Acme", "acme", "acme")
	h.grant(member, acme, domain.RoleMember)

	req := h.request(http.MethodGet, "/t/unknown/", &member, nil)
	req.Host = "acme." + baseDomain
	rec := h.do(req)
	require.Equal(t, http.StatusNotFound, rec.Code)

	req = h.request(http.MethodGet, "/users/"+member.ID, &member, nil)
	req.Host = "acme." + baseDomain + ":8080"
	rec = h.do(req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, []string{"dashboard"}, keys(h.rendered().Page.Menus.Sidebar))
}

func TestPublicPagesAndMenus(t *testing.T) {
	h := newHarness(t)
	u := h.user("ada@example.com", false)

	rec := h.get("/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	r := h.rendered()
	require.Equal(t, "public/home", r.Template)
	require.Equal(t, []string{"home", "plans", "signin"}, keys(r.Page.Menus.Right))
	require.Empty(t, r.Page.Menus.Left)
	require.Empty(t, r.Page.Menus.Sidebar)

	rec = h.get("/pricing", &u)
	require.Equal(t, http.StatusOK, rec.Code)
	r = h.rendered()
	require.Equal(t, "public/pricing", r.Template)
	require.Equal(t, []string{"welcome"}, keys(r.Page.Menus.Right))
	require.Equal(t, "Welcome "+u.String(), r.Page.Menus.Right[0].Title)
	require.Equal(t, "/users/"+u.ID, r.Page.Menus.Right[0].URL)
}

func TestSignInAndOut(t *testing.T) {
	h := newHarness(t)
	u := h.user("ada@example.com", false)

	rec := h.get(nav.SignInPath, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "sessions/new", h.rendered().Template)

	rec = h.do(h.request(http.MethodPost, nav.SignInPath, nil, url.Values{
		"user[email]":    {u.Email},
		"user[password]": {"wrong password"},
	}))
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Contains(t, rec.Body.String(), "Invalid Email or password.")
	require.Nil(t, cookie(rec, sessionx.DefaultCookieName))

	rec = h.do(h.request(http.MethodPost, nav.SignInPath, nil, url.Values{
		"user[email]":    {u.Email},
		"user[password]": {testPassword},
	}))
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/users/"+u.ID, rec.Header().Get("Location"))
	session := cookie(rec, sessionx.DefaultCookieName)
	require.NotNil(t, session)

	req := h.request(http.MethodGet, "/users/"+u.ID, nil, nil)
	req.AddCookie(session)
	rec = h.do(req)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = h.do(h.request(http.MethodPost, "/users/sign_out", &u, url.Values{"_method": {"DELETE"}}))
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/", rec.Header().Get("Location"))
	cleared := cookie(rec, sessionx.DefaultCookieName)
	require.NotNil(t, cleared)
	require.Negative(t, cleared.MaxAge)
}

func TestSessionForDeletedUserIsDropped(t *testing.T) {
	h := newHarness(t)
	ghost := domain.User{ID: idx.New().String(), Email: "ghost@example.com"}

	rec := h.get("/users/"+ghost.ID, &ghost)
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, nav.SignInPath, rec.Header().Get("Location"))
	cleared := cookie(rec, sessionx.DefaultCookieName)
	require.NotNil(t, cleared)
	require.Negative(t, cleared.MaxAge)
}

func TestFlashShownOnce(t *testing.T) {
	h := newHarness(t)
	u := h.user("ada@example.com", false)

	rec := h.do(h.request(http.MethodPost, "/users/"+u.ID, &u, url.Values{
		"_method":                     {"PATCH"},
		"user[email]":                 {u.Email},
		"user[first_name]":            {"Ada"},
		"user[last_name]":             {"Lovelace"},
		"user[password]":              {""},
		"user[password_confirmation]": {""},
	}))
	require.Equal(t, http.StatusFound, rec.Code)
	flash := cookie(rec, httpx.FlashCookieName)
	require.NotNil(t, flash)

	req := h.request(http.MethodGet, "/users/"+u.ID, &u, nil)
	req.AddCookie(flash)
	rec = h.do(req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "User was successfully updated.", h.rendered().Page.Flash.Notice)
	require.Contains(t, rec.Body.String(), "User was successfully updated.")
	cleared := cookie(rec, httpx.FlashCookieName)
	require.NotNil(t, cleared)
	require.Negative(t, cleared.MaxAge)

	rec = h.get("/users/"+u.ID, &u)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, h.rendered().Page.Flash.Notice)
	require.Nil(t, cookie(rec, httpx.FlashCookieName))
}

func TestHealthAndMetrics(t *testing.T) {
	h := newHarness(t)

	rec := h.get("/livez", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var live map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &live))
	require.Equal(t, "ok", live["status"])
	require.Equal(t, "test", live["version"])

	rec = h.get("/readyz", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var ready struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ready))
	require.Equal(t, "ok", ready.Status)
	require.Equal(t, "ok", ready.Checks["database"])

	rec = h.get("/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `tenantry_http_requests_total{method="GET",path="/readyz",status="200"} 1`)
}

func TestReadyzReportsDatabaseFailure(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.store.Close())

	rec := h.get("/readyz", nil)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.Contains(t, rec.Body.String(), `"degraded"`)
}

func TestPaginationLinksKeepAccountFilter(t *testing.T) {
	h := newHarness(t)
	admin := h.user("root@example.com", true)
	acme := h.account("Acme", "acme", "")
	for i := range 30 {
		h.invoice(acme, fmt.Sprintf("ACME-%03d", i))
	}

	rec := h.get("/admin/invoices?account_id="+acme.ID+"&page=0", &admin)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	require.Equal(t, 25, strings.Count(body, "data-invoice-id="))
	require.Contains(t, body, `data-page="1"`)
	require.Contains(t, body, `account_id=`+acme.ID+`&amp;page=2`)

	rec = h.get("/admin/invoices?account_id="+acme.ID+"&page=2", &admin)
	require.Equal(t, 5, strings.Count(rec.Body.String(), "data-invoice-id="))

	rec = h.get("/admin/invoices?page=9223372036854775807", &admin)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Zero(t, strings.Count(rec.Body.String(), "data-invoice-id="))
}
