package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/tenantry/internal/web/authz"
	"github.com/aussiebroadwan/tenantry/internal/web/domain"
	"github.com/aussiebroadwan/tenantry/internal/web/nav"
	"github.com/aussiebroadwan/tenantry/internal/web/service"
	"github.com/aussiebroadwan/tenantry/internal/web/store"
	"github.com/aussiebroadwan/tenantry/internal/web/view"
	"github.com/aussiebroadwan/tenantry/pkg/httpx"
	"github.com/aussiebroadwan/tenantry/pkg/idx"
)

// UsersHandler is the self service profile area.
type UsersHandler struct {
	*Responder
	UserService *service.UserService
}

type userEditData struct {
	User   domain.User
	Form   service.ProfileParams
	Errors service.ValidationErrors
}

func (h *UsersHandler) Index(w http.ResponseWriter, r *http.Request) error {
	rc := FromContext(r.Context())
	if err := rc.Ability.Authorize(authz.ActionIndex, authz.KindUser); err != nil {
		return err
	}
	httpx.Redirect(w, r, nav.UserPath(rc.User.ID))
	return nil
}

func (h *UsersHandler) Show(w http.ResponseWriter, r *http.Request) error {
	u, err := h.locate(r, authz.ActionShow)
	if err != nil {
		return err
	}
	page := h.userPage(r, u, "", "")
	page.Data = struct{ User domain.User }{User: u}
	return h.Render(w, r, http.StatusOK, "users/show", page)
}

func (h *UsersHandler) Edit(w http.ResponseWriter, r *http.Request) error {
	u, err := h.locate(r, authz.ActionEdit)
	if err != nil {
		return err
	}
	page := h.userPage(r, u, "Edit", "/edit")
	page.Data = userEditData{
		User: u,
		Form: service.ProfileParams{Email: u.Email, FirstName: u.FirstName, LastName: u.LastName},
	}
	return h.Render(w, r, http.StatusOK, "users/edit", page)
}

func (h *UsersHandler) Update(w http.ResponseWriter, r *http.Request) error {
	u, err := h.locate(r, authz.ActionUpdate)
	if err != nil {
		return err
	}

	params := profileParams(r)
	updated, err := h.UserService.UpdateProfile(r.Context(), FromContext(r.Context()).User, u.ID, params)

	var verrs service.ValidationErrors
	if errors.As(err, &verrs) {
		params.Password, params.PasswordConfirmation = "", ""
		page := h.userPage(r, u, "Edit", "/edit")
		page.Data = userEditData{User: u, Form: params, Errors: verrs}
		return h.Render(w, r, http.StatusOK, "users/edit", page)
	}
	if err != nil {
		return err
	}

	h.Notice(w, r, "User was successfully updated.")
	httpx.Redirect(w, r, nav.UserPath(updated.ID))
	return nil
}

func (h *UsersHandler) Accounts(w http.ResponseWriter, r *http.Request) error {
	u, err := h.locate(r, authz.ActionAccounts)
	if err != nil {
		return err
	}

	perms, err := h.UserService.ListAccounts(r.Context(), u.ID, h.PageParam(r))
	if err != nil {
		return err
	}

	page := h.userPage(r, u, "Accounts", "/accounts")
	page.Data = struct {
		Permissions store.Paged[domain.UserPermission]
		Pager       view.Pager
	}{perms, view.NewPager(nav.UserPath(u.ID)+"/accounts", perms)}
	return h.Render(w, r, http.StatusOK, "users/accounts", page)
}

func (h *UsersHandler) UserInvitations(w http.ResponseWriter, r *http.Request) error {
	u, err := h.locate(r, authz.ActionUserInvitations)
	if err != nil {
		return err
	}

	invs, err := h.UserService.ListInvitations(r.Context(), u, h.PageParam(r))
	if err != nil {
		return err
	}

	page := h.userPage(r, u, "User Invitations", "/user_invitations")
	page.Data = struct {
		Invitations store.Paged[domain.UserInvitation]
		Pager       view.Pager
	}{invs, view.NewPager(nav.UserPath(u.ID)+"/user_invitations", invs)}
	return h.Render(w, r, http.StatusOK, "users/user_invitations", page)
}

// locate loads {id} and authorizes action on it.
func (h *UsersHandler) locate(r *http.Request, action authz.Action) (domain.User, error) {
	id := r.PathValue("id")
	if !idx.Valid(id) {
		return domain.User{}, store.ErrNotFound
	}
	u, err := h.UserService.GetUserByID(r.Context(), id)
	if err != nil {
		return domain.User{}, err
	}
	if err := FromContext(r.Context()).Ability.Authorize(action, &u); err != nil {
		return domain.User{}, err
	}
	return u, nil
}

// userPage sets the Users > user breadcrumbs, plus crumb linking to the
// user path with suffix when given.
func (h *UsersHandler) userPage(r *http.Request, u domain.User, crumb, suffix string) *view.Page {
	title := u.String()
	if crumb != "" {
		title = crumb + " " + title
	}
	page := h.Page(r, title)
	page.NavbarItem = "welcome"
	page.Breadcrumbs = nav.Breadcrumbs{}.
		Add("Users", "/users").
		Add(u.String(), nav.UserPath(u.ID))
	if crumb != "" {
		page.Breadcrumbs = page.Breadcrumbs.Add(crumb, nav.UserPath(u.ID)+suffix)
	}
	return page
}

// profileParams whitelists the user[...] form fields.
func profileParams(r *http.Request) service.ProfileParams {
	return service.ProfileParams{
		Email:                r.PostFormValue("user[email]"),
		FirstName:            r.PostFormValue("user[first_name]"),
		LastName:             r.PostFormValue("user[last_name]"),
		Password:             r.PostFormValue("user[password]"),
		PasswordConfirmation: r.PostFormValue("user[password_confirmation]"),
	}
}
