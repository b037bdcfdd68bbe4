package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/tenantry/internal/web/nav"
	"github.com/aussiebroadwan/tenantry/internal/web/service"
	"github.com/aussiebroadwan/tenantry/pkg/httpx"
	"github.com/aussiebroadwan/tenantry/pkg/idx"
)

// SessionsHandler signs users in and out.
type SessionsHandler struct {
	*Responder
	UserService *service.UserService
	Sessions    Sessions
}

type signInData struct {
	Email string
	Error string
}

func (h *SessionsHandler) New(w http.ResponseWriter, r *http.Request) error {
	if rc := FromContext(r.Context()); rc.SignedIn() {
		httpx.Redirect(w, r, nav.UserPath(rc.User.ID))
		return nil
	}
	return h.renderForm(w, r, http.StatusOK, signInData{})
}

func (h *SessionsHandler) Create(w http.ResponseWriter, r *http.Request) error {
	email := r.PostFormValue("user[email]")

	u, err := h.UserService.Authenticate(r.Context(), email, r.PostFormValue("user[password]"))
	if errors.Is(err, service.ErrInvalidCredentials) {
		return h.renderForm(w, r, http.StatusUnprocessableEntity, signInData{
			Email: email,
			Error: "Invalid Email or password.",
		})
	}
	if err != nil {
		return err
	}

	if err := h.Sessions.Issue(w, idx.ID(u.ID)); err != nil {
		return err
	}
	h.Notice(w, r, "Signed in successfully.")
	httpx.Redirect(w, r, nav.UserPath(u.ID))
	return nil
}

func (h *SessionsHandler) Destroy(w http.ResponseWriter, r *http.Request) error {
	h.Sessions.Clear(w)
	h.Notice(w, r, "Signed out successfully.")
	httpx.Redirect(w, r, "/")
	return nil
}

func (h *SessionsHandler) renderForm(w http.ResponseWriter, r *http.Request, status int, d signInData) error {
	page := h.Page(r, "Log In")
	page.NavbarItem = "signin"
	page.Data = d
	return h.Render(w, r, status, "sessions/new", page)
}
