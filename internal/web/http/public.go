package http

import (
	"net/http"

	"github.com/aussiebroadwan/tenantry/internal/web/authz"
)

// Plan is one row of the pricing table.
type Plan struct {
	Name  string
	Users string
	Price string
}

var plans = []Plan{
	{Name: "Starter", Users: "Up to 3", Price: "Free"},
	{Name: "Team", Users: "Up to 25", Price: "49.00 AUD / month"},
	{Name: "Business", Users: "Unlimited", Price: "199.00 AUD / month"},
}

type PublicHandler struct {
	*Responder
}

func (h *PublicHandler) Home(w http.ResponseWriter, r *http.Request) error {
	if err := FromContext(r.Context()).Ability.Authorize(authz.ActionShow, authz.KindHome); err != nil {
		return err
	}
	page := h.Page(r, "")
	page.NavbarItem = "home"
	return h.Render(w, r, http.StatusOK, "public/home", page)
}

func (h *PublicHandler) Pricing(w http.ResponseWriter, r *http.Request) error {
	if err := FromContext(r.Context()).Ability.Authorize(authz.ActionShow, authz.KindPricing); err != nil {
		return err
	}
	page := h.Page(r, "Sign Up & Pricing")
	page.NavbarItem = "plans"
	page.Data = struct{ Plans []Plan }{Plans: plans}
	return h.Render(w, r, http.StatusOK, "public/pricing", page)
}
