package http

import (
	"net/http"

	"github.com/aussiebroadwan/tenantry/internal/web/authz"
	"github.com/aussiebroadwan/tenantry/internal/web/domain"
	"github.com/aussiebroadwan/tenantry/internal/web/nav"
	"github.com/aussiebroadwan/tenantry/internal/web/service"
	"github.com/aussiebroadwan/tenantry/internal/web/store"
	"github.com/aussiebroadwan/tenantry/internal/web/view"
)

// TenantHandler serves the pages under /t/{path}.
type TenantHandler struct {
	*Responder
	InvoiceService *service.InvoiceService
}

func (h *TenantHandler) Dashboard(w http.ResponseWriter, r *http.Request) error {
	rc, err := h.account(r, authz.ActionShow, authz.KindTenantDashboard)
	if err != nil {
		return err
	}

	list, err := h.InvoiceService.List(r.Context(), rc.Ability.Scope(authz.ActionIndex, authz.KindInvoice), rc.Account.ID, store.NewPage(1, 1))
	if err != nil {
		return err
	}

	page := h.Page(r, rc.Account.Name)
	page.SidebarItem = "dashboard"
	page.Data = struct{ InvoiceCount int }{list.Total}
	return h.Render(w, r, http.StatusOK, "tenant/dashboard", page)
}

func (h *TenantHandler) Settings(w http.ResponseWriter, r *http.Request) error {
	rc, err := h.account(r, authz.ActionIndex, authz.KindSettingsDashboard)
	if err != nil {
		return err
	}

	page := h.Page(r, rc.Account.Name+" settings")
	page.SidebarItem = "settings"
	return h.Render(w, r, http.StatusOK, "tenant/settings", page)
}

func (h *TenantHandler) Invoices(w http.ResponseWriter, r *http.Request) error {
	rc, err := h.account(r, authz.ActionIndex, authz.KindInvoice)
	if err != nil {
		return err
	}

	list, err := h.InvoiceService.List(r.Context(), rc.Ability.Scope(authz.ActionIndex, authz.KindInvoice), rc.Account.ID, h.PageParam(r))
	if err != nil {
		return err
	}

	page := h.Page(r, "Invoices")
	page.SidebarItem = "dashboard"
	page.Data = invoiceListData{
		Invoices: list,
		Pager:    view.NewPager(nav.TenantPath(rc.Account.Path, "/invoices"), list),
	}
	return h.Render(w, r, http.StatusOK, "tenant/invoices/index", page)
}

func (h *TenantHandler) Invoice(w http.ResponseWriter, r *http.Request) error {
	rc, err := h.account(r, authz.ActionShow, authz.KindInvoice)
	if err != nil {
		return err
	}

	inv, err := locateInvoice(r, h.InvoiceService)
	if err != nil {
		return err
	}
	// Another tenant's invoice does not exist under this path.
	if inv.AccountID != rc.Account.ID {
		return store.ErrNotFound
	}

	page := h.Page(r, "Invoice "+inv.Number)
	page.SidebarItem = "dashboard"
	page.Data = struct{ Invoice domain.Invoice }{inv}
	return h.Render(w, r, http.StatusOK, "tenant/invoices/show", page)
}

// account requires a resolved tenant and a class-level grant of action on
// kind within it.
func (h *TenantHandler) account(r *http.Request, action authz.Action, kind authz.Kind) (*RequestContext, error) {
	rc := FromContext(r.Context())
	if rc.Account == nil {
		return nil, store.ErrNotFound
	}
	if err := rc.Ability.Authorize(action, kind); err != nil {
		return nil, err
	}
	return rc, nil
}
