package http

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/aussiebroadwan/tenantry/internal/web/authz"
	"github.com/aussiebroadwan/tenantry/internal/web/domain"
	"github.com/aussiebroadwan/tenantry/internal/web/service"
	"github.com/aussiebroadwan/tenantry/internal/web/store"
	"github.com/aussiebroadwan/tenantry/internal/web/view"
	"github.com/aussiebroadwan/tenantry/pkg/idx"
)

// AdminInvoicesHandler is the back office invoice browser.
type AdminInvoicesHandler struct {
	*Responder
	InvoiceService *service.InvoiceService
}

type invoiceListData struct {
	Invoices service.InvoiceList
	Pager    view.Pager
}

// Index lists invoices inside the ability scope. ?account_id narrows the list
// to one account and switches the sidebar to the accounts entry.
func (h *AdminInvoicesHandler) Index(w http.ResponseWriter, r *http.Request) error {
	ability := FromContext(r.Context()).Ability
	if err := ability.Authorize(authz.ActionIndex, authz.KindAdminInvoice); err != nil {
		return err
	}

	accountID := r.URL.Query().Get("account_id")
	if accountID != "" && !idx.Valid(accountID) {
		return store.ErrNotFound
	}

	list, err := h.InvoiceService.List(r.Context(), ability.Scope(authz.ActionIndex, authz.KindInvoice), accountID, h.PageParam(r))
	if err != nil {
		return err
	}

	base := "/admin/invoices"
	page := h.Page(r, "Invoices")
	page.SidebarItem = "invoices"
	if accountID != "" {
		base += "?" + url.Values{"account_id": {accountID}}.Encode()
		page.SidebarItem = "accounts"
	}
	page.Data = invoiceListData{Invoices: list, Pager: view.NewPager(base, list)}
	return h.Render(w, r, http.StatusOK, "admin/invoices/index", page)
}

func (h *AdminInvoicesHandler) Show(w http.ResponseWriter, r *http.Request) error {
	if err := FromContext(r.Context()).Ability.Authorize(authz.ActionShow, authz.KindAdminInvoice); err != nil {
		return err
	}

	inv, err := locateInvoice(r, h.InvoiceService)
	if err != nil {
		return err
	}

	var account *domain.Account
	acc, err := h.InvoiceService.Account(r.Context(), inv.AccountID)
	switch {
	case err == nil:
		account = &acc
	case !errors.Is(err, store.ErrNotFound):
		return err
	}

	page := h.Page(r, "Invoice "+inv.Number)
	page.SidebarItem = "invoices"
	page.Data = struct {
		Invoice domain.Invoice
		Account *domain.Account
	}{inv, account}
	return h.Render(w, r, http.StatusOK, "admin/invoices/show", page)
}

// locateInvoice loads {id} and authorizes show on it.
func locateInvoice(r *http.Request, invoices *service.InvoiceService) (domain.Invoice, error) {
	id := r.PathValue("id")
	if !idx.Valid(id) {
		return domain.Invoice{}, store.ErrNotFound
	}
	inv, err := invoices.Get(r.Context(), id)
	if err != nil {
		return domain.Invoice{}, err
	}
	if err := FromContext(r.Context()).Ability.Authorize(authz.ActionShow, &inv); err != nil {
		return domain.Invoice{}, err
	}
	return inv, nil
}
