package service

import (
	"context"
	"fmt"

	"github.com/aussiebroadwan/tenantry/internal/web/authz"
	"github.com/aussiebroadwan/tenantry/internal/web/domain"
	"github.com/aussiebroadwan/tenantry/internal/web/store"
)

type InvoiceService struct {
	Store store.Store
}

// InvoiceList is one page of invoices and the account they were filtered
// to, if any.
type InvoiceList struct {
	store.Paged[domain.Invoice]
	Account *domain.Account
}

// List pages the invoices inside scope, optionally narrowed to accountID.
// An unknown accountID is store.ErrNotFound. Rows outside scope are never
// queried: a ScopeNone caller gets an empty page and asking for an account
// the scope excludes is denied.
func (s *InvoiceService) List(
	ctx context.Context,
	scope authz.Scope,
	accountID string,
	page store.Page,
) (InvoiceList, error) {
	out := InvoiceList{Paged: store.Paged[domain.Invoice]{Page: store.NewPage(page.Number, page.Size)}}

	if accountID != "" {
		acc, err := s.Store.Accounts().GetAccountByID(ctx, accountID)
		if err != nil {
			return out, fmt.Errorf("load account %s: %w", accountID, err)
		}
		out.Account = &acc
	}

	if scope.None() {
		return out, nil
	}

	filter := store.InvoiceFilter{AccountID: accountID}
	if !scope.All() {
		if accountID != "" && !scope.Allows(accountID) {
			return out, &authz.DeniedError{Action: authz.ActionIndex, Subject: string(authz.KindInvoice)}
		}
		filter.AccountID = scope.AccountID
	}

	paged, err := s.Store.Invoices().ListInvoices(ctx, filter, page)
	if err != nil {
		return out, fmt.Errorf("list invoices: %w", err)
	}
	out.Paged = paged
	return out, nil
}

// Get loads one invoice. Callers authorize the instance.
func (s *InvoiceService) Get(ctx context.Context, id string) (domain.Invoice, error) {
	return s.Store.Invoices().GetInvoiceByID(ctx, id)
}

// Account loads the account an invoice belongs to.
func (s *InvoiceService) Account(ctx context.Context, accountID string) (domain.Account, error) {
	return s.Store.Accounts().GetAccountByID(ctx, accountID)
}
