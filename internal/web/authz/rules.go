package authz

import (
	"context"
	"errors"
	"fmt"

	"github.com/aussiebroadwan/tenantry/internal/web/domain"
	"github.com/aussiebroadwan/tenantry/internal/web/store"
)

// Build returns the Ability for user (nil when signed out) acting in account
// (nil when there is no tenant). membership is the user's permission in
// account, nil when they hold none.
func Build(user *domain.User, account *domain.Account, membership *domain.UserPermission) *Ability {
	a := &Ability{}

	if user == nil {
		a.allow([]Action{ActionRead}, KindHome, nil, "")
		a.allow([]Action{ActionRead}, KindPricing, nil, "")
		return a
	}

	if user.SuperAdmin {
		a.allow([]Action{ActionManage}, KindAll, nil, "")
		return a
	}

	a.allow([]Action{ActionRead}, KindHome, nil, "")
	a.allow([]Action{ActionRead}, KindPricing, nil, "")

	self := user.ID
	a.allow(
		[]Action{ActionRead, ActionUpdate, ActionAccounts, ActionUserInvitations},
		KindUser,
		func(s any) bool { return userID(s) == self },
		"",
	)

	if account == nil || membership == nil || membership.AccountID != account.ID {
		return a
	}

	accountID := account.ID
	a.allow([]Action{ActionRead}, KindTenantDashboard, nil, "")
	a.allow(
		[]Action{ActionRead},
		KindInvoice,
		func(s any) bool { return invoiceAccountID(s) == accountID },
		accountID,
	)
	if membership.Role.ManagesSettings() {
		a.allow([]Action{ActionIndex}, KindSettingsDashboard, nil, "")
	}
	return a
}

// Memberships is the subset of store.UserPermissions ForRequest needs.
type Memberships interface {
	GetUserPermission(ctx context.Context, userID, accountID string) (domain.UserPermission, error)
}

// ForRequest loads the membership of user in account and builds the Ability.
func ForRequest(ctx context.Context, perms Memberships, user *domain.User, account *domain.Account) (*Ability, error) {
	if user == nil || account == nil {
		return Build(user, account, nil), nil
	}

	p, err := perms.GetUserPermission(ctx, user.ID, account.ID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return Build(user, account, nil), nil
	case err != nil:
		return nil, fmt.Errorf("load membership: %w", err)
	}
	return Build(user, account, &p), nil
}

func userID(s any) string {
	switch u := s.(type) {
	case domain.User:
		return u.ID
	case *domain.User:
		if u != nil {
			return u.ID
		}
	}
	return ""
}

func invoiceAccountID(s any) string {
	switch inv := s.(type) {
	case domain.Invoice:
		return inv.AccountID
	case *domain.Invoice:
		if inv != nil {
			return inv.AccountID
		}
	}
	return ""
}
