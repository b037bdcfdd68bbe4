// Package authz decides what the current user may do in the current account.
//
// An Ability is an ordered rule table built fresh for every request from the
// signed in user, the resolved account and the user's membership of it.
package authz

import (
	"errors"
	"fmt"
	"slices"

	"github.com/aussiebroadwan/tenantry/internal/web/domain"
)

// ErrDenied is wrapped by every DeniedError.
var ErrDenied = errors.New("authz: access denied")

type Action string

const (
	ActionIndex           Action = "index"
	ActionShow            Action = "show"
	ActionNew             Action = "new"
	ActionCreate          Action = "create"
	ActionEdit            Action = "edit"
	ActionUpdate          Action = "update"
	ActionDestroy         Action = "destroy"
	ActionAccounts        Action = "accounts"
	ActionUserInvitations Action = "user_invitations"

	// Aliases, only meaningful in rules.
	ActionRead   Action = "read"
	ActionManage Action = "manage"
)

// aliases expand rule actions. An update rule also allows edit, a create
// rule also allows new.
var aliases = map[Action][]Action{
	ActionRead:   {ActionIndex, ActionShow},
	ActionUpdate: {ActionUpdate, ActionEdit},
	ActionCreate: {ActionCreate, ActionNew},
}

// Kind names a class of subject.
type Kind string

const (
	KindAll               Kind = "all"
	KindHome              Kind = "home"
	KindPricing           Kind = "pricing"
	KindUser              Kind = "user"
	KindTenantDashboard   Kind = "tenant_dashboard"
	KindSettingsDashboard Kind = "settings_dashboard"
	KindInvoice           Kind = "invoice"

	// KindAdminInvoice is the back office invoice browser. No rule names it,
	// so only manage on all reaches it.
	KindAdminInvoice Kind = "admin_invoice"
)

// Subject lets other types take part in instance checks.
type Subject interface {
	AuthzKind() Kind
}

// kindOf classifies subject. Class-level checks pass a Kind and report
// instance == false.
func kindOf(subject any) (kind Kind, instance bool) {
	switch s := subject.(type) {
	case Kind:
		return s, false
	case domain.User, *domain.User:
		return KindUser, true
	case domain.Invoice, *domain.Invoice:
		return KindInvoice, true
	case Subject:
		return s.AuthzKind(), true
	}
	return "", false
}

func kindName(subject any) string {
	k, _ := kindOf(subject)
	if k == "" {
		return fmt.Sprintf("%T", subject)
	}
	return string(k)
}

type rule struct {
	actions []Action // expanded, nil for manage
	kind    Kind
	cond    func(subject any) bool

	// accountID is set when cond restricts the subject to one account, so
	// collections can be filtered with the same rule.
	accountID string
}

func (r rule) matches(action Action, kind Kind) bool {
	if r.kind != KindAll && r.kind != kind {
		return false
	}
	return r.actions == nil || slices.Contains(r.actions, action)
}

// DeniedError says which action on which subject was refused.
type DeniedError struct {
	Action  Action
	Subject string
}

func (e *DeniedError) Error() string {
	return fmt.Sprintf("authz: not allowed to %s %s", e.Action, e.Subject)
}

func (e *DeniedError) Unwrap() error { return ErrDenied }

// Ability answers permission questions for one request.
type Ability struct {
	rules []rule
}

func (a *Ability) allow(actions []Action, kind Kind, cond func(any) bool, accountID string) {
	var expanded []Action
	for _, act := range actions {
		if act == ActionManage {
			expanded = nil
			break
		}
		if more, ok := aliases[act]; ok {
			expanded = append(expanded, more...)
			continue
		}
		expanded = append(expanded, act)
	}
	a.rules = append(a.rules, rule{actions: expanded, kind: kind, cond: cond, accountID: accountID})
}

// Can reports whether action is allowed on subject. The first rule matching
// the action and kind whose condition holds grants access. A Kind subject is
// a class-level check: conditions are not evaluated, so "may this user see
// some invoices" is true for a member even though only their account's
// invoices pass the instance check.
func (a *Ability) Can(action Action, subject any) bool {
	if a == nil {
		return false
	}
	kind, instance := kindOf(subject)
	if kind == "" {
		return false
	}
	for _, r := range a.rules {
		if !r.matches(action, kind) {
			continue
		}
		if !instance || r.cond == nil || r.cond(subject) {
			return true
		}
	}
	return false
}

// Authorize returns a *DeniedError unless Can(action, subject).
func (a *Ability) Authorize(action Action, subject any) error {
	if a.Can(action, subject) {
		return nil
	}
	return &DeniedError{Action: action, Subject: kindName(subject)}
}

// Scope gives the rows of kind a listing for action may return.
type Scope struct {
	allowed   bool
	AccountID string
}

// ScopeNone allows nothing.
var ScopeNone = Scope{}

// ScopeAll allows every row.
var ScopeAll = Scope{allowed: true}

func (s Scope) All() bool  { return s.allowed && s.AccountID == "" }
func (s Scope) None() bool { return !s.allowed }

// Allows reports whether a row owned by accountID is inside the scope.
func (s Scope) Allows(accountID string) bool {
	return s.All() || (s.allowed && s.AccountID == accountID)
}

// Scope turns the rules for action on kind into a collection filter.
// Unconditional rules give ScopeAll, account-bound rules the account, and
// conditions that cannot be expressed as a filter give ScopeNone.
func (a *Ability) Scope(action Action, kind Kind) Scope {
	if a == nil {
		return ScopeNone
	}
	for _, r := range a.rules {
		if !r.matches(action, kind) {
			continue
		}
		switch {
		case r.cond == nil:
			return ScopeAll
		case r.accountID != "":
			return Scope{allowed: true, AccountID: r.accountID}
		}
	}
	return ScopeNone
}
