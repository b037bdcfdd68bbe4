package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/tenantry/internal/web/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface implemented by the drivers. Repos
// are handed out as methods so a Tx can expose the same repos bound to the
// transaction and nothing starts a transaction inside another.
type Store interface {
	Users() Users
	Accounts() Accounts
	UserPermissions() UserPermissions
	UserInvitations() UserInvitations
	Invoices() Invoices
	AppEvents() AppEvents

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx runs fn in a transaction, committing when fn returns nil and
	// rolling back otherwise.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail matches case-insensitively.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// CreateUser inserts a new user (id is provided by app via ULID).
	CreateUser(ctx context.Context, u domain.User) error

	// UpdateUser writes email, names and password_hash and bumps updated_at.
	UpdateUser(ctx context.Context, u domain.User) error

	// EmailTaken reports whether another user than exceptID owns email.
	EmailTaken(ctx context.Context, email, exceptID string) (bool, error)

	IsEmpty(ctx context.Context) (bool, error)
}

type Accounts interface {
	GetAccountByID(ctx context.Context, id string) (domain.Account, error)
	GetAccountByPath(ctx context.Context, path string) (domain.Account, error)
	GetAccountByHostname(ctx context.Context, hostname string) (domain.Account, error)
	GetAccountBySubdomain(ctx context.Context, subdomain string) (domain.Account, error)
	CreateAccount(ctx context.Context, a domain.Account) error
}

type UserPermissions interface {
	CreateUserPermission(ctx context.Context, p domain.UserPermission) error

	// GetUserPermission returns the membership of userID in accountID.
	GetUserPermission(ctx context.Context, userID, accountID string) (domain.UserPermission, error)

	// ListUserPermissionsByUser pages a user's memberships with their
	// Account populated, ordered by account name.
	ListUserPermissionsByUser(ctx context.Context, userID string, page Page) (Paged[domain.UserPermission], error)
}

type UserInvitations interface {
	CreateUserInvitation(ctx context.Context, inv domain.UserInvitation) error

	// ListUserInvitationsByEmail pages the invitations addressed to email,
	// newest first, with their Account populated.
	ListUserInvitationsByEmail(ctx context.Context, email string, page Page) (Paged[domain.UserInvitation], error)
}

// InvoiceFilter narrows ListInvoices. An empty AccountID lists every account.
type InvoiceFilter struct {
	AccountID string
}

type Invoices interface {
	CreateInvoice(ctx context.Context, inv domain.Invoice) error
	GetInvoiceByID(ctx context.Context, id string) (domain.Invoice, error)

	// ListInvoices pages invoices newest issued first.
	ListInvoices(ctx context.Context, f InvoiceFilter, page Page) (Paged[domain.Invoice], error)
}

type AppEvents interface {
	CreateAppEvent(ctx context.Context, e domain.AppEvent) error

	// ListRecentAppEvents returns up to limit events, newest first.
	ListRecentAppEvents(ctx context.Context, limit int) ([]domain.AppEvent, error)

	// DeleteAppEventsBefore removes events created before cutoff.
	DeleteAppEventsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
