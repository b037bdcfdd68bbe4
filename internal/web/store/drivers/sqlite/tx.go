package sqlite

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/aussiebroadwan/tenantry/internal/web/store"
)

type txStore struct {
	tx *sqlx.Tx
}

func newTx(tx *sqlx.Tx) *txStore {
	return &txStore{tx: tx}
}

func (t *txStore) Commit() error   { return t.tx.Commit() }
func (t *txStore) Rollback() error { return t.tx.Rollback() }

func (t *txStore) Close() error { return nil } // the outer DB stays open

func (t *txStore) Ping(ctx context.Context) error { return nil }

func (t *txStore) Tx(ctx context.Context) (store.Tx, error) {
	// Nested tx not supported; could emulate with SAVEPOINT if needed
	return nil, sql.ErrTxDone
}

func (t *txStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return sql.ErrTxDone
}

func (t *txStore) Users() store.Users                     { return &usersRepo{q: t.tx} }
func (t *txStore) Accounts() store.Accounts               { return &accountsRepo{q: t.tx} }
func (t *txStore) UserPermissions() store.UserPermissions { return &userPermissionsRepo{q: t.tx} }
func (t *txStore) UserInvitations() store.UserInvitations { return &userInvitationsRepo{q: t.tx} }
func (t *txStore) Invoices() store.Invoices               { return &invoicesRepo{q: t.tx} }
func (t *txStore) AppEvents() store.AppEvents             { return &appEventsRepo{q: t.tx} }

func (t *txStore) ApplyMigrations() error { return nil } // migrations run before any tx
