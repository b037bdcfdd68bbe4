package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/aussiebroadwan/tenantry/internal/web/domain"
)

type accountRow struct {
	ID        string         `db:"id"`
	Name      string         `db:"name"`
	Path      string         `db:"path"`
	Subdomain sql.NullString `db:"subdomain"`
	Hostname  sql.NullString `db:"hostname"`
	CreatedAt time.Time      `db:"created_at"`
	UpdatedAt time.Time      `db:"updated_at"`
}

func (r accountRow) toDomain() domain.Account {
	return domain.Account{
		ID:        r.ID,
		Name:      r.Name,
		Path:      r.Path,
		Subdomain: mapNullString(r.Subdomain),
		Hostname:  mapNullString(r.Hostname),
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

const accountColumns = `id, name, path, subdomain, hostname, created_at, updated_at`

type accountsRepo struct {
	q sqlx.ExtContext
}

func (r *accountsRepo) getBy(ctx context.Context, column, value string) (domain.Account, error) {
	var row accountRow
	// column is always one of the fixed names below
	err := sqlx.GetContext(ctx, r.q, &row, `SELECT `+accountColumns+` FROM accounts WHERE `+column+` = ?`, value)
	if err != nil {
		return domain.Account{}, mapNotFound(err)
	}
	return row.toDomain(), nil
}

func (r *accountsRepo) GetAccountByID(ctx context.Context, id string) (domain.Account, error) {
	return r.getBy(ctx, "id", id)
}

func (r *accountsRepo) GetAccountByPath(ctx context.Context, path string) (domain.Account, error) {
	return r.getBy(ctx, "path", path)
}

func (r *accountsRepo) GetAccountByHostname(ctx context.Context, hostname string) (domain.Account, error) {
	return r.getBy(ctx, "hostname", hostname)
}

func (r *accountsRepo) GetAccountBySubdomain(ctx context.Context, subdomain string) (domain.Account, error) {
	return r.getBy(ctx, "subdomain", subdomain)
}

func (r *accountsRepo) CreateAccount(ctx context.Context, a domain.Account) error {
	ts := now()
	_, err := sqlx.NamedExecContext(ctx, r.q, `
		INSERT INTO accounts (`+accountColumns+`)
		VALUES (:id, :name, :path, :subdomain, :hostname, :created_at, :updated_at)`,
		accountRow{
			ID:        a.ID,
			Name:      a.Name,
			Path:      a.Path,
			Subdomain: mapStringNull(a.Subdomain),
			Hostname:  mapStringNull(a.Hostname),
			CreatedAt: ts,
			UpdatedAt: ts,
		})
	return mapWriteErr(err)
}
