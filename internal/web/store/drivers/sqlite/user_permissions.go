package sqlite

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/aussiebroadwan/tenantry/internal/web/domain"
	"github.com/aussiebroadwan/tenantry/internal/web/store"
)

type userPermissionRow struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	AccountID string    `db:"account_id"`
	Role      string    `db:"role"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r userPermissionRow) toDomain() domain.UserPermission {
	return domain.UserPermission{
		ID:        r.ID,
		UserID:    r.UserID,
		AccountID: r.AccountID,
		Role:      domain.Role(r.Role),
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// userPermissionAccountRow is a permission joined with its account.
type userPermissionAccountRow struct {
	userPermissionRow
	Account accountRow `db:"account"`
}

const userPermissionColumns = `id, user_id, account_id, role, created_at, updated_at`

type userPermissionsRepo struct {
	q sqlx.ExtContext
}

func (r *userPermissionsRepo) CreateUserPermission(ctx context.Context, p domain.UserPermission) error {
	ts := now()
	_, err := sqlx.NamedExecContext(ctx, r.q, `
		INSERT INTO user_permissions (`+userPermissionColumns+`)
		VALUES (:id, :user_id, :account_id, :role, :created_at, :updated_at)`,
		userPermissionRow{
			ID:        p.ID,
			UserID:    p.UserID,
			AccountID: p.AccountID,
			Role:      string(p.Role),
			CreatedAt: ts,
			UpdatedAt: ts,
		})
	return mapWriteErr(err)
}

func (r *userPermissionsRepo) GetUserPermission(ctx context.Context, userID, accountID string) (domain.UserPermission, error) {
	var row userPermissionRow
	err := sqlx.GetContext(ctx, r.q, &row,
		`SELECT `+userPermissionColumns+` FROM user_permissions WHERE user_id = ? AND account_id = ?`,
		userID, accountID,
	)
	if err != nil {
		return domain.UserPermission{}, mapNotFound(err)
	}
	return row.toDomain(), nil
}

func (r *userPermissionsRepo) ListUserPermissionsByUser(
	ctx context.Context,
	userID string,
	page store.Page,
) (store.Paged[domain.UserPermission], error) {
	out := store.Paged[domain.UserPermission]{Page: store.NewPage(page.Number, page.Size)}

	if err := sqlx.GetContext(ctx, r.q, &out.Total,
		`SELECT COUNT(*) FROM user_permissions WHERE user_id = ?`, userID,
	); err != nil {
		return out, err
	}

	var rows []userPermissionAccountRow
	err := sqlx.SelectContext(ctx, r.q, &rows, `
		SELECT p.id, p.user_id, p.account_id, p.role, p.created_at, p.updated_at,
		       a.id AS "account.id", a.name AS "account.name", a.path AS "account.path",
		       a.subdomain AS "account.subdomain", a.hostname AS "account.hostname",
		       a.created_at AS "account.created_at", a.updated_at AS "account.updated_at"
		FROM user_permissions p
		JOIN accounts a ON a.id = p.account_id
		WHERE p.user_id = ?
		ORDER BY a.name, p.id
		LIMIT ? OFFSET ?`,
		userID, out.Page.Limit(), out.Page.Offset(),
	)
	if err != nil {
		return out, err
	}

	out.Items = make([]domain.UserPermission, 0, len(rows))
	for _, row := range rows {
		p := row.toDomain()
		acc := row.Account.toDomain()
		p.Account = &acc
		out.Items = append(out.Items, p)
	}
	return out, nil
}
