package sqlite

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/aussiebroadwan/tenantry/internal/web/domain"
	"github.com/aussiebroadwan/tenantry/internal/web/store"
)

type userInvitationRow struct {
	ID          string    `db:"id"`
	AccountID   string    `db:"account_id"`
	Email       string    `db:"email"`
	FirstName   string    `db:"first_name"`
	LastName    string    `db:"last_name"`
	InvitedByID string    `db:"invited_by_id"`
	Role        string    `db:"role"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

type userInvitationAccountRow struct {
	userInvitationRow
	Account accountRow `db:"account"`
}

func (r userInvitationRow) toDomain() domain.UserInvitation {
	return domain.UserInvitation{
		ID:          r.ID,
		AccountID:   r.AccountID,
		Email:       r.Email,
		FirstName:   r.FirstName,
		LastName:    r.LastName,
		InvitedByID: r.InvitedByID,
		Role:        domain.Role(r.Role),
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

type userInvitationsRepo struct {
	q sqlx.ExtContext
}

func (r *userInvitationsRepo) CreateUserInvitation(ctx context.Context, inv domain.UserInvitation) error {
	ts := now()
	_, err := sqlx.NamedExecContext(ctx, r.q, `
		INSERT INTO user_invitations
			(id, account_id, email, first_name, last_name, invited_by_id, role, created_at, updated_at)
		VALUES
			(:id, :account_id, :email, :first_name, :last_name, :invited_by_id, :role, :created_at, :updated_at)`,
		userInvitationRow{
			ID:          inv.ID,
			AccountID:   inv.AccountID,
			Email:       inv.Email,
			FirstName:   inv.FirstName,
			LastName:    inv.LastName,
			InvitedByID: inv.InvitedByID,
			Role:        string(inv.Role),
			CreatedAt:   ts,
			UpdatedAt:   ts,
		})
	return mapWriteErr(err)
}

func (r *userInvitationsRepo) ListUserInvitationsByEmail(
	ctx context.Context,
	email string,
	page store.Page,
) (store.Paged[domain.UserInvitation], error) {
	out := store.Paged[domain.UserInvitation]{Page: store.NewPage(page.Number, page.Size)}

	if err := sqlx.GetContext(ctx, r.q, &out.Total,
		`SELECT COUNT(*) FROM user_invitations WHERE email = ?`, email,
	); err != nil {
		return out, err
	}

	var rows []userInvitationAccountRow
	err := sqlx.SelectContext(ctx, r.q, &rows, `
		SELECT i.id, i.account_id, i.email, i.first_name, i.last_name, i.invited_by_id, i.role,
		       i.created_at, i.updated_at,
		       a.id AS "account.id", a.name AS "account.name", a.path AS "account.path",
		       a.subdomain AS "account.subdomain", a.hostname AS "account.hostname",
		       a.created_at AS "account.created_at", a.updated_at AS "account.updated_at"
		FROM user_invitations i
		JOIN accounts a ON a.id = i.account_id
		WHERE i.email = ?
		ORDER BY i.created_at DESC, i.id DESC
		LIMIT ? OFFSET ?`,
		email, out.Page.Limit(), out.Page.Offset(),
	)
	if err != nil {
		return out, err
	}

	out.Items = make([]domain.UserInvitation, 0, len(rows))
	for _, row := range rows {
		inv := row.toDomain()
		acc := row.Account.toDomain()
		inv.Account = &acc
		out.Items = append(out.Items, inv)
	}
	return out, nil
}
