package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/aussiebroadwan/tenantry/internal/web/domain"
	"github.com/aussiebroadwan/tenantry/internal/web/store"
)

type invoiceRow struct {
	ID          string       `db:"id"`
	AccountID   string       `db:"account_id"`
	Number      string       `db:"number"`
	Description string       `db:"description"`
	AmountCents int64        `db:"amount_cents"`
	Currency    string       `db:"currency"`
	Status      string       `db:"status"`
	IssuedAt    time.Time    `db:"issued_at"`
	PaidAt      sql.NullTime `db:"paid_at"`
	CreatedAt   time.Time    `db:"created_at"`
	UpdatedAt   time.Time    `db:"updated_at"`
}

func (r invoiceRow) toDomain() domain.Invoice {
	return domain.Invoice{
		ID:          r.ID,
		AccountID:   r.AccountID,
		Number:      r.Number,
		Description: r.Description,
		AmountCents: r.AmountCents,
		Currency:    r.Currency,
		Status:      domain.InvoiceStatus(r.Status),
		IssuedAt:    r.IssuedAt,
		PaidAt:      mapNullTimePtr(r.PaidAt),
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

const invoiceColumns = `id, account_id, number, description, amount_cents, currency, status, issued_at, paid_at, created_at, updated_at`

type invoicesRepo struct {
	q sqlx.ExtContext
}

func (r *invoicesRepo) CreateInvoice(ctx context.Context, inv domain.Invoice) error {
	ts := now()
	issued := inv.IssuedAt
	if issued.IsZero() {
		issued = ts
	}
	_, err := sqlx.NamedExecContext(ctx, r.q, `
		INSERT INTO invoices (`+invoiceColumns+`)
		VALUES (:id, :account_id, :number, :description, :amount_cents, :currency, :status,
		        :issued_at, :paid_at, :created_at, :updated_at)`,
		invoiceRow{
			ID:          inv.ID,
			AccountID:   inv.AccountID,
			Number:      inv.Number,
			Description: inv.Description,
			AmountCents: inv.AmountCents,
			Currency:    inv.Currency,
			Status:      string(inv.Status),
			IssuedAt:    issued.UTC(),
			PaidAt:      mapOptionalTime(inv.PaidAt),
			CreatedAt:   ts,
			UpdatedAt:   ts,
		})
	return mapWriteErr(err)
}

func (r *invoicesRepo) GetInvoiceByID(ctx context.Context, id string) (domain.Invoice, error) {
	var row invoiceRow
	if err := sqlx.GetContext(ctx, r.q, &row, `SELECT `+invoiceColumns+` FROM invoices WHERE id = ?`, id); err != nil {
		return domain.Invoice{}, mapNotFound(err)
	}
	return row.toDomain(), nil
}

func (r *invoicesRepo) ListInvoices(
	ctx context.Context,
	f store.InvoiceFilter,
	page store.Page,
) (store.Paged[domain.Invoice], error) {
	out := store.Paged[domain.Invoice]{Page: store.NewPage(page.Number, page.Size)}

	where, args := "", []any{}
	if f.AccountID != "" {
		where = ` WHERE account_id = ?`
		args = append(args, f.AccountID)
	}

	if err := sqlx.GetContext(ctx, r.q, &out.Total, `SELECT COUNT(*) FROM invoices`+where, args...); err != nil {
		return out, err
	}

	var rows []invoiceRow
	err := sqlx.SelectContext(ctx, r.q, &rows,
		`SELECT `+invoiceColumns+` FROM invoices`+where+` ORDER BY issued_at DESC, id DESC LIMIT ? OFFSET ?`,
		append(args, out.Page.Limit(), out.Page.Offset())...,
	)
	if err != nil {
		return out, err
	}

	out.Items = make([]domain.Invoice, 0, len(rows))
	for _, row := range rows {
		out.Items = append(out.Items, row.toDomain())
	}
	return out, nil
}
