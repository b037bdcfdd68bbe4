package sqlite

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/aussiebroadwan/tenantry/internal/web/domain"
)

type userRow struct {
	ID           string    `db:"id"`
	Email        string    `db:"email"`
	FirstName    string    `db:"first_name"`
	LastName     string    `db:"last_name"`
	PasswordHash string    `db:"password_hash"`
	SuperAdmin   bool      `db:"super_admin"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (r userRow) toDomain() domain.User {
	return domain.User{
		ID:           r.ID,
		Email:        r.Email,
		FirstName:    r.FirstName,
		LastName:     r.LastName,
		PasswordHash: r.PasswordHash,
		SuperAdmin:   r.SuperAdmin,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

const userColumns = `id, email, first_name, last_name, password_hash, super_admin, created_at, updated_at`

type usersRepo struct {
	q sqlx.ExtContext
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	var row userRow
	if err := sqlx.GetContext(ctx, r.q, &row, `SELECT `+userColumns+` FROM users WHERE id = ?`, id); err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return row.toDomain(), nil
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	var row userRow
	if err := sqlx.GetContext(ctx, r.q, &row, `SELECT `+userColumns+` FROM users WHERE email = ?`, email); err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return row.toDomain(), nil
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	ts := now()
	_, err := sqlx.NamedExecContext(ctx, r.q, `
		INSERT INTO users (`+userColumns+`)
		VALUES (:id, :email, :first_name, :last_name, :password_hash, :super_admin, :created_at, :updated_at)`,
		userRow{
			ID:           u.ID,
			Email:        u.Email,
			FirstName:    u.FirstName,
			LastName:     u.LastName,
			PasswordHash: u.PasswordHash,
			SuperAdmin:   u.SuperAdmin,
			CreatedAt:    ts,
			UpdatedAt:    ts,
		})
	return mapWriteErr(err)
}

func (r *usersRepo) UpdateUser(ctx context.Context, u domain.User) error {
	return requireAffected(r.q.ExecContext(ctx, `
		UPDATE users
		SET email = ?, first_name = ?, last_name = ?, password_hash = ?, updated_at = ?
		WHERE id = ?`,
		u.Email, u.FirstName, u.LastName, u.PasswordHash, now(), u.ID,
	))
}

func (r *usersRepo) EmailTaken(ctx context.Context, email, exceptID string) (bool, error) {
	var n int
	err := sqlx.GetContext(ctx, r.q, &n, `SELECT COUNT(*) FROM users WHERE email = ? AND id <> ?`, email, exceptID)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *usersRepo) IsEmpty(ctx context.Context) (bool, error) {
	var n int
	if err := sqlx.GetContext(ctx, r.q, &n, `SELECT COUNT(*) FROM users`); err != nil {
		return false, err
	}
	return n == 0, nil
}
