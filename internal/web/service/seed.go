package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/tenantry/internal/web/domain"
	"github.com/aussiebroadwan/tenantry/internal/web/store"
	"github.com/aussiebroadwan/tenantry/pkg/cryptox"
	"github.com/aussiebroadwan/tenantry/pkg/idx"
	"github.com/aussiebroadwan/tenantry/pkg/slogx"
)

var ErrAlreadySeeded = errors.New("database already has users")

// SeedData describes the demo dataset written by SeedService.
type SeedData struct {
	AdminEmail    string
	AdminPassword string

	AccountName string
	AccountPath string
	Subdomain   string

	OwnerEmail    string
	OwnerPassword string

	Invoices int
}

// SeedService fills an empty database with a super admin, one account with
// an owner, an invitation and some invoices. Accounts are never created over
// HTTP, so this is how a fresh install gets its first tenant.
type SeedService struct {
	Store store.Store
}

// Seed returns ErrAlreadySeeded when any user exists.
func (s *SeedService) Seed(ctx context.Context, d SeedData) error {
	l := slogx.FromContext(ctx)

	empty, err := s.Store.Users().IsEmpty(ctx)
	if err != nil {
		return err
	}
	if !empty {
		l.Warn("attempted seed on a database that already has users")
		return ErrAlreadySeeded
	}

	adminHash, err := cryptox.HashPassword(d.AdminPassword)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	ownerHash, err := cryptox.HashPassword(d.OwnerPassword)
	if err != nil {
		return fmt.Errorf("hash owner password: %w", err)
	}

	admin := domain.User{
		ID: idx.New().String(), Email: d.AdminEmail,
		FirstName: "Super", LastName: "Admin",
		PasswordHash: adminHash, SuperAdmin: true,
	}
	owner := domain.User{
		ID: idx.New().String(), Email: d.OwnerEmail,
		FirstName: "Account", LastName: "Owner",
		PasswordHash: ownerHash,
	}
	account := domain.Account{
		ID: idx.New().String(), Name: d.AccountName,
		Path: d.AccountPath, Subdomain: d.Subdomain,
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		for _, u := range []domain.User{admin, owner} {
			if err := tx.Users().CreateUser(ctx, u); err != nil {
				return fmt.Errorf("create user %s: %w", u.Email, err)
			}
		}
		if err := tx.Accounts().CreateAccount(ctx, account); err != nil {
			return fmt.Errorf("create account: %w", err)
		}
		if err := tx.UserPermissions().CreateUserPermission(ctx, domain.UserPermission{
			ID: idx.New().String(), UserID: owner.ID, AccountID: account.ID, Role: domain.RoleOwner,
		}); err != nil {
			return fmt.Errorf("create owner permission: %w", err)
		}
		if err := tx.UserInvitations().CreateUserInvitation(ctx, domain.UserInvitation{
			ID: idx.New().String(), AccountID: account.ID, Email: d.AdminEmail,
			FirstName: admin.FirstName, LastName: admin.LastName,
			InvitedByID: owner.ID, Role: domain.RoleAdmin,
		}); err != nil {
			return fmt.Errorf("create invitation: %w", err)
		}

		issued := time.Now().UTC().AddDate(0, -d.Invoices, 0)
		for i := range d.Invoices {
			inv := domain.Invoice{
				ID:          idx.New().String(),
				AccountID:   account.ID,
				Number:      fmt.Sprintf("INV-%04d", i+1),
				Description: "Monthly subscription",
				AmountCents: 4900,
				Currency:    "AUD",
				Status:      domain.InvoicePaid,
				IssuedAt:    issued.AddDate(0, i, 0),
			}
			paid := inv.IssuedAt.Add(72 * time.Hour)
			inv.PaidAt = &paid
			if err := tx.Invoices().CreateInvoice(ctx, inv); err != nil {
				return fmt.Errorf("create invoice %s: %w", inv.Number, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	l.Info("seeded database",
		slog.String("admin_user_id", admin.ID),
		slog.String("account_id", account.ID),
		slog.Int("invoices", d.Invoices),
	)
	return nil
}
