package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aussiebroadwan/tenantry/internal/web/domain"
	"github.com/aussiebroadwan/tenantry/internal/web/events"
	"github.com/aussiebroadwan/tenantry/internal/web/store"
	"github.com/aussiebroadwan/tenantry/pkg/cryptox"
	"github.com/aussiebroadwan/tenantry/pkg/slogx"
)

var (
	ErrEmailTaken         = errors.New("email already taken")
	ErrInvalidCredentials = errors.New("invalid_credentials")
)

const msgEmailTaken = "has already been taken"

// RelatedUser is the related type of events about a user.
const RelatedUser = "user"

type UserService struct {
	Store  store.Store
	Events events.Sink
}

// ProfileParams are the fields a user may change on their own profile.
type ProfileParams struct {
	Email                string `form:"email" validate:"required,email,max=254"`
	FirstName            string `form:"first_name" validate:"required,max=100"`
	LastName             string `form:"last_name" validate:"required,max=100"`
	Password             string `form:"password" validate:"omitempty,min=8,max=128"`
	PasswordConfirmation string `form:"password_confirmation" validate:"eqfield=Password"`
}

// KeepsPassword reports whether both password fields were left blank, in
// which case the stored password is not touched.
func (p ProfileParams) KeepsPassword() bool {
	return p.Password == "" && p.PasswordConfirmation == ""
}

// GetUserByID fetches a user by id.
func (s *UserService) GetUserByID(ctx context.Context, userID string) (domain.User, error) {
	return s.Store.Users().GetUserByID(ctx, userID)
}

// UpdateProfile validates p and writes it to the user in one transaction.
// Validation failures come back as ValidationErrors and persist nothing.
// actor is recorded on the success event.
func (s *UserService) UpdateProfile(
	ctx context.Context,
	actor *domain.User,
	userID string,
	p ProfileParams,
) (domain.User, error) {
	l := slogx.FromContext(ctx)

	p.Email = strings.TrimSpace(p.Email)
	p.FirstName = strings.TrimSpace(p.FirstName)
	p.LastName = strings.TrimSpace(p.LastName)

	if p.KeepsPassword() {
		l.Debug("password is blank, not updating the password", slog.String("user_id", userID))
	}

	var updated domain.User
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		u, err := tx.Users().GetUserByID(ctx, userID)
		if err != nil {
			return err
		}

		verrs := ValidationErrors{}
		if err := check(p); err != nil {
			if !errors.As(err, &verrs) {
				return err
			}
		}

		if _, bad := verrs["email"]; !bad {
			taken, err := tx.Users().EmailTaken(ctx, p.Email, u.ID)
			if err != nil {
				return fmt.Errorf("check email: %w", err)
			}
			if taken {
				verrs.Add("email", msgEmailTaken)
			}
		}
		if len(verrs) > 0 {
			return verrs
		}

		u.Email = p.Email
		u.FirstName = p.FirstName
		u.LastName = p.LastName
		if !p.KeepsPassword() {
			hash, err := cryptox.HashPassword(p.Password)
			if err != nil {
				return fmt.Errorf("hash password: %w", err)
			}
			u.PasswordHash = hash
		}

		if err := tx.Users().UpdateUser(ctx, u); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ValidationErrors{"email": {msgEmailTaken}}
			}
			return err
		}
		updated = u
		return nil
	})
	if err != nil {
		var verrs ValidationErrors
		switch {
		case errors.Is(err, ErrEmailTaken):
			l.Info("user update rejected: email already taken", slog.String("user_id", userID))
		case errors.As(err, &verrs):
			l.Debug("user update failed", slog.String("user_id", userID), slog.Any("errors", map[string][]string(verrs)))
		}
		return domain.User{}, err
	}

	l.Info("user updated", slog.String("user_id", updated.ID), slog.String("user", updated.String()))
	s.record(ctx, events.Success("Updated user "+updated.String(), RelatedUser, updated.ID, actor))
	return updated, nil
}

// Authenticate checks email and password. Every failure is
// ErrInvalidCredentials and takes the same time whether or not the user exists.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (domain.User, error) {
	l := slogx.FromContext(ctx)

	u, err := s.Store.Users().GetUserByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, store.ErrNotFound) {
		cryptox.BurnVerify(password)
		l.Info("sign in failed: unknown email")
		return domain.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return domain.User{}, err
	}

	if err := cryptox.VerifyPassword(password, u.PasswordHash); err != nil {
		l.Info("sign in failed: bad password", slog.String("user_id", u.ID))
		return domain.User{}, ErrInvalidCredentials
	}
	return u, nil
}

// ListAccounts pages the user's account memberships.
func (s *UserService) ListAccounts(ctx context.Context, userID string, page store.Page) (store.Paged[domain.UserPermission], error) {
	return s.Store.UserPermissions().ListUserPermissionsByUser(ctx, userID, page)
}

// ListInvitations pages the invitations sent to the user's email address.
func (s *UserService) ListInvitations(ctx context.Context, u domain.User, page store.Page) (store.Paged[domain.UserInvitation], error) {
	return s.Store.UserInvitations().ListUserInvitationsByEmail(ctx, u.Email, page)
}

func (s *UserService) record(ctx context.Context, e events.Event) {
	if s.Events == nil {
		return
	}
	if err := s.Events.Record(ctx, e); err != nil {
		slogx.FromContext(ctx).Warn("failed to record event", slog.String("message", e.Message), slog.Any("err", err))
	}
}
