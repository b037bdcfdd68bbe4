package domain

import "time"

type UserInvitation struct {
	ID          string
	AccountID   string
	Email       string
	FirstName   string
	LastName    string
	InvitedByID string
	Role        Role
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Account *Account
}
