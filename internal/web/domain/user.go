package domain

import (
	"strings"
	"time"
)

type User struct {
	ID           string
	Email        string
	FirstName    string
	LastName     string
	PasswordHash string // argon2 encoded
	SuperAdmin   bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// String renders the display name, falling back to the email address.
func (u User) String() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Email
	}
	return name
}
