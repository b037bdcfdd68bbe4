package domain

import "time"

// Account is a tenant. It is addressed by Path (/t/{path}), by its own
// Hostname, or by a Subdomain label under the base domain.
type Account struct {
	ID        string
	Name      string
	Path      string
	Subdomain string // optional
	Hostname  string // optional
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (a Account) String() string { return a.Name }
