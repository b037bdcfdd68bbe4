// Package tenant resolves the account a request is addressed to.
package tenant

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/aussiebroadwan/tenantry/internal/web/domain"
	"github.com/aussiebroadwan/tenantry/internal/web/store"
	"github.com/aussiebroadwan/tenantry/pkg/slogx"
)

// Accounts is the subset of store.Accounts the resolver needs.
type Accounts interface {
	GetAccountByPath(ctx context.Context, path string) (domain.Account, error)
	GetAccountByHostname(ctx context.Context, hostname string) (domain.Account, error)
	GetAccountBySubdomain(ctx context.Context, subdomain string) (domain.Account, error)
}

// Lookup is what a request offers to identify its tenant.
type Lookup struct {
	Path      string // the {path} route segment, if any
	Host      string // request host, port allowed
	Subdomain string // label left of the base domain, if any
}

type Resolver struct {
	Accounts Accounts
}

// Resolve returns the current account or nil when there is none.
//
// A path segment wins outright: when it names no account the result is nil
// even if the host would match. Without a path the host is tried as a custom
// hostname, then the subdomain label. Misses are never errors; only store
// failures are returned.
func (r *Resolver) Resolve(ctx context.Context, in Lookup) (*domain.Account, error) {
	log := slogx.FromContext(ctx)

	if path := strings.TrimSpace(in.Path); path != "" {
		acc, err := r.Accounts.GetAccountByPath(ctx, strings.ToLower(path))
		return found(acc, err, "path")
	}

	if host := StripPort(in.Host); host != "" {
		acc, err := r.Accounts.GetAccountByHostname(ctx, host)
		if a, err := found(acc, err, "hostname"); a != nil || err != nil {
			return a, err
		}
	}

	if label := strings.ToLower(strings.TrimSpace(in.Subdomain)); label != "" {
		acc, err := r.Accounts.GetAccountBySubdomain(ctx, label)
		return found(acc, err, "subdomain")
	}

	log.Debug("no tenant for request", "host", in.Host)
	return nil, nil
}

func found(acc domain.Account, err error, by string) (*domain.Account, error) {
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("resolve tenant by %s: %w", by, err)
	}
	return &acc, nil
}

// StripPort lower-cases host and removes any port.
func StripPort(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	return strings.Trim(host, "[]")
}

// SubdomainLabel returns the label directly left of baseDomain in host, so
// "a.acme.example.com" under "example.com" gives "acme". The "www" label and
// hosts outside baseDomain give "".
func SubdomainLabel(host, baseDomain string) string {
	host = StripPort(host)
	base := strings.Trim(strings.ToLower(baseDomain), ".")
	if base == "" || host == base || !strings.HasSuffix(host, "."+base) {
		return ""
	}

	rest := strings.TrimSuffix(host, "."+base)
	if i := strings.LastIndexByte(rest, '.'); i >= 0 {
		rest = rest[i+1:]
	}
	if rest == "www" {
		return ""
	}
	return rest
}
