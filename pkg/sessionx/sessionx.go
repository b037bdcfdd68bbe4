// Package sessionx keeps the signed in user in an HS256 JWT stored in an
// HttpOnly cookie.
package sessionx

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/aussiebroadwan/tenantry/pkg/idx"
)

const (
	// DefaultCookieName is used when Config.CookieName is empty.
	DefaultCookieName = "tenantry_session"

	// DefaultTTL is used when Config.TTL is zero.
	DefaultTTL = 24 * time.Hour

	issuer = "tenantry"
)

var (
	// ErrNoSession is returned when the request carries no session cookie.
	ErrNoSession = errors.New("sessionx: no session")

	// ErrInvalidSession is returned for expired, tampered or malformed sessions.
	ErrInvalidSession = errors.New("sessionx: invalid session")
)

// Config configures a Manager.
type Config struct {
	Secret     []byte
	TTL        time.Duration
	CookieName string
	Secure     bool
}

// Claims is the session token body.
type Claims struct {
	jwt.RegisteredClaims
}

// Manager issues and reads session cookies.
type Manager struct {
	secret []byte
	ttl    time.Duration
	name   string
	secure bool

	now func() time.Time
}

// New validates cfg and returns a Manager.
func New(cfg Config) (*Manager, error) {
	if len(cfg.Secret) < 32 {
		return nil, fmt.Errorf("sessionx: secret must be at least 32 bytes, got %d", len(cfg.Secret))
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.CookieName == "" {
		cfg.CookieName = DefaultCookieName
	}
	return &Manager{
		secret: cfg.Secret,
		ttl:    cfg.TTL,
		name:   cfg.CookieName,
		secure: cfg.Secure,
		now:    time.Now,
	}, nil
}

// Issue signs a session for userID and sets it on the response.
func (m *Manager) Issue(w http.ResponseWriter, userID idx.ID) error {
	now := m.now().UTC()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			ID:        idx.New().String(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return fmt.Errorf("sessionx: sign: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     m.name,
		Value:    signed,
		Path:     "/",
		Expires:  now.Add(m.ttl),
		MaxAge:   int(m.ttl.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Clear expires the session cookie.
func (m *Manager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// UserID returns the signed in user of r.
func (m *Manager) UserID(r *http.Request) (idx.ID, error) {
	c, err := r.Cookie(m.name)
	if err != nil || c.Value == "" {
		return idx.Zero, ErrNoSession
	}

	var claims Claims
	_, err = jwt.ParseWithClaims(c.Value, &claims, func(t *jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return idx.Zero, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}

	id, err := idx.Parse(claims.Subject)
	if err != nil {
		return idx.Zero, fmt.Errorf("%w: bad subject", ErrInvalidSession)
	}
	return id, nil
}
