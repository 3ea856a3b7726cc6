// Package gate enforces expiry and password policy for mappings.
//
// Password verification state is cookie-only: a correct password mints a
// signed token in an auth_<hash> cookie, and later requests pass the gate
// by presenting it. Nothing is persisted server-side.
package gate

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/duktw/duk/internal/mapping"
	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrExpired means the mapping's expiry is in the past. Terminal.
	ErrExpired = errors.New("link expired")
	// ErrPasswordRequired means a password gate applies and no valid
	// proof was presented. Not an error state for browsers: the caller
	// renders the password prompt.
	ErrPasswordRequired = errors.New("password required")
	// ErrInvalidPassword means a submitted password did not match.
	ErrInvalidPassword = errors.New("invalid password")
)

// CookieLifetime is the validity window of a verification cookie.
const CookieLifetime = time.Hour

// CookieName returns the per-hash verification cookie name.
func CookieName(hash mapping.Hash) string {
	return "auth_" + string(hash)
}

// Gate decides pass/block for password-protected mappings and mints
// verification cookies.
type Gate struct {
	secret []byte
	secure bool
	now    func() time.Time
}

// New creates a gate signing verification cookies with secret. When secure
// is set, cookies are marked Secure (production behind TLS).
func New(secret string, secure bool) *Gate {
	return &Gate{
		secret: []byte(secret),
		secure: secure,
		now:    time.Now,
	}
}

// Check decides pass/block for a mapping given the request's raw Cookie
// header. Expiry is checked before the password gate, so an expired link
// is 410 regardless of password state.
func (g *Gate) Check(m *mapping.Mapping, cookieHeader string) error {
	if m.Expired(g.now()) {
		return ErrExpired
	}

	if !m.Protected() {
		return nil
	}

	if g.hasValidCookie(m.Hash, cookieHeader) {
		return nil
	}

	return ErrPasswordRequired
}

// VerifyPassword compares a submitted password against the stored one.
// The stored value is a short numeric access code, not a credential, so
// this is a plain equality check: access friction, not authentication.
func (g *Gate) VerifyPassword(m *mapping.Mapping, supplied string) error {
	if m.Expired(g.now()) {
		return ErrExpired
	}

	if !m.Protected() {
		return nil
	}

	if supplied == "" {
		return ErrPasswordRequired
	}

	if supplied != m.Password {
		return ErrInvalidPassword
	}

	return nil
}

// IssueCookie mints the auth_<hash> verification cookie after a successful
// password match. The token is an HS256 JWT scoped to the hash.
func (g *Gate) IssueCookie(hash mapping.Hash) (*http.Cookie, error) {
	now := g.now()
	claims := jwt.RegisteredClaims{
		Subject:   string(hash),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(CookieLifetime)),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(g.secret)
	if err != nil {
		return nil, fmt.Errorf("sign verification token: %w", err)
	}

	return &http.Cookie{
		Name:     CookieName(hash),
		Value:    token,
		Path:     "/",
		MaxAge:   int(CookieLifetime.Seconds()),
		HttpOnly: true,
		Secure:   g.secure,
		SameSite: http.SameSiteStrictMode,
	}, nil
}

func (g *Gate) hasValidCookie(hash mapping.Hash, cookieHeader string) bool {
	if cookieHeader == "" {
		return false
	}

	cookies, err := http.ParseCookie(cookieHeader)
	if err != nil {
		return false
	}

	name := CookieName(hash)
	for _, c := range cookies {
		if c.Name == name && g.validToken(hash, c.Value) {
			return true
		}
	}

	return false
}

func (g *Gate) validToken(hash mapping.Hash, raw string) bool {
	token, err := jwt.Parse(raw,
		func(*jwt.Token) (any, error) { return g.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(g.now),
	)
	if err != nil || !token.Valid {
		return false
	}

	subject, err := token.Claims.GetSubject()

	return err == nil && subject == string(hash)
}
