package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL is used when neither the caller nor the config sets a lifetime.
const DefaultTokenTTL = 30 * 24 * time.Hour

// Claims are the session token claims: the standard set plus the role.
type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// TokenAuthority issues and verifies HS256 session tokens. It holds only
// immutable configuration and is safe for concurrent use.
type TokenAuthority struct {
	secret     []byte
	defaultTTL time.Duration
	now        func() time.Time
	parser     *jwt.Parser
}

type Option func(*TokenAuthority)

// WithClock overrides the time source used for iat, exp and expiry checks.
func WithClock(now func() time.Time) Option {
	return func(a *TokenAuthority) { a.now = now }
}

// NewTokenAuthority fails with ErrMissingSecret when secret is empty.
// A non-positive defaultTTL falls back to DefaultTokenTTL.
func NewTokenAuthority(secret string, defaultTTL time.Duration, opts ...Option) (*TokenAuthority, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}
	if defaultTTL <= 0 {
		defaultTTL = DefaultTokenTTL
	}

	a := &TokenAuthority{
		secret:     []byte(secret),
		defaultTTL: defaultTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}

	a.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	)
	return a, nil
}

// Issue signs a token for subjectID with the given role. ttl <= 0 means the
// configured default.
func (a *TokenAuthority) Issue(subjectID string, role Role, ttl time.Duration) (string, error) {
	if subjectID == "" {
		return "", errors.New("issue token: empty subject")
	}
	if !role.Valid() {
		return "", fmt.Errorf("issue token: unknown role %q", role)
	}
	if ttl <= 0 {
		ttl = a.defaultTTL
	}

	now := a.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Role: string(role),
	})

	s, err := token.SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return s, nil
}

// Verify checks the signature, then expiry, then decodes the principal.
// Failures are *Error with KindInvalidSignature or KindExpired.
func (a *TokenAuthority) Verify(token string) (Principal, error) {
	claims := &Claims{}

	_, err := a.parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	})
	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenExpired):
		return Principal{}, newError(KindExpired, fmt.Errorf("%w: %v", ErrTokenExpired, err))
	default:
		return Principal{}, newError(KindInvalidSignature, fmt.Errorf("%w: %v", ErrInvalidSignature, err))
	}

	role, err := ParseRole(claims.Role)
	if err != nil {
		return Principal{}, newError(KindInvalidSignature, fmt.Errorf("%w: %v", ErrInvalidSignature, err))
	}
	if claims.Subject == "" {
		return Principal{}, newError(KindInvalidSignature, fmt.Errorf("%w: missing subject", ErrInvalidSignature))
	}

	p := Principal{SubjectID: claims.Subject, Role: role}
	if claims.IssuedAt != nil {
		p.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		p.ExpiresAt = claims.ExpiresAt.Time
	}
	return p, nil
}
