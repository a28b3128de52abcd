package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// minSigningKeyLength is the HS256 key size in bytes.
const minSigningKeyLength = 32

// Claims is the token payload.
type Claims struct {
	Role Role `json:"role"`
	jwt.RegisteredClaims
}

// JWTAuthority issues and verifies HS256 tokens.
type JWTAuthority struct {
	key      []byte
	issuer   string
	audience string
	now      func() time.Time
}

var _ Authority = (*JWTAuthority)(nil)

// NewJWTAuthority returns an authority signing with key.
func NewJWTAuthority(key, issuer, audience string) (*JWTAuthority, error) {
	if len(key) < minSigningKeyLength {
		return nil, fmt.Errorf("auth.signingKey must be at least %d bytes, got %d", minSigningKeyLength, len(key))
	}
	if strings.TrimSpace(issuer) == "" || strings.TrimSpace(audience) == "" {
		return nil, errors.New("auth.issuer and auth.audience are required")
	}
	return &JWTAuthority{
		key:      []byte(key),
		issuer:   issuer,
		audience: audience,
		now:      time.Now,
	}, nil
}

// Issue mints a token for p valid for ttl.
func (a *JWTAuthority) Issue(p Principal, ttl time.Duration) (string, error) {
	if strings.TrimSpace(p.UserID) == "" {
		return "", errors.New("principal has no user ID")
	}
	if !p.Role.valid() {
		return "", fmt.Errorf("unknown role %q", p.Role)
	}
	if ttl <= 0 {
		return "", fmt.Errorf("token ttl must be positive, got %s", ttl)
	}

	now := a.now()
	claims := Claims{
		Role: p.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.UserID,
			Issuer:    a.issuer,
			Audience:  jwt.ClaimStrings{a.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.key)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// Authenticate implements Authority.
func (a *JWTAuthority) Authenticate(_ context.Context, token string) (Principal, error) {
	claims := new(Claims)
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(a.issuer),
		jwt.WithAudience(a.audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	)

	parsed, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return a.key, nil
	})
	if err != nil || !parsed.Valid {
		return Principal{}, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}
	if claims.Subject == "" || !claims.Role.valid() {
		return Principal{}, fmt.Errorf("%w: token missing subject or role", ErrUnauthenticated)
	}
	return Principal{UserID: claims.Subject, Role: claims.Role}, nil
}
