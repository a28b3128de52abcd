// Package auth authenticates bearer tokens and decides who may see leads.
package auth

import (
	"context"
	"errors"
	"strings"
)

var (
	// ErrUnauthenticated is returned when no valid credential was presented.
	ErrUnauthenticated = errors.New("authentication required")
	// ErrForbidden is returned when the caller is known but lacks the role.
	ErrForbidden = errors.New("forbidden")
)

// Role is the coarse permission level of a principal.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func (r Role) valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// Principal is an authenticated caller.
type Principal struct {
	UserID string `json:"userId"`
	Role   Role   `json:"role"`
}

// Authority verifies a bearer token.
type Authority interface {
	Authenticate(ctx context.Context, token string) (Principal, error)
}

type principalKey struct{}

// WithPrincipal returns a context carrying p.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// FromContext returns the principal stored by WithPrincipal.
func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, error) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", ErrUnauthenticated
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrUnauthenticated
	}
	return token, nil
}
