package auth

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// AdminUserID is the subject of tokens minted by an admin session.
const AdminUserID = "admin"

// AdminAuthority grants access to lead listing and export.
type AdminAuthority struct{}

// Authorize returns nil only for admin principals.
func (AdminAuthority) Authorize(_ context.Context, p Principal) error {
	if p.UserID == "" {
		return ErrUnauthenticated
	}
	if p.Role != RoleAdmin {
		return ErrForbidden
	}
	return nil
}

// AdminCredential checks the operator password against a bcrypt hash.
type AdminCredential struct {
	hash []byte
}

// NewAdminCredential validates hash. An empty hash disables admin sessions.
func NewAdminCredential(hash string) (*AdminCredential, error) {
	if hash == "" {
		return &AdminCredential{}, nil
	}
	if _, err := bcrypt.Cost([]byte(hash)); err != nil {
		return nil, fmt.Errorf("auth.adminPasswordHash is not a bcrypt hash: %w", err)
	}
	return &AdminCredential{hash: []byte(hash)}, nil
}

// Enabled reports whether a hash is configured.
func (c *AdminCredential) Enabled() bool {
	return len(c.hash) > 0
}

// Verify returns ErrUnauthenticated unless password matches.
func (c *AdminCredential) Verify(password string) error {
	if !c.Enabled() || password == "" {
		return ErrUnauthenticated
	}
	if err := bcrypt.CompareHashAndPassword(c.hash, []byte(password)); err != nil {
		return ErrUnauthenticated
	}
	return nil
}

// HashPassword returns a bcrypt hash suitable for auth.adminPasswordHash.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("password must not be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}
