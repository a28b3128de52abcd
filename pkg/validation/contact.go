package validation

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
)

// ErrInvalidEmail reports an address that is not a bare RFC 5322 mailbox.
var ErrInvalidEmail = errors.New("invalid email address")

// maxEmailLength follows the SMTP path limit.
const maxEmailLength = 254

// NormalizeEmail trims and validates address, returning the bare mailbox.
// Display names ("Ann <ann@example.com>") are rejected.
func NormalizeEmail(address string) (string, error) {
	trimmed := strings.TrimSpace(address)
	if trimmed == "" || len(trimmed) > maxEmailLength {
		return "", fmt.Errorf("%w: %q", ErrInvalidEmail, address)
	}

	parsed, err := mail.ParseAddress(trimmed)
	if err != nil || parsed.Name != "" || parsed.Address != trimmed {
		return "", fmt.Errorf("%w: %q", ErrInvalidEmail, address)
	}

	at := strings.LastIndex(parsed.Address, "@")
	if !strings.Contains(parsed.Address[at+1:], ".") {
		return "", fmt.Errorf("%w: %q has no domain suffix", ErrInvalidEmail, address)
	}
	return parsed.Address, nil
}
