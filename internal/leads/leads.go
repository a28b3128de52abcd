// Package leads captures email leads for the relocation guide and exports
// them for admins.
package leads

import (
	"context"
	"errors"
	"time"

	"github.com/iwvelando/cost-estimator/internal/estimator"
)

var (
	// ErrRateLimited is returned when the caller has used up its submissions
	// for the current window.
	ErrRateLimited = errors.New("rate limit exceeded, please try again later")
	// ErrInvalidEmail is returned for addresses that do not parse as a mailbox.
	ErrInvalidEmail = errors.New("invalid email address")
	// ErrConsentRequired is returned when the submitter did not opt in.
	ErrConsentRequired = errors.New("consent is required")
)

// Submission is what a visitor sends to download the guide. Totals are never
// accepted from the client; they are recomputed from the embedded request.
type Submission struct {
	Email   string `json:"email"`
	Consent bool   `json:"consent"`
	estimator.Request
}

// Lead is a stored submission.
type Lead struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Consent bool   `json:"consent"`
	estimator.Request
	TotalCost      int64               `json:"totalCost"`
	Breakdown      estimator.Breakdown `json:"breakdown"`
	CreatedAt      time.Time           `json:"createdAt"`
	IdentifierHash string              `json:"identifierHash"`
}

// Receipt is returned to the submitter.
type Receipt struct {
	LeadID string           `json:"leadId"`
	Result estimator.Result `json:"result"`
	Guide  string           `json:"guide"`
}

// Store persists leads.
type Store interface {
	Insert(ctx context.Context, lead Lead) error
	// List returns every lead, most recent first.
	List(ctx context.Context) ([]Lead, error)
}
