// Package plans persists estimates a user has chosen to keep.
package plans

import (
	"context"
	"errors"
	"time"

	"github.com/iwvelando/cost-estimator/internal/estimator"
)

// ErrNotFound is returned when a plan does not exist or belongs to another user.
var ErrNotFound = errors.New("plan not found")

// Plan is a saved estimate owned by exactly one user.
type Plan struct {
	ID        string            `json:"id"`
	UserID    string            `json:"userId"`
	Request   estimator.Request `json:"request"`
	Result    estimator.Result  `json:"result"`
	CreatedAt time.Time         `json:"createdAt"`
}

// Store is the persistence contract shared by every backend. Implementations
// must scope every operation to userID.
type Store interface {
	// Save stores plan under userID and returns its ID.
	Save(ctx context.Context, userID string, plan Plan) (string, error)
	// List returns the user's plans, most recent first.
	List(ctx context.Context, userID string) ([]Plan, error)
	// Delete removes the plan if userID owns it, otherwise ErrNotFound.
	Delete(ctx context.Context, userID, planID string) error
}
