package plans

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/iwvelando/cost-estimator/internal/estimator"
	"go.uber.org/zap"
)

// Service computes estimates server side before persisting them.
type Service struct {
	store     Store
	estimator *estimator.Estimator
	logger    *zap.Logger
	now       func() time.Time
}

// NewService wires a Store to an Estimator.
func NewService(store Store, est *estimator.Estimator, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:     store,
		estimator: est,
		logger:    logger,
		now:       time.Now,
	}
}

// Create estimates req and saves the request and result for userID.
func (s *Service) Create(ctx context.Context, userID string, req estimator.Request) (Plan, error) {
	result, err := s.estimator.Estimate(req)
	if err != nil {
		return Plan{}, err
	}

	plan := Plan{
		ID:        uuid.NewString(),
		UserID:    userID,
		Request:   req,
		Result:    result,
		CreatedAt: s.now().UTC(),
	}

	id, err := s.store.Save(ctx, userID, plan)
	if err != nil {
		s.logger.Error("failed to save plan",
			zap.String("op", "plans.Create"),
			zap.String("user", userID),
			zap.Error(err),
		)
		return Plan{}, fmt.Errorf("saving plan: %w", err)
	}
	plan.ID = id

	s.logger.Debug("plan saved",
		zap.String("op", "plans.Create"),
		zap.String("plan", id),
		zap.String("destination", req.Destination),
		zap.Int64("total", result.Total),
	)
	return plan, nil
}

// List returns userID's plans, most recent first.
func (s *Service) List(ctx context.Context, userID string) ([]Plan, error) {
	list, err := s.store.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing plans: %w", err)
	}
	return list, nil
}

// Delete removes planID if userID owns it.
func (s *Service) Delete(ctx context.Context, userID, planID string) error {
	if err := s.store.Delete(ctx, userID, planID); err != nil {
		return err
	}
	s.logger.Debug("plan deleted",
		zap.String("op", "plans.Delete"),
		zap.String("plan", planID),
	)
	return nil
}
