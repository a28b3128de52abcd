package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/iwvelando/cost-estimator/internal/estimator"
	"github.com/iwvelando/cost-estimator/internal/plans"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PlanStore implements plans.Store.
type PlanStore struct {
	pool *pgxpool.Pool
}

var _ plans.Store = (*PlanStore)(nil)

// Save implements plans.Store.
func (s *PlanStore) Save(ctx context.Context, userID string, p plans.Plan) (string, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	b := p.Result.Breakdown

	_, err := s.pool.Exec(ctx, `
		INSERT INTO plans (
			id, user_id, country, city, lifestyle, stay_length, housing_type, traveler_type, work_style,
			rent, food, transport, utilities, internet, health, fun, total_cost, confidence, created_at
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)
	`, p.ID, userID, p.Request.Destination, p.Request.City, string(p.Request.Lifestyle),
		p.Request.StayLength, string(p.Request.Housing), string(p.Request.Traveler), string(p.Request.WorkStyle),
		b.Rent, b.Food, b.Transport, b.Utilities, b.Internet, b.Health, b.Fun,
		p.Result.Total, string(p.Result.Confidence), p.CreatedAt.UTC())
	if err != nil {
		return "", fmt.Errorf("inserting plan %s: %w", p.ID, err)
	}
	return p.ID, nil
}

// List implements plans.Store.
func (s *PlanStore) List(ctx context.Context, userID string) ([]plans.Plan, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, user_id, country, city, lifestyle, stay_length, housing_type, traveler_type, work_style,
			rent, food, transport, utilities, internet, health, fun, total_cost, confidence, created_at
		FROM plans
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying plans: %w", err)
	}
	defer rows.Close()

	result := make([]plans.Plan, 0)
	for rows.Next() {
		var (
			p                                  plans.Plan
			lifestyle, housing, traveler, work string
			confidence                         string
		)
		b := &p.Result.Breakdown
		if err := rows.Scan(
			&p.ID, &p.UserID, &p.Request.Destination, &p.Request.City, &lifestyle,
			&p.Request.StayLength, &housing, &traveler, &work,
			&b.Rent, &b.Food, &b.Transport, &b.Utilities, &b.Internet, &b.Health, &b.Fun,
			&p.Result.Total, &confidence, &p.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning plan: %w", err)
		}
		p.Request.Lifestyle = estimator.Lifestyle(lifestyle)
		p.Request.Housing = estimator.HousingType(housing)
		p.Request.Traveler = estimator.TravelerType(traveler)
		p.Request.WorkStyle = estimator.WorkStyle(work)
		p.Result.Confidence = estimator.Confidence(confidence)
		p.CreatedAt = p.CreatedAt.UTC()
		result = append(result, p)
	}
	return result, rows.Err()
}

// Delete implements plans.Store.
func (s *PlanStore) Delete(ctx context.Context, userID, planID string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM plans WHERE id = $1 AND user_id = $2`, planID, userID)
	if err != nil {
		return fmt.Errorf("deleting plan %s: %w", planID, err)
	}
	if tag.RowsAffected() == 0 {
		return plans.ErrNotFound
	}
	return nil
}
