package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/iwvelando/cost-estimator/internal/estimator"
	"github.com/iwvelando/cost-estimator/internal/plans"
)

// PlanStore implements plans.Store.
type PlanStore struct {
	db *sql.DB
}

var _ plans.Store = (*PlanStore)(nil)

// Save implements plans.Store.
func (s *PlanStore) Save(ctx context.Context, userID string, p plans.Plan) (string, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	b := p.Result.Breakdown

	_, err := s.db.ExecContext(ctx, `INSERT INTO plans
		(id, user_id, country, city, lifestyle, stay_length, housing_type, traveler_type, work_style,
		 rent, food, transport, utilities, internet, health, fun, total_cost, confidence, created_at_ns)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, userID, p.Request.Destination, p.Request.City, string(p.Request.Lifestyle),
		p.Request.StayLength, string(p.Request.Housing), string(p.Request.Traveler), string(p.Request.WorkStyle),
		b.Rent, b.Food, b.Transport, b.Utilities, b.Internet, b.Health, b.Fun,
		p.Result.Total, string(p.Result.Confidence), p.CreatedAt.UnixNano(),
	)
	if err != nil {
		return "", fmt.Errorf("inserting plan %s: %w", p.ID, err)
	}
	return p.ID, nil
}

// List implements plans.Store.
func (s *PlanStore) List(ctx context.Context, userID string) ([]plans.Plan, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT
		id, user_id, country, city, lifestyle, stay_length, housing_type, traveler_type, work_style,
		rent, food, transport, utilities, internet, health, fun, total_cost, confidence, created_at_ns
		FROM plans WHERE user_id = ? ORDER BY created_at_ns DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying plans: %w", err)
	}
	defer func() { _ = rows.Close() }()

	result := make([]plans.Plan, 0)
	for rows.Next() {
		var (
			p                                  plans.Plan
			lifestyle, housing, traveler, work string
			confidence                         string
			createdNs                          int64
		)
		b := &p.Result.Breakdown
		if err := rows.Scan(
			&p.ID, &p.UserID, &p.Request.Destination, &p.Request.City, &lifestyle,
			&p.Request.StayLength, &housing, &traveler, &work,
			&b.Rent, &b.Food, &b.Transport, &b.Utilities, &b.Internet, &b.Health, &b.Fun,
			&p.Result.Total, &confidence, &createdNs,
		); err != nil {
			return nil, fmt.Errorf("scanning plan: %w", err)
		}
		p.Request.Lifestyle = estimator.Lifestyle(lifestyle)
		p.Request.Housing = estimator.HousingType(housing)
		p.Request.Traveler = estimator.TravelerType(traveler)
		p.Request.WorkStyle = estimator.WorkStyle(work)
		p.Result.Confidence = estimator.Confidence(confidence)
		p.CreatedAt = time.Unix(0, createdNs).UTC()
		result = append(result, p)
	}
	return result, rows.Err()
}

// Delete implements plans.Store. Ownership is part of the WHERE clause so a
// foreign plan is never touched.
func (s *PlanStore) Delete(ctx context.Context, userID, planID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM plans WHERE id = ? AND user_id = ?", planID, userID)
	if err != nil {
		return fmt.Errorf("deleting plan %s: %w", planID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting plan %s: %w", planID, err)
	}
	if n == 0 {
		return plans.ErrNotFound
	}
	return nil
}
