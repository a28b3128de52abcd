package postgres

import (
	"context"
	"fmt"

	"github.com/iwvelando/cost-estimator/internal/estimator"
	"github.com/iwvelando/cost-estimator/internal/leads"
	"github.com/jackc/pgx/v5/pgxpool"
)

// LeadStore implements leads.Store. The breakdown is kept as JSONB.
type LeadStore struct {
	pool *pgxpool.Pool
}

var _ leads.Store = (*LeadStore)(nil)

// Insert implements leads.Store.
func (s *LeadStore) Insert(ctx context.Context, l leads.Lead) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO leads (
			id, email, consent, country, city, lifestyle, stay_length, housing_type, traveler_type,
			work_style, total_cost, breakdown, identifier_hash, created_at
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
	`, l.ID, l.Email, l.Consent, l.Destination, l.City, string(l.Lifestyle), l.StayLength,
		string(l.Housing), string(l.Traveler), string(l.WorkStyle), l.TotalCost,
		l.Breakdown, l.IdentifierHash, l.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("inserting lead %s: %w", l.ID, err)
	}
	return nil
}

// List implements leads.Store.
func (s *LeadStore) List(ctx context.Context) ([]leads.Lead, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, email, consent, country, city, lifestyle, stay_length, housing_type, traveler_type,
			work_style, total_cost, breakdown, identifier_hash, created_at
		FROM leads
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("querying leads: %w", err)
	}
	defer rows.Close()

	result := make([]leads.Lead, 0)
	for rows.Next() {
		var (
			l                                  leads.Lead
			lifestyle, housing, traveler, work string
		)
		if err := rows.Scan(
			&l.ID, &l.Email, &l.Consent, &l.Destination, &l.City, &lifestyle, &l.StayLength,
			&housing, &traveler, &work, &l.TotalCost, &l.Breakdown, &l.IdentifierHash, &l.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning lead: %w", err)
		}
		l.Lifestyle = estimator.Lifestyle(lifestyle)
		l.Housing = estimator.HousingType(housing)
		l.Traveler = estimator.TravelerType(traveler)
		l.WorkStyle = estimator.WorkStyle(work)
		l.CreatedAt = l.CreatedAt.UTC()
		result = append(result, l)
	}
	return result, rows.Err()
}
