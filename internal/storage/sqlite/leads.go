package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/iwvelando/cost-estimator/internal/estimator"
	"github.com/iwvelando/cost-estimator/internal/leads"
)

// LeadStore implements leads.Store.
type LeadStore struct {
	db *sql.DB
}

var _ leads.Store = (*LeadStore)(nil)

// Insert implements leads.Store.
func (s *LeadStore) Insert(ctx context.Context, l leads.Lead) error {
	breakdown, err := json.Marshal(l.Breakdown)
	if err != nil {
		return fmt.Errorf("encoding breakdown: %w", err)
	}

	consent := 0
	if l.Consent {
		consent = 1
	}

	_, err = s.db.ExecContext(ctx, `INSERT INTO leads
		(id, email, consent, country, city, lifestyle, stay_length, housing_type, traveler_type,
		 work_style, total_cost, breakdown, identifier_hash, created_at_ns)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.ID, l.Email, consent, l.Destination, l.City, string(l.Lifestyle), l.StayLength,
		string(l.Housing), string(l.Traveler), string(l.WorkStyle), l.TotalCost,
		string(breakdown), l.IdentifierHash, l.CreatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("inserting lead %s: %w", l.ID, err)
	}
	return nil
}

// List implements leads.Store.
func (s *LeadStore) List(ctx context.Context) ([]leads.Lead, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT
		id, email, consent, country, city, lifestyle, stay_length, housing_type, traveler_type,
		work_style, total_cost, breakdown, identifier_hash, created_at_ns
		FROM leads ORDER BY created_at_ns DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying leads: %w", err)
	}
	defer func() { _ = rows.Close() }()

	result := make([]leads.Lead, 0)
	for rows.Next() {
		var (
			l                                  leads.Lead
			consent                            int
			lifestyle, housing, traveler, work string
			breakdown                          string
			createdNs                          int64
		)
		if err := rows.Scan(
			&l.ID, &l.Email, &consent, &l.Destination, &l.City, &lifestyle, &l.StayLength,
			&housing, &traveler, &work, &l.TotalCost, &breakdown, &l.IdentifierHash, &createdNs,
		); err != nil {
			return nil, fmt.Errorf("scanning lead: %w", err)
		}
		if err := json.Unmarshal([]byte(breakdown), &l.Breakdown); err != nil {
			return nil, fmt.Errorf("decoding breakdown of lead %s: %w", l.ID, err)
		}
		l.Consent = consent == 1
		l.Lifestyle = estimator.Lifestyle(lifestyle)
		l.Housing = estimator.HousingType(housing)
		l.Traveler = estimator.TravelerType(traveler)
		l.WorkStyle = estimator.WorkStyle(work)
		l.CreatedAt = time.Unix(0, createdNs).UTC()
		result = append(result, l)
	}
	return result, rows.Err()
}
