package store

import (
	"context"
	"fmt"
	"time"

	"github.com/BTheCoderr/theRounders/pkg/models"
)

// SaveOpportunity writes an opportunity and its legs in one transaction
func (s *Store) SaveOpportunity(ctx context.Context, opp *models.Opportunity) error {
	if opp.DetectedAt.IsZero() {
		opp.DetectedAt = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	id, err := s.insertReturningID(ctx, tx,
		`INSERT INTO opportunities (opportunity_type, sport_key, event_id, market_key,
			edge_pct, fair_price, sharp_confidence, detected_at, data_age_seconds)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		opp.OpportunityType, opp.SportKey, opp.EventID, opp.MarketKey,
		opp.EdgePercent, opp.FairPrice, opp.SharpConfidence,
		opp.DetectedAt, opp.DataAgeSeconds)
	if err != nil {
		return fmt.Errorf("failed to insert opportunity: %w", err)
	}

	for _, leg := range opp.Legs {
		_, err := tx.ExecContext(ctx, s.rebind(
			`INSERT INTO opportunity_legs (opportunity_id, book_key, outcome_name,
				price, point, stake, leg_edge_pct)
			VALUES (?, ?, ?, ?, ?, ?, ?)`),
			id, leg.BookKey, leg.OutcomeName, leg.Price, leg.Point,
			leg.Stake, leg.LegEdgePercent)
		if err != nil {
			return fmt.Errorf("failed to insert opportunity leg: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit opportunity: %w", err)
	}

	opp.ID = id
	return nil
}

// RecentOpportunities returns opportunities detected since the cutoff, newest
// first, with legs attached. An empty oppType matches all types.
func (s *Store) RecentOpportunities(ctx context.Context, oppType models.OpportunityType, since time.Time, limit int) ([]models.Opportunity, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `SELECT id, opportunity_type, sport_key, event_id, market_key,
			edge_pct, fair_price, sharp_confidence, detected_at, data_age_seconds
		FROM opportunities
		WHERE detected_at >= ?`
	args := []interface{}{since}

	if oppType != "" {
		query += ` AND opportunity_type = ?`
		args = append(args, oppType)
	}
	query += ` ORDER BY detected_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query opportunities: %w", err)
	}
	defer rows.Close()

	var opps []models.Opportunity
	for rows.Next() {
		var opp models.Opportunity
		if err := rows.Scan(&opp.ID, &opp.OpportunityType, &opp.SportKey,
			&opp.EventID, &opp.MarketKey, &opp.EdgePercent, &opp.FairPrice,
			&opp.SharpConfidence, &opp.DetectedAt, &opp.DataAgeSeconds); err != nil {
			return nil, fmt.Errorf("failed to scan opportunity: %w", err)
		}
		opps = append(opps, opp)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range opps {
		legs, err := s.opportunityLegs(ctx, opps[i].ID)
		if err != nil {
			return nil, err
		}
		opps[i].Legs = legs
	}
	return opps, nil
}

func (s *Store) opportunityLegs(ctx context.Context, oppID int64) ([]models.OpportunityLeg, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(
		`SELECT book_key, outcome_name, price, point, stake, leg_edge_pct
		FROM opportunity_legs WHERE opportunity_id = ? ORDER BY id ASC`), oppID)
	if err != nil {
		return nil, fmt.Errorf("failed to query opportunity legs: %w", err)
	}
	defer rows.Close()

	var legs []models.OpportunityLeg
	for rows.Next() {
		var leg models.OpportunityLeg
		if err := rows.Scan(&leg.BookKey, &leg.OutcomeName, &leg.Price,
			&leg.Point, &leg.Stake, &leg.LegEdgePercent); err != nil {
			return nil, fmt.Errorf("failed to scan opportunity leg: %w", err)
		}
		legs = append(legs, leg)
	}
	return legs, rows.Err()
}
