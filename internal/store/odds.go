package store

import (
	"context"
	"fmt"
	"time"

	"github.com/BTheCoderr/theRounders/pkg/models"
)

// RecordLineMovement appends a price observation to the movement history
func (s *Store) RecordLineMovement(ctx context.Context, m *models.LineMovement) error {
	if m.RecordedAt.IsZero() {
		m.RecordedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, s.rebind(
		`INSERT INTO line_movements (event_id, sport_key, market_key, book_key,
			outcome_name, price, point, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
		m.EventID, m.SportKey, m.MarketKey, m.BookKey, m.OutcomeName,
		m.Price, m.Point, m.RecordedAt)
	if err != nil {
		return fmt.Errorf("failed to record line movement: %w", err)
	}
	return nil
}

// LineHistory returns movements for an outcome at a book, oldest first,
// restricted to the trailing window
func (s *Store) LineHistory(ctx context.Context, eventID, marketKey, bookKey, outcomeName string, since time.Time) ([]models.LineMovement, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(
		`SELECT id, event_id, sport_key, market_key, book_key, outcome_name,
			price, point, recorded_at
		FROM line_movements
		WHERE event_id = ? AND market_key = ? AND book_key = ? AND outcome_name = ?
			AND recorded_at >= ?
		ORDER BY recorded_at ASC`),
		eventID, marketKey, bookKey, outcomeName, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query line history: %w", err)
	}
	defer rows.Close()

	var movements []models.LineMovement
	for rows.Next() {
		var m models.LineMovement
		if err := rows.Scan(&m.ID, &m.EventID, &m.SportKey, &m.MarketKey,
			&m.BookKey, &m.OutcomeName, &m.Price, &m.Point, &m.RecordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan line movement: %w", err)
		}
		movements = append(movements, m)
	}
	return movements, rows.Err()
}

// EventLineHistory returns all movements for an event, oldest first
func (s *Store) EventLineHistory(ctx context.Context, eventID string, limit int) ([]models.LineMovement, error) {
	if limit <= 0 {
		limit = 500
	}

	rows, err := s.db.QueryContext(ctx, s.rebind(
		`SELECT id, event_id, sport_key, market_key, book_key, outcome_name,
			price, point, recorded_at
		FROM line_movements
		WHERE event_id = ?
		ORDER BY recorded_at ASC LIMIT ?`),
		eventID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query event line history: %w", err)
	}
	defer rows.Close()

	var movements []models.LineMovement
	for rows.Next() {
		var m models.LineMovement
		if err := rows.Scan(&m.ID, &m.EventID, &m.SportKey, &m.MarketKey,
			&m.BookKey, &m.OutcomeName, &m.Price, &m.Point, &m.RecordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan line movement: %w", err)
		}
		movements = append(movements, m)
	}
	return movements, rows.Err()
}

// UpsertClosingLine stores the final pre-game price for an outcome. The last
// write before commence time wins.
func (s *Store) UpsertClosingLine(ctx context.Context, cl *models.ClosingLine) error {
	if cl.ClosedAt.IsZero() {
		cl.ClosedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, s.rebind(
		`INSERT INTO closing_lines (event_id, market_key, book_key, outcome_name,
			closing_price, point, closed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (event_id, market_key, book_key, outcome_name)
		DO UPDATE SET closing_price = excluded.closing_price,
			point = excluded.point, closed_at = excluded.closed_at`),
		cl.EventID, cl.MarketKey, cl.BookKey, cl.OutcomeName,
		cl.ClosingPrice, cl.Point, cl.ClosedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert closing line: %w", err)
	}
	return nil
}

// GetClosingLine fetches the captured closing price for an outcome, nil if none
func (s *Store) GetClosingLine(ctx context.Context, eventID, marketKey, bookKey, outcomeName string) (*models.ClosingLine, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(
		`SELECT event_id, market_key, book_key, outcome_name, closing_price, point, closed_at
		FROM closing_lines
		WHERE event_id = ? AND market_key = ? AND book_key = ? AND outcome_name = ?`),
		eventID, marketKey, bookKey, outcomeName)
	if err != nil {
		return nil, fmt.Errorf("failed to query closing line: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}

	var cl models.ClosingLine
	if err := rows.Scan(&cl.EventID, &cl.MarketKey, &cl.BookKey, &cl.OutcomeName,
		&cl.ClosingPrice, &cl.Point, &cl.ClosedAt); err != nil {
		return nil, fmt.Errorf("failed to scan closing line: %w", err)
	}
	return &cl, nil
}

// UpsertBetPerformance records or refreshes the CLV figures for a bet
func (s *Store) UpsertBetPerformance(ctx context.Context, perf *models.BetPerformance) error {
	if perf.RecordedAt.IsZero() {
		perf.RecordedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, s.rebind(
		`INSERT INTO bet_performance (bet_id, closing_line_price, clv_cents,
			hold_time_seconds, recorded_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (bet_id)
		DO UPDATE SET closing_line_price = excluded.closing_line_price,
			clv_cents = excluded.clv_cents,
			hold_time_seconds = excluded.hold_time_seconds,
			recorded_at = excluded.recorded_at`),
		perf.BetID, perf.ClosingLinePrice, perf.CLVCents,
		perf.HoldTimeSeconds, perf.RecordedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert bet performance: %w", err)
	}
	return nil
}

// GetBetPerformance fetches the CLV record for a bet, nil if not yet computed
func (s *Store) GetBetPerformance(ctx context.Context, betID int64) (*models.BetPerformance, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(
		`SELECT bet_id, closing_line_price, clv_cents, hold_time_seconds, recorded_at
		FROM bet_performance WHERE bet_id = ?`), betID)
	if err != nil {
		return nil, fmt.Errorf("failed to query bet performance: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}

	var perf models.BetPerformance
	if err := rows.Scan(&perf.BetID, &perf.ClosingLinePrice, &perf.CLVCents,
		&perf.HoldTimeSeconds, &perf.RecordedAt); err != nil {
		return nil, fmt.Errorf("failed to scan bet performance: %w", err)
	}
	return &perf, nil
}
