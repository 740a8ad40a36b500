package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/BTheCoderr/theRounders/pkg/models"
	"github.com/google/uuid"
)

// CreateBet inserts a new bet and fills in its ID, ExternalRef and PlacedAt
func (s *Store) CreateBet(ctx context.Context, bet *models.Bet) error {
	if bet.ExternalRef == "" {
		bet.ExternalRef = uuid.New().String()
	}
	if bet.PlacedAt.IsZero() {
		bet.PlacedAt = time.Now().UTC()
	}
	if bet.Result == "" {
		bet.Result = models.BetResultPending
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	id, err := s.insertReturningID(ctx, tx,
		`INSERT INTO bets (external_ref, sport_key, event_id, market_key, book_key,
			outcome_name, price, point, stake, paper_trade, opportunity_id, notes,
			result, steam_move, placed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		bet.ExternalRef, bet.SportKey, bet.EventID, bet.MarketKey, bet.BookKey,
		bet.OutcomeName, bet.Price, bet.Point, bet.Stake, bet.PaperTrade,
		bet.OpportunityID, bet.Notes, bet.Result, bet.SteamMove, bet.PlacedAt)
	if err != nil {
		return fmt.Errorf("failed to insert bet: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit bet: %w", err)
	}

	bet.ID = id
	return nil
}

// GetBet fetches a single bet by ID
func (s *Store) GetBet(ctx context.Context, id int64) (*models.Bet, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(
		`SELECT id, external_ref, sport_key, event_id, market_key, book_key,
			outcome_name, price, point, stake, paper_trade, opportunity_id, notes,
			result, profit_loss, steam_move, placed_at, settled_at
		FROM bets WHERE id = ?`), id)

	bet, err := scanBet(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bet %d: %w", id, err)
	}
	return bet, nil
}

// ListBets returns bets, newest first, optionally filtered by result
func (s *Store) ListBets(ctx context.Context, result models.BetResult, limit int) ([]models.Bet, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `SELECT id, external_ref, sport_key, event_id, market_key, book_key,
			outcome_name, price, point, stake, paper_trade, opportunity_id, notes,
			result, profit_loss, steam_move, placed_at, settled_at
		FROM bets`
	args := []interface{}{}

	if result != "" {
		query += ` WHERE result = ?`
		args = append(args, result)
	}
	query += ` ORDER BY placed_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list bets: %w", err)
	}
	defer rows.Close()

	var bets []models.Bet
	for rows.Next() {
		bet, err := scanBet(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bet: %w", err)
		}
		bets = append(bets, *bet)
	}
	return bets, rows.Err()
}

// PendingBets returns all unsettled bets for the given sport (all sports if empty)
func (s *Store) PendingBets(ctx context.Context, sportKey string) ([]models.Bet, error) {
	query := `SELECT id, external_ref, sport_key, event_id, market_key, book_key,
			outcome_name, price, point, stake, paper_trade, opportunity_id, notes,
			result, profit_loss, steam_move, placed_at, settled_at
		FROM bets WHERE result = ?`
	args := []interface{}{models.BetResultPending}

	if sportKey != "" {
		query += ` AND sport_key = ?`
		args = append(args, sportKey)
	}
	query += ` ORDER BY placed_at ASC`

	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending bets: %w", err)
	}
	defer rows.Close()

	var bets []models.Bet
	for rows.Next() {
		bet, err := scanBet(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bet: %w", err)
		}
		bets = append(bets, *bet)
	}
	return bets, rows.Err()
}

// SettleBet records the outcome and profit/loss of a bet
func (s *Store) SettleBet(ctx context.Context, id int64, result models.BetResult, profitLoss float64) error {
	res, err := s.db.ExecContext(ctx, s.rebind(
		`UPDATE bets SET result = ?, profit_loss = ?, settled_at = ? WHERE id = ? AND result = ?`),
		result, profitLoss, time.Now().UTC(), id, models.BetResultPending)
	if err != nil {
		return fmt.Errorf("failed to settle bet %d: %w", id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check settle result: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("bet %d not found or already settled", id)
	}
	return nil
}

// DeleteBet removes a bet and its performance record
func (s *Store) DeleteBet(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM bet_performance WHERE bet_id = ?`), id); err != nil {
		return fmt.Errorf("failed to delete bet performance: %w", err)
	}

	res, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM bets WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete bet %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("bet %d not found", id)
	}

	return tx.Commit()
}

// BetSummary aggregates performance across settled bets
func (s *Store) BetSummary(ctx context.Context) (*models.BetSummary, error) {
	summary := &models.BetSummary{}

	err := s.db.QueryRowContext(ctx, s.rebind(
		`SELECT COUNT(*),
			COALESCE(SUM(CASE WHEN result = 'win' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN result = 'loss' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN result = 'push' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN result = 'pending' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN result != 'pending' THEN stake ELSE 0 END), 0),
			COALESCE(SUM(profit_loss), 0)
		FROM bets`)).Scan(
		&summary.TotalBets, &summary.Wins, &summary.Losses, &summary.Pushes,
		&summary.PendingBets, &summary.TotalStaked, &summary.TotalProfitLoss)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate bets: %w", err)
	}

	decided := summary.Wins + summary.Losses
	if decided > 0 {
		summary.WinRate = float64(summary.Wins) / float64(decided) * 100
	}
	if summary.TotalStaked > 0 {
		summary.ROI = summary.TotalProfitLoss / summary.TotalStaked * 100
	}

	err = s.db.QueryRowContext(ctx, s.rebind(
		`SELECT COALESCE(AVG(clv_cents), 0),
			COALESCE(AVG(CASE WHEN clv_cents > 0 THEN 1.0 ELSE 0.0 END), 0) * 100,
			COUNT(*)
		FROM bet_performance`)).Scan(
		&summary.AvgCLV, &summary.PositiveCLVRate, &summary.TrackedCLV)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate CLV: %w", err)
	}

	return summary, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBet(row rowScanner) (*models.Bet, error) {
	var bet models.Bet
	err := row.Scan(&bet.ID, &bet.ExternalRef, &bet.SportKey, &bet.EventID,
		&bet.MarketKey, &bet.BookKey, &bet.OutcomeName, &bet.Price, &bet.Point,
		&bet.Stake, &bet.PaperTrade, &bet.OpportunityID, &bet.Notes, &bet.Result,
		&bet.ProfitLoss, &bet.SteamMove, &bet.PlacedAt, &bet.SettledAt)
	if err != nil {
		return nil, err
	}
	return &bet, nil
}
