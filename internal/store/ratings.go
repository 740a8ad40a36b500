package store

import (
	"context"
	"fmt"
	"time"

	"github.com/BTheCoderr/theRounders/pkg/models"
)

// SaveGameResult stores a final score. A result for the same event is
// silently skipped so settlement retries stay idempotent.
func (s *Store) SaveGameResult(ctx context.Context, result *models.GameResult) error {
	if result.PlayedAt.IsZero() {
		result.PlayedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, s.rebind(
		`INSERT INTO game_results (event_id, sport_key, home_team, away_team,
			home_score, away_score, played_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (event_id) DO NOTHING`),
		result.EventID, result.SportKey, result.HomeTeam, result.AwayTeam,
		result.HomeScore, result.AwayScore, result.PlayedAt)
	if err != nil {
		return fmt.Errorf("failed to save game result: %w", err)
	}
	return nil
}

// GameResults returns all stored results for a sport, oldest first
func (s *Store) GameResults(ctx context.Context, sportKey string) ([]models.GameResult, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(
		`SELECT event_id, sport_key, home_team, away_team, home_score, away_score, played_at
		FROM game_results WHERE sport_key = ? ORDER BY played_at ASC`), sportKey)
	if err != nil {
		return nil, fmt.Errorf("failed to query game results: %w", err)
	}
	defer rows.Close()

	var results []models.GameResult
	for rows.Next() {
		var r models.GameResult
		if err := rows.Scan(&r.EventID, &r.SportKey, &r.HomeTeam, &r.AwayTeam,
			&r.HomeScore, &r.AwayScore, &r.PlayedAt); err != nil {
			return nil, fmt.Errorf("failed to scan game result: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// UpsertTeamRating stores the current rating for a team
func (s *Store) UpsertTeamRating(ctx context.Context, rating *models.TeamRating) error {
	if rating.UpdatedAt.IsZero() {
		rating.UpdatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, s.rebind(
		`INSERT INTO team_ratings (sport_key, team, rating, games, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (sport_key, team)
		DO UPDATE SET rating = excluded.rating, games = excluded.games,
			updated_at = excluded.updated_at`),
		rating.SportKey, rating.Team, rating.Rating, rating.Games, rating.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert team rating: %w", err)
	}
	return nil
}

// TeamRatings returns all ratings for a sport, strongest first
func (s *Store) TeamRatings(ctx context.Context, sportKey string) ([]models.TeamRating, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(
		`SELECT sport_key, team, rating, games, updated_at
		FROM team_ratings WHERE sport_key = ? ORDER BY rating DESC`), sportKey)
	if err != nil {
		return nil, fmt.Errorf("failed to query team ratings: %w", err)
	}
	defer rows.Close()

	var ratings []models.TeamRating
	for rows.Next() {
		var r models.TeamRating
		if err := rows.Scan(&r.SportKey, &r.Team, &r.Rating, &r.Games, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan team rating: %w", err)
		}
		ratings = append(ratings, r)
	}
	return ratings, rows.Err()
}
