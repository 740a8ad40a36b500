package models

import "time"

// TeamRating is an Elo-style power rating for a team
type TeamRating struct {
	SportKey  string    `json:"sport_key"`
	Team      string    `json:"team"`
	Rating    float64   `json:"rating"`
	Games     int       `json:"games"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GameResult is a completed game used to update power ratings
type GameResult struct {
	EventID   string    `json:"event_id"`
	SportKey  string    `json:"sport_key"`
	HomeTeam  string    `json:"home_team"`
	AwayTeam  string    `json:"away_team"`
	HomeScore int       `json:"home_score"`
	AwayScore int       `json:"away_score"`
	PlayedAt  time.Time `json:"played_at"`
}

// SpreadPrediction is a model-predicted spread and win probability for a matchup
type SpreadPrediction struct {
	SportKey        string  `json:"sport_key"`
	HomeTeam        string  `json:"home_team"`
	AwayTeam        string  `json:"away_team"`
	PredictedSpread float64 `json:"predicted_spread"` // Positive favors home
	HomeWinProb     float64 `json:"home_win_prob"`
}
