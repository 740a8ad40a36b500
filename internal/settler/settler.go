// Package settler grades pending bets once their events complete, using
// the vendor's scores endpoint.
package settler

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/BTheCoderr/theRounders/internal/oddsapi"
	"github.com/BTheCoderr/theRounders/internal/store"
	"github.com/BTheCoderr/theRounders/pkg/models"
	"github.com/BTheCoderr/theRounders/pkg/oddsmath"
)

// GameResultSink receives final scores of settled events, e.g. to feed
// team ratings
type GameResultSink interface {
	RecordResult(ctx context.Context, result models.GameResult) error
}

// CLVScorer scores a bet against its captured closing line. Settlement is
// the last chance to record CLV for a bet the periodic pass missed.
type CLVScorer interface {
	ProcessBet(ctx context.Context, betID int64) (bool, error)
}

// Settler polls for completed events and settles their bets
type Settler struct {
	store        *store.Store
	client       *oddsapi.Client
	pollInterval time.Duration
	minBetAge    time.Duration
	resultSink   GameResultSink
	clvScorer    CLVScorer
}

// New creates a settler. resultSink and clvScorer may be nil.
func New(st *store.Store, client *oddsapi.Client, pollInterval time.Duration, resultSink GameResultSink, clvScorer CLVScorer) *Settler {
	return &Settler{
		store:        st,
		client:       client,
		pollInterval: pollInterval,
		minBetAge:    time.Hour,
		resultSink:   resultSink,
		clvScorer:    clvScorer,
	}
}

// Start runs the settlement loop until the context is cancelled
func (s *Settler) Start(ctx context.Context) error {
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	if err := s.SettlePending(ctx); err != nil {
		fmt.Printf("[Settlement] initial run error: %v\n", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := s.SettlePending(ctx); err != nil {
				fmt.Printf("[Settlement] error: %v\n", err)
			}
		}
	}
}

// SettlePending settles every pending bet whose event has completed
func (s *Settler) SettlePending(ctx context.Context) error {
	bets, err := s.store.PendingBets(ctx, "")
	if err != nil {
		return fmt.Errorf("failed to load pending bets: %w", err)
	}

	// Group by sport+event; skip bets too young for their game to be over
	type eventKey struct{ sportKey, eventID string }
	byEvent := make(map[eventKey][]models.Bet)
	for _, bet := range bets {
		if time.Since(bet.PlacedAt) < s.minBetAge {
			continue
		}
		key := eventKey{bet.SportKey, bet.EventID}
		byEvent[key] = append(byEvent[key], bet)
	}

	if len(byEvent) == 0 {
		return nil
	}

	fmt.Printf("[Settlement] %d events with pending bets\n", len(byEvent))

	for key, eventBets := range byEvent {
		if err := s.settleEvent(ctx, key.sportKey, key.eventID, eventBets); err != nil {
			fmt.Printf("[Settlement] event %s: %v\n", key.eventID, err)
		}
	}

	return nil
}

func (s *Settler) settleEvent(ctx context.Context, sportKey, eventID string, bets []models.Bet) error {
	scores, err := s.client.FetchScores(ctx, sportKey, 3, []string{eventID})
	if err != nil {
		return fmt.Errorf("fetch scores: %w", err)
	}
	if len(scores) == 0 {
		return nil // No score data yet
	}

	score := scores[0]
	if !score.Completed {
		return nil
	}

	homeScore, awayScore, ok := parseScores(score)
	if !ok {
		return fmt.Errorf("incomplete score data for event %s", eventID)
	}

	settled := 0
	for _, bet := range bets {
		// Score CLV before settling so the bet can't leave pending unscored
		if s.clvScorer != nil {
			if _, err := s.clvScorer.ProcessBet(ctx, bet.ID); err != nil {
				fmt.Printf("[Settlement] clv for bet %d: %v\n", bet.ID, err)
			}
		}

		result, profitLoss := Grade(bet, score.HomeTeam, score.AwayTeam, homeScore, awayScore)
		if err := s.store.SettleBet(ctx, bet.ID, result, profitLoss); err != nil {
			fmt.Printf("[Settlement] bet %d: %v\n", bet.ID, err)
			continue
		}
		settled++
	}

	fmt.Printf("[Settlement] Settled %d/%d bets for event %s (%s %d - %s %d)\n",
		settled, len(bets), eventID, score.HomeTeam, homeScore, score.AwayTeam, awayScore)

	if s.resultSink != nil {
		result := models.GameResult{
			EventID:   eventID,
			SportKey:  sportKey,
			HomeTeam:  score.HomeTeam,
			AwayTeam:  score.AwayTeam,
			HomeScore: homeScore,
			AwayScore: awayScore,
			PlayedAt:  time.Now().UTC(),
		}
		if err := s.resultSink.RecordResult(ctx, result); err != nil {
			fmt.Printf("[Settlement] result sink: %v\n", err)
		}
	}

	return nil
}

func parseScores(score oddsapi.EventScore) (home, away int, ok bool) {
	found := 0
	for _, entry := range score.Scores {
		value, err := strconv.Atoi(entry.Score)
		if err != nil {
			continue
		}
		switch entry.Name {
		case score.HomeTeam:
			home = value
			found++
		case score.AwayTeam:
			away = value
			found++
		}
	}
	return home, away, found == 2
}

// Grade determines a bet's result and profit/loss from the final score.
// Profit excludes the returned stake: a win at -110 for 100 yields 90.91,
// a loss yields -100, pushes and voids yield 0.
func Grade(bet models.Bet, homeTeam, awayTeam string, homeScore, awayScore int) (models.BetResult, float64) {
	switch bet.MarketKey {
	case "h2h":
		return gradeMoneyline(bet, homeTeam, awayTeam, homeScore, awayScore)
	case "spreads":
		return gradeSpread(bet, homeTeam, homeScore, awayScore)
	case "totals":
		return gradeTotal(bet, homeScore, awayScore)
	default:
		return models.BetResultVoid, 0
	}
}

func gradeMoneyline(bet models.Bet, homeTeam, awayTeam string, homeScore, awayScore int) (models.BetResult, float64) {
	if homeScore == awayScore {
		return models.BetResultPush, 0
	}

	winner := homeTeam
	if awayScore > homeScore {
		winner = awayTeam
	}

	if bet.OutcomeName == winner {
		return models.BetResultWin, winProfit(bet)
	}
	return models.BetResultLoss, -bet.Stake
}

func gradeSpread(bet models.Bet, homeTeam string, homeScore, awayScore int) (models.BetResult, float64) {
	if bet.Point == nil {
		return models.BetResultVoid, 0
	}

	// Apply the spread to the side we bet
	var adjusted, opponent float64
	if bet.OutcomeName == homeTeam {
		adjusted = float64(homeScore) + *bet.Point
		opponent = float64(awayScore)
	} else {
		adjusted = float64(awayScore) + *bet.Point
		opponent = float64(homeScore)
	}

	switch {
	case adjusted > opponent:
		return models.BetResultWin, winProfit(bet)
	case adjusted == opponent:
		return models.BetResultPush, 0
	default:
		return models.BetResultLoss, -bet.Stake
	}
}

func gradeTotal(bet models.Bet, homeScore, awayScore int) (models.BetResult, float64) {
	if bet.Point == nil {
		return models.BetResultVoid, 0
	}

	total := float64(homeScore + awayScore)
	line := *bet.Point

	over := bet.OutcomeName == "Over"
	switch {
	case total == line:
		return models.BetResultPush, 0
	case (over && total > line) || (!over && total < line):
		return models.BetResultWin, winProfit(bet)
	default:
		return models.BetResultLoss, -bet.Stake
	}
}

func winProfit(bet models.Bet) float64 {
	decimal, err := oddsmath.AmericanToDecimal(bet.Price)
	if err != nil {
		return 0
	}
	return bet.Stake * (decimal - 1)
}
