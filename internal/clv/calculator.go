// Package clv computes closing line value: how much better or worse a bet's
// price was than the market's final price. Beating the close consistently
// is the strongest available proxy for long-term profitability.
package clv

import (
	"context"
	"fmt"

	"github.com/BTheCoderr/theRounders/internal/store"
	"github.com/BTheCoderr/theRounders/pkg/models"
	"github.com/BTheCoderr/theRounders/pkg/oddsmath"
)

// Calculator scores bets against captured closing lines
type Calculator struct {
	store *store.Store
}

// NewCalculator creates a CLV calculator
func NewCalculator(st *store.Store) *Calculator {
	return &Calculator{store: st}
}

// CLVCents is the probability difference between the closing price and the
// bet price, in cents per dollar. Positive means the bet beat the close.
func CLVCents(betPrice, closingPrice int) (float64, error) {
	betProb, err := oddsmath.AmericanToImpliedProbability(betPrice)
	if err != nil {
		return 0, fmt.Errorf("invalid bet price: %w", err)
	}
	closeProb, err := oddsmath.AmericanToImpliedProbability(closingPrice)
	if err != nil {
		return 0, fmt.Errorf("invalid closing price: %w", err)
	}

	return (closeProb - betProb) * 100.0, nil
}

// ProcessPending scores every pending bet that has a captured closing line.
// Returns the number of bets scored.
func (c *Calculator) ProcessPending(ctx context.Context) (int, error) {
	bets, err := c.store.PendingBets(ctx, "")
	if err != nil {
		return 0, fmt.Errorf("failed to load pending bets: %w", err)
	}

	processed := 0
	for i := range bets {
		scored, err := c.processBet(ctx, &bets[i])
		if err != nil {
			fmt.Printf("[CLV] bet %d: %v\n", bets[i].ID, err)
			continue
		}
		if scored {
			processed++
		}
	}

	if processed > 0 {
		fmt.Printf("[CLV] Scored %d/%d pending bets\n", processed, len(bets))
	}
	return processed, nil
}

// ProcessBet scores one bet; returns false when no closing line exists yet
func (c *Calculator) ProcessBet(ctx context.Context, betID int64) (bool, error) {
	bet, err := c.store.GetBet(ctx, betID)
	if err != nil {
		return false, err
	}
	if bet == nil {
		return false, fmt.Errorf("bet %d not found", betID)
	}
	return c.processBet(ctx, bet)
}

func (c *Calculator) processBet(ctx context.Context, bet *models.Bet) (bool, error) {
	line, err := c.store.GetClosingLine(ctx, bet.EventID, bet.MarketKey, bet.BookKey, bet.OutcomeName)
	if err != nil {
		return false, err
	}
	if line == nil {
		return false, nil
	}

	// The bet and the closing line must be on the same number
	if !pointsMatch(bet.Point, line.Point) {
		return false, nil
	}

	clv, err := CLVCents(bet.Price, line.ClosingPrice)
	if err != nil {
		return false, err
	}

	perf := &models.BetPerformance{
		BetID:            bet.ID,
		ClosingLinePrice: line.ClosingPrice,
		CLVCents:         clv,
		HoldTimeSeconds:  int(line.ClosedAt.Sub(bet.PlacedAt).Seconds()),
	}
	if err := c.store.UpsertBetPerformance(ctx, perf); err != nil {
		return false, fmt.Errorf("failed to record performance: %w", err)
	}

	return true, nil
}

func pointsMatch(a, b *float64) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return *a == *b
}
