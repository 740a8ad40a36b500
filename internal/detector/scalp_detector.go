package detector

import (
	"context"
	"math"
	"time"

	"github.com/BTheCoderr/theRounders/pkg/models"
	"github.com/BTheCoderr/theRounders/pkg/oddsmath"
)

// ScalpDetector finds arbitrage across books: best prices on both sides of
// a market that lock in a profit regardless of outcome
type ScalpDetector struct {
	config Config
}

// NewScalpDetector creates a scalp detector
func NewScalpDetector(config Config) *ScalpDetector {
	return &ScalpDetector{config: config}
}

// Detect pairs the best price on each side of a two-way market and reports
// a scalp when the combined inverse odds fall under 1. Legs carry the stake
// split that equalizes the payout.
func (d *ScalpDetector) Detect(ctx context.Context, odds models.NormalizedOdds, marketOdds []models.NormalizedOdds) ([]models.Opportunity, error) {
	if !d.IsEnabled() || !d.config.marketEnabled(odds.MarketKey) {
		return nil, nil
	}

	dataAge := time.Since(odds.ReceivedAt)
	if int(dataAge.Seconds()) > d.config.MaxDataAgeSeconds {
		return nil, nil
	}

	sides := groupByOutcome(marketOdds)
	if len(sides) != 2 {
		return nil, nil
	}

	// Best (highest decimal) price per side. For spreads both legs must sit
	// on the same line or the "scalp" is really a middle with miss risk.
	var outcomes []string
	for outcome := range sides {
		outcomes = append(outcomes, outcome)
	}

	best1 := bestPrice(sides[outcomes[0]])
	best2 := bestPrice(sides[outcomes[1]])
	if best1 == nil || best2 == nil {
		return nil, nil
	}
	if !pointsOppose(best1, best2) {
		return nil, nil
	}

	prices := []int{best1.Price, best2.Price}
	isArb, margin, err := oddsmath.IsArbitrage(prices)
	if err != nil || !isArb {
		return nil, nil
	}
	if margin < d.config.MinEdgePercent*100 {
		return nil, nil
	}

	stakes, err := oddsmath.ArbitrageStakes(d.config.DefaultStake, prices)
	if err != nil {
		return nil, err
	}

	legEdge := margin / 2
	opportunity := models.Opportunity{
		OpportunityType: models.OpportunityTypeScalp,
		SportKey:        odds.SportKey,
		EventID:         odds.EventID,
		MarketKey:       odds.MarketKey,
		EdgePercent:     margin,
		DetectedAt:      time.Now().UTC(),
		DataAgeSeconds:  int(dataAge.Seconds()),
		Legs: []models.OpportunityLeg{
			{
				BookKey:        best1.BookKey,
				OutcomeName:    best1.OutcomeName,
				Price:          best1.Price,
				Point:          best1.Point,
				Stake:          floatPtr(roundCents(stakes[0])),
				LegEdgePercent: &legEdge,
			},
			{
				BookKey:        best2.BookKey,
				OutcomeName:    best2.OutcomeName,
				Price:          best2.Price,
				Point:          best2.Point,
				Stake:          floatPtr(roundCents(stakes[1])),
				LegEdgePercent: &legEdge,
			},
		},
	}

	return []models.Opportunity{opportunity}, nil
}

// GetType returns the detector type
func (d *ScalpDetector) GetType() models.OpportunityType {
	return models.OpportunityTypeScalp
}

// IsEnabled reports whether scalp detection is active
func (d *ScalpDetector) IsEnabled() bool {
	return d.config.EnableScalps
}

func groupByOutcome(marketOdds []models.NormalizedOdds) map[string][]models.NormalizedOdds {
	sides := make(map[string][]models.NormalizedOdds)
	for _, odds := range marketOdds {
		sides[odds.OutcomeName] = append(sides[odds.OutcomeName], odds)
	}
	return sides
}

func bestPrice(quotes []models.NormalizedOdds) *models.NormalizedOdds {
	var best *models.NormalizedOdds
	for i := range quotes {
		if best == nil || quotes[i].DecimalOdds > best.DecimalOdds {
			best = &quotes[i]
		}
	}
	return best
}

// pointsOppose checks the legs cover the full market: mirrored spreads,
// the same total, or a pointless market like moneyline
func pointsOppose(a, b *models.NormalizedOdds) bool {
	if a.Point == nil && b.Point == nil {
		return true
	}
	if a.Point == nil || b.Point == nil {
		return false
	}
	if a.MarketKey == "totals" {
		return *a.Point == *b.Point
	}
	return *a.Point == -*b.Point
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
