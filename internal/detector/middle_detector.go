package detector

import (
	"context"
	"time"

	"github.com/BTheCoderr/theRounders/pkg/contracts"
	"github.com/BTheCoderr/theRounders/pkg/models"
	"github.com/BTheCoderr/theRounders/pkg/oddsmath"
)

// MiddleDetector finds markets where both sides are +EV against the sharp
// consensus at the same line, usually after books move at different speeds
type MiddleDetector struct {
	config Config
	sharp  contracts.SharpBookProvider
}

// NewMiddleDetector creates a middle detector
func NewMiddleDetector(config Config, sharp contracts.SharpBookProvider) *MiddleDetector {
	return &MiddleDetector{config: config, sharp: sharp}
}

type middleCandidate struct {
	odds models.NormalizedOdds
	edge float64
}

// Detect pairs +EV soft-book quotes on opposite sides of the same line
func (d *MiddleDetector) Detect(ctx context.Context, odds models.NormalizedOdds, marketOdds []models.NormalizedOdds) ([]models.Opportunity, error) {
	if !d.IsEnabled() {
		return nil, nil
	}

	// Middles only exist on pointed markets
	if odds.MarketKey != "spreads" && odds.MarketKey != "totals" {
		return nil, nil
	}

	dataAge := time.Since(odds.ReceivedAt)
	if int(dataAge.Seconds()) > d.config.MaxDataAgeSeconds {
		return nil, nil
	}

	consensus := d.sharp.SharpConsensus(marketOdds)
	if len(consensus) == 0 {
		return nil, nil
	}

	// Collect +EV soft-book quotes per outcome
	candidates := make(map[string][]middleCandidate)
	for _, quote := range marketOdds {
		if d.sharp.IsSharpBook(quote.BookKey) || quote.Point == nil {
			continue
		}
		fairProb, exists := consensus[quote.OutcomeName]
		if !exists {
			continue
		}
		edge, err := oddsmath.Edge(fairProb, quote.ImpliedProbability)
		if err != nil || edge <= 0 {
			continue
		}
		candidates[quote.OutcomeName] = append(candidates[quote.OutcomeName], middleCandidate{quote, edge})
	}

	var opportunities []models.Opportunity
	seen := make(map[string]bool)

	for outcome1, list1 := range candidates {
		for outcome2, list2 := range candidates {
			if outcome1 >= outcome2 {
				continue // Each pair once
			}
			for _, cand1 := range list1 {
				for _, cand2 := range list2 {
					if !pointsOppose(&cand1.odds, &cand2.odds) {
						continue
					}

					avgEdge := (cand1.edge + cand2.edge) / 2 * 100
					if avgEdge < d.config.MinEdgePercent*100 {
						continue
					}

					pairKey := cand1.odds.BookKey + ":" + cand2.odds.BookKey
					if seen[pairKey] {
						continue
					}
					seen[pairKey] = true

					opportunities = append(opportunities, models.Opportunity{
						OpportunityType: models.OpportunityTypeMiddle,
						SportKey:        odds.SportKey,
						EventID:         odds.EventID,
						MarketKey:       odds.MarketKey,
						EdgePercent:     avgEdge,
						DetectedAt:      time.Now().UTC(),
						DataAgeSeconds:  int(dataAge.Seconds()),
						Legs: []models.OpportunityLeg{
							{
								BookKey:        cand1.odds.BookKey,
								OutcomeName:    cand1.odds.OutcomeName,
								Price:          cand1.odds.Price,
								Point:          cand1.odds.Point,
								LegEdgePercent: floatPtr(cand1.edge * 100),
							},
							{
								BookKey:        cand2.odds.BookKey,
								OutcomeName:    cand2.odds.OutcomeName,
								Price:          cand2.odds.Price,
								Point:          cand2.odds.Point,
								LegEdgePercent: floatPtr(cand2.edge * 100),
							},
						},
					})
				}
			}
		}
	}

	return opportunities, nil
}

// GetType returns the detector type
func (d *MiddleDetector) GetType() models.OpportunityType {
	return models.OpportunityTypeMiddle
}

// IsEnabled reports whether middle detection is active
func (d *MiddleDetector) IsEnabled() bool {
	return d.config.EnableMiddles
}
