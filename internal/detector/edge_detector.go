package detector

import (
	"context"
	"time"

	"github.com/BTheCoderr/theRounders/pkg/contracts"
	"github.com/BTheCoderr/theRounders/pkg/models"
	"github.com/BTheCoderr/theRounders/pkg/oddsmath"
)

// EdgeDetector finds single +EV bets at soft books priced better than the
// sharp consensus
type EdgeDetector struct {
	config Config
	sharp  contracts.SharpBookProvider
}

// NewEdgeDetector creates an edge detector
func NewEdgeDetector(config Config, sharp contracts.SharpBookProvider) *EdgeDetector {
	return &EdgeDetector{config: config, sharp: sharp}
}

// Detect returns an edge opportunity when this quote beats the sharp
// consensus by at least the configured minimum
func (d *EdgeDetector) Detect(ctx context.Context, odds models.NormalizedOdds, marketOdds []models.NormalizedOdds) ([]models.Opportunity, error) {
	if !d.config.marketEnabled(odds.MarketKey) {
		return nil, nil
	}

	dataAge := time.Since(odds.ReceivedAt)
	if int(dataAge.Seconds()) > d.config.MaxDataAgeSeconds {
		return nil, nil
	}

	// Sharp books are efficient; only soft books hang beatable prices
	if d.sharp.IsSharpBook(odds.BookKey) {
		return nil, nil
	}

	consensus := d.sharp.SharpConsensus(marketOdds)
	fairProb, exists := consensus[odds.OutcomeName]
	if !exists {
		return nil, nil
	}

	edge, err := oddsmath.Edge(fairProb, odds.ImpliedProbability)
	if err != nil || edge < d.config.MinEdgePercent {
		return nil, nil
	}

	opportunity := models.Opportunity{
		OpportunityType: models.OpportunityTypeEdge,
		SportKey:        odds.SportKey,
		EventID:         odds.EventID,
		MarketKey:       odds.MarketKey,
		EdgePercent:     edge * 100,
		DetectedAt:      time.Now().UTC(),
		DataAgeSeconds:  int(dataAge.Seconds()),
		Legs: []models.OpportunityLeg{
			{
				BookKey:        odds.BookKey,
				OutcomeName:    odds.OutcomeName,
				Price:          odds.Price,
				Point:          odds.Point,
				LegEdgePercent: floatPtr(edge * 100),
			},
		},
	}

	if fairPrice, err := oddsmath.ProbabilityToAmerican(fairProb); err == nil {
		opportunity.FairPrice = &fairPrice
	}

	return []models.Opportunity{opportunity}, nil
}

// GetType returns the detector type
func (d *EdgeDetector) GetType() models.OpportunityType {
	return models.OpportunityTypeEdge
}

// IsEnabled reports whether edge detection is active (always on)
func (d *EdgeDetector) IsEnabled() bool {
	return true
}

func floatPtr(f float64) *float64 { return &f }
