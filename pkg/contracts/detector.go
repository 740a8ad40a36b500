package contracts

import (
	"context"

	"github.com/BTheCoderr/theRounders/pkg/models"
)

// OpportunityDetector finds one class of betting opportunity in a market
type OpportunityDetector interface {
	// Detect analyzes one normalized quote in the context of its whole
	// market and returns any opportunities found
	Detect(ctx context.Context, odds models.NormalizedOdds, marketOdds []models.NormalizedOdds) ([]models.Opportunity, error)

	// GetType returns the opportunity type this detector finds
	GetType() models.OpportunityType

	// IsEnabled reports whether this detector is active
	IsEnabled() bool
}

// SharpBookProvider identifies sharp books and their consensus prices
type SharpBookProvider interface {
	// IsSharpBook reports whether a book is considered sharp
	IsSharpBook(bookKey string) bool

	// SharpConsensus returns the average sharp implied probability per
	// outcome name for a market. Outcomes with no sharp quotes are absent.
	SharpConsensus(marketOdds []models.NormalizedOdds) map[string]float64
}
