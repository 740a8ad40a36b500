// Package contracts defines the interfaces between pipeline stages.
package contracts

import (
	"context"

	"github.com/BTheCoderr/theRounders/pkg/models"
)

// SportNormalizer is implemented once per sport. Each sport classifies its
// markets and names its sharp books differently, so normalization is
// delegated per sport key.
type SportNormalizer interface {
	// GetSportKey returns the unique identifier for this sport (e.g. "basketball_nba")
	GetSportKey() string

	// GetDisplayName returns the human-readable name (e.g. "NBA Basketball")
	GetDisplayName() string

	// Normalize computes fair prices and edges for one raw quote.
	// marketOdds holds all current odds for the same event+market so the
	// opposite side and sharp consensus can be found.
	Normalize(ctx context.Context, raw models.RawOdds, marketOdds []models.RawOdds) (*models.NormalizedOdds, error)

	// GetMarketType classifies the market for vig removal
	GetMarketType(marketKey string) models.MarketType

	// GetVigMethod returns the vig removal method for a market type
	GetVigMethod(marketType models.MarketType) models.VigMethod

	// GetSharpBooks returns the sharp book keys used for consensus
	GetSharpBooks() []string

	// IsSharpBook reports whether a book is considered sharp for this sport
	IsSharpBook(bookKey string) bool
}
