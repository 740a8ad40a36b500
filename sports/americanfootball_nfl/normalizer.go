// Package americanfootball_nfl implements odds normalization for NFL Football.
package americanfootball_nfl

import (
	"github.com/BTheCoderr/theRounders/sports/internal/base"
)

// NewNormalizer creates the NFL normalizer with default configuration
func NewNormalizer() *base.Normalizer {
	cfg := DefaultConfig()
	return base.New(cfg.SportKey, cfg.DisplayName, cfg.SharpBooks, cfg.GetMarketType)
}
