// Package basketball_nba implements odds normalization for NBA Basketball.
package basketball_nba

import (
	"github.com/BTheCoderr/theRounders/sports/internal/base"
)

// NewNormalizer creates the NBA normalizer with default configuration
func NewNormalizer() *base.Normalizer {
	cfg := DefaultConfig()
	return base.New(cfg.SportKey, cfg.DisplayName, cfg.SharpBooks, cfg.GetMarketType)
}
