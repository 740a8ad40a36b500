// Package detector finds edge, scalp, middle and steam opportunities in
// normalized odds.
package detector

import (
	"time"

	"github.com/BTheCoderr/theRounders/pkg/models"
)

// Config holds the thresholds shared by all detectors
type Config struct {
	MinEdgePercent    float64 // decimal, e.g. 0.02 = 2%
	MaxDataAgeSeconds int
	EnableMiddles     bool
	EnableScalps      bool
	EnabledMarkets    []string

	// Stake used when splitting scalp legs
	DefaultStake float64

	// Steam detection
	SteamWindow         time.Duration
	SteamMoveThreshold  float64 // Minimum American-odds movement (cents)
	SteamMinBooks       int     // Books that must move together
	PublicFadeThreshold float64 // Public % above which a counter-move is RLM
}

func (c Config) marketEnabled(marketKey string) bool {
	for _, m := range c.EnabledMarkets {
		if m == marketKey {
			return true
		}
	}
	return false
}

// SharpBooks adapts a fixed book list into a SharpBookProvider
type SharpBooks struct {
	set map[string]bool
}

// NewSharpBooks builds a SharpBookProvider from a list of sharp book keys
func NewSharpBooks(bookKeys []string) *SharpBooks {
	set := make(map[string]bool, len(bookKeys))
	for _, key := range bookKeys {
		set[key] = true
	}
	return &SharpBooks{set: set}
}

func (s *SharpBooks) IsSharpBook(bookKey string) bool {
	return s.set[bookKey]
}

// SharpConsensus averages sharp implied probabilities per outcome
func (s *SharpBooks) SharpConsensus(marketOdds []models.NormalizedOdds) map[string]float64 {
	sums := make(map[string]float64)
	counts := make(map[string]int)

	for _, odds := range marketOdds {
		if !s.set[odds.BookKey] {
			continue
		}
		sums[odds.OutcomeName] += odds.ImpliedProbability
		counts[odds.OutcomeName]++
	}

	consensus := make(map[string]float64, len(sums))
	for outcome, sum := range sums {
		consensus[outcome] = sum / float64(counts[outcome])
	}
	return consensus
}
