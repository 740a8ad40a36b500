// Package base implements the normalization math shared by every sport.
// Sport packages wrap it with their own market classification and sharp
// book lists.
package base

import (
	"context"
	"fmt"
	"time"

	"github.com/BTheCoderr/theRounders/pkg/models"
	"github.com/BTheCoderr/theRounders/pkg/oddsmath"
)

// Normalizer computes fair prices, edges and sharp consensus for one sport
type Normalizer struct {
	sportKey    string
	displayName string
	sharpBooks  []string
	sharpSet    map[string]bool
	marketType  func(marketKey string) models.MarketType
}

// New builds a normalizer core. classify maps market keys to market types.
func New(sportKey, displayName string, sharpBooks []string, classify func(string) models.MarketType) *Normalizer {
	sharpSet := make(map[string]bool, len(sharpBooks))
	for _, book := range sharpBooks {
		sharpSet[book] = true
	}

	return &Normalizer{
		sportKey:    sportKey,
		displayName: displayName,
		sharpBooks:  sharpBooks,
		sharpSet:    sharpSet,
		marketType:  classify,
	}
}

func (n *Normalizer) GetSportKey() string {
	return n.sportKey
}

func (n *Normalizer) GetDisplayName() string {
	return n.displayName
}

func (n *Normalizer) GetMarketType(marketKey string) models.MarketType {
	return n.marketType(marketKey)
}

// GetVigMethod maps market types to vig removal methods
func (n *Normalizer) GetVigMethod(marketType models.MarketType) models.VigMethod {
	switch marketType {
	case models.MarketTypeTwoWay:
		return models.VigMethodMultiplicative
	case models.MarketTypeThreeWay:
		return models.VigMethodAdditive
	default:
		return models.VigMethodNone
	}
}

func (n *Normalizer) GetSharpBooks() []string {
	return n.sharpBooks
}

func (n *Normalizer) IsSharpBook(bookKey string) bool {
	return n.sharpSet[bookKey]
}

// Normalize converts one raw quote into normalized odds. marketOdds holds
// every current quote for the same event+market; without the opposite side
// the fair price fields stay nil.
func (n *Normalizer) Normalize(ctx context.Context, raw models.RawOdds, marketOdds []models.RawOdds) (*models.NormalizedOdds, error) {
	startTime := time.Now()

	decimal, err := oddsmath.AmericanToDecimal(raw.Price)
	if err != nil {
		return nil, fmt.Errorf("error converting American odds: %w", err)
	}

	impliedProb, err := oddsmath.DecimalToImpliedProbability(decimal)
	if err != nil {
		return nil, fmt.Errorf("error calculating implied probability: %w", err)
	}

	marketType := n.GetMarketType(raw.MarketKey)
	vigMethod := n.GetVigMethod(marketType)

	normalized := &models.NormalizedOdds{
		RawOdds:            raw,
		DecimalOdds:        decimal,
		ImpliedProbability: impliedProb,
		MarketType:         string(marketType),
		VigMethod:          string(vigMethod),
		NormalizedAt:       time.Now().UTC(),
	}

	switch marketType {
	case models.MarketTypeTwoWay:
		n.normalizeTwoWay(normalized, raw, marketOdds)
	default:
		// Props and unknown markets: edge comes from sharp consensus only
		n.applySharpConsensus(normalized, raw, marketOdds)
	}

	normalized.ProcessingLatency = time.Since(startTime).Milliseconds()

	return normalized, nil
}

// normalizeTwoWay removes vig against the opposite side and computes the
// edge, preferring sharp consensus over the book's own no-vig line when
// the quote comes from a soft book
func (n *Normalizer) normalizeTwoWay(normalized *models.NormalizedOdds, raw models.RawOdds, marketOdds []models.RawOdds) {
	opposite := findOppositeSide(raw, marketOdds)
	if opposite != nil {
		oppositeProb, err := oddsmath.AmericanToImpliedProbability(opposite.Price)
		if err == nil {
			fairProb, _, err := oddsmath.RemoveVigMultiplicative(normalized.ImpliedProbability, oppositeProb)
			if err == nil {
				normalized.NoVigProbability = &fairProb

				if fairPrice, err := oddsmath.ProbabilityToAmerican(fairProb); err == nil {
					normalized.FairPrice = &fairPrice
				}
				if edge, err := oddsmath.Edge(fairProb, normalized.ImpliedProbability); err == nil {
					normalized.Edge = &edge
				}
			}
		}
	}

	if !n.IsSharpBook(raw.BookKey) {
		n.applySharpConsensus(normalized, raw, marketOdds)
	}
}

// applySharpConsensus averages sharp book probabilities for the same outcome
// and recomputes the edge against that consensus when one exists
func (n *Normalizer) applySharpConsensus(normalized *models.NormalizedOdds, raw models.RawOdds, marketOdds []models.RawOdds) {
	if n.IsSharpBook(raw.BookKey) {
		return
	}

	var sum float64
	var count int
	for _, odds := range marketOdds {
		if odds.EventID != raw.EventID ||
			odds.MarketKey != raw.MarketKey ||
			odds.OutcomeName != raw.OutcomeName ||
			!n.IsSharpBook(odds.BookKey) {
			continue
		}

		prob, err := oddsmath.AmericanToImpliedProbability(odds.Price)
		if err != nil {
			continue
		}
		sum += prob
		count++
	}

	if count == 0 {
		return
	}

	consensus := sum / float64(count)
	normalized.SharpConsensus = &consensus

	if edge, err := oddsmath.Edge(consensus, normalized.ImpliedProbability); err == nil {
		normalized.Edge = &edge
	}
}

// findOppositeSide locates the other outcome of a two-way market at the
// same book. For spreads the points must mirror each other.
func findOppositeSide(raw models.RawOdds, marketOdds []models.RawOdds) *models.RawOdds {
	for i := range marketOdds {
		odds := &marketOdds[i]
		if odds.EventID != raw.EventID ||
			odds.MarketKey != raw.MarketKey ||
			odds.BookKey != raw.BookKey ||
			odds.OutcomeName == raw.OutcomeName {
			continue
		}

		if raw.Point != nil && odds.Point != nil {
			if raw.MarketKey == "totals" {
				// Over/Under share the same total
				if *raw.Point == *odds.Point {
					return odds
				}
			} else if *raw.Point == -*odds.Point {
				return odds
			}
		} else if raw.Point == nil && odds.Point == nil {
			return odds
		}
	}
	return nil
}
