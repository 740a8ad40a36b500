package detector

import (
	"context"
	"sync"
	"time"

	"github.com/BTheCoderr/theRounders/pkg/contracts"
	"github.com/BTheCoderr/theRounders/pkg/models"
	"github.com/BTheCoderr/theRounders/pkg/oddsmath"
)

// LineHistorySource supplies recorded price movements for an outcome at a
// book inside a trailing window
type LineHistorySource interface {
	LineHistory(ctx context.Context, eventID, marketKey, bookKey, outcomeName string, since time.Time) ([]models.LineMovement, error)
}

// SteamDetector spots coordinated line moves: several books shortening the
// same outcome inside a short window is sharp money, and any book that has
// not moved yet is hanging a stale price.
type SteamDetector struct {
	config  Config
	sharp   contracts.SharpBookProvider
	history LineHistorySource

	// Last emit per outcome so one steam move produces one signal per window
	lastEmit sync.Map // "eventID:marketKey:outcome" -> time.Time
}

// NewSteamDetector creates a steam detector
func NewSteamDetector(config Config, sharp contracts.SharpBookProvider, history LineHistorySource) *SteamDetector {
	return &SteamDetector{config: config, sharp: sharp, history: history}
}

type bookMove struct {
	bookKey    string
	deltaCents float64
	latest     int
}

// Detect reports a steam opportunity when enough books shortened this
// outcome inside the window while the current quote's book lagged behind
func (d *SteamDetector) Detect(ctx context.Context, odds models.NormalizedOdds, marketOdds []models.NormalizedOdds) ([]models.Opportunity, error) {
	if !d.IsEnabled() || !d.config.marketEnabled(odds.MarketKey) {
		return nil, nil
	}

	dataAge := time.Since(odds.ReceivedAt)
	if int(dataAge.Seconds()) > d.config.MaxDataAgeSeconds {
		return nil, nil
	}

	emitKey := odds.EventID + ":" + odds.MarketKey + ":" + odds.OutcomeName
	if last, ok := d.lastEmit.Load(emitKey); ok {
		if time.Since(last.(time.Time)) < d.config.SteamWindow {
			return nil, nil
		}
	}

	since := time.Now().Add(-d.config.SteamWindow)

	// Movement per book for this outcome inside the window
	var moves []bookMove
	booksSeen := 0
	for _, quote := range marketOdds {
		if quote.OutcomeName != odds.OutcomeName {
			continue
		}
		booksSeen++

		history, err := d.history.LineHistory(ctx, odds.EventID, odds.MarketKey, quote.BookKey, odds.OutcomeName, since)
		if err != nil || len(history) < 2 {
			continue
		}

		first := history[0].Price
		last := history[len(history)-1].Price
		delta := priceDeltaCents(first, last)
		if delta >= d.config.SteamMoveThreshold {
			moves = append(moves, bookMove{
				bookKey:    quote.BookKey,
				deltaCents: delta,
				latest:     last,
			})
		}
	}

	if len(moves) < d.config.SteamMinBooks {
		return nil, nil
	}

	// The current book must be lagging, not part of the move
	for _, move := range moves {
		if move.bookKey == odds.BookKey {
			return nil, nil
		}
	}

	// Edge of the stale quote against the moved books' new consensus
	var probSum float64
	for _, move := range moves {
		prob, err := oddsmath.AmericanToImpliedProbability(move.latest)
		if err != nil {
			return nil, nil
		}
		probSum += prob
	}
	movedConsensus := probSum / float64(len(moves))

	edge, err := oddsmath.Edge(movedConsensus, odds.ImpliedProbability)
	if err != nil || edge <= 0 {
		return nil, nil
	}

	confidence := d.confidence(moves, booksSeen)
	d.lastEmit.Store(emitKey, time.Now())

	opportunity := models.Opportunity{
		OpportunityType: models.OpportunityTypeSteam,
		SportKey:        odds.SportKey,
		EventID:         odds.EventID,
		MarketKey:       odds.MarketKey,
		EdgePercent:     edge * 100,
		SharpConfidence: &confidence,
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

	return []models.Opportunity{opportunity}, nil
}

// confidence scores the signal 0-100: base for the steam itself, a bonus
// when a sharp book led the move, and scaling for magnitude and breadth
func (d *SteamDetector) confidence(moves []bookMove, booksSeen int) float64 {
	score := 30.0

	for _, move := range moves {
		if d.sharp.IsSharpBook(move.bookKey) {
			score += 25
			break
		}
	}

	var totalDelta float64
	for _, move := range moves {
		totalDelta += move.deltaCents
	}
	avgDelta := totalDelta / float64(len(moves))
	magnitude := avgDelta / d.config.SteamMoveThreshold
	if magnitude > 2 {
		magnitude = 2
	}
	score += 12.5 * magnitude // up to 25

	if booksSeen > 0 {
		breadth := float64(len(moves)) / float64(booksSeen)
		score += 20 * breadth
	}

	if score > 100 {
		score = 100
	}
	return score
}

// GetType returns the detector type
func (d *SteamDetector) GetType() models.OpportunityType {
	return models.OpportunityTypeSteam
}

// IsEnabled reports whether steam detection is active
func (d *SteamDetector) IsEnabled() bool {
	return d.history != nil && d.config.SteamMinBooks > 0
}

// priceDeltaCents measures how far the price shortened toward this outcome,
// in American cents. Shortening means the implied probability rose:
// -105 -> -115 is a 10 cent move, +120 -> +110 likewise.
func priceDeltaCents(first, last int) float64 {
	firstProb, err1 := oddsmath.AmericanToImpliedProbability(first)
	lastProb, err2 := oddsmath.AmericanToImpliedProbability(last)
	if err1 != nil || err2 != nil {
		return 0
	}
	if lastProb <= firstProb {
		return 0 // Drifted, not steamed
	}

	// Cross zero correctly: +105 -> -105 is 10 cents
	if first > 0 && last > 0 {
		return float64(first - last)
	}
	if first < 0 && last < 0 {
		return float64(first - last)
	}
	return float64(first-last) - 200
}
