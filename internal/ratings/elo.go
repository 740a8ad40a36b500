// Package ratings maintains Elo power ratings per team and derives spread
// predictions and win probabilities from them.
package ratings

import (
	"math"
	"sync"
	"time"

	"github.com/BTheCoderr/theRounders/pkg/models"
)

const (
	// InitialRating is every team's starting Elo
	InitialRating = 1500.0

	// KFactor controls how fast ratings react to results
	KFactor = 32.0

	// HomeAdvantagePoints is the points edge of playing at home
	HomeAdvantagePoints = 3.5

	// eloPerPoint converts rating differences to spread points
	eloPerPoint = 25.0
)

// Elo tracks ratings for one sport
type Elo struct {
	sportKey string

	mu      sync.RWMutex
	ratings map[string]*models.TeamRating
}

// NewElo creates an empty rating set for a sport
func NewElo(sportKey string) *Elo {
	return &Elo{
		sportKey: sportKey,
		ratings:  make(map[string]*models.TeamRating),
	}
}

// Rating returns a team's current rating, InitialRating if unseen
func (e *Elo) Rating(team string) float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if r, ok := e.ratings[team]; ok {
		return r.Rating
	}
	return InitialRating
}

// Ratings returns a snapshot of all tracked teams
func (e *Elo) Ratings() []models.TeamRating {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]models.TeamRating, 0, len(e.ratings))
	for _, r := range e.ratings {
		out = append(out, *r)
	}
	return out
}

// Seed replaces all ratings, e.g. when loading persisted state
func (e *Elo) Seed(ratings []models.TeamRating) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.ratings = make(map[string]*models.TeamRating, len(ratings))
	for i := range ratings {
		r := ratings[i]
		e.ratings[r.Team] = &r
	}
}

// ExpectedScore is the classic Elo win expectancy for ratingA vs ratingB
func ExpectedScore(ratingA, ratingB float64) float64 {
	return 1.0 / (1.0 + math.Pow(10, (ratingB-ratingA)/400.0))
}

// Update applies one game result and returns the two updated ratings
func (e *Elo) Update(result models.GameResult) (home, away models.TeamRating) {
	e.mu.Lock()
	defer e.mu.Unlock()

	homeRating := e.get(result.HomeTeam)
	awayRating := e.get(result.AwayTeam)

	expected := ExpectedScore(homeRating.Rating, awayRating.Rating)

	var actual float64
	switch {
	case result.HomeScore > result.AwayScore:
		actual = 1
	case result.HomeScore < result.AwayScore:
		actual = 0
	default:
		actual = 0.5
	}

	delta := KFactor * (actual - expected)
	now := time.Now().UTC()

	homeRating.Rating += delta
	homeRating.Games++
	homeRating.UpdatedAt = now

	awayRating.Rating -= delta
	awayRating.Games++
	awayRating.UpdatedAt = now

	return *homeRating, *awayRating
}

func (e *Elo) get(team string) *models.TeamRating {
	if r, ok := e.ratings[team]; ok {
		return r
	}
	r := &models.TeamRating{
		SportKey: e.sportKey,
		Team:     team,
		Rating:   InitialRating,
	}
	e.ratings[team] = r
	return r
}

// PredictSpread projects the home spread from the rating gap plus home
// advantage. Positive favors home; the betting convention (home laying
// points) is the negation.
func (e *Elo) PredictSpread(homeTeam, awayTeam string) models.SpreadPrediction {
	homeRating := e.Rating(homeTeam)
	awayRating := e.Rating(awayTeam)

	margin := (homeRating-awayRating)/eloPerPoint + HomeAdvantagePoints

	return models.SpreadPrediction{
		SportKey:        e.sportKey,
		HomeTeam:        homeTeam,
		AwayTeam:        awayTeam,
		PredictedSpread: margin,
		HomeWinProb:     HybridWinProbability(margin, ExpectedScore(homeRating, awayRating)),
	}
}

// HybridWinProbability blends a logistic transform of the predicted margin
// with the raw Elo expectancy, weighting the margin model higher
func HybridWinProbability(predictedMargin, eloExpectancy float64) float64 {
	marginProb := 1.0 / (1.0 + math.Exp(-0.15*predictedMargin))
	return 0.6*marginProb + 0.4*eloExpectancy
}
