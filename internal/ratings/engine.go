package ratings

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/BTheCoderr/theRounders/internal/store"
	"github.com/BTheCoderr/theRounders/pkg/models"
	"github.com/robfig/cron/v3"
)

// Walters-style bet criteria: back a side only when the model edge is real,
// the market has confirmed by moving, and sharp money agrees.
const (
	WaltersMinEdge       = 0.03 // 3% model edge
	WaltersMinLineMove   = 0.5  // half a point of confirming movement
	WaltersMinSharpAgree = 65.0 // sharp confidence score
)

// Engine persists Elo ratings per sport and recomputes them nightly from
// stored game results
type Engine struct {
	store *store.Store
	cron  *cron.Cron

	mu   sync.RWMutex
	elos map[string]*Elo // sportKey -> ratings
}

// NewEngine creates a rating engine for the given sports and loads any
// persisted ratings
func NewEngine(ctx context.Context, st *store.Store, sportKeys []string) (*Engine, error) {
	e := &Engine{
		store: st,
		elos:  make(map[string]*Elo, len(sportKeys)),
	}

	for _, sportKey := range sportKeys {
		elo := NewElo(sportKey)
		if st != nil {
			persisted, err := st.TeamRatings(ctx, sportKey)
			if err != nil {
				return nil, fmt.Errorf("failed to load ratings for %s: %w", sportKey, err)
			}
			elo.Seed(persisted)
		}
		e.elos[sportKey] = elo
	}

	return e, nil
}

// StartCron schedules a nightly full recompute from game history. Returns
// the scheduler so the caller can stop it on shutdown.
func (e *Engine) StartCron(spec string) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		ctx := context.Background()
		for sportKey := range e.elos {
			if err := e.Recompute(ctx, sportKey); err != nil {
				fmt.Printf("[Ratings] recompute %s: %v\n", sportKey, err)
			}
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to schedule rating recompute: %w", err)
	}

	c.Start()
	e.cron = c
	fmt.Printf("✓ Rating recompute scheduled (%s)\n", spec)
	return c, nil
}

// RecordResult applies a final score to the live ratings and persists both
// the result and the updated ratings. Implements settler.GameResultSink.
func (e *Engine) RecordResult(ctx context.Context, result models.GameResult) error {
	elo := e.eloFor(result.SportKey)
	if elo == nil {
		return fmt.Errorf("no ratings tracked for sport %s", result.SportKey)
	}

	if e.store != nil {
		if err := e.store.SaveGameResult(ctx, &result); err != nil {
			return err
		}
	}

	home, away := elo.Update(result)

	if e.store != nil {
		if err := e.store.UpsertTeamRating(ctx, &home); err != nil {
			return err
		}
		if err := e.store.UpsertTeamRating(ctx, &away); err != nil {
			return err
		}
	}

	return nil
}

// Recompute rebuilds a sport's ratings by replaying all stored results in
// order, then persists the outcome
func (e *Engine) Recompute(ctx context.Context, sportKey string) error {
	if e.store == nil {
		return fmt.Errorf("no store configured")
	}

	results, err := e.store.GameResults(ctx, sportKey)
	if err != nil {
		return err
	}

	elo := NewElo(sportKey)
	for _, result := range results {
		elo.Update(result)
	}

	for _, rating := range elo.Ratings() {
		r := rating
		if err := e.store.UpsertTeamRating(ctx, &r); err != nil {
			return err
		}
	}

	e.mu.Lock()
	e.elos[sportKey] = elo
	e.mu.Unlock()

	fmt.Printf("[Ratings] Recomputed %s from %d results (%d teams)\n",
		sportKey, len(results), len(elo.Ratings()))
	return nil
}

// Predict returns the model spread and win probability for a matchup
func (e *Engine) Predict(sportKey, homeTeam, awayTeam string) (*models.SpreadPrediction, error) {
	elo := e.eloFor(sportKey)
	if elo == nil {
		return nil, fmt.Errorf("no ratings tracked for sport %s", sportKey)
	}

	prediction := elo.PredictSpread(homeTeam, awayTeam)
	return &prediction, nil
}

// Ratings returns the current rating snapshot for a sport, strongest first
func (e *Engine) Ratings(sportKey string) ([]models.TeamRating, error) {
	elo := e.eloFor(sportKey)
	if elo == nil {
		return nil, fmt.Errorf("no ratings tracked for sport %s", sportKey)
	}
	return elo.Ratings(), nil
}

func (e *Engine) eloFor(sportKey string) *Elo {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.elos[sportKey]
}

// ShouldBet applies the Walters criteria: a real model edge, at least half
// a point of confirming line movement, and sharp agreement
func ShouldBet(modelEdge, lineMovePoints, sharpConfidence float64) bool {
	return modelEdge > WaltersMinEdge &&
		math.Abs(lineMovePoints) >= WaltersMinLineMove &&
		sharpConfidence > WaltersMinSharpAgree
}
