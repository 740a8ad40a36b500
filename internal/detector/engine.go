package detector

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/BTheCoderr/theRounders/internal/bus"
	"github.com/BTheCoderr/theRounders/internal/store"
	"github.com/BTheCoderr/theRounders/pkg/contracts"
	"github.com/BTheCoderr/theRounders/pkg/models"
)

const marketCacheTTL = 5 * time.Minute

// Engine runs every detector over each normalized quote, persists the
// opportunities found and publishes them downstream
type Engine struct {
	consumer  *bus.Consumer
	publisher *bus.Publisher
	store     *store.Store
	detectors []contracts.OpportunityDetector

	// Current market state so detectors see all books at once
	marketCache sync.Map // "eventID:marketKey" -> []models.NormalizedOdds

	detectedCount int64
	errorCount    int64
	mu            sync.Mutex
}

// NewEngine wires the standard detector set: edge, middle, scalp and steam
func NewEngine(consumer *bus.Consumer, publisher *bus.Publisher, st *store.Store, config Config, sharp contracts.SharpBookProvider) *Engine {
	var history LineHistorySource
	if st != nil {
		history = st
	}

	return &Engine{
		consumer:  consumer,
		publisher: publisher,
		store:     st,
		detectors: []contracts.OpportunityDetector{
			NewEdgeDetector(config, sharp),
			NewMiddleDetector(config, sharp),
			NewScalpDetector(config),
			NewSteamDetector(config, sharp, history),
		},
	}
}

// Start consumes normalized odds for the given sports until the context is
// cancelled
func (e *Engine) Start(ctx context.Context, sportKeys []string) error {
	if len(sportKeys) == 0 {
		return fmt.Errorf("no sports to monitor")
	}

	streamKeys := make([]string, len(sportKeys))
	for i, key := range sportKeys {
		streamKeys[i] = bus.NormalizedOddsStream(key)
	}

	fmt.Printf("✓ Detection engine consuming %d normalized streams\n", len(streamKeys))

	messageCh, errorCh := e.consumer.Consume(ctx, streamKeys...)

	for {
		select {
		case <-ctx.Done():
			return nil

		case err := <-errorCh:
			if err != nil {
				fmt.Printf("[Detector] stream error: %v\n", err)
			}

		case msg, ok := <-messageCh:
			if !ok {
				return nil
			}

			if err := e.processMessage(ctx, msg); err != nil {
				fmt.Printf("[Detector] error processing message %s: %v\n", msg.ID, err)
				e.incrementErrors()
			}

			if err := e.consumer.Ack(ctx, msg.StreamKey, msg.ID); err != nil {
				fmt.Printf("[Detector] error acknowledging message %s: %v\n", msg.ID, err)
			}
		}
	}
}

func (e *Engine) processMessage(ctx context.Context, msg bus.Message) error {
	var odds models.NormalizedOdds
	if err := json.Unmarshal(msg.Data, &odds); err != nil {
		return fmt.Errorf("error unmarshaling normalized odds: %w", err)
	}

	e.updateMarketCache(odds)
	marketOdds := e.getMarketOdds(odds)

	for _, detector := range e.detectors {
		if !detector.IsEnabled() {
			continue
		}

		opportunities, err := detector.Detect(ctx, odds, marketOdds)
		if err != nil {
			fmt.Printf("[Detector] %s detector error: %v\n", detector.GetType(), err)
			continue
		}

		for _, opportunity := range opportunities {
			if err := e.processOpportunity(ctx, opportunity); err != nil {
				fmt.Printf("[Detector] error handling opportunity: %v\n", err)
				continue
			}
			e.incrementDetected()

			fmt.Printf("✓ Detected %s opportunity: event=%s market=%s edge=%.2f%%\n",
				opportunity.OpportunityType, opportunity.EventID,
				opportunity.MarketKey, opportunity.EdgePercent)
		}
	}

	return nil
}

// processOpportunity persists the opportunity then publishes it with its
// database ID attached
func (e *Engine) processOpportunity(ctx context.Context, opportunity models.Opportunity) error {
	if e.store != nil {
		if err := e.store.SaveOpportunity(ctx, &opportunity); err != nil {
			return fmt.Errorf("failed to save opportunity: %w", err)
		}
	}

	if err := e.publisher.Publish(ctx, bus.OpportunitiesStream, opportunity); err != nil {
		return fmt.Errorf("failed to publish opportunity: %w", err)
	}

	return nil
}

func (e *Engine) getMarketOdds(odds models.NormalizedOdds) []models.NormalizedOdds {
	if value, ok := e.marketCache.Load(engineMarketKey(odds)); ok {
		if cached, ok := value.([]models.NormalizedOdds); ok {
			return cached
		}
	}
	return nil
}

func (e *Engine) updateMarketCache(odds models.NormalizedOdds) {
	key := engineMarketKey(odds)

	var marketOdds []models.NormalizedOdds
	if value, ok := e.marketCache.Load(key); ok {
		if cached, ok := value.([]models.NormalizedOdds); ok {
			marketOdds = cached
		}
	}

	found := false
	for i, existing := range marketOdds {
		if existing.BookKey == odds.BookKey && existing.OutcomeName == odds.OutcomeName {
			marketOdds[i] = odds
			found = true
			break
		}
	}
	if !found {
		marketOdds = append(marketOdds, odds)
	}

	e.marketCache.Store(key, marketOdds)

	go func() {
		time.Sleep(marketCacheTTL)
		e.marketCache.Delete(key)
	}()
}

func engineMarketKey(odds models.NormalizedOdds) string {
	return fmt.Sprintf("%s:%s", odds.EventID, odds.MarketKey)
}

func (e *Engine) incrementDetected() {
	e.mu.Lock()
	e.detectedCount++
	e.mu.Unlock()
}

func (e *Engine) incrementErrors() {
	e.mu.Lock()
	e.errorCount++
	e.mu.Unlock()
}

// Metrics returns the detected and error counts
func (e *Engine) Metrics() (detected, errors int64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.detectedCount, e.errorCount
}
