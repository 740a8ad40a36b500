// Package normalizer is the pipeline stage that turns raw book quotes into
// normalized odds with fair prices and edges, and records line movement
// history along the way.
package normalizer

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/BTheCoderr/theRounders/internal/bus"
	"github.com/BTheCoderr/theRounders/internal/registry"
	"github.com/BTheCoderr/theRounders/internal/store"
	"github.com/BTheCoderr/theRounders/pkg/models"
)

const marketCacheTTL = 5 * time.Minute

// Processor consumes raw odds, normalizes them and publishes the result
type Processor struct {
	consumer  *bus.Consumer
	publisher *bus.Publisher
	registry  *registry.NormalizerRegistry
	store     *store.Store

	// Current odds per event+market, so vig removal and consensus can see
	// the whole market
	marketCache sync.Map // "eventID:marketKey" -> []models.RawOdds

	// Last seen price per outcome, to record only real movements
	lastPrices sync.Map // "eventID:marketKey:bookKey:outcome" -> int

	processedCount int64
	errorCount     int64
	mu             sync.Mutex
}

// NewProcessor creates a processor. store may be nil when movement history
// is not wanted.
func NewProcessor(consumer *bus.Consumer, publisher *bus.Publisher, reg *registry.NormalizerRegistry, st *store.Store) *Processor {
	return &Processor{
		consumer:  consumer,
		publisher: publisher,
		registry:  reg,
		store:     st,
	}
}

// Start consumes raw odds streams for every registered sport until the
// context is cancelled
func (p *Processor) Start(ctx context.Context) error {
	sportKeys := p.registry.SportKeys()
	if len(sportKeys) == 0 {
		return fmt.Errorf("no sport normalizers registered")
	}

	streamKeys := make([]string, len(sportKeys))
	for i, key := range sportKeys {
		streamKeys[i] = bus.RawOddsStream(key)
	}

	fmt.Printf("✓ Normalizer consuming %d raw odds streams\n", len(streamKeys))

	messageCh, errorCh := p.consumer.Consume(ctx, streamKeys...)

	for {
		select {
		case <-ctx.Done():
			return nil

		case err := <-errorCh:
			if err != nil {
				fmt.Printf("[Normalizer] stream error: %v\n", err)
			}

		case msg, ok := <-messageCh:
			if !ok {
				return nil
			}

			if err := p.processMessage(ctx, msg); err != nil {
				fmt.Printf("[Normalizer] error processing message %s: %v\n", msg.ID, err)
				p.incrementErrors()
			} else {
				p.incrementProcessed()
			}

			if err := p.consumer.Ack(ctx, msg.StreamKey, msg.ID); err != nil {
				fmt.Printf("[Normalizer] error acknowledging message %s: %v\n", msg.ID, err)
			}
		}
	}
}

func (p *Processor) processMessage(ctx context.Context, msg bus.Message) error {
	var raw models.RawOdds
	if err := json.Unmarshal(msg.Data, &raw); err != nil {
		return fmt.Errorf("error unmarshaling raw odds: %w", err)
	}

	normalizer, exists := p.registry.Get(raw.SportKey)
	if !exists {
		return fmt.Errorf("no normalizer registered for sport: %s", raw.SportKey)
	}

	marketOdds := p.getMarketOdds(raw)

	normalized, err := normalizer.Normalize(ctx, raw, marketOdds)
	if err != nil {
		return fmt.Errorf("normalization error: %w", err)
	}

	p.updateMarketCache(raw)
	p.recordMovement(ctx, raw)

	if err := p.publisher.Publish(ctx, bus.NormalizedOddsStream(raw.SportKey), normalized); err != nil {
		return fmt.Errorf("publish error: %w", err)
	}

	return nil
}

// recordMovement writes a line_movements row when the price differs from
// the last observation for this outcome
func (p *Processor) recordMovement(ctx context.Context, raw models.RawOdds) {
	if p.store == nil {
		return
	}

	key := fmt.Sprintf("%s:%s:%s:%s", raw.EventID, raw.MarketKey, raw.BookKey, raw.OutcomeName)
	if last, ok := p.lastPrices.Load(key); ok && last.(int) == raw.Price {
		return
	}
	p.lastPrices.Store(key, raw.Price)

	movement := &models.LineMovement{
		EventID:     raw.EventID,
		SportKey:    raw.SportKey,
		MarketKey:   raw.MarketKey,
		BookKey:     raw.BookKey,
		OutcomeName: raw.OutcomeName,
		Price:       raw.Price,
		Point:       raw.Point,
		RecordedAt:  raw.ReceivedAt,
	}
	if err := p.store.RecordLineMovement(ctx, movement); err != nil {
		fmt.Printf("[Normalizer] error recording line movement: %v\n", err)
	}
}

// getMarketOdds returns the cached odds for the same event+market
func (p *Processor) getMarketOdds(odds models.RawOdds) []models.RawOdds {
	if value, ok := p.marketCache.Load(marketKey(odds)); ok {
		if cached, ok := value.([]models.RawOdds); ok {
			return cached
		}
	}
	return nil
}

// updateMarketCache replaces or appends this outcome's quote
func (p *Processor) updateMarketCache(odds models.RawOdds) {
	key := marketKey(odds)

	var marketOdds []models.RawOdds
	if value, ok := p.marketCache.Load(key); ok {
		if cached, ok := value.([]models.RawOdds); ok {
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

	p.marketCache.Store(key, marketOdds)

	// Drop the entry when the market goes quiet
	go func() {
		time.Sleep(marketCacheTTL)
		p.marketCache.Delete(key)
	}()
}

func marketKey(odds models.RawOdds) string {
	return fmt.Sprintf("%s:%s", odds.EventID, odds.MarketKey)
}

func (p *Processor) incrementProcessed() {
	p.mu.Lock()
	p.processedCount++
	p.mu.Unlock()
}

func (p *Processor) incrementErrors() {
	p.mu.Lock()
	p.errorCount++
	p.mu.Unlock()
}

// Metrics returns the processed and error counts
func (p *Processor) Metrics() (processed, errors int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.processedCount, p.errorCount
}
