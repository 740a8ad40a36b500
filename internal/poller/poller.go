// Package poller drives ingestion: on each tick it pulls current odds from
// the vendor for every monitored sport, publishes them to the raw odds
// streams and captures closing lines for events about to start.
package poller

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/BTheCoderr/theRounders/internal/bus"
	"github.com/BTheCoderr/theRounders/internal/oddsapi"
	"github.com/BTheCoderr/theRounders/internal/snapshot"
	"github.com/BTheCoderr/theRounders/internal/store"
	"github.com/BTheCoderr/theRounders/pkg/models"
)

// Poller polls the vendor on a fixed interval per sport
type Poller struct {
	client    *oddsapi.Client
	publisher *bus.Publisher
	store     *store.Store
	snapshot  *snapshot.Cache

	sports   []string
	markets  []string
	interval time.Duration

	pollCount  int64
	errorCount int64
	mu         sync.Mutex
}

// New creates a poller for the given sports and markets
func New(client *oddsapi.Client, publisher *bus.Publisher, st *store.Store, snap *snapshot.Cache, sports, markets []string, interval time.Duration) *Poller {
	return &Poller{
		client:    client,
		publisher: publisher,
		store:     st,
		snapshot:  snap,
		sports:    sports,
		markets:   markets,
		interval:  interval,
	}
}

// Start polls each sport on its own ticker until the context is cancelled
func (p *Poller) Start(ctx context.Context) {
	var wg sync.WaitGroup

	for _, sportKey := range p.sports {
		wg.Add(1)
		go func(sportKey string) {
			defer wg.Done()
			p.pollLoop(ctx, sportKey)
		}(sportKey)
	}

	// Drop completed events from the snapshot hourly
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if p.snapshot != nil {
					p.snapshot.Prune(time.Now().Add(-6 * time.Hour))
				}
			}
		}
	}()

	wg.Wait()
}

func (p *Poller) pollLoop(ctx context.Context, sportKey string) {
	fmt.Printf("✓ Polling %s every %s\n", sportKey, p.interval)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	// First poll immediately
	if err := p.poll(ctx, sportKey); err != nil {
		fmt.Printf("[Poller] %s: %v\n", sportKey, err)
		p.incrementErrors()
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := p.poll(ctx, sportKey); err != nil {
				fmt.Printf("[Poller] %s: %v\n", sportKey, err)
				p.incrementErrors()
			}
		}
	}
}

func (p *Poller) poll(ctx context.Context, sportKey string) error {
	result, err := p.client.FetchOdds(ctx, sportKey, p.markets)
	if err != nil {
		return fmt.Errorf("fetch failed: %w", err)
	}

	if p.snapshot != nil {
		p.snapshot.UpsertEvents(result.Events)
	}

	payloads := make([]interface{}, len(result.Odds))
	for i := range result.Odds {
		payloads[i] = result.Odds[i]
	}
	if err := p.publisher.PublishBatch(ctx, bus.RawOddsStream(sportKey), payloads); err != nil {
		return fmt.Errorf("publish failed: %w", err)
	}

	p.captureClosingLines(ctx, result)
	p.incrementPolls()

	limits := p.client.Limits()
	fmt.Printf("[Poller] %s: %d events, %d odds (requests remaining: %d)\n",
		sportKey, len(result.Events), len(result.Odds), limits.RequestsRemaining)

	return nil
}

// captureClosingLines upserts the latest price for every outcome of events
// starting within the next two poll intervals. The final write before
// commence time is the closing line.
func (p *Poller) captureClosingLines(ctx context.Context, result *oddsapi.FetchResult) {
	if p.store == nil {
		return
	}

	cutoff := time.Now().Add(2 * p.interval)
	closing := make(map[string]bool)
	for _, event := range result.Events {
		if event.CommenceTime.After(time.Now()) && event.CommenceTime.Before(cutoff) {
			closing[event.EventID] = true
		}
	}
	if len(closing) == 0 {
		return
	}

	for _, odds := range result.Odds {
		if !closing[odds.EventID] {
			continue
		}
		line := &models.ClosingLine{
			EventID:      odds.EventID,
			MarketKey:    odds.MarketKey,
			BookKey:      odds.BookKey,
			OutcomeName:  odds.OutcomeName,
			ClosingPrice: odds.Price,
			Point:        odds.Point,
			ClosedAt:     odds.ReceivedAt,
		}
		if err := p.store.UpsertClosingLine(ctx, line); err != nil {
			fmt.Printf("[Poller] error capturing closing line: %v\n", err)
		}
	}
}

func (p *Poller) incrementPolls() {
	p.mu.Lock()
	p.pollCount++
	p.mu.Unlock()
}

func (p *Poller) incrementErrors() {
	p.mu.Lock()
	p.errorCount++
	p.mu.Unlock()
}

// Metrics returns poll and error counts
func (p *Poller) Metrics() (polls, errors int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pollCount, p.errorCount
}
