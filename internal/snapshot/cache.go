// Package snapshot keeps the latest events and normalized odds in memory
// for the REST API and websocket broadcasts.
package snapshot

import (
	"sort"
	"sync"
	"time"

	"github.com/BTheCoderr/theRounders/pkg/models"
)

// Cache is the in-memory view of the current market
type Cache struct {
	mu     sync.RWMutex
	events map[string]models.Event                    // eventID -> event
	odds   map[string]map[string]models.NormalizedOdds // eventID -> "market:book:outcome" -> odds
}

// NewCache creates an empty snapshot cache
func NewCache() *Cache {
	return &Cache{
		events: make(map[string]models.Event),
		odds:   make(map[string]map[string]models.NormalizedOdds),
	}
}

// UpsertEvents stores or refreshes events
func (c *Cache) UpsertEvents(events []models.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, event := range events {
		c.events[event.EventID] = event
	}
}

// Events returns events for a sport (all sports when empty), soonest first
func (c *Cache) Events(sportKey string) []models.Event {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var events []models.Event
	for _, event := range c.events {
		if sportKey == "" || event.SportKey == sportKey {
			events = append(events, event)
		}
	}

	sort.Slice(events, func(i, j int) bool {
		return events[i].CommenceTime.Before(events[j].CommenceTime)
	})
	return events
}

// Event returns a single event by ID
func (c *Cache) Event(eventID string) (models.Event, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	event, ok := c.events[eventID]
	return event, ok
}

// UpdateOdds stores the latest normalized quote for an outcome
func (c *Cache) UpdateOdds(odds models.NormalizedOdds) {
	c.mu.Lock()
	defer c.mu.Unlock()

	byOutcome, ok := c.odds[odds.EventID]
	if !ok {
		byOutcome = make(map[string]models.NormalizedOdds)
		c.odds[odds.EventID] = byOutcome
	}
	byOutcome[odds.MarketKey+":"+odds.BookKey+":"+odds.OutcomeName] = odds
}

// CurrentOdds returns the latest quotes for an event, optionally filtered
// by market
func (c *Cache) CurrentOdds(eventID, marketKey string) []models.NormalizedOdds {
	c.mu.RLock()
	defer c.mu.RUnlock()

	byOutcome, ok := c.odds[eventID]
	if !ok {
		return nil
	}

	var quotes []models.NormalizedOdds
	for _, odds := range byOutcome {
		if marketKey == "" || odds.MarketKey == marketKey {
			quotes = append(quotes, odds)
		}
	}

	sort.Slice(quotes, func(i, j int) bool {
		if quotes[i].MarketKey != quotes[j].MarketKey {
			return quotes[i].MarketKey < quotes[j].MarketKey
		}
		if quotes[i].BookKey != quotes[j].BookKey {
			return quotes[i].BookKey < quotes[j].BookKey
		}
		return quotes[i].OutcomeName < quotes[j].OutcomeName
	})
	return quotes
}

// Prune drops events that commenced before the cutoff, with their odds
func (c *Cache) Prune(cutoff time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for id, event := range c.events {
		if event.CommenceTime.Before(cutoff) {
			delete(c.events, id)
			delete(c.odds, id)
			removed++
		}
	}
	return removed
}
