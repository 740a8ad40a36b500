package ws

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/BTheCoderr/theRounders/pkg/models"
)

type broadcastItem struct {
	message ServerMessage
	scope   FilterScope
}

// Hub tracks connected clients and fans broadcasts out to the ones whose
// subscriptions match
type Hub struct {
	clientsMu sync.RWMutex
	clients   map[*Client]bool

	broadcast  chan broadcastItem
	register   chan *Client
	unregister chan *Client

	metricsMu        sync.Mutex
	totalConnections int64
	totalMessages    int64
}

// NewHub creates an empty hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan broadcastItem, 1000),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run processes registrations and broadcasts until the context is cancelled
func (h *Hub) Run(ctx context.Context) {
	fmt.Println("✓ WebSocket hub started")

	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return

		case c := <-h.register:
			h.registerClient(c)

		case c := <-h.unregister:
			h.unregisterClient(c)

		case item := <-h.broadcast:
			h.fanOut(item)
		}
	}
}

// Register adds a client to the hub
func (h *Hub) Register(c *Client) {
	h.register <- c
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(c *Client) {
	h.unregister <- c
}

// BroadcastOdds sends a normalized odds update to matching clients
func (h *Hub) BroadcastOdds(odds models.NormalizedOdds) {
	h.enqueue(broadcastItem{
		message: ServerMessage{
			Type:      MessageTypeOddsUpdate,
			Payload:   odds,
			Timestamp: time.Now(),
		},
		scope: FilterScope{
			SportKey:  odds.SportKey,
			EventID:   odds.EventID,
			MarketKey: odds.MarketKey,
			BookKey:   odds.BookKey,
		},
	})
}

// BroadcastOpportunity sends a detected opportunity to matching clients
func (h *Hub) BroadcastOpportunity(opp models.Opportunity) {
	h.enqueue(broadcastItem{
		message: ServerMessage{
			Type:      MessageTypeOpportunity,
			Payload:   opp,
			Timestamp: time.Now(),
		},
		scope: FilterScope{
			SportKey:  opp.SportKey,
			EventID:   opp.EventID,
			MarketKey: opp.MarketKey,
		},
	})
}

func (h *Hub) enqueue(item broadcastItem) {
	select {
	case h.broadcast <- item:
	default:
		fmt.Println("[WS] broadcast buffer full, dropping message")
	}
}

func (h *Hub) registerClient(c *Client) {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()

	h.clients[c] = true

	h.metricsMu.Lock()
	h.totalConnections++
	h.metricsMu.Unlock()

	fmt.Printf("[WS] client %s connected (total: %d)\n", c.ID, len(h.clients))
}

func (h *Hub) unregisterClient(c *Client) {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()

	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.Send)
		fmt.Printf("[WS] client %s disconnected (total: %d)\n", c.ID, len(h.clients))
	}
}

func (h *Hub) fanOut(item broadcastItem) {
	h.clientsMu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.clientsMu.RUnlock()

	sent := 0
	for _, c := range clients {
		if !c.MatchesScope(item.scope) {
			continue
		}

		if c.TrySend(item.message) {
			sent++
		} else {
			// Buffer full means the client can't keep up
			fmt.Printf("[WS] client %s buffer full, disconnecting\n", c.ID)
			go h.Unregister(c)
		}
	}

	if sent > 0 {
		h.metricsMu.Lock()
		h.totalMessages++
		h.metricsMu.Unlock()
	}
}

// ClientCount returns the number of active clients
func (h *Hub) ClientCount() int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients)
}

// Metrics reports hub counters
func (h *Hub) Metrics() map[string]interface{} {
	h.clientsMu.RLock()
	activeClients := len(h.clients)
	h.clientsMu.RUnlock()

	h.metricsMu.Lock()
	totalConnections := h.totalConnections
	totalMessages := h.totalMessages
	h.metricsMu.Unlock()

	return map[string]interface{}{
		"active_clients":     activeClients,
		"total_connections":  totalConnections,
		"total_messages":     totalMessages,
		"broadcast_capacity": cap(h.broadcast),
		"broadcast_usage":    len(h.broadcast),
	}
}

func (h *Hub) shutdown() {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()

	fmt.Printf("[WS] shutting down hub (%d active clients)\n", len(h.clients))

	for c := range h.clients {
		close(c.Send)
		delete(h.clients, c)
	}
}
