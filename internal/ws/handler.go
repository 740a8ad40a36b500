package ws

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Dashboard runs on a different port in development
		return true
	},
}

// Handler upgrades HTTP requests into hub-registered WebSocket clients
type Handler struct {
	hub *Hub
	ctx context.Context
}

// NewHandler creates the WebSocket endpoint handler. The context bounds
// client pump lifetimes, not individual requests.
func NewHandler(ctx context.Context, hub *Hub) *Handler {
	return &Handler{hub: hub, ctx: ctx}
}

// ServeHTTP upgrades the connection and starts the client pumps
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		fmt.Printf("[WS] upgrade error: %v\n", err)
		return
	}

	c := NewClient(uuid.New().String(), conn, h.hub)
	h.hub.Register(c)

	go c.WritePump(h.ctx)
	go c.ReadPump(h.ctx)
}
