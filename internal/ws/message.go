// Package ws streams live odds and opportunity updates to dashboard
// clients over WebSocket.
package ws

import "time"

// Message types exchanged with clients
const (
	MessageTypeOddsUpdate  = "odds_update"
	MessageTypeOpportunity = "opportunity"
	MessageTypeSubscribe   = "subscribe"
	MessageTypeUnsubscribe = "unsubscribe"
	MessageTypeHeartbeat   = "heartbeat"
	MessageTypeError       = "error"
)

// ClientMessage is a message from client to server
type ClientMessage struct {
	Type    string                 `json:"type"`
	Payload map[string]interface{} `json:"payload,omitempty"`
}

// ServerMessage is a message from server to client
type ServerMessage struct {
	Type      string      `json:"type"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// SubscriptionFilter narrows what a client receives
type SubscriptionFilter struct {
	Sports  []string `json:"sports,omitempty"`
	Events  []string `json:"events,omitempty"`
	Markets []string `json:"markets,omitempty"`
	Books   []string `json:"books,omitempty"`
}

// FilterScope is the set of attributes a broadcast is matched against
type FilterScope struct {
	SportKey  string
	EventID   string
	MarketKey string
	BookKey   string
}

// ConnectionStats describes one client connection
type ConnectionStats struct {
	ClientID          string    `json:"client_id"`
	ConnectedAt       time.Time `json:"connected_at"`
	MessagesSent      int64     `json:"messages_sent"`
	MessagesReceived  int64     `json:"messages_received"`
	LastMessageAt     time.Time `json:"last_message_at"`
	BufferSize        int       `json:"buffer_size"`
	BufferUtilization float64   `json:"buffer_utilization"`
}

// ErrorMessage is sent when a client request cannot be honored
type ErrorMessage struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
