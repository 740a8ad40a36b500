package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// GetEvents lists cached upcoming events, optionally filtered by sport
func (h *Handler) GetEvents(w http.ResponseWriter, r *http.Request) {
	sportKey := r.URL.Query().Get("sport")

	events := h.cache.Events(sportKey)

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"events": events,
		"count":  len(events),
	})
}

// GetEvent returns a single cached event
func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")
	if eventID == "" {
		respondError(w, http.StatusBadRequest, "event_id is required", nil)
		return
	}

	event, ok := h.cache.Event(eventID)
	if !ok {
		respondError(w, http.StatusNotFound, "event not found", nil)
		return
	}

	respondJSON(w, http.StatusOK, event)
}

// GetCurrentOdds returns the latest normalized odds for an event,
// optionally narrowed to one market
func (h *Handler) GetCurrentOdds(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")
	if eventID == "" {
		respondError(w, http.StatusBadRequest, "event_id is required", nil)
		return
	}
	marketKey := r.URL.Query().Get("market")

	odds := h.cache.CurrentOdds(eventID, marketKey)

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"event_id": eventID,
		"odds":     odds,
		"count":    len(odds),
	})
}

// GetEventLineHistory returns recorded line movements for an event
func (h *Handler) GetEventLineHistory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	eventID := chi.URLParam(r, "eventID")
	if eventID == "" {
		respondError(w, http.StatusBadRequest, "event_id is required", nil)
		return
	}

	limit := parseIntParam(r, "limit", 1000)
	if limit > 10000 {
		limit = 10000
	}

	history, err := h.store.EventLineHistory(ctx, eventID, limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to retrieve line history", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"event_id": eventID,
		"history":  history,
		"count":    len(history),
	})
}

// GetLineHistory returns the movement series for one outcome at one book.
// Query params: event_id, market, book, outcome, since (RFC3339).
func (h *Handler) GetLineHistory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	q := r.URL.Query()
	eventID := q.Get("event_id")
	marketKey := q.Get("market")
	bookKey := q.Get("book")
	outcomeName := q.Get("outcome")

	if eventID == "" || marketKey == "" || bookKey == "" || outcomeName == "" {
		respondError(w, http.StatusBadRequest, "event_id, market, book and outcome are required", nil)
		return
	}

	since := time.Now().Add(-24 * time.Hour)
	if sinceStr := q.Get("since"); sinceStr != "" {
		t, err := time.Parse(time.RFC3339, sinceStr)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid since timestamp", err)
			return
		}
		since = t
	}

	history, err := h.store.LineHistory(ctx, eventID, marketKey, bookKey, outcomeName, since)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to retrieve line history", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"history": history,
		"count":   len(history),
	})
}
