package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/BTheCoderr/theRounders/pkg/models"
)

// CreateBet records a new tracked wager
func (h *Handler) CreateBet(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	// PaperTrade is a pointer here so an omitted field can fall back to the
	// persisted setting while an explicit false still means a real-money bet
	var req struct {
		models.Bet
		PaperTrade *bool `json:"paper_trade"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	bet := req.Bet
	if req.PaperTrade != nil {
		bet.PaperTrade = *req.PaperTrade
	}

	if bet.SportKey == "" || bet.EventID == "" || bet.MarketKey == "" ||
		bet.BookKey == "" || bet.OutcomeName == "" {
		respondError(w, http.StatusBadRequest, "missing required fields", nil)
		return
	}
	if bet.Price == 0 {
		respondError(w, http.StatusBadRequest, "price cannot be zero", nil)
		return
	}

	if bet.Stake == 0 || req.PaperTrade == nil {
		settings, err := h.store.GetSettings(ctx, h.defaultSettings)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "failed to load settings", err)
			return
		}
		if bet.Stake == 0 {
			bet.Stake = settings.DefaultStake
		}
		if req.PaperTrade == nil {
			bet.PaperTrade = settings.PaperTrading
		}
	}
	if bet.Stake <= 0 {
		respondError(w, http.StatusBadRequest, "stake must be positive", nil)
		return
	}

	if bet.PlacedAt.IsZero() {
		bet.PlacedAt = time.Now().UTC()
	}

	if err := h.store.CreateBet(ctx, &bet); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to create bet", err)
		return
	}

	respondJSON(w, http.StatusCreated, bet)
}

// GetBets lists bets, optionally filtered by result
func (h *Handler) GetBets(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	result := models.BetResult(r.URL.Query().Get("result"))
	limit := parseIntParam(r, "limit", 50)
	if limit > 500 {
		limit = 500
	}

	bets, err := h.store.ListBets(ctx, result, limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to retrieve bets", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"bets":  bets,
		"count": len(bets),
		"limit": limit,
	})
}

// GetBet returns one bet by ID
func (h *Handler) GetBet(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	betID, err := betIDParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid bet ID", err)
		return
	}

	bet, err := h.store.GetBet(ctx, betID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to retrieve bet", err)
		return
	}
	if bet == nil {
		respondError(w, http.StatusNotFound, "bet not found", nil)
		return
	}

	respondJSON(w, http.StatusOK, bet)
}

// DeleteBet removes a bet and its performance record
func (h *Handler) DeleteBet(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	betID, err := betIDParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid bet ID", err)
		return
	}

	if err := h.store.DeleteBet(ctx, betID); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to delete bet", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"deleted": betID})
}

// GetBetSummary returns aggregate P&L and CLV statistics
func (h *Handler) GetBetSummary(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	summary, err := h.store.BetSummary(ctx)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to retrieve summary", err)
		return
	}

	respondJSON(w, http.StatusOK, summary)
}

// GetBetCLV returns the recorded closing-line value for a bet
func (h *Handler) GetBetCLV(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	betID, err := betIDParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid bet ID", err)
		return
	}

	perf, err := h.store.GetBetPerformance(ctx, betID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to retrieve bet performance", err)
		return
	}
	if perf == nil {
		respondError(w, http.StatusNotFound, "no closing line recorded for bet", nil)
		return
	}

	respondJSON(w, http.StatusOK, perf)
}

// ScoreBetCLV computes CLV for a bet on demand
func (h *Handler) ScoreBetCLV(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	betID, err := betIDParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid bet ID", err)
		return
	}

	scored, err := h.clv.ProcessBet(ctx, betID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to score bet", err)
		return
	}
	if !scored {
		respondError(w, http.StatusNotFound, "no matching closing line yet", nil)
		return
	}

	perf, err := h.store.GetBetPerformance(ctx, betID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to retrieve bet performance", err)
		return
	}

	respondJSON(w, http.StatusOK, perf)
}

func betIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
