package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/BTheCoderr/theRounders/internal/kelly"
	"github.com/BTheCoderr/theRounders/pkg/models"
)

// GetOpportunities lists recently detected opportunities.
// Query params: type (edge|middle|scalp|steam), since (RFC3339), limit.
func (h *Handler) GetOpportunities(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	oppType := models.OpportunityType(r.URL.Query().Get("type"))
	limit := parseIntParam(r, "limit", 100)
	if limit > 500 {
		limit = 500
	}

	since := time.Now().Add(-1 * time.Hour)
	if sinceStr := r.URL.Query().Get("since"); sinceStr != "" {
		t, err := time.Parse(time.RFC3339, sinceStr)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid since timestamp", err)
			return
		}
		since = t
	}

	opportunities, err := h.store.RecentOpportunities(ctx, oppType, since, limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to retrieve opportunities", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"opportunities": opportunities,
		"count":         len(opportunities),
		"limit":         limit,
	})
}

type stakeRequest struct {
	Opportunity models.Opportunity `json:"opportunity"`

	// Optional overrides; persisted settings apply when zero
	Bankroll      float64 `json:"bankroll,omitempty"`
	KellyFraction float64 `json:"kelly_fraction,omitempty"`
	TotalStake    float64 `json:"total_stake,omitempty"`
}

// CalculateStake sizes an opportunity using the saved bankroll settings,
// with optional per-request overrides
func (h *Handler) CalculateStake(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var req stakeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	settings, err := h.store.GetSettings(ctx, h.defaultSettings)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load settings", err)
		return
	}

	params := kelly.Params{
		Bankroll:      settings.Bankroll,
		KellyFraction: settings.KellyFraction,
		MinEdge:       settings.MinEdgePct / 100.0,
		MaxStakePct:   0.05,
		ScalpStake:    settings.DefaultStake,
	}
	if req.Bankroll > 0 {
		params.Bankroll = req.Bankroll
	}
	if req.KellyFraction > 0 {
		params.KellyFraction = req.KellyFraction
	}
	if req.TotalStake > 0 {
		params.ScalpStake = req.TotalStake
	}

	rec, err := kelly.Recommend(req.Opportunity, params)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error(), nil)
		return
	}

	respondJSON(w, http.StatusOK, rec)
}
