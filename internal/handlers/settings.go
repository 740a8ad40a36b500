package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/BTheCoderr/theRounders/pkg/models"
)

// GetSettings returns the persisted dashboard settings
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	settings, err := h.store.GetSettings(ctx, h.defaultSettings)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load settings", err)
		return
	}

	respondJSON(w, http.StatusOK, settings)
}

// UpdateSettings replaces the persisted dashboard settings
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var settings models.Settings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if settings.Bankroll < 0 {
		respondError(w, http.StatusBadRequest, "bankroll cannot be negative", nil)
		return
	}
	if settings.KellyFraction <= 0 || settings.KellyFraction > 1 {
		respondError(w, http.StatusBadRequest, "kelly_fraction must be between 0 and 1", nil)
		return
	}
	if settings.DefaultStake < 0 {
		respondError(w, http.StatusBadRequest, "default_stake cannot be negative", nil)
		return
	}

	if err := h.store.UpdateSettings(ctx, settings); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to save settings", err)
		return
	}

	respondJSON(w, http.StatusOK, settings)
}
