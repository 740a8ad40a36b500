package handlers

import (
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"
)

// GetRatings returns current power ratings for a sport, strongest first
func (h *Handler) GetRatings(w http.ResponseWriter, r *http.Request) {
	sportKey := chi.URLParam(r, "sport")

	teamRatings, err := h.ratings.Ratings(sportKey)
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error(), nil)
		return
	}

	sort.Slice(teamRatings, func(i, j int) bool {
		return teamRatings[i].Rating > teamRatings[j].Rating
	})

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"sport_key": sportKey,
		"ratings":   teamRatings,
		"count":     len(teamRatings),
	})
}

// GetPrediction returns the model spread and win probability for a matchup.
// Query params: home, away.
func (h *Handler) GetPrediction(w http.ResponseWriter, r *http.Request) {
	sportKey := chi.URLParam(r, "sport")
	homeTeam := r.URL.Query().Get("home")
	awayTeam := r.URL.Query().Get("away")

	if homeTeam == "" || awayTeam == "" {
		respondError(w, http.StatusBadRequest, "home and away are required", nil)
		return
	}

	prediction, err := h.ratings.Predict(sportKey, homeTeam, awayTeam)
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error(), nil)
		return
	}

	respondJSON(w, http.StatusOK, prediction)
}
