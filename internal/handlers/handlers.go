// Package handlers serves the dashboard REST API.
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/BTheCoderr/theRounders/internal/clv"
	"github.com/BTheCoderr/theRounders/internal/ratings"
	"github.com/BTheCoderr/theRounders/internal/snapshot"
	"github.com/BTheCoderr/theRounders/internal/store"
	"github.com/BTheCoderr/theRounders/pkg/models"
)

// ErrorResponse is the JSON error envelope
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// Handler holds the API's dependencies
type Handler struct {
	store           *store.Store
	cache           *snapshot.Cache
	ratings         *ratings.Engine
	clv             *clv.Calculator
	defaultSettings models.Settings
	corsOrigins     []string
	wsHandler       http.Handler
}

// New creates the API handler. An empty corsOrigins allows any origin;
// wsHandler may be nil when the WebSocket endpoint isn't mounted (e.g. in
// tests).
func New(st *store.Store, cache *snapshot.Cache, ratingsEngine *ratings.Engine, clvCalc *clv.Calculator, defaults models.Settings, corsOrigins []string, wsHandler http.Handler) *Handler {
	return &Handler{
		store:           st,
		cache:           cache,
		ratings:         ratingsEngine,
		clv:             clvCalc,
		defaultSettings: defaults,
		corsOrigins:     corsOrigins,
		wsHandler:       wsHandler,
	}
}

// Router builds the chi router with middleware and all API routes
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	origins := h.corsOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", h.HealthCheck)

	r.Route("/api", func(r chi.Router) {
		r.Get("/events", h.GetEvents)
		r.Get("/events/{eventID}", h.GetEvent)
		r.Get("/events/{eventID}/odds", h.GetCurrentOdds)
		r.Get("/events/{eventID}/history", h.GetEventLineHistory)
		r.Get("/line-history", h.GetLineHistory)

		r.Get("/opportunities", h.GetOpportunities)
		r.Post("/kelly", h.CalculateStake)

		r.Route("/bets", func(r chi.Router) {
			r.Post("/", h.CreateBet)
			r.Get("/", h.GetBets)
			r.Get("/summary", h.GetBetSummary)
			r.Get("/{id}", h.GetBet)
			r.Delete("/{id}", h.DeleteBet)
			r.Get("/{id}/clv", h.GetBetCLV)
			r.Post("/{id}/clv", h.ScoreBetCLV)
		})

		r.Get("/settings", h.GetSettings)
		r.Put("/settings", h.UpdateSettings)

		r.Get("/ratings/{sport}", h.GetRatings)
		r.Get("/predictions/{sport}", h.GetPrediction)
	})

	if h.wsHandler != nil {
		r.Handle("/ws", h.wsHandler)
	}

	return r
}

// HealthCheck reports API and store health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		respondError(w, http.StatusServiceUnavailable, "database unhealthy", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"driver":    h.store.Driver(),
	})
}

func parseIntParam(r *http.Request, param string, defaultValue int) int {
	valueStr := r.URL.Query().Get(param)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		fmt.Printf("[API] error encoding response: %v\n", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err != nil {
		fmt.Printf("[API] error: %s - %v\n", message, err)
	}

	resp := ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Code:    status,
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		fmt.Printf("[API] error encoding error response: %v\n", err)
	}
}
