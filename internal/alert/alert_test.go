package alert_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/BTheCoderr/theRounders/internal/alert"
	"github.com/BTheCoderr/theRounders/pkg/models"
)

func TestFilterShouldAlert(t *testing.T) {
	filter := alert.NewFilter(2.0, 10)

	tests := []struct {
		name        string
		edgePercent float64
		dataAge     int
		want        bool
	}{
		{"passes thresholds", 3.5, 5, true},
		{"edge too small", 1.5, 5, false},
		{"data too old", 3.5, 15, false},
		{"exactly at edge threshold", 2.0, 5, true},
		{"exactly at age threshold", 3.5, 10, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opp := models.Opportunity{
				EdgePercent:    tt.edgePercent,
				DataAgeSeconds: tt.dataAge,
			}
			got, reason := filter.ShouldAlert(opp)
			if got != tt.want {
				t.Errorf("expected %v, got %v (%s)", tt.want, got, reason)
			}
			if !got && reason == "" {
				t.Error("expected a reason when rejecting")
			}
		})
	}
}

func TestSlackNotifierSendsWebhook(t *testing.T) {
	var body string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected application/json, got %s", ct)
		}
		raw, _ := io.ReadAll(r.Body)
		body = string(raw)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	notifier := alert.NewSlackNotifier(server.URL)

	point := 219.5
	fairPrice := 102
	opp := models.Opportunity{
		ID:              42,
		OpportunityType: models.OpportunityTypeEdge,
		SportKey:        "basketball_nba",
		EventID:         "evt123",
		MarketKey:       "totals",
		EdgePercent:     3.25,
		FairPrice:       &fairPrice,
		DetectedAt:      time.Now(),
		DataAgeSeconds:  3,
		Legs: []models.OpportunityLeg{
			{BookKey: "draftkings", OutcomeName: "Over", Price: -105, Point: &point},
		},
	}

	if err := notifier.SendAlert(context.Background(), opp); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var payload map[string]string
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		t.Fatalf("payload is not valid JSON: %v", err)
	}

	text := payload["text"]
	for _, want := range []string{"EDGE DETECTED", "3.25%", "evt123", "totals", "draftkings", "Over @ -105", "(219.5)", "+102"} {
		if !strings.Contains(text, want) {
			t.Errorf("message missing %q:\n%s", want, text)
		}
	}
}

func TestSlackNotifierNon200(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	notifier := alert.NewSlackNotifier(server.URL)
	err := notifier.SendAlert(context.Background(), models.Opportunity{})
	if err == nil {
		t.Fatal("expected error on non-200 response")
	}
	if !strings.Contains(err.Error(), "500") {
		t.Errorf("expected status in error, got: %v", err)
	}
}

func TestSlackMessageIncludesSteamConfidence(t *testing.T) {
	var body string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		body = string(raw)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	confidence := 78.0
	opp := models.Opportunity{
		OpportunityType: models.OpportunityTypeSteam,
		EventID:         "evt456",
		MarketKey:       "spreads",
		EdgePercent:     2.1,
		SharpConfidence: &confidence,
		DetectedAt:      time.Now(),
		Legs: []models.OpportunityLeg{
			{BookKey: "fanduel", OutcomeName: "Kansas City Chiefs", Price: -108},
		},
	}

	notifier := alert.NewSlackNotifier(server.URL)
	if err := notifier.SendAlert(context.Background(), opp); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(body, "STEAM DETECTED") {
		t.Errorf("expected steam header in message:\n%s", body)
	}
	if !strings.Contains(body, "78/100") {
		t.Errorf("expected sharp confidence in message:\n%s", body)
	}
}
