package store_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/BTheCoderr/theRounders/internal/store"
	"github.com/BTheCoderr/theRounders/pkg/models"
)

func openTestStore(t *testing.T) *store.Store {
	t.Helper()

	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"), "")
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func floatPtr(f float64) *float64 { return &f }

func TestBetLifecycle(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	bet := &models.Bet{
		SportKey:    "basketball_nba",
		EventID:     "evt1",
		MarketKey:   "spreads",
		BookKey:     "draftkings",
		OutcomeName: "Boston Celtics",
		Price:       -110,
		Point:       floatPtr(-4.5),
		Stake:       100,
		PaperTrade:  true,
	}

	if err := s.CreateBet(ctx, bet); err != nil {
		t.Fatalf("CreateBet failed: %v", err)
	}
	if bet.ID == 0 {
		t.Error("expected bet ID to be assigned")
	}
	if bet.ExternalRef == "" {
		t.Error("expected external ref to be generated")
	}
	if bet.Result != models.BetResultPending {
		t.Errorf("expected pending result, got %s", bet.Result)
	}

	got, err := s.GetBet(ctx, bet.ID)
	if err != nil {
		t.Fatalf("GetBet failed: %v", err)
	}
	if got == nil {
		t.Fatal("expected bet, got nil")
	}
	if got.OutcomeName != "Boston Celtics" {
		t.Errorf("expected outcome Boston Celtics, got %s", got.OutcomeName)
	}
	if got.Point == nil || *got.Point != -4.5 {
		t.Errorf("expected point -4.5, got %v", got.Point)
	}

	pending, err := s.PendingBets(ctx, "basketball_nba")
	if err != nil {
		t.Fatalf("PendingBets failed: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected 1 pending bet, got %d", len(pending))
	}

	if err := s.SettleBet(ctx, bet.ID, models.BetResultWin, 90.91); err != nil {
		t.Fatalf("SettleBet failed: %v", err)
	}

	// Settling twice should fail
	if err := s.SettleBet(ctx, bet.ID, models.BetResultLoss, -100); err == nil {
		t.Error("expected error settling an already settled bet")
	}

	settled, err := s.GetBet(ctx, bet.ID)
	if err != nil {
		t.Fatalf("GetBet after settle failed: %v", err)
	}
	if settled.Result != models.BetResultWin {
		t.Errorf("expected win, got %s", settled.Result)
	}
	if settled.ProfitLoss == nil || *settled.ProfitLoss != 90.91 {
		t.Errorf("expected profit 90.91, got %v", settled.ProfitLoss)
	}
	if settled.SettledAt == nil {
		t.Error("expected settled_at to be set")
	}
}

func TestGetBetMissing(t *testing.T) {
	s := openTestStore(t)

	got, err := s.GetBet(context.Background(), 9999)
	if err != nil {
		t.Fatalf("GetBet failed: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for missing bet, got %+v", got)
	}
}

func TestDeleteBet(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	bet := &models.Bet{
		SportKey: "basketball_nba", EventID: "evt1", MarketKey: "h2h",
		BookKey: "fanduel", OutcomeName: "Denver Nuggets", Price: 150, Stake: 50,
	}
	if err := s.CreateBet(ctx, bet); err != nil {
		t.Fatalf("CreateBet failed: %v", err)
	}

	if err := s.DeleteBet(ctx, bet.ID); err != nil {
		t.Fatalf("DeleteBet failed: %v", err)
	}
	if err := s.DeleteBet(ctx, bet.ID); err == nil {
		t.Error("expected error deleting missing bet")
	}
}

func TestBetSummary(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	bets := []struct {
		result models.BetResult
		stake  float64
		profit float64
	}{
		{models.BetResultWin, 100, 90.91},
		{models.BetResultWin, 100, 90.91},
		{models.BetResultLoss, 100, -100},
		{models.BetResultPush, 100, 0},
	}

	for _, b := range bets {
		bet := &models.Bet{
			SportKey: "basketball_nba", EventID: "evt1", MarketKey: "spreads",
			BookKey: "draftkings", OutcomeName: "Side", Price: -110, Stake: b.stake,
		}
		if err := s.CreateBet(ctx, bet); err != nil {
			t.Fatalf("CreateBet failed: %v", err)
		}
		if err := s.SettleBet(ctx, bet.ID, b.result, b.profit); err != nil {
			t.Fatalf("SettleBet failed: %v", err)
		}
	}

	// One still pending
	pending := &models.Bet{
		SportKey: "basketball_nba", EventID: "evt2", MarketKey: "h2h",
		BookKey: "fanduel", OutcomeName: "Side", Price: 120, Stake: 50,
	}
	if err := s.CreateBet(ctx, pending); err != nil {
		t.Fatalf("CreateBet failed: %v", err)
	}

	summary, err := s.BetSummary(ctx)
	if err != nil {
		t.Fatalf("BetSummary failed: %v", err)
	}

	if summary.TotalBets != 5 {
		t.Errorf("expected 5 total bets, got %d", summary.TotalBets)
	}
	if summary.Wins != 2 || summary.Losses != 1 || summary.Pushes != 1 {
		t.Errorf("unexpected record: %d-%d-%d", summary.Wins, summary.Losses, summary.Pushes)
	}
	if summary.PendingBets != 1 {
		t.Errorf("expected 1 pending bet, got %d", summary.PendingBets)
	}

	// 2 wins over 3 decided bets
	wantWinRate := 2.0 / 3.0 * 100
	if diff := summary.WinRate - wantWinRate; diff > 0.01 || diff < -0.01 {
		t.Errorf("expected win rate %.2f, got %.2f", wantWinRate, summary.WinRate)
	}
	if summary.TotalStaked != 400 {
		t.Errorf("expected 400 staked, got %.2f", summary.TotalStaked)
	}

	wantProfit := 90.91 + 90.91 - 100
	if diff := summary.TotalProfitLoss - wantProfit; diff > 0.01 || diff < -0.01 {
		t.Errorf("expected profit %.2f, got %.2f", wantProfit, summary.TotalProfitLoss)
	}
}

func TestLineMovementHistory(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	base := time.Now().UTC().Add(-time.Hour)

	prices := []int{-108, -110, -115, -120}
	for i, p := range prices {
		m := &models.LineMovement{
			EventID: "evt1", SportKey: "basketball_nba", MarketKey: "spreads",
			BookKey: "pinnacle", OutcomeName: "Boston Celtics",
			Price: p, Point: floatPtr(-4.5),
			RecordedAt: base.Add(time.Duration(i) * 10 * time.Minute),
		}
		if err := s.RecordLineMovement(ctx, m); err != nil {
			t.Fatalf("RecordLineMovement failed: %v", err)
		}
	}

	// Full window sees all four observations in order
	history, err := s.LineHistory(ctx, "evt1", "spreads", "pinnacle", "Boston Celtics", base.Add(-time.Minute))
	if err != nil {
		t.Fatalf("LineHistory failed: %v", err)
	}
	if len(history) != 4 {
		t.Fatalf("expected 4 movements, got %d", len(history))
	}
	if history[0].Price != -108 || history[3].Price != -120 {
		t.Errorf("history out of order: first=%d last=%d", history[0].Price, history[3].Price)
	}

	// Trailing window drops the earliest observations
	recent, err := s.LineHistory(ctx, "evt1", "spreads", "pinnacle", "Boston Celtics", base.Add(15*time.Minute))
	if err != nil {
		t.Fatalf("LineHistory failed: %v", err)
	}
	if len(recent) != 2 {
		t.Errorf("expected 2 movements inside window, got %d", len(recent))
	}
}

func TestClosingLineUpsert(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	cl := &models.ClosingLine{
		EventID: "evt1", MarketKey: "spreads", BookKey: "pinnacle",
		OutcomeName: "Boston Celtics", ClosingPrice: -110, Point: floatPtr(-4.5),
	}
	if err := s.UpsertClosingLine(ctx, cl); err != nil {
		t.Fatalf("UpsertClosingLine failed: %v", err)
	}

	// Second write replaces the first
	cl.ClosingPrice = -118
	cl.Point = floatPtr(-5.0)
	if err := s.UpsertClosingLine(ctx, cl); err != nil {
		t.Fatalf("second UpsertClosingLine failed: %v", err)
	}

	got, err := s.GetClosingLine(ctx, "evt1", "spreads", "pinnacle", "Boston Celtics")
	if err != nil {
		t.Fatalf("GetClosingLine failed: %v", err)
	}
	if got == nil {
		t.Fatal("expected closing line, got nil")
	}
	if got.ClosingPrice != -118 {
		t.Errorf("expected -118, got %d", got.ClosingPrice)
	}
	if got.Point == nil || *got.Point != -5.0 {
		t.Errorf("expected point -5.0, got %v", got.Point)
	}

	missing, err := s.GetClosingLine(ctx, "evt2", "spreads", "pinnacle", "Boston Celtics")
	if err != nil {
		t.Fatalf("GetClosingLine failed: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for missing closing line, got %+v", missing)
	}
}

func TestSaveOpportunityWithLegs(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	fair := -105
	opp := &models.Opportunity{
		OpportunityType: models.OpportunityTypeScalp,
		SportKey:        "basketball_nba",
		EventID:         "evt1",
		MarketKey:       "h2h",
		EdgePercent:     2.44,
		FairPrice:       &fair,
		DataAgeSeconds:  3,
		Legs: []models.OpportunityLeg{
			{BookKey: "draftkings", OutcomeName: "Boston Celtics", Price: 105, Stake: floatPtr(512.20)},
			{BookKey: "fanduel", OutcomeName: "Denver Nuggets", Price: 105, Stake: floatPtr(487.80)},
		},
	}

	if err := s.SaveOpportunity(ctx, opp); err != nil {
		t.Fatalf("SaveOpportunity failed: %v", err)
	}
	if opp.ID == 0 {
		t.Error("expected opportunity ID to be assigned")
	}

	opps, err := s.RecentOpportunities(ctx, models.OpportunityTypeScalp, time.Now().UTC().Add(-time.Minute), 10)
	if err != nil {
		t.Fatalf("RecentOpportunities failed: %v", err)
	}
	if len(opps) != 1 {
		t.Fatalf("expected 1 opportunity, got %d", len(opps))
	}
	if len(opps[0].Legs) != 2 {
		t.Fatalf("expected 2 legs, got %d", len(opps[0].Legs))
	}
	if opps[0].Legs[0].BookKey != "draftkings" {
		t.Errorf("expected first leg draftkings, got %s", opps[0].Legs[0].BookKey)
	}

	// Type filter excludes non-matching opportunities
	edges, err := s.RecentOpportunities(ctx, models.OpportunityTypeEdge, time.Now().UTC().Add(-time.Minute), 10)
	if err != nil {
		t.Fatalf("RecentOpportunities failed: %v", err)
	}
	if len(edges) != 0 {
		t.Errorf("expected 0 edge opportunities, got %d", len(edges))
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	defaults := models.Settings{
		PaperTrading: true, DefaultStake: 100, Bankroll: 1000,
		KellyFraction: 0.25, MinEdgePct: 2.0,
	}

	// Nothing persisted yet: defaults come back untouched
	got, err := s.GetSettings(ctx, defaults)
	if err != nil {
		t.Fatalf("GetSettings failed: %v", err)
	}
	if *got != defaults {
		t.Errorf("expected defaults %+v, got %+v", defaults, *got)
	}

	updated := models.Settings{
		PaperTrading: false, DefaultStake: 250, Bankroll: 5000,
		KellyFraction: 0.5, MinEdgePct: 3.5,
	}
	if err := s.UpdateSettings(ctx, updated); err != nil {
		t.Fatalf("UpdateSettings failed: %v", err)
	}

	got, err = s.GetSettings(ctx, defaults)
	if err != nil {
		t.Fatalf("GetSettings after update failed: %v", err)
	}
	if *got != updated {
		t.Errorf("expected %+v, got %+v", updated, *got)
	}
}
