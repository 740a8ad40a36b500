package ratings_test

import (
	"math"
	"testing"

	"github.com/BTheCoderr/theRounders/internal/ratings"
	"github.com/BTheCoderr/theRounders/pkg/models"
)

func TestExpectedScore(t *testing.T) {
	tests := []struct {
		name    string
		ratingA float64
		ratingB float64
		want    float64
	}{
		{"equal ratings", 1500, 1500, 0.5},
		{"100 point favorite", 1600, 1500, 0.6401},
		{"400 point favorite", 1900, 1500, 0.9091},
		{"underdog", 1500, 1600, 0.3599},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ratings.ExpectedScore(tt.ratingA, tt.ratingB)
			if math.Abs(got-tt.want) > 0.001 {
				t.Errorf("expected %.4f, got %.4f", tt.want, got)
			}
		})
	}
}

func TestEloUpdate(t *testing.T) {
	elo := ratings.NewElo("basketball_nba")

	result := models.GameResult{
		SportKey: "basketball_nba",
		HomeTeam: "Boston Celtics", AwayTeam: "Denver Nuggets",
		HomeScore: 110, AwayScore: 100,
	}

	home, away := elo.Update(result)

	// Even matchup: winner gains K/2, loser drops K/2
	if math.Abs(home.Rating-1516) > 0.001 {
		t.Errorf("expected home rating 1516, got %.2f", home.Rating)
	}
	if math.Abs(away.Rating-1484) > 0.001 {
		t.Errorf("expected away rating 1484, got %.2f", away.Rating)
	}
	if home.Games != 1 || away.Games != 1 {
		t.Errorf("expected 1 game each, got %d and %d", home.Games, away.Games)
	}

	// Rating points are zero sum
	if math.Abs((home.Rating-1500)+(away.Rating-1500)) > 0.0001 {
		t.Error("rating changes must sum to zero")
	}
}

func TestEloUpdateUpsetMovesMore(t *testing.T) {
	elo := ratings.NewElo("basketball_nba")
	elo.Seed([]models.TeamRating{
		{SportKey: "basketball_nba", Team: "Favorites", Rating: 1700},
		{SportKey: "basketball_nba", Team: "Underdogs", Rating: 1400},
	})

	// Upset: the underdog wins on the road
	_, away := elo.Update(models.GameResult{
		SportKey: "basketball_nba",
		HomeTeam: "Favorites", AwayTeam: "Underdogs",
		HomeScore: 95, AwayScore: 100,
	})

	gain := away.Rating - 1400
	// Expected score for the dog was ~0.15, so the gain approaches K
	if gain < 16 {
		t.Errorf("upset should move ratings more than an even win, gained %.2f", gain)
	}
}

func TestUnseenTeamStartsAtInitial(t *testing.T) {
	elo := ratings.NewElo("basketball_nba")
	if got := elo.Rating("Nobody"); got != ratings.InitialRating {
		t.Errorf("expected %.0f for unseen team, got %.2f", ratings.InitialRating, got)
	}
}

func TestPredictSpread(t *testing.T) {
	elo := ratings.NewElo("basketball_nba")
	elo.Seed([]models.TeamRating{
		{SportKey: "basketball_nba", Team: "Boston Celtics", Rating: 1600},
		{SportKey: "basketball_nba", Team: "Denver Nuggets", Rating: 1500},
	})

	prediction := elo.PredictSpread("Boston Celtics", "Denver Nuggets")

	// 100 rating points = 4 spread points, plus 3.5 home advantage
	if math.Abs(prediction.PredictedSpread-7.5) > 0.001 {
		t.Errorf("expected predicted margin 7.5, got %.2f", prediction.PredictedSpread)
	}
	if prediction.HomeWinProb <= 0.5 || prediction.HomeWinProb >= 1 {
		t.Errorf("expected home win prob in (0.5, 1), got %.4f", prediction.HomeWinProb)
	}
}

func TestPredictSpreadEvenTeams(t *testing.T) {
	elo := ratings.NewElo("basketball_nba")
	prediction := elo.PredictSpread("Home", "Away")

	// Only home advantage separates even teams
	if math.Abs(prediction.PredictedSpread-3.5) > 0.001 {
		t.Errorf("expected margin 3.5, got %.2f", prediction.PredictedSpread)
	}
}

func TestHybridWinProbability(t *testing.T) {
	// Zero margin and even Elo means a coin flip
	if got := ratings.HybridWinProbability(0, 0.5); math.Abs(got-0.5) > 0.0001 {
		t.Errorf("expected 0.5, got %.4f", got)
	}

	// Big favorite approaches certainty but stays bounded
	big := ratings.HybridWinProbability(20, 0.95)
	if big < 0.9 || big >= 1 {
		t.Errorf("expected prob in [0.9, 1), got %.4f", big)
	}
}

func TestShouldBet(t *testing.T) {
	tests := []struct {
		name       string
		edge       float64
		lineMove   float64
		confidence float64
		want       bool
	}{
		{"all criteria met", 0.05, 1.0, 70, true},
		{"edge too small", 0.02, 1.0, 70, false},
		{"no confirming move", 0.05, 0.25, 70, false},
		{"sharps disagree", 0.05, 1.0, 50, false},
		{"negative move still confirms", 0.05, -1.0, 70, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ratings.ShouldBet(tt.edge, tt.lineMove, tt.confidence); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}
