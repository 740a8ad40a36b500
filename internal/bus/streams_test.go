package bus_test

import (
	"testing"

	"github.com/BTheCoderr/theRounders/internal/bus"
)

func TestStreamKeys(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"raw odds", bus.RawOddsStream("basketball_nba"), "odds.raw.basketball_nba"},
		{"normalized odds", bus.NormalizedOddsStream("americanfootball_nfl"), "odds.normalized.americanfootball_nfl"},
		{"opportunities", bus.OpportunitiesStream, "opportunities.detected"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, tt.got)
			}
		})
	}
}
