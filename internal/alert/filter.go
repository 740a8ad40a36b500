// Package alert turns detected opportunities into Slack notifications,
// with threshold filtering, Redis-backed dedup, and rate limiting.
package alert

import (
	"fmt"

	"github.com/BTheCoderr/theRounders/pkg/models"
)

// Filter screens opportunities against alert thresholds
type Filter struct {
	minEdgePercent    float64
	maxDataAgeSeconds int
}

// NewFilter creates a filter with the given thresholds
func NewFilter(minEdgePercent float64, maxDataAgeSeconds int) *Filter {
	return &Filter{
		minEdgePercent:    minEdgePercent,
		maxDataAgeSeconds: maxDataAgeSeconds,
	}
}

// ShouldAlert returns whether the opportunity clears the thresholds, and a
// reason when it doesn't
func (f *Filter) ShouldAlert(opp models.Opportunity) (bool, string) {
	if opp.EdgePercent < f.minEdgePercent {
		return false, fmt.Sprintf("edge %.2f%% below threshold %.2f%%", opp.EdgePercent, f.minEdgePercent)
	}

	if opp.DataAgeSeconds > f.maxDataAgeSeconds {
		return false, fmt.Sprintf("data age %ds exceeds threshold %ds", opp.DataAgeSeconds, f.maxDataAgeSeconds)
	}

	return true, ""
}
