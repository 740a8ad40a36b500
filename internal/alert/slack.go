package alert

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/BTheCoderr/theRounders/pkg/models"
)

// SlackNotifier sends alerts to a Slack incoming webhook
type SlackNotifier struct {
	webhookURL string
	httpClient *http.Client
}

// NewSlackNotifier creates a notifier for the given webhook URL
func NewSlackNotifier(webhookURL string) *SlackNotifier {
	return &SlackNotifier{
		webhookURL: webhookURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// SendAlert posts a formatted opportunity alert to Slack
func (s *SlackNotifier) SendAlert(ctx context.Context, opp models.Opportunity) error {
	startTime := time.Now()

	if err := s.post(ctx, formatMessage(opp)); err != nil {
		return err
	}

	fmt.Printf("✓ Slack alert sent: opportunity_id=%d latency=%dms\n",
		opp.ID, time.Since(startTime).Milliseconds())
	return nil
}

// SendStartup announces that alerting is live
func (s *SlackNotifier) SendStartup(ctx context.Context, minEdgePercent float64, maxDataAgeSeconds, alertsPerMinute int) error {
	if s.webhookURL == "" {
		return fmt.Errorf("no webhook URL configured")
	}

	message := fmt.Sprintf(
		"🚀 *Betting Alerts Active*\n\n"+
			"✅ Monitoring detected opportunities\n"+
			"📊 Thresholds:\n"+
			"   • Min Edge: %.1f%%\n"+
			"   • Max Data Age: %ds\n"+
			"   • Rate Limit: %d alerts/min\n\n"+
			"_Started: %s_",
		minEdgePercent, maxDataAgeSeconds, alertsPerMinute,
		time.Now().Format("2006-01-02 15:04:05 MST"),
	)

	return s.post(ctx, message)
}

func (s *SlackNotifier) post(ctx context.Context, message string) error {
	payload, err := json.Marshal(map[string]interface{}{"text": message})
	if err != nil {
		return fmt.Errorf("failed to marshal Slack payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewBuffer(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send Slack alert: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("Slack webhook returned status %d", resp.StatusCode)
	}

	return nil
}

func formatMessage(opp models.Opportunity) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%s *%s DETECTED* | Edge: %.2f%%\n\n",
		emojiForType(opp.OpportunityType),
		strings.ToUpper(string(opp.OpportunityType)), opp.EdgePercent))

	sb.WriteString(fmt.Sprintf("*Event:* %s\n", opp.EventID))
	sb.WriteString(fmt.Sprintf("*Market:* %s\n", opp.MarketKey))
	sb.WriteString(fmt.Sprintf("*Age:* %s %ds\n\n", ageBadge(opp.DataAgeSeconds), opp.DataAgeSeconds))

	for i, leg := range opp.Legs {
		sb.WriteString(fmt.Sprintf("*Leg %d:* %s | %s @ %s",
			i+1, leg.BookKey, leg.OutcomeName, formatOdds(leg.Price)))
		if leg.Point != nil {
			sb.WriteString(fmt.Sprintf(" (%.1f)", *leg.Point))
		}
		if leg.LegEdgePercent != nil {
			sb.WriteString(fmt.Sprintf(" | Edge: %.2f%%", *leg.LegEdgePercent))
		}
		sb.WriteString("\n")
	}

	if opp.FairPrice != nil {
		sb.WriteString(fmt.Sprintf("\n*Fair Price:* %s", formatOdds(*opp.FairPrice)))
	}
	if opp.SharpConfidence != nil {
		sb.WriteString(fmt.Sprintf("\n*Sharp Confidence:* %.0f/100", *opp.SharpConfidence))
	}

	sb.WriteString(fmt.Sprintf("\n\n_Detected: %s | ID: %d_",
		opp.DetectedAt.Format("15:04:05"), opp.ID))

	return sb.String()
}

func emojiForType(oppType models.OpportunityType) string {
	switch oppType {
	case models.OpportunityTypeEdge:
		return "💰"
	case models.OpportunityTypeMiddle:
		return "🎯"
	case models.OpportunityTypeScalp:
		return "⚡"
	case models.OpportunityTypeSteam:
		return "🔥"
	default:
		return "📊"
	}
}

func ageBadge(ageSeconds int) string {
	switch {
	case ageSeconds < 5:
		return "🟢"
	case ageSeconds < 10:
		return "🟡"
	default:
		return "🔴"
	}
}

func formatOdds(americanOdds int) string {
	if americanOdds > 0 {
		return fmt.Sprintf("+%d", americanOdds)
	}
	return fmt.Sprintf("%d", americanOdds)
}
