// Package oddsapi implements a client for The Odds API v4, the vendor
// feed the dashboard aggregates odds and scores from.
package oddsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/BTheCoderr/theRounders/pkg/models"
)

const defaultBaseURL = "https://api.the-odds-api.com/v4"

// RateLimits tracks The Odds API quota headers from the last response
type RateLimits struct {
	RequestsRemaining int
	RequestsUsed      int
}

// Client handles The Odds API requests
type Client struct {
	apiKey     string
	baseURL    string
	regions    string
	httpClient *http.Client

	// Enabled bookmakers, keyed by normalized book key
	enabledBooks map[string]bool

	// Minimum spacing between requests (monthly quota is small)
	minInterval time.Duration
	lastRequest time.Time
	mu          sync.Mutex

	limits   RateLimits
	limitsMu sync.RWMutex
}

// New creates a new Odds API client. enabledBooks may hold either API book
// keys ("draftkings") or display names ("DraftKings"); an empty list
// disables filtering.
func New(apiKey, baseURL, regions string, enabledBooks []string, minIntervalSeconds int) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	books := make(map[string]bool, len(enabledBooks))
	for _, book := range enabledBooks {
		books[NormalizeBookKey(book)] = true
	}

	return &Client{
		apiKey:       apiKey,
		baseURL:      baseURL,
		regions:      regions,
		enabledBooks: books,
		minInterval:  time.Duration(minIntervalSeconds) * time.Second,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// NormalizeBookKey lowercases a book name and strips spaces so display
// names match The Odds API bookmaker keys ("PointsBet" → "pointsbet").
func NormalizeBookKey(book string) string {
	return strings.ToLower(strings.ReplaceAll(book, " ", ""))
}

// Sport is an available sport from the vendor
type Sport struct {
	Key    string `json:"key"`
	Group  string `json:"group"`
	Title  string `json:"title"`
	Active bool   `json:"active"`
}

// vendor response shapes

type apiEvent struct {
	ID           string      `json:"id"`
	SportKey     string      `json:"sport_key"`
	CommenceTime time.Time   `json:"commence_time"`
	HomeTeam     string      `json:"home_team"`
	AwayTeam     string      `json:"away_team"`
	Bookmakers   []bookmaker `json:"bookmakers"`
}

type bookmaker struct {
	Key        string    `json:"key"`
	Title      string    `json:"title"`
	LastUpdate time.Time `json:"last_update"`
	Markets    []market  `json:"markets"`
}

type market struct {
	Key        string    `json:"key"`
	LastUpdate time.Time `json:"last_update"`
	Outcomes   []outcome `json:"outcomes"`
}

type outcome struct {
	Name  string   `json:"name"`
	Price float64  `json:"price"` // American odds (integer valued)
	Point *float64 `json:"point,omitempty"`
}

// EventScore is a score entry from the vendor's scores endpoint
type EventScore struct {
	ID        string `json:"id"`
	SportKey  string `json:"sport_key"`
	HomeTeam  string `json:"home_team"`
	AwayTeam  string `json:"away_team"`
	Completed bool   `json:"completed"`
	Scores    []struct {
		Name  string `json:"name"`
		Score string `json:"score"`
	} `json:"scores"`
}

// FetchResult contains both events and odds from a fetch operation
type FetchResult struct {
	Events []models.Event
	Odds   []models.RawOdds
}

// GetSports lists sports available from the vendor
func (c *Client) GetSports(ctx context.Context) ([]Sport, error) {
	endpoint := fmt.Sprintf("%s/sports/?apiKey=%s", c.baseURL, c.apiKey)

	var sports []Sport
	if err := c.get(ctx, endpoint, &sports); err != nil {
		return nil, fmt.Errorf("fetching sports: %w", err)
	}

	return sports, nil
}

// FetchOdds fetches current odds for a sport across the enabled books and
// flattens the vendor's nested response into events plus raw odds rows.
func (c *Client) FetchOdds(ctx context.Context, sportKey string, markets []string) (*FetchResult, error) {
	params := url.Values{}
	params.Set("apiKey", c.apiKey)
	params.Set("regions", c.regions)
	params.Set("markets", strings.Join(markets, ","))
	params.Set("oddsFormat", "american")

	endpoint := fmt.Sprintf("%s/sports/%s/odds/?%s", c.baseURL, sportKey, params.Encode())

	var events []apiEvent
	if err := c.get(ctx, endpoint, &events); err != nil {
		return nil, fmt.Errorf("fetching odds for %s: %w", sportKey, err)
	}

	receivedAt := time.Now().UTC()
	result := &FetchResult{}

	for _, event := range events {
		status := "upcoming"
		if !event.CommenceTime.After(receivedAt) {
			status = "live"
		}

		result.Events = append(result.Events, models.Event{
			EventID:      event.ID,
			SportKey:     event.SportKey,
			HomeTeam:     event.HomeTeam,
			AwayTeam:     event.AwayTeam,
			CommenceTime: event.CommenceTime,
			EventStatus:  status,
		})

		for _, book := range event.Bookmakers {
			if !c.bookEnabled(book.Key) {
				continue
			}

			for _, mkt := range book.Markets {
				for _, out := range mkt.Outcomes {
					result.Odds = append(result.Odds, models.RawOdds{
						EventID:          event.ID,
						SportKey:         event.SportKey,
						MarketKey:        mkt.Key,
						BookKey:          book.Key,
						OutcomeName:      out.Name,
						Price:            int(out.Price),
						Point:            out.Point,
						VendorLastUpdate: mkt.LastUpdate,
						ReceivedAt:       receivedAt,
					})
				}
			}
		}
	}

	return result, nil
}

// FetchScores fetches recent scores for a sport. eventIDs may be empty to
// fetch everything within daysFrom.
func (c *Client) FetchScores(ctx context.Context, sportKey string, daysFrom int, eventIDs []string) ([]EventScore, error) {
	params := url.Values{}
	params.Set("apiKey", c.apiKey)
	params.Set("daysFrom", strconv.Itoa(daysFrom))
	if len(eventIDs) > 0 {
		params.Set("eventIds", strings.Join(eventIDs, ","))
	}

	endpoint := fmt.Sprintf("%s/sports/%s/scores/?%s", c.baseURL, sportKey, params.Encode())

	var scores []EventScore
	if err := c.get(ctx, endpoint, &scores); err != nil {
		return nil, fmt.Errorf("fetching scores for %s: %w", sportKey, err)
	}

	return scores, nil
}

// Limits returns quota usage reported by the vendor's last response
func (c *Client) Limits() RateLimits {
	c.limitsMu.RLock()
	defer c.limitsMu.RUnlock()
	return c.limits
}

func (c *Client) bookEnabled(bookKey string) bool {
	if len(c.enabledBooks) == 0 {
		return true
	}
	return c.enabledBooks[NormalizeBookKey(bookKey)]
}

// get performs a rate-limited GET and decodes the JSON response into out
func (c *Client) get(ctx context.Context, endpoint string, out interface{}) error {
	c.throttle()

	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("making request: %w", err)
	}
	defer resp.Body.Close()

	c.recordLimits(resp)

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("odds API error: status=%d, body=%s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}

	return nil
}

// throttle enforces the minimum interval between vendor requests
func (c *Client) throttle() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.minInterval <= 0 {
		return
	}

	elapsed := time.Since(c.lastRequest)
	if elapsed < c.minInterval {
		time.Sleep(c.minInterval - elapsed)
	}
	c.lastRequest = time.Now()
}

func (c *Client) recordLimits(resp *http.Response) {
	remaining, errR := strconv.Atoi(resp.Header.Get("x-requests-remaining"))
	used, errU := strconv.Atoi(resp.Header.Get("x-requests-used"))
	if errR != nil && errU != nil {
		return
	}

	c.limitsMu.Lock()
	defer c.limitsMu.Unlock()
	if errR == nil {
		c.limits.RequestsRemaining = remaining
	}
	if errU == nil {
		c.limits.RequestsUsed = used
	}
}
