package router

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// LUISConfig holds the settings of a LUIS v2 application.
type LUISConfig struct {
	AppID   string
	APIKey  string
	Host    string // e.g. westus.api.cognitive.microsoft.com, derived from Region when empty
	Region  string
	Staging bool
	Log     bool
	Timeout time.Duration
	Client  *http.Client
}

// Validate checks the configuration.
func (c *LUISConfig) Validate() error {
	if c.AppID == "" {
		return errors.New("LUIS app id is required")
	}
	if c.APIKey == "" {
		return errors.New("LUIS API key is required")
	}
	if c.Host == "" && c.Region == "" {
		return errors.New("LUIS host or region is required")
	}
	return nil
}

// LUISClient calls the LUIS v2 prediction endpoint.
type LUISClient struct {
	endpoint *url.URL
	cfg      LUISConfig
	client   *http.Client
}

// NewLUISClient creates a client for cfg.
func NewLUISClient(cfg LUISConfig) (*LUISClient, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	host := cfg.Host
	if host == "" {
		host = cfg.Region + ".api.cognitive.microsoft.com"
	}
	if !strings.Contains(host, "://") {
		host = "https://" + host
	}
	endpoint, err := url.Parse(strings.TrimSuffix(host, "/") + "/luis/v2.0/apps/" + url.PathEscape(cfg.AppID))
	if err != nil {
		return nil, errors.Wrap(err, "invalid LUIS host")
	}

	client := cfg.Client
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}

	return &LUISClient{endpoint: endpoint, cfg: cfg, client: client}, nil
}

// luisResponse is the v2 prediction payload.
type luisResponse struct {
	Query            string `json:"query"`
	TopScoringIntent *struct {
		Intent string  `json:"intent"`
		Score  float64 `json:"score"`
	} `json:"topScoringIntent"`
	Entities []struct {
		Entity     string  `json:"entity"`
		Type       string  `json:"type"`
		StartIndex int     `json:"startIndex"`
		EndIndex   int     `json:"endIndex"`
		Score      float64 `json:"score"`
	} `json:"entities"`
}

// Recognize sends utterance to LUIS. The culture is fixed by the LUIS app
// and only logged here.
func (c *LUISClient) Recognize(ctx context.Context, utterance, culture string) (*Recognition, error) {
	q := url.Values{}
	q.Set("q", utterance)
	q.Set("verbose", "true")
	q.Set("staging", strconv.FormatBool(c.cfg.Staging))
	q.Set("log", strconv.FormatBool(c.cfg.Log))
	q.Set("subscription-key", c.cfg.APIKey)

	u := *c.endpoint
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build LUIS request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("LUIS request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read LUIS response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("LUIS returned status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	var raw luisResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decode LUIS response: %w", err)
	}

	rec := &Recognition{Query: raw.Query, TopIntent: IntentNone, Provider: ProviderLUIS}
	if raw.TopScoringIntent != nil {
		rec.TopIntent = Intent(raw.TopScoringIntent.Intent)
		rec.Score = raw.TopScoringIntent.Score
	}
	rec.Entities = make([]Entity, 0, len(raw.Entities))
	for _, e := range raw.Entities {
		rec.Entities = append(rec.Entities, Entity{
			Type:       e.Type,
			Text:       e.Entity,
			StartIndex: e.StartIndex,
			EndIndex:   e.EndIndex,
			Score:      e.Score,
		})
	}

	slog.Debug("LUIS recognition completed",
		"input", truncate(utterance, 50),
		"culture", culture,
		"intent", rec.TopIntent,
		"entities", len(rec.Entities),
		"latency_ms", time.Since(start).Milliseconds())

	return rec, nil
}

// truncate truncates a string to maxLen bytes.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

var _ Recognizer = (*LUISClient)(nil)
