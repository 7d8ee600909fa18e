// Package trends fetches currently trending search keywords.
package trends

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog"
	"github.com/trendscanner-api/internal/config"
	"github.com/trendscanner-api/internal/validation"
)

// ErrNoKeywords is returned when no usable trending keyword was found
var ErrNoKeywords = errors.New("no trending keywords found")

// Source provides trending keywords
type Source interface {
	Fetch(ctx context.Context) ([]string, error)
}

// SerpAPIClient is a Source backed by SerpAPI's Google Trends "trending now" engine
type SerpAPIClient struct {
	httpClient *http.Client
	cfg        config.SerpAPIConfig
	log        zerolog.Logger
}

type trendingNowResponse struct {
	Error            string `json:"error"`
	TrendingSearches []struct {
		Query        string `json:"query"`
		SearchVolume int    `json:"search_volume"`
	} `json:"trending_searches"`
}

// NewSerpAPIClient creates a SerpAPI client from configuration
func NewSerpAPIClient(cfg config.SerpAPIConfig, log zerolog.Logger) *SerpAPIClient {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &SerpAPIClient{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cfg:        cfg,
		log:        log.With().Str("client", "serpapi").Logger(),
	}
}

// Fetch returns the filtered trending keywords, most prominent first
func (c *SerpAPIClient) Fetch(ctx context.Context) ([]string, error) {
	if c.cfg.APIKey == "" {
		return nil, fmt.Errorf("SERPAPI_KEY is not configured")
	}

	params := url.Values{}
	params.Set("engine", "google_trends_trending_now")
	params.Set("geo", c.cfg.Geo)
	params.Set("hl", c.cfg.Lang)
	params.Set("api_key", c.cfg.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("serpapi request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("serpapi returned %d: %s", resp.StatusCode, truncate(string(body), 256))
	}

	var data trendingNowResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("decode serpapi response: %w", err)
	}
	if data.Error != "" {
		return nil, fmt.Errorf("serpapi error: %s", data.Error)
	}

	queries := make([]string, 0, len(data.TrendingSearches))
	for _, s := range data.TrendingSearches {
		queries = append(queries, s.Query)
	}

	keywords := validation.FilterTrendKeywords(queries, c.cfg.Limit)
	c.log.Info().
		Int("received", len(queries)).
		Int("kept", len(keywords)).
		Str("geo", c.cfg.Geo).
		Msg("Trending keywords fetched")

	if len(keywords) == 0 {
		return nil, ErrNoKeywords
	}
	return keywords, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
