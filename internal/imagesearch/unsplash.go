// Package imagesearch resolves one illustrative photo for a search query.
package imagesearch

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
)

var (
	// ErrNoResult is returned when the search yields no usable photo
	ErrNoResult = errors.New("no photo found")

	// ErrNoAccessKey is returned when no Unsplash access key is configured
	ErrNoAccessKey = errors.New("unsplash access key not configured")
)

// Searcher finds a display URL for a free-text query
type Searcher interface {
	Search(ctx context.Context, query string) (string, error)
}

// UnsplashClient is a Searcher backed by the Unsplash random photo endpoint
type UnsplashClient struct {
	httpClient *http.Client
	baseURL    string
	accessKey  string
	log        zerolog.Logger
}

type unsplashPhoto struct {
	ID   string `json:"id"`
	URLs struct {
		Raw     string `json:"raw"`
		Full    string `json:"full"`
		Regular string `json:"regular"`
		Small   string `json:"small"`
	} `json:"urls"`
}

// NewUnsplashClient creates an Unsplash client from configuration
func NewUnsplashClient(cfg config.UnsplashConfig, log zerolog.Logger) *UnsplashClient {
	return &UnsplashClient{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		accessKey:  cfg.AccessKey,
		log:        log.With().Str("client", "unsplash").Logger(),
	}
}

// Search asks for one random photo matching the query and returns its regular-size URL
func (c *UnsplashClient) Search(ctx context.Context, query string) (string, error) {
	if c.accessKey == "" {
		return "", ErrNoAccessKey
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("count", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/photos/random?"+params.Encode(), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Client-ID "+c.accessKey)
	req.Header.Set("Accept-Version", "v1")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("unsplash request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", ErrNoResult
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("unsplash returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	photo, err := firstPhoto(body)
	if err != nil {
		return "", err
	}
	if photo.URLs.Regular == "" {
		return "", ErrNoResult
	}

	c.log.Debug().Str("query", query).Str("photo_id", photo.ID).Msg("Photo resolved")
	return photo.URLs.Regular, nil
}

// firstPhoto accepts both the array form (count given) and the single object form
func firstPhoto(body []byte) (*unsplashPhoto, error) {
	trimmed := strings.TrimSpace(string(body))
	if strings.HasPrefix(trimmed, "[") {
		var photos []unsplashPhoto
		if err := json.Unmarshal(body, &photos); err != nil {
			return nil, fmt.Errorf("decode unsplash response: %w", err)
		}
		if len(photos) == 0 {
			return nil, ErrNoResult
		}
		return &photos[0], nil
	}

	var photo unsplashPhoto
	if err := json.Unmarshal(body, &photo); err != nil {
		return nil, fmt.Errorf("decode unsplash response: %w", err)
	}
	return &photo, nil
}
