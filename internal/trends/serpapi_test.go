package trends_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/trendscanner-api/internal/config"
	"github.com/trendscanner-api/internal/trends"
)

func newClient(serverURL string, limit int) *trends.SerpAPIClient {
	return trends.NewSerpAPIClient(config.SerpAPIConfig{
		APIKey:  "serp-key",
		BaseURL: serverURL,
		Geo:     "KR",
		Lang:    "ko",
		Limit:   limit,
		Timeout: 5 * time.Second,
	}, zerolog.Nop())
}

func TestSerpAPIClient_Fetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("engine") != "google_trends_trending_now" || q.Get("geo") != "KR" || q.Get("hl") != "ko" || q.Get("api_key") != "serp-key" {
			t.Errorf("Unexpected query %s", r.URL.RawQuery)
		}
		w.Write([]byte(`{"trending_searches":[
			{"query":"손흥민","search_volume":50000},
			{"query":"大谷翔平","search_volume":40000},
			{"query":"환율","search_volume":30000},
			{"query":"bitcoin","search_volume":20000},
			{"query":"날씨","search_volume":10000}
		]}`))
	}))
	defer server.Close()

	got, err := newClient(server.URL, 3).Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	want := []string{"손흥민", "환율", "bitcoin"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Fetch() = %v, want %v", got, want)
	}
}

func TestSerpAPIClient_Fetch_NoUsableKeywords(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"trending_searches":[{"query":"東京"},{"query":"2025"}]}`))
	}))
	defer server.Close()

	_, err := newClient(server.URL, 30).Fetch(context.Background())
	if !errors.Is(err, trends.ErrNoKeywords) {
		t.Errorf("Expected ErrNoKeywords, got %v", err)
	}
}

func TestSerpAPIClient_Fetch_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "http error", status: http.StatusUnauthorized, body: `{"error":"Invalid API key."}`},
		{name: "api error field", status: http.StatusOK, body: `{"error":"Google hasn't returned any results."}`},
		{name: "bad json", status: http.StatusOK, body: `not json`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			if _, err := newClient(server.URL, 30).Fetch(context.Background()); err == nil {
				t.Error("Expected error")
			}
		})
	}
}

func TestSerpAPIClient_Fetch_MissingKey(t *testing.T) {
	client := trends.NewSerpAPIClient(config.SerpAPIConfig{BaseURL: "http://unused"}, zerolog.Nop())
	if _, err := client.Fetch(context.Background()); err == nil {
		t.Error("Expected error when API key is missing")
	}
}
