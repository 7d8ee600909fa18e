package imagesearch_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/trendscanner-api/internal/config"
	"github.com/trendscanner-api/internal/imagesearch"
)

func newClient(serverURL, key string) *imagesearch.UnsplashClient {
	return imagesearch.NewUnsplashClient(config.UnsplashConfig{
		AccessKey: key,
		BaseURL:   serverURL,
		Timeout:   5 * time.Second,
	}, zerolog.Nop())
}

func TestUnsplashClient_Search(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/photos/random" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("query") != "seoul skyline" || r.URL.Query().Get("count") != "1" {
			t.Errorf("Unexpected query %s", r.URL.RawQuery)
		}
		if r.Header.Get("Authorization") != "Client-ID key-123" {
			t.Errorf("Unexpected authorization header %q", r.Header.Get("Authorization"))
		}
		w.Write([]byte(`[{"id":"abc","urls":{"regular":"https://images.unsplash.com/photo-abc?w=1080"}}]`))
	}))
	defer server.Close()

	got, err := newClient(server.URL, "key-123").Search(context.Background(), "seoul skyline")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if got != "https://images.unsplash.com/photo-abc?w=1080" {
		t.Errorf("Unexpected URL %q", got)
	}
}

func TestUnsplashClient_Search_SingleObject(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"one","urls":{"regular":"https://images.unsplash.com/one"}}`))
	}))
	defer server.Close()

	got, err := newClient(server.URL, "k").Search(context.Background(), "q")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if got != "https://images.unsplash.com/one" {
		t.Errorf("Unexpected URL %q", got)
	}
}

func TestUnsplashClient_Search_Failures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{name: "empty array", status: http.StatusOK, body: `[]`, wantErr: imagesearch.ErrNoResult},
		{name: "not found", status: http.StatusNotFound, body: `{"errors":["No photos found."]}`, wantErr: imagesearch.ErrNoResult},
		{name: "missing url", status: http.StatusOK, body: `[{"id":"x","urls":{}}]`, wantErr: imagesearch.ErrNoResult},
		{name: "rate limited", status: http.StatusForbidden, body: `Rate Limit Exceeded`},
		{name: "garbage", status: http.StatusOK, body: `<html>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := newClient(server.URL, "k").Search(context.Background(), "q")
			if err == nil {
				t.Fatal("Expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestUnsplashClient_Search_NoAccessKey(t *testing.T) {
	if _, err := newClient("http://unused", "").Search(context.Background(), "q"); !errors.Is(err, imagesearch.ErrNoAccessKey) {
		t.Errorf("Expected ErrNoAccessKey, got %v", err)
	}
}
