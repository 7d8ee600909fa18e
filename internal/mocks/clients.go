package mocks

import (
	"context"
	"sync"

	"github.com/trendscanner-api/internal/imagesearch"
	"github.com/trendscanner-api/internal/llm"
	"github.com/trendscanner-api/internal/trends"
)

// Verify interface compliance
var (
	_ llm.Generator        = (*MockGenerator)(nil)
	_ imagesearch.Searcher = (*MockImageSearcher)(nil)
	_ trends.Source        = (*MockTrendSource)(nil)
)

// MockGenerator returns canned completions per keyword
type MockGenerator struct {
	mu        sync.Mutex
	Responses map[string]string
	Errors    map[string]error
	// Default is returned for keywords without a canned response
	Default string
	// GenerateFunc, when set, overrides the canned responses
	GenerateFunc func(ctx context.Context, keyword string) (string, error)
	Calls        []string
}

func NewMockGenerator() *MockGenerator {
	return &MockGenerator{
		Responses: make(map[string]string),
		Errors:    make(map[string]error),
	}
}

func (m *MockGenerator) Generate(ctx context.Context, keyword string) (string, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, keyword)
	fn := m.GenerateFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, keyword)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.Errors[keyword]; ok {
		return "", err
	}
	if resp, ok := m.Responses[keyword]; ok {
		return resp, nil
	}
	return m.Default, nil
}

// CallCount returns how many completions were requested
func (m *MockGenerator) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// MockImageSearcher returns a fixed URL or error
type MockImageSearcher struct {
	mu      sync.Mutex
	URL     string
	Err     error
	Queries []string
}

func (m *MockImageSearcher) Search(ctx context.Context, query string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Queries = append(m.Queries, query)
	if m.Err != nil {
		return "", m.Err
	}
	return m.URL, nil
}

// MockTrendSource returns a fixed keyword list or error
type MockTrendSource struct {
	mu       sync.Mutex
	Keywords []string
	Err      error
	calls    int
}

func (m *MockTrendSource) Fetch(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Keywords, nil
}

// CallCount returns how many times Fetch was called
func (m *MockTrendSource) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
