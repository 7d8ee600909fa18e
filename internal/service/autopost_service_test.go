package service_test

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/trendscanner-api/internal/imagesearch"
	"github.com/trendscanner-api/internal/metrics"
	"github.com/trendscanner-api/internal/mocks"
	"github.com/trendscanner-api/internal/models"
	"github.com/trendscanner-api/internal/service"
)

type testHarness struct {
	autoPost    service.AutoPostService
	keywordRepo *mocks.MockKeywordRepository
	postRepo    *mocks.MockPostRepository
	runRepo     *mocks.MockRunRepository
	generator   *mocks.MockGenerator
	images      *mocks.MockImageSearcher
	registry    *prometheus.Registry
}

// keepOrder leaves the candidates in repository order so selection is deterministic
func keepOrder([]*models.Keyword) {}

func newTestHarness(t *testing.T, keywords ...string) *testHarness {
	t.Helper()

	repos, keywordRepo, postRepo, runRepo := mocks.NewMockRepositories()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for i, text := range keywords {
		// Newer keywords first in ListUnused, so the first argument is selected first
		keywordRepo.Add(&models.Keyword{
			ID:        fmt.Sprintf("kw-%d", i),
			Keyword:   text,
			CreatedAt: base.Add(-time.Duration(i) * time.Minute),
		})
	}

	generator := mocks.NewMockGenerator()
	images := &mocks.MockImageSearcher{URL: "https://images.unsplash.com/photo-1"}
	registry := prometheus.NewRegistry()

	svc := service.NewAutoPostService(repos, generator, images, metrics.New(registry), zerolog.Nop(),
		service.WithShuffle(keepOrder),
	)

	return &testHarness{
		autoPost:    svc,
		keywordRepo: keywordRepo,
		postRepo:    postRepo,
		runRepo:     runRepo,
		generator:   generator,
		images:      images,
		registry:    registry,
	}
}

func draftJSON(title, content string, hashtags ...string) string {
	tags := "[]"
	if len(hashtags) > 0 {
		tags = `["` + hashtags[0]
		for _, h := range hashtags[1:] {
			tags += `","` + h
		}
		tags += `"]`
	}
	return fmt.Sprintf(`Here is your post:
{"title": %q, "content": %q, "hashtags": %s, "imageQuery": "city skyline"}`, title, content, tags)
}

func (h *testHarness) keyword(t *testing.T, text string) *models.Keyword {
	t.Helper()
	for _, k := range h.keywordRepo.Keywords {
		if k.Keyword == text {
			return k
		}
	}
	t.Fatalf("keyword %q not found", text)
	return nil
}

func TestAutoPost_InvalidCount(t *testing.T) {
	for _, n := range []int{-1, 0, 6, 100} {
		t.Run(fmt.Sprintf("count_%d", n), func(t *testing.T) {
			h := newTestHarness(t, "a", "b", "c", "d", "e", "f")

			_, err := h.autoPost.Generate(context.Background(), n)
			if !errors.Is(err, service.ErrInvalidKeywordCount) {
				t.Fatalf("Expected ErrInvalidKeywordCount, got %v", err)
			}
			if h.postRepo.CreateCalls != 0 || h.keywordRepo.MarkUsedCalls != 0 {
				t.Error("No store mutation expected")
			}
			if len(h.runRepo.Runs) != 0 {
				t.Error("No run should be recorded")
			}
			if h.generator.CallCount() != 0 {
				t.Error("Generator should not be called")
			}
		})
	}
}

func TestAutoPost_InsufficientKeywords(t *testing.T) {
	h := newTestHarness(t, "only-one", "only-two")

	_, err := h.autoPost.Generate(context.Background(), 3)
	if !errors.Is(err, service.ErrInsufficientKeywords) {
		t.Fatalf("Expected ErrInsufficientKeywords, got %v", err)
	}
	if h.postRepo.CreateCalls != 0 || h.keywordRepo.MarkUsedCalls != 0 {
		t.Error("No store mutation expected")
	}
	if len(h.runRepo.Runs) != 0 {
		t.Error("No run should be recorded")
	}
}

func TestAutoPost_UsedKeywordsAreNotCandidates(t *testing.T) {
	h := newTestHarness(t, "fresh")
	h.keywordRepo.Add(&models.Keyword{ID: "old", Keyword: "stale", Used: true})

	_, err := h.autoPost.Generate(context.Background(), 2)
	if !errors.Is(err, service.ErrInsufficientKeywords) {
		t.Fatalf("Expected ErrInsufficientKeywords, got %v", err)
	}
}

func TestAutoPost_SingleKeyword(t *testing.T) {
	h := newTestHarness(t, "서울 날씨")
	h.generator.Default = draftJSON("서울 날씨 총정리", "## 오늘의 날씨\n맑음", "날씨", "서울")

	result, err := h.autoPost.Generate(context.Background(), 1)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	posts := result.Posts()
	if len(posts) != 1 {
		t.Fatalf("Expected 1 post, got %d", len(posts))
	}
	if len(h.postRepo.Posts) != 1 {
		t.Fatalf("Expected 1 stored post, got %d", len(h.postRepo.Posts))
	}

	post := h.postRepo.Posts[posts[0].ID]
	if post.Title != "서울 날씨 총정리" {
		t.Errorf("Unexpected title %q", post.Title)
	}
	if post.Slug != "서울-날씨-총정리" {
		t.Errorf("Unexpected slug %q", post.Slug)
	}
	if got := fmt.Sprint(post.Tags); got != "[날씨 서울]" {
		t.Errorf("Expected draft tags, got %s", got)
	}
	if !post.Metadata.AutoGenerated || len(post.Metadata.Keywords) != 1 || post.Metadata.Keywords[0] != "서울 날씨" {
		t.Errorf("Unexpected metadata %+v", post.Metadata)
	}
	if post.Views != 0 || post.Likes != 0 {
		t.Error("New post should start with zero views and likes")
	}
	if post.ImageURL != "https://images.unsplash.com/photo-1" {
		t.Errorf("Unexpected image URL %q", post.ImageURL)
	}
	if len(h.images.Queries) != 1 || h.images.Queries[0] != "city skyline" {
		t.Errorf("Expected image query from draft, got %v", h.images.Queries)
	}

	kw := h.keyword(t, "서울 날씨")
	if !kw.Used || kw.UsedAt == nil {
		t.Error("Keyword should be marked used")
	}

	run := h.runRepo.Runs[result.RunID]
	if run == nil {
		t.Fatal("Run should be recorded")
	}
	if run.Status != models.RunStatusCompleted || run.Succeeded != 1 || run.Failed != 0 {
		t.Errorf("Unexpected run %+v", run)
	}
}

func TestAutoPost_TagsFallBackToKeyword(t *testing.T) {
	h := newTestHarness(t, "올림픽")
	h.generator.Default = `{"title": "올림픽 소식", "content": "본문"}`

	result, err := h.autoPost.Generate(context.Background(), 1)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	tags := result.Posts()[0].Tags
	if len(tags) != 1 || tags[0] != "올림픽" {
		t.Errorf("Expected [올림픽], got %v", tags)
	}
	// No imageQuery, so the title is searched
	if len(h.images.Queries) != 1 || h.images.Queries[0] != "올림픽 소식" {
		t.Errorf("Expected title as image query, got %v", h.images.Queries)
	}
}

func TestAutoPost_ContentIsSanitized(t *testing.T) {
	h := newTestHarness(t, "kpop")
	h.generator.Default = draftJSON("K-pop news",
		"Intro ![cover](https://x.com/a.png) text https://cdn.example.com/b.JPG end")

	result, err := h.autoPost.Generate(context.Background(), 1)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	content := result.Posts()[0].Content
	if content != "Intro  text  end" {
		t.Errorf("Unexpected sanitized content %q", content)
	}
}

func TestAutoPost_UnparsableDraftIsSkipped(t *testing.T) {
	h := newTestHarness(t, "first", "second")
	h.generator.Responses["first"] = "Sorry, I cannot help with that."
	h.generator.Responses["second"] = draftJSON("Second title", "Second body")

	result, err := h.autoPost.Generate(context.Background(), 2)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if got := len(result.Posts()); got != 1 {
		t.Fatalf("Expected count 1, got %d", got)
	}
	if len(h.postRepo.Posts) != 1 {
		t.Errorf("Expected exactly 1 post created, got %d", len(h.postRepo.Posts))
	}
	if h.keyword(t, "first").Used {
		t.Error("Failed keyword should remain unused")
	}
	if !h.keyword(t, "second").Used {
		t.Error("Successful keyword should be used")
	}

	skipped := result.Skipped()
	if len(skipped) != 1 || skipped[0].Skip != models.SkipReasonDraftInvalid || skipped[0].Keyword != "first" {
		t.Errorf("Unexpected skipped outcomes %+v", skipped)
	}

	runErrors := h.runRepo.Errors[result.RunID]
	if len(runErrors) != 1 || runErrors[0].Reason != models.SkipReasonDraftInvalid {
		t.Errorf("Expected one draft_invalid run error, got %+v", runErrors)
	}
	if got := metricValue(t, h.registry, "trendscanner_autopost_keywords_total", "draft_invalid"); got != 1 {
		t.Errorf("Expected draft_invalid metric 1, got %v", got)
	}
}

func TestAutoPost_ImageFailureIsNotFatal(t *testing.T) {
	tests := []struct {
		name   string
		url    string
		err    error
		nilSvc bool
	}{
		{name: "error", err: errors.New("unsplash down")},
		{name: "no result", err: imagesearch.ErrNoResult},
		{name: "empty url", url: ""},
		{name: "no searcher", nilSvc: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repos, keywordRepo, postRepo, _ := mocks.NewMockRepositories()
			keywordRepo.Add(&models.Keyword{ID: "k1", Keyword: "news"})
			generator := mocks.NewMockGenerator()
			generator.Default = draftJSON("News", "Body")

			var images imagesearch.Searcher
			if !tt.nilSvc {
				images = &mocks.MockImageSearcher{URL: tt.url, Err: tt.err}
			}
			svc := service.NewAutoPostService(repos, generator, images, nil, zerolog.Nop())

			result, err := svc.Generate(context.Background(), 1)
			if err != nil {
				t.Fatalf("Generate failed: %v", err)
			}
			if len(postRepo.Posts) != 1 {
				t.Fatalf("Expected post to be created")
			}
			if url := result.Posts()[0].ImageURL; url != "" {
				t.Errorf("Expected empty image URL, got %q", url)
			}
			if !keywordRepo.Keywords["k1"].Used {
				t.Error("Keyword should be marked used")
			}
		})
	}
}

func TestAutoPost_TwoOfThree(t *testing.T) {
	h := newTestHarness(t, "alpha", "beta", "gamma")
	h.generator.Default = draftJSON("A title", "A body")

	result, err := h.autoPost.Generate(context.Background(), 2)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if got := len(result.Posts()); got != 2 {
		t.Errorf("Expected count 2, got %d", got)
	}
	if len(h.postRepo.Posts) != 2 {
		t.Errorf("Expected 2 posts, got %d", len(h.postRepo.Posts))
	}
	if used := h.keywordRepo.UsedCount(); used != 2 {
		t.Errorf("Expected 2 used keywords, got %d", used)
	}
	_, unused, _ := h.keywordRepo.Count(context.Background())
	if unused != 1 {
		t.Errorf("Expected 1 unused keyword, got %d", unused)
	}
}

func TestAutoPost_RandomSelectionPicksDistinctKeywords(t *testing.T) {
	repos, keywordRepo, postRepo, _ := mocks.NewMockRepositories()
	for i := 0; i < 10; i++ {
		keywordRepo.Add(&models.Keyword{ID: fmt.Sprintf("k%d", i), Keyword: fmt.Sprintf("keyword %d", i)})
	}
	generator := mocks.NewMockGenerator()
	generator.Default = draftJSON("Title", "Body")
	svc := service.NewAutoPostService(repos, generator, nil, nil, zerolog.Nop())

	if _, err := svc.Generate(context.Background(), 5); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	calls := append([]string(nil), generator.Calls...)
	sort.Strings(calls)
	for i := 1; i < len(calls); i++ {
		if calls[i] == calls[i-1] {
			t.Fatalf("Keyword %q selected twice", calls[i])
		}
	}
	if len(calls) != 5 || len(postRepo.Posts) != 5 {
		t.Errorf("Expected 5 keywords processed, got %d calls and %d posts", len(calls), len(postRepo.Posts))
	}
}

func TestAutoPost_AllFail(t *testing.T) {
	h := newTestHarness(t, "x", "y")
	h.generator.Default = "no json here"

	result, err := h.autoPost.Generate(context.Background(), 2)
	if !errors.Is(err, service.ErrGenerationFailed) {
		t.Fatalf("Expected ErrGenerationFailed, got %v", err)
	}
	if result != nil {
		t.Error("Result should be nil on failure")
	}
	if len(h.postRepo.Posts) != 0 {
		t.Error("No post should be created")
	}
	if h.keywordRepo.UsedCount() != 0 {
		t.Error("No keyword should be marked used")
	}

	var failed *models.Run
	for _, r := range h.runRepo.Runs {
		failed = r
	}
	if failed == nil || failed.Status != models.RunStatusFailed || failed.Failed != 2 {
		t.Errorf("Expected failed run with 2 errors, got %+v", failed)
	}
}

func TestAutoPost_GenerationErrorIsSkipped(t *testing.T) {
	h := newTestHarness(t, "up", "down")
	h.generator.Default = draftJSON("Up", "Body")
	h.generator.Errors["down"] = errors.New("rate limited")

	result, err := h.autoPost.Generate(context.Background(), 2)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	skipped := result.Skipped()
	if len(skipped) != 1 || skipped[0].Skip != models.SkipReasonGenerationFailed {
		t.Errorf("Expected one generation_failed skip, got %+v", skipped)
	}
	if h.keyword(t, "down").Used {
		t.Error("Keyword with failed generation should remain unused")
	}
}

func TestAutoPost_PersistenceFailures(t *testing.T) {
	t.Run("post insert", func(t *testing.T) {
		h := newTestHarness(t, "kw")
		h.generator.Default = draftJSON("Title", "Body")
		h.postRepo.CreateError = errors.New("connection reset")

		_, err := h.autoPost.Generate(context.Background(), 1)
		if !errors.Is(err, service.ErrGenerationFailed) {
			t.Fatalf("Expected ErrGenerationFailed, got %v", err)
		}
		if h.keyword(t, "kw").Used {
			t.Error("Keyword should remain unused")
		}
		if h.keywordRepo.MarkUsedCalls != 0 {
			t.Error("MarkUsed should not be attempted after a failed insert")
		}
	})

	t.Run("mark used", func(t *testing.T) {
		h := newTestHarness(t, "kw")
		h.generator.Default = draftJSON("Title", "Body")
		h.keywordRepo.MarkUsedError = errors.New("connection reset")

		_, err := h.autoPost.Generate(context.Background(), 1)
		if !errors.Is(err, service.ErrGenerationFailed) {
			t.Fatalf("Expected ErrGenerationFailed, got %v", err)
		}
		// The post stays while the keyword stays unused
		if len(h.postRepo.Posts) != 1 {
			t.Errorf("Expected the post to remain, got %d posts", len(h.postRepo.Posts))
		}
		if h.keyword(t, "kw").Used {
			t.Error("Keyword should remain unused")
		}
	})
}

func TestAutoPost_SlugFallback(t *testing.T) {
	h := newTestHarness(t, "날씨")
	h.generator.Default = `{"title": "!!!", "content": "Body"}`

	result, err := h.autoPost.Generate(context.Background(), 1)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	post := h.postRepo.Posts[result.Posts()[0].ID]
	if post.Slug != "날씨" {
		t.Errorf("Expected keyword slug fallback, got %q", post.Slug)
	}
}

func TestAutoPost_BudgetExhausted(t *testing.T) {
	h := newTestHarness(t, "first", "second", "third")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h.generator.GenerateFunc = func(_ context.Context, keyword string) (string, error) {
		// Budget runs out while the first keyword is in flight
		cancel()
		return draftJSON("Title "+keyword, "Body"), nil
	}

	result, err := h.autoPost.Generate(ctx, 3)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if got := len(result.Posts()); got != 1 {
		t.Errorf("Expected 1 post before the budget ran out, got %d", got)
	}
	if h.generator.CallCount() != 1 {
		t.Errorf("Expected generation to stop after the budget, got %d calls", h.generator.CallCount())
	}
	if h.keyword(t, "second").Used || h.keyword(t, "third").Used {
		t.Error("Unprocessed keywords should remain unused")
	}

	run := h.runRepo.Runs[result.RunID]
	if run == nil || run.Status != models.RunStatusCompleted || run.CompletedAt == nil {
		t.Errorf("Run should be completed despite the cancelled context, got %+v", run)
	}
}

func TestAutoPost_ListErrorPropagates(t *testing.T) {
	h := newTestHarness(t, "a")
	h.keywordRepo.ListError = errors.New("db down")

	_, err := h.autoPost.Generate(context.Background(), 1)
	if err == nil || errors.Is(err, service.ErrInsufficientKeywords) {
		t.Fatalf("Expected repository error, got %v", err)
	}
}

func metricValue(t *testing.T, reg *prometheus.Registry, name, label string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetValue() == label {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}
