package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/trendscanner-api/internal/imagesearch"
	"github.com/trendscanner-api/internal/llm"
	"github.com/trendscanner-api/internal/metrics"
	"github.com/trendscanner-api/internal/models"
	"github.com/trendscanner-api/internal/repository"
	"github.com/trendscanner-api/internal/validation"
	"github.com/trendscanner-api/pkg/slug"
)

// ShuffleFunc reorders the candidate keywords in place
type ShuffleFunc func(keywords []*models.Keyword)

// AutoPostOption configures an AutoPostService
type AutoPostOption func(*autoPostService)

// WithShuffle replaces the random keyword selection order
func WithShuffle(fn ShuffleFunc) AutoPostOption {
	return func(s *autoPostService) {
		s.shuffle = fn
	}
}

// WithClock replaces the time source used for timestamps
func WithClock(now func() time.Time) AutoPostOption {
	return func(s *autoPostService) {
		s.now = now
	}
}

// autoPostService is the concrete implementation of AutoPostService
type autoPostService struct {
	keywordRepo repository.KeywordRepository
	postRepo    repository.PostRepository
	runs        runTracker
	generator   llm.Generator
	images      imagesearch.Searcher
	metrics     *metrics.Metrics
	log         zerolog.Logger
	shuffle     ShuffleFunc
	now         func() time.Time
}

// NewAutoPostService creates the auto-post orchestrator. images may be nil,
// in which case posts are created without an image.
func NewAutoPostService(
	repos *repository.Repositories,
	generator llm.Generator,
	images imagesearch.Searcher,
	m *metrics.Metrics,
	log zerolog.Logger,
	opts ...AutoPostOption,
) AutoPostService {
	svcLog := log.With().Str("service", "autopost").Logger()
	s := &autoPostService{
		keywordRepo: repos.Keyword,
		postRepo:    repos.Post,
		runs:        runTracker{runRepo: repos.Run, log: svcLog},
		generator:   generator,
		images:      images,
		metrics:     m,
		log:         svcLog,
		shuffle:     randomShuffle,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func randomShuffle(keywords []*models.Keyword) {
	rand.Shuffle(len(keywords), func(i, j int) {
		keywords[i], keywords[j] = keywords[j], keywords[i]
	})
}

// Generate selects keywordCount unused keywords at random and converts each
// into a post. Keywords are processed sequentially; a keyword that fails is
// skipped and stays unused. The context deadline is the wall-clock budget:
// once it expires no further keyword is started.
func (s *autoPostService) Generate(ctx context.Context, keywordCount int) (*models.AutoPostResult, error) {
	if keywordCount < models.MinAutoPostKeywords || keywordCount > models.MaxAutoPostKeywords {
		return nil, ErrInvalidKeywordCount
	}

	unused, err := s.keywordRepo.ListUnused(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list unused keywords: %w", err)
	}
	if len(unused) < keywordCount {
		return nil, fmt.Errorf("%w: requested %d, available %d", ErrInsufficientKeywords, keywordCount, len(unused))
	}

	s.shuffle(unused)
	selected := unused[:keywordCount]

	run := s.runs.start(ctx, models.RunTypeAutoPost, keywordCount)
	result := &models.AutoPostResult{
		RunID:    run.ID,
		Outcomes: make([]models.KeywordOutcome, 0, keywordCount),
	}

	s.log.Info().
		Str("run_id", run.ID).
		Int("requested", keywordCount).
		Int("available", len(unused)).
		Msg("Auto-post run started")

	for i, kw := range selected {
		if ctx.Err() != nil {
			s.log.Warn().
				Str("run_id", run.ID).
				Int("processed", i).
				Int("remaining", len(selected)-i).
				Msg("Auto-post time budget exhausted")
			break
		}

		outcome := s.processKeyword(ctx, kw)
		result.Outcomes = append(result.Outcomes, outcome)

		if outcome.Succeeded() {
			s.metrics.KeywordOutcome("created")
		} else {
			s.metrics.KeywordOutcome(string(outcome.Skip))
			s.log.Warn().
				Str("run_id", run.ID).
				Str("keyword", kw.Keyword).
				Str("reason", string(outcome.Skip)).
				Str("detail", outcome.Detail).
				Msg("Keyword skipped")
		}
	}

	posts := len(result.Posts())
	skipped := result.Skipped()
	runErrors := make([]models.RunError, 0, len(skipped))
	for _, o := range skipped {
		runErrors = append(runErrors, models.RunError{Keyword: o.Keyword, Reason: o.Skip, Message: o.Detail})
	}

	status := models.RunStatusCompleted
	if posts == 0 {
		status = models.RunStatusFailed
	}
	s.runs.finish(ctx, run, status, posts, len(runErrors), runErrors)
	s.metrics.Run(string(models.RunTypeAutoPost), string(status))

	s.log.Info().
		Str("run_id", run.ID).
		Int("requested", keywordCount).
		Int("created", posts).
		Int("skipped", len(skipped)).
		Msg("Auto-post run finished")

	if posts == 0 {
		return nil, fmt.Errorf("%w: %d keywords skipped", ErrGenerationFailed, len(skipped))
	}
	return result, nil
}

// processKeyword runs the generate, validate, illustrate, persist and mark
// steps for one keyword and reports the outcome as a value.
func (s *autoPostService) processKeyword(ctx context.Context, kw *models.Keyword) models.KeywordOutcome {
	outcome := models.KeywordOutcome{KeywordID: kw.ID, Keyword: kw.Keyword}
	skip := func(reason models.SkipReason, err error) models.KeywordOutcome {
		outcome.Skip = reason
		outcome.Detail = err.Error()
		return outcome
	}

	start := time.Now()
	raw, err := s.generator.Generate(ctx, kw.Keyword)
	s.metrics.ObserveExternal("openai", start)
	if err != nil {
		return skip(models.SkipReasonGenerationFailed, err)
	}

	draft, err := validation.ParseDraft(raw, kw.Keyword)
	if err != nil {
		return skip(models.SkipReasonDraftInvalid, err)
	}

	now := s.now()
	post := &models.Post{
		ID:       uuid.New().String(),
		Title:    draft.Title,
		Content:  draft.Content,
		ImageURL: s.lookupImage(ctx, draft.SearchQuery(kw.Keyword)),
		Tags:     draft.Tags,
		Metadata: models.PostMetadata{
			AutoGenerated: true,
			Keywords:      []string{kw.Keyword},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	post.Slug = postSlug(post.Title, kw.Keyword, post.ID)

	if err := s.postRepo.Create(ctx, post); err != nil {
		return skip(models.SkipReasonPersistenceFailed, fmt.Errorf("failed to create post: %w", err))
	}

	// The post is already stored; a failure here leaves the keyword unused.
	if err := s.keywordRepo.MarkUsed(ctx, kw.ID, now); err != nil {
		return skip(models.SkipReasonPersistenceFailed,
			fmt.Errorf("post %s created but keyword not marked used: %w", post.ID, err))
	}

	outcome.Post = post
	s.log.Info().
		Str("keyword", kw.Keyword).
		Str("post_id", post.ID).
		Str("slug", post.Slug).
		Bool("has_image", post.ImageURL != "").
		Msg("Post created")

	return outcome
}

// lookupImage returns an image URL for query, or "" when none is available
func (s *autoPostService) lookupImage(ctx context.Context, query string) string {
	if s.images == nil {
		return ""
	}

	start := time.Now()
	imageURL, err := s.images.Search(ctx, query)
	s.metrics.ObserveExternal("unsplash", start)
	if err != nil {
		s.metrics.ImageLookupFailed()
		evt := s.log.Warn()
		if errors.Is(err, imagesearch.ErrNoResult) {
			evt = s.log.Debug()
		}
		evt.Err(err).Str("query", query).Msg("Image lookup failed")
		return ""
	}
	if imageURL == "" {
		s.metrics.ImageLookupFailed()
	}
	return imageURL
}

// postSlug derives the slug from the title, falling back to the keyword and
// then the post ID when the title has no slug-safe characters.
func postSlug(title, keyword, id string) string {
	if s := slug.Generate(title); s != "" {
		return s
	}
	if s := slug.Generate(keyword); s != "" {
		return s
	}
	return id
}
