package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/trendscanner-api/internal/metrics"
	"github.com/trendscanner-api/internal/models"
	"github.com/trendscanner-api/internal/repository"
	"github.com/trendscanner-api/internal/trends"
)

const (
	trendingWindow = 24 * time.Hour
	trendingLimit  = 10
)

// keywordService is the concrete implementation of KeywordService
type keywordService struct {
	keywordRepo repository.KeywordRepository
	runs        runTracker
	source      trends.Source
	metrics     *metrics.Metrics
	log         zerolog.Logger
}

// newKeywordService creates a new KeywordService
func newKeywordService(repos *repository.Repositories, source trends.Source, m *metrics.Metrics, log zerolog.Logger) *keywordService {
	svcLog := log.With().Str("service", "keyword").Logger()
	return &keywordService{
		keywordRepo: repos.Keyword,
		runs:        runTracker{runRepo: repos.Run, log: svcLog},
		source:      source,
		metrics:     m,
		log:         svcLog,
	}
}

// Collect fetches the current trending keywords and stores the ones not seen before
func (s *keywordService) Collect(ctx context.Context) (*models.CollectResult, error) {
	if s.source == nil {
		return nil, fmt.Errorf("no trend source configured")
	}

	start := time.Now()
	keywords, err := s.source.Fetch(ctx)
	s.metrics.ObserveExternal("serpapi", start)
	if err != nil {
		s.metrics.Run(string(models.RunTypeCollect), string(models.RunStatusFailed))
		return nil, fmt.Errorf("failed to fetch trending keywords: %w", err)
	}

	run := s.runs.start(ctx, models.RunTypeCollect, len(keywords))
	result := &models.CollectResult{RunID: run.ID, Fetched: len(keywords)}

	var runErrors []models.RunError
	for _, text := range keywords {
		inserted, err := s.keywordRepo.UpsertIfAbsent(ctx, &models.Keyword{
			ID:        uuid.New().String(),
			Keyword:   text,
			CreatedAt: time.Now(),
		})
		if err != nil {
			s.log.Error().Err(err).Str("keyword", text).Msg("Failed to store keyword")
			runErrors = append(runErrors, models.RunError{
				Keyword: text,
				Reason:  models.SkipReasonPersistenceFailed,
				Message: err.Error(),
			})
			continue
		}
		if inserted {
			result.Inserted++
		}
	}

	status := models.RunStatusCompleted
	if len(runErrors) > 0 && len(runErrors) == len(keywords) {
		status = models.RunStatusFailed
	}
	s.runs.finish(ctx, run, status, len(keywords)-len(runErrors), len(runErrors), runErrors)
	s.metrics.Run(string(models.RunTypeCollect), string(status))
	s.metrics.KeywordsCollected(result.Inserted, len(keywords)-len(runErrors)-result.Inserted)

	s.log.Info().
		Str("run_id", run.ID).
		Int("fetched", result.Fetched).
		Int("inserted", result.Inserted).
		Int("failed", len(runErrors)).
		Msg("Trending keywords collected")

	if status == models.RunStatusFailed {
		return nil, fmt.Errorf("failed to store any of %d keywords", len(keywords))
	}
	return result, nil
}

// List retrieves all keywords, newest first
func (s *keywordService) List(ctx context.Context) ([]*models.Keyword, error) {
	return s.keywordRepo.List(ctx)
}

// Trending retrieves the newest keywords collected within the last day
func (s *keywordService) Trending(ctx context.Context) ([]*models.Keyword, error) {
	return s.keywordRepo.ListSince(ctx, time.Now().Add(-trendingWindow), trendingLimit)
}

// Delete removes a keyword, reporting whether it existed
func (s *keywordService) Delete(ctx context.Context, id string) (bool, error) {
	deleted, err := s.keywordRepo.Delete(ctx, id)
	if err != nil {
		return false, err
	}
	if deleted {
		s.log.Info().Str("keyword_id", id).Msg("Keyword deleted")
	}
	return deleted, nil
}

// DeleteAll removes every keyword
func (s *keywordService) DeleteAll(ctx context.Context) (int64, error) {
	count, err := s.keywordRepo.DeleteAll(ctx)
	if err != nil {
		return 0, err
	}
	s.log.Warn().Int64("deleted", count).Msg("All keywords deleted")
	return count, nil
}
