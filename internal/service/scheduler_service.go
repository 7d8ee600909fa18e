package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/trendscanner-api/internal/config"
)

// schedulerService is the concrete implementation of SchedulerService
type schedulerService struct {
	autoPost AutoPostService
	keywords KeywordService
	cfg      config.SchedulerConfig
	budget   time.Duration
	log      zerolog.Logger
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	running  bool
	mu       sync.Mutex
	// Serializes ticks so a slow run never overlaps the next one
	busy sync.Mutex
}

// newSchedulerService creates a scheduler; budget bounds each triggered run
func newSchedulerService(autoPost AutoPostService, keywords KeywordService, cfg config.SchedulerConfig, budget time.Duration, log zerolog.Logger) *schedulerService {
	return &schedulerService{
		autoPost: autoPost,
		keywords: keywords,
		cfg:      cfg,
		budget:   budget,
		log:      log.With().Str("service", "scheduler").Logger(),
	}
}

// Start launches the periodic collection and auto-post loops. It returns
// immediately; the loops run until Stop is called or ctx is cancelled.
func (s *schedulerService) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return
	}
	if !s.cfg.Enabled {
		s.log.Info().Msg("Scheduler disabled")
		return
	}

	s.running = true
	s.ctx, s.cancel = context.WithCancel(ctx)

	s.wg.Add(2)
	go s.loop("collect", s.cfg.CollectInterval, s.collect)
	go s.loop("autopost", s.cfg.AutoPostInterval, s.generate)

	s.log.Info().
		Dur("collect_interval", s.cfg.CollectInterval).
		Dur("autopost_interval", s.cfg.AutoPostInterval).
		Int("autopost_count", s.cfg.AutoPostCount).
		Msg("Scheduler started")
}

// Stop cancels the loops and waits for in-flight runs to return
func (s *schedulerService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	s.cancel()
	s.wg.Wait()
	s.running = false
	s.log.Info().Msg("Scheduler stopped")
}

func (s *schedulerService) loop(name string, interval time.Duration, task func(ctx context.Context)) {
	defer s.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.runTask(name, task)
		}
	}
}

// runTask executes one tick under the time budget, recovering from panics
func (s *schedulerService) runTask(name string, task func(ctx context.Context)) {
	s.busy.Lock()
	defer s.busy.Unlock()

	defer func() {
		if r := recover(); r != nil {
			s.log.Error().
				Interface("panic", r).
				Str("task", name).
				Msg("Scheduled task panicked - recovered")
		}
	}()

	if s.ctx.Err() != nil {
		return
	}

	ctx, cancel := context.WithTimeout(s.ctx, s.budget)
	defer cancel()
	task(ctx)
}

func (s *schedulerService) collect(ctx context.Context) {
	result, err := s.keywords.Collect(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("Scheduled collection failed")
		return
	}
	s.log.Info().Int("inserted", result.Inserted).Msg("Scheduled collection finished")
}

func (s *schedulerService) generate(ctx context.Context) {
	result, err := s.autoPost.Generate(ctx, s.cfg.AutoPostCount)
	switch {
	case errors.Is(err, ErrInsufficientKeywords):
		s.log.Warn().Err(err).Msg("Scheduled auto-post skipped")
		return
	case err != nil:
		s.log.Error().Err(err).Msg("Scheduled auto-post failed")
		return
	}
	s.log.Info().
		Str("run_id", result.RunID).
		Int("count", len(result.Posts())).
		Msg("Scheduled auto-post finished")
}
