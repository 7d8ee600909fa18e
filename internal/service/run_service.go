package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/trendscanner-api/internal/models"
	"github.com/trendscanner-api/internal/repository"
)

// bookkeepingTimeout bounds run record writes, which outlive the caller's context
const bookkeepingTimeout = 5 * time.Second

// runService is the concrete implementation of RunService
type runService struct {
	runRepo repository.RunRepository
	log     zerolog.Logger
}

// newRunService creates a new RunService
func newRunService(runRepo repository.RunRepository, log zerolog.Logger) *runService {
	return &runService{
		runRepo: runRepo,
		log:     log.With().Str("service", "run").Logger(),
	}
}

// GetRun retrieves a run by ID with its skipped keywords
func (s *runService) GetRun(ctx context.Context, id string) (*models.RunResponse, error) {
	run, err := s.runRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if run == nil {
		return nil, nil
	}

	errors, err := s.runRepo.GetErrors(ctx, id)
	if err != nil {
		s.log.Error().Err(err).Str("run_id", id).Msg("Failed to get run errors")
	}

	return &models.RunResponse{Run: *run, Errors: errors}, nil
}

// ListRecent retrieves the latest runs
func (s *runService) ListRecent(ctx context.Context, limit int) ([]*models.Run, error) {
	return s.runRepo.ListRecent(ctx, limit)
}

// runTracker writes run records for the pipelines. Failures are logged and
// never alter the pipeline result.
type runTracker struct {
	runRepo repository.RunRepository
	log     zerolog.Logger
}

// start records a running run and returns it
func (t runTracker) start(ctx context.Context, runType models.RunType, requested int) *models.Run {
	run := &models.Run{
		ID:        uuid.New().String(),
		Type:      runType,
		Status:    models.RunStatusRunning,
		Requested: requested,
		CreatedAt: time.Now(),
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), bookkeepingTimeout)
	defer cancel()

	if err := t.runRepo.Create(ctx, run); err != nil {
		t.log.Error().Err(err).Str("run_id", run.ID).Msg("Failed to record run start")
	}
	return run
}

// finish stores the final counters of a run along with any errors not yet
// written. failed may exceed len(errs) when errors were flushed earlier.
func (t runTracker) finish(ctx context.Context, run *models.Run, status models.RunStatus, succeeded, failed int, errs []models.RunError) {
	completedAt := time.Now()
	run.Status = status
	run.Succeeded = succeeded
	run.Failed = failed
	run.DurationMs = completedAt.Sub(run.CreatedAt).Milliseconds()
	run.CompletedAt = &completedAt

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), bookkeepingTimeout)
	defer cancel()

	t.addErrors(ctx, run.ID, errs)
	if err := t.runRepo.Update(ctx, run); err != nil {
		t.log.Error().Err(err).Str("run_id", run.ID).Msg("Failed to record run completion")
	}
}

// flush writes errs ahead of finish and empties the slice
func (t runTracker) flush(ctx context.Context, runID string, errs *[]models.RunError) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), bookkeepingTimeout)
	defer cancel()

	t.addErrors(ctx, runID, *errs)
	*errs = (*errs)[:0]
}

func (t runTracker) addErrors(ctx context.Context, runID string, errs []models.RunError) {
	if len(errs) == 0 {
		return
	}
	if err := t.runRepo.AddErrors(ctx, runID, errs); err != nil {
		t.log.Error().Err(err).Str("run_id", runID).Int("count", len(errs)).Msg("Failed to record run errors")
	}
}
