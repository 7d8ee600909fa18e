package service

import (
	"bufio"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/trendscanner-api/internal/metrics"
	"github.com/trendscanner-api/internal/models"
	"github.com/trendscanner-api/internal/repository"
	"github.com/trendscanner-api/internal/validation"
)

const (
	// errorFlushThreshold bounds how many line errors are held before writing them out
	errorFlushThreshold = 1000

	// cancelCheckEvery is how many lines are read between context checks
	cancelCheckEvery = 1000

	maxNDJSONLine = 1024 * 1024
)

// importService is the concrete implementation of ImportService
type importService struct {
	keywordRepo repository.KeywordRepository
	runs        runTracker
	metrics     *metrics.Metrics
	log         zerolog.Logger
}

// newImportService creates a new ImportService
func newImportService(repos *repository.Repositories, m *metrics.Metrics, log zerolog.Logger) *importService {
	svcLog := log.With().Str("service", "import").Logger()
	return &importService{
		keywordRepo: repos.Keyword,
		runs:        runTracker{runRepo: repos.Run, log: svcLog},
		metrics:     m,
		log:         svcLog,
	}
}

// keywordImport accumulates the state of one import run
type keywordImport struct {
	run    *models.Run
	result *models.ImportResult
	errors []models.RunError
}

// ImportKeywords reads keywords from r and stores the ones not seen before.
// CSV files need a "keyword" header column; NDJSON lines are {"keyword": "..."}.
// Rejected lines are recorded as run errors and never abort the import.
func (s *importService) ImportKeywords(ctx context.Context, r io.Reader, format string) (*models.ImportResult, error) {
	if format != FormatCSV && format != FormatNDJSON {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}

	startTime := time.Now()
	run := s.runs.start(ctx, models.RunTypeImport, 0)
	imp := &keywordImport{
		run:    run,
		result: &models.ImportResult{RunID: run.ID},
	}

	s.log.Info().
		Str("run_id", run.ID).
		Str("format", format).
		Msg("Starting keyword import")

	var err error
	switch format {
	case FormatCSV:
		err = s.processCSV(ctx, imp, r)
	case FormatNDJSON:
		err = s.processNDJSON(ctx, imp, r)
	}

	result := imp.result
	result.DurationMs = time.Since(startTime).Milliseconds()
	run.Requested = result.Total

	status := models.RunStatusCompleted
	if err != nil || (result.Total > 0 && result.Failed == result.Total) {
		status = models.RunStatusFailed
	}
	s.runs.finish(ctx, run, status, result.Inserted+result.Duplicates, result.Failed, imp.errors)
	s.metrics.Run(string(models.RunTypeImport), string(status))
	s.metrics.KeywordsCollected(result.Inserted, result.Duplicates)

	if err != nil {
		s.log.Error().Err(err).Str("run_id", run.ID).Msg("Keyword import failed")
		return nil, err
	}

	s.log.Info().
		Str("run_id", run.ID).
		Int("total", result.Total).
		Int("inserted", result.Inserted).
		Int("duplicates", result.Duplicates).
		Int("failed", result.Failed).
		Int64("duration_ms", result.DurationMs).
		Msg("Keyword import completed")

	return result, nil
}

// processCSV imports the "keyword" column of a CSV file
func (s *importService) processCSV(ctx context.Context, imp *keywordImport, r io.Reader) error {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: failed to read header: %v", ErrInvalidImportFile, err)
	}
	column := -1
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")), "keyword") {
			column = i
			break
		}
	}
	if column < 0 {
		return fmt.Errorf("%w: missing keyword column", ErrInvalidImportFile)
	}

	lineNum := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			return nil
		}
		lineNum++

		if lineNum%cancelCheckEvery == 0 && ctx.Err() != nil {
			return ctx.Err()
		}

		if err != nil {
			var parseErr *csv.ParseError
			if !errors.As(err, &parseErr) {
				return fmt.Errorf("%w: %v", ErrInvalidImportFile, err)
			}
			imp.result.Total++
			s.reject(ctx, imp, lineNum, "", fmt.Sprintf("malformed CSV: %v", parseErr.Err))
			continue
		}

		imp.result.Total++
		text := ""
		if column < len(record) {
			text = strings.TrimSpace(record[column])
		}
		s.store(ctx, imp, lineNum, text)
	}
}

// processNDJSON imports one {"keyword": "..."} object per line; blank lines are skipped
func (s *importService) processNDJSON(ctx context.Context, imp *keywordImport, r io.Reader) error {
	scanner := bufio.NewScanner(r)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, maxNDJSONLine)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if lineNum%cancelCheckEvery == 0 && ctx.Err() != nil {
			return ctx.Err()
		}

		imp.result.Total++

		var record models.KeywordRecord
		if err := json.Unmarshal([]byte(line), &record); err != nil {
			s.reject(ctx, imp, lineNum, "", fmt.Sprintf("invalid JSON: %v", err))
			continue
		}
		s.store(ctx, imp, lineNum, strings.TrimSpace(record.Keyword))
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidImportFile, err)
	}
	return nil
}

// store validates and upserts one keyword
func (s *importService) store(ctx context.Context, imp *keywordImport, lineNum int, text string) {
	if err := validation.ValidateImportKeyword(text, models.MaxKeywordLength); err != nil {
		s.reject(ctx, imp, lineNum, text, err.Error())
		return
	}

	inserted, err := s.keywordRepo.UpsertIfAbsent(ctx, &models.Keyword{
		ID:        uuid.New().String(),
		Keyword:   text,
		CreatedAt: time.Now(),
	})
	if err != nil {
		s.log.Error().Err(err).Str("keyword", text).Int("line", lineNum).Msg("Failed to store keyword")
		imp.result.Failed++
		s.addError(ctx, imp, models.RunError{
			Keyword: text,
			Reason:  models.SkipReasonPersistenceFailed,
			Message: fmt.Sprintf("line %d: %v", lineNum, err),
		})
		return
	}

	if inserted {
		imp.result.Inserted++
	} else {
		imp.result.Duplicates++
	}
}

func (s *importService) reject(ctx context.Context, imp *keywordImport, lineNum int, text, message string) {
	imp.result.Failed++
	s.addError(ctx, imp, models.RunError{
		Keyword: text,
		Reason:  models.SkipReasonInvalidInput,
		Message: fmt.Sprintf("line %d: %s", lineNum, message),
	})
}

func (s *importService) addError(ctx context.Context, imp *keywordImport, runErr models.RunError) {
	imp.errors = append(imp.errors, runErr)
	if len(imp.errors) >= errorFlushThreshold {
		s.runs.flush(ctx, imp.run.ID, &imp.errors)
	}
}
