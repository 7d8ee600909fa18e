package repository

import (
	"context"
	"database/sql"

	"github.com/lib/pq"
	"github.com/trendscanner-api/internal/database"
	"github.com/trendscanner-api/internal/models"
)

const runColumns = `id, type, status, requested, succeeded, failed, duration_ms, created_at, completed_at`

// runRepo is the concrete implementation of RunRepository
type runRepo struct {
	db *database.DB
}

// NewRunRepo creates a new run repository
func NewRunRepo(db *database.DB) RunRepository {
	return &runRepo{db: db}
}

// Create inserts a new run
func (r *runRepo) Create(ctx context.Context, run *models.Run) error {
	query := `
		INSERT INTO runs (id, type, status, requested, succeeded, failed, duration_ms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		run.ID, run.Type, run.Status, run.Requested,
		run.Succeeded, run.Failed, run.DurationMs, run.CreatedAt,
	)
	return err
}

// Update updates run status and counters
func (r *runRepo) Update(ctx context.Context, run *models.Run) error {
	query := `
		UPDATE runs SET
			status = $1, requested = $2, succeeded = $3, failed = $4,
			duration_ms = $5, completed_at = $6
		WHERE id = $7
	`
	_, err := r.db.ExecContext(ctx, query,
		run.Status, run.Requested, run.Succeeded, run.Failed,
		run.DurationMs, run.CompletedAt, run.ID,
	)
	return err
}

// GetByID retrieves a run by ID
func (r *runRepo) GetByID(ctx context.Context, id string) (*models.Run, error) {
	run, err := scanRun(r.db.QueryRowContext(ctx, "SELECT "+runColumns+" FROM runs WHERE id = $1", id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return run, nil
}

// ListRecent retrieves the latest runs, newest first
func (r *runRepo) ListRecent(ctx context.Context, limit int) ([]*models.Run, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+runColumns+" FROM runs ORDER BY created_at DESC LIMIT $1", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*models.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// AddErrors records skipped keywords using the COPY protocol
func (r *runRepo) AddErrors(ctx context.Context, runID string, errors []models.RunError) error {
	if len(errors) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn("run_errors", "run_id", "keyword", "reason", "message"))
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, e := range errors {
		if _, err := stmt.ExecContext(ctx, runID, e.Keyword, string(e.Reason), e.Message); err != nil {
			return err
		}
	}

	// Flush the COPY buffer
	if _, err := stmt.ExecContext(ctx); err != nil {
		return err
	}

	return tx.Commit()
}

// GetErrors retrieves the skipped keywords of a run in insertion order
func (r *runRepo) GetErrors(ctx context.Context, runID string) ([]models.RunError, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT keyword, reason, message FROM run_errors WHERE run_id = $1 ORDER BY id", runID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var errors []models.RunError
	for rows.Next() {
		var e models.RunError
		if err := rows.Scan(&e.Keyword, &e.Reason, &e.Message); err != nil {
			return nil, err
		}
		errors = append(errors, e)
	}
	return errors, rows.Err()
}

func scanRun(row rowScanner) (*models.Run, error) {
	var run models.Run
	var completedAt sql.NullTime

	err := row.Scan(
		&run.ID, &run.Type, &run.Status, &run.Requested, &run.Succeeded,
		&run.Failed, &run.DurationMs, &run.CreatedAt, &completedAt,
	)
	if err != nil {
		return nil, err
	}
	if completedAt.Valid {
		run.CompletedAt = &completedAt.Time
	}
	return &run, nil
}
