package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/trendscanner-api/internal/database"
	"github.com/trendscanner-api/internal/models"
)

const keywordColumns = `id, keyword, used, created_at, used_at`

// keywordRepo is the concrete implementation of KeywordRepository
type keywordRepo struct {
	db *database.DB
}

// NewKeywordRepo creates a new keyword repository
func NewKeywordRepo(db *database.DB) KeywordRepository {
	return &keywordRepo{db: db}
}

// UpsertIfAbsent inserts the keyword unless its text already exists.
// Existing rows, including their used flag, are left untouched.
func (r *keywordRepo) UpsertIfAbsent(ctx context.Context, keyword *models.Keyword) (bool, error) {
	query := `
		INSERT INTO keywords (id, keyword, used, created_at)
		VALUES ($1, $2, FALSE, $3)
		ON CONFLICT (keyword) DO NOTHING
	`
	result, err := r.db.ExecContext(ctx, query, keyword.ID, keyword.Keyword, keyword.CreatedAt)
	if err != nil {
		return false, err
	}
	rows, _ := result.RowsAffected()
	return rows > 0, nil
}

// GetByID retrieves a keyword by ID
func (r *keywordRepo) GetByID(ctx context.Context, id string) (*models.Keyword, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+keywordColumns+" FROM keywords WHERE id = $1", id)

	keyword, err := scanKeyword(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return keyword, nil
}

// List retrieves all keywords, newest first
func (r *keywordRepo) List(ctx context.Context) ([]*models.Keyword, error) {
	return r.query(ctx, "SELECT "+keywordColumns+" FROM keywords ORDER BY created_at DESC")
}

// ListUnused retrieves every keyword not yet consumed by the pipeline
func (r *keywordRepo) ListUnused(ctx context.Context) ([]*models.Keyword, error) {
	return r.query(ctx, "SELECT "+keywordColumns+" FROM keywords WHERE used = FALSE ORDER BY created_at DESC")
}

// ListSince retrieves up to limit keywords created at or after since, newest first
func (r *keywordRepo) ListSince(ctx context.Context, since time.Time, limit int) ([]*models.Keyword, error) {
	return r.query(ctx,
		"SELECT "+keywordColumns+" FROM keywords WHERE created_at >= $1 ORDER BY created_at DESC LIMIT $2",
		since, limit,
	)
}

// MarkUsed flags a keyword as consumed
func (r *keywordRepo) MarkUsed(ctx context.Context, id string, usedAt time.Time) error {
	_, err := r.db.ExecContext(ctx, "UPDATE keywords SET used = TRUE, used_at = $1 WHERE id = $2", usedAt, id)
	return err
}

// Delete removes a keyword, reporting whether it existed
func (r *keywordRepo) Delete(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM keywords WHERE id = $1", id)
	if err != nil {
		return false, err
	}
	rows, _ := result.RowsAffected()
	return rows > 0, nil
}

// DeleteAll removes every keyword and returns how many were deleted
func (r *keywordRepo) DeleteAll(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM keywords")
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// Count returns the total and unused keyword counts
func (r *keywordRepo) Count(ctx context.Context) (int, int, error) {
	var total, unused int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*), COUNT(*) FILTER (WHERE used = FALSE) FROM keywords",
	).Scan(&total, &unused)
	return total, unused, err
}

// StreamAll walks every keyword in creation order without buffering the table
func (r *keywordRepo) StreamAll(ctx context.Context, callback func(*models.Keyword) error) error {
	rows, err := r.db.QueryContext(ctx, "SELECT "+keywordColumns+" FROM keywords ORDER BY created_at")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		keyword, err := scanKeyword(rows)
		if err != nil {
			return err
		}
		if err := callback(keyword); err != nil {
			return err
		}
	}
	return rows.Err()
}

func (r *keywordRepo) query(ctx context.Context, query string, args ...interface{}) ([]*models.Keyword, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keywords []*models.Keyword
	for rows.Next() {
		keyword, err := scanKeyword(rows)
		if err != nil {
			return nil, err
		}
		keywords = append(keywords, keyword)
	}
	return keywords, rows.Err()
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanKeyword(row rowScanner) (*models.Keyword, error) {
	var keyword models.Keyword
	var usedAt sql.NullTime

	if err := row.Scan(&keyword.ID, &keyword.Keyword, &keyword.Used, &keyword.CreatedAt, &usedAt); err != nil {
		return nil, err
	}
	if usedAt.Valid {
		keyword.UsedAt = &usedAt.Time
	}
	return &keyword, nil
}
