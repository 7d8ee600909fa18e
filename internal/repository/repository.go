package repository

import (
	"context"
	"time"

	"github.com/trendscanner-api/internal/database"
	"github.com/trendscanner-api/internal/models"
)

// KeywordRepository defines the interface for keyword data operations
type KeywordRepository interface {
	UpsertIfAbsent(ctx context.Context, keyword *models.Keyword) (bool, error)
	GetByID(ctx context.Context, id string) (*models.Keyword, error)
	List(ctx context.Context) ([]*models.Keyword, error)
	ListUnused(ctx context.Context) ([]*models.Keyword, error)
	ListSince(ctx context.Context, since time.Time, limit int) ([]*models.Keyword, error)
	MarkUsed(ctx context.Context, id string, usedAt time.Time) error
	Delete(ctx context.Context, id string) (bool, error)
	DeleteAll(ctx context.Context) (int64, error)
	Count(ctx context.Context) (total int, unused int, err error)
	StreamAll(ctx context.Context, callback func(*models.Keyword) error) error
}

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	Update(ctx context.Context, post *models.Post) (bool, error)
	Delete(ctx context.Context, id string) (bool, error)
	GetByID(ctx context.Context, id string) (*models.Post, error)
	GetBySlug(ctx context.Context, slug string) (*models.Post, error)
	List(ctx context.Context, limit, offset int) ([]*models.Post, error)
	IncrementViews(ctx context.Context, id string) (int, error)
	AdjustLikes(ctx context.Context, id string, delta int) (int, bool, error)
	TopByViews(ctx context.Context, limit int) ([]models.PostViews, error)
	ViewsByDate(ctx context.Context, since time.Time) ([]models.DailyViews, error)
	Count(ctx context.Context) (int, error)
	StreamAll(ctx context.Context, callback func(*models.Post) error) error
}

// RunRepository defines the interface for pipeline run bookkeeping
type RunRepository interface {
	Create(ctx context.Context, run *models.Run) error
	Update(ctx context.Context, run *models.Run) error
	GetByID(ctx context.Context, id string) (*models.Run, error)
	ListRecent(ctx context.Context, limit int) ([]*models.Run, error)
	AddErrors(ctx context.Context, runID string, errors []models.RunError) error
	GetErrors(ctx context.Context, runID string) ([]models.RunError, error)
}

// Repositories holds all repository interfaces
type Repositories struct {
	Keyword KeywordRepository
	Post    PostRepository
	Run     RunRepository
}

// New creates all repositories with the given database connection
func New(db *database.DB) *Repositories {
	return &Repositories{
		Keyword: NewKeywordRepo(db),
		Post:    NewPostRepo(db),
		Run:     NewRunRepo(db),
	}
}
