package service

import (
	"context"
	"io"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/trendscanner-api/internal/config"
	"github.com/trendscanner-api/internal/imagesearch"
	"github.com/trendscanner-api/internal/llm"
	"github.com/trendscanner-api/internal/metrics"
	"github.com/trendscanner-api/internal/models"
	"github.com/trendscanner-api/internal/repository"
	"github.com/trendscanner-api/internal/trends"
)

// AutoPostService turns unused trending keywords into published posts
type AutoPostService interface {
	Generate(ctx context.Context, keywordCount int) (*models.AutoPostResult, error)
}

// KeywordService defines the interface for keyword collection and administration
type KeywordService interface {
	Collect(ctx context.Context) (*models.CollectResult, error)
	List(ctx context.Context) ([]*models.Keyword, error)
	Trending(ctx context.Context) ([]*models.Keyword, error)
	Delete(ctx context.Context, id string) (bool, error)
	DeleteAll(ctx context.Context) (int64, error)
}

// PostService defines the interface for reading and reacting to posts
type PostService interface {
	List(ctx context.Context, page, limit int) (*models.PostPage, error)
	GetBySlug(ctx context.Context, slug string) (*models.PostDetail, error)
	Like(ctx context.Context, id string, action models.LikeAction) (int, error)
	Get(ctx context.Context, id string) (*models.Post, error)
	Create(ctx context.Context, input models.PostInput) (*models.Post, error)
	Update(ctx context.Context, id string, input models.PostInput) (*models.Post, error)
	Delete(ctx context.Context, id string) error
	Dashboard(ctx context.Context) (*models.Dashboard, error)
	Stats(ctx context.Context) (*models.Stats, error)
}

// RunService defines the interface for pipeline run history
type RunService interface {
	GetRun(ctx context.Context, id string) (*models.RunResponse, error)
	ListRecent(ctx context.Context, limit int) ([]*models.Run, error)
}

// ExportService streams stored posts and keywords
type ExportService interface {
	StreamPosts(ctx context.Context, w http.ResponseWriter, format string) error
	StreamKeywords(ctx context.Context, w http.ResponseWriter, format string) error
	StreamResource(ctx context.Context, w http.ResponseWriter, resource, format string) error
}

// ImportService loads operator-supplied keyword files
type ImportService interface {
	ImportKeywords(ctx context.Context, r io.Reader, format string) (*models.ImportResult, error)
}

// SchedulerService periodically triggers collection and auto-posting
type SchedulerService interface {
	Start(ctx context.Context)
	Stop()
}

// Clients holds the external API clients the services depend on
type Clients struct {
	Generator llm.Generator
	Images    imagesearch.Searcher
	Trends    trends.Source
}

// Services holds all service interfaces
type Services struct {
	AutoPost  AutoPostService
	Keyword   KeywordService
	Post      PostService
	Run       RunService
	Export    ExportService
	Import    ImportService
	Scheduler SchedulerService
}

// NewServices creates all services
func NewServices(repos *repository.Repositories, clients Clients, m *metrics.Metrics, cfg *config.Config, log zerolog.Logger) *Services {
	autoPostSvc := NewAutoPostService(repos, clients.Generator, clients.Images, m, log)
	keywordSvc := newKeywordService(repos, clients.Trends, m, log)
	postSvc := newPostService(repos, log)
	runSvc := newRunService(repos.Run, log)
	exportSvc := newExportService(repos, log)
	importSvc := newImportService(repos, m, log)
	schedulerSvc := newSchedulerService(autoPostSvc, keywordSvc, cfg.Scheduler, cfg.AutoPost.Timeout, log)

	return &Services{
		AutoPost:  autoPostSvc,
		Keyword:   keywordSvc,
		Post:      postSvc,
		Run:       runSvc,
		Export:    exportSvc,
		Import:    importSvc,
		Scheduler: schedulerSvc,
	}
}
