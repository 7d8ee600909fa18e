package mocks

import (
	"context"
	"io"
	"net/http"
	"sync"

	"github.com/trendscanner-api/internal/models"
	"github.com/trendscanner-api/internal/service"
)

// Verify interface compliance
var (
	_ service.AutoPostService  = (*MockAutoPostService)(nil)
	_ service.KeywordService   = (*MockKeywordService)(nil)
	_ service.PostService      = (*MockPostService)(nil)
	_ service.RunService       = (*MockRunService)(nil)
	_ service.ExportService    = (*MockExportService)(nil)
	_ service.ImportService    = (*MockImportService)(nil)
	_ service.SchedulerService = (*MockSchedulerService)(nil)
)

// MockAutoPostService is a mock implementation of AutoPostService
type MockAutoPostService struct {
	GenerateFunc func(ctx context.Context, keywordCount int) (*models.AutoPostResult, error)
	Requests     []int
	// HadDeadline records whether each call carried a context deadline
	HadDeadline []bool
}

func NewMockAutoPostService() *MockAutoPostService {
	return &MockAutoPostService{}
}

func (m *MockAutoPostService) Generate(ctx context.Context, keywordCount int) (*models.AutoPostResult, error) {
	_, hasDeadline := ctx.Deadline()
	m.Requests = append(m.Requests, keywordCount)
	m.HadDeadline = append(m.HadDeadline, hasDeadline)
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, keywordCount)
	}
	return &models.AutoPostResult{RunID: "test-run-id"}, nil
}

// MockKeywordService is a mock implementation of KeywordService
type MockKeywordService struct {
	Keywords      []*models.Keyword
	CollectResult *models.CollectResult
	CollectError  error
	Deleted       []string
}

func NewMockKeywordService() *MockKeywordService {
	return &MockKeywordService{
		Keywords:      make([]*models.Keyword, 0),
		CollectResult: &models.CollectResult{},
	}
}

func (m *MockKeywordService) Collect(ctx context.Context) (*models.CollectResult, error) {
	if m.CollectError != nil {
		return nil, m.CollectError
	}
	return m.CollectResult, nil
}

func (m *MockKeywordService) List(ctx context.Context) ([]*models.Keyword, error) {
	return m.Keywords, nil
}

func (m *MockKeywordService) Trending(ctx context.Context) ([]*models.Keyword, error) {
	return m.Keywords, nil
}

func (m *MockKeywordService) Delete(ctx context.Context, id string) (bool, error) {
	for i, k := range m.Keywords {
		if k.ID == id {
			m.Keywords = append(m.Keywords[:i], m.Keywords[i+1:]...)
			m.Deleted = append(m.Deleted, id)
			return true, nil
		}
	}
	return false, nil
}

func (m *MockKeywordService) DeleteAll(ctx context.Context) (int64, error) {
	n := int64(len(m.Keywords))
	m.Keywords = m.Keywords[:0]
	return n, nil
}

// MockPostService is a mock implementation of PostService
type MockPostService struct {
	Posts     map[string]*models.PostDetail
	ByID      map[string]*models.Post
	Inputs    []models.PostInput
	SaveError error
	Page      *models.PostPage
	PageCalls [][2]int
	LikeFunc  func(ctx context.Context, id string, action models.LikeAction) (int, error)
	Dash      *models.Dashboard
	StatsData *models.Stats
}

func NewMockPostService() *MockPostService {
	return &MockPostService{
		Posts:     make(map[string]*models.PostDetail),
		ByID:      make(map[string]*models.Post),
		Page:      &models.PostPage{Posts: []models.PostListItem{}},
		Dash:      &models.Dashboard{},
		StatsData: &models.Stats{},
	}
}

func (m *MockPostService) List(ctx context.Context, page, limit int) (*models.PostPage, error) {
	m.PageCalls = append(m.PageCalls, [2]int{page, limit})
	return m.Page, nil
}

func (m *MockPostService) GetBySlug(ctx context.Context, slug string) (*models.PostDetail, error) {
	return m.Posts[slug], nil
}

func (m *MockPostService) Like(ctx context.Context, id string, action models.LikeAction) (int, error) {
	if m.LikeFunc != nil {
		return m.LikeFunc(ctx, id, action)
	}
	return 1, nil
}

func (m *MockPostService) Get(ctx context.Context, id string) (*models.Post, error) {
	return m.ByID[id], nil
}

func (m *MockPostService) Create(ctx context.Context, input models.PostInput) (*models.Post, error) {
	m.Inputs = append(m.Inputs, input)
	if m.SaveError != nil {
		return nil, m.SaveError
	}
	post := &models.Post{ID: "new-post", Title: input.Title, Content: input.Content, Tags: input.Tags}
	m.ByID[post.ID] = post
	return post, nil
}

func (m *MockPostService) Update(ctx context.Context, id string, input models.PostInput) (*models.Post, error) {
	m.Inputs = append(m.Inputs, input)
	if m.SaveError != nil {
		return nil, m.SaveError
	}
	post, ok := m.ByID[id]
	if !ok {
		return nil, service.ErrPostNotFound
	}
	post.Title = input.Title
	post.Content = input.Content
	return post, nil
}

func (m *MockPostService) Delete(ctx context.Context, id string) error {
	if _, ok := m.ByID[id]; !ok {
		return service.ErrPostNotFound
	}
	delete(m.ByID, id)
	return nil
}

func (m *MockPostService) Dashboard(ctx context.Context) (*models.Dashboard, error) {
	return m.Dash, nil
}

func (m *MockPostService) Stats(ctx context.Context) (*models.Stats, error) {
	return m.StatsData, nil
}

// MockRunService is a mock implementation of RunService
type MockRunService struct {
	Runs map[string]*models.RunResponse
}

func NewMockRunService() *MockRunService {
	return &MockRunService{
		Runs: make(map[string]*models.RunResponse),
	}
}

func (m *MockRunService) GetRun(ctx context.Context, id string) (*models.RunResponse, error) {
	return m.Runs[id], nil
}

func (m *MockRunService) ListRecent(ctx context.Context, limit int) ([]*models.Run, error) {
	runs := make([]*models.Run, 0, len(m.Runs))
	for _, r := range m.Runs {
		run := r.Run
		runs = append(runs, &run)
	}
	if len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

// MockExportService records export requests and writes Body
type MockExportService struct {
	Body     string
	Err      error
	Requests [][2]string
}

func (m *MockExportService) StreamPosts(ctx context.Context, w http.ResponseWriter, format string) error {
	return m.StreamResource(ctx, w, service.ExportResourcePosts, format)
}

func (m *MockExportService) StreamKeywords(ctx context.Context, w http.ResponseWriter, format string) error {
	return m.StreamResource(ctx, w, service.ExportResourceKeywords, format)
}

func (m *MockExportService) StreamResource(ctx context.Context, w http.ResponseWriter, resource, format string) error {
	m.Requests = append(m.Requests, [2]string{resource, format})
	if m.Err != nil {
		return m.Err
	}
	w.Write([]byte(m.Body))
	return nil
}

// MockImportService captures uploaded content
type MockImportService struct {
	Result   *models.ImportResult
	Err      error
	Formats  []string
	Contents []string
}

func (m *MockImportService) ImportKeywords(ctx context.Context, r io.Reader, format string) (*models.ImportResult, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	m.Formats = append(m.Formats, format)
	m.Contents = append(m.Contents, string(data))
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Result == nil {
		return &models.ImportResult{RunID: "import-run"}, nil
	}
	return m.Result, nil
}

// MockSchedulerService is a mock implementation of SchedulerService
type MockSchedulerService struct {
	mu      sync.Mutex
	Started bool
	Stopped bool
}

func (m *MockSchedulerService) Start(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Started = true
}

func (m *MockSchedulerService) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Stopped = true
}
