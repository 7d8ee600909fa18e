package mocks

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/trendscanner-api/internal/models"
	"github.com/trendscanner-api/internal/repository"
)

// Verify interface compliance
var (
	_ repository.KeywordRepository = (*MockKeywordRepository)(nil)
	_ repository.PostRepository    = (*MockPostRepository)(nil)
	_ repository.RunRepository     = (*MockRunRepository)(nil)
)

// MockKeywordRepository is an in-memory implementation of KeywordRepository
type MockKeywordRepository struct {
	mu            sync.Mutex
	Keywords      map[string]*models.Keyword
	ListError     error
	MarkUsedError error
	MarkUsedCalls int
	UpsertError   error
}

func NewMockKeywordRepository() *MockKeywordRepository {
	return &MockKeywordRepository{
		Keywords: make(map[string]*models.Keyword),
	}
}

// Add stores keywords directly, bypassing uniqueness checks
func (m *MockKeywordRepository) Add(keywords ...*models.Keyword) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keywords {
		m.Keywords[k.ID] = k
	}
}

func (m *MockKeywordRepository) UpsertIfAbsent(ctx context.Context, keyword *models.Keyword) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpsertError != nil {
		return false, m.UpsertError
	}
	for _, k := range m.Keywords {
		if k.Keyword == keyword.Keyword {
			return false, nil
		}
	}
	stored := *keyword
	stored.Used = false
	m.Keywords[stored.ID] = &stored
	return true, nil
}

func (m *MockKeywordRepository) GetByID(ctx context.Context, id string) (*models.Keyword, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Keywords[id], nil
}

func (m *MockKeywordRepository) List(ctx context.Context) ([]*models.Keyword, error) {
	return m.filter(func(*models.Keyword) bool { return true })
}

func (m *MockKeywordRepository) ListUnused(ctx context.Context) ([]*models.Keyword, error) {
	return m.filter(func(k *models.Keyword) bool { return !k.Used })
}

func (m *MockKeywordRepository) ListSince(ctx context.Context, since time.Time, limit int) ([]*models.Keyword, error) {
	keywords, err := m.filter(func(k *models.Keyword) bool { return !k.CreatedAt.Before(since) })
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(keywords) > limit {
		keywords = keywords[:limit]
	}
	return keywords, nil
}

func (m *MockKeywordRepository) MarkUsed(ctx context.Context, id string, usedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MarkUsedCalls++
	if m.MarkUsedError != nil {
		return m.MarkUsedError
	}
	if k, ok := m.Keywords[id]; ok {
		k.Used = true
		k.UsedAt = &usedAt
	}
	return nil
}

func (m *MockKeywordRepository) Delete(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Keywords[id]; !ok {
		return false, nil
	}
	delete(m.Keywords, id)
	return true, nil
}

func (m *MockKeywordRepository) DeleteAll(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := int64(len(m.Keywords))
	m.Keywords = make(map[string]*models.Keyword)
	return n, nil
}

func (m *MockKeywordRepository) Count(ctx context.Context) (int, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	unused := 0
	for _, k := range m.Keywords {
		if !k.Used {
			unused++
		}
	}
	return len(m.Keywords), unused, nil
}

// StreamAll visits keywords oldest first
func (m *MockKeywordRepository) StreamAll(ctx context.Context, callback func(*models.Keyword) error) error {
	keywords, err := m.filter(func(*models.Keyword) bool { return true })
	if err != nil {
		return err
	}
	for i := len(keywords) - 1; i >= 0; i-- {
		if err := callback(keywords[i]); err != nil {
			return err
		}
	}
	return nil
}

// UsedCount returns how many keywords are flagged used
func (m *MockKeywordRepository) UsedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	used := 0
	for _, k := range m.Keywords {
		if k.Used {
			used++
		}
	}
	return used
}

// filter returns matching keywords newest first, ties broken by ID
func (m *MockKeywordRepository) filter(keep func(*models.Keyword) bool) ([]*models.Keyword, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListError != nil {
		return nil, m.ListError
	}
	var out []*models.Keyword
	for _, k := range m.Keywords {
		if keep(k) {
			out = append(out, k)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// MockPostRepository is an in-memory implementation of PostRepository
type MockPostRepository struct {
	mu          sync.Mutex
	Posts       map[string]*models.Post
	Order       []string
	CreateError error
	CreateCalls int
	ListOffsets []int
}

func NewMockPostRepository() *MockPostRepository {
	return &MockPostRepository{
		Posts: make(map[string]*models.Post),
	}
}

func (m *MockPostRepository) Create(ctx context.Context, post *models.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreateCalls++
	if m.CreateError != nil {
		return m.CreateError
	}
	m.Posts[post.ID] = post
	m.Order = append(m.Order, post.ID)
	return nil
}

func (m *MockPostRepository) Update(ctx context.Context, post *models.Post) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.Posts[post.ID]
	if !ok {
		return false, nil
	}
	stored.Title = post.Title
	stored.Content = post.Content
	stored.ImageURL = post.ImageURL
	stored.Tags = post.Tags
	stored.UpdatedAt = post.UpdatedAt
	return true, nil
}

func (m *MockPostRepository) Delete(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Posts[id]; !ok {
		return false, nil
	}
	delete(m.Posts, id)
	for i, existing := range m.Order {
		if existing == id {
			m.Order = append(m.Order[:i], m.Order[i+1:]...)
			break
		}
	}
	return true, nil
}

func (m *MockPostRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Posts[id], nil
}

func (m *MockPostRepository) GetBySlug(ctx context.Context, slug string) (*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.Order) - 1; i >= 0; i-- {
		if p := m.Posts[m.Order[i]]; p != nil && p.Slug == slug {
			return p, nil
		}
	}
	return nil, nil
}

// List returns posts in reverse insertion order
func (m *MockPostRepository) List(ctx context.Context, limit, offset int) ([]*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ListOffsets = append(m.ListOffsets, offset)
	var out []*models.Post
	for i := len(m.Order) - 1 - offset; i >= 0 && len(out) < limit; i-- {
		if p := m.Posts[m.Order[i]]; p != nil {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *MockPostRepository) IncrementViews(ctx context.Context, id string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.Posts[id]
	if !ok {
		return 0, nil
	}
	p.Views++
	return p.Views, nil
}

func (m *MockPostRepository) AdjustLikes(ctx context.Context, id string, delta int) (int, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.Posts[id]
	if !ok {
		return 0, false, nil
	}
	p.Likes += delta
	if p.Likes < 0 {
		p.Likes = 0
	}
	return p.Likes, true, nil
}

func (m *MockPostRepository) TopByViews(ctx context.Context, limit int) ([]models.PostViews, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var top []models.PostViews
	for _, id := range m.Order {
		p := m.Posts[id]
		top = append(top, models.PostViews{ID: p.ID, Title: p.Title, Slug: p.Slug, Views: p.Views})
	}
	sort.SliceStable(top, func(i, j int) bool { return top[i].Views > top[j].Views })
	if len(top) > limit {
		top = top[:limit]
	}
	return top, nil
}

func (m *MockPostRepository) ViewsByDate(ctx context.Context, since time.Time) ([]models.DailyViews, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sums := make(map[string]int)
	for _, p := range m.Posts {
		if p.CreatedAt.Before(since) {
			continue
		}
		sums[p.CreatedAt.UTC().Format(time.DateOnly)] += p.Views
	}
	days := make([]models.DailyViews, 0, len(sums))
	for date, views := range sums {
		days = append(days, models.DailyViews{Date: date, Views: views})
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date < days[j].Date })
	return days, nil
}

func (m *MockPostRepository) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Posts), nil
}

// StreamAll visits posts in insertion order
func (m *MockPostRepository) StreamAll(ctx context.Context, callback func(*models.Post) error) error {
	m.mu.Lock()
	posts := make([]*models.Post, 0, len(m.Order))
	for _, id := range m.Order {
		if p := m.Posts[id]; p != nil {
			posts = append(posts, p)
		}
	}
	m.mu.Unlock()

	for _, p := range posts {
		if err := callback(p); err != nil {
			return err
		}
	}
	return nil
}

// MockRunRepository is an in-memory implementation of RunRepository
type MockRunRepository struct {
	mu          sync.Mutex
	Runs        map[string]*models.Run
	Errors      map[string][]models.RunError
	CreateError error
}

func NewMockRunRepository() *MockRunRepository {
	return &MockRunRepository{
		Runs:   make(map[string]*models.Run),
		Errors: make(map[string][]models.RunError),
	}
}

func (m *MockRunRepository) Create(ctx context.Context, run *models.Run) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateError != nil {
		return m.CreateError
	}
	stored := *run
	m.Runs[run.ID] = &stored
	return nil
}

func (m *MockRunRepository) Update(ctx context.Context, run *models.Run) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := *run
	m.Runs[run.ID] = &stored
	return nil
}

func (m *MockRunRepository) GetByID(ctx context.Context, id string) (*models.Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Runs[id], nil
}

func (m *MockRunRepository) ListRecent(ctx context.Context, limit int) ([]*models.Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	runs := make([]*models.Run, 0, len(m.Runs))
	for _, r := range m.Runs {
		runs = append(runs, r)
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].CreatedAt.After(runs[j].CreatedAt) })
	if len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

func (m *MockRunRepository) AddErrors(ctx context.Context, runID string, errors []models.RunError) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Errors[runID] = append(m.Errors[runID], errors...)
	return nil
}

func (m *MockRunRepository) GetErrors(ctx context.Context, runID string) ([]models.RunError, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Errors[runID], nil
}

// NewMockRepositories bundles fresh in-memory repositories
func NewMockRepositories() (*repository.Repositories, *MockKeywordRepository, *MockPostRepository, *MockRunRepository) {
	keywords := NewMockKeywordRepository()
	posts := NewMockPostRepository()
	runs := NewMockRunRepository()
	return &repository.Repositories{Keyword: keywords, Post: posts, Run: runs}, keywords, posts, runs
}
