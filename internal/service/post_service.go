package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/trendscanner-api/internal/models"
	"github.com/trendscanner-api/internal/render"
	"github.com/trendscanner-api/internal/repository"
)

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
	// MaxPage keeps (page-1)*limit far from int overflow
	MaxPage = 100000

	excerptLength     = 160
	dashboardTopPosts = 5
	dashboardRuns     = 5
	dashboardViewDays = 7
)

// postService is the concrete implementation of PostService
type postService struct {
	repos *repository.Repositories
	log   zerolog.Logger
}

// newPostService creates a new PostService
func newPostService(repos *repository.Repositories, log zerolog.Logger) *postService {
	return &postService{
		repos: repos,
		log:   log.With().Str("service", "post").Logger(),
	}
}

// List returns one page of posts with plain-text excerpts, newest first.
// Out of range page and limit values are clamped.
func (s *postService) List(ctx context.Context, page, limit int) (*models.PostPage, error) {
	if page < 1 {
		page = 1
	}
	if page > MaxPage {
		page = MaxPage
	}
	if limit < 1 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}

	total, err := s.repos.Post.Count(ctx)
	if err != nil {
		return nil, err
	}
	posts, err := s.repos.Post.List(ctx, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}

	items := make([]models.PostListItem, 0, len(posts))
	for _, p := range posts {
		items = append(items, models.PostListItem{
			ID:        p.ID,
			Title:     p.Title,
			Slug:      p.Slug,
			Excerpt:   render.MarkdownExcerpt(p.Content, excerptLength),
			ImageURL:  p.ImageURL,
			Tags:      p.Tags,
			Views:     p.Views,
			Likes:     p.Likes,
			CreatedAt: p.CreatedAt,
		})
	}

	return &models.PostPage{Posts: items, Total: total, Page: page, Limit: limit}, nil
}

// GetBySlug returns the post with rendered HTML and counts one view.
// It returns nil when no post has the slug.
func (s *postService) GetBySlug(ctx context.Context, slug string) (*models.PostDetail, error) {
	post, err := s.repos.Post.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, nil
	}

	views, err := s.repos.Post.IncrementViews(ctx, post.ID)
	if err != nil {
		s.log.Error().Err(err).Str("post_id", post.ID).Msg("Failed to count view")
	} else {
		post.Views = views
	}

	return &models.PostDetail{Post: *post, ContentHTML: render.Markdown(post.Content)}, nil
}

// Like adds or removes one like and returns the new count
func (s *postService) Like(ctx context.Context, id string, action models.LikeAction) (int, error) {
	var delta int
	switch action {
	case models.LikeActionLike:
		delta = 1
	case models.LikeActionUnlike:
		delta = -1
	default:
		return 0, ErrInvalidLikeAction
	}

	likes, found, err := s.repos.Post.AdjustLikes(ctx, id, delta)
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, ErrPostNotFound
	}
	return likes, nil
}

// Get returns a post by ID without counting a view, or nil when missing
func (s *postService) Get(ctx context.Context, id string) (*models.Post, error) {
	return s.repos.Post.GetByID(ctx, id)
}

// Create stores a hand-written post
func (s *postService) Create(ctx context.Context, input models.PostInput) (*models.Post, error) {
	input, err := normalizePostInput(input)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	post := &models.Post{
		ID:        uuid.New().String(),
		Title:     input.Title,
		Content:   input.Content,
		ImageURL:  input.ImageURL,
		Tags:      input.Tags,
		CreatedAt: now,
		UpdatedAt: now,
	}
	post.Slug = postSlug(post.Title, "", post.ID)

	if err := s.repos.Post.Create(ctx, post); err != nil {
		return nil, err
	}

	s.log.Info().Str("post_id", post.ID).Str("slug", post.Slug).Msg("Post created by admin")
	return post, nil
}

// Update edits a post's title, content, tags and image. The slug is kept so
// existing links stay valid.
func (s *postService) Update(ctx context.Context, id string, input models.PostInput) (*models.Post, error) {
	input, err := normalizePostInput(input)
	if err != nil {
		return nil, err
	}

	post, err := s.repos.Post.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}

	post.Title = input.Title
	post.Content = input.Content
	post.Tags = input.Tags
	post.ImageURL = input.ImageURL
	post.UpdatedAt = time.Now()

	found, err := s.repos.Post.Update(ctx, post)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrPostNotFound
	}

	s.log.Info().Str("post_id", id).Msg("Post updated")
	return post, nil
}

// Delete removes a post
func (s *postService) Delete(ctx context.Context, id string) error {
	deleted, err := s.repos.Post.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrPostNotFound
	}
	s.log.Info().Str("post_id", id).Msg("Post deleted")
	return nil
}

func normalizePostInput(input models.PostInput) (models.PostInput, error) {
	input.Title = strings.TrimSpace(input.Title)
	input.Content = strings.TrimSpace(input.Content)
	input.ImageURL = strings.TrimSpace(input.ImageURL)
	if input.Title == "" || input.Content == "" {
		return input, ErrInvalidPost
	}

	tags := make([]string, 0, len(input.Tags))
	for _, t := range input.Tags {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	input.Tags = tags
	return input, nil
}

// Dashboard aggregates the admin overview
func (s *postService) Dashboard(ctx context.Context) (*models.Dashboard, error) {
	stats, err := s.Stats(ctx)
	if err != nil {
		return nil, err
	}
	top, err := s.repos.Post.TopByViews(ctx, dashboardTopPosts)
	if err != nil {
		return nil, err
	}
	daily, err := s.repos.Post.ViewsByDate(ctx, time.Now().AddDate(0, 0, -dashboardViewDays))
	if err != nil {
		return nil, err
	}
	runs, err := s.repos.Run.ListRecent(ctx, dashboardRuns)
	if err != nil {
		return nil, err
	}

	if top == nil {
		top = []models.PostViews{}
	}
	if daily == nil {
		daily = []models.DailyViews{}
	}
	if runs == nil {
		runs = []*models.Run{}
	}

	return &models.Dashboard{
		TotalPosts:     stats.Posts,
		TotalKeywords:  stats.Keywords,
		UnusedKeywords: stats.UnusedKeywords,
		TopPosts:       top,
		ViewsByDate:    daily,
		RecentRuns:     runs,
	}, nil
}

// Stats returns the post and keyword counters
func (s *postService) Stats(ctx context.Context) (*models.Stats, error) {
	posts, err := s.repos.Post.Count(ctx)
	if err != nil {
		return nil, err
	}
	total, unused, err := s.repos.Keyword.Count(ctx)
	if err != nil {
		return nil, err
	}
	return &models.Stats{Posts: posts, Keywords: total, UnusedKeywords: unused}, nil
}
