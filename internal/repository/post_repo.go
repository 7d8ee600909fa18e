package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/lib/pq"
	"github.com/trendscanner-api/internal/database"
	"github.com/trendscanner-api/internal/models"
)

const postColumns = `id, title, slug, content, image_url, tags, metadata, views, likes, created_at, updated_at`

// postRepo is the concrete implementation of PostRepository
type postRepo struct {
	db *database.DB
}

// NewPostRepo creates a new post repository
func NewPostRepo(db *database.DB) PostRepository {
	return &postRepo{db: db}
}

// Create inserts a new post
func (r *postRepo) Create(ctx context.Context, post *models.Post) error {
	metadataJSON, err := json.Marshal(post.Metadata)
	if err != nil {
		return err
	}
	tags := post.Tags
	if tags == nil {
		tags = []string{}
	}

	query := `
		INSERT INTO posts (id, title, slug, content, image_url, tags, metadata, views, likes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err = r.db.ExecContext(ctx, query,
		post.ID, post.Title, post.Slug, post.Content, post.ImageURL,
		pq.Array(tags), metadataJSON, post.Views, post.Likes,
		post.CreatedAt, time.Now(),
	)
	return err
}

// Update replaces the editable fields of a post, reporting whether it existed.
// The slug and counters are left untouched.
func (r *postRepo) Update(ctx context.Context, post *models.Post) (bool, error) {
	tags := post.Tags
	if tags == nil {
		tags = []string{}
	}

	result, err := r.db.ExecContext(ctx,
		"UPDATE posts SET title = $1, content = $2, image_url = $3, tags = $4, updated_at = $5 WHERE id = $6",
		post.Title, post.Content, post.ImageURL, pq.Array(tags), post.UpdatedAt, post.ID,
	)
	if err != nil {
		return false, err
	}
	rows, _ := result.RowsAffected()
	return rows > 0, nil
}

// Delete removes a post, reporting whether it existed
func (r *postRepo) Delete(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM posts WHERE id = $1", id)
	if err != nil {
		return false, err
	}
	rows, _ := result.RowsAffected()
	return rows > 0, nil
}

// GetByID retrieves a post by ID
func (r *postRepo) GetByID(ctx context.Context, id string) (*models.Post, error) {
	return r.getOne(ctx, "SELECT "+postColumns+" FROM posts WHERE id = $1", id)
}

// GetBySlug retrieves the newest post with the given slug
func (r *postRepo) GetBySlug(ctx context.Context, slug string) (*models.Post, error) {
	return r.getOne(ctx, "SELECT "+postColumns+" FROM posts WHERE slug = $1 ORDER BY created_at DESC LIMIT 1", slug)
}

// List retrieves a page of posts, newest first
func (r *postRepo) List(ctx context.Context, limit, offset int) ([]*models.Post, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+postColumns+" FROM posts ORDER BY created_at DESC LIMIT $1 OFFSET $2",
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []*models.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

// IncrementViews bumps the view counter and returns the new value
func (r *postRepo) IncrementViews(ctx context.Context, id string) (int, error) {
	var views int
	err := r.db.QueryRowContext(ctx,
		"UPDATE posts SET views = views + 1 WHERE id = $1 RETURNING views", id,
	).Scan(&views)
	return views, err
}

// AdjustLikes adds delta to the like counter without going below zero.
// The bool result is false when the post does not exist.
func (r *postRepo) AdjustLikes(ctx context.Context, id string, delta int) (int, bool, error) {
	var likes int
	err := r.db.QueryRowContext(ctx,
		"UPDATE posts SET likes = GREATEST(likes + $1, 0), updated_at = $2 WHERE id = $3 RETURNING likes",
		delta, time.Now(), id,
	).Scan(&likes)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return likes, true, nil
}

// TopByViews returns the most viewed posts
func (r *postRepo) TopByViews(ctx context.Context, limit int) ([]models.PostViews, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, title, slug, views FROM posts ORDER BY views DESC, created_at DESC LIMIT $1", limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var top []models.PostViews
	for rows.Next() {
		var p models.PostViews
		if err := rows.Scan(&p.ID, &p.Title, &p.Slug, &p.Views); err != nil {
			return nil, err
		}
		top = append(top, p)
	}
	return top, rows.Err()
}

// ViewsByDate sums views per creation day (UTC) for posts created since the given time
func (r *postRepo) ViewsByDate(ctx context.Context, since time.Time) ([]models.DailyViews, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT to_char(created_at AT TIME ZONE 'UTC', 'YYYY-MM-DD') AS day, SUM(views)
		FROM posts
		WHERE created_at >= $1
		GROUP BY day
		ORDER BY day`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var days []models.DailyViews
	for rows.Next() {
		var d models.DailyViews
		if err := rows.Scan(&d.Date, &d.Views); err != nil {
			return nil, err
		}
		days = append(days, d)
	}
	return days, rows.Err()
}

// Count returns the total number of posts
func (r *postRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM posts").Scan(&count)
	return count, err
}

// StreamAll streams every post in creation order for export
func (r *postRepo) StreamAll(ctx context.Context, callback func(*models.Post) error) error {
	rows, err := r.db.QueryContext(ctx, "SELECT "+postColumns+" FROM posts ORDER BY created_at")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return err
		}
		if err := callback(post); err != nil {
			return err
		}
	}
	return rows.Err()
}

func (r *postRepo) getOne(ctx context.Context, query string, arg string) (*models.Post, error) {
	post, err := scanPost(r.db.QueryRowContext(ctx, query, arg))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return post, nil
}

func scanPost(row rowScanner) (*models.Post, error) {
	var post models.Post
	var metadataJSON []byte

	err := row.Scan(
		&post.ID, &post.Title, &post.Slug, &post.Content, &post.ImageURL,
		pq.Array(&post.Tags), &metadataJSON, &post.Views, &post.Likes,
		&post.CreatedAt, &post.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(metadataJSON) > 0 {
		if err := json.Unmarshal(metadataJSON, &post.Metadata); err != nil {
			return nil, err
		}
	}
	return &post, nil
}
