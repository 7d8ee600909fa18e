package models

import (
	"time"
)

// Post represents a published blog post
type Post struct {
	ID        string       `json:"id" db:"id"`
	Title     string       `json:"title" db:"title"`
	Slug      string       `json:"slug" db:"slug"`
	Content   string       `json:"content" db:"content"`
	ImageURL  string       `json:"imageUrl" db:"image_url"`
	Tags      []string     `json:"tags" db:"tags"`
	Metadata  PostMetadata `json:"metadata" db:"metadata"` // Stored as JSONB
	Views     int          `json:"views" db:"views"`
	Likes     int          `json:"likes" db:"likes"`
	CreatedAt time.Time    `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time    `json:"updatedAt" db:"updated_at"`
}

// PostMetadata records how a post came to exist
type PostMetadata struct {
	AutoGenerated bool     `json:"autoGenerated"`
	Keywords      []string `json:"keywords,omitempty"`
}

// PostSummary is the public view of a freshly generated post
type PostSummary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	ImageURL  string    `json:"imageUrl"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"createdAt"`
}

// Summary returns the public summary of the post
func (p *Post) Summary() PostSummary {
	return PostSummary{
		ID:        p.ID,
		Title:     p.Title,
		Content:   p.Content,
		ImageURL:  p.ImageURL,
		Tags:      p.Tags,
		CreatedAt: p.CreatedAt,
	}
}

// PostListItem is a post as shown in listings
type PostListItem struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Slug      string    `json:"slug"`
	Excerpt   string    `json:"excerpt"`
	ImageURL  string    `json:"imageUrl"`
	Tags      []string  `json:"tags"`
	Views     int       `json:"views"`
	Likes     int       `json:"likes"`
	CreatedAt time.Time `json:"createdAt"`
}

// PostDetail is a post with its content rendered to HTML
type PostDetail struct {
	Post
	ContentHTML string `json:"contentHtml"`
}

// PostPage is one page of a post listing
type PostPage struct {
	Posts []PostListItem `json:"posts"`
	Total int            `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}

// LikeAction is the requested change to a post's like counter
type LikeAction string

const (
	LikeActionLike   LikeAction = "like"
	LikeActionUnlike LikeAction = "unlike"
)

// PostViews is a post ranked by views
type PostViews struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Slug  string `json:"slug"`
	Views int    `json:"views"`
}

// PostInput is the body of an admin post create or update
type PostInput struct {
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	Tags     []string `json:"tags"`
	ImageURL string   `json:"imageUrl"`
}
