package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/trendscanner-api/internal/models"
	"github.com/trendscanner-api/internal/service"
)

// PostHandler handles post endpoints
type PostHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(services *service.Services, log zerolog.Logger) *PostHandler {
	return &PostHandler{
		services: services,
		log:      log.With().Str("handler", "post").Logger(),
	}
}

// ListPosts handles GET /v1/posts?page=...&limit=...
func (h *PostHandler) ListPosts(c *gin.Context) {
	page, err := queryInt(c, "page", 1)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "page must be a positive integer"})
		return
	}
	limit, err := queryInt(c, "limit", service.DefaultPageLimit)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
		return
	}

	result, err := h.services.Post.List(c.Request.Context(), page, limit)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list posts")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list posts"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetPost handles GET /v1/posts/:slug
func (h *PostHandler) GetPost(c *gin.Context) {
	slug := c.Param("slug")

	post, err := h.services.Post.GetBySlug(c.Request.Context(), slug)
	if err != nil {
		h.log.Error().Err(err).Str("slug", slug).Msg("Failed to get post")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get post"})
		return
	}
	if post == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "post not found"})
		return
	}

	c.JSON(http.StatusOK, post)
}

// LikePost handles POST /v1/posts/:id/like
// Body: {"action": "like" | "unlike"}
func (h *PostHandler) LikePost(c *gin.Context) {
	id, ok := pathID(c, "id", "post not found")
	if !ok {
		return
	}

	var req struct {
		Action models.LikeAction `json:"action"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "request body must be JSON with action"})
		return
	}

	likes, err := h.services.Post.Like(c.Request.Context(), id, req.Action)
	switch {
	case errors.Is(err, service.ErrInvalidLikeAction):
		c.JSON(http.StatusBadRequest, gin.H{"error": "action must be like or unlike"})
		return
	case errors.Is(err, service.ErrPostNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "post not found"})
		return
	case err != nil:
		h.log.Error().Err(err).Str("post_id", id).Msg("Failed to update likes")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update likes"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"likes": likes})
}

// AdminGetPost handles GET /v1/admin/posts/:id
func (h *PostHandler) AdminGetPost(c *gin.Context) {
	id, ok := pathID(c, "id", "post not found")
	if !ok {
		return
	}

	post, err := h.services.Post.Get(c.Request.Context(), id)
	if err != nil {
		h.log.Error().Err(err).Str("post_id", id).Msg("Failed to get post")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get post"})
		return
	}
	if post == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "post not found"})
		return
	}

	c.JSON(http.StatusOK, post)
}

// CreatePost handles POST /v1/admin/posts
func (h *PostHandler) CreatePost(c *gin.Context) {
	var input models.PostInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	post, err := h.services.Post.Create(c.Request.Context(), input)
	if errors.Is(err, service.ErrInvalidPost) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to create post")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create post"})
		return
	}

	c.JSON(http.StatusCreated, post)
}

// UpdatePost handles PUT /v1/admin/posts/:id
func (h *PostHandler) UpdatePost(c *gin.Context) {
	id, ok := pathID(c, "id", "post not found")
	if !ok {
		return
	}

	var input models.PostInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	post, err := h.services.Post.Update(c.Request.Context(), id, input)
	switch {
	case errors.Is(err, service.ErrInvalidPost):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case errors.Is(err, service.ErrPostNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "post not found"})
		return
	case err != nil:
		h.log.Error().Err(err).Str("post_id", id).Msg("Failed to update post")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update post"})
		return
	}

	c.JSON(http.StatusOK, post)
}

// DeletePost handles DELETE /v1/admin/posts/:id
func (h *PostHandler) DeletePost(c *gin.Context) {
	id, ok := pathID(c, "id", "post not found")
	if !ok {
		return
	}

	err := h.services.Post.Delete(c.Request.Context(), id)
	if errors.Is(err, service.ErrPostNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "post not found"})
		return
	}
	if err != nil {
		h.log.Error().Err(err).Str("post_id", id).Msg("Failed to delete post")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete post"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "post deleted"})
}

// Dashboard handles GET /v1/admin/dashboard
func (h *PostHandler) Dashboard(c *gin.Context) {
	dash, err := h.services.Post.Dashboard(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to build dashboard")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build dashboard"})
		return
	}

	c.JSON(http.StatusOK, dash)
}

// queryInt parses a positive integer query parameter
func queryInt(c *gin.Context, name string, defaultValue int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 1 {
		return 0, errors.New(name + " must be a positive integer")
	}
	return value, nil
}
