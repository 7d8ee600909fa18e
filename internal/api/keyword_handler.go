package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/trendscanner-api/internal/config"
	"github.com/trendscanner-api/internal/models"
	"github.com/trendscanner-api/internal/service"
	"github.com/trendscanner-api/internal/trends"
)

// KeywordHandler handles keyword endpoints
type KeywordHandler struct {
	services *service.Services
	cfg      *config.Config
	log      zerolog.Logger
}

// NewKeywordHandler creates a new KeywordHandler
func NewKeywordHandler(services *service.Services, cfg *config.Config, log zerolog.Logger) *KeywordHandler {
	return &KeywordHandler{
		services: services,
		cfg:      cfg,
		log:      log.With().Str("handler", "keyword").Logger(),
	}
}

// Trending handles GET /v1/keywords/trending
func (h *KeywordHandler) Trending(c *gin.Context) {
	keywords, err := h.services.Keyword.Trending(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to get trending keywords")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get trending keywords"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"keywords": nonNilKeywords(keywords)})
}

// ListKeywords handles GET /v1/admin/keywords
func (h *KeywordHandler) ListKeywords(c *gin.Context) {
	keywords, err := h.services.Keyword.List(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list keywords")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list keywords"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"keywords": nonNilKeywords(keywords),
		"count":    len(keywords),
	})
}

// Collect handles POST /v1/admin/keywords/collect
func (h *KeywordHandler) Collect(c *gin.Context) {
	ctx, cancel := contextWithTimeout(c, h.cfg.AutoPost.Timeout)
	defer cancel()

	result, err := h.services.Keyword.Collect(ctx)
	if errors.Is(err, trends.ErrNoKeywords) {
		c.JSON(http.StatusNotFound, gin.H{"error": "no trending keywords found"})
		return
	}
	if err != nil {
		h.log.Error().Err(err).Msg("Keyword collection failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to collect trending keywords"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  fmt.Sprintf("%d trending keywords collected", result.Fetched),
		"count":    result.Fetched,
		"inserted": result.Inserted,
		"runId":    result.RunID,
	})
}

// DeleteKeyword handles DELETE /v1/admin/keywords/:id
func (h *KeywordHandler) DeleteKeyword(c *gin.Context) {
	id, ok := pathID(c, "id", "keyword not found")
	if !ok {
		return
	}

	deleted, err := h.services.Keyword.Delete(c.Request.Context(), id)
	if err != nil {
		h.log.Error().Err(err).Str("keyword_id", id).Msg("Failed to delete keyword")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete keyword"})
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "keyword not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "keyword deleted"})
}

// DeleteAllKeywords handles DELETE /v1/admin/keywords
func (h *KeywordHandler) DeleteAllKeywords(c *gin.Context) {
	count, err := h.services.Keyword.DeleteAll(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to delete keywords")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete keywords"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "all keywords deleted",
		"deletedCount": count,
	})
}

func nonNilKeywords(keywords []*models.Keyword) []*models.Keyword {
	if keywords == nil {
		return []*models.Keyword{}
	}
	return keywords
}
