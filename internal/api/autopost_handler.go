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
)

// AutoPostHandler handles the auto-post trigger
type AutoPostHandler struct {
	services *service.Services
	cfg      *config.Config
	log      zerolog.Logger
}

// NewAutoPostHandler creates a new AutoPostHandler
func NewAutoPostHandler(services *service.Services, cfg *config.Config, log zerolog.Logger) *AutoPostHandler {
	return &AutoPostHandler{
		services: services,
		cfg:      cfg,
		log:      log.With().Str("handler", "autopost").Logger(),
	}
}

// AutoGenerate handles POST /v1/admin/posts/auto-generate
// Body: {"keywordCount": 1..5}
func (h *AutoPostHandler) AutoGenerate(c *gin.Context) {
	var req models.AutoPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "request body must be JSON with keywordCount"})
		return
	}

	// The whole run, including every external call, shares one budget
	ctx, cancel := contextWithTimeout(c, h.cfg.AutoPost.Timeout)
	defer cancel()

	result, err := h.services.AutoPost.Generate(ctx, req.KeywordCount)
	switch {
	case errors.Is(err, service.ErrInvalidKeywordCount):
		c.JSON(http.StatusBadRequest, gin.H{"error": "keywordCount must be between 1 and 5"})
		return
	case errors.Is(err, service.ErrInsufficientKeywords):
		c.JSON(http.StatusBadRequest, gin.H{"error": "not enough unused keywords"})
		return
	case errors.Is(err, service.ErrGenerationFailed):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate any posts"})
		return
	case err != nil:
		h.log.Error().Err(err).Int("keyword_count", req.KeywordCount).Msg("Auto-post failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "auto-post failed"})
		return
	}

	posts := result.Posts()
	c.JSON(http.StatusOK, models.AutoPostResponse{
		Message: fmt.Sprintf("%d posts generated", len(posts)),
		Count:   len(posts),
		Posts:   posts,
		RunID:   result.RunID,
	})
}
