package api

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/trendscanner-api/internal/config"
	"github.com/trendscanner-api/internal/service"
)

// ImportHandler handles keyword file imports
type ImportHandler struct {
	services *service.Services
	cfg      *config.Config
	log      zerolog.Logger
}

// NewImportHandler creates a new ImportHandler
func NewImportHandler(services *service.Services, cfg *config.Config, log zerolog.Logger) *ImportHandler {
	return &ImportHandler{
		services: services,
		cfg:      cfg,
		log:      log.With().Str("handler", "import").Logger(),
	}
}

// ImportKeywords handles POST /v1/admin/keywords/import
// Accepts a multipart "file" upload in CSV or NDJSON format
func (h *ImportHandler) ImportKeywords(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.cfg.Import.MaxUploadSize+multipartOverhead)

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": h.tooLargeMessage()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "file upload is required"})
		return
	}
	defer file.Close()

	if header.Size > h.cfg.Import.MaxUploadSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": h.tooLargeMessage()})
		return
	}

	format := c.PostForm("format")
	if format == "" {
		format = formatFromExtension(header.Filename)
	}
	if format != service.FormatCSV && format != service.FormatNDJSON {
		c.JSON(http.StatusBadRequest, gin.H{"error": "keyword import requires a CSV or NDJSON file"})
		return
	}

	result, err := h.services.Import.ImportKeywords(c.Request.Context(), file, format)
	if err != nil {
		if errors.Is(err, service.ErrInvalidImportFile) || errors.Is(err, service.ErrUnsupportedFormat) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.log.Error().Err(err).Str("file", header.Filename).Msg("Keyword import failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to import keywords"})
		return
	}

	h.log.Info().
		Str("run_id", result.RunID).
		Str("file", header.Filename).
		Int64("size_bytes", header.Size).
		Int("inserted", result.Inserted).
		Msg("Keyword file imported")

	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("%d keywords imported", result.Inserted),
		"result":  result,
	})
}

func (h *ImportHandler) tooLargeMessage() string {
	return fmt.Sprintf("file too large, max size is %d MB", h.cfg.Import.MaxUploadSize/(1024*1024))
}

// multipartOverhead leaves room for multipart boundaries and form fields
const multipartOverhead = 64 * 1024

func formatFromExtension(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return service.FormatCSV
	case ".ndjson", ".jsonl":
		return service.FormatNDJSON
	default:
		return ""
	}
}
