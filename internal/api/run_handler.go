package api

import (
	"encoding/csv"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/trendscanner-api/internal/models"
	"github.com/trendscanner-api/internal/service"
)

const recentRunsLimit = 20

// RunHandler handles pipeline run endpoints
type RunHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewRunHandler creates a new RunHandler
func NewRunHandler(services *service.Services, log zerolog.Logger) *RunHandler {
	return &RunHandler{
		services: services,
		log:      log.With().Str("handler", "run").Logger(),
	}
}

// ListRuns handles GET /v1/admin/runs
func (h *RunHandler) ListRuns(c *gin.Context) {
	runs, err := h.services.Run.ListRecent(c.Request.Context(), recentRunsLimit)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list runs")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list runs"})
		return
	}

	if runs == nil {
		runs = []*models.Run{}
	}

	c.JSON(http.StatusOK, gin.H{"runs": runs, "count": len(runs)})
}

// GetRun handles GET /v1/admin/runs/:run_id
func (h *RunHandler) GetRun(c *gin.Context) {
	runID, ok := pathID(c, "run_id", "run not found")
	if !ok {
		return
	}

	run, err := h.services.Run.GetRun(c.Request.Context(), runID)
	if err != nil {
		h.log.Error().Err(err).Str("run_id", runID).Msg("Failed to get run")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get run"})
		return
	}
	if run == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
		return
	}

	c.JSON(http.StatusOK, run)
}

// GetRunErrors handles GET /v1/admin/runs/:run_id/errors?format=json|csv
func (h *RunHandler) GetRunErrors(c *gin.Context) {
	runID, ok := pathID(c, "run_id", "run not found")
	if !ok {
		return
	}

	run, err := h.services.Run.GetRun(c.Request.Context(), runID)
	if err != nil {
		h.log.Error().Err(err).Str("run_id", runID).Msg("Failed to get run errors")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get errors"})
		return
	}
	if run == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
		return
	}

	if c.Query("format") == "csv" {
		c.Header("Content-Type", "text/csv")
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=run_errors_%s.csv", runID))
		writer := csv.NewWriter(c.Writer)
		writer.Write([]string{"keyword", "reason", "message"})
		for _, e := range run.Errors {
			writer.Write([]string{e.Keyword, string(e.Reason), e.Message})
		}
		writer.Flush()
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"runId":      runID,
		"errorCount": len(run.Errors),
		"errors":     run.Errors,
	})
}
