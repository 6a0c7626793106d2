package handler

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vik-srinivasan/genie-compliance/internal/models"
)

// Analyzer is the service surface the HTTP layer depends on.
type Analyzer interface {
	ClassifySingle(ctx context.Context, code string) (models.ClassifyResponse, error)
	Chat(ctx context.Context, message, code, status string) (string, error)
	ClassifyBatch(ctx context.Context, snippets []models.SnippetInput) (string, error)
	GetJobStatus(jobID string) (*models.Job, error)
	GetAllClassifications() ([]*models.StoredClassification, error)
}

// Handler handles HTTP requests
type Handler struct {
	analyzer Analyzer
	logger   *zap.Logger
}

// NewHandler creates a new API handler
func NewHandler(analyzer Analyzer, logger *zap.Logger) *Handler {
	return &Handler{
		analyzer: analyzer,
		logger:   logger,
	}
}

// RegisterRoutes registers all API routes
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")
	{
		api.POST("/classify", h.Classify)
		api.POST("/classify/batch", h.ClassifyBatch)
		api.POST("/chat", h.Chat)
		api.GET("/jobs/:id", h.GetJobStatus)

		api.GET("/classifications", h.GetAllClassifications)
		api.GET("/export/csv", h.ExportCSV)
	}

	// Health check
	r.GET("/health", h.HealthCheck)
}

// Classify handles POST /api/v1/classify
func (h *Handler) Classify(c *gin.Context) {
	var req models.ClassifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if strings.TrimSpace(req.Code) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no contract code provided"})
		return
	}

	result, err := h.analyzer.ClassifySingle(c.Request.Context(), req.Code)
	if err != nil {
		h.logger.Error("Failed to classify", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "classification failed"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// Chat handles POST /api/v1/chat
func (h *Handler) Chat(c *gin.Context) {
	var req models.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reply, err := h.analyzer.Chat(c.Request.Context(), req.Message, req.Code, req.Status)
	if err != nil {
		h.logger.Error("Chat failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "chat failed"})
		return
	}

	c.JSON(http.StatusOK, models.ChatResponse{Message: reply})
}

// ClassifyBatch handles POST /api/v1/classify/batch
func (h *Handler) ClassifyBatch(c *gin.Context) {
	var req models.BatchClassifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	jobID, err := h.analyzer.ClassifyBatch(c.Request.Context(), req.Snippets)
	if err != nil {
		h.logger.Error("Failed to start batch job", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to start batch job"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"job_id":  jobID,
		"status":  "pending",
		"message": "Batch classification started. Check /api/v1/jobs/" + jobID + " for status",
	})
}

// GetJobStatus handles GET /api/v1/jobs/:id
func (h *Handler) GetJobStatus(c *gin.Context) {
	jobID := c.Param("id")

	job, err := h.analyzer.GetJobStatus(jobID)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
			return
		}
		h.logger.Error("Failed to get job", zap.String("job_id", jobID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get job"})
		return
	}

	c.JSON(http.StatusOK, job)
}

// GetAllClassifications handles GET /api/v1/classifications
func (h *Handler) GetAllClassifications(c *gin.Context) {
	classifications, err := h.analyzer.GetAllClassifications()
	if err != nil {
		h.logger.Error("Failed to get classifications", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get classifications"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"classifications": classifications,
		"total":           len(classifications),
	})
}

// ExportCSV exports stored classifications to CSV
func (h *Handler) ExportCSV(c *gin.Context) {
	classifications, err := h.analyzer.GetAllClassifications()
	if err != nil {
		h.logger.Error("Failed to export CSV", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", "attachment; filename=classifications.csv")

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	writer.Write([]string{"id", "code", "status", "reasoning", "evidence_summary", "model_version", "classified_at"})

	for _, cls := range classifications {
		writer.Write([]string{
			fmt.Sprintf("%d", cls.ID),
			cls.Code,
			string(cls.Status),
			cls.Reasoning,
			cls.EvidenceSummary,
			cls.ModelVersion,
			cls.ClassifiedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}
}

// HealthCheck returns service health
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "genie-compliance",
		"version": "1.0.0",
	})
}
