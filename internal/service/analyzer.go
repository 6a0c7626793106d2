// Package service holds the web-facing business logic: classify submitted
// code with the worksheet classifier, answer follow-up questions, and track
// async batch jobs.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vik-srinivasan/genie-compliance/internal/classifier"
	"github.com/vik-srinivasan/genie-compliance/internal/llm"
	"github.com/vik-srinivasan/genie-compliance/internal/models"
	"github.com/vik-srinivasan/genie-compliance/internal/repository"
)

const chatSystemPrompt = `You are a helpful Solidity security expert assistant. Your role is to help developers fix unsafe smart contracts.

When a contract is marked as UNSAFE, help the user understand the issues and provide specific, actionable fixes.
When a contract is marked as SAFE, you can still help with improvements or answer questions about the code.

Be concise, practical, and provide code examples when relevant.`

const chatUserTemplate = `Contract Status: %s

Contract Code:
` + "```solidity\n%s\n```" + `

User Question: %s

Please provide helpful guidance to fix or improve this contract.`

// WorksheetClassifier is the slice of the worksheet classifier the web
// service needs.
type WorksheetClassifier interface {
	Classify(ctx context.Context, code string) (*classifier.WorksheetResult, error)
	ModelVersion() string
}

// ChatOptions are the sampling parameters for follow-up answers.
type ChatOptions struct {
	Temperature float32
	MaxTokens   int
}

// Analyzer handles classification and chat for the web service.
type Analyzer struct {
	classifier WorksheetClassifier
	chat       llm.Client
	chatOpts   ChatOptions
	repo       *repository.ClassificationRepository
	logger     *zap.Logger
}

// NewAnalyzer creates the analyzer service.
func NewAnalyzer(
	cls WorksheetClassifier,
	chat llm.Client,
	chatOpts ChatOptions,
	repo *repository.ClassificationRepository,
	logger *zap.Logger,
) *Analyzer {
	return &Analyzer{
		classifier: cls,
		chat:       chat,
		chatOpts:   chatOpts,
		repo:       repo,
		logger:     logger,
	}
}

// ClassifySingle classifies one submitted snippet and persists the result.
func (a *Analyzer) ClassifySingle(ctx context.Context, code string) (models.ClassifyResponse, error) {
	result, err := a.classifier.Classify(ctx, code)
	if err != nil {
		return models.ClassifyResponse{}, fmt.Errorf("worksheet classification failed: %w", err)
	}

	stored := &models.StoredClassification{
		Code:            code,
		Status:          result.Status,
		Reasoning:       result.Reasoning,
		EvidenceSummary: result.EvidenceSummary,
		ModelVersion:    a.classifier.ModelVersion(),
		ClassifiedAt:    time.Now(),
	}
	if err := a.repo.SaveClassification(stored); err != nil {
		return models.ClassifyResponse{}, fmt.Errorf("failed to save classification: %w", err)
	}

	a.logger.Info("Code classified",
		zap.Int64("id", stored.ID),
		zap.String("status", string(stored.Status)))

	return models.ClassifyResponse{
		Status:          result.Status,
		Reasoning:       result.Reasoning,
		EvidenceSummary: result.EvidenceSummary,
		Evidence:        result.Evidence,
	}, nil
}

// Chat answers a follow-up question with the snippet and its prior verdict
// as context. The server keeps no conversation state; the client sends the
// context with every call.
func (a *Analyzer) Chat(ctx context.Context, message, code, status string) (string, error) {
	if status == "" {
		status = string(models.VerdictUnknown)
	}

	reply, err := a.chat.Complete(ctx, llm.Request{
		System:      chatSystemPrompt,
		User:        fmt.Sprintf(chatUserTemplate, strings.ToUpper(status), code, message),
		Temperature: a.chatOpts.Temperature,
		MaxTokens:   a.chatOpts.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	return reply, nil
}

// ClassifyBatch starts async batch classification and returns the job id.
func (a *Analyzer) ClassifyBatch(ctx context.Context, snippets []models.SnippetInput) (string, error) {
	jobID := uuid.New().String()

	job := &models.Job{
		ID:         jobID,
		Status:     "pending",
		TotalCount: len(snippets),
		CreatedAt:  time.Now(),
	}

	if err := a.repo.CreateJob(job); err != nil {
		return "", fmt.Errorf("failed to create job: %w", err)
	}

	go a.processBatchJob(jobID, snippets)

	return jobID, nil
}

// processBatchJob classifies a batch sequentially. One snippet's failure
// never aborts the batch.
func (a *Analyzer) processBatchJob(jobID string, snippets []models.SnippetInput) {
	ctx := context.Background()

	job, err := a.repo.GetJob(jobID)
	if err != nil {
		a.logger.Error("Failed to get job", zap.String("job_id", jobID), zap.Error(err))
		return
	}

	job.Status = "processing"
	a.repo.UpdateJob(job)

	for i, snippet := range snippets {
		if _, err := a.ClassifySingle(ctx, snippet.Code); err != nil {
			a.logger.Error("Failed to classify snippet in batch",
				zap.String("job_id", jobID),
				zap.Int("index", i),
				zap.Error(err))
			job.FailedCount++
		} else {
			job.ProcessedCount++
		}

		a.repo.UpdateJob(job)
	}

	job.Status = "completed"
	completedAt := time.Now()
	job.CompletedAt = &completedAt
	a.repo.UpdateJob(job)

	a.logger.Info("Batch job completed",
		zap.String("job_id", jobID),
		zap.Int("processed", job.ProcessedCount),
		zap.Int("failed", job.FailedCount))
}

// GetJobStatus returns job status.
func (a *Analyzer) GetJobStatus(jobID string) (*models.Job, error) {
	return a.repo.GetJob(jobID)
}

// GetAllClassifications returns all stored classifications.
func (a *Analyzer) GetAllClassifications() ([]*models.StoredClassification, error) {
	return a.repo.GetAllClassifications()
}
