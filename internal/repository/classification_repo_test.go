package repository

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vik-srinivasan/genie-compliance/internal/models"
)

func newTestRepo(t *testing.T) *ClassificationRepository {
	t.Helper()
	repo, err := NewClassificationRepository(filepath.Join(t.TempDir(), "test.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestSaveAndListClassifications(t *testing.T) {
	repo := newTestRepo(t)

	first := &models.StoredClassification{
		Code:            "function a() {}",
		Status:          models.VerdictUnsafe,
		Reasoning:       "no balance check",
		EvidenceSummary: "balance_check: missing",
		ModelVersion:    "gpt-4o-mini",
		ClassifiedAt:    time.Now().Add(-time.Minute),
	}
	second := &models.StoredClassification{
		Code:         "function b() { require(x >= y); }",
		Status:       models.VerdictSafe,
		Reasoning:    "balance check present",
		ModelVersion: "gpt-4o-mini",
		ClassifiedAt: time.Now(),
	}

	require.NoError(t, repo.SaveClassification(first))
	require.NoError(t, repo.SaveClassification(second))
	assert.NotZero(t, first.ID)
	assert.NotEqual(t, first.ID, second.ID)

	all, err := repo.GetAllClassifications()
	require.NoError(t, err)
	require.Len(t, all, 2)

	// Newest first.
	assert.Equal(t, second.ID, all[0].ID)
	assert.Equal(t, models.VerdictSafe, all[0].Status)
	assert.Equal(t, "no balance check", all[1].Reasoning)
}

func TestJobLifecycle(t *testing.T) {
	repo := newTestRepo(t)

	job := &models.Job{
		ID:         "job-1",
		Status:     "pending",
		TotalCount: 3,
		CreatedAt:  time.Now(),
	}
	require.NoError(t, repo.CreateJob(job))

	got, err := repo.GetJob("job-1")
	require.NoError(t, err)
	assert.Equal(t, "pending", got.Status)
	assert.Equal(t, 3, got.TotalCount)
	assert.Nil(t, got.CompletedAt)

	got.Status = "completed"
	got.ProcessedCount = 2
	got.FailedCount = 1
	completed := time.Now()
	got.CompletedAt = &completed
	require.NoError(t, repo.UpdateJob(got))

	got, err = repo.GetJob("job-1")
	require.NoError(t, err)
	assert.Equal(t, "completed", got.Status)
	assert.Equal(t, 2, got.ProcessedCount)
	assert.Equal(t, 1, got.FailedCount)
	assert.NotNil(t, got.CompletedAt)
}

func TestGetJobMissing(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.GetJob("absent")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}
