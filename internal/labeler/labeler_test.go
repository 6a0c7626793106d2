package labeler

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vik-srinivasan/genie-compliance/internal/llm"
	"github.com/vik-srinivasan/genie-compliance/internal/models"
	"github.com/vik-srinivasan/genie-compliance/internal/store"
)

type stubClient struct {
	fn func(req llm.Request) (string, error)
}

func (s *stubClient) Complete(_ context.Context, req llm.Request) (string, error) {
	return s.fn(req)
}

func (s *stubClient) ModelVersion() string { return "stub" }

func TestParseBinaryVerdict(t *testing.T) {
	v, err := ParseBinaryVerdict("SAFE")
	require.NoError(t, err)
	assert.Equal(t, models.VerdictSafe, v)

	v, err = ParseBinaryVerdict("  unsafe\n")
	require.NoError(t, err)
	assert.Equal(t, models.VerdictUnsafe, v)

	// UNSAFE must win even though the word contains SAFE.
	v, err = ParseBinaryVerdict("The function is UNSAFE")
	require.NoError(t, err)
	assert.Equal(t, models.VerdictUnsafe, v)

	_, err = ParseBinaryVerdict("I cannot tell")
	require.Error(t, err)
}

func TestRunWritesLabeledTable(t *testing.T) {
	dir := t.TempDir()
	snippetsPath := filepath.Join(dir, "snippets.csv")
	labeledPath := filepath.Join(dir, "labeled.csv")
	metricsPath := filepath.Join(dir, "metrics.json")

	require.NoError(t, store.WriteSnippets(snippetsPath, []models.Snippet{
		{ID: 0, Code: "function transfer() { require(balances[msg.sender] >= amount); }"},
		{ID: 1, Code: "function transfer() { balances[to] += amount; }"},
	}))

	// Deterministic judge: vote SAFE when the balance check is present.
	client := &stubClient{fn: func(req llm.Request) (string, error) {
		if strings.Contains(req.User, "require(balances[msg.sender] >= amount)") {
			return "SAFE", nil
		}
		return "UNSAFE", nil
	}}

	lab := New(client, Options{
		MaxAttempts: 2,
		MaxTokens:   10,
		InputPath:   snippetsPath,
		OutputPath:  labeledPath,
		MetricsPath: metricsPath,
	}, zap.NewNop())

	require.NoError(t, lab.Run(context.Background()))

	records, err := store.ReadLabelRecords(labeledPath)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, models.VerdictSafe, records[0].FinalLabel)
	assert.Equal(t, 1.0, records[0].Confidence)
	assert.False(t, records[0].NeedsReview)

	assert.Equal(t, models.VerdictUnsafe, records[1].FinalLabel)
	assert.Equal(t, 1.0, records[1].Confidence)
}

func TestRunMarksUnresolvedRows(t *testing.T) {
	dir := t.TempDir()
	snippetsPath := filepath.Join(dir, "snippets.csv")
	labeledPath := filepath.Join(dir, "labeled.csv")
	metricsPath := filepath.Join(dir, "metrics.json")

	require.NoError(t, store.WriteSnippets(snippetsPath, []models.Snippet{
		{ID: 0, Code: "function transfer() {}"},
	}))

	calls := 0
	client := &stubClient{fn: func(req llm.Request) (string, error) {
		calls++
		return "no verdict here", nil
	}}

	lab := New(client, Options{
		MaxAttempts: 2,
		InputPath:   snippetsPath,
		OutputPath:  labeledPath,
		MetricsPath: metricsPath,
	}, zap.NewNop())

	require.NoError(t, lab.Run(context.Background()))

	// Three sources, two attempts each.
	assert.Equal(t, 6, calls)

	records, err := store.ReadLabelRecords(labeledPath)
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, models.VerdictUnknown, rec.FinalLabel)
	assert.Equal(t, models.VerdictUnknown, rec.LabelA)
	assert.Equal(t, 0.0, rec.Confidence)
	assert.True(t, rec.NeedsReview)
}

func TestComputeMetrics(t *testing.T) {
	records := []models.LabelRecord{
		{FinalLabel: models.VerdictSafe, Confidence: 1.0},
		{FinalLabel: models.VerdictSafe, Confidence: 1.0},
		{FinalLabel: models.VerdictUnsafe, Confidence: 2.0 / 3.0},
		{FinalLabel: models.VerdictUnknown, NeedsReview: true},
	}

	m := ComputeMetrics(records)
	assert.Equal(t, 4, m.NSnippets)
	assert.Equal(t, 0.5, m.AgreementRate)
	assert.Equal(t, 1, m.NeedsReviewCount)
	assert.InDelta(t, (1.0+1.0+2.0/3.0)/4.0, m.AverageConfidence, 0.001)
}
