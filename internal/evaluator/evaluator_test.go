package evaluator

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vik-srinivasan/genie-compliance/internal/models"
	"github.com/vik-srinivasan/genie-compliance/internal/store"
)

func pairs(gold, predicted []models.Verdict) []Pair {
	out := make([]Pair, len(gold))
	for i := range gold {
		out[i] = Pair{Gold: gold[i], Predicted: predicted[i]}
	}
	return out
}

func TestComputeMetricsKnownCounts(t *testing.T) {
	safe := models.VerdictSafe
	unsafe := models.VerdictUnsafe

	// 4 TP, 4 TN, 1 FP, 1 FN: accuracy 0.8, precision 0.8, recall 0.8.
	gold := []models.Verdict{safe, safe, safe, safe, unsafe, unsafe, unsafe, unsafe, unsafe, safe}
	pred := []models.Verdict{safe, safe, safe, safe, unsafe, unsafe, unsafe, unsafe, safe, unsafe}

	m := ComputeMetrics(pairs(gold, pred))
	assert.Equal(t, 10, m.NExamples)
	assert.Equal(t, models.Confusion{TP: 4, TN: 4, FP: 1, FN: 1}, m.Confusion)
	assert.Equal(t, 0.8, m.Accuracy)
	assert.Equal(t, 0.8, m.PrecisionSafe)
	assert.Equal(t, 0.8, m.RecallSafe)
	assert.Equal(t, 0.8, m.F1Safe)
}

func TestComputeMetricsPerfect(t *testing.T) {
	safe := models.VerdictSafe
	unsafe := models.VerdictUnsafe

	gold := []models.Verdict{safe, unsafe, safe, unsafe}
	m := ComputeMetrics(pairs(gold, gold))
	assert.Equal(t, 1.0, m.Accuracy)
	assert.Equal(t, 1.0, m.F1Safe)
}

func TestComputeMetricsUnknownPredictionsOnlyHurtAccuracy(t *testing.T) {
	gold := []models.Verdict{models.VerdictSafe, models.VerdictUnsafe}
	pred := []models.Verdict{models.VerdictUnknown, models.VerdictUnknown}

	m := ComputeMetrics(pairs(gold, pred))
	assert.Equal(t, models.Confusion{}, m.Confusion)
	assert.Equal(t, 0.0, m.Accuracy)
}

func TestComputeMetricsEmptyInput(t *testing.T) {
	m := ComputeMetrics(nil)
	assert.Equal(t, 0, m.NExamples)
	assert.Equal(t, 0.0, m.Accuracy)
	assert.Equal(t, 0.0, m.F1Safe)
}

func TestComputeAgreement(t *testing.T) {
	baseline := []models.Classification{
		{ID: 0, Predicted: models.VerdictSafe},
		{ID: 1, Predicted: models.VerdictSafe},
		{ID: 2, Predicted: models.VerdictUnsafe},
		{ID: 3, Predicted: models.VerdictUnsafe}, // no worksheet counterpart
	}
	sheet := []models.WorksheetClassification{
		{ID: 0, Predicted: models.VerdictSafe},
		{ID: 1, Predicted: models.VerdictUnsafe},
		{ID: 2, Predicted: models.VerdictSafe},
	}

	a := ComputeAgreement(baseline, sheet)
	assert.Equal(t, 3, a.NExamples)
	assert.InDelta(t, 1.0/3.0, a.AgreementRate, 0.001)
	assert.InDelta(t, 2.0/3.0, a.DisagreementRate, 0.001)
	assert.Equal(t, 1, a.BaselineSafeSheetUnsafe)
	assert.Equal(t, 1, a.BaselineUnsafeSheetSafe)
}

func TestRunFailsOnMissingUpstreamTable(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "baseline.csv")

	err := Run(Options{
		BaselinePath:  missing,
		WorksheetPath: filepath.Join(dir, "worksheet.csv"),
		OutputPath:    filepath.Join(dir, "summary.json"),
	}, zap.NewNop())

	require.Error(t, err)
	assert.Contains(t, err.Error(), missing)
}

func TestRunWritesSummary(t *testing.T) {
	dir := t.TempDir()
	baselinePath := filepath.Join(dir, "baseline.csv")
	worksheetPath := filepath.Join(dir, "worksheet.csv")
	outputPath := filepath.Join(dir, "summary.json")

	require.NoError(t, store.WriteClassifications(baselinePath, []models.Classification{
		{ID: 0, GoldLabel: models.VerdictSafe, Predicted: models.VerdictSafe, Explanation: "checked"},
		{ID: 1, GoldLabel: models.VerdictUnsafe, Predicted: models.VerdictSafe, Explanation: "missed"},
	}))
	require.NoError(t, store.WriteWorksheetClassifications(worksheetPath, []models.WorksheetClassification{
		{ID: 0, GoldLabel: models.VerdictSafe, Predicted: models.VerdictSafe},
		{ID: 1, GoldLabel: models.VerdictUnsafe, Predicted: models.VerdictUnsafe},
	}))

	require.NoError(t, Run(Options{
		BaselinePath:  baselinePath,
		WorksheetPath: worksheetPath,
		OutputPath:    outputPath,
	}, zap.NewNop()))

	baseline, err := store.ReadClassifications(baselinePath)
	require.NoError(t, err)
	sheet, err := store.ReadWorksheetClassifications(worksheetPath)
	require.NoError(t, err)

	comparison := Compare(baseline, sheet)
	assert.Equal(t, 0.5, comparison.Summary.BaselineAccuracy)
	assert.Equal(t, 1.0, comparison.Summary.WorksheetAccuracy)
	assert.Equal(t, 0.5, comparison.Summary.AccuracyImprovement)
}
