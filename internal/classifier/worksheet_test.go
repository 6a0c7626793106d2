package classifier

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vik-srinivasan/genie-compliance/internal/models"
	"github.com/vik-srinivasan/genie-compliance/internal/store"
	"github.com/vik-srinivasan/genie-compliance/internal/worksheet"
)

func TestParseWorksheetReplyStructured(t *testing.T) {
	reply := `DECISION: SAFE
BALANCE_CHECK: [true] - require(balances[msg.sender] >= amount) on line 2
ARITHMETIC_SAFETY: [true] - solidity 0.8 checked arithmetic
ACCESS_CONTROL: [false] - anyone can call transfer
INPUT_VALIDATION: [true] - non-zero address required
STATE_CONSISTENCY: [true] - both balances updated together

REASONING: The function verifies the sender balance before moving funds.
All state updates happen in matched pairs.`

	result := ParseWorksheetReply(worksheet.Default(), reply)

	assert.Equal(t, models.VerdictSafe, result.Status)
	assert.Equal(t,
		"The function verifies the sender balance before moving funds. All state updates happen in matched pairs.",
		result.Reasoning)

	require.Contains(t, result.Evidence, "balance_check")
	assert.True(t, result.Evidence["balance_check"].Passed)
	assert.Equal(t, "require(balances[msg.sender] >= amount) on line 2", result.Evidence["balance_check"].Evidence)

	require.Contains(t, result.Evidence, "access_control")
	assert.False(t, result.Evidence["access_control"].Passed)

	// Summary follows checklist order and truncates long evidence.
	assert.True(t, strings.HasPrefix(result.EvidenceSummary, "balance_check: "))
	for _, part := range strings.Split(result.EvidenceSummary, "; ") {
		_, text, found := strings.Cut(part, ": ")
		require.True(t, found)
		assert.LessOrEqual(t, len(text), 50)
	}
}

func TestParseWorksheetReplyUnsafeDecision(t *testing.T) {
	reply := "DECISION: UNSAFE\nBALANCE_CHECK: [false] - nothing guards the transfer\nREASONING: missing check."
	result := ParseWorksheetReply(worksheet.Default(), reply)
	assert.Equal(t, models.VerdictUnsafe, result.Status)
}

func TestParseWorksheetReplyFallbackScan(t *testing.T) {
	result := ParseWorksheetReply(worksheet.Default(), "After careful review this function looks SAFE to me.")
	assert.Equal(t, models.VerdictSafe, result.Status)
	assert.Equal(t, "After careful review this function looks SAFE to me.", result.Reasoning)

	result = ParseWorksheetReply(worksheet.Default(), "This is clearly UNSAFE, the check is absent.")
	assert.Equal(t, models.VerdictUnsafe, result.Status)

	result = ParseWorksheetReply(worksheet.Default(), "I refuse to answer.")
	assert.Equal(t, models.VerdictUnknown, result.Status)
}

func TestWorksheetEndToEnd(t *testing.T) {
	dir := t.TempDir()
	labeledPath := filepath.Join(dir, "labeled.csv")
	outputPath := filepath.Join(dir, "worksheet.csv")
	metricsPath := filepath.Join(dir, "metrics.json")

	require.NoError(t, store.WriteLabelRecords(labeledPath, []models.LabelRecord{
		{
			ID:         0,
			Code:       "function transfer(address to, uint256 amount) public {\n    require(balance[msg.sender] >= amount);\n    balance[msg.sender] -= amount;\n    balance[to] += amount;\n}",
			LabelA:     models.VerdictSafe,
			LabelB:     models.VerdictSafe,
			LabelC:     models.VerdictSafe,
			FinalLabel: models.VerdictSafe,
			Confidence: 1.0,
		},
		{
			ID:         1,
			Code:       "function transfer(address to, uint256 amount) public {\n    balance[msg.sender] -= amount;\n    balance[to] += amount;\n}",
			LabelA:     models.VerdictUnsafe,
			LabelB:     models.VerdictUnsafe,
			LabelC:     models.VerdictUnsafe,
			FinalLabel: models.VerdictUnsafe,
			Confidence: 1.0,
		},
	}))

	sheet := NewWorksheet(&stubClient{fn: deterministicBackend}, worksheet.Default(), WorksheetOptions{
		InputPath:   labeledPath,
		OutputPath:  outputPath,
		MetricsPath: metricsPath,
	}, zap.NewNop())

	require.NoError(t, sheet.Run(context.Background()))

	results, err := store.ReadWorksheetClassifications(outputPath)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, models.VerdictSafe, results[0].Predicted)
	assert.NotEmpty(t, results[0].EvidenceSummary)
	assert.Equal(t, models.VerdictUnsafe, results[1].Predicted)
}

func TestWorksheetClassifyParsesEvidence(t *testing.T) {
	sheet := NewWorksheet(&stubClient{fn: deterministicBackend}, nil, WorksheetOptions{}, zap.NewNop())

	result, err := sheet.Classify(context.Background(),
		"function transfer() { require(balance >= amount); balance -= amount; }")
	require.NoError(t, err)
	assert.Equal(t, models.VerdictSafe, result.Status)
	assert.True(t, result.Evidence["balance_check"].Passed)
}
