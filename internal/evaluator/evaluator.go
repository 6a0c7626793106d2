// Package evaluator computes confusion-matrix metrics for both classifiers
// against the gold labels and the agreement between them. It performs no
// model calls; identical inputs always produce identical output.
package evaluator

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/vik-srinivasan/genie-compliance/internal/models"
	"github.com/vik-srinivasan/genie-compliance/internal/store"
)

// Pair is one gold/predicted verdict pair.
type Pair struct {
	Gold      models.Verdict
	Predicted models.Verdict
}

// ComputeMetrics derives the standard statistics with "safe" as the
// positive class. Unknown predictions land in no confusion cell, so they
// only ever hurt accuracy. Denominators are guarded the same way the
// metrics consumers expect: max(1, n) for counts, 1e-9 for the F1 sum.
func ComputeMetrics(pairs []Pair) models.ClassifierMetrics {
	n := len(pairs)
	var c models.Confusion
	for _, p := range pairs {
		switch {
		case p.Predicted == models.VerdictSafe && p.Gold == models.VerdictSafe:
			c.TP++
		case p.Predicted == models.VerdictUnsafe && p.Gold == models.VerdictUnsafe:
			c.TN++
		case p.Predicted == models.VerdictSafe && p.Gold == models.VerdictUnsafe:
			c.FP++
		case p.Predicted == models.VerdictUnsafe && p.Gold == models.VerdictSafe:
			c.FN++
		}
	}

	accuracy := float64(c.TP+c.TN) / float64(max(1, n))
	precision := float64(c.TP) / float64(max(1, c.TP+c.FP))
	recall := float64(c.TP) / float64(max(1, c.TP+c.FN))
	f1 := (2 * precision * recall) / math.Max(1e-9, precision+recall)

	return models.ClassifierMetrics{
		NExamples:     n,
		Accuracy:      round3(accuracy),
		PrecisionSafe: round3(precision),
		RecallSafe:    round3(recall),
		F1Safe:        round3(f1),
		Confusion:     c,
	}
}

// ComputeAgreement compares the two strategies joined on snippet id. Rows
// present in only one table are ignored.
func ComputeAgreement(baseline []models.Classification, sheet []models.WorksheetClassification) models.AgreementMetrics {
	sheetByID := make(map[int]models.WorksheetClassification, len(sheet))
	for _, res := range sheet {
		sheetByID[res.ID] = res
	}

	n := 0
	agree := 0
	baselineSafeSheetUnsafe := 0
	baselineUnsafeSheetSafe := 0

	for _, base := range baseline {
		ws, ok := sheetByID[base.ID]
		if !ok {
			continue
		}
		n++
		if base.Predicted == ws.Predicted {
			agree++
		}
		if base.Predicted == models.VerdictSafe && ws.Predicted == models.VerdictUnsafe {
			baselineSafeSheetUnsafe++
		}
		if base.Predicted == models.VerdictUnsafe && ws.Predicted == models.VerdictSafe {
			baselineUnsafeSheetSafe++
		}
	}

	return models.AgreementMetrics{
		NExamples:               n,
		AgreementRate:           round3(float64(agree) / float64(max(1, n))),
		DisagreementRate:        round3(float64(n-agree) / float64(max(1, n))),
		BaselineSafeSheetUnsafe: baselineSafeSheetUnsafe,
		BaselineUnsafeSheetSafe: baselineUnsafeSheetSafe,
	}
}

// Compare assembles the full evaluation record.
func Compare(baseline []models.Classification, sheet []models.WorksheetClassification) models.Comparison {
	basePairs := make([]Pair, 0, len(baseline))
	for _, res := range baseline {
		basePairs = append(basePairs, Pair{Gold: res.GoldLabel, Predicted: res.Predicted})
	}
	sheetPairs := make([]Pair, 0, len(sheet))
	for _, res := range sheet {
		sheetPairs = append(sheetPairs, Pair{Gold: res.GoldLabel, Predicted: res.Predicted})
	}

	baseMetrics := ComputeMetrics(basePairs)
	sheetMetrics := ComputeMetrics(sheetPairs)

	return models.Comparison{
		BaselineVsGold:      baseMetrics,
		WorksheetVsGold:     sheetMetrics,
		WorksheetVsBaseline: ComputeAgreement(baseline, sheet),
		Summary: models.ComparisonSummary{
			BaselineAccuracy:    baseMetrics.Accuracy,
			WorksheetAccuracy:   sheetMetrics.Accuracy,
			AccuracyImprovement: round3(sheetMetrics.Accuracy - baseMetrics.Accuracy),
			BaselineF1:          baseMetrics.F1Safe,
			WorksheetF1:         sheetMetrics.F1Safe,
			F1Improvement:       round3(sheetMetrics.F1Safe - baseMetrics.F1Safe),
		},
	}
}

// Options configure one evaluation run.
type Options struct {
	BaselinePath  string
	WorksheetPath string
	OutputPath    string
}

// Run loads both result tables, compares them, and writes the summary.
// A missing upstream table is fatal and names the file.
func Run(opts Options, logger *zap.Logger) error {
	baseline, err := store.ReadClassifications(opts.BaselinePath)
	if err != nil {
		return fmt.Errorf("baseline results unavailable (%s): %w", opts.BaselinePath, err)
	}

	sheet, err := store.ReadWorksheetClassifications(opts.WorksheetPath)
	if err != nil {
		return fmt.Errorf("worksheet results unavailable (%s): %w", opts.WorksheetPath, err)
	}

	comparison := Compare(baseline, sheet)

	if err := store.WriteJSON(opts.OutputPath, comparison); err != nil {
		return fmt.Errorf("failed to save evaluation summary: %w", err)
	}

	logger.Info("Evaluation completed",
		zap.Float64("baseline_accuracy", comparison.Summary.BaselineAccuracy),
		zap.Float64("worksheet_accuracy", comparison.Summary.WorksheetAccuracy),
		zap.Float64("accuracy_improvement", comparison.Summary.AccuracyImprovement),
		zap.Float64("f1_improvement", comparison.Summary.F1Improvement),
		zap.String("output", opts.OutputPath))

	return nil
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
