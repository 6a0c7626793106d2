// Package labeler produces the gold-standard label table by collecting
// three independently prompted judgments per snippet and reconciling them.
package labeler

import (
	"context"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/vik-srinivasan/genie-compliance/internal/llm"
	"github.com/vik-srinivasan/genie-compliance/internal/models"
	"github.com/vik-srinivasan/genie-compliance/internal/store"
)

const strictPrompt = `Analyze this Solidity transfer function and classify it as SAFE or UNSAFE.

CRITICAL: A function is SAFE ONLY if it has ALL of the following:
1. Checks balance before transferring (require(balance >= amount) or similar)
2. Proper access control (if needed)
3. Input validation (if needed)
4. State consistency maintained

A function is UNSAFE if it is MISSING the balance check (require statement checking balance >= amount before transfer).

Code:
%s

IMPORTANT: If you don't see a require() statement checking balance before the transfer, it is UNSAFE.
Respond with ONLY one word: SAFE or UNSAFE`

const cautionarySuffix = "\n\nConsider the security implications carefully."

const restatedPrompt = `Classify this Solidity transfer function as SAFE or UNSAFE:

%s

CRITICAL: If the function is MISSING a require() statement checking balance before transfer, it is UNSAFE.
SAFE only if balance check exists. UNSAFE if balance check is missing.
Respond with ONLY one word: SAFE or UNSAFE`

// source is one of the three simulated judges: same model, distinct prompt
// wording and temperature.
type source struct {
	name        string
	temperature float32
	prompt      func(code string) string
}

var sources = []source{
	{
		name:        "strict",
		temperature: 0.0,
		prompt:      func(code string) string { return fmt.Sprintf(strictPrompt, code) },
	},
	{
		name:        "cautionary",
		temperature: 0.1,
		prompt:      func(code string) string { return fmt.Sprintf(strictPrompt, code) + cautionarySuffix },
	},
	{
		name:        "restated",
		temperature: 0.2,
		prompt:      func(code string) string { return fmt.Sprintf(restatedPrompt, code) },
	},
}

// Options configure one labeling run.
type Options struct {
	MaxAttempts int
	MaxTokens   int
	InputPath   string
	OutputPath  string
	MetricsPath string
}

// Labeler runs the multi-source labeling stage.
type Labeler struct {
	client llm.Client
	opts   Options
	logger *zap.Logger
}

// New creates a labeler.
func New(client llm.Client, opts Options, logger *zap.Logger) *Labeler {
	if opts.MaxAttempts == 0 {
		opts.MaxAttempts = 3
	}
	return &Labeler{client: client, opts: opts, logger: logger}
}

// Run labels every snippet in the input table and writes the labeled table
// plus a labeling metrics record. A snippet whose sources never resolve is
// written as an unresolved row, never dropped.
func (l *Labeler) Run(ctx context.Context) error {
	snippets, err := store.ReadSnippets(l.opts.InputPath)
	if err != nil {
		return fmt.Errorf("failed to load snippets: %w", err)
	}

	records := make([]models.LabelRecord, 0, len(snippets))
	for i, snippet := range snippets {
		l.logger.Info("Labeling snippet",
			zap.Int("id", snippet.ID),
			zap.Int("progress", i+1),
			zap.Int("total", len(snippets)))

		records = append(records, l.label(ctx, snippet))

		if err := ctx.Err(); err != nil {
			return fmt.Errorf("labeling cancelled: %w", err)
		}
	}

	if err := store.WriteLabelRecords(l.opts.OutputPath, records); err != nil {
		return fmt.Errorf("failed to save labels: %w", err)
	}

	metrics := ComputeMetrics(records)
	if err := store.WriteJSON(l.opts.MetricsPath, metrics); err != nil {
		return fmt.Errorf("failed to save labeling metrics: %w", err)
	}

	l.logger.Info("Labeling completed",
		zap.Int("labeled", len(records)),
		zap.Int("needs_review", metrics.NeedsReviewCount),
		zap.Float64("agreement_rate", metrics.AgreementRate))

	return nil
}

// label obtains the three judgments and reconciles them. Any unresolved
// source marks the whole row unresolved so the gold table never carries a
// label derived from a partial vote.
func (l *Labeler) label(ctx context.Context, snippet models.Snippet) models.LabelRecord {
	record := models.LabelRecord{ID: snippet.ID, Code: snippet.Code}

	verdicts := make([]models.Verdict, len(sources))
	resolved := true
	for i, src := range sources {
		verdict, err := l.judge(ctx, src, snippet.Code)
		if err != nil {
			l.logger.Error("Source failed to resolve",
				zap.Int("id", snippet.ID),
				zap.String("source", src.name),
				zap.Error(err))
			verdict = models.VerdictUnknown
			resolved = false
		}
		verdicts[i] = verdict
	}

	record.LabelA, record.LabelB, record.LabelC = verdicts[0], verdicts[1], verdicts[2]

	if !resolved {
		record.FinalLabel = models.VerdictUnknown
		record.NeedsReview = true
		return record
	}

	resolution, err := Reconcile(record.LabelA, record.LabelB, record.LabelC)
	if err != nil {
		// Cannot happen for binary sources; treat like an unresolved row.
		l.logger.Error("Reconciliation rejected source labels",
			zap.Int("id", snippet.ID),
			zap.Error(err))
		record.FinalLabel = models.VerdictUnknown
		record.NeedsReview = true
		return record
	}

	record.FinalLabel = resolution.FinalLabel
	record.Confidence = resolution.Confidence
	record.NeedsReview = resolution.NeedsReview
	return record
}

// judge asks one source for a verdict, re-requesting malformed replies up
// to MaxAttempts before giving up on the source.
func (l *Labeler) judge(ctx context.Context, src source, code string) (models.Verdict, error) {
	var lastErr error
	for attempt := 0; attempt < l.opts.MaxAttempts; attempt++ {
		reply, err := l.client.Complete(ctx, llm.Request{
			User:        src.prompt(code),
			Temperature: src.temperature,
			MaxTokens:   l.opts.MaxTokens,
		})
		if err != nil {
			return "", fmt.Errorf("source %s: %w", src.name, err)
		}

		verdict, err := ParseBinaryVerdict(reply)
		if err != nil {
			lastErr = err
			l.logger.Warn("Malformed source reply",
				zap.String("source", src.name),
				zap.String("reply", reply),
				zap.Int("attempt", attempt+1))
			continue
		}
		return verdict, nil
	}
	return "", fmt.Errorf("source %s unresolved after %d attempts: %w", src.name, l.opts.MaxAttempts, lastErr)
}

// ParseBinaryVerdict reads a one-word SAFE/UNSAFE reply. UNSAFE is checked
// first since the word contains SAFE.
func ParseBinaryVerdict(reply string) (models.Verdict, error) {
	upper := strings.ToUpper(strings.TrimSpace(reply))
	switch {
	case strings.Contains(upper, "UNSAFE"):
		return models.VerdictUnsafe, nil
	case strings.Contains(upper, "SAFE"):
		return models.VerdictSafe, nil
	}
	return "", fmt.Errorf("reply %q contains no verdict", reply)
}

// ComputeMetrics summarizes a labeling run.
func ComputeMetrics(records []models.LabelRecord) models.LabelingMetrics {
	n := len(records)
	unanimous := 0
	var confidenceSum float64
	needsReview := 0

	for _, rec := range records {
		if rec.Confidence == 1.0 {
			unanimous++
		}
		confidenceSum += rec.Confidence
		if rec.NeedsReview {
			needsReview++
		}
	}

	return models.LabelingMetrics{
		NSnippets:         n,
		AgreementRate:     round3(float64(unanimous) / float64(max(1, n))),
		AverageConfidence: round3(confidenceSum / float64(max(1, n))),
		NeedsReviewCount:  needsReview,
	}
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
