// Package classifier implements the two classification strategies under
// comparison: the single-shot baseline and the worksheet-guided variant.
package classifier

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/vik-srinivasan/genie-compliance/internal/evaluator"
	"github.com/vik-srinivasan/genie-compliance/internal/llm"
	"github.com/vik-srinivasan/genie-compliance/internal/models"
	"github.com/vik-srinivasan/genie-compliance/internal/store"
)

const baselinePrompt = `You are a security analyst for Solidity ERC20-style transfer functions.
Classify the function as SAFE or UNSAFE, then explain your reasoning.

A function is SAFE ONLY if ALL of the following are true:
- It checks the sender's balance BEFORE transferring (e.g., require(balance >= amount)).
- It keeps token balances consistent (no double-spend, no obvious bugs).

Treat the function as UNSAFE if:
- There is NO require-like balance check before updating balances, OR
- The balance check is clearly incorrect or can be bypassed.

Code to analyze:
` + "```solidity\n%s\n```" + `

CRITICAL: Your first line MUST be exactly:
LABEL: SAFE
or
LABEL: UNSAFE

Then on the next line, write:
EXPLANATION: <short explanation of why>.
Do not put any other content before LABEL:.`

// BaselineOptions configure one baseline inference run.
type BaselineOptions struct {
	Temperature float32
	MaxTokens   int
	InputPath   string
	OutputPath  string
	MetricsPath string
}

// Baseline is the single-shot classifier.
type Baseline struct {
	client llm.Client
	opts   BaselineOptions
	logger *zap.Logger
}

// NewBaseline creates a baseline classifier.
func NewBaseline(client llm.Client, opts BaselineOptions, logger *zap.Logger) *Baseline {
	return &Baseline{client: client, opts: opts, logger: logger}
}

// Classify runs one single-shot classification.
func (b *Baseline) Classify(ctx context.Context, code string) (models.Verdict, string, error) {
	reply, err := b.client.Complete(ctx, llm.Request{
		User:        fmt.Sprintf(baselinePrompt, code),
		Temperature: b.opts.Temperature,
		MaxTokens:   b.opts.MaxTokens,
	})
	if err != nil {
		return "", "", err
	}

	verdict, explanation := ParseBaselineReply(reply)
	return verdict, explanation, nil
}

// Run classifies every labeled snippet and writes the baseline result
// table plus its metrics. Failed calls record an unknown verdict with the
// error as explanation; the batch continues.
func (b *Baseline) Run(ctx context.Context) error {
	records, err := store.ReadLabelRecords(b.opts.InputPath)
	if err != nil {
		return fmt.Errorf("failed to load labeled snippets: %w", err)
	}

	results := make([]models.Classification, 0, len(records))
	for i, rec := range records {
		b.logger.Info("Baseline inference",
			zap.Int("id", rec.ID),
			zap.Int("progress", i+1),
			zap.Int("total", len(records)))

		result := models.Classification{ID: rec.ID, GoldLabel: rec.FinalLabel}

		verdict, explanation, err := b.Classify(ctx, rec.Code)
		if err != nil {
			b.logger.Error("Baseline classification failed",
				zap.Int("id", rec.ID),
				zap.Error(err))
			result.Predicted = models.VerdictUnknown
			result.Explanation = fmt.Sprintf("classification failed: %v", err)
		} else {
			result.Predicted = verdict
			result.Explanation = explanation
		}
		results = append(results, result)

		if err := ctx.Err(); err != nil {
			return fmt.Errorf("baseline inference cancelled: %w", err)
		}
	}

	if err := store.WriteClassifications(b.opts.OutputPath, results); err != nil {
		return fmt.Errorf("failed to save baseline results: %w", err)
	}

	pairs := make([]evaluator.Pair, 0, len(results))
	for _, res := range results {
		pairs = append(pairs, evaluator.Pair{Gold: res.GoldLabel, Predicted: res.Predicted})
	}
	if err := store.WriteJSON(b.opts.MetricsPath, evaluator.ComputeMetrics(pairs)); err != nil {
		return fmt.Errorf("failed to save baseline metrics: %w", err)
	}

	b.logger.Info("Baseline inference completed",
		zap.Int("classified", len(results)),
		zap.String("output", b.opts.OutputPath))

	return nil
}

// ParseBaselineReply extracts the verdict and explanation from a reply of
// the form "LABEL: SAFE\nEXPLANATION: ...". An unparseable reply yields an
// unknown verdict with the raw reply kept as the explanation.
func ParseBaselineReply(reply string) (models.Verdict, string) {
	verdict := models.VerdictUnknown
	explanation := reply

	var lines []string
	for _, line := range strings.Split(reply, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, strings.TrimSpace(line))
		}
	}
	if len(lines) == 0 {
		return verdict, explanation
	}

	first := strings.ToUpper(lines[0])
	var labelToken string
	if strings.HasPrefix(first, "LABEL:") {
		labelToken = strings.TrimSpace(strings.SplitN(first, ":", 2)[1])
	} else {
		labelToken = strings.Fields(first)[0]
	}

	switch {
	case strings.Contains(labelToken, "UNSAFE"):
		verdict = models.VerdictUnsafe
	case strings.Contains(labelToken, "SAFE"):
		verdict = models.VerdictSafe
	}

	if len(lines) > 1 {
		second := lines[1]
		if strings.HasPrefix(strings.ToUpper(second), "EXPLANATION:") {
			if text := strings.TrimSpace(strings.SplitN(second, ":", 2)[1]); text != "" {
				explanation = text
			}
		} else if text := strings.TrimSpace(strings.Join(lines[1:], "\n")); text != "" {
			explanation = text
		}
	}

	return verdict, explanation
}
