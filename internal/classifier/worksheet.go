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
	"github.com/vik-srinivasan/genie-compliance/internal/worksheet"
)

// WorksheetResult is one worksheet-guided classification with the parsed
// checklist evidence.
type WorksheetResult struct {
	Status          models.Verdict
	Reasoning       string
	Evidence        map[string]models.EvidenceItem
	EvidenceSummary string
}

// WorksheetOptions configure one worksheet inference run.
type WorksheetOptions struct {
	Temperature float32
	MaxTokens   int
	InputPath   string
	OutputPath  string
	MetricsPath string
}

// Worksheet is the checklist-guided classifier. It is reused as a library
// by the web service's classify endpoint.
type Worksheet struct {
	client llm.Client
	items  []worksheet.Item
	opts   WorksheetOptions
	logger *zap.Logger
}

// NewWorksheet creates a worksheet classifier over the given checklist.
func NewWorksheet(client llm.Client, items []worksheet.Item, opts WorksheetOptions, logger *zap.Logger) *Worksheet {
	if len(items) == 0 {
		items = worksheet.Default()
	}
	return &Worksheet{client: client, items: items, opts: opts, logger: logger}
}

// Classify runs one worksheet-guided classification.
func (w *Worksheet) Classify(ctx context.Context, code string) (*WorksheetResult, error) {
	reply, err := w.client.Complete(ctx, llm.Request{
		User:        worksheet.BuildPrompt(w.items, code),
		Temperature: w.opts.Temperature,
		MaxTokens:   w.opts.MaxTokens,
	})
	if err != nil {
		return nil, err
	}
	return ParseWorksheetReply(w.items, reply), nil
}

// ModelVersion reports the backing model identifier.
func (w *Worksheet) ModelVersion() string {
	return w.client.ModelVersion()
}

// Run classifies every labeled snippet and writes the worksheet result
// table plus its metrics.
func (w *Worksheet) Run(ctx context.Context) error {
	records, err := store.ReadLabelRecords(w.opts.InputPath)
	if err != nil {
		return fmt.Errorf("failed to load labeled snippets: %w", err)
	}

	results := make([]models.WorksheetClassification, 0, len(records))
	for i, rec := range records {
		w.logger.Info("Worksheet inference",
			zap.Int("id", rec.ID),
			zap.Int("progress", i+1),
			zap.Int("total", len(records)))

		result := models.WorksheetClassification{ID: rec.ID, GoldLabel: rec.FinalLabel}

		parsed, err := w.Classify(ctx, rec.Code)
		if err != nil {
			w.logger.Error("Worksheet classification failed",
				zap.Int("id", rec.ID),
				zap.Error(err))
			result.Predicted = models.VerdictUnknown
			result.Reasoning = fmt.Sprintf("classification failed: %v", err)
		} else {
			result.Predicted = parsed.Status
			result.Reasoning = parsed.Reasoning
			result.EvidenceSummary = parsed.EvidenceSummary
		}
		results = append(results, result)

		if err := ctx.Err(); err != nil {
			return fmt.Errorf("worksheet inference cancelled: %w", err)
		}
	}

	if err := store.WriteWorksheetClassifications(w.opts.OutputPath, results); err != nil {
		return fmt.Errorf("failed to save worksheet results: %w", err)
	}

	pairs := make([]evaluator.Pair, 0, len(results))
	for _, res := range results {
		pairs = append(pairs, evaluator.Pair{Gold: res.GoldLabel, Predicted: res.Predicted})
	}
	if err := store.WriteJSON(w.opts.MetricsPath, evaluator.ComputeMetrics(pairs)); err != nil {
		return fmt.Errorf("failed to save worksheet metrics: %w", err)
	}

	w.logger.Info("Worksheet inference completed",
		zap.Int("classified", len(results)),
		zap.String("output", w.opts.OutputPath))

	return nil
}

// ParseWorksheetReply extracts the decision, per-item evidence, and
// reasoning from a structured reply. When no DECISION line is present the
// whole reply is scanned for a verdict keyword; a reply with neither yields
// the unknown sentinel.
func ParseWorksheetReply(items []worksheet.Item, reply string) *WorksheetResult {
	result := &WorksheetResult{
		Status:   models.VerdictUnknown,
		Evidence: make(map[string]models.EvidenceItem),
	}

	keys := make(map[string]string, len(items))
	for _, item := range items {
		keys[item.Key] = strings.ToLower(item.Key)
	}

	lines := strings.Split(reply, "\n")
	decisionFound := false
	inReasoning := false
	var reasoningLines []string

	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		upper := strings.ToUpper(line)

		if strings.HasPrefix(upper, "DECISION:") {
			decision := strings.TrimSpace(strings.SplitN(upper, ":", 2)[1])
			if strings.Contains(decision, "UNSAFE") {
				result.Status = models.VerdictUnsafe
			} else if strings.Contains(decision, "SAFE") {
				result.Status = models.VerdictSafe
			}
			decisionFound = true
			inReasoning = false
			continue
		}

		if strings.HasPrefix(upper, "REASONING:") {
			inReasoning = true
			if text := strings.TrimSpace(strings.SplitN(line, ":", 2)[1]); text != "" {
				reasoningLines = append(reasoningLines, text)
			}
			continue
		}

		matched := false
		for key, field := range keys {
			if !strings.HasPrefix(upper, key+":") {
				continue
			}
			value := strings.TrimSpace(strings.SplitN(line, ":", 2)[1])
			parts := strings.SplitN(value, " - ", 2)
			item := models.EvidenceItem{
				Passed: strings.Contains(strings.ToLower(parts[0]), "true"),
			}
			if len(parts) > 1 {
				item.Evidence = strings.TrimSpace(parts[1])
			}
			result.Evidence[field] = item
			matched = true
			inReasoning = false
			break
		}
		if matched {
			continue
		}

		if inReasoning {
			reasoningLines = append(reasoningLines, line)
		}
	}

	if len(reasoningLines) > 0 {
		result.Reasoning = strings.Join(reasoningLines, " ")
	} else {
		result.Reasoning = strings.TrimSpace(reply)
	}

	result.EvidenceSummary = summarizeEvidence(items, result.Evidence)

	if !decisionFound {
		upper := strings.ToUpper(reply)
		if strings.Contains(upper, "UNSAFE") {
			result.Status = models.VerdictUnsafe
		} else if strings.Contains(upper, "SAFE") {
			result.Status = models.VerdictSafe
		}
		result.Reasoning = strings.TrimSpace(reply)
	}

	return result
}

// summarizeEvidence joins the per-item evidence in checklist order,
// truncating each entry to 50 characters.
func summarizeEvidence(items []worksheet.Item, evidence map[string]models.EvidenceItem) string {
	parts := make([]string, 0, len(evidence))
	for _, item := range items {
		field := strings.ToLower(item.Key)
		ev, ok := evidence[field]
		if !ok {
			continue
		}
		text := ev.Evidence
		if len(text) > 50 {
			text = text[:50]
		}
		parts = append(parts, fmt.Sprintf("%s: %s", field, text))
	}
	return strings.Join(parts, "; ")
}
