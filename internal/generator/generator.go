// Package generator produces the raw snippet table by asking the model for
// Solidity-like transfer functions across a fixed set of variation types.
package generator

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/vik-srinivasan/genie-compliance/internal/llm"
	"github.com/vik-srinivasan/genie-compliance/internal/models"
	"github.com/vik-srinivasan/genie-compliance/internal/store"
)

const systemPrompt = `You are a Solidity contract generator. Generate realistic ERC20-like transfer function snippets.
Include variations in:
- Variable names (balance, ledger, balances, etc.)
- Order of operations
- Comments
- Arithmetic patterns
- Access control checks
- Missing/incorrect balance checks
- Missing validation
- State inconsistency issues

Generate ONLY the function code, not a full contract. Keep it concise (5-15 lines).`

const userPromptTemplate = `Generate a Solidity transfer function snippet.
Make it %s.
Return ONLY the code, no explanations.`

// VariationTypes are cycled in order so every run covers the same mix of
// safe and unsafe patterns.
var VariationTypes = []string{
	"safe with proper balance check",
	"safe with proper balance check and access control",
	"unsafe missing balance check",
	"unsafe with incorrect balance check",
	"unsafe with arithmetic overflow risk",
	"unsafe with state inconsistency",
	"safe with input validation",
	"unsafe missing input validation",
	"safe with proper checks and comments",
	"unsafe with wrong variable in check",
}

// Options configure one generation run.
type Options struct {
	Count       int
	Temperature float32
	MaxTokens   int
	OutputPath  string
}

// Generator requests snippets from the model and writes the snippet table.
type Generator struct {
	client llm.Client
	opts   Options
	logger *zap.Logger
}

// New creates a generator.
func New(client llm.Client, opts Options, logger *zap.Logger) *Generator {
	return &Generator{client: client, opts: opts, logger: logger}
}

// Run generates opts.Count snippets sequentially. A snippet whose model
// call fails after retries is skipped and counted; it never aborts the run.
func (g *Generator) Run(ctx context.Context) error {
	snippets := make([]models.Snippet, 0, g.opts.Count)
	failed := 0

	for i := 0; i < g.opts.Count; i++ {
		select {
		case <-ctx.Done():
			return fmt.Errorf("generation cancelled: %w", ctx.Err())
		default:
		}

		variation := VariationTypes[i%len(VariationTypes)]
		g.logger.Info("Generating snippet",
			zap.Int("id", i),
			zap.Int("total", g.opts.Count),
			zap.String("variation", variation))

		code, err := g.generate(ctx, variation)
		if err != nil {
			g.logger.Error("Failed to generate snippet, skipping",
				zap.Int("id", i),
				zap.Error(err))
			failed++
			continue
		}

		snippets = append(snippets, models.Snippet{ID: i, Code: code})
	}

	if err := store.WriteSnippets(g.opts.OutputPath, snippets); err != nil {
		return fmt.Errorf("failed to save snippets: %w", err)
	}

	g.logger.Info("Generation completed",
		zap.Int("generated", len(snippets)),
		zap.Int("failed", failed),
		zap.String("output", g.opts.OutputPath))

	return nil
}

func (g *Generator) generate(ctx context.Context, variation string) (string, error) {
	reply, err := g.client.Complete(ctx, llm.Request{
		System:      systemPrompt,
		User:        fmt.Sprintf(userPromptTemplate, variation),
		Temperature: g.opts.Temperature,
		MaxTokens:   g.opts.MaxTokens,
	})
	if err != nil {
		return "", err
	}

	code := StripFences(reply)
	if code == "" {
		return "", fmt.Errorf("model returned empty snippet")
	}
	return code, nil
}

// StripFences removes a surrounding markdown code block, with or without a
// language tag, leaving the content untouched otherwise.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	lines := strings.Split(s, "\n")
	if len(lines) < 2 {
		return ""
	}
	lines = lines[1:]
	if strings.TrimSpace(lines[len(lines)-1]) == "```" {
		lines = lines[:len(lines)-1]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
