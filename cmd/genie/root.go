package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vik-srinivasan/genie-compliance/internal/config"
	"github.com/vik-srinivasan/genie-compliance/internal/llm"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "genie",
	Short: "Benchmark worksheet-guided LLM classification of Solidity snippets",
	Long: `genie runs the snippet classification pipeline: generate code snippets,
label them with three independent model judgments, classify them with a
single-shot baseline and a worksheet-guided strategy, compare both against
the reconciled gold labels, and serve an interactive review frontend.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config YAML (defaults to built-in settings)")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(labelCmd)
	rootCmd.AddCommand(baselineCmd)
	rootCmd.AddCommand(worksheetCmd)
	rootCmd.AddCommand(evaluateCmd)
	rootCmd.AddCommand(serveCmd)
}

// loadConfig reads the configured YAML file or falls back to defaults with
// the API key from the environment.
func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadConfig(configPath)
	}
	if _, err := os.Stat("configs/config.yml"); err == nil {
		return config.LoadConfig("configs/config.yml")
	}
	return config.Default(), nil
}

// newLogger builds the process logger shared by every command.
func newLogger() (*zap.Logger, error) {
	return zap.NewDevelopment()
}

// newModelClient builds the rate-limited chat completions client. Fatal
// when no API key is configured: every caller needs the model.
func newModelClient(cfg *config.Config, logger *zap.Logger) (llm.Client, error) {
	if cfg.OpenAI.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key not configured; set openai.api_key or OPENAI_API_KEY")
	}

	client, err := llm.NewOpenAIClient(llm.Config{
		APIKey:     cfg.OpenAI.APIKey,
		Model:      cfg.OpenAI.Model,
		BaseURL:    cfg.OpenAI.BaseURL,
		MaxRetries: cfg.OpenAI.MaxRetries,
		RetryDelay: cfg.OpenAI.RetryDelay,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenAI client: %w", err)
	}

	return llm.NewRateLimitedClient(client, cfg.OpenAI.RequestsPerMinute, logger), nil
}
