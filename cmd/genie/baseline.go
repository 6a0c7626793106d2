package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vik-srinivasan/genie-compliance/internal/classifier"
)

var baselineCmd = &cobra.Command{
	Use:   "baseline",
	Short: "Classify labeled snippets with the single-shot baseline",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := newLogger()
		if err != nil {
			return err
		}
		defer logger.Sync()

		cfg, err := loadConfig()
		if err != nil {
			logger.Error("Failed to load config", zap.Error(err))
			return err
		}

		client, err := newModelClient(cfg, logger)
		if err != nil {
			logger.Error("Failed to initialize model client", zap.Error(err))
			return err
		}

		base := classifier.NewBaseline(client, classifier.BaselineOptions{
			Temperature: cfg.Baseline.Temperature,
			MaxTokens:   cfg.Baseline.MaxTokens,
			InputPath:   cfg.Paths.Labeled,
			OutputPath:  cfg.Paths.Baseline,
			MetricsPath: cfg.Paths.BaselineMetrics,
		}, logger)

		return base.Run(cmd.Context())
	},
}
