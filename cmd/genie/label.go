package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vik-srinivasan/genie-compliance/internal/labeler"
)

var labelCmd = &cobra.Command{
	Use:   "label",
	Short: "Produce gold labels from three independent model judgments",
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

		lab := labeler.New(client, labeler.Options{
			MaxAttempts: cfg.Labeling.MaxAttempts,
			MaxTokens:   cfg.Labeling.Call.MaxTokens,
			InputPath:   cfg.Paths.Snippets,
			OutputPath:  cfg.Paths.Labeled,
			MetricsPath: cfg.Paths.LabelingMetrics,
		}, logger)

		return lab.Run(cmd.Context())
	},
}
