package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vik-srinivasan/genie-compliance/internal/classifier"
	"github.com/vik-srinivasan/genie-compliance/internal/worksheet"
)

var worksheetCmd = &cobra.Command{
	Use:   "worksheet",
	Short: "Classify labeled snippets with the worksheet-guided strategy",
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

		items := worksheet.Default()
		if cfg.Worksheet.TemplatePath != "" {
			items, err = worksheet.LoadTemplate(cfg.Worksheet.TemplatePath)
			if err != nil {
				logger.Error("Failed to load worksheet template", zap.Error(err))
				return err
			}
			logger.Info("Worksheet template loaded",
				zap.String("path", cfg.Worksheet.TemplatePath),
				zap.Int("items", len(items)))
		}

		sheet := classifier.NewWorksheet(client, items, classifier.WorksheetOptions{
			Temperature: cfg.Worksheet.Call.Temperature,
			MaxTokens:   cfg.Worksheet.Call.MaxTokens,
			InputPath:   cfg.Paths.Labeled,
			OutputPath:  cfg.Paths.Worksheet,
			MetricsPath: cfg.Paths.WorksheetMetrics,
		}, logger)

		return sheet.Run(cmd.Context())
	},
}
