package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vik-srinivasan/genie-compliance/internal/evaluator"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Compare both classifiers against the gold labels",
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

		return evaluator.Run(evaluator.Options{
			BaselinePath:  cfg.Paths.Baseline,
			WorksheetPath: cfg.Paths.Worksheet,
			OutputPath:    cfg.Paths.Evaluation,
		}, logger)
	},
}
