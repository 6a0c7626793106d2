package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vik-srinivasan/genie-compliance/internal/generator"
)

var generateCount int

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate the raw snippet table",
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

		count := cfg.Generation.Count
		if generateCount > 0 {
			count = generateCount
		}

		gen := generator.New(client, generator.Options{
			Count:       count,
			Temperature: cfg.Generation.Call.Temperature,
			MaxTokens:   cfg.Generation.Call.MaxTokens,
			OutputPath:  cfg.Paths.Snippets,
		}, logger)

		return gen.Run(cmd.Context())
	},
}

func init() {
	generateCmd.Flags().IntVarP(&generateCount, "count", "n", 0, "number of snippets to generate (overrides config)")
}
