package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vik-srinivasan/genie-compliance/internal/classifier"
	"github.com/vik-srinivasan/genie-compliance/internal/handler"
	"github.com/vik-srinivasan/genie-compliance/internal/repository"
	"github.com/vik-srinivasan/genie-compliance/internal/server"
	"github.com/vik-srinivasan/genie-compliance/internal/service"
	"github.com/vik-srinivasan/genie-compliance/internal/worksheet"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the interactive classification and chat frontend",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := newLogger()
		if err != nil {
			return err
		}
		defer logger.Sync()

		logger.Info("Starting genie-compliance server...")

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
		}

		sheet := classifier.NewWorksheet(client, items, classifier.WorksheetOptions{
			Temperature: cfg.Worksheet.Call.Temperature,
			MaxTokens:   cfg.Worksheet.Call.MaxTokens,
		}, logger)

		os.MkdirAll(filepath.Dir(cfg.Database.Path), 0755)

		repo, err := repository.NewClassificationRepository(cfg.Database.Path, logger)
		if err != nil {
			logger.Error("Failed to initialize repository", zap.Error(err))
			return err
		}
		defer repo.Close()

		analyzer := service.NewAnalyzer(sheet, client, service.ChatOptions{
			Temperature: cfg.Chat.Temperature,
			MaxTokens:   cfg.Chat.MaxTokens,
		}, repo, logger)

		apiHandler := handler.NewHandler(analyzer, logger)

		srv := server.New(apiHandler, server.Options{
			Port:      cfg.Server.Port,
			StaticDir: cfg.Server.StaticDir,
		}, logger)

		return srv.Run(cmd.Context())
	},
}
