// Package main provides the USD normalization check CLI.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/yourusername/asset-horizon/internal/config"
	"github.com/yourusername/asset-horizon/internal/database"
	"github.com/yourusername/asset-horizon/internal/logger"
	"github.com/yourusername/asset-horizon/internal/repository"
	"github.com/yourusername/asset-horizon/internal/service"
)

var (
	configFile string
	dailyMode  bool
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.Flags().BoolVar(&dailyMode, "daily", false, "Only check assets with prices in the trailing lookback span")
}

var rootCmd = &cobra.Command{
	Use:   "normalize",
	Short: "Verify every asset's series normalizes to USD",
	Long:  `Runs the currency normalization over the stored catalog, one worker per currency group, and reports assets whose series cannot be anchored to a forex rate.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runNormalize(cmd.Context())
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func runNormalize(ctx context.Context) error {
	cfg, err := loadConfig(configFile)
	if err != nil {
		return err
	}

	logg := logger.NewLogger(cfg.App.LogLevel)

	db, err := database.Initialize(ctx, cfg)
	if err != nil {
		return fmt.Errorf("database init: %w", err)
	}
	defer db.Close()

	repos, err := repository.NewRepositories(db)
	if err != nil {
		return err
	}

	normalizer := service.NewNormalizationService(repos, cfg.Jobs.MonthlyLookbackDays, logg)
	stats, err := normalizer.Run(ctx, dailyMode)
	if err != nil {
		return err
	}

	fmt.Println(stats.String())
	if stats.Failed > 0 {
		return fmt.Errorf("%d assets failed normalization", stats.Failed)
	}
	return nil
}

func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			return nil, fmt.Errorf("AWS_REGION and AWS_SECRET_NAME must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(cfg, region, secretName); err != nil {
			return nil, fmt.Errorf("failed to load secrets: %w", err)
		}
	}

	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
