// Package main provides the data fetch CLI for daily updates.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/yourusername/asset-horizon/internal/config"
	"github.com/yourusername/asset-horizon/internal/database"
	"github.com/yourusername/asset-horizon/internal/datasource"
	"github.com/yourusername/asset-horizon/internal/logger"
	"github.com/yourusername/asset-horizon/internal/models"
	"github.com/yourusername/asset-horizon/internal/repository"
	"github.com/yourusername/asset-horizon/internal/service"
)

var (
	configFile string
	fullFetch  bool
	assetTypes []string
	withForex  bool
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.Flags().BoolVar(&fullFetch, "full", false, "Fetch full history instead of the trailing lookback span")
	rootCmd.Flags().StringSliceVar(&assetTypes, "types", []string{"crypto", "commodity", "index"}, "Asset types to fetch")
	rootCmd.Flags().BoolVar(&withForex, "forex", true, "Also fetch forex rates")
}

var rootCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch daily closes from the market data provider",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFetch(cmd.Context())
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func runFetch(ctx context.Context) error {
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

	source, err := datasource.NewFactory(cfg, log.New(logg.Writer(), "", 0)).Create(datasource.FMPSourceType)
	if err != nil {
		return fmt.Errorf("data source: %w", err)
	}

	writer := service.NewUpsertWriter(repos, cfg.Writer, logg)
	ingestion := service.NewIngestionService(source, repos, writer, nil, logg)

	daily := !fullFetch
	for _, t := range assetTypes {
		assetType := models.AssetType(t)
		if !assetType.Valid() {
			return fmt.Errorf("unknown asset type: %s", t)
		}
		if _, err := ingestion.IngestPrices(ctx, assetType, daily); err != nil {
			return fmt.Errorf("%s prices: %w", assetType, err)
		}
	}

	if withForex {
		if _, err := ingestion.IngestForex(ctx, daily); err != nil {
			return fmt.Errorf("forex: %w", err)
		}
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
