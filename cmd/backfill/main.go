// Package main provides the full historical backfill CLI: catalog sync,
// price and forex history from 2009, then the complete performance matrix.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/yourusername/asset-horizon/internal/calendar"
	"github.com/yourusername/asset-horizon/internal/config"
	"github.com/yourusername/asset-horizon/internal/database"
	"github.com/yourusername/asset-horizon/internal/datasource"
	"github.com/yourusername/asset-horizon/internal/logger"
	"github.com/yourusername/asset-horizon/internal/models"
	"github.com/yourusername/asset-horizon/internal/repository"
	"github.com/yourusername/asset-horizon/internal/service"
)

var (
	configFile  string
	skipFetch   bool
	skipCompute bool
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.Flags().BoolVar(&skipFetch, "skip-fetch", false, "Skip fetching and only recompute from stored data")
	rootCmd.Flags().BoolVar(&skipCompute, "skip-compute", false, "Fetch history but skip the computation pass")
}

var rootCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Run the full historical backfill",
	Long:  `Fetches the asset catalog, full price and forex history and exchange holidays, then computes the complete buy-and-hold and DCA performance matrix.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBackfill(cmd.Context())
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func runBackfill(ctx context.Context) error {
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
	normalizer := service.NewNormalizationService(repos, cfg.Jobs.MonthlyLookbackDays, logg)
	calendars := calendar.NewProvider(repos.Holiday, logg)

	compute, err := service.NewComputeService(repos, calendars, normalizer, writer, cfg, logg)
	if err != nil {
		return err
	}

	bar := progressbar.NewOptions(7,
		progressbar.OptionSetDescription("backfill"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
	)

	if !skipFetch {
		if err := ingestion.SyncAssetCatalog(ctx); err != nil {
			return fmt.Errorf("catalog sync: %w", err)
		}
		bar.Add(1)

		if err := ingestion.IngestHolidays(ctx); err != nil {
			return fmt.Errorf("holidays: %w", err)
		}
		bar.Add(1)

		for _, assetType := range []models.AssetType{
			models.AssetTypeCrypto, models.AssetTypeCommodity, models.AssetTypeIndex,
		} {
			if _, err := ingestion.IngestPrices(ctx, assetType, false); err != nil {
				return fmt.Errorf("%s prices: %w", assetType, err)
			}
			bar.Add(1)
		}

		if _, err := ingestion.IngestForex(ctx, false); err != nil {
			return fmt.Errorf("forex: %w", err)
		}
		bar.Add(1)
	} else {
		bar.Add(6)
	}

	if !skipCompute {
		stats, err := compute.ComputeAll(ctx)
		if err != nil {
			return fmt.Errorf("compute: %w", err)
		}
		if stats.Partial() {
			logg.Warn("Backfill completed with failures, see log for dropped batches")
		}
	}
	bar.Add(1)

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
