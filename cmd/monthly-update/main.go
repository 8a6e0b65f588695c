// Package main provides the monthly incremental recompute CLI, intended to
// be run from cron shortly after each month starts.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/yourusername/asset-horizon/internal/calendar"
	"github.com/yourusername/asset-horizon/internal/config"
	"github.com/yourusername/asset-horizon/internal/database"
	"github.com/yourusername/asset-horizon/internal/logger"
	"github.com/yourusername/asset-horizon/internal/repository"
	"github.com/yourusername/asset-horizon/internal/service"
)

var (
	configFile string
	asOf       string
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.Flags().StringVar(&asOf, "as-of", "", "Reference date (YYYY-MM-DD), defaults to today")
}

var rootCmd = &cobra.Command{
	Use:   "monthly-update",
	Short: "Recompute performance rows for newly valid month-start end dates",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMonthly(cmd.Context())
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func runMonthly(ctx context.Context) error {
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

	writer := service.NewUpsertWriter(repos, cfg.Writer, logg)
	normalizer := service.NewNormalizationService(repos, cfg.Jobs.MonthlyLookbackDays, logg)
	calendars := calendar.NewProvider(repos.Holiday, logg)

	compute, err := service.NewComputeService(repos, calendars, normalizer, writer, cfg, logg)
	if err != nil {
		return err
	}

	monthly := service.NewMonthlyRecompute(compute, cfg.Jobs.MonthlyLookbackDays, logg)

	now := time.Now().UTC()
	if asOf != "" {
		now, err = time.Parse("2006-01-02", asOf)
		if err != nil {
			return fmt.Errorf("invalid as-of date: %w", err)
		}
	}

	stats, err := monthly.RunAsOf(ctx, now)
	if err != nil {
		return err
	}

	fmt.Println(stats.String())
	if stats.Partial() {
		return fmt.Errorf("monthly update completed partially: %d failed batches, %d errors",
			stats.FailedBatches, stats.Errors)
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
