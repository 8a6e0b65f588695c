// Package main provides the long-running scheduler daemon. It wires the
// daily fetch, daily normalization check and monthly recompute jobs onto a
// cron schedule and serves health and metrics endpoints.
package main

import (
	"context"
	"fmt"
	stdlog "log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/asset-horizon/internal/calendar"
	"github.com/yourusername/asset-horizon/internal/config"
	"github.com/yourusername/asset-horizon/internal/database"
	"github.com/yourusername/asset-horizon/internal/datasource"
	"github.com/yourusername/asset-horizon/internal/health"
	"github.com/yourusername/asset-horizon/internal/logger"
	"github.com/yourusername/asset-horizon/internal/metrics"
	"github.com/yourusername/asset-horizon/internal/repository"
	"github.com/yourusername/asset-horizon/internal/scheduler"
	"github.com/yourusername/asset-horizon/internal/service"
)

// Set at build time via -ldflags.
var (
	version = "dev"
	commit  = "none"
)

var configFile string

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
}

var rootCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Run the recurring fetch, normalize and recompute jobs",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runScheduler(cmd.Context())
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		stdlog.Fatalf("Error: %v", err)
	}
}

func runScheduler(ctx context.Context) error {
	cfg, err := loadConfig(configFile)
	if err != nil {
		return err
	}

	logg := logger.NewLogger(cfg.App.LogLevel)
	logg.WithFields(logrus.Fields{
		"version":     version,
		"environment": cfg.App.Environment,
	}).Info("Starting scheduler daemon")

	db, err := database.Initialize(ctx, cfg)
	if err != nil {
		return fmt.Errorf("database init: %w", err)
	}
	defer db.Close()

	repos, err := repository.NewRepositories(db)
	if err != nil {
		return err
	}

	source, err := datasource.NewFactory(cfg, stdlog.New(logg.Writer(), "", 0)).Create(datasource.FMPSourceType)
	if err != nil {
		return fmt.Errorf("datasource init: %w", err)
	}

	writer := service.NewUpsertWriter(repos, cfg.Writer, logg)
	ingestion := service.NewIngestionService(source, repos, writer, nil, logg)
	normalizer := service.NewNormalizationService(repos, cfg.Jobs.MonthlyLookbackDays, logg)
	calendars := calendar.NewProvider(repos.Holiday, logg)

	compute, err := service.NewComputeService(repos, calendars, normalizer, writer, cfg, logg)
	if err != nil {
		return err
	}
	monthly := service.NewMonthlyRecompute(compute, cfg.Jobs.MonthlyLookbackDays, logg)

	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
	}

	healthCfg := health.Config{
		ServiceName: cfg.App.Name,
		Version:     version,
		Commit:      commit,
		Port:        strconv.Itoa(cfg.Metrics.Port),
		Logger:      logg,
		DB:          db,
	}
	if cfg.Metrics.Enabled {
		healthCfg.MetricsPath = cfg.Metrics.Path
	}
	healthServer := health.NewServer(healthCfg)

	serverCtx, serverCancel := context.WithCancel(ctx)
	defer serverCancel()
	if err := healthServer.Start(serverCtx); err != nil {
		return fmt.Errorf("health server: %w", err)
	}

	sched := scheduler.NewScheduler(ingestion, normalizer, monthly, logg)
	if err := sched.ScheduleDailyFetch(cfg.Jobs.DailyFetchCron); err != nil {
		return err
	}
	if err := sched.ScheduleDailyNormalize(cfg.Jobs.DailyNormalizeCron); err != nil {
		return err
	}
	if err := sched.ScheduleMonthlyRecompute(cfg.Jobs.MonthlyRecomputeCron); err != nil {
		return err
	}

	if err := sched.Start(); err != nil {
		return err
	}
	healthServer.SetReady(true)
	logg.WithField("next_run", sched.GetNextRun()).Info("Scheduler daemon ready")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		logg.WithField("signal", sig.String()).Info("Shutdown signal received")
	case <-ctx.Done():
		logg.Info("Context cancelled")
	}

	healthServer.SetReady(false)
	if err := sched.Stop(); err != nil {
		logg.WithError(err).Error("Scheduler stop failed")
	}
	if err := healthServer.Shutdown(); err != nil {
		logg.WithError(err).Error("Health server shutdown failed")
	}
	logg.Info("Scheduler daemon stopped")

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
