package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/asset-horizon/internal/config"
	"github.com/yourusername/asset-horizon/internal/models"
	"github.com/yourusername/asset-horizon/internal/repository"
)

// WriteReport summarizes one writer call. A partial report means some batches
// exhausted their retries; rows in those batches were not persisted while
// every other batch landed atomically.
type WriteReport struct {
	Written       int
	FailedBatches int
	// Err is the last batch failure, nil when the write completed fully.
	Err error
}

// Partial reports whether any batch failed.
func (r WriteReport) Partial() bool {
	return r.FailedBatches > 0
}

// UpsertWriter is the persistence stage of the pipeline. It chunks rows into
// fixed-size batches, writes each batch in its own transaction and retries a
// failed batch unchanged with a fixed delay. A batch that exhausts its
// retries is dropped and reported; later batches still run, so a run degrades
// to partial completion instead of aborting.
type UpsertWriter struct {
	repos      *repository.Repositories
	batchSize  int
	retries    int
	retryDelay time.Duration
	logger     *logrus.Logger
}

// NewUpsertWriter creates an UpsertWriter from the writer configuration.
func NewUpsertWriter(repos *repository.Repositories, cfg config.WriterConfig, logger *logrus.Logger) *UpsertWriter {
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 1000
	}
	if logger == nil {
		logger = logrus.New()
	}

	return &UpsertWriter{
		repos:      repos,
		batchSize:  batchSize,
		retries:    cfg.RetryAttempts,
		retryDelay: cfg.RetryDelay(),
		logger:     logger,
	}
}

// WriteBuyHold upserts buy-and-hold rows keyed by (symbol, start_date, end_date).
func (w *UpsertWriter) WriteBuyHold(ctx context.Context, rows []*models.BuyHoldPerformance) WriteReport {
	return w.writeChunks(ctx, "buy_hold", len(rows), func(lo, hi int) error {
		return w.repos.BuyHold.UpsertBatch(ctx, rows[lo:hi])
	})
}

// WriteDCA upserts DCA rows keyed by (symbol, start_date, end_date, dca_frequency).
func (w *UpsertWriter) WriteDCA(ctx context.Context, rows []*models.DCAPerformance) WriteReport {
	return w.writeChunks(ctx, "dca", len(rows), func(lo, hi int) error {
		return w.repos.DCA.UpsertBatch(ctx, rows[lo:hi])
	})
}

// WritePrices upserts raw daily closes into the asset type's price table.
func (w *UpsertWriter) WritePrices(ctx context.Context, assetType models.AssetType, prices []*models.PricePoint) WriteReport {
	return w.writeChunks(ctx, string(assetType)+"_prices", len(prices), func(lo, hi int) error {
		return w.repos.Price.UpsertBatch(ctx, assetType, prices[lo:hi])
	})
}

// WriteForex upserts daily forex rates.
func (w *UpsertWriter) WriteForex(ctx context.Context, rates []*models.ForexRate) WriteReport {
	return w.writeChunks(ctx, "forex", len(rates), func(lo, hi int) error {
		return w.repos.Forex.UpsertBatch(ctx, rates[lo:hi])
	})
}

// WriteHolidays upserts exchange holidays.
func (w *UpsertWriter) WriteHolidays(ctx context.Context, holidays []models.ExchangeHoliday) WriteReport {
	return w.writeChunks(ctx, "holidays", len(holidays), func(lo, hi int) error {
		return w.repos.Holiday.UpsertBatch(ctx, holidays[lo:hi])
	})
}

func (w *UpsertWriter) writeChunks(ctx context.Context, label string, total int, upsert func(lo, hi int) error) WriteReport {
	var report WriteReport

	for lo := 0; lo < total; lo += w.batchSize {
		hi := lo + w.batchSize
		if hi > total {
			hi = total
		}

		if err := w.writeBatch(ctx, label, upsert, lo, hi); err != nil {
			report.FailedBatches++
			report.Err = err
			continue
		}
		report.Written += hi - lo
	}

	return report
}

// writeBatch submits one batch, retrying it unchanged on failure.
func (w *UpsertWriter) writeBatch(ctx context.Context, label string, upsert func(lo, hi int) error, lo, hi int) error {
	var err error
	for attempt := 0; attempt <= w.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(w.retryDelay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		if err = upsert(lo, hi); err == nil {
			return nil
		}

		w.logger.WithFields(logrus.Fields{
			"table":   label,
			"rows":    hi - lo,
			"attempt": attempt + 1,
		}).WithError(err).Warn("Batch write failed")
	}

	w.logger.WithFields(logrus.Fields{
		"table": label,
		"rows":  hi - lo,
	}).WithError(err).Error("Batch dropped after exhausting retries")

	return err
}
